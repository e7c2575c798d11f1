// Package engine walks a linked logic tree. A run evaluates the global
// initializers and then calls main; it ends normally, on a halt request, or
// with an exec failure naming the procedure and line.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"tortuga/internal/flow"
	"tortuga/internal/logic"
	"tortuga/internal/value"
)

const (
	DefaultMaxDepth = 1000
	// LimitMaxDepth keeps recursion well inside the goroutine stack limit.
	LimitMaxDepth = 50000
)

type Option func(*Engine)

// WithMaxDepth bounds nested procedure calls. Deeper calls fail with a stack overflow.
// Values above LimitMaxDepth are clamped.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDepth = min(n, LimitMaxDepth)
		}
	}
}

// MaxDepth reports the effective call depth bound.
func (e *Engine) MaxDepth() int { return e.maxDepth }

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

type Engine struct {
	g        *logic.Global
	maxDepth int
	logger   *slog.Logger

	halted  atomic.Bool
	depth   int
	free    []*logic.Frame
	elapsed atomic.Int64
}

func New(g *logic.Global, opts ...Option) *Engine {
	e := &Engine{
		g:        g,
		maxDepth: DefaultMaxDepth,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Global() *logic.Global { return e.g }

// ResetState puts globals back to nothing and the turtle space back to a single
// default turtle.
func (e *Engine) ResetState() {
	e.halted.Store(false)
	e.g.ResetState()
	if e.g.Space != nil {
		e.g.Space.Reset()
	}
}

// Halt asks Execute to stop at the next statement. A request made before Execute
// starts is honored by it; ResetState drops it. Safe from any goroutine.
func (e *Engine) Halt() {
	e.halted.Store(true)
}

// Elapsed is the wall-clock duration of the last Execute.
func (e *Engine) Elapsed() time.Duration {
	return time.Duration(e.elapsed.Load())
}

// Execute runs the program. Cancelling ctx has the same effect as Halt.
func (e *Engine) Execute(ctx context.Context) error {
	if !e.g.Linked() {
		return flow.Exec("program is not linked")
	}
	main, ok := e.g.Main()
	if !ok {
		return flow.Exec("no main function")
	}

	stop := context.AfterFunc(ctx, e.Halt)
	defer stop()

	if space := e.g.Space; space != nil {
		space.NotifyGrabbed()
		defer func() {
			space.NotifyUngrabbed()
			space.Cleanup()
		}()
	}

	start := time.Now()
	defer func() {
		e.elapsed.Store(int64(time.Since(start)))
	}()

	e.logger.Debug("execution started", slog.Int("globals", len(e.g.Globals)))

	err := e.initGlobals()
	if err == nil {
		_, err = e.call(main, nil, nil)
	}

	switch {
	case err == nil:
		e.logger.Debug("execution finished", slog.Duration("elapsed", time.Since(start)))
	case flow.IsHalt(err):
		e.logger.Debug("execution halted", slog.Duration("elapsed", time.Since(start)))
	default:
		e.logger.Debug("execution failed", slog.Any("error", err))
	}
	return err
}

func (e *Engine) initGlobals() error {
	for _, decl := range e.g.Globals {
		if decl.Value == nil {
			continue
		}
		if e.halted.Load() {
			return flow.Halt("")
		}
		v, err := e.eval(nil, decl.Value)
		if err != nil {
			return locate(err, "", decl.Line())
		}
		e.g.Values[decl.Target.Index] = v
	}
	return nil
}

func locate(err error, proc string, line int) error {
	if s, ok := flow.As(err); ok {
		return s.Locate(proc, line)
	}
	return flow.ExecFrom(err).Locate(proc, line)
}

func (e *Engine) acquire(proc logic.Procedure, size int) *logic.Frame {
	var f *logic.Frame
	if n := len(e.free); n > 0 {
		f = e.free[n-1]
		e.free = e.free[:n-1]
	} else {
		f = &logic.Frame{}
	}
	f.Proc = proc
	f.Line = 0
	if cap(f.Locals) < size {
		f.Locals = make([]value.Value, size)
	} else {
		f.Locals = f.Locals[:size]
		clear(f.Locals)
	}
	return f
}

func (e *Engine) release(f *logic.Frame) {
	f.Proc = nil
	clear(f.Locals)
	e.free = append(e.free, f)
}

// call evaluates args in the caller's frame, binds them positionally and runs target.
func (e *Engine) call(target logic.Procedure, caller *logic.Frame, args []logic.Expr) (value.Value, error) {
	if e.depth >= e.maxDepth {
		return value.Nothing, flow.Exec("stack overflow")
	}

	size := target.Arity()
	user, isUser := target.(*logic.UserProc)
	if isUser {
		size = user.FrameSize()
	}

	f := e.acquire(target, size)
	defer e.release(f)

	for i, a := range args {
		v, err := e.eval(caller, a)
		if err != nil {
			return value.Nothing, err
		}
		f.Locals[i] = v
	}

	e.depth++
	defer func() { e.depth-- }()

	if isUser {
		_, v, err := e.block(f, user.Body)
		return v, err
	}

	b := target.(*logic.BuiltinProc)
	if caller != nil {
		f.Line = caller.Line
	}
	v, err := b.Fn.Invoke(f, e.g.Space)
	if err != nil {
		return value.Nothing, flow.ExecFrom(err)
	}
	return v, nil
}

func (e *Engine) load(f *logic.Frame, ref logic.Ref) value.Value {
	if ref.Scope == logic.LOCAL {
		return f.Locals[ref.Index]
	}
	return e.g.Values[ref.Index]
}

func (e *Engine) store(f *logic.Frame, ref logic.Ref, v value.Value) {
	if ref.Scope == logic.LOCAL {
		f.Locals[ref.Index] = v
		return
	}
	e.g.Values[ref.Index] = v
}
