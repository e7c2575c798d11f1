// Package runner drives one program through parse, link, reset and execute
// against a host turtle space, timing each phase.
package runner

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"tortuga/internal/engine"
	"tortuga/internal/flow"
	"tortuga/internal/linker"
	"tortuga/internal/logic"
	"tortuga/internal/parser"
	"tortuga/internal/stdlib"
	"tortuga/internal/turtle"
	"tortuga/internal/util/future"
)

type Status int

const (
	COMPLETED Status = iota
	STOPPED
	FAILED
)

func (s Status) String() string {
	switch s {
	case COMPLETED:
		return "completed"
	case STOPPED:
		return "stopped"
	default:
		return "failed"
	}
}

// Timings are observational only.
type Timings struct {
	Parse time.Duration
	Link  time.Duration
	Exec  time.Duration
}

type Result struct {
	Status  Status
	Err     error // set when Status is FAILED
	Timings Timings
	Global  *logic.Global
}

type Runner struct {
	space *turtle.Space
	lib   *stdlib.Registry
	seed  uint64
	opts  []engine.Option

	// TreeDump receives a YAML dump of every parsed program when set.
	TreeDump io.Writer
	// Persist keeps turtles between runs instead of resetting the space.
	Persist bool
	// Prepare runs after state reset and before execution.
	Prepare func(g *logic.Global)

	mu      sync.Mutex
	current *engine.Engine
	pending bool // halt requested before the engine existed
}

func New(space *turtle.Space, lib *stdlib.Registry, seed uint64, opts ...engine.Option) *Runner {
	return &Runner{space: space, lib: lib, seed: seed, opts: opts}
}

func (r *Runner) Space() *turtle.Space     { return r.space }
func (r *Runner) Library() *stdlib.Registry { return r.lib }

// Run parses src and runs it to the end.
func (r *Runner) Run(ctx context.Context, name, src string) Result {
	r.begin()
	return r.run(ctx, name, src)
}

func (r *Runner) run(ctx context.Context, name, src string) Result {
	start := time.Now()
	g, err := parser.Parse(name, src)
	parsed := time.Since(start)
	if err != nil {
		return Result{Status: FAILED, Err: err, Timings: Timings{Parse: parsed}}
	}
	slog.Debug("parse phase done", slog.String("module", name), slog.Duration("elapsed", parsed))

	res := r.runParsed(ctx, g)
	res.Timings.Parse = parsed
	return res
}

// RunAsync runs src off the calling goroutine. Halt stops it, including a
// Halt issued before execution has started.
func (r *Runner) RunAsync(ctx context.Context, name, src string) *future.Future[Result] {
	r.begin()
	return future.New(func() (Result, error) {
		res := r.run(ctx, name, src)
		return res, res.Err
	})
}

// RunParsed links g against the library and the runner's space, resets state
// and executes.
func (r *Runner) RunParsed(ctx context.Context, g *logic.Global) Result {
	r.begin()
	return r.runParsed(ctx, g)
}

func (r *Runner) runParsed(ctx context.Context, g *logic.Global) Result {
	res := Result{Global: g}

	if r.TreeDump != nil {
		if out, err := parser.DumpYAML(g); err != nil {
			slog.Warn("tree dump failed", slog.Any("error", err))
		} else if _, err := r.TreeDump.Write(out); err != nil {
			slog.Warn("tree dump failed", slog.Any("error", err))
		}
	}

	g.Space = r.space
	start := time.Now()
	err := linker.Link(g, r.lib)
	res.Timings.Link = time.Since(start)
	if err != nil {
		res.Status, res.Err = FAILED, err
		return res
	}
	slog.Debug("link phase done", slog.Duration("elapsed", res.Timings.Link))

	r.lib.Seed(r.seed)
	e := engine.New(g, r.opts...)
	if r.Persist {
		g.ResetState()
	} else {
		e.ResetState()
	}
	if r.Prepare != nil {
		r.Prepare(g)
	}

	r.mu.Lock()
	r.current = e
	if r.pending {
		r.pending = false
		e.Halt()
	}
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.current = nil
		r.mu.Unlock()
	}()

	err = e.Execute(ctx)
	res.Timings.Exec = e.Elapsed()
	switch {
	case err == nil:
		res.Status = COMPLETED
	case flow.IsHalt(err):
		res.Status = STOPPED
	default:
		res.Status, res.Err = FAILED, err
	}
	slog.Debug("exec phase done",
		slog.String("status", res.Status.String()),
		slog.Duration("elapsed", res.Timings.Exec))
	return res
}

// Halt stops the current run at its next statement. A request made while the
// run is still parsing or linking is kept until execution starts.
func (r *Runner) Halt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		r.current.Halt()
		return
	}
	r.pending = true
}

// begin drops a halt request left over from an earlier run.
func (r *Runner) begin() {
	r.mu.Lock()
	r.pending = false
	r.mu.Unlock()
}
