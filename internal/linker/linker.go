// Package linker resolves a parsed program in place: procedure calls are bound
// to their targets, variable names become frame or global slot positions, and
// the builtins a program uses are checked against the host.
package linker

import (
	"log/slog"

	"tortuga/internal/flow"
	"tortuga/internal/logic"
)

// Library supplies the builtins a program may call.
type Library interface {
	Lookup(name string) (logic.Builtin, bool)
}

type linker struct {
	g        *logic.Global
	lib      Library
	globals  map[string]int
	builtins map[string]*logic.BuiltinProc

	// current procedure
	proc   *logic.UserProc
	locals map[string]int
}

// Link resolves g against lib. A Global can be linked once.
func Link(g *logic.Global, lib Library) error {
	if g.Linked() {
		return flow.Link("", 0, "program already linked")
	}

	l := &linker{
		g:        g,
		lib:      lib,
		globals:  make(map[string]int),
		builtins: make(map[string]*logic.BuiltinProc),
	}

	if err := l.declare(); err != nil {
		slog.Debug("link failed", slog.Any("error", err))
		return err
	}
	if err := l.resolve(); err != nil {
		slog.Debug("link failed", slog.Any("error", err))
		return err
	}

	g.ResetState()
	g.MarkLinked()

	slog.Debug("linked program",
		slog.Int("procedures", len(g.UserProcedures())),
		slog.Int("builtins", len(l.builtins)),
		slog.Int("globals", len(g.Globals)))
	return nil
}

// declare fills the procedure table and the global slots.
func (l *linker) declare() error {
	g := l.g
	g.Procedures = make(map[string]logic.Procedure)
	g.Globals = nil

	for _, m := range g.Modules {
		for _, decl := range m.Globals {
			if _, seen := l.globals[decl.Name]; seen {
				return flow.Link("", decl.Line(), "global '%s' redefined", decl.Name)
			}
			decl.Target = logic.Ref{Scope: logic.GLOBAL, Index: len(g.Globals)}
			l.globals[decl.Name] = decl.Target.Index
			g.Globals = append(g.Globals, decl)
		}

		for _, proc := range m.Procedures {
			if _, ok := l.lib.Lookup(proc.Ident); ok {
				return flow.Link(proc.Ident, proc.Line(), "procedure '%s' collides with a builtin", proc.Ident)
			}
			if _, seen := g.Procedures[proc.Ident]; seen {
				return flow.Link(proc.Ident, proc.Line(), "procedure '%s' redefined", proc.Ident)
			}
			g.Procedures[proc.Ident] = proc
		}
	}

	main, ok := g.Main()
	if !ok {
		return flow.Link("", 0, "no main function")
	}
	if main.Arity() != 0 {
		return flow.Link(main.Ident, main.Line(), "main must take no arguments")
	}
	return nil
}

func (l *linker) resolve() error {
	// global initializers see globals only
	l.proc, l.locals = nil, nil
	for _, decl := range l.g.Globals {
		if decl.Value != nil {
			if err := l.expr(decl.Value); err != nil {
				return err
			}
		}
	}

	for _, proc := range l.g.UserProcedures() {
		if err := l.procedure(proc); err != nil {
			return err
		}
	}
	return nil
}

func (l *linker) procedure(proc *logic.UserProc) error {
	l.proc = proc
	l.locals = make(map[string]int)
	proc.Locals = proc.Locals[:0]

	for _, name := range proc.Params {
		if _, seen := l.locals[name]; seen {
			return flow.Link(proc.Ident, proc.Line(), "parameter '%s' repeated", name)
		}
		l.addLocal(name)
	}
	if err := l.collect(proc.Body); err != nil {
		return err
	}
	return l.block(proc.Body)
}

func (l *linker) addLocal(name string) int {
	idx := len(l.proc.Locals)
	l.locals[name] = idx
	l.proc.Locals = append(l.proc.Locals, name)
	return idx
}

// collect gives every variable declared anywhere in the body a frame slot, in
// declaration order. Undeclared loop variables become locals unless a global
// of that name exists.
func (l *linker) collect(b *logic.Block) error {
	if b == nil {
		return nil
	}
	for _, s := range b.Statements {
		switch s := s.(type) {
		case *logic.VarDecl:
			if _, seen := l.locals[s.Name]; seen {
				return flow.Link(l.proc.Ident, s.Line(), "variable '%s' redefined", s.Name)
			}
			l.addLocal(s.Name)
		case *logic.For:
			_, local := l.locals[s.Var]
			_, global := l.globals[s.Var]
			if !local && !global {
				l.addLocal(s.Var)
			}
			if err := l.collect(s.Body); err != nil {
				return err
			}
		case *logic.If:
			for _, br := range s.Branches {
				if err := l.collect(br.Body); err != nil {
					return err
				}
			}
			if err := l.collect(s.Else); err != nil {
				return err
			}
		case *logic.While:
			if err := l.collect(s.Body); err != nil {
				return err
			}
		case *logic.Repeat:
			if err := l.collect(s.Body); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *linker) block(b *logic.Block) error {
	if b == nil {
		return nil
	}
	for _, s := range b.Statements {
		if err := l.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (l *linker) stmt(s logic.Stmt) error {
	switch s := s.(type) {
	case *logic.VarDecl:
		s.Target = logic.Ref{Scope: logic.LOCAL, Index: l.locals[s.Name]}
		if s.Value != nil {
			return l.expr(s.Value)
		}
	case *logic.Assign:
		ref, err := l.lookup(s.Name, s.Line())
		if err != nil {
			return err
		}
		s.Target = ref
		return l.expr(s.Value)
	case *logic.If:
		for _, br := range s.Branches {
			if err := l.expr(br.Cond); err != nil {
				return err
			}
			if err := l.block(br.Body); err != nil {
				return err
			}
		}
		return l.block(s.Else)
	case *logic.While:
		if err := l.expr(s.Cond); err != nil {
			return err
		}
		return l.block(s.Body)
	case *logic.For:
		ref, err := l.lookup(s.Var, s.Line())
		if err != nil {
			return err
		}
		s.Target = ref
		for _, e := range []logic.Expr{s.From, s.To, s.Step} {
			if e == nil {
				continue
			}
			if err := l.expr(e); err != nil {
				return err
			}
		}
		return l.block(s.Body)
	case *logic.Repeat:
		if err := l.expr(s.Count); err != nil {
			return err
		}
		return l.block(s.Body)
	case *logic.Return:
		if s.Value != nil {
			return l.expr(s.Value)
		}
	case *logic.CallStmt:
		return l.expr(s.Call)
	case *logic.Halt:
	}
	return nil
}

func (l *linker) expr(e logic.Expr) error {
	switch e := e.(type) {
	case *logic.Literal:
	case *logic.VarRef:
		ref, err := l.lookup(e.Name, e.Line())
		if err != nil {
			return err
		}
		e.Ref = ref
	case *logic.Unary:
		return l.expr(e.Operand)
	case *logic.Binary:
		if err := l.expr(e.Left); err != nil {
			return err
		}
		return l.expr(e.Right)
	case *logic.Call:
		for _, a := range e.Args {
			if err := l.expr(a); err != nil {
				return err
			}
		}
		target, err := l.callee(e)
		if err != nil {
			return err
		}
		if target.Arity() != len(e.Args) {
			return l.fail(e.Line(), "wrong number of arguments to '%s': want %d, got %d",
				e.Name, target.Arity(), len(e.Args))
		}
		e.Target = target
	}
	return nil
}

// callee looks in the builtins first, then in the user procedure table.
func (l *linker) callee(c *logic.Call) (logic.Procedure, error) {
	if bp, ok := l.builtins[c.Name]; ok {
		return bp, nil
	}
	if fn, ok := l.lib.Lookup(c.Name); ok {
		if err := fn.BindHost(l.g.Space); err != nil {
			return nil, l.fail(c.Line(), "missing host capability for '%s': %v", c.Name, err)
		}
		bp := &logic.BuiltinProc{Fn: fn}
		l.builtins[c.Name] = bp
		l.g.Procedures[c.Name] = bp
		return bp, nil
	}
	if proc, ok := l.g.Procedures[c.Name]; ok {
		return proc, nil
	}
	return nil, l.fail(c.Line(), "undefined procedure '%s'", c.Name)
}

func (l *linker) lookup(name string, line int) (logic.Ref, error) {
	if idx, ok := l.locals[name]; ok {
		return logic.Ref{Scope: logic.LOCAL, Index: idx}, nil
	}
	if idx, ok := l.globals[name]; ok {
		return logic.Ref{Scope: logic.GLOBAL, Index: idx}, nil
	}
	return logic.Ref{}, l.fail(line, "undefined variable '%s'", name)
}

func (l *linker) fail(line int, format string, args ...any) error {
	proc := ""
	if l.proc != nil {
		proc = l.proc.Ident
	}
	return flow.Link(proc, line, format, args...)
}
