package logic

import (
	"bytes"
	"strings"

	"tortuga/internal/turtle"
	"tortuga/internal/value"
)

const MainProcedure = "main"

// Procedure is either a user procedure parsed from source or a builtin.
type Procedure interface {
	Name() string
	Arity() int
}

// Builtin is one standard library function. BindHost is called once at link
// time so the function can refuse a missing host collaborator up front.
type Builtin interface {
	Name() string
	Arity() int
	BindHost(space *turtle.Space) error
	Invoke(frame *Frame, space *turtle.Space) (value.Value, error)
}

type BuiltinProc struct {
	Fn Builtin
}

func (b *BuiltinProc) Name() string { return b.Fn.Name() }
func (b *BuiltinProc) Arity() int   { return b.Fn.Arity() }

type UserProc struct {
	Pos
	Module string
	Ident  string
	Params []string
	Body   *Block
	Locals []string // parameters first, then declared locals; filled by the linker
}

func (p *UserProc) Name() string   { return p.Ident }
func (p *UserProc) Arity() int     { return len(p.Params) }
func (p *UserProc) FrameSize() int { return len(p.Locals) }
func (p *UserProc) String() string {
	var out bytes.Buffer

	out.WriteString("function ")
	out.WriteString(p.Ident)
	out.WriteString("(")
	out.WriteString(strings.Join(p.Params, ", "))
	out.WriteString(")\n")
	out.WriteString(p.Body.String())
	out.WriteString("endfunction")

	return out.String()
}

// Frame holds the locals of one active procedure call, addressed by position.
type Frame struct {
	Proc   Procedure
	Locals []value.Value
	Line   int // line of the statement being executed
}

// Arg returns the i-th bound argument.
func (f *Frame) Arg(i int) value.Value {
	return f.Locals[i]
}

// Module is one parsed source unit.
type Module struct {
	Name       string
	Src        string
	Globals    []*VarDecl
	Procedures []*UserProc
}

func (m *Module) String() string {
	var out bytes.Buffer
	for _, g := range m.Globals {
		out.WriteString(g.String())
		out.WriteString("\n")
	}
	for _, p := range m.Procedures {
		out.WriteString("\n")
		out.WriteString(p.String())
		out.WriteString("\n")
	}
	return out.String()
}

// Global is the root of a program. It lives from parsing until the host
// discards it.
type Global struct {
	Modules    []*Module
	Procedures map[string]Procedure
	Globals    []*VarDecl    // declaration order across modules
	Values     []value.Value // global slots, indexed by Ref.Index
	Space      *turtle.Space

	linked bool
}

func NewGlobal(space *turtle.Space) *Global {
	return &Global{
		Procedures: make(map[string]Procedure),
		Space:      space,
	}
}

func (g *Global) AddModule(m *Module) {
	g.Modules = append(g.Modules, m)
}

func (g *Global) Procedure(name string) (Procedure, bool) {
	p, ok := g.Procedures[name]
	return p, ok
}

// UserProcedures lists user procedures in module and declaration order.
func (g *Global) UserProcedures() []*UserProc {
	var out []*UserProc
	for _, m := range g.Modules {
		out = append(out, m.Procedures...)
	}
	return out
}

// Main returns the entry procedure once linked.
func (g *Global) Main() (*UserProc, bool) {
	p, ok := g.Procedures[MainProcedure].(*UserProc)
	return p, ok
}

func (g *Global) Linked() bool { return g.linked }
func (g *Global) MarkLinked()  { g.linked = true }

// ResetState clears every global slot back to nothing.
func (g *Global) ResetState() {
	if cap(g.Values) < len(g.Globals) {
		g.Values = make([]value.Value, len(g.Globals))
		return
	}
	g.Values = g.Values[:len(g.Globals)]
	for i := range g.Values {
		g.Values[i] = value.Nothing
	}
}

// Source returns the source text of the module that defines proc, if any.
func (g *Global) Source(proc string) string {
	for _, m := range g.Modules {
		for _, p := range m.Procedures {
			if p.Ident == proc {
				return m.Src
			}
		}
	}
	if len(g.Modules) > 0 {
		return g.Modules[0].Src
	}
	return ""
}
