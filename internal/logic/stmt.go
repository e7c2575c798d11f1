package logic

import "bytes"

// VarDecl declares a local (inside a procedure) or a global (at module level).
type VarDecl struct {
	Pos
	Name   string
	Value  Expr // optional initializer
	Target Ref
}

func (v *VarDecl) stmtNode() {}
func (v *VarDecl) String() string {
	if v.Value == nil {
		return "var " + v.Name
	}
	return "var " + v.Name + " = " + v.Value.String()
}

type Assign struct {
	Pos
	Name   string
	Value  Expr
	Target Ref
}

func (a *Assign) stmtNode()      {}
func (a *Assign) String() string { return a.Name + " = " + a.Value.String() }

type Branch struct {
	Cond Expr
	Body *Block
}

type If struct {
	Pos
	Branches []*Branch // if, then every elseif
	Else     *Block
}

func (i *If) stmtNode() {}
func (i *If) String() string {
	var out bytes.Buffer

	for n, b := range i.Branches {
		if n == 0 {
			out.WriteString("if ")
		} else {
			out.WriteString("elseif ")
		}
		out.WriteString(b.Cond.String())
		out.WriteString("\n")
		out.WriteString(b.Body.String())
	}
	if i.Else != nil {
		out.WriteString("else\n")
		out.WriteString(i.Else.String())
	}
	out.WriteString("endif")

	return out.String()
}

type While struct {
	Pos
	Cond Expr
	Body *Block
}

func (w *While) stmtNode() {}
func (w *While) String() string {
	return "while " + w.Cond.String() + "\n" + w.Body.String() + "endwhile"
}

type For struct {
	Pos
	Var    string
	Target Ref
	From   Expr
	To     Expr
	Step   Expr // optional
	Body   *Block
}

func (f *For) stmtNode() {}
func (f *For) String() string {
	var out bytes.Buffer

	out.WriteString("for " + f.Var + " = " + f.From.String() + " to " + f.To.String())
	if f.Step != nil {
		out.WriteString(" step " + f.Step.String())
	}
	out.WriteString("\n")
	out.WriteString(f.Body.String())
	out.WriteString("endfor")

	return out.String()
}

type Repeat struct {
	Pos
	Count Expr
	Body  *Block
}

func (r *Repeat) stmtNode() {}
func (r *Repeat) String() string {
	return "repeat " + r.Count.String() + "\n" + r.Body.String() + "endrepeat"
}

type Return struct {
	Pos
	Value Expr // optional
}

func (r *Return) stmtNode() {}
func (r *Return) String() string {
	if r.Value == nil {
		return "return"
	}
	return "return " + r.Value.String()
}

type Halt struct {
	Pos
}

func (h *Halt) stmtNode()      {}
func (h *Halt) String() string { return "halt" }

type CallStmt struct {
	Pos
	Call *Call
}

func (c *CallStmt) stmtNode()      {}
func (c *CallStmt) String() string { return c.Call.String() }
