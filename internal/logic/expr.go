package logic

import (
	"bytes"
	"strings"

	"tortuga/internal/value"
)

type Op int

const (
	OP_ADD Op = iota
	OP_SUB
	OP_MUL
	OP_DIV
	OP_MOD
	OP_EQ
	OP_NOT_EQ
	OP_LT
	OP_LT_EQ
	OP_GT
	OP_GT_EQ
	OP_AND
	OP_OR
	OP_NEG
	OP_NOT
)

var opSymbols = [...]string{"+", "-", "*", "/", "%", "==", "!=", "<", "<=", ">", ">=", "and", "or", "-", "not"}

func (o Op) String() string {
	if int(o) < len(opSymbols) {
		return opSymbols[o]
	}
	return "?"
}

type Literal struct {
	Pos
	Value value.Value
}

func (l *Literal) exprNode()      {}
func (l *Literal) String() string { return l.Value.Inspect() }

type VarRef struct {
	Pos
	Name string
	Ref  Ref
}

func (v *VarRef) exprNode()      {}
func (v *VarRef) String() string { return v.Name }

type Call struct {
	Pos
	Name   string
	Args   []Expr
	Target Procedure // set by the linker
}

func (c *Call) exprNode() {}
func (c *Call) String() string {
	var out bytes.Buffer

	args := []string{}
	for _, a := range c.Args {
		args = append(args, a.String())
	}

	out.WriteString(c.Name)
	out.WriteString("(")
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")

	return out.String()
}

type Binary struct {
	Pos
	Op    Op
	Left  Expr
	Right Expr
}

func (b *Binary) exprNode() {}
func (b *Binary) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(b.Left.String())
	out.WriteString(" " + b.Op.String() + " ")
	out.WriteString(b.Right.String())
	out.WriteString(")")

	return out.String()
}

type Unary struct {
	Pos
	Op      Op
	Operand Expr
}

func (u *Unary) exprNode() {}
func (u *Unary) String() string {
	if u.Op == OP_NOT {
		return "(not " + u.Operand.String() + ")"
	}
	return "(" + u.Op.String() + u.Operand.String() + ")"
}
