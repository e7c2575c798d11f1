// Package logic is the program representation: a Global context owning modules,
// a procedure table and global slots, with every procedure a tree of statement and
// expression nodes. The parser builds it, the linker resolves it in place and the
// engine walks it.
package logic

import (
	"bytes"
	"strings"
)

// The base Node interface
type Node interface {
	Line() int
	String() string
}

type Stmt interface {
	Node
	stmtNode()
}

type Expr interface {
	Node
	exprNode()
}

type Scope uint8

const (
	UNRESOLVED Scope = iota
	LOCAL
	GLOBAL
)

// Ref is the linked form of a variable name: a position in the current frame or
// in the global slots.
type Ref struct {
	Scope Scope
	Index int
}

func (r Ref) Resolved() bool { return r.Scope != UNRESOLVED }

type Pos struct {
	LineNo int
}

func (p Pos) Line() int { return p.LineNo }

type Block struct {
	Pos
	Statements []Stmt
}

func (b *Block) String() string {
	var out bytes.Buffer
	for _, s := range b.Statements {
		for _, line := range strings.Split(s.String(), "\n") {
			out.WriteString("    ")
			out.WriteString(line)
			out.WriteString("\n")
		}
	}
	return out.String()
}
