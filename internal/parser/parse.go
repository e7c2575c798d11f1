package parser

import (
	"log/slog"

	"tortuga/internal/flow"
	"tortuga/internal/lexer"
	"tortuga/internal/logic"
	"tortuga/internal/token"
)

// Parse reads a whole program into a fresh Global. The host attaches its turtle
// space before linking.
func Parse(name, src string) (*logic.Global, error) {
	g := logic.NewGlobal(nil)
	if _, err := ParseModule(g, name, src); err != nil {
		return nil, err
	}
	return g, nil
}

// ParseModule adds one more source unit to g.
func ParseModule(g *logic.Global, name, src string) (*logic.Module, error) {
	p := New(lexer.New(src))
	m := p.ParseModule(name)
	if err := p.Err(); err != nil {
		slog.Debug("parse failed", slog.String("module", name), slog.Any("error", err))
		return nil, err
	}
	m.Src = src
	g.AddModule(m)
	slog.Debug("parsed module",
		slog.String("module", name),
		slog.Int("procedures", len(m.Procedures)),
		slog.Int("globals", len(m.Globals)))
	return m, nil
}

// ParseFragment reads a bare statement list as the body of a procedure with no
// parameters.
func ParseFragment(name, src string) (*logic.UserProc, error) {
	p := New(lexer.New(src))
	body := p.ParseStatements()
	if err := p.Err(); err != nil {
		return nil, err
	}
	return &logic.UserProc{
		Pos:    logic.Pos{LineNo: 1},
		Module: name,
		Ident:  name,
		Params: []string{},
		Body:   body,
	}, nil
}

// IsIncomplete reports a parse failure caused by running out of input, meaning
// more lines could still make the source valid.
func IsIncomplete(err error) bool {
	s, ok := flow.As(err)
	return ok && s.Kind == flow.PARSE && s.Incomplete
}

// IsDefinition reports whether src starts with a procedure or global variable
// declaration rather than a statement.
func IsDefinition(src string) bool {
	l := lexer.New(src)
	for {
		tok := l.NextToken()
		switch tok.Type {
		case token.NEWLINE:
			continue
		case token.FUNCTION, token.VAR:
			return true
		default:
			return false
		}
	}
}
