package parser

import (
	"strings"
	"testing"

	"tortuga/internal/flow"
	"tortuga/internal/logic"
)

func parseOK(t *testing.T, src string) *logic.Global {
	t.Helper()
	g, err := Parse("test", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return g
}

func TestParseProgram(t *testing.T) {
	src := `
var size = 50

function square(n)
    repeat 4
        goForward(n)
        turnRight(90)
    endrepeat
endfunction

function main()
    square(size)
endfunction
`
	g := parseOK(t, src)

	if len(g.Modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(g.Modules))
	}
	m := g.Modules[0]
	if len(m.Globals) != 1 || m.Globals[0].Name != "size" {
		t.Fatalf("unexpected globals: %v", m.Globals)
	}
	if len(m.Procedures) != 2 {
		t.Fatalf("expected 2 procedures, got %d", len(m.Procedures))
	}

	square := m.Procedures[0]
	if square.Ident != "square" || len(square.Params) != 1 || square.Params[0] != "n" {
		t.Errorf("bad square header: %s %v", square.Ident, square.Params)
	}
	if square.Line() != 4 {
		t.Errorf("square line: want 4, got %d", square.Line())
	}
	rep, ok := square.Body.Statements[0].(*logic.Repeat)
	if !ok {
		t.Fatalf("expected Repeat, got %T", square.Body.Statements[0])
	}
	if len(rep.Body.Statements) != 2 {
		t.Errorf("repeat body: want 2 statements, got %d", len(rep.Body.Statements))
	}
	if rep.Body.Statements[1].Line() != 7 {
		t.Errorf("turnRight line: want 7, got %d", rep.Body.Statements[1].Line())
	}
}

func TestOperatorPrecedenceParsing(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"x = -a * b", "x = ((-a) * b)"},
		{"x = not a", "x = (not a)"},
		{"x = a + b * c", "x = (a + (b * c))"},
		{"x = a + b - c", "x = ((a + b) - c)"},
		{"x = a * b / c % d", "x = (((a * b) / c) % d)"},
		{"x = a < b == c > d", "x = ((a < b) == (c > d))"},
		{"x = a <> b", "x = (a != b)"},
		{"x = a or b and c", "x = (a or (b and c))"},
		{"x = not a == b", "x = ((not a) == b)"},
		{"x = (a + b) * c", "x = ((a + b) * c)"},
		{"x = f(a, b + 1) * 2", "x = (f(a, (b + 1)) * 2)"},
		{"x = -f(a)", "x = (-f(a))"},
		{`x = "a" + 1.5`, `x = ("a" + 1.5)`},
		{"x = true and nothing", "x = (1 and nothing)"},
		{"f()", "f()"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			proc, err := ParseFragment("frag", tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			if len(proc.Body.Statements) != 1 {
				t.Fatalf("expected 1 statement, got %d", len(proc.Body.Statements))
			}
			if got := proc.Body.Statements[0].String(); got != tt.expected {
				t.Errorf("expected=%q, got=%q", tt.expected, got)
			}
		})
	}
}

func TestControlStatements(t *testing.T) {
	src := `var total = 0
for i = 1 to 10 step 2
    if i == 3
        total = total + 1
    elseif i > 5
        total = total + 2
    else
        total = total - 1
    endif
endfor
while total > 0
    total = total - 1
endwhile
return total
`
	proc, err := ParseFragment("main", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	stmts := proc.Body.Statements
	if len(stmts) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(stmts))
	}

	loop, ok := stmts[1].(*logic.For)
	if !ok {
		t.Fatalf("expected For, got %T", stmts[1])
	}
	if loop.Var != "i" || loop.Step == nil || loop.Step.String() != "2" {
		t.Errorf("bad for header: %s", loop.String())
	}
	branch, ok := loop.Body.Statements[0].(*logic.If)
	if !ok {
		t.Fatalf("expected If, got %T", loop.Body.Statements[0])
	}
	if len(branch.Branches) != 2 || branch.Else == nil {
		t.Errorf("expected 2 branches and an else, got %d/%v", len(branch.Branches), branch.Else != nil)
	}
	if _, ok := stmts[2].(*logic.While); !ok {
		t.Errorf("expected While, got %T", stmts[2])
	}
	if ret, ok := stmts[3].(*logic.Return); !ok || ret.Value == nil {
		t.Errorf("expected return with value, got %v", stmts[3])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		line       int
		message    string
		incomplete bool
	}{
		{"missing endfunction", "function main()\n  goForward(1)\n", 3, "missing 'endfunction' to close 'function'", true},
		{"open expression", "function main()\n  x = 1 +", 2, "expected an expression, got end of input", true},
		{"statement at top level", "goForward(10)\n", 1, "expected 'function' or 'var'", false},
		{"bare expression", "function main()\n  1 + 2\nendfunction\n", 2, "expected a statement", false},
		{"not a call", "function main()\n  x\nendfunction\n", 2, "is not a statement", false},
		{"nested function", "function main()\n  function f()\nendfunction\n", 2, "cannot be nested", false},
		{"bad token", "function main()\n  x = 3 @ 4\nendfunction\n", 2, `unexpected character "@"`, false},
		{"illegal string", "function main()\n  x = \"abc\nendfunction\n", 2, "unterminated string literal", false},
		{"missing paren", "function main(\n", 1, "expected identifier", false},
		{"two statements", "function main()\n  halt halt\nendfunction\n", 2, "expected end of line, got 'halt'", false},
		{"int overflow", "var x = 99999999999999999999\n", 1, "out of range", false},
		{"for without to", "function main()\n  for i = 1\n  endfor\nendfunction\n", 2, "expected 'to'", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test", tt.input)
			if err == nil {
				t.Fatalf("expected a parse error")
			}
			sig, ok := flow.As(err)
			if !ok || sig.Kind != flow.PARSE {
				t.Fatalf("expected a parse failure, got %v", err)
			}
			if sig.Line != tt.line {
				t.Errorf("line: want %d, got %d (%v)", tt.line, sig.Line, err)
			}
			if !strings.Contains(sig.Msg, tt.message) {
				t.Errorf("message: want %q in %q", tt.message, sig.Msg)
			}
			if IsIncomplete(err) != tt.incomplete {
				t.Errorf("incomplete: want %v, got %v", tt.incomplete, IsIncomplete(err))
			}
		})
	}
}

func TestParseModuleAccumulates(t *testing.T) {
	g := parseOK(t, "function a()\nendfunction\n")
	if _, err := ParseModule(g, "more", "var v\nfunction b(x, y)\n  return x + y\nendfunction\n"); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	procs := g.UserProcedures()
	if len(procs) != 2 || procs[0].Ident != "a" || procs[1].Ident != "b" {
		t.Fatalf("unexpected procedures: %v", procs)
	}
	if procs[1].Module != "more" {
		t.Errorf("module: want more, got %s", procs[1].Module)
	}
}

func TestIsDefinition(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"function f()", true},
		{"\n\nvar x = 1", true},
		{"goForward(10)", false},
		{"x = 1", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsDefinition(tt.input); got != tt.expected {
			t.Errorf("IsDefinition(%q): want %v, got %v", tt.input, tt.expected, got)
		}
	}
}

func TestDumpYAML(t *testing.T) {
	g := parseOK(t, "function main()\n  goForward(10 * 2)\nendfunction\n")
	out, err := DumpYAML(g)
	if err != nil {
		t.Fatalf("dump failed: %v", err)
	}
	dump := string(out)
	for _, want := range []string{"0.type: Global", "2.name: main", "2.name: goForward", "0.type: Binary"} {
		if !strings.Contains(dump, want) {
			t.Errorf("dump missing %q:\n%s", want, dump)
		}
	}
}
