package repl

import (
	"bytes"
	"context"
	"io"
	"math"
	"strings"
	"testing"

	"tortuga/internal/locale"
	"tortuga/internal/render"
	"tortuga/internal/runner"
	"tortuga/internal/stdlib"
	"tortuga/internal/turtle"
)

func newSession() (*Session, *render.Recorder) {
	rec := render.NewRecorder(200, 200)
	r := runner.New(turtle.NewSpace(rec), stdlib.Default(), stdlib.DefaultSeed)
	return NewSession(r), rec
}

type scriptedInput struct {
	lines   []string
	prompts []string
	history []string
}

func (s *scriptedInput) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedInput) AppendHistory(item string) { s.history = append(s.history, item) }

func TestDefinitionsPersist(t *testing.T) {
	s, rec := newSession()
	ctx := context.Background()

	entries := []string{
		"var size = 30\n",
		"function side(n)\n  goForward(n)\n  turnRight(90)\nendfunction\n",
		"repeat 4\n  side(size)\nendrepeat\n",
		"size = size + 5\n",
	}
	for _, src := range entries {
		if res := s.Eval(ctx, src); res.Status != runner.COMPLETED {
			t.Fatalf("%q: %s %v", src, res.Status, res.Err)
		}
	}

	if got := s.values["size"]; got.IntValue() != 35 {
		t.Errorf("size should be 35 after the update, got %s", got.Inspect())
	}
	if n := len(rec.Lines()); n != 4 {
		t.Errorf("expected 4 lines, got %d", n)
	}
	if c := s.run.Space().Count(); c != 1 {
		t.Errorf("the space should keep its one turtle, got %d", c)
	}
	cur, _ := s.run.Space().CurrentTurtle()
	if math.Abs(cur.X-100) > 1e-9 || math.Abs(cur.Y-100) > 1e-9 {
		t.Errorf("the turtle should be back home, got (%v,%v)", cur.X, cur.Y)
	}
}

func TestFailedEntriesAreNotKept(t *testing.T) {
	s, _ := newSession()
	ctx := context.Background()

	tests := []struct {
		name string
		src  string
	}{
		{"undefined call", "function f()\n  jump()\nendfunction\n"},
		{"failing initializer", "var broken = 1 / 0\n"},
		{"main is reserved", "function main()\nendfunction\n"},
		{"statement failure", "setPenColor(99)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if res := s.Eval(ctx, tt.src); res.Status != runner.FAILED {
				t.Fatalf("expected a failure, got %s", res.Status)
			}
		})
	}

	if len(s.defs) != 0 {
		t.Errorf("failed definitions must not be kept: %q", s.defs)
	}
	if _, ok := s.values["broken"]; ok {
		t.Error("a global from a failed entry must not be remembered")
	}

	if res := s.Eval(ctx, "var ok = 1\n"); res.Status != runner.COMPLETED {
		t.Fatalf("the session should still work: %v", res.Err)
	}
	if res := s.Eval(ctx, "var ok = 2\n"); res.Status != runner.FAILED {
		t.Error("redefining a global should fail")
	}
	if s.values["ok"].IntValue() != 1 {
		t.Errorf("a rejected redefinition must keep the old value, got %s", s.values["ok"].Inspect())
	}
}

func TestComplete(t *testing.T) {
	s, _ := newSession()

	tests := []struct {
		src  string
		want bool
	}{
		{"goForward(10)\n", true},
		{"function f()\n", false},
		{"function f()\n  goForward(1)\nendfunction\n", true},
		{"repeat 3\n", false},
		{"if 1\n  halt\nelse\n", false},
		{"goForward(\n", true},
		{"@\n", true},
		{"", true},
	}
	for _, tt := range tests {
		if got := s.Complete(tt.src); got != tt.want {
			t.Errorf("Complete(%q): want %v, got %v", tt.src, tt.want, got)
		}
	}
}

func TestLoop(t *testing.T) {
	s, rec := newSession()
	p, _ := locale.New("en", nil)
	in := &scriptedInput{lines: []string{
		"function box(n)",
		"  repeat 4",
		"    goForward(n)",
		"    turnRight(90)",
		"  endrepeat",
		"endfunction",
		"box(20)",
		"halt",
		"setPenColor(42)",
		":vars",
		":quit",
		"box(99)",
	}}
	var out bytes.Buffer

	Loop(context.Background(), s, in, p, &out)

	if n := len(rec.Lines()); n != 4 {
		t.Errorf("expected 4 lines from box(20), got %d", n)
	}
	if !strings.Contains(out.String(), locale.MsgStopped) {
		t.Errorf("halt should be reported:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "exec failure in 'main' at line 1") {
		t.Errorf("the failure should be reported:\n%s", out.String())
	}
	if len(in.lines) != 1 {
		t.Errorf(":quit should stop reading, %d lines left", len(in.lines))
	}
	if in.prompts[1] != CONT_PROMPT {
		t.Errorf("an unfinished function should ask for more, got %q", in.prompts[1])
	}
	if in.history[0] != "function box(n)   repeat 4     goForward(n)     turnRight(90)   endrepeat endfunction " {
		t.Errorf("history entry: %q", in.history[0])
	}
}

func TestCommands(t *testing.T) {
	s, _ := newSession()
	ctx := context.Background()
	s.Eval(ctx, "var a = 2\n")
	s.Eval(ctx, "addTurtle()\n")

	var out bytes.Buffer
	if s.Command(":vars", &out) || !strings.Contains(out.String(), "a = 2") {
		t.Errorf(":vars: %q", out.String())
	}
	out.Reset()
	s.Command(":turtles", &out)
	if strings.Count(out.String(), "#") != 2 {
		t.Errorf(":turtles should list two turtles: %q", out.String())
	}
	out.Reset()
	s.Command(":builtins", &out)
	if !strings.Contains(out.String(), "goForward/1\n") || !strings.Contains(out.String(), "distance/4\n") {
		t.Errorf(":builtins should list names with arity: %q", out.String())
	}
	out.Reset()
	s.Command(":nope", &out)
	if !strings.Contains(out.String(), "unknown command") {
		t.Errorf(":nope: %q", out.String())
	}

	s.Command(":reset", &out)
	if len(s.values) != 0 || s.run.Space().Count() != 1 {
		t.Error(":reset should forget values and reset the space")
	}
	if !s.Command(":quit", &out) {
		t.Error(":quit should end the session")
	}
}
