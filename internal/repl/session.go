package repl

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"tortuga/internal/logic"
	"tortuga/internal/parser"
	"tortuga/internal/runner"
	"tortuga/internal/value"
)

// Session is the state an interactive user builds up: procedures and globals
// they defined, the values of those globals and the turtles on screen.
//
// Every entry is linked as a fresh program made of all earlier definitions
// plus the entry itself. Statements become the body of main. Definitions are
// kept only when their entry completes.
type Session struct {
	run    *runner.Runner
	defs   []string
	values map[string]value.Value
	seq    int
}

func NewSession(r *runner.Runner) *Session {
	s := &Session{run: r, values: make(map[string]value.Value)}
	r.Persist = true
	r.Prepare = s.restore
	r.Space().Reset()
	return s
}

// Complete reports whether src is a whole entry. A parse failure that is not
// caused by running out of input still counts as complete, so that it gets
// reported instead of waiting for more lines.
func (s *Session) Complete(src string) bool {
	var err error
	if parser.IsDefinition(src) {
		_, err = parser.Parse("input", src)
	} else {
		_, err = parser.ParseFragment(logic.MainProcedure, src)
	}
	return !parser.IsIncomplete(err)
}

// Eval runs one entry.
func (s *Session) Eval(ctx context.Context, src string) runner.Result {
	s.seq++
	name := fmt.Sprintf("input %d", s.seq)
	definition := parser.IsDefinition(src)

	g := logic.NewGlobal(nil)
	for i, def := range s.defs {
		m, err := parser.ParseModule(g, fmt.Sprintf("definition %d", i+1), def)
		if err != nil {
			return runner.Result{Status: runner.FAILED, Err: err}
		}
		// already initialized, the value is restored instead
		for _, decl := range m.Globals {
			decl.Value = nil
		}
	}

	main := &logic.UserProc{
		Pos:    logic.Pos{LineNo: 1},
		Module: name,
		Ident:  logic.MainProcedure,
		Params: []string{},
		Body:   &logic.Block{},
	}
	fresh := map[string]bool{}
	if definition {
		m, err := parser.ParseModule(g, name, src)
		if err != nil {
			return runner.Result{Status: runner.FAILED, Err: err}
		}
		for _, decl := range m.Globals {
			fresh[decl.Name] = true
		}
	} else {
		frag, err := parser.ParseFragment(logic.MainProcedure, src)
		if err != nil {
			return runner.Result{Status: runner.FAILED, Err: err}
		}
		main.Body = frag.Body
	}
	g.AddModule(&logic.Module{Name: name, Src: src, Procedures: []*logic.UserProc{main}})

	res := s.run.RunParsed(ctx, g)
	keep := res.Status == runner.COMPLETED
	if g.Linked() {
		for _, decl := range g.Globals {
			if keep || !fresh[decl.Name] {
				s.values[decl.Name] = g.Values[decl.Target.Index]
			}
		}
	}
	if definition && keep {
		s.defs = append(s.defs, src)
	}
	return res
}

func (s *Session) restore(g *logic.Global) {
	for _, decl := range g.Globals {
		if v, ok := s.values[decl.Name]; ok {
			g.Values[decl.Target.Index] = v
		}
	}
}

// Reset forgets every definition and value and clears the turtle space.
func (s *Session) Reset() {
	s.defs = nil
	clear(s.values)
	s.run.Space().Reset()
}

// Command runs a ':' command and reports whether the session should end.
func (s *Session) Command(line string, out io.Writer) (quit bool) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), ":"))
	if len(fields) == 0 {
		fmt.Fprintln(out, "commands: :quit :reset :vars :defs :turtles :builtins")
		return false
	}
	switch fields[0] {
	case "quit", "q", "exit":
		return true
	case "reset":
		s.Reset()
	case "vars":
		names := make([]string, 0, len(s.values))
		for name := range s.values {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "%s = %s\n", name, s.values[name].Inspect())
		}
	case "defs":
		for _, def := range s.defs {
			fmt.Fprintln(out, strings.TrimRight(def, "\n"))
		}
	case "turtles":
		for _, t := range s.run.Space().Snapshot() {
			fmt.Fprintf(out, "#%d (%.2f, %.2f) angle %.2f pen %v visible %v\n",
				t.ID, t.X, t.Y, t.Angle, t.PenDown, t.Visible)
		}
	case "builtins":
		lib := s.run.Library()
		for _, name := range lib.Names() {
			b, _ := lib.Lookup(name)
			fmt.Fprintf(out, "%s/%d\n", name, b.Arity())
		}
	default:
		fmt.Fprintf(out, "unknown command ':%s'\n", fields[0])
	}
	return false
}
