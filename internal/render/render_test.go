package render

import (
	"testing"

	"tortuga/internal/turtle"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder(320, 200).WithTurtleSize(8, 12)
	if r.SurfaceWidth() != 320 || r.SurfaceHeight() != 200 {
		t.Errorf("surface: got %gx%g", r.SurfaceWidth(), r.SurfaceHeight())
	}
	if r.PreferredTurtleWidth() != 8 || r.PreferredTurtleHeight() != 12 {
		t.Errorf("turtle size: got %gx%g", r.PreferredTurtleWidth(), r.PreferredTurtleHeight())
	}

	red := turtle.Palette[4]
	r.NotifyGrabbed()
	r.RenderLine(0, 0, 10, 0, red)
	r.RenderTurtle(turtle.Turtle{ID: 3, X: 10, Y: 0, Angle: 0})
	r.RenderString(10, 0, 0, red, "hi")
	r.NotifyUngrabbed()
	r.Cleanup()

	want := []string{
		"grab",
		"line (0.000,0.000)-(10.000,0.000) rgb(0.667,0.000,0.000)",
		"turtle #3 (10.000,0.000) 0.000",
		`string (10.000,0.000) 0.000 rgb(0.667,0.000,0.000) "hi"`,
		"ungrab",
		"cleanup",
	}
	calls := r.Calls()
	if len(calls) != len(want) {
		t.Fatalf("want %d calls, got %d", len(want), len(calls))
	}
	for i, c := range calls {
		if c.String() != want[i] {
			t.Errorf("call %d: want %s, got %s", i, want[i], c)
		}
	}
	if len(r.Lines()) != 1 {
		t.Errorf("expected one line")
	}

	r.Reset()
	if len(r.Calls()) != 0 {
		t.Errorf("reset should drop the log")
	}
}

func TestMultiFansOut(t *testing.T) {
	a, b := NewRecorder(100, 100), NewRecorder(50, 50)
	m := Multi{a, b}

	m.NotifyGrabbed()
	m.RenderLine(1, 2, 3, 4, turtle.Palette[15])
	m.BlankTurtle(turtle.Turtle{ID: 1})
	m.Cleanup()

	if len(a.Calls()) != 4 || len(b.Calls()) != 4 {
		t.Errorf("every renderer should see every call: %d and %d", len(a.Calls()), len(b.Calls()))
	}
	if m.SurfaceWidth() != 100 {
		t.Errorf("geometry comes from the first renderer, got %g", m.SurfaceWidth())
	}
}
