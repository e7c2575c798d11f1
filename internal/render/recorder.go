// Package render holds host side Renderer implementations that are not tied to
// a particular output device.
package render

import (
	"fmt"
	"sync"

	"tortuga/internal/turtle"
)

type Op string

const (
	OP_GRAB    Op = "grab"
	OP_UNGRAB  Op = "ungrab"
	OP_LINE    Op = "line"
	OP_TURTLE  Op = "turtle"
	OP_BLANK   Op = "blank"
	OP_STRING  Op = "string"
	OP_CLEANUP Op = "cleanup"
)

// Call is one renderer invocation as seen by the Recorder.
type Call struct {
	Op     Op
	X1, Y1 float64
	X2, Y2 float64
	Angle  float64
	Color  turtle.Color
	Text   string
	Turtle int
}

func (c Call) String() string {
	switch c.Op {
	case OP_LINE:
		return fmt.Sprintf("line (%.3f,%.3f)-(%.3f,%.3f) %s", c.X1, c.Y1, c.X2, c.Y2, c.Color)
	case OP_TURTLE, OP_BLANK:
		return fmt.Sprintf("%s #%d (%.3f,%.3f) %.3f", c.Op, c.Turtle, c.X1, c.Y1, c.Angle)
	case OP_STRING:
		return fmt.Sprintf("string (%.3f,%.3f) %.3f %s %q", c.X1, c.Y1, c.Angle, c.Color, c.Text)
	default:
		return string(c.Op)
	}
}

// Recorder is a Renderer that keeps an ordered log of every call. It is the
// headless backend, the source of persisted traces and the stub used in tests.
type Recorder struct {
	mu           sync.Mutex
	width        float64
	height       float64
	turtleWidth  float64
	turtleHeight float64
	calls        []Call
}

func NewRecorder(width, height float64) *Recorder {
	return &Recorder{width: width, height: height, turtleWidth: 10, turtleHeight: 10}
}

// WithTurtleSize overrides the preferred turtle size.
func (r *Recorder) WithTurtleSize(w, h float64) *Recorder {
	r.turtleWidth, r.turtleHeight = w, h
	return r
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
}

func (r *Recorder) NotifyGrabbed()                 { r.record(Call{Op: OP_GRAB}) }
func (r *Recorder) NotifyUngrabbed()               { r.record(Call{Op: OP_UNGRAB}) }
func (r *Recorder) Cleanup()                       { r.record(Call{Op: OP_CLEANUP}) }
func (r *Recorder) SurfaceWidth() float64          { return r.width }
func (r *Recorder) SurfaceHeight() float64         { return r.height }
func (r *Recorder) PreferredTurtleWidth() float64  { return r.turtleWidth }
func (r *Recorder) PreferredTurtleHeight() float64 { return r.turtleHeight }

func (r *Recorder) RenderLine(x1, y1, x2, y2 float64, c turtle.Color) {
	r.record(Call{Op: OP_LINE, X1: x1, Y1: y1, X2: x2, Y2: y2, Color: c})
}

func (r *Recorder) RenderTurtle(t turtle.Turtle) {
	r.record(Call{Op: OP_TURTLE, X1: t.X, Y1: t.Y, Angle: t.Angle, Color: t.Pen, Turtle: t.ID})
}

func (r *Recorder) BlankTurtle(t turtle.Turtle) {
	r.record(Call{Op: OP_BLANK, X1: t.X, Y1: t.Y, Angle: t.Angle, Color: t.Pen, Turtle: t.ID})
}

func (r *Recorder) RenderString(x, y, angle float64, c turtle.Color, text string) {
	r.record(Call{Op: OP_STRING, X1: x, Y1: y, Angle: angle, Color: c, Text: text})
}

// Calls returns a copy of the log.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Lines returns only the line segments, in order.
func (r *Recorder) Lines() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.calls {
		if c.Op == OP_LINE {
			out = append(out, c)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}
