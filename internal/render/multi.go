package render

import "tortuga/internal/turtle"

// Multi fans every call out to several renderers. Geometry queries are answered
// by the first one.
type Multi []turtle.Renderer

func (m Multi) NotifyGrabbed() {
	for _, r := range m {
		r.NotifyGrabbed()
	}
}

func (m Multi) NotifyUngrabbed() {
	for _, r := range m {
		r.NotifyUngrabbed()
	}
}

func (m Multi) Cleanup() {
	for _, r := range m {
		r.Cleanup()
	}
}

func (m Multi) SurfaceWidth() float64          { return m[0].SurfaceWidth() }
func (m Multi) SurfaceHeight() float64         { return m[0].SurfaceHeight() }
func (m Multi) PreferredTurtleWidth() float64  { return m[0].PreferredTurtleWidth() }
func (m Multi) PreferredTurtleHeight() float64 { return m[0].PreferredTurtleHeight() }

func (m Multi) RenderLine(x1, y1, x2, y2 float64, c turtle.Color) {
	for _, r := range m {
		r.RenderLine(x1, y1, x2, y2, c)
	}
}

func (m Multi) RenderTurtle(t turtle.Turtle) {
	for _, r := range m {
		r.RenderTurtle(t)
	}
}

func (m Multi) BlankTurtle(t turtle.Turtle) {
	for _, r := range m {
		r.BlankTurtle(t)
	}
}

func (m Multi) RenderString(x, y, angle float64, c turtle.Color, text string) {
	for _, r := range m {
		r.RenderString(x, y, angle, c, text)
	}
}
