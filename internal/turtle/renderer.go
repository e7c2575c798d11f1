package turtle

// Renderer is implemented by the host. Drawing calls are synchronous and best effort:
// they return nothing and their failures are not modelled.
type Renderer interface {
	// NotifyGrabbed and NotifyUngrabbed bracket one program run.
	NotifyGrabbed()
	NotifyUngrabbed()

	SurfaceWidth() float64
	SurfaceHeight() float64
	PreferredTurtleWidth() float64
	PreferredTurtleHeight() float64

	RenderLine(x1, y1, x2, y2 float64, c Color)
	RenderTurtle(t Turtle)
	BlankTurtle(t Turtle)
	RenderString(x, y, angle float64, c Color, text string)

	// Cleanup flushes and redraws the final frame.
	Cleanup()
}
