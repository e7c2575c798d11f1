package turtle

import "fmt"

type Color struct {
	R, G, B float32
}

func (c Color) String() string {
	return fmt.Sprintf("rgb(%.3f,%.3f,%.3f)", c.R, c.G, c.B)
}

// Palette is the fixed 16 entry standard color table addressed by setPenColor.
var Palette = [...]Color{
	{0, 0, 0},             // black
	{0, 0, 0.667},         // blue
	{0, 0.667, 0},         // green
	{0, 0.667, 0.667},     // cyan
	{0.667, 0, 0},         // red
	{0.667, 0, 0.667},     // magenta
	{0.667, 0.333, 0},     // brown
	{0.667, 0.667, 0.667}, // light gray
	{0.333, 0.333, 0.333}, // dark gray
	{0.333, 0.333, 1},     // light blue
	{0.333, 1, 0.333},     // light green
	{0.333, 1, 1},         // light cyan
	{1, 0.333, 0.333},     // light red
	{1, 0.333, 1},         // light magenta
	{1, 1, 0.333},         // yellow
	{1, 1, 1},             // white
}

// PaletteColor looks up a standard color index.
func PaletteColor(index int64) (Color, bool) {
	if index < 0 || index >= int64(len(Palette)) {
		return Color{}, false
	}
	return Palette[index], true
}

const (
	DefaultAngle = 270.0 // due north
	DefaultColor = 15    // white
)

// Turtle is the pose and pen state of one turtle. The Space hands out copies only.
type Turtle struct {
	ID      int
	X, Y    float64
	Angle   float64
	Visible bool
	PenDown bool
	Pen     Color
	Width   float64
	Height  float64
}
