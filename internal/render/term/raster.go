package term

import (
	"math"

	"github.com/xyproto/vt"

	"tortuga/internal/geom"
	"tortuga/internal/turtle"
)

type cell struct {
	X, Y uint
}

// grid maps surface coordinates onto a cols x rows character grid.
type grid struct {
	width, height float64
	cols, rows    uint
}

func (g grid) cellOf(x, y float64) (cell, bool) {
	if g.cols == 0 || g.rows == 0 || x < 0 || y < 0 || x >= g.width || y >= g.height {
		return cell{}, false
	}
	cx := uint(math.Floor(x * float64(g.cols) / g.width))
	cy := uint(math.Floor(y * float64(g.rows) / g.height))
	return cell{min(cx, g.cols-1), min(cy, g.rows-1)}, true
}

// line walks the cells from a to b with Bresenham's algorithm, both ends
// included. The segment is clipped to the surface first, so the walk never
// leaves the grid however far the ends are.
func (g grid) line(x1, y1, x2, y2 float64, plot func(cell)) {
	x1, y1, x2, y2, ok := g.clip(x1, y1, x2, y2)
	if !ok {
		return
	}
	ax, ay := g.scaled(x1, y1)
	bx, by := g.scaled(x2, y2)

	dx := abs(bx - ax)
	dy := -abs(by - ay)
	sx, sy := 1, 1
	if ax > bx {
		sx = -1
	}
	if ay > by {
		sy = -1
	}
	e := dx + dy
	for {
		if ax >= 0 && ay >= 0 && ax < int(g.cols) && ay < int(g.rows) {
			plot(cell{uint(ax), uint(ay)})
		}
		if ax == bx && ay == by {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			ax += sx
		}
		if e2 <= dx {
			e += dx
			ay += sy
		}
	}
}

// clip cuts the segment to [0,width]x[0,height] (Liang-Barsky). ok is false
// when nothing of it lies on the surface or a coordinate is not finite.
func (g grid) clip(x1, y1, x2, y2 float64) (float64, float64, float64, float64, bool) {
	for _, v := range [...]float64{x1, y1, x2, y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, 0, 0, false
		}
	}
	dx, dy := x2-x1, y2-y1
	t0, t1 := 0.0, 1.0
	edges := [...]struct{ p, q float64 }{
		{-dx, x1},
		{dx, g.width - x1},
		{-dy, y1},
		{dy, g.height - y1},
	}
	for _, e := range edges {
		if e.p == 0 {
			if e.q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := e.q / e.p
		if e.p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = min(t1, r)
		}
	}
	cx := func(v float64) float64 { return math.Min(math.Max(v, 0), g.width) }
	cy := func(v float64) float64 { return math.Min(math.Max(v, 0), g.height) }
	return cx(x1 + t0*dx), cy(y1 + t0*dy), cx(x1 + t1*dx), cy(y1 + t1*dy), true
}

func (g grid) scaled(x, y float64) (int, int) {
	cx := int(math.Floor(x * float64(g.cols) / g.width))
	cy := int(math.Floor(y * float64(g.rows) / g.height))
	// the far edge belongs to the last cell
	if x == g.width {
		cx = int(g.cols) - 1
	}
	if y == g.height {
		cy = int(g.rows) - 1
	}
	return cx, cy
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

var terminalColors = []struct {
	name string
	c    vt.AttributeColor
	rgb  turtle.Color
}{
	{"background", vt.DefaultBackground, turtle.Color{R: 0, G: 0, B: 0}},
	{"blue", vt.Blue, turtle.Color{R: 0, G: 0, B: 0.667}},
	{"green", vt.Green, turtle.Color{R: 0, G: 0.667, B: 0}},
	{"cyan", vt.Cyan, turtle.Color{R: 0, G: 0.667, B: 0.667}},
	{"red", vt.Red, turtle.Color{R: 0.667, G: 0, B: 0}},
	{"magenta", vt.Magenta, turtle.Color{R: 0.667, G: 0, B: 0.667}},
	{"yellow", vt.Yellow, turtle.Color{R: 0.667, G: 0.667, B: 0}},
	{"light gray", vt.LightGray, turtle.Color{R: 0.667, G: 0.667, B: 0.667}},
	{"light red", vt.LightRed, turtle.Color{R: 1, G: 0.333, B: 0.333}},
	{"light green", vt.LightGreen, turtle.Color{R: 0.333, G: 1, B: 0.333}},
	{"white", vt.White, turtle.Color{R: 1, G: 1, B: 1}},
}

// nearestColor is the index of the closest terminal color.
func nearestColor(c turtle.Color) int {
	best, bestDist := 0, math.MaxFloat64
	for i, tc := range terminalColors {
		dr := float64(c.R - tc.rgb.R)
		dg := float64(c.G - tc.rgb.G)
		db := float64(c.B - tc.rgb.B)
		if d := dr*dr + dg*dg + db*db; d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func colorFor(c turtle.Color) vt.AttributeColor {
	return terminalColors[nearestColor(c)].c
}

// Headings in 45 degree sectors starting east, clockwise because y grows down.
var headings = [...]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

func glyphFor(angle float64) rune {
	sector := int(math.Floor((geom.NormalizeAngle(angle)+22.5)/45)) % len(headings)
	return headings[sector]
}
