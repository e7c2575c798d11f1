package term

import (
	"math"
	"testing"

	"github.com/xyproto/vt"

	"tortuga/internal/turtle"
)

type fakeCanvas struct {
	cols, rows uint
	cells      map[cell]glyph
	draws      int
	clears     int
}

func newFakeCanvas(cols, rows uint) *fakeCanvas {
	return &fakeCanvas{cols: cols, rows: rows, cells: make(map[cell]glyph)}
}

func (f *fakeCanvas) Size() (uint, uint) { return f.cols, f.rows }
func (f *fakeCanvas) Clear()             { clear(f.cells); f.clears++ }
func (f *fakeCanvas) Draw()              { f.draws++ }
func (f *fakeCanvas) WriteRune(x, y uint, fg, _ vt.AttributeColor, r rune) {
	f.cells[cell{x, y}] = glyph{r, fg}
}

func TestCellOf(t *testing.T) {
	g := grid{width: 200, height: 100, cols: 20, rows: 10}

	tests := []struct {
		x, y float64
		want cell
		ok   bool
	}{
		{0, 0, cell{0, 0}, true},
		{9.99, 9.99, cell{0, 0}, true},
		{10, 10, cell{1, 1}, true},
		{199.9, 99.9, cell{19, 9}, true},
		{200, 50, cell{}, false},
		{-0.1, 50, cell{}, false},
	}

	for _, tt := range tests {
		got, ok := g.cellOf(tt.x, tt.y)
		if ok != tt.ok || got != tt.want {
			t.Errorf("cellOf(%v,%v): want %v %v, got %v %v", tt.x, tt.y, tt.want, tt.ok, got, ok)
		}
	}
}

func TestLine(t *testing.T) {
	g := grid{width: 10, height: 10, cols: 10, rows: 10}

	tests := []struct {
		name           string
		x1, y1, x2, y2 float64
		want           []cell
	}{
		{"point", 3, 3, 3, 3, []cell{{3, 3}}},
		{"horizontal", 1, 2, 4, 2, []cell{{1, 2}, {2, 2}, {3, 2}, {4, 2}}},
		{"backwards", 4, 2, 1, 2, []cell{{4, 2}, {3, 2}, {2, 2}, {1, 2}}},
		{"diagonal", 0, 0, 3, 3, []cell{{0, 0}, {1, 1}, {2, 2}, {3, 3}}},
		{"steep", 0, 0, 1, 3, []cell{{0, 0}, {0, 1}, {1, 2}, {1, 3}}},
		{"far edge", 8, 0, 10, 0, []cell{{8, 0}, {9, 0}}},
		{"clipped", -2, 5, 1, 5, []cell{{0, 5}, {1, 5}}},
		{"far end", 5, 5, 1e12, 5, []cell{{5, 5}, {6, 5}, {7, 5}, {8, 5}, {9, 5}}},
		{"both ends far", -1e15, 2, 1e15, 2, []cell{{0, 2}, {1, 2}, {2, 2}, {3, 2}, {4, 2}, {5, 2}, {6, 2}, {7, 2}, {8, 2}, {9, 2}}},
		{"off the surface", 20, 20, 30, 30, nil},
		{"not finite", 5, 5, math.Inf(1), 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []cell
			g.line(tt.x1, tt.y1, tt.x2, tt.y2, func(c cell) { got = append(got, c) })
			if len(got) != len(tt.want) {
				t.Fatalf("want %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("want %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestNearestColor(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "background"},
		{1, "blue"},
		{4, "red"},
		{7, "light gray"},
		{8, "background"},
		{12, "light red"},
		{15, "white"},
	}
	for _, tt := range tests {
		if got := terminalColors[nearestColor(turtle.Palette[tt.index])].name; got != tt.want {
			t.Errorf("palette %d: want %s, got %s", tt.index, tt.want, got)
		}
	}
}

func TestGlyphFor(t *testing.T) {
	tests := map[float64]rune{0: '→', 90: '↓', 180: '←', 270: '↑', 350: '→', 45: '↘', -45: '↗'}
	for angle, want := range tests {
		if got := glyphFor(angle); got != want {
			t.Errorf("glyphFor(%v): want %q, got %q", angle, want, got)
		}
	}
}

func TestBlankRestoresTrail(t *testing.T) {
	c := newFakeCanvas(20, 20)
	r := New(c, 200, 200, 10, 10)
	r.NotifyGrabbed()
	white := turtle.Palette[turtle.DefaultColor]

	r.RenderLine(100, 100, 100, 50, white)
	tu := turtle.Turtle{ID: 0, X: 100, Y: 100, Angle: 270, Pen: white}
	r.RenderTurtle(tu)
	if got := c.cells[cell{10, 10}].r; got != '↑' {
		t.Fatalf("turtle glyph: got %q", got)
	}

	r.BlankTurtle(tu)
	if got := c.cells[cell{10, 10}].r; got != trailRune {
		t.Errorf("blanking should restore the line under the turtle, got %q", got)
	}

	tu.X = 15
	r.RenderTurtle(tu)
	r.BlankTurtle(tu)
	if got := c.cells[cell{1, 10}].r; got != ' ' {
		t.Errorf("blanking on empty ground should clear the cell, got %q", got)
	}

	r.RenderString(180, 0, 0, white, "hello")
	if got := c.cells[cell{18, 0}].r; got != 'h' {
		t.Errorf("string start: got %q", got)
	}
	if got := c.cells[cell{19, 0}].r; got != 'e' {
		t.Errorf("string should be cut at the right edge, got %q", got)
	}

	draws := c.draws
	r.Cleanup()
	if c.draws != draws+1 {
		t.Errorf("cleanup must draw the final frame")
	}
}
