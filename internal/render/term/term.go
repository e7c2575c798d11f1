// Package term draws turtle programs as character cells on a text terminal.
package term

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xyproto/vt"

	"tortuga/internal/turtle"
)

const (
	trailRune = '•'
	frameRate = 16 * time.Millisecond
)

// Canvas is the part of *vt.Canvas the renderer paints on.
type Canvas interface {
	Size() (uint, uint)
	Clear()
	WriteRune(x, y uint, fg, bg vt.AttributeColor, r rune)
	Draw()
}

type glyph struct {
	r  rune
	fg vt.AttributeColor
}

// Renderer implements turtle.Renderer over a Canvas. Lines and text are kept
// as a trail so that blanking a turtle can restore what it covered.
type Renderer struct {
	mu       sync.Mutex
	canvas   Canvas
	grid     grid
	turtleW  float64
	turtleH  float64
	trail    map[cell]glyph
	turtles  map[int]cell
	lastDraw time.Time
}

func New(c Canvas, width, height, turtleW, turtleH float64) *Renderer {
	cols, rows := c.Size()
	return &Renderer{
		canvas:  c,
		grid:    grid{width: width, height: height, cols: cols, rows: rows},
		turtleW: turtleW,
		turtleH: turtleH,
		trail:   make(map[cell]glyph),
		turtles: make(map[int]cell),
	}
}

func (r *Renderer) SurfaceWidth() float64          { return r.grid.width }
func (r *Renderer) SurfaceHeight() float64         { return r.grid.height }
func (r *Renderer) PreferredTurtleWidth() float64  { return r.turtleW }
func (r *Renderer) PreferredTurtleHeight() float64 { return r.turtleH }

// NotifyGrabbed starts a fresh picture.
func (r *Renderer) NotifyGrabbed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.trail)
	clear(r.turtles)
	r.canvas.Clear()
	r.flush(true)
}

func (r *Renderer) NotifyUngrabbed() {}

func (r *Renderer) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flush(true)
}

func (r *Renderer) RenderLine(x1, y1, x2, y2 float64, c turtle.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := glyph{trailRune, colorFor(c)}
	r.grid.line(x1, y1, x2, y2, func(at cell) {
		r.trail[at] = g
		r.put(at, g)
	})
	r.flush(false)
}

func (r *Renderer) RenderTurtle(t turtle.Turtle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	at, ok := r.grid.cellOf(t.X, t.Y)
	if !ok {
		return
	}
	r.turtles[t.ID] = at
	r.put(at, glyph{glyphFor(t.Angle), colorFor(t.Pen)})
	r.flush(false)
}

func (r *Renderer) BlankTurtle(t turtle.Turtle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	at, ok := r.turtles[t.ID]
	if !ok {
		return
	}
	delete(r.turtles, t.ID)
	r.restore(at)
	r.flush(false)
}

// RenderString writes text left to right from the turtle's cell; the angle is
// ignored on a character grid.
func (r *Renderer) RenderString(x, y, _ float64, c turtle.Color, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	at, ok := r.grid.cellOf(x, y)
	if !ok {
		return
	}
	fg := colorFor(c)
	for _, ch := range text {
		if at.X >= r.grid.cols {
			break
		}
		r.trail[at] = glyph{ch, fg}
		r.put(at, glyph{ch, fg})
		at.X++
	}
	r.flush(false)
}

func (r *Renderer) restore(at cell) {
	if g, ok := r.trail[at]; ok {
		r.put(at, g)
		return
	}
	r.put(at, glyph{' ', vt.DefaultBackground})
}

func (r *Renderer) put(at cell, g glyph) {
	r.canvas.WriteRune(at.X, at.Y, g.fg, vt.DefaultBackground, g.r)
}

// flush pushes the canvas to the terminal at most once per frame unless forced.
func (r *Renderer) flush(force bool) {
	now := time.Now()
	if !force && now.Sub(r.lastDraw) < frameRate {
		return
	}
	r.lastDraw = now
	r.canvas.Draw()
}

// Terminal owns the tty and the vt canvas for the lifetime of a session.
type Terminal struct {
	tty    *vt.TTY
	canvas *vt.Canvas
}

func Open() (*Terminal, error) {
	tty, err := vt.NewTTY()
	if err != nil {
		return nil, fmt.Errorf("terminal unavailable: %w", err)
	}
	vt.Init()
	c := vt.NewCanvas()
	c.HideCursor()
	return &Terminal{tty: tty, canvas: c}, nil
}

func (t *Terminal) Canvas() *vt.Canvas { return t.canvas }

// WaitKey blocks until a key is pressed or ctx is done, so the final picture
// stays on screen.
func (t *Terminal) WaitKey(ctx context.Context) {
	t.tty.SetTimeout(50 * time.Millisecond)
	for ctx.Err() == nil {
		if t.tty.CustomString() != "" {
			return
		}
	}
}

func (t *Terminal) Close() {
	t.tty.Close()
	vt.Close()
	fmt.Print(vt.Stop())
	fmt.Println()
}
