package turtle

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tortuga/internal/geom"
)

var (
	ErrNoCurrentTurtle = errors.New("no current turtle")
	ErrBadArgument     = errors.New("bad argument")
	ErrFence           = errors.New("turtle would leave the fence")
)

// Space owns every turtle, the fence flag and the current turtle selector.
// Every exported method is a critical section: a host repaint goroutine may call
// Snapshot while the engine is moving turtles.
type Space struct {
	mu       sync.Mutex
	renderer Renderer
	turtles  []*Turtle // nil entries are free ids
	free     []int     // freed ids, reused last-in first-out
	current  int       // -1 when no turtle is selected
	fence    bool
}

func NewSpace(r Renderer) *Space {
	return &Space{renderer: r, current: -1}
}

func (s *Space) Renderer() Renderer {
	return s.renderer
}

func (s *Space) NotifyGrabbed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderer.NotifyGrabbed()
}

func (s *Space) NotifyUngrabbed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderer.NotifyUngrabbed()
}

func (s *Space) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderer.Cleanup()
}

func (s *Space) Width() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer.SurfaceWidth()
}

func (s *Space) Height() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer.SurfaceHeight()
}

// Reset removes every turtle, disables the fence and creates one default
// turtle which becomes current.
func (s *Space) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.turtles {
		if t != nil && t.Visible {
			s.renderer.BlankTurtle(*t)
		}
	}
	s.turtles = s.turtles[:0]
	s.free = s.free[:0]
	s.fence = false
	s.current = s.addLocked()
}

func (s *Space) AddTurtle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked()
}

func (s *Space) addLocked() int {
	t := &Turtle{
		X:       s.renderer.SurfaceWidth() / 2,
		Y:       s.renderer.SurfaceHeight() / 2,
		Angle:   DefaultAngle,
		Visible: true,
		PenDown: true,
		Pen:     Palette[DefaultColor],
		Width:   s.renderer.PreferredTurtleWidth(),
		Height:  s.renderer.PreferredTurtleHeight(),
	}
	if n := len(s.free); n > 0 {
		t.ID = s.free[n-1]
		s.free = s.free[:n-1]
		s.turtles[t.ID] = t
	} else {
		t.ID = len(s.turtles)
		s.turtles = append(s.turtles, t)
	}
	slog.Debug("turtle added", slog.Int("id", t.ID))
	s.renderer.RenderTurtle(*t)
	return t.ID
}

func (s *Space) UseTurtle(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookup(id) == nil {
		return fmt.Errorf("%w: no turtle with id %d", ErrBadArgument, id)
	}
	s.current = int(id)
	return nil
}

// RemoveTurtle is a no-op for ids that are not in use.
func (s *Space) RemoveTurtle(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.lookup(id)
	if t == nil {
		return
	}
	if t.Visible {
		s.renderer.BlankTurtle(*t)
	}
	s.turtles[t.ID] = nil
	s.free = append(s.free, t.ID)
	if s.current == t.ID {
		s.current = -1
	}
	slog.Debug("turtle removed", slog.Int("id", t.ID))
}

// Current returns the selected turtle id.
func (s *Space) Current() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current >= 0
}

func (s *Space) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.turtles {
		if t != nil {
			n++
		}
	}
	return n
}

// Snapshot copies every live turtle, in id order.
func (s *Space) Snapshot() []Turtle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turtle, 0, len(s.turtles))
	for _, t := range s.turtles {
		if t != nil {
			out = append(out, *t)
		}
	}
	return out
}

// CurrentTurtle returns a copy of the selected turtle.
func (s *Space) CurrentTurtle() (Turtle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.currentLocked()
	if err != nil {
		return Turtle{}, err
	}
	return *t, nil
}

// Advance moves the current turtle distance units along its heading. The fence
// is checked before anything is drawn: a rejected move leaves no line behind and
// the turtle where it was.
func (s *Space) Advance(distance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.currentLocked()
	if err != nil {
		return err
	}
	x, y := geom.Advance(t.Angle, distance, t.X, t.Y)
	if err := s.checkFence(x, y); err != nil {
		return err
	}
	if t.Visible {
		s.renderer.BlankTurtle(*t)
	}
	if t.PenDown {
		s.renderer.RenderLine(t.X, t.Y, x, y, t.Pen)
	}
	t.X, t.Y = x, y
	if t.Visible {
		s.renderer.RenderTurtle(*t)
	}
	return nil
}

// SetPosition teleports the current turtle without drawing.
func (s *Space) SetPosition(x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.currentLocked()
	if err != nil {
		return err
	}
	if err := s.checkFence(x, y); err != nil {
		return err
	}
	s.update(t, func() { t.X, t.Y = x, y })
	return nil
}

// Home puts the current turtle back in the center, facing north.
func (s *Space) Home() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.currentLocked()
	if err != nil {
		return err
	}
	x, y := s.renderer.SurfaceWidth()/2, s.renderer.SurfaceHeight()/2
	s.update(t, func() {
		t.X, t.Y = x, y
		t.Angle = DefaultAngle
	})
	return nil
}

func (s *Space) Rotate(degrees float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.currentLocked()
	if err != nil {
		return err
	}
	s.update(t, func() { t.Angle = geom.NormalizeAngle(t.Angle + degrees) })
	return nil
}

func (s *Space) SetAngle(degrees float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.currentLocked()
	if err != nil {
		return err
	}
	s.update(t, func() { t.Angle = geom.NormalizeAngle(degrees) })
	return nil
}

func (s *Space) SetPenDown(down bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.currentLocked()
	if err != nil {
		return err
	}
	t.PenDown = down
	return nil
}

func (s *Space) SetPenColor(c Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.currentLocked()
	if err != nil {
		return err
	}
	s.update(t, func() { t.Pen = c })
	return nil
}

func (s *Space) SetVisible(visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.currentLocked()
	if err != nil {
		return err
	}
	if t.Visible == visible {
		return nil
	}
	t.Visible = visible
	if visible {
		s.renderer.RenderTurtle(*t)
	} else {
		s.renderer.BlankTurtle(*t)
	}
	return nil
}

// SetFence enables or disables the boundary. Enabling it while any turtle is
// already outside the surface fails and leaves the fence as it was.
func (s *Space) SetFence(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if enabled && !s.fence {
		w, h := s.renderer.SurfaceWidth(), s.renderer.SurfaceHeight()
		for _, t := range s.turtles {
			if t != nil && !geom.Within(t.X, t.Y, w, h) {
				return fmt.Errorf("%w: turtle %d is outside the surface", ErrFence, t.ID)
			}
		}
	}
	s.fence = enabled
	return nil
}

func (s *Space) Fence() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fence
}

// DrawString writes text at the current turtle's position along its heading.
func (s *Space) DrawString(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.currentLocked()
	if err != nil {
		return err
	}
	s.renderer.RenderString(t.X, t.Y, t.Angle, t.Pen, text)
	return nil
}

func (s *Space) lookup(id int64) *Turtle {
	if id < 0 || id >= int64(len(s.turtles)) {
		return nil
	}
	return s.turtles[id]
}

func (s *Space) currentLocked() (*Turtle, error) {
	if s.current < 0 {
		return nil, ErrNoCurrentTurtle
	}
	return s.turtles[s.current], nil
}

func (s *Space) checkFence(x, y float64) error {
	if !s.fence {
		return nil
	}
	if !geom.Within(x, y, s.renderer.SurfaceWidth(), s.renderer.SurfaceHeight()) {
		return fmt.Errorf("%w: (%.2f, %.2f)", ErrFence, x, y)
	}
	return nil
}

// update redraws a visible turtle around a pose change.
func (s *Space) update(t *Turtle, change func()) {
	if t.Visible {
		s.renderer.BlankTurtle(*t)
	}
	change()
	if t.Visible {
		s.renderer.RenderTurtle(*t)
	}
}
