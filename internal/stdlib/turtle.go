package stdlib

import (
	"tortuga/internal/logic"
	"tortuga/internal/turtle"
	"tortuga/internal/value"
)

func registerTurtle(r *Registry) {
	r.register("addTurtle", 0, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		return value.Int(int64(sp.AddTurtle())), nil
	})
	r.register("useTurtle", 1, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		id, err := integer(f, 0)
		if err != nil {
			return value.Nothing, err
		}
		return value.Nothing, sp.UseTurtle(id)
	})
	r.register("removeTurtle", 1, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		id, err := integer(f, 0)
		if err != nil {
			return value.Nothing, err
		}
		sp.RemoveTurtle(id)
		return value.Nothing, nil
	})
	r.register("getTurtleCount", 0, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		return value.Int(int64(sp.Count())), nil
	})
	r.register("getCurrentTurtle", 0, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		id, ok := sp.Current()
		if !ok {
			return value.Int(-1), nil
		}
		return value.Int(int64(id)), nil
	})

	r.register("goForward", 1, true, moveBy(1))
	r.register("goBackward", 1, true, moveBy(-1))
	r.register("turnRight", 1, true, turnBy(1))
	r.register("turnLeft", 1, true, turnBy(-1))

	r.register("setAngle", 1, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		deg, err := number(f, 0)
		if err != nil {
			return value.Nothing, err
		}
		return value.Nothing, sp.SetAngle(deg)
	})
	r.register("getAngle", 0, true, pose(func(t turtle.Turtle) value.Value { return value.Float(t.Angle) }))
	r.register("getTurtleX", 0, true, pose(func(t turtle.Turtle) value.Value { return value.Float(t.X) }))
	r.register("getTurtleY", 0, true, pose(func(t turtle.Turtle) value.Value { return value.Float(t.Y) }))
	r.register("isPenDown", 0, true, pose(func(t turtle.Turtle) value.Value { return value.Bool(t.PenDown) }))
	r.register("isTurtleVisible", 0, true, pose(func(t turtle.Turtle) value.Value { return value.Bool(t.Visible) }))

	r.register("setTurtleXY", 2, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		x, err := number(f, 0)
		if err != nil {
			return value.Nothing, err
		}
		y, err := number(f, 1)
		if err != nil {
			return value.Nothing, err
		}
		return value.Nothing, sp.SetPosition(x, y)
	})
	r.register("homeTurtle", 0, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		return value.Nothing, sp.Home()
	})

	r.register("penUp", 0, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		return value.Nothing, sp.SetPenDown(false)
	})
	r.register("penDown", 0, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		return value.Nothing, sp.SetPenDown(true)
	})
	r.register("showTurtle", 0, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		return value.Nothing, sp.SetVisible(true)
	})
	r.register("hideTurtle", 0, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		return value.Nothing, sp.SetVisible(false)
	})

	r.register("setPenColor", 1, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		idx, err := integer(f, 0)
		if err != nil {
			return value.Nothing, err
		}
		c, ok := turtle.PaletteColor(idx)
		if !ok {
			return value.Nothing, badArgument(f, 0, "a color index from 0 to 15")
		}
		return value.Nothing, sp.SetPenColor(c)
	})
	r.register("setPenColorRGB", 3, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		var rgb [3]float32
		for i := range rgb {
			n, err := number(f, i)
			if err != nil {
				return value.Nothing, err
			}
			if n < 0 || n > 1 {
				return value.Nothing, badArgument(f, i, "a color component from 0 to 1")
			}
			rgb[i] = float32(n)
		}
		return value.Nothing, sp.SetPenColor(turtle.Color{R: rgb[0], G: rgb[1], B: rgb[2]})
	})

	r.register("enableFence", 0, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		return value.Nothing, sp.SetFence(true)
	})
	r.register("disableFence", 0, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		return value.Nothing, sp.SetFence(false)
	})
	r.register("setFence", 1, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		return value.Nothing, sp.SetFence(f.Arg(0).Truthy())
	})
	r.register("isFenceEnabled", 0, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		return value.Bool(sp.Fence()), nil
	})

	r.register("drawString", 1, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		return value.Nothing, sp.DrawString(f.Arg(0).String())
	})
	r.register("getSurfaceWidth", 0, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		return value.Float(sp.Width()), nil
	})
	r.register("getSurfaceHeight", 0, true, func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		return value.Float(sp.Height()), nil
	})
}

func moveBy(sign float64) Func {
	return func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		d, err := number(f, 0)
		if err != nil {
			return value.Nothing, err
		}
		return value.Nothing, sp.Advance(sign * d)
	}
}

// turnBy rotates clockwise on screen for a positive sign: y grows downward, so
// the angle increases.
func turnBy(sign float64) Func {
	return func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		deg, err := number(f, 0)
		if err != nil {
			return value.Nothing, err
		}
		return value.Nothing, sp.Rotate(sign * deg)
	}
}

func pose(get func(t turtle.Turtle) value.Value) Func {
	return func(f *logic.Frame, sp *turtle.Space) (value.Value, error) {
		t, err := sp.CurrentTurtle()
		if err != nil {
			return value.Nothing, err
		}
		return get(t), nil
	}
}
