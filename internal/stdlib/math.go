package stdlib

import (
	"fmt"
	"math"

	"tortuga/internal/geom"
	"tortuga/internal/logic"
	"tortuga/internal/turtle"
	"tortuga/internal/value"
)

// Trigonometry takes degrees, like every angle a program sees.
func registerMath(r *Registry) {
	r.register("abs", 1, false, func(f *logic.Frame, _ *turtle.Space) (value.Value, error) {
		v := f.Arg(0)
		if v.Kind() == value.INT {
			switch n := v.IntValue(); {
			case n == math.MinInt64:
				// -MinInt64 does not fit in an Int
				return value.Float(-float64(n)), nil
			case n < 0:
				return value.Int(-n), nil
			}
			return v, nil
		}
		x, err := number(f, 0)
		if err != nil {
			return value.Nothing, err
		}
		return value.Float(math.Abs(x)), nil
	})
	r.register("sqrt", 1, false, func(f *logic.Frame, _ *turtle.Space) (value.Value, error) {
		x, err := number(f, 0)
		if err != nil {
			return value.Nothing, err
		}
		if x < 0 {
			return value.Nothing, badArgument(f, 0, "a non-negative number")
		}
		return value.Float(math.Sqrt(x)), nil
	})
	r.register("round", 1, false, unary(func(x float64) value.Value { return value.Int(int64(math.Round(x))) }))
	r.register("floor", 1, false, unary(func(x float64) value.Value { return value.Int(int64(math.Floor(x))) }))
	r.register("sin", 1, false, unary(func(x float64) value.Value { return value.Float(math.Sin(geom.ToRadians(x))) }))
	r.register("cos", 1, false, unary(func(x float64) value.Value { return value.Float(math.Cos(geom.ToRadians(x))) }))
	r.register("tan", 1, false, unary(func(x float64) value.Value { return value.Float(math.Tan(geom.ToRadians(x))) }))

	r.register("roundTo", 2, false, func(f *logic.Frame, _ *turtle.Space) (value.Value, error) {
		x, err := number(f, 0)
		if err != nil {
			return value.Nothing, err
		}
		places, err := integer(f, 1)
		if err != nil {
			return value.Nothing, err
		}
		if places < 0 || places > 15 {
			return value.Nothing, badArgument(f, 1, "a place count from 0 to 15")
		}
		return value.Float(geom.Round(x, int(places))), nil
	})

	r.register("random", 2, false, func(f *logic.Frame, _ *turtle.Space) (value.Value, error) {
		lo, err := integer(f, 0)
		if err != nil {
			return value.Nothing, err
		}
		hi, err := integer(f, 1)
		if err != nil {
			return value.Nothing, err
		}
		if hi < lo {
			return value.Nothing, fmt.Errorf("%w: random(%d, %d)", ErrOutOfRange, lo, hi)
		}
		span := uint64(hi-lo) + 1
		r.mu.Lock()
		var off uint64
		if span == 0 { // the full int64 range
			off = r.rng.Uint64()
		} else {
			off = r.rng.Uint64N(span)
		}
		r.mu.Unlock()
		return value.Int(lo + int64(off)), nil
	})

	r.register("distance", 4, false, func(f *logic.Frame, _ *turtle.Space) (value.Value, error) {
		var p [4]float64
		for i := range p {
			x, err := number(f, i)
			if err != nil {
				return value.Nothing, err
			}
			p[i] = x
		}
		return value.Float(geom.Distance(p[0], p[1], p[2], p[3])), nil
	})
}

func unary(fn func(x float64) value.Value) Func {
	return func(f *logic.Frame, _ *turtle.Space) (value.Value, error) {
		x, err := number(f, 0)
		if err != nil {
			return value.Nothing, err
		}
		return fn(x), nil
	}
}
