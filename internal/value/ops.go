package value

import (
	"math"
	"strings"
)

func Add(a, b Value) (Value, error) {
	if a.kind == STRING || b.kind == STRING {
		if a.kind == NOTHING || b.kind == NOTHING {
			return Nothing, ErrBadOperand
		}
		return Str(a.String() + b.String()), nil
	}
	return arith(a, b,
		func(x, y int64) int64 { return x + y },
		func(x, y float64) float64 { return x + y })
}

func Sub(a, b Value) (Value, error) {
	return arith(a, b,
		func(x, y int64) int64 { return x - y },
		func(x, y float64) float64 { return x - y })
}

func Mul(a, b Value) (Value, error) {
	return arith(a, b,
		func(x, y int64) int64 { return x * y },
		func(x, y float64) float64 { return x * y })
}

// Div keeps integer results when the division is exact and promotes to float otherwise.
func Div(a, b Value) (Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Nothing, ErrBadOperand
	}
	if a.kind == INT && b.kind == INT {
		if b.i == 0 {
			return Nothing, ErrDivideByZero
		}
		if a.i%b.i == 0 {
			return Int(a.i / b.i), nil
		}
		return Float(float64(a.i) / float64(b.i)), nil
	}
	x, _ := a.AsFloat()
	y, _ := b.AsFloat()
	if y == 0 {
		return Nothing, ErrDivideByZero
	}
	return Float(x / y), nil
}

func Mod(a, b Value) (Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Nothing, ErrBadOperand
	}
	if a.kind == INT && b.kind == INT {
		if b.i == 0 {
			return Nothing, ErrDivideByZero
		}
		return Int(a.i % b.i), nil
	}
	x, _ := a.AsFloat()
	y, _ := b.AsFloat()
	if y == 0 {
		return Nothing, ErrDivideByZero
	}
	return Float(math.Mod(x, y)), nil
}

func Neg(a Value) (Value, error) {
	switch a.kind {
	case INT:
		return Int(-a.i), nil
	case FLOAT:
		return Float(-a.f), nil
	}
	return Nothing, ErrBadOperand
}

func Not(a Value) Value {
	return Bool(!a.Truthy())
}

// Equal never fails: values of different kinds are simply unequal,
// except that ints and floats compare numerically.
func Equal(a, b Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		if a.kind == INT && b.kind == INT {
			return a.i == b.i
		}
		x, _ := a.AsFloat()
		y, _ := b.AsFloat()
		return x == y
	}
	if a.kind != b.kind {
		return false
	}
	return a.kind == NOTHING || a.s == b.s
}

// Compare orders two numerics or two strings, returning -1, 0 or +1.
func Compare(a, b Value) (int, error) {
	switch {
	case a.kind == INT && b.kind == INT:
		switch {
		case a.i < b.i:
			return -1, nil
		case a.i > b.i:
			return 1, nil
		}
		return 0, nil
	case a.IsNumeric() && b.IsNumeric():
		x, _ := a.AsFloat()
		y, _ := b.AsFloat()
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
		return 0, nil
	case a.kind == STRING && b.kind == STRING:
		return strings.Compare(a.s, b.s), nil
	}
	return 0, ErrBadOperand
}

func arith(a, b Value, ints func(x, y int64) int64, floats func(x, y float64) float64) (Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Nothing, ErrBadOperand
	}
	if a.kind == INT && b.kind == INT {
		return Int(ints(a.i, b.i)), nil
	}
	x, _ := a.AsFloat()
	y, _ := b.AsFloat()
	return Float(floats(x, y)), nil
}
