package value

import (
	"errors"
	"testing"
)

func TestArithmetic(t *testing.T) {
	cases := []struct {
		name     string
		op       func(a, b Value) (Value, error)
		a, b     Value
		expected Value
	}{
		{"int + int", Add, Int(2), Int(3), Int(5)},
		{"int + float promotes", Add, Int(2), Float(0.5), Float(2.5)},
		{"string concat", Add, Str("x="), Int(4), Str("x=4")},
		{"concat float", Add, Float(1.5), Str("!"), Str("1.5!")},
		{"sub", Sub, Int(2), Int(5), Int(-3)},
		{"mul float", Mul, Float(1.5), Int(2), Float(3)},
		{"exact int division", Div, Int(10), Int(2), Int(5)},
		{"inexact int division", Div, Int(7), Int(2), Float(3.5)},
		{"int mod", Mod, Int(7), Int(3), Int(1)},
		{"float mod", Mod, Float(7.5), Int(2), Float(1.5)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			result, err := c.op(c.a, c.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Kind() != c.expected.Kind() || !Equal(result, c.expected) {
				t.Errorf("expected %s (%s), got %s (%s)", c.expected.Inspect(), c.expected.Kind(), result.Inspect(), result.Kind())
			}
		})
	}
}

func TestArithmeticErrors(t *testing.T) {
	cases := []struct {
		name string
		op   func(a, b Value) (Value, error)
		a, b Value
		err  error
	}{
		{"string minus", Sub, Str("a"), Int(1), ErrBadOperand},
		{"nothing plus", Add, Nothing, Int(1), ErrBadOperand},
		{"nothing concat", Add, Nothing, Str("a"), ErrBadOperand},
		{"int divide by zero", Div, Int(1), Int(0), ErrDivideByZero},
		{"float divide by zero", Div, Float(1), Float(0), ErrDivideByZero},
		{"mod by zero", Mod, Int(1), Int(0), ErrDivideByZero},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := c.op(c.a, c.b)
			if !errors.Is(err, c.err) {
				t.Errorf("expected %v, got %v", c.err, err)
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		v        Value
		expected bool
	}{
		{Int(0), false},
		{Int(-1), true},
		{Float(0), false},
		{Float(0.1), true},
		{Str(""), false},
		{Str("0"), true},
		{Nothing, false},
	}
	for _, c := range cases {
		if c.v.Truthy() != c.expected {
			t.Errorf("%s: expected truthy=%t", c.v.Inspect(), c.expected)
		}
	}
}

func TestCompare(t *testing.T) {
	if r, _ := Compare(Int(1), Float(1.5)); r != -1 {
		t.Errorf("expected 1 < 1.5")
	}
	if r, _ := Compare(Str("b"), Str("a")); r != 1 {
		t.Errorf("expected \"b\" > \"a\"")
	}
	if _, err := Compare(Str("b"), Int(1)); !errors.Is(err, ErrBadOperand) {
		t.Errorf("expected bad operand comparing string and int")
	}
	if Equal(Str("1"), Int(1)) {
		t.Errorf("string and int must not be equal")
	}
	if !Equal(Int(2), Float(2)) {
		t.Errorf("2 and 2.0 must be equal")
	}
	if !Equal(Nothing, Nothing) {
		t.Errorf("nothing must equal nothing")
	}
}

func TestParse(t *testing.T) {
	if v, ok := Parse(" 42 "); !ok || v.Kind() != INT || v.IntValue() != 42 {
		t.Errorf("expected int 42, got %s", v.Inspect())
	}
	if v, ok := Parse("2.5"); !ok || v.Kind() != FLOAT {
		t.Errorf("expected float, got %s", v.Inspect())
	}
	if _, ok := Parse("abc"); ok {
		t.Errorf("expected parse failure")
	}
}
