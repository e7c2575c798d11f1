package value

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

type Kind uint8

const (
	NOTHING Kind = iota
	INT
	FLOAT
	STRING
)

var kindNames = [...]string{"NOTHING", "INT", "FLOAT", "STRING"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UNKNOWN"
}

var (
	ErrBadOperand   = errors.New("bad operand")
	ErrDivideByZero = errors.New("division by zero")
)

// Value is the result of every expression, local variable and parameter.
// It is a small immutable struct passed by value, so producing one never allocates
// beyond the string it may carry.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

var (
	Nothing = Value{}
	True    = Int(1)
	False   = Int(0)
)

func Int(i int64) Value     { return Value{kind: INT, i: i} }
func Float(f float64) Value { return Value{kind: FLOAT, f: f} }
func Str(s string) Value    { return Value{kind: STRING, s: s} }

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func (v Value) Kind() Kind          { return v.kind }
func (v Value) IsNothing() bool     { return v.kind == NOTHING }
func (v Value) IsNumeric() bool     { return v.kind == INT || v.kind == FLOAT }
func (v Value) IsString() bool      { return v.kind == STRING }
func (v Value) IntValue() int64     { return v.i }
func (v Value) FloatValue() float64 { return v.f }

// AsFloat returns the numeric value promoted to float64.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case INT:
		return float64(v.i), true
	case FLOAT:
		return v.f, true
	}
	return 0, false
}

// AsInt returns the value as an integer when it is an Int or an integral Float.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case INT:
		return v.i, true
	case FLOAT:
		if v.f == math.Trunc(v.f) && !math.IsInf(v.f, 0) && !math.IsNaN(v.f) {
			return int64(v.f), true
		}
	}
	return 0, false
}

// Text returns the string payload when the value is a string.
func (v Value) Text() (string, bool) {
	if v.kind == STRING {
		return v.s, true
	}
	return "", false
}

// Truthy: non-zero numerics and non-empty strings.
func (v Value) Truthy() bool {
	switch v.kind {
	case INT:
		return v.i != 0
	case FLOAT:
		return v.f != 0
	case STRING:
		return v.s != ""
	}
	return false
}

func (v Value) String() string {
	switch v.kind {
	case INT:
		return strconv.FormatInt(v.i, 10)
	case FLOAT:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case STRING:
		return v.s
	}
	return "nothing"
}

// Inspect renders the value the way it would be written in source.
func (v Value) Inspect() string {
	if v.kind == STRING {
		return strconv.Quote(v.s)
	}
	return v.String()
}

// Parse converts text to an Int or Float; ok is false for anything else.
func Parse(text string) (Value, bool) {
	text = strings.TrimSpace(text)
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return Int(i), true
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return Float(f), true
	}
	return Nothing, false
}
