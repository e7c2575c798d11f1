package stdlib

import (
	"fmt"
	"strings"

	"tortuga/internal/logic"
	"tortuga/internal/turtle"
	"tortuga/internal/value"
)

// Strings are indexed by rune. Range checks are strict on the end index: a
// slice may never reach the last character's successor, so strLeft(s, len(s))
// and subStr(s, 0, len(s)) both fail.
func registerStrings(r *Registry) {
	r.register("strLen", 1, false, func(f *logic.Frame, _ *turtle.Space) (value.Value, error) {
		s, err := text(f, 0)
		if err != nil {
			return value.Nothing, err
		}
		return value.Int(int64(len([]rune(s)))), nil
	})
	r.register("strLeft", 2, false, func(f *logic.Frame, _ *turtle.Space) (value.Value, error) {
		runes, n, err := textAndCount(f)
		if err != nil {
			return value.Nothing, err
		}
		return value.Str(string(runes[:n])), nil
	})
	r.register("strRight", 2, false, func(f *logic.Frame, _ *turtle.Space) (value.Value, error) {
		runes, n, err := textAndCount(f)
		if err != nil {
			return value.Nothing, err
		}
		return value.Str(string(runes[int64(len(runes))-n:])), nil
	})
	r.register("subStr", 3, false, func(f *logic.Frame, _ *turtle.Space) (value.Value, error) {
		s, err := text(f, 0)
		if err != nil {
			return value.Nothing, err
		}
		start, err := integer(f, 1)
		if err != nil {
			return value.Nothing, err
		}
		count, err := integer(f, 2)
		if err != nil {
			return value.Nothing, err
		}
		runes := []rune(s)
		size := int64(len(runes))
		if count < 0 || start < 0 || start >= size || count >= size-start {
			return value.Nothing, fmt.Errorf("%w: subStr(%q, %d, %d)", ErrOutOfRange, s, start, count)
		}
		return value.Str(string(runes[start : start+count])), nil
	})
	r.register("strUpper", 1, false, func(f *logic.Frame, _ *turtle.Space) (value.Value, error) {
		s, err := text(f, 0)
		if err != nil {
			return value.Nothing, err
		}
		return value.Str(strings.ToUpper(s)), nil
	})
	r.register("strLower", 1, false, func(f *logic.Frame, _ *turtle.Space) (value.Value, error) {
		s, err := text(f, 0)
		if err != nil {
			return value.Nothing, err
		}
		return value.Str(strings.ToLower(s)), nil
	})
	r.register("strFind", 2, false, func(f *logic.Frame, _ *turtle.Space) (value.Value, error) {
		s, err := text(f, 0)
		if err != nil {
			return value.Nothing, err
		}
		sub, err := text(f, 1)
		if err != nil {
			return value.Nothing, err
		}
		idx := strings.Index(s, sub)
		if idx < 0 {
			return value.Int(-1), nil
		}
		return value.Int(int64(len([]rune(s[:idx])))), nil
	})
	r.register("toString", 1, false, func(f *logic.Frame, _ *turtle.Space) (value.Value, error) {
		return value.Str(f.Arg(0).String()), nil
	})
	r.register("toNumber", 1, false, func(f *logic.Frame, _ *turtle.Space) (value.Value, error) {
		arg := f.Arg(0)
		if arg.IsNumeric() {
			return arg, nil
		}
		s, err := text(f, 0)
		if err != nil {
			return value.Nothing, err
		}
		v, ok := value.Parse(s)
		if !ok {
			return value.Nothing, badArgument(f, 0, "a numeric string")
		}
		return v, nil
	})
}

// textAndCount reads (str, n) arguments and checks 0 <= n < len(str).
func textAndCount(f *logic.Frame) ([]rune, int64, error) {
	s, err := text(f, 0)
	if err != nil {
		return nil, 0, err
	}
	n, err := integer(f, 1)
	if err != nil {
		return nil, 0, err
	}
	runes := []rune(s)
	if n < 0 || n >= int64(len(runes)) {
		return nil, 0, fmt.Errorf("%w: %s(%q, %d)", ErrOutOfRange, f.Proc.Name(), s, n)
	}
	return runes, n, nil
}
