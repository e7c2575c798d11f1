// Package flow defines the signals that stop normal evaluation: a user or host
// requested halt, and the three phase failures (parse, link, exec).
package flow

import (
	"errors"
	"fmt"
)

type Kind int

const (
	HALT Kind = iota
	PARSE
	LINK
	EXEC
)

func (k Kind) String() string {
	switch k {
	case HALT:
		return "halt"
	case PARSE:
		return "parse failure"
	case LINK:
		return "link failure"
	case EXEC:
		return "exec failure"
	default:
		return "unknown"
	}
}

// Signal is returned in place of a value to unwind evaluation to the nearest
// phase boundary. Proc and Line are filled in when known (zero values otherwise).
type Signal struct {
	Kind       Kind
	Msg        string
	Proc       string
	Line       int
	Incomplete bool // parse failure hit end of input
	Err        error
}

func (s *Signal) Error() string {
	if s.Kind == HALT {
		if s.Msg == "" {
			return "halted"
		}
		return s.Msg
	}
	where := ""
	switch {
	case s.Proc != "" && s.Line > 0:
		where = fmt.Sprintf(" in '%s' at line %d", s.Proc, s.Line)
	case s.Proc != "":
		where = fmt.Sprintf(" in '%s'", s.Proc)
	case s.Line > 0:
		where = fmt.Sprintf(" at line %d", s.Line)
	}
	return fmt.Sprintf("%s%s: %s", s.Kind, where, s.Msg)
}

func (s *Signal) Unwrap() error { return s.Err }

func Halt(msg string) *Signal {
	return &Signal{Kind: HALT, Msg: msg}
}

func Parse(line int, format string, args ...any) *Signal {
	return &Signal{Kind: PARSE, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func Link(proc string, line int, format string, args ...any) *Signal {
	return &Signal{Kind: LINK, Proc: proc, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func Exec(format string, args ...any) *Signal {
	return &Signal{Kind: EXEC, Msg: fmt.Sprintf(format, args...)}
}

// ExecFrom wraps a library error (turtle, value) as an exec failure keeping it
// reachable through errors.Is.
func ExecFrom(err error) *Signal {
	var s *Signal
	if errors.As(err, &s) {
		return s
	}
	return &Signal{Kind: EXEC, Msg: err.Error(), Err: err}
}

// Locate fills in the procedure and line if they are still unknown.
func (s *Signal) Locate(proc string, line int) *Signal {
	if s.Kind == HALT {
		return s
	}
	if s.Proc == "" {
		s.Proc = proc
	}
	if s.Line == 0 {
		s.Line = line
	}
	return s
}

// As extracts a *Signal from err.
func As(err error) (*Signal, bool) {
	var s *Signal
	if errors.As(err, &s) {
		return s, true
	}
	return nil, false
}

func IsHalt(err error) bool {
	return IsKind(err, HALT)
}

func IsKind(err error, k Kind) bool {
	s, ok := As(err)
	return ok && s.Kind == k
}
