package engine

import (
	"fmt"
	"math"

	"tortuga/internal/flow"
	"tortuga/internal/logic"
	"tortuga/internal/value"
)

// block runs statements in order. returned reports that a return statement ended
// the procedure, with v its value.
func (e *Engine) block(f *logic.Frame, b *logic.Block) (returned bool, v value.Value, err error) {
	for _, s := range b.Statements {
		if e.halted.Load() {
			return false, value.Nothing, flow.Halt("")
		}
		f.Line = s.Line()
		returned, v, err = e.stmt(f, s)
		if err != nil {
			return false, value.Nothing, locate(err, f.Proc.Name(), s.Line())
		}
		if returned {
			return true, v, nil
		}
	}
	return false, value.Nothing, nil
}

func (e *Engine) stmt(f *logic.Frame, s logic.Stmt) (bool, value.Value, error) {
	switch s := s.(type) {
	case *logic.VarDecl:
		v := value.Nothing
		if s.Value != nil {
			var err error
			if v, err = e.eval(f, s.Value); err != nil {
				return false, v, err
			}
		}
		e.store(f, s.Target, v)

	case *logic.Assign:
		v, err := e.eval(f, s.Value)
		if err != nil {
			return false, v, err
		}
		e.store(f, s.Target, v)

	case *logic.If:
		for _, br := range s.Branches {
			cond, err := e.eval(f, br.Cond)
			if err != nil {
				return false, cond, err
			}
			if cond.Truthy() {
				return e.block(f, br.Body)
			}
		}
		if s.Else != nil {
			return e.block(f, s.Else)
		}

	case *logic.While:
		for {
			if e.halted.Load() {
				return false, value.Nothing, flow.Halt("")
			}
			cond, err := e.eval(f, s.Cond)
			if err != nil {
				return false, cond, err
			}
			if !cond.Truthy() {
				break
			}
			if returned, v, err := e.block(f, s.Body); err != nil || returned {
				return returned, v, err
			}
		}

	case *logic.For:
		return e.forLoop(f, s)

	case *logic.Repeat:
		count, err := e.eval(f, s.Count)
		if err != nil {
			return false, count, err
		}
		n, ok := repeatCount(count)
		if !ok {
			return false, value.Nothing, flow.Exec("bad argument: repeat count must be a finite number, got %s", count.Inspect())
		}
		for i := int64(0); i < n; i++ {
			if e.halted.Load() {
				return false, value.Nothing, flow.Halt("")
			}
			if returned, v, err := e.block(f, s.Body); err != nil || returned {
				return returned, v, err
			}
		}

	case *logic.Return:
		if s.Value == nil {
			return true, value.Nothing, nil
		}
		v, err := e.eval(f, s.Value)
		if err != nil {
			return false, v, err
		}
		return true, v, nil

	case *logic.Halt:
		return false, value.Nothing, flow.Halt("")

	case *logic.CallStmt:
		_, err := e.call(s.Call.Target, f, s.Call.Args)
		return false, value.Nothing, err

	default:
		return false, value.Nothing, flow.Exec("unknown statement %T", s)
	}
	return false, value.Nothing, nil
}

// forLoop counts from From to To inclusive. The counter is kept outside the loop
// variable: assigning to the variable in the body does not change the iteration.
func (e *Engine) forLoop(f *logic.Frame, s *logic.For) (bool, value.Value, error) {
	from, err := e.number(f, s.From, "for start")
	if err != nil {
		return false, value.Nothing, err
	}
	to, err := e.number(f, s.To, "for limit")
	if err != nil {
		return false, value.Nothing, err
	}
	step := value.Int(1)
	if s.Step != nil {
		if step, err = e.number(f, s.Step, "for step"); err != nil {
			return false, value.Nothing, err
		}
	} else if c, _ := value.Compare(from, to); c > 0 {
		step = value.Int(-1)
	}

	dir, _ := value.Compare(step, value.Int(0))
	if dir == 0 {
		return false, value.Nothing, flow.Exec("bad argument: for step must not be zero")
	}

	for i := from; ; {
		c, _ := value.Compare(i, to)
		if c == dir {
			break
		}
		if e.halted.Load() {
			return false, value.Nothing, flow.Halt("")
		}
		e.store(f, s.Target, i)
		if returned, v, err := e.block(f, s.Body); err != nil || returned {
			return returned, v, err
		}
		next, err := value.Add(i, step)
		if err != nil {
			return false, value.Nothing, flow.ExecFrom(err)
		}
		i = next
	}
	return false, value.Nothing, nil
}

func (e *Engine) number(f *logic.Frame, x logic.Expr, what string) (value.Value, error) {
	v, err := e.eval(f, x)
	if err != nil {
		return v, err
	}
	if !v.IsNumeric() {
		return v, flow.Exec("bad argument: %s must be a number, got %s", what, v.Inspect())
	}
	if fl, ok := v.AsFloat(); ok && (math.IsNaN(fl) || math.IsInf(fl, 0)) {
		return v, flow.Exec("bad argument: %s must be finite", what)
	}
	return v, nil
}

func (e *Engine) eval(f *logic.Frame, x logic.Expr) (value.Value, error) {
	switch x := x.(type) {
	case *logic.Literal:
		return x.Value, nil

	case *logic.VarRef:
		return e.load(f, x.Ref), nil

	case *logic.Call:
		return e.call(x.Target, f, x.Args)

	case *logic.Unary:
		v, err := e.eval(f, x.Operand)
		if err != nil {
			return v, err
		}
		if x.Op == logic.OP_NOT {
			return value.Not(v), nil
		}
		r, err := value.Neg(v)
		if err != nil {
			return r, operandError(err, x.Op, v)
		}
		return r, nil

	case *logic.Binary:
		return e.binary(f, x)
	}
	return value.Nothing, flow.Exec("unknown expression %T", x)
}

func (e *Engine) binary(f *logic.Frame, x *logic.Binary) (value.Value, error) {
	left, err := e.eval(f, x.Left)
	if err != nil {
		return left, err
	}

	switch x.Op {
	case logic.OP_AND:
		if !left.Truthy() {
			return value.False, nil
		}
		right, err := e.eval(f, x.Right)
		if err != nil {
			return right, err
		}
		return value.Bool(right.Truthy()), nil
	case logic.OP_OR:
		if left.Truthy() {
			return value.True, nil
		}
		right, err := e.eval(f, x.Right)
		if err != nil {
			return right, err
		}
		return value.Bool(right.Truthy()), nil
	}

	right, err := e.eval(f, x.Right)
	if err != nil {
		return right, err
	}

	var result value.Value
	switch x.Op {
	case logic.OP_ADD:
		result, err = value.Add(left, right)
	case logic.OP_SUB:
		result, err = value.Sub(left, right)
	case logic.OP_MUL:
		result, err = value.Mul(left, right)
	case logic.OP_DIV:
		result, err = value.Div(left, right)
	case logic.OP_MOD:
		result, err = value.Mod(left, right)
	case logic.OP_EQ:
		return value.Bool(value.Equal(left, right)), nil
	case logic.OP_NOT_EQ:
		return value.Bool(!value.Equal(left, right)), nil
	default:
		c, cerr := value.Compare(left, right)
		if cerr != nil {
			return value.Nothing, operandError(cerr, x.Op, left, right)
		}
		switch x.Op {
		case logic.OP_LT:
			return value.Bool(c < 0), nil
		case logic.OP_LT_EQ:
			return value.Bool(c <= 0), nil
		case logic.OP_GT:
			return value.Bool(c > 0), nil
		case logic.OP_GT_EQ:
			return value.Bool(c >= 0), nil
		}
		return value.Nothing, flow.Exec("unknown operator %s", x.Op)
	}
	if err != nil {
		return value.Nothing, operandError(err, x.Op, left, right)
	}
	return result, nil
}

func operandError(err error, op logic.Op, operands ...value.Value) error {
	if len(operands) == 1 {
		return flow.ExecFrom(fmt.Errorf("%w: %s%s", err, op, operands[0].Kind()))
	}
	return flow.ExecFrom(fmt.Errorf("%w: %s %s %s", err, operands[0].Kind(), op, operands[1].Kind()))
}

// repeatCount truncates a count to an integer. Counts beyond the int64 range
// are clamped; NaN and infinities are rejected.
func repeatCount(v value.Value) (int64, bool) {
	if v.Kind() == value.INT {
		return v.IntValue(), true
	}
	n, ok := v.AsFloat()
	switch {
	case !ok || math.IsNaN(n) || math.IsInf(n, 0):
		return 0, false
	case n >= math.MaxInt64:
		return math.MaxInt64, true
	case n <= math.MinInt64:
		return math.MinInt64, true
	}
	return int64(n), true
}
