package formula

import (
	"context"
	"errors"
)

// Resolver supplies the values of variables. A resolver returns undefined
// for names it does not know; those fall back to the built-in table.
type Resolver interface {
	Resolve(ctx context.Context, name string) (Value, error)
}

// ResolverFunc adapts a function to [Resolver].
type ResolverFunc func(ctx context.Context, name string) (Value, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, name string) (Value, error) {
	return f(ctx, name)
}

// Vars is a fixed set of variables.
type Vars map[string]Value

// Resolve returns the named value or undefined.
func (v Vars) Resolve(_ context.Context, name string) (Value, error) {
	if x, ok := v[name]; ok && x != nil {
		return x, nil
	}

	return Undefined{}, nil
}

type evaluator struct {
	resolver Resolver
	builtins *Builtins
}

// eval runs a postfix sequence. Every step checks ctx, so a cancelled
// context stops evaluation at the next node.
func (e *evaluator) eval(ctx context.Context, seq []Expr) (Value, error) {
	if len(seq) == 0 {
		return Undefined{}, nil
	}

	stack := make([]Value, 0, 4)

	for _, part := range seq {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if part.Type == ExprOperator {
			if len(stack) < 2 {
				return nil, newEvaluateError("Need two values for an operator", part.Pos)
			}

			a, b := stack[len(stack)-2], stack[len(stack)-1]
			stack = stack[:len(stack)-2]

			v, err := applyOperator(part.Text, a, b, part.Pos)
			if err != nil {
				return nil, err
			}

			stack = append(stack, v)

			continue
		}

		v, err := e.primary(ctx, part)
		if err != nil {
			return nil, err
		}

		for _, sub := range part.Sub {
			if v, err = e.apply(ctx, v, sub); err != nil {
				return nil, err
			}
		}

		stack = append(stack, v)
	}

	if len(stack) == 1 {
		return resolve(ctx, stack[0])
	}

	return nil, newEvaluateError("Bad formula", 0)
}

func (e *evaluator) primary(ctx context.Context, part Expr) (Value, error) {
	switch part.Type {
	case ExprNumber:
		return Number(part.Number), nil

	case ExprString:
		return String(part.Text), nil

	case ExprVariable:
		return e.lookup(ctx, part.Text, part.Pos)

	case ExprParentheses:
		return e.eval(ctx, part.Inner)

	case ExprArray:
		elems, err := e.evalArgs(ctx, part.Args)
		if err != nil {
			return nil, err
		}

		return NewArray(elems...), nil

	case ExprObject:
		obj := NewObject()

		for _, f := range part.Fields {
			v, err := e.eval(ctx, f.Value)
			if err != nil {
				return nil, err
			}

			obj.Set(f.Key, v)
		}

		return obj, nil
	}

	return nil, newEvaluateError("Unknown part type "+part.Type.String(), part.Pos)
}

// evalArgs evaluates each sequence in order.
func (e *evaluator) evalArgs(ctx context.Context, args [][]Expr) ([]Value, error) {
	out := make([]Value, len(args))

	for i, a := range args {
		v, err := e.eval(ctx, a)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

func (e *evaluator) lookup(ctx context.Context, name string, pos int) (Value, error) {
	if e.resolver != nil {
		v, err := e.resolver.Resolve(ctx, name)
		if err != nil {
			return nil, err
		}

		if v, err = resolve(ctx, v); err != nil {
			return nil, err
		}

		if !isUndefined(v) {
			return v, nil
		}
	}

	if v, ok := e.builtins.Lookup(name); ok {
		return v, nil
	}

	return nil, newEvaluateError("Unknown variable "+name, pos)
}

// apply applies one suffix of a chain to v.
func (e *evaluator) apply(ctx context.Context, v Value, sub SubExpr) (Value, error) {
	v, err := resolve(ctx, v)
	if err != nil {
		return nil, err
	}

	if IsNullish(v) {
		return nil, newEvaluateError("Cant evaluate subexpr", sub.Pos)
	}

	switch sub.Type {
	case SubCall:
		fn, ok := v.(*Function)
		if !ok {
			return nil, newEvaluateError("Value is not callable", sub.Pos)
		}

		args, err := e.evalArgs(ctx, sub.Args)
		if err != nil {
			return nil, err
		}

		out, err := fn.Call(ctx, args...)
		if err != nil {
			return nil, callError(err, sub.Pos)
		}

		return resolve(ctx, out)

	case SubMember:
		return member(ctx, v, String(sub.Name))

	case SubIndex:
		key, err := e.eval(ctx, sub.Index)
		if err != nil {
			return nil, err
		}

		return member(ctx, v, key)
	}

	return nil, newEvaluateError("Unknown sub-expression "+sub.Type.String(), sub.Pos)
}

// callError tags an error raised by a called function with the call's
// position. Evaluate errors and context errors pass through.
func callError(err error, pos int) error {
	var ee *EvaluateError
	if errors.As(err, &ee) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return &EvaluateError{Message: err.Error(), Position: pos, cause: err}
}
