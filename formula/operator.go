package formula

import (
	"math"
	"slices"
)

// Equal reports deep structural equality as used by "==" and "!=".
//
// Null and undefined equal only themselves. Values of different kinds are
// never equal. Functions and deferred values compare by identity. Dates are
// never equal. Arrays compare element-wise and objects compare key sets and
// values regardless of key order.
func Equal(x, y Value) bool {
	if IsNullish(x) || IsNullish(y) {
		return kindOf(x) == kindOf(y)
	}

	if x.Kind() != y.Kind() {
		return false
	}

	switch a := x.(type) {
	case Bool:
		return a == y.(Bool)
	case Number:
		return a == y.(Number)
	case String:
		return a == y.(String)
	case *Function:
		return a == y.(*Function)
	case *Deferred:
		return a == y.(*Deferred)
	case *Date:
		return false
	case *Array:
		b := y.(*Array)
		if a == b {
			return true
		}

		if len(a.Elems) != len(b.Elems) {
			return false
		}

		for i := range a.Elems {
			if !Equal(a.Elems[i], b.Elems[i]) {
				return false
			}
		}

		return true
	case *Object:
		b := y.(*Object)
		if a == b {
			return true
		}

		for k := range b.All() {
			if !a.Has(k) {
				return false
			}
		}

		for k, av := range a.All() {
			bv, ok := b.Get(k)
			if !ok {
				bv = Undefined{}
			}

			if !Equal(av, bv) {
				return false
			}
		}

		return true
	}

	return false
}

func kindOf(v Value) Kind {
	if v == nil {
		return KindUndefined
	}

	return v.Kind()
}

// compare orders two values after reducing them to primitives. Two strings
// compare by UTF-16 code units; anything else compares numerically. ok is
// false when either side is NaN.
func compare(a, b Value) (cmp int, ok bool) {
	pa, pb := toPrimitive(a), toPrimitive(b)

	if sa, isStr := pa.(String); isStr {
		if sb, isStr := pb.(String); isStr {
			return slices.Compare(utf16Units(string(sa)), utf16Units(string(sb))), true
		}
	}

	na, nb := ToNumber(pa), ToNumber(pb)
	if math.IsNaN(na) || math.IsNaN(nb) {
		return 0, false
	}

	switch {
	case na < nb:
		return -1, true
	case na > nb:
		return 1, true
	default:
		return 0, true
	}
}

// applyOperator evaluates a binary operator. The order of the checks is
// significant: equality and comparison accept any operands, the logical
// operators return one of their operands, and arithmetic applies only to
// two numbers, except "+" which also concatenates strings and arrays.
func applyOperator(op string, a, b Value, pos int) (Value, error) {
	switch op {
	case "==":
		return Bool(Equal(a, b)), nil
	case "!=":
		return Bool(!Equal(a, b)), nil
	case "<", ">", "<=", ">=":
		c, ok := compare(a, b)
		if !ok {
			return Bool(false), nil
		}

		switch op {
		case "<":
			return Bool(c < 0), nil
		case ">":
			return Bool(c > 0), nil
		case "<=":
			return Bool(c <= 0), nil
		default:
			return Bool(c >= 0), nil
		}
	case "||":
		if Truthy(a) {
			return a, nil
		}

		return b, nil
	case "&&":
		if !Truthy(a) {
			return a, nil
		}

		return b, nil
	}

	if x, ok := a.(Number); ok {
		if y, ok := b.(Number); ok {
			switch op {
			case "^":
				return Number(math.Pow(float64(x), float64(y))), nil
			case "*":
				return x * y, nil
			case "/":
				return x / y, nil
			case "+":
				return x + y, nil
			case "-":
				return x - y, nil
			}
		}
	}

	if s, ok := a.(String); ok && op == "+" {
		return s + String(ToString(b)), nil
	}

	if x, ok := a.(*Array); ok && op == "+" {
		if y, ok := b.(*Array); ok {
			elems := make([]Value, 0, len(x.Elems)+len(y.Elems))
			elems = append(elems, x.Elems...)
			elems = append(elems, y.Elems...)

			return NewArray(elems...), nil
		}
	}

	return nil, newEvaluateError(
		"Operator "+op+" is not defined for "+TypeOf(a)+" and "+TypeOf(b), pos)
}
