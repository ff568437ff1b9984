package formula

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"
)

// member looks up key on v. Own entries (array elements, string code units,
// object keys) come first, then a small fixed set of built-in members per
// kind. Anything else is undefined; inherited or internal members do not
// exist.
func member(ctx context.Context, v, key Value) (Value, error) {
	if a, ok := v.(*Array); ok {
		if n, ok := key.(Number); ok {
			if i, ok := arrayIndex(float64(n), len(a.Elems)); ok {
				return resolve(ctx, a.Elems[i])
			}

			return Undefined{}, nil
		}
	}

	name := ToString(key)

	switch t := v.(type) {
	case *Array:
		if i, ok := canonicalIndex(name, len(t.Elems)); ok {
			return resolve(ctx, t.Elems[i])
		}

		return arrayMember(t, name), nil

	case String:
		units := utf16Units(string(t))
		if i, ok := canonicalIndex(name, len(units)); ok {
			return String(utf16String(units[i : i+1])), nil
		}

		return stringMember(t, units, name), nil

	case *Object:
		if e, ok := t.Get(name); ok {
			return resolve(ctx, e)
		}

	case *Date:
		if m, ok := dateMethods[name]; ok {
			tm := t.Time

			return NewFunction(name, func(context.Context, ...Value) (Value, error) {
				return m(tm), nil
			}), nil
		}
	}

	return Undefined{}, nil
}

// MemberNames lists the built-in members available on values of kind k.
func MemberNames(k Kind) []string {
	switch k {
	case KindArray:
		return []string{"length", "slice", "join"}
	case KindString:
		return []string{"length", "replaceAll", "substring"}
	case KindDate:
		names := make([]string, 0, len(dateMethods))
		for n := range dateMethods {
			names = append(names, n)
		}

		return names
	}

	return nil
}

func arrayIndex(f float64, n int) (int, bool) {
	if f != math.Trunc(f) || f < 0 || f >= float64(n) {
		return 0, false
	}

	return int(f), true
}

// canonicalIndex accepts only the canonical decimal form of an index, so
// "1" selects an element but "01" and "1.0" do not.
func canonicalIndex(s string, n int) (int, bool) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 || i >= n || strconv.Itoa(i) != s {
		return 0, false
	}

	return i, true
}

func arrayMember(a *Array, name string) Value {
	switch name {
	case "length":
		return Number(len(a.Elems))
	case "slice":
		return NewFunction("slice", func(_ context.Context, args ...Value) (Value, error) {
			return sliceArray(a, arg(args, 0), arg(args, 1)), nil
		})
	case "join":
		return NewFunction("join", func(_ context.Context, args ...Value) (Value, error) {
			sep := ","
			if s := arg(args, 0); !isUndefined(s) {
				sep = ToString(s)
			}

			parts := make([]string, len(a.Elems))
			for i, e := range a.Elems {
				if !IsNullish(e) {
					parts[i] = ToString(e)
				}
			}

			return String(strings.Join(parts, sep)), nil
		})
	}

	return Undefined{}
}

func stringMember(s String, units []uint16, name string) Value {
	switch name {
	case "length":
		return Number(len(units))
	case "replaceAll":
		return NewFunction("replaceAll", func(_ context.Context, args ...Value) (Value, error) {
			return String(strings.ReplaceAll(string(s),
				ToString(arg(args, 0)), ToString(arg(args, 1)))), nil
		})
	case "substring":
		return NewFunction("substring", func(_ context.Context, args ...Value) (Value, error) {
			return substring(units, arg(args, 0), arg(args, 1)), nil
		})
	}

	return Undefined{}
}

var dateMethods = map[string]func(time.Time) Value{
	"getTime":            func(t time.Time) Value { return Number(t.UnixMilli()) },
	"valueOf":            func(t time.Time) Value { return Number(t.UnixMilli()) },
	"getFullYear":        func(t time.Time) Value { return Number(t.Year()) },
	"getMonth":           func(t time.Time) Value { return Number(t.Month() - 1) },
	"getDate":            func(t time.Time) Value { return Number(t.Day()) },
	"getDay":             func(t time.Time) Value { return Number(t.Weekday()) },
	"getHours":           func(t time.Time) Value { return Number(t.Hour()) },
	"getMinutes":         func(t time.Time) Value { return Number(t.Minute()) },
	"getSeconds":         func(t time.Time) Value { return Number(t.Second()) },
	"getMilliseconds":    func(t time.Time) Value { return Number(t.Nanosecond() / 1e6) },
	"getUTCFullYear":     func(t time.Time) Value { return Number(t.UTC().Year()) },
	"getUTCMonth":        func(t time.Time) Value { return Number(t.UTC().Month() - 1) },
	"getUTCDate":         func(t time.Time) Value { return Number(t.UTC().Day()) },
	"getUTCDay":          func(t time.Time) Value { return Number(t.UTC().Weekday()) },
	"getUTCHours":        func(t time.Time) Value { return Number(t.UTC().Hour()) },
	"getUTCMinutes":      func(t time.Time) Value { return Number(t.UTC().Minute()) },
	"getUTCSeconds":      func(t time.Time) Value { return Number(t.UTC().Second()) },
	"getTimezoneOffset":  func(t time.Time) Value { return Number(zoneOffset(t)) },
	"toISOString":        func(t time.Time) Value { return String(isoString(t)) },
	"toJSON":             func(t time.Time) Value { return String(isoString(t)) },
	"toString":           func(t time.Time) Value { return String(ToString(&Date{Time: t})) },
	"toLocaleDateString": func(t time.Time) Value { return String(t.Format(time.DateOnly)) },
}

// zoneOffset returns minutes behind UTC.
func zoneOffset(t time.Time) int {
	_, off := t.Zone()

	return -off / 60
}

func arg(args []Value, i int) Value {
	if i < len(args) && args[i] != nil {
		return args[i]
	}

	return Undefined{}
}

func isUndefined(v Value) bool {
	_, ok := v.(Undefined)

	return ok || v == nil
}

// toInteger truncates v toward zero; NaN becomes 0.
func toInteger(v Value) float64 {
	f := ToNumber(v)
	if math.IsNaN(f) {
		return 0
	}

	return math.Trunc(f)
}

// relativeIndex resolves a possibly negative slice bound against length n.
func relativeIndex(v Value, n, def int) int {
	if isUndefined(v) {
		return def
	}

	f := toInteger(v)
	if f < 0 {
		return int(math.Max(float64(n)+f, 0))
	}

	return int(math.Min(f, float64(n)))
}

func sliceArray(a *Array, start, end Value) *Array {
	n := len(a.Elems)
	from, to := relativeIndex(start, n, 0), relativeIndex(end, n, n)

	if from >= to {
		return NewArray()
	}

	out := make([]Value, to-from)
	copy(out, a.Elems[from:to])

	return NewArray(out...)
}

func sliceString(units []uint16, start, end Value) String {
	n := len(units)
	from, to := relativeIndex(start, n, 0), relativeIndex(end, n, n)

	if from >= to {
		return ""
	}

	return String(utf16String(units[from:to]))
}

// substring clamps both bounds to the string and swaps them when reversed.
func substring(units []uint16, start, end Value) String {
	n := len(units)
	clamp := func(v Value, def int) int {
		if isUndefined(v) {
			return def
		}

		return int(math.Min(math.Max(toInteger(v), 0), float64(n)))
	}

	from, to := clamp(start, 0), clamp(end, n)
	if from > to {
		from, to = to, from
	}

	return String(utf16String(units[from:to]))
}
