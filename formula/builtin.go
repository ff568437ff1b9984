package formula

// This file defines the constants and functions available to every formula.
// The table is built once per process and cloned for each caller, so a
// caller may add or replace entries without affecting anyone else.
//
// Built-in names are consulted only after the resolver, so any binding in
// scope shadows them.

import (
	"context"
	"errors"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ardnew/mung"
)

// Builtins is a caller-owned table of built-in functions and constants.
type Builtins struct {
	funcs  map[string]*Function
	consts map[string]Value
}

//nolint:gochecknoglobals
var (
	builtinsOnce   sync.Once
	builtinFuncs   map[string]*Function
	builtinConsts  map[string]Value
	builtinsNowUTC = func() time.Time { return time.Now().UTC() }
)

func initBuiltins() {
	builtinsOnce.Do(func() {
		builtinConsts = map[string]Value{
			"false": Bool(false),
			"true":  Bool(true),
			"null":  Null{},
			"pi":    Number(math.Pi),
			"PI":    Number(math.Pi),
		}

		fns := map[string]Func{
			"pow":          builtinPow,
			"not":          builtinNot,
			"columnName":   builtinColumnName,
			"inArray":      builtinInArray,
			"arrayIndexOf": builtinArrayIndexOf,
			"string":       builtinString,
			"str":          builtinString,
			"substr":       builtinSubstr,
			"substring":    builtinSubstr,
			"now":          builtinNow,
			"lower":        stringFunc(strings.ToLower),
			"toLowerCase":  stringFunc(strings.ToLower),
			"upper":        stringFunc(strings.ToUpper),
			"toUpperCase":  stringFunc(strings.ToUpper),
			"sin":          mathFunc(math.Sin),
			"cos":          mathFunc(math.Cos),
			"tan":          mathFunc(math.Tan),
			"asin":         mathFunc(math.Asin),
			"acos":         mathFunc(math.Acos),
			"atan":         mathFunc(math.Atan),
			"atan2":        builtinAtan2,
			"prefixList":   builtinPrefixList,
		}

		builtinFuncs = make(map[string]*Function, len(fns))
		for name, fn := range fns {
			builtinFuncs[name] = NewFunction(name, fn)
		}
	})
}

// DefaultBuiltins returns a fresh copy of the standard table.
func DefaultBuiltins() *Builtins {
	initBuiltins()

	return &Builtins{
		funcs:  maps.Clone(builtinFuncs),
		consts: maps.Clone(builtinConsts),
	}
}

// Lookup returns the function or constant called name. Functions take
// precedence over constants.
func (b *Builtins) Lookup(name string) (Value, bool) {
	if b == nil {
		return nil, false
	}

	if f, ok := b.funcs[name]; ok {
		return f, true
	}

	if c, ok := b.consts[name]; ok {
		return c, true
	}

	return nil, false
}

// Define adds or replaces a function.
func (b *Builtins) Define(name string, fn Func) *Builtins {
	b.funcs[name] = NewFunction(name, fn)

	return b
}

// Const adds or replaces a constant.
func (b *Builtins) Const(name string, v Value) *Builtins {
	b.consts[name] = v

	return b
}

// Names returns every function and constant name, sorted.
func (b *Builtins) Names() []string {
	names := slices.Collect(maps.Keys(b.funcs))
	for k := range b.consts {
		if _, ok := b.funcs[k]; !ok {
			names = append(names, k)
		}
	}

	slices.Sort(names)

	return names
}

func builtinPow(_ context.Context, args ...Value) (Value, error) {
	return Number(math.Pow(ToNumber(arg(args, 0)), ToNumber(arg(args, 1)))), nil
}

func builtinNot(_ context.Context, args ...Value) (Value, error) {
	return Bool(!Truthy(arg(args, 0))), nil
}

func builtinString(_ context.Context, args ...Value) (Value, error) {
	return String(ToString(arg(args, 0))), nil
}

// builtinColumnName maps 1 to "A", 26 to "Z", 27 to "AA" and so on.
func builtinColumnName(_ context.Context, args ...Value) (Value, error) {
	n, ok := arg(args, 0).(Number)
	if !ok {
		return nil, errors.New("Not a number")
	}

	num := float64(n)
	if math.IsInf(num, 0) {
		return nil, errors.New("Not a finite number")
	}

	var ret []byte

	for a, b := 1.0, 26.0; ; a, b = b, b*26 {
		num -= a
		if !(num >= 0) {
			break
		}

		ret = append([]byte{byte(math.Floor(math.Mod(num, b)/a)) + 'A'}, ret...)
	}

	return String(ret), nil
}

// indexOf finds val in arr using strict equality: primitives by value,
// reference values by identity.
func indexOf(arr, val Value) (int, error) {
	a, ok := arr.(*Array)
	if !ok {
		return -1, errors.New("Not an array")
	}

	for i, e := range a.Elems {
		if strictEqual(e, val) {
			return i, nil
		}
	}

	return -1, nil
}

func strictEqual(x, y Value) bool {
	if kindOf(x) != kindOf(y) {
		return false
	}

	switch a := x.(type) {
	case nil, Undefined, Null:
		return true
	case Bool, Number, String:
		return a == y
	case *Array:
		return a == y.(*Array)
	case *Object:
		return a == y.(*Object)
	case *Function:
		return a == y.(*Function)
	case *Date:
		return a == y.(*Date)
	case *Deferred:
		return a == y.(*Deferred)
	}

	return false
}

func builtinInArray(_ context.Context, args ...Value) (Value, error) {
	i, err := indexOf(arg(args, 0), arg(args, 1))
	if err != nil {
		return nil, err
	}

	return Bool(i != -1), nil
}

func builtinArrayIndexOf(_ context.Context, args ...Value) (Value, error) {
	i, err := indexOf(arg(args, 0), arg(args, 1))
	if err != nil {
		return nil, err
	}

	return Number(i), nil
}

// builtinSubstr slices a string or an array; negative bounds count from
// the end.
func builtinSubstr(_ context.Context, args ...Value) (Value, error) {
	start, end := arg(args, 1), arg(args, 2)

	switch t := arg(args, 0).(type) {
	case String:
		return sliceString(utf16Units(string(t)), start, end), nil
	case *Array:
		return sliceArray(t, start, end), nil
	case Undefined, Null:
		return nil, errors.New("Cannot read properties of " + ToString(t) +
			" (reading 'slice')")
	default:
		return nil, errors.New("txt.slice is not a function")
	}
}

// builtinNow returns the current UTC time with second precision, such as
// "2024-03-09T15:04:05Z".
func builtinNow(context.Context, ...Value) (Value, error) {
	return String(builtinsNowUTC().Format("2006-01-02T15:04:05") + "Z"), nil
}

func stringFunc(fn func(string) string) Func {
	return func(_ context.Context, args ...Value) (Value, error) {
		s, ok := arg(args, 0).(String)
		if !ok {
			return nil, errors.New("not a string")
		}

		return String(fn(string(s))), nil
	}
}

func mathFunc(fn func(float64) float64) Func {
	return func(_ context.Context, args ...Value) (Value, error) {
		n, ok := arg(args, 0).(Number)
		if !ok {
			return nil, errors.New("expected number but got " + TypeOf(arg(args, 0)))
		}

		return Number(fn(float64(n))), nil
	}
}

func builtinAtan2(_ context.Context, args ...Value) (Value, error) {
	y, yok := arg(args, 0).(Number)
	x, xok := arg(args, 1).(Number)

	if !yok || !xok {
		return nil, errors.New("expected number but got " +
			TypeOf(arg(args, 0)) + " and " + TypeOf(arg(args, 1)))
	}

	return Number(math.Atan2(float64(y), float64(x))), nil
}

// builtinPrefixList prepends items to the delimited list subject, such as
// prefixList("b;c", ";", "a").
func builtinPrefixList(_ context.Context, args ...Value) (Value, error) {
	if len(args) < 2 {
		return nil, errors.New("prefixList expects a list, a delimiter and items")
	}

	items := make([]string, 0, len(args)-2)
	for _, a := range args[2:] {
		items = append(items, ToString(a))
	}

	return String(mung.Make(
		mung.WithSubjectItems(ToString(args[0])),
		mung.WithDelim(ToString(args[1])),
		mung.WithPrefixItems(items...),
	).String()), nil
}
