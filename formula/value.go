package formula

import (
	"context"
	"iter"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf16"
)

// Kind identifies the dynamic type of a [Value].
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindFunction
	KindDate
	KindDeferred
)

// Value is the closed set of dynamic values a formula can produce. The
// implementations are [Undefined], [Null], [Bool], [Number], [String],
// [*Array], [*Object], [*Function], [*Date] and [*Deferred].
type Value interface {
	Kind() Kind
}

type (
	// Undefined is the absence of a value.
	Undefined struct{}
	// Null is the explicit empty value.
	Null struct{}
	// Bool is a boolean.
	Bool bool
	// Number is a double precision number.
	Number float64
	// String is a text value.
	String string
)

func (Undefined) Kind() Kind { return KindUndefined }
func (Null) Kind() Kind      { return KindNull }
func (Bool) Kind() Kind      { return KindBool }
func (Number) Kind() Kind    { return KindNumber }
func (String) Kind() Kind    { return KindString }

// Array is an ordered list of values. Arrays are reference values: equality
// is structural but mutation through one reference is visible through all.
type Array struct {
	Elems []Value
}

// NewArray returns an array holding elems.
func NewArray(elems ...Value) *Array {
	if elems == nil {
		elems = []Value{}
	}

	return &Array{Elems: elems}
}

func (*Array) Kind() Kind { return KindArray }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.Elems) }

// Object is a string-keyed map that remembers insertion order. Only its own
// keys are ever visible to formulas.
type Object struct {
	keys []string
	vals map[string]Value
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{vals: map[string]Value{}}
}

func (*Object) Kind() Kind { return KindObject }

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.vals[key]

	return v, ok
}

// Set stores v under key. New keys are appended to the key order.
func (o *Object) Set(key string, v Value) *Object {
	if o.vals == nil {
		o.vals = map[string]Value{}
	}

	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}

	o.vals[key] = v

	return o
}

// Delete removes key.
func (o *Object) Delete(key string) {
	if _, ok := o.vals[key]; !ok {
		return
	}

	delete(o.vals, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
}

// Has reports whether key is an own key.
func (o *Object) Has(key string) bool {
	_, ok := o.vals[key]

	return ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string { return slices.Clone(o.keys) }

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.keys) }

// All iterates the entries in insertion order.
func (o *Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range o.keys {
			if !yield(k, o.vals[k]) {
				return
			}
		}
	}
}

// Func is the signature of callable values.
type Func func(ctx context.Context, args ...Value) (Value, error)

// Function is a callable value. Functions compare equal only to themselves.
type Function struct {
	Name string
	Fn   Func
}

// NewFunction wraps fn as a callable value.
func NewFunction(name string, fn Func) *Function {
	return &Function{Name: name, Fn: fn}
}

func (*Function) Kind() Kind { return KindFunction }

// Call invokes the function. Missing arguments are undefined.
func (f *Function) Call(ctx context.Context, args ...Value) (Value, error) {
	v, err := f.Fn(ctx, args...)
	if err != nil {
		return nil, err
	}

	if v == nil {
		return Undefined{}, nil
	}

	return v, nil
}

// Date is a point in time. Dates never compare equal, not even to
// themselves.
type Date struct {
	Time time.Time
}

func (*Date) Kind() Kind { return KindDate }

// Deferred is a value produced on first use, such as the result of a remote
// lookup. The evaluator resolves it before member access and before
// returning it as a result.
type Deferred struct {
	once sync.Once
	fn   func(context.Context) (Value, error)
	v    Value
	err  error
}

// NewDeferred returns a value computed by fn when first resolved.
func NewDeferred(fn func(context.Context) (Value, error)) *Deferred {
	return &Deferred{fn: fn}
}

func (*Deferred) Kind() Kind { return KindDeferred }

// Resolve computes the value once; later calls return the same result.
// Nested deferred values are resolved as well.
func (d *Deferred) Resolve(ctx context.Context) (Value, error) {
	d.once.Do(func() {
		d.v, d.err = d.fn(ctx)
		if d.err == nil && d.v == nil {
			d.v = Undefined{}
		}
	})

	if d.err != nil {
		return nil, d.err
	}

	return resolve(ctx, d.v)
}

// resolve unwraps deferred values.
func resolve(ctx context.Context, v Value) (Value, error) {
	if d, ok := v.(*Deferred); ok {
		return d.Resolve(ctx)
	}

	if v == nil {
		return Undefined{}, nil
	}

	return v, nil
}

// TypeOf returns the script-style type name of v: "undefined", "object",
// "boolean", "number", "string" or "function".
func TypeOf(v Value) string {
	switch v.(type) {
	case nil, Undefined:
		return "undefined"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case *Function:
		return "function"
	default:
		return "object"
	}
}

// IsNullish reports whether v is null or undefined.
func IsNullish(v Value) bool {
	switch v.(type) {
	case nil, Undefined, Null:
		return true
	}

	return false
}

// Truthy reports whether v counts as true in a condition.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case nil, Undefined, Null:
		return false
	case Bool:
		return bool(t)
	case Number:
		return t != 0 && !math.IsNaN(float64(t))
	case String:
		return t != ""
	default:
		return true
	}
}

// ToString converts v to text the way string concatenation does.
func ToString(v Value) string {
	switch t := v.(type) {
	case nil, Undefined:
		return "undefined"
	case Null:
		return "null"
	case Bool:
		return strconv.FormatBool(bool(t))
	case Number:
		return FormatNumber(float64(t))
	case String:
		return string(t)
	case *Array:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			if !IsNullish(e) {
				parts[i] = ToString(e)
			}
		}

		return strings.Join(parts, ",")
	case *Object:
		return "[object Object]"
	case *Function:
		return "function " + t.Name + "() { [native code] }"
	case *Date:
		return t.Time.Format("Mon Jan 02 2006 15:04:05 GMT-0700")
	case *Deferred:
		return "[object Promise]"
	default:
		return ""
	}
}

// FormatNumber renders f using the shortest representation that round-trips,
// switching to exponent notation below 1e-6 and from 1e21.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		exp = strings.TrimLeft(exp[1:], "0")

		return mant + "e" + sign + exp
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ToNumber converts v to a number the way arithmetic coercion does.
func ToNumber(v Value) float64 {
	switch t := v.(type) {
	case Null:
		return 0
	case Bool:
		if t {
			return 1
		}

		return 0
	case Number:
		return float64(t)
	case String:
		return parseNumber(string(t))
	case *Array:
		return parseNumber(ToString(t))
	case *Date:
		return float64(t.Time.UnixMilli())
	default:
		return math.NaN()
	}
}

func parseNumber(s string) float64 {
	s = strings.TrimFunc(s, isWhiteSpace)

	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}

		return float64(n)
	}

	if strings.ContainsFunc(s, func(r rune) bool {
		return !isNum(r) && !strings.ContainsRune(".eE+-", r)
	}) {
		return math.NaN()
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}

	return f
}

// toPrimitive reduces reference values to a string or number for ordering.
func toPrimitive(v Value) Value {
	switch t := v.(type) {
	case *Date:
		return Number(float64(t.Time.UnixMilli()))
	case *Array, *Object, *Function, *Deferred:
		return String(ToString(t))
	case nil:
		return Undefined{}
	default:
		return v
	}
}

// Strings are measured and sliced in UTF-16 code units.
func utf16Len(s string) int { return len(utf16.Encode([]rune(s))) }

func utf16Units(s string) []uint16 { return utf16.Encode([]rune(s)) }

func utf16String(u []uint16) string { return string(utf16.Decode(u)) }
