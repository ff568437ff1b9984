package formula

import (
	"context"
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"time"

	"github.com/goccy/go-yaml"
)

// FromNative converts decoded documents and plain Go values into formula
// values. Ordered YAML maps keep their key order; plain maps are ordered by
// key. Unsupported types become undefined.
func FromNative(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null{}
	case Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case []byte:
		return String(t)
	case int:
		return Number(float64(t))
	case int8:
		return Number(float64(t))
	case int16:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case uint:
		return Number(float64(t))
	case uint8:
		return Number(float64(t))
	case uint16:
		return Number(float64(t))
	case uint32:
		return Number(float64(t))
	case uint64:
		return Number(float64(t))
	case float32:
		return Number(float64(t))
	case float64:
		return Number(t)
	case time.Time:
		return &Date{Time: t}
	case Func:
		return NewFunction("", t)
	case func(context.Context, ...Value) (Value, error):
		return NewFunction("", t)
	case yaml.MapSlice:
		o := NewObject()
		for _, item := range t {
			o.Set(fmt.Sprint(item.Key), FromNative(item.Value))
		}

		return o
	case map[string]any:
		o := NewObject()
		for _, k := range slices.Sorted(maps.Keys(t)) {
			o.Set(k, FromNative(t[k]))
		}

		return o
	case []any:
		a := make([]Value, len(t))
		for i, e := range t {
			a[i] = FromNative(e)
		}

		return NewArray(a...)
	case []string:
		a := make([]Value, len(t))
		for i, e := range t {
			a[i] = String(e)
		}

		return NewArray(a...)
	case [][]string:
		a := make([]Value, len(t))
		for i, e := range t {
			a[i] = FromNative(e)
		}

		return NewArray(a...)
	}

	return fromReflect(reflect.ValueOf(x))
}

func fromReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}
		}

		return FromNative(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		a := make([]Value, rv.Len())
		for i := range a {
			a[i] = FromNative(rv.Index(i).Interface())
		}

		return NewArray(a...)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Undefined{}
		}

		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			switch {
			case a.String() < b.String():
				return -1
			case a.String() > b.String():
				return 1
			}

			return 0
		})

		o := NewObject()
		for _, k := range keys {
			o.Set(k.String(), FromNative(rv.MapIndex(k).Interface()))
		}

		return o
	case reflect.Struct:
		o := NewObject()
		for i := range rv.NumField() {
			if f := rv.Type().Field(i); f.IsExported() {
				o.Set(f.Name, FromNative(rv.Field(i).Interface()))
			}
		}

		return o
	case reflect.String:
		return String(rv.String())
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float())
	}

	return Undefined{}
}

// ToNative converts v into plain Go values: nil, bool, float64 (or int64 for
// integral numbers), string, []any, map[string]any, time.Time and
// func(...any) (any, error). Deferred values are returned unresolved as nil.
func ToNative(v Value) any {
	switch t := v.(type) {
	case nil, Undefined, Null, *Deferred:
		return nil
	case Bool:
		return bool(t)
	case Number:
		f := float64(t)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}

		return f
	case String:
		return string(t)
	case *Array:
		out := make([]any, len(t.Elems))
		for i, e := range t.Elems {
			out[i] = ToNative(e)
		}

		return out
	case *Object:
		out := make(map[string]any, t.Len())
		for k, e := range t.All() {
			out[k] = ToNative(e)
		}

		return out
	case *Date:
		return t.Time
	case *Function:
		return func(args ...any) (any, error) {
			in := make([]Value, len(args))
			for i, a := range args {
				in[i] = FromNative(a)
			}

			out, err := t.Call(context.Background(), in...)
			if err != nil {
				return nil, err
			}

			return ToNative(out), nil
		}
	}

	return nil
}

// ToOrdered converts v like [ToNative] but keeps object key order by
// producing yaml.MapSlice, for YAML output.
func ToOrdered(v Value) any {
	switch t := v.(type) {
	case *Array:
		out := make([]any, len(t.Elems))
		for i, e := range t.Elems {
			out[i] = ToOrdered(e)
		}

		return out
	case *Object:
		out := make(yaml.MapSlice, 0, t.Len())
		for k, e := range t.All() {
			out = append(out, yaml.MapItem{Key: k, Value: ToOrdered(e)})
		}

		return out
	case *Function:
		return ToString(t)
	case *Date:
		return isoString(t.Time)
	}

	return ToNative(v)
}

// Clone returns a deep copy of v. Functions, dates and deferred values are
// shared.
func Clone(v Value) Value {
	switch t := v.(type) {
	case *Array:
		out := make([]Value, len(t.Elems))
		for i, e := range t.Elems {
			out[i] = Clone(e)
		}

		return NewArray(out...)
	case *Object:
		out := NewObject()
		for k, e := range t.All() {
			out.Set(k, Clone(e))
		}

		return out
	case nil:
		return Undefined{}
	}

	return v
}
