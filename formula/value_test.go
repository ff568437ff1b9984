package formula

import (
	"context"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
)

func TestFormatNumber(t *testing.T) {
	tenth, fifth := 0.1, 0.2

	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-2.5, "-2.5"},
		{tenth + fifth, "0.30000000000000004"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{0.000001, "0.000001"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatNumber(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestToString(t *testing.T) {
	tests := []struct {
		in   Value
		want string
	}{
		{Undefined{}, "undefined"},
		{Null{}, "null"},
		{Bool(true), "true"},
		{num(15), "15"},
		{arr(num(1), Null{}, arr(num(2), num(3))), "1,,2,3"},
		{NewObject(), "[object Object]"},
		{NewFunction("f", nil), "function f() { [native code] }"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := ToString(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		in   Value
		want float64
	}{
		{Null{}, 0},
		{Bool(true), 1},
		{String(" 42 "), 42},
		{String(""), 0},
		{String("0x1f"), 31},
		{arr(num(7)), 7},
		{arr(), 0},
	}

	for _, tt := range tests {
		if got := ToNumber(tt.in); got != tt.want {
			t.Errorf("ToNumber(%s): expected %v, got %v", describe(tt.in), tt.want, got)
		}
	}

	for _, in := range []Value{Undefined{}, String("abc"), arr(num(1), num(2)), NewObject()} {
		if got := ToNumber(in); !math.IsNaN(got) {
			t.Errorf("ToNumber(%s): expected NaN, got %v", describe(in), got)
		}
	}
}

func TestTruthy(t *testing.T) {
	falsy := []Value{Undefined{}, Null{}, Bool(false), num(0), num(math.NaN()), String("")}
	truthy := []Value{Bool(true), num(-1), String("0"), arr(), NewObject()}

	for _, v := range falsy {
		if Truthy(v) {
			t.Errorf("expected %s to be falsy", describe(v))
		}
	}

	for _, v := range truthy {
		if !Truthy(v) {
			t.Errorf("expected %s to be truthy", describe(v))
		}
	}
}

func TestJSON(t *testing.T) {
	fn := NewFunction("f", nil)
	d := &Date{Time: time.Date(2024, time.March, 9, 15, 4, 5, 0, time.UTC)}

	tests := []struct {
		name   string
		in     Value
		indent string
		want   string
	}{
		{
			"omit and null",
			NewObject().
				Set("a", num(1)).
				Set("b", Undefined{}).
				Set("c", arr(Undefined{}, fn, String(`x"y`))).
				Set("d", fn),
			"",
			`{"a":1,"c":[null,null,"x\"y"]}`,
		},
		{"non finite", arr(num(math.NaN()), num(math.Inf(1))), "", "[null,null]"},
		{"date", d, "", `"2024-03-09T15:04:05.000Z"`},
		{"html", String("<a&b>"), "", `"<a&b>"`},
		{"control", String("a\nb\u0001"), "", `"a\nb\u0001"`},
		{"empty", NewObject().Set("x", Undefined{}), "", "{}"},
		{
			"indent",
			NewObject().Set("a", arr(num(1), num(2))).Set("b", NewObject()),
			"  ",
			"{\n  \"a\": [\n    1,\n    2\n  ],\n  \"b\": {}\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := JSON(tt.in, tt.indent)
			if !ok {
				t.Fatal("expected value to be representable")
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	if _, ok := JSON(Undefined{}, ""); ok {
		t.Error("expected undefined to be unrepresentable")
	}
}

func TestFromNative(t *testing.T) {
	doc := yaml.MapSlice{
		{Key: "z", Value: 1},
		{Key: "a", Value: []any{"x", true, nil}},
		{Key: "m", Value: map[string]any{"b": 2.5, "a": uint8(3)}},
	}

	v := FromNative(doc)

	obj, ok := v.(*Object)
	if !ok {
		t.Fatalf("expected object, got %s", describe(v))
	}

	if keys := obj.Keys(); !slices.Equal(keys, []string{"z", "a", "m"}) {
		t.Errorf("expected document order, got %v", keys)
	}

	got, _ := JSON(v, "")
	want := `{"z":1,"a":["x",true,null],"m":{"a":3,"b":2.5}}`

	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestFromNative_Struct(t *testing.T) {
	type row struct {
		Name  string
		Count int
		skip  bool
	}

	v := FromNative([]row{{Name: "a", Count: 2, skip: true}})

	got, _ := JSON(v, "")
	if want := `[{"Name":"a","Count":2}]`; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestToNative(t *testing.T) {
	v := NewObject().
		Set("n", num(2)).
		Set("f", num(2.5)).
		Set("list", arr(String("a"), Null{}))

	got, ok := ToNative(v).(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", ToNative(v))
	}

	if got["n"] != int64(2) || got["f"] != 2.5 {
		t.Errorf("unexpected numbers %v and %v", got["n"], got["f"])
	}

	list, ok := got["list"].([]any)
	if !ok || len(list) != 2 || list[0] != "a" || list[1] != nil {
		t.Errorf("unexpected list %v", got["list"])
	}
}

func TestToNative_Function(t *testing.T) {
	double := NewFunction("double", func(_ context.Context, args ...Value) (Value, error) {
		return Number(ToNumber(arg(args, 0)) * 2), nil
	})

	fn, ok := ToNative(double).(func(...any) (any, error))
	if !ok {
		t.Fatalf("expected func, got %T", ToNative(double))
	}

	got, err := fn(4)
	if err != nil || got != int64(8) {
		t.Errorf("expected 8, got %v (%v)", got, err)
	}
}

func TestToOrdered(t *testing.T) {
	v := NewObject().Set("z", num(1)).Set("a", arr(num(1)))

	got, ok := ToOrdered(v).(yaml.MapSlice)
	if !ok {
		t.Fatalf("expected MapSlice, got %T", ToOrdered(v))
	}

	if len(got) != 2 || got[0].Key != "z" || got[1].Key != "a" {
		t.Errorf("expected ordered keys, got %v", got)
	}
}

func TestClone(t *testing.T) {
	orig := NewObject().Set("list", arr(num(1)))
	dup := Clone(orig).(*Object)

	list, _ := dup.Get("list")
	list.(*Array).Elems[0] = num(9)

	if !Equal(orig, NewObject().Set("list", arr(num(1)))) {
		t.Errorf("expected original unchanged, got %s", describe(orig))
	}
}

func TestDeferred_Error(t *testing.T) {
	calls := 0
	d := NewDeferred(func(context.Context) (Value, error) {
		calls++

		return nil, ErrBadArgument
	})

	for range 2 {
		if _, err := d.Resolve(t.Context()); err != ErrBadArgument {
			t.Errorf("expected %v, got %v", ErrBadArgument, err)
		}
	}

	if calls != 1 {
		t.Errorf("expected one call, got %d", calls)
	}
}
