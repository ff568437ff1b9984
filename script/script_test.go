package script

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ardnew/rpt/formula"
)

func TestEvaluate(t *testing.T) {
	globals := map[string]any{
		"data": map[string]any{
			"items": []any{1, 2, 3},
			"name":  "north",
		},
		"__secret": "hidden",
	}

	tests := []struct {
		name string
		code string
		want formula.Value
	}{
		{"arithmetic", "1 + 2", formula.Number(3)},
		{"member", "data.name", formula.String("north")},
		{"index", "data.items[1]", formula.Number(2)},
		{"builtin", "len(data.items)", formula.Number(3)},
		{"map", `{"a": 1, "b": [true, "x"]}`, formula.NewObject().
			Set("a", formula.Number(1)).
			Set("b", formula.NewArray(formula.Bool(true), formula.String("x")))},
		{"undefined", "missing", formula.Null{}},
		{"reserved identifier", "__secret", formula.Null{}},
		{"reserved member", "data.__proto__", formula.Null{}},
		{"reserved dollar", `data["$$typeof"]`, formula.Null{}},
	}

	e := New(WithGlobals(globals))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(t.Context(), tt.code)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			v := formula.FromNative(got)
			if !formula.Equal(v, tt.want) {
				t.Errorf("expected %v, got %v", formula.ToNative(tt.want), got)
			}
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	fail := func() (any, error) { return nil, errors.New("boom") }
	e := New(WithGlobals(map[string]any{"fail": fail}))

	if _, err := e.Evaluate(t.Context(), "   "); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}

	if _, err := e.Evaluate(t.Context(), "1 +"); !errors.Is(err, ErrCompile) {
		t.Errorf("expected ErrCompile, got %v", err)
	}

	_, err := e.Evaluate(t.Context(), "fail()")
	if !errors.Is(err, ErrRun) {
		t.Errorf("expected ErrRun, got %v", err)
	}

	if err != nil && !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected cause in %q", err.Error())
	}
}

func TestEvaluate_MaxNodes(t *testing.T) {
	e := New(WithMaxNodes(3))

	if _, err := e.Evaluate(t.Context(), "1 + 2 + 3 + 4 + 5"); !errors.Is(err, ErrCompile) {
		t.Errorf("expected ErrCompile, got %v", err)
	}
}

func TestEvaluate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := New().Evaluate(ctx, "1"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestEvaluate_GlobalsCopied(t *testing.T) {
	g := map[string]any{"x": 1}
	e := New(WithGlobals(g))
	g["x"] = 2

	got, err := e.Evaluate(t.Context(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(got, 1) {
		t.Errorf("expected 1, got %v", got)
	}
}

func TestReserved(t *testing.T) {
	for name, want := range map[string]bool{
		"__proto__": true,
		"$$typeof":  true,
		"_private":  false,
		"data":      false,
		"$x":        false,
	} {
		if got := reserved(name); got != want {
			t.Errorf("reserved(%q): expected %v, got %v", name, want, got)
		}
	}
}
