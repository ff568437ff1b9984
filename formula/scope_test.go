package formula

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestScope_Shadowing(t *testing.T) {
	s := NewScope()
	s.Push("data", String("outer"))
	s.Push("report", num(1))
	s.Push("data", String("inner"))

	got, err := s.Resolve(t.Context(), "data")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != String("inner") {
		t.Errorf("expected inner, got %s", describe(got))
	}

	if names := s.Names(); !slices.Equal(names, []string{"data", "report"}) {
		t.Errorf("expected [data report], got %v", names)
	}

	if name, ok := s.Pop(); !ok || name != "data" {
		t.Errorf("expected to pop data, got %q %v", name, ok)
	}

	got, _ = s.Resolve(t.Context(), "data")
	if got != String("outer") {
		t.Errorf("expected outer after pop, got %s", describe(got))
	}

	if s.Len() != 2 {
		t.Errorf("expected 2 bindings, got %d", s.Len())
	}
}

func TestScope_Missing(t *testing.T) {
	s := NewScope()

	got, err := s.Resolve(t.Context(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !isUndefined(got) {
		t.Errorf("expected undefined, got %s", describe(got))
	}

	if _, ok := s.Pop(); ok {
		t.Error("expected pop on empty scope to fail")
	}
}

func TestScope_Thunk(t *testing.T) {
	s := NewScope()
	n := 0

	s.PushFunc("counter", func(context.Context, string) (Value, error) {
		n++

		return Number(n), nil
	})

	got, err := Evaluate(t.Context(), "counter + counter", s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !Equal(got, num(3)) {
		t.Errorf("expected 3, got %s", describe(got))
	}
}

func TestScope_Cell(t *testing.T) {
	s := NewScope()
	c := &Cell{Value: num(1)}
	s.PushCell("total", c)
	s.Push("other", num(7))

	found, err := s.FindCell("total")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if found != c {
		t.Fatal("expected the pushed cell")
	}

	found.Value = num(5)

	got, err := Evaluate(t.Context(), "total * 2", s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !Equal(got, num(10)) {
		t.Errorf("expected 10, got %s", describe(got))
	}

	if _, err := s.FindCell("other"); !errors.Is(err, ErrVarNotFound) {
		t.Errorf("expected ErrVarNotFound for plain binding, got %v", err)
	}

	if _, err := s.FindCell("missing"); !errors.Is(err, ErrVarNotFound) {
		t.Errorf("expected ErrVarNotFound, got %v", err)
	}
}

func TestScope_ShadowsBuiltins(t *testing.T) {
	s := NewScope()
	s.Push("true", Bool(false))

	got, err := Evaluate(t.Context(), "true", s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != Bool(false) {
		t.Errorf("expected false, got %s", describe(got))
	}
}
