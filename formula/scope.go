package formula

import (
	"context"
	"log/slog"
	"slices"
)

// Thunk produces the current value of a binding each time it is looked up.
type Thunk func(ctx context.Context, name string) (Value, error)

// Cell is a mutable slot that a binding reads through, so a later update is
// visible to every formula evaluated afterwards.
type Cell struct {
	Value Value
}

type binding struct {
	name  string
	value Value
	thunk Thunk
	cell  *Cell
}

// Scope is an ordered stack of name bindings. Lookups scan from the most
// recent binding backward, so inner bindings shadow outer ones and built-in
// names. A Scope is owned by a single compilation and is not safe for
// concurrent use.
type Scope struct {
	stack []binding
}

// NewScope returns an empty scope.
func NewScope() *Scope { return &Scope{} }

// Push binds name to a fixed value.
func (s *Scope) Push(name string, v Value) {
	if v == nil {
		v = Undefined{}
	}

	s.stack = append(s.stack, binding{name: name, value: v})
}

// PushFunc binds name to a thunk invoked on every lookup.
func (s *Scope) PushFunc(name string, fn Thunk) {
	s.stack = append(s.stack, binding{name: name, thunk: fn})
}

// PushCell binds name to c; lookups return the cell's current value.
func (s *Scope) PushCell(name string, c *Cell) {
	s.stack = append(s.stack, binding{name: name, cell: c})
}

// Pop removes the most recent binding and returns its name. ok is false if
// the scope was already empty.
func (s *Scope) Pop() (name string, ok bool) {
	if len(s.stack) == 0 {
		return "", false
	}

	name = s.stack[len(s.stack)-1].name
	s.stack[len(s.stack)-1] = binding{}
	s.stack = s.stack[:len(s.stack)-1]

	return name, true
}

// Len returns the number of bindings.
func (s *Scope) Len() int { return len(s.stack) }

// Names returns the distinct bound names, innermost first.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.stack))

	for i := len(s.stack) - 1; i >= 0; i-- {
		if !slices.Contains(names, s.stack[i].name) {
			names = append(names, s.stack[i].name)
		}
	}

	return names
}

// Resolve returns the value of the innermost binding called name, or
// undefined if there is none. It implements [Resolver].
func (s *Scope) Resolve(ctx context.Context, name string) (Value, error) {
	for i := len(s.stack) - 1; i >= 0; i-- {
		b := s.stack[i]
		if b.name != name {
			continue
		}

		switch {
		case b.thunk != nil:
			v, err := b.thunk(ctx, name)
			if err != nil {
				return nil, err
			}

			return resolve(ctx, v)
		case b.cell != nil:
			return resolve(ctx, b.cell.Value)
		default:
			return resolve(ctx, b.value)
		}
	}

	return Undefined{}, nil
}

// FindCell returns the cell of the innermost cell binding called name.
func (s *Scope) FindCell(name string) (*Cell, error) {
	for i := len(s.stack) - 1; i >= 0; i-- {
		if b := s.stack[i]; b.name == name && b.cell != nil {
			return b.cell, nil
		}
	}

	return nil, ErrVarNotFound.With(slog.String("name", name))
}
