package repl

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/rpt/formula"
	"github.com/ardnew/rpt/log"
)

// dataName is the variable bound to the data document.
const dataName = "data"

// session is the evaluation state shared by the REPL model and its commands.
// Edits to the data document and let bindings are visible to every later
// formula.
type session struct {
	ctx      context.Context
	scope    *formula.Scope
	data     *formula.Cell
	builtins *formula.Builtins
	cache    *formula.Cache
	logger   log.Logger
}

func newSession(ctx context.Context, data formula.Value, logger log.Logger) *session {
	if data == nil {
		data = formula.Undefined{}
	}

	if logger.Logger == nil {
		logger = log.Discard()
	}

	s := &session{
		ctx:      ctx,
		scope:    formula.NewScope(),
		data:     &formula.Cell{Value: data},
		builtins: formula.DefaultBuiltins(),
		cache:    formula.NewCache(),
		logger:   logger,
	}

	s.scope.PushCell(dataName, s.data)

	return s
}

func (s *session) options() []formula.Option {
	return []formula.Option{
		formula.WithBuiltins(s.builtins),
		formula.WithCache(s.cache),
		formula.WithLogger(s.logger),
	}
}

// eval evaluates src against the session scope.
func (s *session) eval(src string) (formula.Value, error) {
	return formula.Evaluate(s.ctx, src, s.scope, s.options()...)
}

// let evaluates src and binds the result to name. Rebinding an existing let
// updates its cell in place.
func (s *session) let(name, src string) (formula.Value, error) {
	if !isIdentifier(name) {
		return nil, ErrInvalidName
	}

	if name == dataName {
		return nil, ErrReservedName
	}

	v, err := s.eval(src)
	if err != nil {
		return nil, err
	}

	if cell, err := s.scope.FindCell(name); err == nil {
		cell.Value = v
	} else {
		s.scope.PushCell(name, &formula.Cell{Value: v})
	}

	s.logger.TraceContext(s.ctx, "repl let",
		slog.String("name", name),
		slog.String("type", formula.TypeOf(v)),
	)

	return v, nil
}

// names returns the bound variable names followed by the built-in names.
func (s *session) names() []string {
	names := s.scope.Names()
	for _, n := range s.builtins.Names() {
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}

	return names
}

// isFunction reports whether name is a built-in function.
func (s *session) isFunction(name string) bool {
	v, ok := s.builtins.Lookup(name)
	if !ok {
		return false
	}

	_, ok = v.(*formula.Function)

	return ok
}

// members returns the completion candidates below the value of path.
func (s *session) members(path string) []string {
	v, err := s.eval(path)
	if err != nil {
		return nil
	}

	if o, ok := v.(*formula.Object); ok {
		return o.Keys()
	}

	return formula.MemberNames(v.Kind())
}

// display renders a formula result: JSON when it has a JSON form, its
// string conversion otherwise.
func display(v formula.Value) string {
	if s, ok := formula.JSON(v, "  "); ok {
		return s
	}

	return formula.ToString(v)
}

// preview renders v on one line, truncated to width runes.
func preview(v formula.Value, width int) string {
	s, ok := formula.JSON(v, "")
	if !ok {
		s = formula.ToString(v)
	}

	s = strings.Join(strings.Fields(s), " ")

	if r := []rune(s); width > 3 && len(r) > width {
		return string(r[:width-3]) + "..."
	}

	return s
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}
