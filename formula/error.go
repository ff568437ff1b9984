package formula

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrNotCallable    = NewError("value is not callable")
	ErrBadArgument    = NewError("bad argument")
	ErrUnknownBuiltin = NewError("unknown built-in")
	ErrVarNotFound    = NewError("var doesnt exist")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the same sentinel, so wrapped copies made by
// [Error.Wrap] and [Error.With] still match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.err == nil && t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With adds attributes to the error for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{msg: e.msg, err: e.err, attrs: newAttrs}
}

// ParseError reports malformed formula text. Position is the rune offset of
// the offending character.
type ParseError struct {
	Message  string
	Position int
}

func newParseError(msg string, pos int) *ParseError {
	return &ParseError{Message: msg, Position: pos}
}

func (e *ParseError) Error() string { return e.Message }

// EvaluateError reports an invalid runtime operation in a well-formed
// formula. Position is the rune offset of the node that failed.
type EvaluateError struct {
	Message  string
	Position int
	cause    error
}

func newEvaluateError(msg string, pos int) *EvaluateError {
	return &EvaluateError{Message: msg, Position: pos}
}

func (e *EvaluateError) Error() string { return e.Message }

// Unwrap returns the error raised by a called function, if any.
func (e *EvaluateError) Unwrap() error { return e.cause }

// FormulaError decorates a [ParseError] or [EvaluateError] with the source
// text it was raised for.
type FormulaError struct {
	Source string
	err    error
}

func (e *FormulaError) Error() string {
	return e.message() + "\nFormula: " + e.Source +
		"\nPosition: " + strconv.Itoa(e.Position())
}

func (e *FormulaError) Unwrap() error { return e.err }

func (e *FormulaError) message() string {
	var (
		pe *ParseError
		ee *EvaluateError
	)

	switch {
	case errors.As(e.err, &pe):
		return pe.Message
	case errors.As(e.err, &ee):
		return ee.Message
	default:
		return e.err.Error()
	}
}

// Position returns the offset carried by the wrapped error.
func (e *FormulaError) Position() int {
	var (
		pe *ParseError
		ee *EvaluateError
	)

	switch {
	case errors.As(e.err, &pe):
		return pe.Position
	case errors.As(e.err, &ee):
		return ee.Position
	default:
		return 0
	}
}

// LogValue implements slog.LogValuer.
func (e *FormulaError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", e.message()),
		slog.String("formula", e.Source),
		slog.Int("position", e.Position()),
	)
}

// decorate attaches src to parse and evaluate errors; other errors (context
// cancellation, resolver failures) pass through unchanged.
func decorate(src string, err error) error {
	var (
		pe *ParseError
		ee *EvaluateError
	)

	if errors.As(err, &pe) || errors.As(err, &ee) {
		return &FormulaError{Source: src, err: err}
	}

	return err
}
