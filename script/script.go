package script

import (
	"context"
	"log/slog"
	"maps"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/rpt/log"
)

// DefaultMaxNodes bounds the size of a compiled script.
const DefaultMaxNodes = 10000

// Evaluator runs scripts against a fixed set of globals. It is safe for
// concurrent use.
type Evaluator struct {
	globals  map[string]any
	maxNodes uint
	logger   log.Logger
}

// Option configures an [Evaluator].
type Option func(*Evaluator)

// New returns an evaluator configured by opts.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{globals: map[string]any{}, maxNodes: DefaultMaxNodes}

	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	return e
}

// WithGlobals makes every entry of g visible to scripts by name.
func WithGlobals(g map[string]any) Option {
	return func(e *Evaluator) { maps.Copy(e.globals, g) }
}

// WithMaxNodes limits the number of syntax nodes a script may contain.
func WithMaxNodes(n uint) Option {
	return func(e *Evaluator) { e.maxNodes = n }
}

// WithLogger traces compilation and evaluation through l.
func WithLogger(l log.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// Evaluate compiles and runs code, returning its result as plain Go values.
// Unknown identifiers evaluate to nil.
func (e *Evaluator) Evaluate(ctx context.Context, code string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrEmpty
	}

	env := maps.Clone(e.globals)
	box := &sandbox{logger: e.logger}

	program, err := expr.Compile(code,
		expr.Env(env),
		expr.AllowUndefinedVariables(),
		expr.MaxNodes(e.maxNodes),
		expr.Patch(box),
	)
	if err != nil {
		return nil, ErrCompile.Wrap(err).With(slog.Int("length", len(code)))
	}

	e.logger.TraceContext(ctx, "script compiled",
		slog.Int("length", len(code)),
		slog.Int("patched", box.patched))

	out, err := vm.Run(program, env)
	if err != nil {
		return nil, ErrRun.Wrap(err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
