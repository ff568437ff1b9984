package formula

import (
	"context"
	"log/slog"

	"github.com/ardnew/rpt/log"
)

// Program is a parsed formula ready for repeated evaluation. Programs are
// immutable and may be shared between goroutines.
type Program struct {
	Source  string
	Infix   []Expr
	Postfix []Expr
}

// Compile parses src and converts it to postfix form.
func Compile(src string) (*Program, error) {
	infix, err := Parse(src)
	if err != nil {
		return nil, decorate(src, err)
	}

	return &Program{Source: src, Infix: infix, Postfix: ToPostfix(infix)}, nil
}

// Eval evaluates the program. Variables are looked up through r first and
// then in the built-in table. A nil r resolves built-ins only.
func (p *Program) Eval(ctx context.Context, r Resolver, opts ...Option) (Value, error) {
	return p.run(ctx, r, apply(opts...))
}

func (p *Program) run(ctx context.Context, r Resolver, s settings) (Value, error) {
	e := evaluator{resolver: r, builtins: s.builtins}

	v, err := e.eval(ctx, p.Postfix)
	if err != nil {
		err = decorate(p.Source, err)
		s.logger.TraceContext(ctx, "formula failed",
			slog.String("formula", p.Source),
			slog.Any("error", err))

		return nil, err
	}

	if s.logger.Enabled(ctx, log.LevelTrace) {
		s.logger.TraceContext(ctx, "formula evaluated",
			slog.String("formula", p.Source),
			slog.String("type", TypeOf(v)))
	}

	return v, nil
}

// Evaluate compiles and evaluates src. With [WithCache] the compiled
// program is reused across calls.
func Evaluate(ctx context.Context, src string, r Resolver, opts ...Option) (Value, error) {
	s := apply(opts...)

	var (
		prog *Program
		err  error
	)

	if s.cache != nil {
		prog, err = s.cache.Compile(src)
	} else {
		prog, err = Compile(src)
	}

	if err != nil {
		return nil, err
	}

	return prog.run(ctx, r, s)
}

type settings struct {
	builtins *Builtins
	cache    *Cache
	logger   log.Logger
}

// Option configures evaluation.
type Option func(settings) settings

func apply(opts ...Option) settings {
	var s settings

	for _, opt := range opts {
		if opt != nil {
			s = opt(s)
		}
	}

	if s.builtins == nil {
		s.builtins = DefaultBuiltins()
	}

	return s
}

// WithBuiltins replaces the built-in table.
func WithBuiltins(b *Builtins) Option {
	return func(s settings) settings {
		s.builtins = b

		return s
	}
}

// WithCache reuses compiled programs from c.
func WithCache(c *Cache) Option {
	return func(s settings) settings {
		s.cache = c

		return s
	}
}

// WithLogger traces evaluation through l.
func WithLogger(l log.Logger) Option {
	return func(s settings) settings {
		s.logger = l

		return s
	}
}
