package report

import (
	"github.com/ardnew/rpt/formula"
	"github.com/ardnew/rpt/log"
)

// Engine compiles reports and serializes them to targets. An Engine is
// safe for concurrent use; every call builds its own scope stack.
type Engine struct {
	registry    *Registry
	transforms  *Transforms
	api         *API
	allowUnsafe bool
	logger      log.Logger
	cache       *formula.Cache
	builtins    *formula.Builtins
}

// Option configures an [Engine].
type Option func(*Engine)

// New returns an engine with the default widgets and transforms.
func New(opts ...Option) *Engine {
	e := &Engine{}

	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	if e.registry == nil {
		e.registry = DefaultRegistry()
	}

	if e.transforms == nil {
		e.transforms = DefaultTransforms()
	}

	if e.api == nil {
		e.api = &API{}
	}

	if e.cache == nil {
		e.cache = formula.NewCache()
	}

	if e.builtins == nil {
		e.builtins = formula.DefaultBuiltins()
	}

	return e
}

// WithRegistry sets the available widgets.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithTransforms sets the available transforms.
func WithTransforms(t *Transforms) Option {
	return func(e *Engine) { e.transforms = t }
}

// WithAPI sets the external services.
func WithAPI(api *API) Option {
	return func(e *Engine) { e.api = api }
}

// WithAllowUnsafeEval permits script data sources.
func WithAllowUnsafeEval(allow bool) Option {
	return func(e *Engine) { e.allowUnsafe = allow }
}

// WithLogger traces compilation through l.
func WithLogger(l log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithCache shares compiled formulas between engines.
func WithCache(c *formula.Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithBuiltins replaces the formula built-in table.
func WithBuiltins(b *formula.Builtins) Option {
	return func(e *Engine) { e.builtins = b }
}

// API returns the engine's external services.
func (e *Engine) API() *API { return e.api }
