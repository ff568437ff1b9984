package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/rpt/formula"
	"github.com/ardnew/rpt/log"
)

// Compiled is a widget with its formulas evaluated.
type Compiled struct {
	Type string

	// Wid is the index path of the widget in the report tree.
	Wid []int

	// Data is the evaluated text, HTML or image source.
	Data string

	Children []*Compiled

	// Rows holds one child list per iteration of a repeating widget.
	Rows [][]*Compiled

	// Props holds the remaining widget-specific fields.
	Props *formula.Object
}

// CompiledReport is the result of [Engine.Compile].
type CompiledReport struct {
	Name   string
	Target Target

	// Properties has FileName replaced by its evaluated value.
	Properties Properties

	FontsUsed []FontStyle
	GlobalCSS string
	Widgets   []*Compiled

	// Data is the input data the report was compiled against.
	Data formula.Value
}

// Helper is passed to every widget compile. It carries the shared scope
// stack and the report being built; each widget receives its own copy with
// its Wid set.
type Helper struct {
	Wid      []int
	Report   *Report
	Compiled *CompiledReport
	Scope    *formula.Scope
	API      *API

	engine *Engine
}

// Eval evaluates src against the current scope.
func (h *Helper) Eval(ctx context.Context, src string) (formula.Value, error) {
	return h.engine.eval(ctx, src, h.Scope)
}

// Logger returns the engine's logger.
func (h *Helper) Logger() log.Logger { return h.engine.logger }

// AddFont records a font face used by the report.
func (h *Helper) AddFont(f *Font) {
	if style, ok := f.Face(); ok {
		h.Compiled.FontsUsed = append(h.Compiled.FontsUsed, style)
	}
}

// AddCSS appends css to the report's global style sheet unless an earlier
// widget already added text containing marker.
func (h *Helper) AddCSS(marker, css string) {
	if !strings.Contains(h.Compiled.GlobalCSS, marker) {
		h.Compiled.GlobalCSS += css
	}
}

// CompileChildren compiles items one at a time in order. Widgets may push
// scope bindings; the scope must be back at its starting depth once every
// item is compiled.
func (h *Helper) CompileChildren(ctx context.Context, items []*Item) ([]*Compiled, error) {
	depth := h.Scope.Len()
	out := make([]*Compiled, 0, len(items))

	for i, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		w, err := h.engine.registry.Lookup(it.Type)
		if err != nil {
			return nil, err
		}

		child := *h
		child.Wid = append(slices.Clip(h.Wid), i)

		h.engine.logger.TraceContext(ctx, "compile widget",
			slog.String("type", it.Type),
			slog.String("wid", widString(child.Wid)))

		c, err := w.Compile(ctx, it, &child)
		if err != nil {
			return nil, widgetError(it.Type, child.Wid, err)
		}

		if c.Type == "" {
			c.Type = it.Type
		}

		c.Wid = child.Wid
		out = append(out, c)
	}

	if n := h.Scope.Len(); n != depth {
		return nil, ErrScopeImbalance.With(
			slog.String("wid", widString(h.Wid)),
			slog.Int("depth", depth),
			slog.Int("found", n))
	}

	return out, nil
}

// widgetError tags err with the failing widget. Errors from nested widgets
// are already tagged and pass through.
func widgetError(typ string, wid []int, err error) error {
	if errors.Is(err, ErrWidget) ||
		errors.Is(err, ErrScopeImbalance) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return ErrWidget.Wrap(err).With(
		slog.String("type", typ),
		slog.String("wid", widString(wid)))
}

func widString(wid []int) string {
	parts := make([]string, len(wid))
	for i, n := range wid {
		parts[i] = strconv.Itoa(n)
	}

	return strings.Join(parts, ".")
}

func (e *Engine) eval(ctx context.Context, src string, r formula.Resolver) (formula.Value, error) {
	return formula.Evaluate(ctx, src, r,
		formula.WithCache(e.cache),
		formula.WithBuiltins(e.builtins),
		formula.WithLogger(e.logger))
}

// Compile evaluates every formula of report against data and returns the
// compiled widget tree. The report itself is not modified.
//
// data and report are bound first, then each report variable in order, so
// a variable may refer to the ones declared before it. Widgets are compiled
// depth-first in document order.
func (e *Engine) Compile(ctx context.Context, report *Report, data formula.Value) (*CompiledReport, error) {
	if data == nil {
		data = formula.Undefined{}
	}

	r := report.Clone()
	scope := formula.NewScope()

	scope.Push("data", data)
	scope.Push("report", r.Value())

	out := &CompiledReport{
		Name:       r.Name,
		Target:     r.Target,
		Properties: r.Clone().Properties,
		Data:       data,
	}

	h := &Helper{Report: r, Compiled: out, Scope: scope, API: e.api, engine: e}

	for _, v := range r.Variables {
		val, err := h.Eval(ctx, v.Formula)
		if err != nil {
			return nil, ErrVariable.Wrap(err).With(slog.String("name", v.Name))
		}

		e.logger.TraceContext(ctx, "bind variable",
			slog.String("name", v.Name),
			slog.String("type", formula.TypeOf(val)))

		scope.PushCell(v.Name, &formula.Cell{Value: val})
	}

	h.AddFont(r.Properties.Font)

	if r.Properties.FileName != "" {
		name, err := h.Eval(ctx, r.Properties.FileName)
		if err != nil {
			return nil, err
		}

		s, ok := name.(formula.String)
		if !ok {
			return nil, ErrFileName.Wrap(fmt.Errorf("but received %s", formula.TypeOf(name)))
		}

		out.Properties.FileName = string(s)
	}

	widgets, err := h.CompileChildren(ctx, r.Children)
	if err != nil {
		return nil, err
	}

	out.Widgets = widgets

	for range len(r.Variables) + 2 {
		scope.Pop()
	}

	if scope.Len() != 0 {
		return nil, ErrScopeImbalance.With(slog.Int("found", scope.Len()))
	}

	e.logger.DebugContext(ctx, "report compiled",
		slog.String("name", out.Name),
		slog.Int("widgets", len(out.Widgets)),
		slog.Int("fonts", len(out.FontsUsed)))

	return out, nil
}
