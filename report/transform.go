package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ardnew/rpt/formula"
)

// TransformHelper is passed to every transform step. Each step gets its
// own empty scope.
type TransformHelper struct {
	Index int
	Scope *formula.Scope
	API   *API

	engine *Engine
}

// Eval evaluates src against the step's scope.
func (h *TransformHelper) Eval(ctx context.Context, src string) (formula.Value, error) {
	return h.engine.eval(ctx, src, h.Scope)
}

// ApplyTransforms feeds data through the first n items in order, each step
// receiving the previous step's result. A negative n applies them all.
//
// The input is cloned first; when a step fails the caller's data is left
// untouched.
func (e *Engine) ApplyTransforms(ctx context.Context, items []*Item, data formula.Value, n int) (formula.Value, error) {
	if n < 0 || n > len(items) {
		n = len(items)
	}

	if n == 0 {
		return data, nil
	}

	if data == nil {
		data = formula.Undefined{}
	}

	cur := formula.Clone(data)

	for i, it := range items[:n] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tr, err := e.transforms.Lookup(it.Type)
		if err != nil {
			return nil, err
		}

		e.logger.TraceContext(ctx, "apply transform",
			slog.Int("index", i),
			slog.String("type", it.Type))

		h := &TransformHelper{Index: i, Scope: formula.NewScope(), API: e.api, engine: e}

		if cur, err = tr.Apply(ctx, cur, it, h); err != nil {
			return nil, transformError(it.Type, i, err)
		}

		if cur == nil {
			cur = formula.Undefined{}
		}
	}

	return cur, nil
}

func transformError(typ string, i int, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return ErrTransform.Wrap(err).With(slog.String("type", typ), slog.Int("index", i))
}

type (
	filterTransform struct{}
	csvTransform    struct{}
)

// Apply removes the elements of the array selected by field for which
// condition is falsy. The array is modified in place; data and item are
// bound while condition runs.
func (filterTransform) Apply(ctx context.Context, data formula.Value, it *Item, h *TransformHelper) (formula.Value, error) {
	field, cond := it.String("field"), it.String("condition")
	if field == "" || cond == "" {
		return data, nil
	}

	h.Scope.Push("data", data)
	defer h.Scope.Pop()

	v, err := h.Eval(ctx, field)
	if err != nil {
		return nil, err
	}

	arr, ok := v.(*formula.Array)
	if !ok {
		return nil, fmt.Errorf("Filter: field should be array but got %s", formula.TypeOf(v))
	}

	for i := 0; i < len(arr.Elems); {
		h.Scope.Push("item", arr.Elems[i])
		keep, err := h.Eval(ctx, cond)
		h.Scope.Pop()

		if err != nil {
			return nil, err
		}

		if formula.Truthy(keep) {
			i++
		} else {
			arr.Elems = append(arr.Elems[:i], arr.Elems[i+1:]...)
		}
	}

	return data, nil
}

// Apply builds a table of strings. Each row definition with a source adds
// one row per element of the source, bound to item; one without adds a
// single row.
func (csvTransform) Apply(ctx context.Context, data formula.Value, it *Item, h *TransformHelper) (formula.Value, error) {
	h.Scope.Push("data", data)
	defer h.Scope.Pop()

	defs, _ := it.Get("rows")
	list, _ := defs.(*formula.Array)
	table := formula.NewArray()

	if list == nil {
		return table, nil
	}

	row := func(cols []string) (formula.Value, error) {
		cells := make([]formula.Value, 0, len(cols))

		for _, src := range cols {
			v, err := h.Eval(ctx, src)
			if err != nil {
				return nil, err
			}

			cells = append(cells, formula.String(formula.ToString(v)))
		}

		return formula.NewArray(cells...), nil
	}

	for i, d := range list.Elems {
		def, ok := d.(*formula.Object)
		if !ok {
			return nil, docError(fmt.Sprintf("CSV.rows[%d]", i), "object", d)
		}

		rd := &Item{Props: def}
		cols := rd.Strings("cols")

		source := rd.String("source")
		if source == "" {
			r, err := row(cols)
			if err != nil {
				return nil, err
			}

			table.Elems = append(table.Elems, r)

			continue
		}

		v, err := h.Eval(ctx, source)
		if err != nil {
			return nil, err
		}

		elems, ok := v.(*formula.Array)
		if !ok {
			return nil, fmt.Errorf(
				"transform CSV: source of row should be array but got: %s, for source: %s.",
				formula.TypeOf(v), source)
		}

		for _, elem := range elems.Elems {
			h.Scope.Push("item", elem)
			r, err := row(cols)
			h.Scope.Pop()

			if err != nil {
				return nil, err
			}

			table.Elems = append(table.Elems, r)
		}
	}

	return table, nil
}
