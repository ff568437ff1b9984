package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/ardnew/rpt/formula"
)

// Widget compiles one kind of report item and renders its compiled form.
type Widget interface {
	// Compile evaluates the formulas of item. Any binding pushed onto
	// h.Scope must be popped before returning.
	Compile(ctx context.Context, item *Item, h *Helper) (*Compiled, error)

	// Render writes the HTML for c.
	Render(r *Renderer, c *Compiled) error
}

// Transform rewrites the report's input data.
type Transform interface {
	// Apply returns the transformed data. It may modify data in place.
	Apply(ctx context.Context, data formula.Value, item *Item, h *TransformHelper) (formula.Value, error)
}

// Registry maps widget type names to implementations.
type Registry struct {
	widgets map[string]Widget
}

// Transforms maps transform type names to implementations.
type Transforms struct {
	transforms map[string]Transform
}

//nolint:gochecknoglobals
var (
	defaultsOnce      sync.Once
	defaultWidgets    map[string]Widget
	defaultTransforms map[string]Transform
)

func initDefaults() {
	defaultsOnce.Do(func() {
		defaultWidgets = map[string]Widget{
			"Repeat":     repeatWidget{},
			"Condition":  conditionWidget{},
			"SetVar":     setVarWidget{},
			"UpdateVar":  updateVarWidget{},
			"FirstMatch": firstMatchWidget{},
			"TextSimple": textWidget{},
			"TextHtml":   textHTMLWidget{},
			"Html":       htmlWidget{},
			"Frame":      frameWidget{},
			"Columns":    columnsWidget{},
			"ColumnsCt":  columnsCtWidget{},
			"PageBreak":  staticWidget{},
			"Separator":  staticWidget{},
			"Spacer":     staticWidget{},
			"Image":      imageWidget{},
		}

		defaultTransforms = map[string]Transform{
			"Filter": filterTransform{},
			"CSV":    csvTransform{},
		}
	})
}

// DefaultRegistry returns a fresh copy of the standard widget set.
func DefaultRegistry() *Registry {
	initDefaults()

	return &Registry{widgets: maps.Clone(defaultWidgets)}
}

// Register adds or replaces a widget.
func (r *Registry) Register(name string, w Widget) *Registry {
	r.widgets[name] = w

	return r
}

// Lookup returns the widget called name.
func (r *Registry) Lookup(name string) (Widget, error) {
	if w, ok := r.widgets[name]; ok {
		return w, nil
	}

	return nil, ErrUnknownWidget.Wrap(errors.New(name)).With(slog.String("type", name))
}

// Names returns the registered widget names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.widgets))
}

// DefaultTransforms returns a fresh copy of the standard transform set.
func DefaultTransforms() *Transforms {
	initDefaults()

	return &Transforms{transforms: maps.Clone(defaultTransforms)}
}

// Register adds or replaces a transform.
func (t *Transforms) Register(name string, tr Transform) *Transforms {
	t.transforms[name] = tr

	return t
}

// Lookup returns the transform called name.
func (t *Transforms) Lookup(name string) (Transform, error) {
	if tr, ok := t.transforms[name]; ok {
		return tr, nil
	}

	return nil, ErrUnknownTransform.Wrap(fmt.Errorf("Transform '%s' does not exist", name)).
		With(slog.String("type", name))
}

// Names returns the registered transform names, sorted.
func (t *Transforms) Names() []string {
	return slices.Sorted(maps.Keys(t.transforms))
}
