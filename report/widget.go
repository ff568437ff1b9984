package report

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/ardnew/rpt/formula"
)

type (
	repeatWidget     struct{}
	conditionWidget  struct{}
	setVarWidget     struct{}
	updateVarWidget  struct{}
	firstMatchWidget struct{}
	frameWidget      struct{}
	columnsWidget    struct{}
	columnsCtWidget  struct{}
)

// Repeat directions.
const (
	DirectionRows    = "rows"
	DirectionColumns = "columns"
	DirectionGrid    = "grid"
)

const gridWithFrameCSS = `
.grid-with-frame > div {
	display: inline-block;
	vertical-align: top;
}
`

// Compile evaluates the children once per element of source, binding the
// element to varName and its index to varName_i.
func (repeatWidget) Compile(ctx context.Context, it *Item, h *Helper) (*Compiled, error) {
	v, err := h.Eval(ctx, it.String("source"))
	if err != nil {
		return nil, err
	}

	arr, ok := v.(*formula.Array)
	if !ok {
		return nil, fmt.Errorf("Repeat: expected source to be array but got %s", formula.TypeOf(v))
	}

	name := it.String("varName")
	rows := make([][]*Compiled, 0, arr.Len())

	for i, elem := range arr.Elems {
		h.Scope.Push(name, elem)
		h.Scope.Push(name+"_i", formula.Number(i))

		children, err := h.CompileChildren(ctx, it.Children)
		if err != nil {
			return nil, err
		}

		rows = append(rows, children)

		h.Scope.Pop()
		h.Scope.Pop()
	}

	direction := it.String("direction")
	addChild := true

	if direction == DirectionGrid && len(it.Children) == 1 && it.Children[0].Type == "Frame" {
		addChild = false
		h.AddCSS(".grid-with-frame", gridWithFrameCSS)
	}

	return &Compiled{
		Rows: rows,
		Props: formula.NewObject().
			Set("direction", formula.String(direction)).
			Set("addChildElement", formula.Bool(addChild)),
	}, nil
}

func (repeatWidget) Render(r *Renderer, c *Compiled) error {
	direction := propText(c.Props, "direction")

	if direction != DirectionColumns && direction != DirectionGrid {
		for _, row := range c.Rows {
			if err := r.Children(row); err != nil {
				return err
			}
		}

		return nil
	}

	var parent, item style

	if direction == DirectionColumns {
		parent.set("display", "flex")

		w := 1.0
		if len(c.Rows) > 0 {
			w = 1 / float64(len(c.Rows))
		}

		item.set("flex", "0 0 "+percent(w))
	}

	addChild := propBool(c.Props, "addChildElement")

	if direction == DirectionGrid {
		if addChild {
			parent.set("display", "flex")
			parent.set("flex-wrap", "wrap")
		} else {
			parent.set("display", "block")
		}
	}

	if !addChild {
		r.Printf(`<div style="%s" class="grid-with-frame">`, parent.attr())

		for _, row := range c.Rows {
			if err := r.Children(row); err != nil {
				return err
			}
		}

		r.WriteString("</div>\n")

		return nil
	}

	r.Printf(`<div style="%s">`, parent.attr())

	for _, row := range c.Rows {
		r.Printf(`<div style="%s">`, item.attr())

		if err := r.Children(row); err != nil {
			return err
		}

		r.WriteString("</div>")
	}

	r.WriteString("</div>\n")

	return nil
}

// Compile includes the children only when formula is truthy.
func (conditionWidget) Compile(ctx context.Context, it *Item, h *Helper) (*Compiled, error) {
	ok, err := h.Eval(ctx, it.String("formula"))
	if err != nil {
		return nil, err
	}

	c := &Compiled{Children: []*Compiled{}}

	if formula.Truthy(ok) {
		if c.Children, err = h.CompileChildren(ctx, it.Children); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (conditionWidget) Render(r *Renderer, c *Compiled) error { return r.Children(c.Children) }

// Compile binds varName to the value of source while the children compile.
// The binding is a cell so UpdateVar can change it.
func (setVarWidget) Compile(ctx context.Context, it *Item, h *Helper) (*Compiled, error) {
	v, err := h.Eval(ctx, it.String("source"))
	if err != nil {
		return nil, err
	}

	if _, undef := v.(formula.Undefined); undef {
		return nil, errors.New("SetVar should not set variable value to undefined")
	}

	h.Scope.PushCell(it.String("varName"), &formula.Cell{Value: v})

	children, err := h.CompileChildren(ctx, it.Children)
	if err != nil {
		return nil, err
	}

	h.Scope.Pop()

	return &Compiled{Children: children}, nil
}

func (setVarWidget) Render(r *Renderer, c *Compiled) error { return r.Children(c.Children) }

// Compile stores the value of formula in the nearest SetVar or report
// variable called varName.
func (updateVarWidget) Compile(ctx context.Context, it *Item, h *Helper) (*Compiled, error) {
	v, err := h.Eval(ctx, it.String("formula"))
	if err != nil {
		return nil, err
	}

	if _, undef := v.(formula.Undefined); undef {
		return nil, errors.New("UpdateVar should not set undefined")
	}

	cell, err := h.Scope.FindCell(it.String("varName"))
	if err != nil {
		return nil, err
	}

	cell.Value = v

	return &Compiled{}, nil
}

func (updateVarWidget) Render(*Renderer, *Compiled) error { return nil }

// Compile binds varName to the first element of source satisfying
// condition and compiles the children only if one was found.
func (firstMatchWidget) Compile(ctx context.Context, it *Item, h *Helper) (*Compiled, error) {
	v, err := h.Eval(ctx, it.String("source"))
	if err != nil {
		return nil, err
	}

	arr, ok := v.(*formula.Array)
	if !ok {
		return nil, fmt.Errorf("FirstMatch: source should be array bot got %s", formula.TypeOf(v))
	}

	name := it.String("varName")
	cond := it.String("condition")

	var (
		match formula.Value = formula.Undefined{}
		found bool
	)

	for _, elem := range arr.Elems {
		h.Scope.Push(name, elem)
		ok, err := h.Eval(ctx, cond)
		h.Scope.Pop()

		if err != nil {
			return nil, err
		}

		if formula.Truthy(ok) {
			match, found = elem, true

			break
		}
	}

	c := &Compiled{Children: []*Compiled{}}

	h.Scope.Push(name, match)

	if found {
		if c.Children, err = h.CompileChildren(ctx, it.Children); err != nil {
			return nil, err
		}
	}

	h.Scope.Pop()

	return c, nil
}

func (firstMatchWidget) Render(r *Renderer, c *Compiled) error { return r.Children(c.Children) }

// Compile keeps the frame's layout fields and records its font.
func (frameWidget) Compile(ctx context.Context, it *Item, h *Helper) (*Compiled, error) {
	font, err := itemFont(it)
	if err != nil {
		return nil, err
	}

	h.AddFont(font)

	children, err := h.CompileChildren(ctx, it.Children)
	if err != nil {
		return nil, err
	}

	return &Compiled{Children: children, Props: it.Clone().Props}, nil
}

func (frameWidget) Render(r *Renderer, c *Compiled) error {
	var s style

	s.set("margin", propBox(c.Props, "margin"))
	s.set("padding", propBox(c.Props, "padding"))
	s.set("box-sizing", "border-box")
	s.set("width", "auto")

	if b, ok := c.Props.Get("border"); ok {
		if a, isArr := b.(*formula.Array); isArr {
			for i, side := range []string{"top", "right", "bottom", "left"} {
				var v formula.Value = formula.Undefined{}
				if i < a.Len() {
					v = a.Elems[i]
				}

				s.set("border-"+side, border(v))
			}
		} else {
			s.set("border", border(b))
		}
	}

	if bg := propText(c.Props, "backgroundColor"); bg != "" {
		s.set("background-color", bg)
	}

	if w := propText(c.Props, "width"); w != "" {
		s.set("width", w)
		s.set("flex", "0 0 "+w)
		s.set("overflow-x", "hidden")
	}

	if hgt := propText(c.Props, "height"); hgt != "" {
		s.set("height", hgt)
		s.set("overflow-y", "hidden")
	}

	if propBool(c.Props, "pageBreakAvoid") {
		s.set("page-break-inside", "avoid")
	}

	if fv, ok := c.Props.Get("font"); ok && !formula.IsNullish(fv) {
		font, err := docFont(fv, "Frame.font")
		if err != nil {
			return err
		}

		s.merge(fontStyle(font))
	}

	r.Printf(`<div style="%s">`, s.attr())

	if err := r.Children(c.Children); err != nil {
		return err
	}

	r.WriteString("</div>\n")

	return nil
}

// Compile keeps the column widths; each child is a ColumnsCt.
func (columnsWidget) Compile(ctx context.Context, it *Item, h *Helper) (*Compiled, error) {
	children, err := h.CompileChildren(ctx, it.Children)
	if err != nil {
		return nil, err
	}

	widths := formula.NewArray()
	for _, w := range it.Strings("widths") {
		widths.Elems = append(widths.Elems, formula.String(w))
	}

	return &Compiled{
		Children: children,
		Props:    formula.NewObject().Set("widths", widths),
	}, nil
}

var flexGrow = regexp.MustCompile(`^-?\d+$`)

func columnStyle(w string) style {
	switch {
	case w == "":
		return style{{"flex", "1 1 auto"}}
	case flexGrow.MatchString(w):
		return style{{"flex", w + " 1 auto"}}
	default:
		return style{{"flex", "0 0 " + w}, {"min-width", w}, {"max-width", w}}
	}
}

func (columnsWidget) Render(r *Renderer, c *Compiled) error {
	var widths []string

	if v, ok := c.Props.Get("widths"); ok {
		if a, ok := v.(*formula.Array); ok {
			for _, w := range a.Elems {
				widths = append(widths, formula.ToString(w))
			}
		}
	}

	r.WriteString(`<div style="display:flex">`)

	for i, col := range c.Children {
		w := ""
		if i < len(widths) {
			w = widths[i]
		}

		r.Printf(`<div style="%s">`, columnStyle(w).attr())

		if err := r.Children(col.Children); err != nil {
			return err
		}

		r.WriteString("</div>")
	}

	r.WriteString("</div>\n")

	return nil
}

func (columnsCtWidget) Compile(ctx context.Context, it *Item, h *Helper) (*Compiled, error) {
	children, err := h.CompileChildren(ctx, it.Children)
	if err != nil {
		return nil, err
	}

	return &Compiled{Children: children}, nil
}

// Render is only reached for a container outside of Columns.
func (columnsCtWidget) Render(r *Renderer, c *Compiled) error { return r.Children(c.Children) }
