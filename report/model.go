package report

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/rpt/formula"
)

// Item is one node of a report tree: a widget instance or a transform
// step. Props holds every field other than type and children in document
// order.
type Item struct {
	Type     string
	Children []*Item
	Props    *formula.Object
}

// NewItem returns an item of the given type with no fields.
func NewItem(typ string, children ...*Item) *Item {
	return &Item{Type: typ, Children: children, Props: formula.NewObject()}
}

// Set assigns a field and returns it for chaining.
func (it *Item) Set(key string, v any) *Item {
	it.Props.Set(key, formula.FromNative(v))

	return it
}

// Get returns the named field.
func (it *Item) Get(key string) (formula.Value, bool) {
	if it.Props == nil {
		return nil, false
	}

	return it.Props.Get(key)
}

// String returns the named field as text, or "" if absent or not a string.
func (it *Item) String(key string) string {
	if v, ok := it.Get(key); ok {
		if s, ok := v.(formula.String); ok {
			return string(s)
		}
	}

	return ""
}

// Text returns the named field converted to text; absent and nullish
// fields yield "".
func (it *Item) Text(key string) string {
	v, ok := it.Get(key)
	if !ok || formula.IsNullish(v) {
		return ""
	}

	return formula.ToString(v)
}

// Strings returns the named field as a list of texts.
func (it *Item) Strings(key string) []string {
	v, ok := it.Get(key)
	if !ok {
		return nil
	}

	a, ok := v.(*formula.Array)
	if !ok {
		return nil
	}

	out := make([]string, 0, a.Len())
	for _, e := range a.Elems {
		if formula.IsNullish(e) {
			out = append(out, "")
		} else {
			out = append(out, formula.ToString(e))
		}
	}

	return out
}

// Clone returns a deep copy of it.
func (it *Item) Clone() *Item {
	out := &Item{Type: it.Type, Children: cloneItems(it.Children)}

	if it.Props != nil {
		out.Props, _ = formula.Clone(it.Props).(*formula.Object)
	} else {
		out.Props = formula.NewObject()
	}

	return out
}

// Value exposes it to formulas as an object.
func (it *Item) Value() formula.Value {
	o := formula.NewObject().Set("type", formula.String(it.Type))

	if it.Props != nil {
		for k, v := range it.Props.All() {
			o.Set(k, v)
		}
	}

	return o.Set("children", itemValues(it.Children))
}

// Ordered converts it into a YAML-ready map.
func (it *Item) Ordered() yaml.MapSlice {
	out := yaml.MapSlice{{Key: "type", Value: it.Type}}

	if it.Props != nil {
		for k, v := range it.Props.All() {
			out = append(out, yaml.MapItem{Key: k, Value: formula.ToOrdered(v)})
		}
	}

	children := make([]any, 0, len(it.Children))
	for _, ch := range it.Children {
		children = append(children, ch.Ordered())
	}

	return append(out, yaml.MapItem{Key: "children", Value: children})
}

func cloneItems(items []*Item) []*Item {
	out := make([]*Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}

	return out
}

func itemValues(items []*Item) *formula.Array {
	elems := make([]formula.Value, len(items))
	for i, it := range items {
		elems[i] = it.Value()
	}

	return formula.NewArray(elems...)
}

// Font describes the typeface of a report or frame.
type Font struct {
	Family     string
	Size       string
	Weight     string
	Style      string
	Color      string
	LineHeight float64
}

// FontStyle identifies one face of a font family used by a report.
type FontStyle struct {
	Name   string
	Weight int
	Italic bool
}

var fontWeights = map[string]int{
	"normal": 400, "bold": 700,
	"100": 100, "200": 200, "300": 300, "400": 400, "500": 500,
	"600": 600, "700": 700, "800": 800, "900": 900,
}

// Face returns the face f refers to. ok is false when no family is set.
func (f *Font) Face() (style FontStyle, ok bool) {
	if f == nil || f.Family == "" {
		return FontStyle{}, false
	}

	w, found := fontWeights[f.Weight]
	if !found {
		w = 400
	}

	return FontStyle{Name: f.Family, Weight: w, Italic: f.Style == "italic"}, true
}

// Variable is a report-level variable computed from a formula.
type Variable struct {
	Name    string
	Formula string
}

// Properties are the report-wide settings.
type Properties struct {
	Font        *Font
	Margin      []float64
	FileName    string
	PaperWidth  float64
	PaperHeight float64
	Lang        string
}

// Report is a decoded report definition.
type Report struct {
	Name       string
	Target     Target
	Children   []*Item
	Transforms []*Item
	Properties Properties
	DataURL    string
	Variables  []Variable
}

// Clone returns a deep copy of r.
func (r *Report) Clone() *Report {
	out := *r
	out.Children = cloneItems(r.Children)
	out.Transforms = cloneItems(r.Transforms)
	out.Variables = slices.Clone(r.Variables)
	out.Properties.Margin = slices.Clone(r.Properties.Margin)

	if r.Properties.Font != nil {
		f := *r.Properties.Font
		out.Properties.Font = &f
	}

	return &out
}

// Value exposes r to formulas as the "report" variable.
func (r *Report) Value() formula.Value {
	vars := make([]formula.Value, len(r.Variables))
	for i, v := range r.Variables {
		vars[i] = formula.NewObject().
			Set("name", formula.String(v.Name)).
			Set("formula", formula.String(v.Formula))
	}

	return formula.NewObject().
		Set("name", formula.String(r.Name)).
		Set("target", formula.String(r.Target)).
		Set("children", itemValues(r.Children)).
		Set("transforms", itemValues(r.Transforms)).
		Set("properties", r.Properties.value()).
		Set("dataUrl", formula.String(r.DataURL)).
		Set("variables", formula.NewArray(vars...))
}

// Ordered converts r into a YAML-ready document.
func (r *Report) Ordered() yaml.MapSlice {
	items := func(list []*Item) []any {
		out := make([]any, 0, len(list))
		for _, it := range list {
			out = append(out, it.Ordered())
		}

		return out
	}

	vars := make([]any, 0, len(r.Variables))
	for _, v := range r.Variables {
		vars = append(vars, yaml.MapSlice{
			{Key: "name", Value: v.Name},
			{Key: "formula", Value: v.Formula},
		})
	}

	return yaml.MapSlice{
		{Key: "name", Value: r.Name},
		{Key: "target", Value: string(r.Target)},
		{Key: "children", Value: items(r.Children)},
		{Key: "transforms", Value: items(r.Transforms)},
		{Key: "properties", Value: formula.ToOrdered(r.Properties.value())},
		{Key: "dataUrl", Value: r.DataURL},
		{Key: "variables", Value: vars},
	}
}

func (p Properties) value() *formula.Object {
	o := formula.NewObject()

	if p.Font != nil {
		f := formula.NewObject()
		setText(f, "family", p.Font.Family)
		setText(f, "size", p.Font.Size)
		setText(f, "weight", p.Font.Weight)
		setText(f, "style", p.Font.Style)
		setText(f, "color", p.Font.Color)

		if p.Font.LineHeight != 0 {
			f.Set("lineHeight", formula.Number(p.Font.LineHeight))
		}

		o.Set("font", f)
	}

	if len(p.Margin) > 0 {
		o.Set("margin", formula.FromNative(p.Margin))
	}

	setText(o, "fileName", p.FileName)

	if p.PaperWidth != 0 {
		o.Set("paperWidth", formula.Number(p.PaperWidth))
	}

	if p.PaperHeight != 0 {
		o.Set("paperHeight", formula.Number(p.PaperHeight))
	}

	setText(o, "lang", p.Lang)

	return o
}

func setText(o *formula.Object, key, s string) {
	if s != "" {
		o.Set(key, formula.String(s))
	}
}

// docError reports a malformed field of a report document.
func docError(path, want string, got formula.Value) error {
	return ErrBadReport.Wrap(fmt.Errorf("%s: expected %s but got %s",
		path, want, formula.TypeOf(got))).With(slog.String("field", path))
}

// FromValue builds a report from a decoded document. Missing fields take
// their zero value; fields of the wrong shape are rejected.
func FromValue(v formula.Value) (*Report, error) {
	doc, ok := v.(*formula.Object)
	if !ok {
		return nil, docError("report", "object", v)
	}

	r := &Report{Target: TargetHTML}

	var err error

	if r.Name, err = docString(doc, "name"); err != nil {
		return nil, err
	}

	target, err := docString(doc, "target")
	if err != nil {
		return nil, err
	}

	if target != "" {
		if r.Target, err = ParseTarget(target); err != nil {
			return nil, err
		}
	}

	if r.DataURL, err = docString(doc, "dataUrl"); err != nil {
		return nil, err
	}

	if r.Children, err = docItems(doc, "children", "children"); err != nil {
		return nil, err
	}

	if r.Transforms, err = docItems(doc, "transforms", "transforms"); err != nil {
		return nil, err
	}

	if r.Variables, err = docVariables(doc); err != nil {
		return nil, err
	}

	if r.Properties, err = docProperties(doc); err != nil {
		return nil, err
	}

	return r, nil
}

func docString(o *formula.Object, key string) (string, error) {
	v, ok := o.Get(key)
	if !ok || formula.IsNullish(v) {
		return "", nil
	}

	s, ok := v.(formula.String)
	if !ok {
		return "", docError(key, "string", v)
	}

	return string(s), nil
}

func docNumber(o *formula.Object, key, path string) (float64, error) {
	v, ok := o.Get(key)
	if !ok || formula.IsNullish(v) {
		return 0, nil
	}

	n, ok := v.(formula.Number)
	if !ok {
		return 0, docError(path, "number", v)
	}

	return float64(n), nil
}

func docList(o *formula.Object, key, path string) (*formula.Array, error) {
	v, ok := o.Get(key)
	if !ok || formula.IsNullish(v) {
		return formula.NewArray(), nil
	}

	a, ok := v.(*formula.Array)
	if !ok {
		return nil, docError(path, "array", v)
	}

	return a, nil
}

func docItems(o *formula.Object, key, path string) ([]*Item, error) {
	list, err := docList(o, key, path)
	if err != nil {
		return nil, err
	}

	items := make([]*Item, 0, list.Len())

	for i, e := range list.Elems {
		it, err := docItem(e, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}

		items = append(items, it)
	}

	return items, nil
}

func docItem(v formula.Value, path string) (*Item, error) {
	o, ok := v.(*formula.Object)
	if !ok {
		return nil, docError(path, "object", v)
	}

	typ, ok := o.Get("type")
	if s, isStr := typ.(formula.String); !ok || !isStr || s == "" {
		return nil, docError(path+".type", "non-empty string", typ)
	}

	children, err := docItems(o, "children", path+".children")
	if err != nil {
		return nil, err
	}

	props := formula.NewObject()

	for k, e := range o.All() {
		if k != "type" && k != "children" {
			props.Set(k, e)
		}
	}

	return &Item{Type: string(typ.(formula.String)), Children: children, Props: props}, nil
}

func docVariables(o *formula.Object) ([]Variable, error) {
	list, err := docList(o, "variables", "variables")
	if err != nil {
		return nil, err
	}

	vars := make([]Variable, 0, list.Len())

	for i, e := range list.Elems {
		path := fmt.Sprintf("variables[%d]", i)

		vo, ok := e.(*formula.Object)
		if !ok {
			return nil, docError(path, "object", e)
		}

		name, err := docString(vo, "name")
		if err != nil {
			return nil, err
		}

		if name == "" {
			return nil, docError(path+".name", "non-empty string", formula.String(""))
		}

		// Older documents store the formula under "value".
		src, err := docString(vo, "formula")
		if err != nil {
			return nil, err
		}

		if src == "" {
			if src, err = docString(vo, "value"); err != nil {
				return nil, err
			}
		}

		vars = append(vars, Variable{Name: name, Formula: src})
	}

	return vars, nil
}

func docProperties(o *formula.Object) (Properties, error) {
	var p Properties

	v, ok := o.Get("properties")
	if !ok || formula.IsNullish(v) {
		return p, nil
	}

	po, ok := v.(*formula.Object)
	if !ok {
		return p, docError("properties", "object", v)
	}

	var err error

	if p.FileName, err = docString(po, "fileName"); err != nil {
		return p, err
	}

	if p.Lang, err = docString(po, "lang"); err != nil {
		return p, err
	}

	if p.PaperWidth, err = docNumber(po, "paperWidth", "properties.paperWidth"); err != nil {
		return p, err
	}

	if p.PaperHeight, err = docNumber(po, "paperHeight", "properties.paperHeight"); err != nil {
		return p, err
	}

	margin, err := docList(po, "margin", "properties.margin")
	if err != nil {
		return p, err
	}

	for i, m := range margin.Elems {
		n, ok := m.(formula.Number)
		if !ok {
			return p, docError(fmt.Sprintf("properties.margin[%d]", i), "number", m)
		}

		p.Margin = append(p.Margin, float64(n))
	}

	if fv, ok := po.Get("font"); ok && !formula.IsNullish(fv) {
		p.Font, err = docFont(fv, "properties.font")
		if err != nil {
			return p, err
		}
	}

	return p, nil
}

func docFont(v formula.Value, path string) (*Font, error) {
	fo, ok := v.(*formula.Object)
	if !ok {
		return nil, docError(path, "object", v)
	}

	text := func(key string) string {
		if e, ok := fo.Get(key); ok && !formula.IsNullish(e) {
			return strings.TrimSpace(formula.ToString(e))
		}

		return ""
	}

	lh, err := docNumber(fo, "lineHeight", path+".lineHeight")
	if err != nil {
		return nil, err
	}

	return &Font{
		Family:     text("family"),
		Size:       text("size"),
		Weight:     text("weight"),
		Style:      text("style"),
		Color:      text("color"),
		LineHeight: lh,
	}, nil
}

// itemFont reads the optional font field of a widget.
func itemFont(it *Item) (*Font, error) {
	v, ok := it.Get("font")
	if !ok || formula.IsNullish(v) {
		return nil, nil
	}

	return docFont(v, it.Type+".font")
}
