package report

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ardnew/rpt/formula"
)

// style is an ordered list of CSS declarations.
type style []struct{ key, value string }

func (s *style) set(key, value string) {
	for i := range *s {
		if (*s)[i].key == key {
			(*s)[i].value = value

			return
		}
	}

	*s = append(*s, struct{ key, value string }{key, value})
}

func (s *style) merge(o style) {
	for _, d := range o {
		s.set(d.key, d.value)
	}
}

// String joins the declarations as "key:value;key:value".
func (s style) String() string {
	parts := make([]string, 0, len(s))
	for _, d := range s {
		parts = append(parts, d.key+":"+d.value)
	}

	return strings.Join(parts, ";")
}

// attr returns s escaped for a style attribute.
func (s style) attr() string { return EscapeHTML(s.String()) }

//nolint:gochecknoglobals
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML escapes the five HTML special characters.
func EscapeHTML(s string) string { return htmlEscaper.Replace(s) }

var leadingDigits = regexp.MustCompile(`^\d*`)

// fontStyle returns the CSS declarations of f.
func fontStyle(f *Font) style {
	var s style

	if f == nil {
		return s
	}

	if f.Family != "" {
		s.set("font-family", f.Family+", sans-serif")
	}

	if f.Size != "" {
		s.set("font-size", f.Size)

		if f.LineHeight != 0 {
			digits := leadingDigits.FindString(f.Size)
			size, _ := strconv.Atoi(digits)
			s.set("line-height",
				formula.FormatNumber(float64(size)*f.LineHeight*1.25)+f.Size[len(digits):])
		}
	}

	if f.Weight != "" {
		s.set("font-weight", f.Weight)
	}

	if f.Style != "" {
		s.set("font-style", f.Style)
	}

	if f.Color != "" {
		s.set("color", f.Color)
	}

	return s
}

// px formats n as a pixel length.
func px(n float64) string { return formula.FormatNumber(n) + "px" }

// percent formats a fraction as a percentage with at most four decimals.
func percent(f float64) string {
	return formula.FormatNumber(math.Round(f*1e6)/1e4) + "%"
}

// border formats a {width, style, color} object.
func border(v formula.Value) string {
	o, ok := v.(*formula.Object)
	if !ok {
		return "none"
	}

	return px(propNumber(o, "width")) + " " + propText(o, "style") + " " + propText(o, "color")
}

func propNumber(o *formula.Object, key string) float64 {
	if o == nil {
		return 0
	}

	v, ok := o.Get(key)
	if !ok || formula.IsNullish(v) {
		return 0
	}

	return formula.ToNumber(v)
}

func propText(o *formula.Object, key string) string {
	if o == nil {
		return ""
	}

	v, ok := o.Get(key)
	if !ok || formula.IsNullish(v) {
		return ""
	}

	return formula.ToString(v)
}

func propBool(o *formula.Object, key string) bool {
	if o == nil {
		return false
	}

	v, ok := o.Get(key)

	return ok && formula.Truthy(v)
}

// propBox reads a four-sided length list, padding missing sides with 0.
func propBox(o *formula.Object, key string) string {
	sides := [4]string{"0px", "0px", "0px", "0px"}

	if o != nil {
		if v, ok := o.Get(key); ok {
			if a, ok := v.(*formula.Array); ok {
				for i := 0; i < len(sides) && i < a.Len(); i++ {
					sides[i] = px(formula.ToNumber(a.Elems[i]))
				}
			}
		}
	}

	return strings.Join(sides[:], " ")
}
