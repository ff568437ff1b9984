package report

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/ardnew/rpt/formula"
)

type (
	textWidget     struct{}
	htmlWidget     struct{}
	textHTMLWidget struct{}
	staticWidget   struct{}
	imageWidget    struct{}
)

// display converts a formula result to page text; undefined, null and
// false display as nothing.
func display(v formula.Value) string {
	if formula.IsNullish(v) || v == formula.Bool(false) {
		return ""
	}

	return formula.ToString(v)
}

func (textWidget) Compile(ctx context.Context, it *Item, h *Helper) (*Compiled, error) {
	v, err := h.Eval(ctx, it.String("formula"))
	if err != nil {
		return nil, err
	}

	return &Compiled{Data: display(v)}, nil
}

func (textWidget) Render(r *Renderer, c *Compiled) error {
	r.WriteString("<div>" + EscapeHTML(c.Data) + "</div>\n")

	return nil
}

func (htmlWidget) Compile(ctx context.Context, it *Item, h *Helper) (*Compiled, error) {
	v, err := h.Eval(ctx, it.String("source"))
	if err != nil {
		return nil, err
	}

	return &Compiled{Data: display(v)}, nil
}

func (htmlWidget) Render(r *Renderer, c *Compiled) error {
	r.WriteString("<div>\n" + c.Data + "\n</div>\n")

	return nil
}

// Compile joins the parts of value: "html" parts verbatim and "formula"
// parts evaluated, optionally through a named adjust.
func (textHTMLWidget) Compile(ctx context.Context, it *Item, h *Helper) (*Compiled, error) {
	font, err := itemFont(it)
	if err != nil {
		return nil, err
	}

	h.AddFont(font)

	v, _ := it.Get("value")
	parts, _ := v.(*formula.Array)

	var b strings.Builder

	if parts != nil {
		for i, p := range parts.Elems {
			part, ok := p.(*formula.Object)
			if !ok {
				return nil, docError(fmt.Sprintf("TextHtml.value[%d]", i), "object", p)
			}

			text := propText(part, "value")

			switch typ := propText(part, "type"); typ {
			case "html":
				b.WriteString(text)

			case "formula":
				val, err := h.Eval(ctx, text)
				if err != nil {
					return nil, err
				}

				if name := propText(part, "adjust"); name != "" {
					s, err := adjust(name, val)
					if err != nil {
						return nil, err
					}

					b.WriteString(s)
				} else {
					b.WriteString(formula.ToString(val))
				}

			default:
				return nil, fmt.Errorf("Unknown part type %s", typ)
			}
		}
	}

	props := formula.NewObject()
	if fv, ok := it.Get("font"); ok {
		props.Set("font", formula.Clone(fv))
	}

	return &Compiled{Data: b.String(), Props: props}, nil
}

func (textHTMLWidget) Render(r *Renderer, c *Compiled) error {
	var s style

	if fv, ok := c.Props.Get("font"); ok && !formula.IsNullish(fv) {
		font, err := docFont(fv, "TextHtml.font")
		if err != nil {
			return err
		}

		s = fontStyle(font)
	}

	r.Printf(`<div style="%s">%s</div>`+"\n", s.attr(), c.Data)

	return nil
}

//nolint:gochecknoglobals
var adjusts = map[string]struct {
	tag      language.Tag
	decimals int
}{
	"num, 0 dec, local":    {language.English, 0},
	"num, 2 dec, local":    {language.English, 2},
	"num, auto dec, local": {language.English, -1},
	"num, 0 dec":           {language.BritishEnglish, 0},
	"num, 2 dec":           {language.BritishEnglish, 2},
	"num, auto dec":        {language.BritishEnglish, -1},
}

// adjust formats a number with grouped thousands. A negative decimals
// count keeps up to three fraction digits.
func adjust(name string, v formula.Value) (string, error) {
	a, ok := adjusts[name]
	if !ok {
		return "", fmt.Errorf("Unknown adjust %s", name)
	}

	n, ok := v.(formula.Number)
	if !ok {
		return "", errors.New("Should be num")
	}

	var opts []number.Option
	if a.decimals >= 0 {
		opts = append(opts,
			number.MinFractionDigits(a.decimals),
			number.MaxFractionDigits(a.decimals))
	}

	return message.NewPrinter(a.tag).Sprint(number.Decimal(float64(n), opts...)), nil
}

// Compile copies the widget's layout fields unchanged.
func (staticWidget) Compile(_ context.Context, it *Item, _ *Helper) (*Compiled, error) {
	return &Compiled{Props: it.Clone().Props}, nil
}

func (staticWidget) Render(r *Renderer, c *Compiled) error {
	switch c.Type {
	case "PageBreak":
		r.WriteString(`<div style="page-break-before: always"></div>` + "\n")

	case "Spacer":
		r.WriteString(`<div style="height: ` + px(propNumber(c.Props, "height")) + `"></div>` + "\n")

	case "Separator":
		bv, _ := c.Props.Get("border")
		s := style{
			{"margin-top", px(propNumber(c.Props, "marginTop"))},
			{"margin-bottom", px(propNumber(c.Props, "marginBottom"))},
			{"border-top", border(bv)},
			{"border-right", "none"},
			{"border-bottom", "none"},
			{"border-left", "none"},
			{"opacity", "1"},
			{"color", "transparent"},
		}
		r.Printf(`<hr style="%s" />`+"\n", s.attr())
	}

	return nil
}

// Compile resolves the image source. A url under "local/" is downloaded
// through the API and inlined as a data URL; otherwise formula must
// produce a string.
func (imageWidget) Compile(ctx context.Context, it *Item, h *Helper) (*Compiled, error) {
	var data string

	switch src := it.String("url"); {
	case src != "":
		data = src

		if name, ok := strings.CutPrefix(src, "local/"); ok {
			if h.API == nil || h.API.FilesDownload == nil {
				return nil, errors.New("Missing api.filesDownload")
			}

			f, err := h.API.FilesDownload(ctx, name)
			if err != nil {
				return nil, err
			}

			if strings.Contains(f.MimeType, ";") {
				return nil, errors.New("Bad mime type")
			}

			data = "data:" + f.MimeType + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
		}

	case it.String("formula") != "":
		v, err := h.Eval(ctx, it.String("formula"))
		if err != nil {
			return nil, err
		}

		s, ok := v.(formula.String)
		if !ok {
			return nil, fmt.Errorf("Image from formula expected string but got %s", formula.TypeOf(v))
		}

		data = string(s)
	}

	props := formula.NewObject()

	for _, key := range []string{"align", "width", "height", "fit"} {
		if s := it.String(key); s != "" {
			props.Set(key, formula.String(s))
		}
	}

	return &Compiled{Data: data, Props: props}, nil
}

func (imageWidget) Render(r *Renderer, c *Compiled) error {
	if c.Data == "" {
		return nil
	}

	var img style

	img.set("display", "inline-block")

	width, height := propText(c.Props, "width"), propText(c.Props, "height")

	if width != "" {
		img.set("width", width)
	} else {
		img.set("max-width", "100%")
	}

	if height != "" {
		img.set("height", height)
	}

	if width != "" && height != "" {
		fit := propText(c.Props, "fit")
		if fit == "" {
			fit = "fill"
		}

		img.set("object-fit", fit)
	}

	var container style
	if align := propText(c.Props, "align"); align != "" {
		container.set("text-align", align)
	}

	var tag string

	switch d := c.Data; {
	case strings.HasPrefix(strings.TrimLeft(d, " \t\r\n"), "<svg"):
		tag = `<div style="` + img.attr() + `">` + d + `</div>`
	case strings.HasPrefix(d, "data:image/"),
		strings.HasPrefix(d, "http://"),
		strings.HasPrefix(d, "https://"),
		strings.HasPrefix(d, "/"),
		strings.HasPrefix(d, "./"),
		strings.HasPrefix(d, "../"):
		tag = `<img src="` + EscapeHTML(d) + `" alt="" style="` + img.attr() + `" />`
	default:
		return errors.New("Bad image data")
	}

	r.Printf(`<div style="%s">%s</div>`+"\n", container.attr(), tag)

	return nil
}
