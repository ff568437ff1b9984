package report

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Renderer accumulates the HTML of compiled widgets.
type Renderer struct {
	b        strings.Builder
	registry *Registry
}

// WriteString appends raw HTML.
func (r *Renderer) WriteString(s string) { r.b.WriteString(s) }

// Printf appends formatted raw HTML.
func (r *Renderer) Printf(format string, args ...any) { fmt.Fprintf(&r.b, format, args...) }

// String returns the HTML written so far.
func (r *Renderer) String() string { return r.b.String() }

// Render writes the HTML of c.
func (r *Renderer) Render(c *Compiled) error {
	w, err := r.registry.Lookup(c.Type)
	if err != nil {
		return err
	}

	if err := w.Render(r, c); err != nil {
		return widgetError(c.Type, c.Wid, err)
	}

	return nil
}

// Children writes the HTML of each widget in cs.
func (r *Renderer) Children(cs []*Compiled) error {
	for _, c := range cs {
		if err := r.Render(c); err != nil {
			return err
		}
	}

	return nil
}

// RenderContent returns the HTML of the compiled widget tree without the
// document shell.
func (e *Engine) RenderContent(c *CompiledReport) (string, error) {
	r := &Renderer{registry: e.registry}

	if err := r.Children(c.Widgets); err != nil {
		return "", err
	}

	return r.String(), nil
}

// RenderHTML returns the complete HTML document of c.
func (e *Engine) RenderHTML(ctx context.Context, c *CompiledReport) (string, error) {
	content, err := e.RenderContent(c)
	if err != nil {
		return "", err
	}

	links, err := e.fontLinks(ctx, c.FontsUsed)
	if err != nil {
		return "", err
	}

	body := style{
		{"font-family", "sans-serif"},
		{"font-size", "12pt"},
		{"color", "#000000"},
	}
	body.merge(fontStyle(c.Properties.Font))

	lang := cmp.Or(c.Properties.Lang, "en-US")

	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString(`<html lang="` + EscapeHTML(lang) + "\">\n")
	b.WriteString(htmlHead)
	b.WriteString("<style>\nbody {\n\t" + body.String() + "\n}\n")
	b.WriteString(c.GlobalCSS)
	b.WriteString("\n</style>\n")

	for _, l := range links {
		b.WriteString(`<link rel="stylesheet" href="` + EscapeHTML(l) + "\">\n")
	}

	b.WriteString("</head>\n<body>\n")
	b.WriteString(content)
	b.WriteString("\n</body>\n</html>\n")

	return b.String(), nil
}

func (e *Engine) fontLinks(ctx context.Context, fonts []FontStyle) ([]string, error) {
	if len(fonts) == 0 {
		return nil, nil
	}

	if e.api != nil && e.api.FontCSSURLs != nil {
		return e.api.FontCSSURLs(ctx, fonts)
	}

	if u := GoogleFontsURL(fonts); u != "" {
		return []string{u}, nil
	}

	return nil, nil
}

//nolint:gochecknoglobals
var systemFonts = []string{
	"", "arial", "verdana", "helvetica", "trebuchet ms", "times new roman",
	"calibri", "cambria", "comic sans ms",
}

// GoogleFontsURL returns the Google Fonts stylesheet URL providing fonts,
// or "" when every font is a system font.
func GoogleFontsURL(fonts []FontStyle) string {
	group := map[string][]FontStyle{}

	for _, f := range fonts {
		if slices.Contains(systemFonts, strings.ToLower(f.Name)) {
			continue
		}

		if !slices.ContainsFunc(group[f.Name], func(g FontStyle) bool {
			return g.Weight == f.Weight && g.Italic == f.Italic
		}) {
			group[f.Name] = append(group[f.Name], f)
		}
	}

	if len(group) == 0 {
		return ""
	}

	var b strings.Builder

	for i, name := range slices.Sorted(maps.Keys(group)) {
		faces := group[name]
		slices.SortFunc(faces, func(a, b FontStyle) int {
			if a.Italic != b.Italic {
				if a.Italic {
					return 1
				}

				return -1
			}

			return a.Weight - b.Weight
		})

		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}

		b.WriteString("family=" + url.PathEscape(name) + ":ital,wght@")

		for j, f := range faces {
			if j > 0 {
				b.WriteByte(';')
			}

			ital := "0"
			if f.Italic {
				ital = "1"
			}

			b.WriteString(ital + "," + strconv.Itoa(f.Weight))
		}
	}

	return "https://fonts.googleapis.com/css2" + b.String() + "&display=swap"
}

const htmlHead = `<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Report</title>
<style>
html, body, div, span, applet, object, iframe,
h1, h2, h3, h4, h5, h6, p, blockquote, pre,
a, abbr, acronym, address, big, cite, code,
del, dfn, em, img, ins, kbd, q, s, samp,
small, strike, strong, sub, sup, tt, var,
b, u, i, center,
dl, dt, dd, ol, ul, li,
fieldset, form, label, legend,
table, caption, tbody, tfoot, thead, tr, th, td,
article, aside, canvas, details, embed,
figure, figcaption, footer, header, hgroup,
menu, nav, output, ruby, section, summary,
time, mark, audio, video {
	margin: 0;
	padding: 0;
	border: 0;
	font-size: 100%;
	font: inherit;
	vertical-align: baseline;
}
article, aside, details, figcaption, figure,
footer, header, hgroup, menu, nav, section {
	display: block;
}
body {
	line-height: 1.25;
}
ol, ul {
	list-style: none;
}
blockquote, q {
	quotes: none;
}
blockquote:before, blockquote:after,
q:before, q:after {
	content: '';
	content: none;
}
table {
	border-collapse: collapse;
	border-spacing: 0;
}
b, strong {
	font-weight: bold;
}
cite, em, i {
	font-style: italic;
}
big {
	font-size: larger;
}
small {
	font-size: smaller;
}
mark {
	background-color: yellow;
}
sub {
	vertical-align: sub;
	font-size: smaller;
}
sup {
	vertical-align: super;
	font-size: smaller;
}
</style>
<style>
* {
	-webkit-print-color-adjust: exact;
	print-color-adjust: exact;
}
</style>
`
