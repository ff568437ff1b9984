package report

import (
	"context"
	"strings"
	"testing"
)

func TestEscapeHTML(t *testing.T) {
	got := EscapeHTML(`<a href="x">'&'</a>`)
	want := "&lt;a href=&quot;x&quot;&gt;&#039;&amp;&#039;&lt;/a&gt;"

	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestGoogleFontsURL(t *testing.T) {
	tests := []struct {
		name  string
		fonts []FontStyle
		want  string
	}{
		{
			name:  "single",
			fonts: []FontStyle{{Name: "Roboto Mono", Weight: 400}},
			want:  "https://fonts.googleapis.com/css2?family=Roboto%20Mono:ital,wght@0,400&display=swap",
		},
		{
			name: "grouped and sorted",
			fonts: []FontStyle{
				{Name: "B", Weight: 700, Italic: true},
				{Name: "A", Weight: 400},
				{Name: "B", Weight: 400},
				{Name: "B", Weight: 400},
				{Name: "Arial", Weight: 400},
			},
			want: "https://fonts.googleapis.com/css2?family=A:ital,wght@0,400&family=B:ital,wght@0,400;1,700&display=swap",
		},
		{
			name:  "system only",
			fonts: []FontStyle{{Name: "Verdana", Weight: 400}},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GoogleFontsURL(tt.fonts); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func renderReport(t *testing.T, e *Engine, report, data string) string {
	t.Helper()

	c, err := compileText(t, e, report, data)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	html, err := e.RenderHTML(t.Context(), c)
	if err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}

	return html
}

func TestRenderHTML_Document(t *testing.T) {
	html := renderReport(t, New(), `
properties:
  lang: sl
  font: {family: Roboto Mono, color: "#333"}
children:
  - {type: TextSimple, formula: '"<b>"'}
`, "{}")

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<html lang="sl">`,
		"font-family:Roboto Mono, sans-serif;font-size:12pt;color:#333",
		"family=Roboto%20Mono:ital,wght@0,400",
		"<div>&lt;b&gt;</div>",
		"print-color-adjust: exact;",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in:\n%s", want, html)
		}
	}
}

func TestRenderHTML_FontAPI(t *testing.T) {
	var got []FontStyle

	e := New(WithAPI(&API{
		FontCSSURLs: func(_ context.Context, fonts []FontStyle) ([]string, error) {
			got = fonts

			return []string{"https://fonts.example/a.css?x=1&y=2"}, nil
		},
	}))

	html := renderReport(t, e, "properties:\n  font: {family: Lato, weight: '300'}\n", "{}")

	if !strings.Contains(html, `<link rel="stylesheet" href="https://fonts.example/a.css?x=1&amp;y=2">`) {
		t.Errorf("expected font link in:\n%s", html)
	}

	if len(got) != 1 || got[0].Weight != 300 {
		t.Errorf("expected one 300 face, got %v", got)
	}
}

func TestRenderHTML_GlobalCSS(t *testing.T) {
	html := renderReport(t, New(), `
children:
  - type: Repeat
    source: "[1, 2]"
    varName: x
    direction: grid
    children:
      - type: Frame
        children:
          - {type: TextSimple, formula: x}
`, "{}")

	if !strings.Contains(html, ".grid-with-frame > div {") {
		t.Errorf("expected grid css in:\n%s", html)
	}

	if !strings.Contains(html, `class="grid-with-frame"`) {
		t.Errorf("expected grid class in:\n%s", html)
	}
}

func TestRenderContent_Widgets(t *testing.T) {
	tests := []struct {
		name   string
		report string
		want   []string
	}{
		{
			name:   "spacer",
			report: "children:\n  - {type: Spacer, height: 50}\n",
			want:   []string{`<div style="height: 50px"></div>`},
		},
		{
			name:   "page break",
			report: "children:\n  - {type: PageBreak}\n",
			want:   []string{`<div style="page-break-before: always"></div>`},
		},
		{
			name:   "separator",
			report: "children:\n  - {type: Separator, marginTop: 2, marginBottom: 3, border: {width: 1, style: solid, color: red}}\n",
			want:   []string{`<hr style="margin-top:2px;margin-bottom:3px;border-top:1px solid red;border-right:none;`},
		},
		{
			name:   "html",
			report: "children:\n  - {type: Html, source: '\"<i>x</i>\"'}\n",
			want:   []string{"<div>\n<i>x</i>\n</div>"},
		},
		{
			name: "repeat columns",
			report: `children:
  - type: Repeat
    source: "[1, 2, 3]"
    varName: x
    direction: columns
    children:
      - {type: TextSimple, formula: x}
`,
			want: []string{`<div style="display:flex">`, `<div style="flex:0 0 33.3333%"><div>1</div>`},
		},
		{
			name: "repeat rows",
			report: `children:
  - type: Repeat
    source: "[1, 2]"
    varName: x
    children:
      - {type: TextSimple, formula: x}
`,
			want: []string{"<div>1</div>\n<div>2</div>\n"},
		},
		{
			name: "columns",
			report: `children:
  - type: Columns
    widths: ["2", "100px"]
    children:
      - {type: ColumnsCt}
      - {type: ColumnsCt}
      - {type: ColumnsCt}
`,
			want: []string{
				`<div style="flex:2 1 auto">`,
				`<div style="flex:0 0 100px;min-width:100px;max-width:100px">`,
				`<div style="flex:1 1 auto">`,
			},
		},
		{
			name: "frame",
			report: `children:
  - type: Frame
    margin: [1, 2, 3, 4]
    border: {width: 1, style: dashed, color: blue}
    width: 50%
    pageBreakAvoid: true
    font: {weight: bold}
`,
			want: []string{
				"margin:1px 2px 3px 4px;padding:0px 0px 0px 0px;box-sizing:border-box;width:50%;border:1px dashed blue",
				"flex:0 0 50%;overflow-x:hidden;page-break-inside:avoid;font-weight:bold",
			},
		},
		{
			name:   "image",
			report: "children:\n  - {type: Image, url: 'https://x/a.png?a=1&b=2', width: 10px, align: center}\n",
			want: []string{
				`<div style="text-align:center"><img src="https://x/a.png?a=1&amp;b=2" alt="" style="display:inline-block;width:10px" /></div>`,
			},
		},
		{
			name:   "svg image",
			report: "children:\n  - {type: Image, formula: '\"<svg/>\"'}\n",
			want:   []string{`<div style="display:inline-block;max-width:100%"><svg/></div>`},
		},
		{
			name:   "update var renders nothing",
			report: "variables:\n  - {name: v, formula: '1'}\nchildren:\n  - {type: UpdateVar, varName: v, formula: '2'}\n",
			want:   []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New()

			c, err := compileText(t, e, tt.report, "{}")
			if err != nil {
				t.Fatalf("unexpected compile error: %v", err)
			}

			html, err := e.RenderContent(c)
			if err != nil {
				t.Fatalf("unexpected render error: %v", err)
			}

			for _, want := range tt.want {
				if !strings.Contains(html, want) {
					t.Errorf("expected %q in:\n%s", want, html)
				}
			}
		})
	}
}

func TestRenderContent_BadImage(t *testing.T) {
	e := New()

	c, err := compileText(t, e, "children:\n  - {type: Image, formula: '\"ftp://x\"'}\n", "{}")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	if _, err := e.RenderContent(c); err == nil || !strings.Contains(err.Error(), "Bad image data") {
		t.Errorf("expected bad image error, got %v", err)
	}
}
