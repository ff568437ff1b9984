package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/rpt/formula"
)

func TestSerialize(t *testing.T) {
	tests := []struct {
		name   string
		report string
		data   string
		target Target
		body   string
		file   string
	}{
		{
			name:   "json",
			report: "target: json\n",
			data:   "{b: [1, 2], a: x}",
			body:   `{"b":[1,2],"a":"x"}`,
			file:   "report.json",
		},
		{
			name:   "csv",
			report: "target: csv-utf-8\nproperties: {fileName: '\"rows.csv\"'}\n",
			data:   `[[a, b], ["1", "2"]]`,
			body:   "\"a\";\"b\"\n\"1\";\"2\"\n",
			file:   "rows.csv",
		},
		{
			name:   "csv as json",
			report: "target: csv-utf-8\nproperties: {fileName: '\"rows.csv\"'}\n",
			data:   `[[a]]`,
			target: TargetJSON,
			body:   `[["a"]]`,
			file:   "rows.json",
		},
		{
			name:   "pdf as html",
			report: "target: pdf\nproperties: {fileName: '\"out.pdf\"'}\nchildren:\n  - {type: TextSimple, formula: data}\n",
			data:   "hello",
			target: TargetHTML,
			body:   "<div>hello</div>",
			file:   "out.html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New()

			c, err := compileText(t, e, tt.report, tt.data)
			if err != nil {
				t.Fatalf("unexpected compile error: %v", err)
			}

			out, err := e.Serialize(t.Context(), c, tt.target)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !strings.Contains(string(out.Body), tt.body) {
				t.Errorf("expected body containing %q, got %q", tt.body, out.Body)
			}

			if out.FileName != tt.file {
				t.Errorf("expected file %q, got %q", tt.file, out.FileName)
			}

			want := tt.target
			if want == "" {
				want = c.Target
			}

			if out.ContentType != want.ContentType() {
				t.Errorf("expected %q, got %q", want.ContentType(), out.ContentType)
			}
		})
	}
}

func TestSerialize_Errors(t *testing.T) {
	e := New()

	c, err := compileText(t, e, "target: pdf\n", `{a: 1}`)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	if _, err := e.Serialize(t.Context(), c, TargetPDF); !errors.Is(err, ErrAPIUnavailable) {
		t.Errorf("expected ErrAPIUnavailable, got %v", err)
	}

	if _, err := e.Serialize(t.Context(), c, TargetCSVWindows1250); !errors.Is(err, ErrNotCSV) {
		t.Errorf("expected ErrNotCSV, got %v", err)
	}

	if _, err := e.Serialize(t.Context(), c, "docx"); !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("expected ErrUnknownTarget, got %v", err)
	}

	c.Data = formula.Undefined{}
	if _, err := e.Serialize(t.Context(), c, TargetJSON); !errors.Is(err, ErrNotJSON) {
		t.Errorf("expected ErrNotJSON, got %v", err)
	}
}

func TestSerialize_PDF(t *testing.T) {
	var (
		gotHTML  string
		gotPaper float64
	)

	e := New(WithAPI(&API{
		GeneratePDF: func(_ context.Context, html string, props Properties) ([]byte, error) {
			gotHTML, gotPaper = html, props.PaperWidth

			return []byte("%PDF-1.4"), nil
		},
	}))

	c, err := compileText(t, e,
		"target: pdf\nproperties: {paperWidth: 210}\nchildren:\n  - {type: TextSimple, formula: '\"x\"'}\n", "{}")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	out, err := e.Serialize(t.Context(), c, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(out.Body) != "%PDF-1.4" || out.FileName != "report.pdf" {
		t.Errorf("unexpected output %q %q", out.Body, out.FileName)
	}

	if !strings.Contains(gotHTML, "<div>x</div>") || gotPaper != 210 {
		t.Errorf("unexpected pdf input %v %q", gotPaper, gotHTML)
	}
}

func TestGenerate(t *testing.T) {
	report := decodeReport(t, `
target: csv-utf-8
transforms:
  - {type: Filter, field: data, condition: item.n > 1}
  - type: CSV
    rows:
      - {source: data, cols: [item.name]}
`)

	out, err := New().Generate(t.Context(), report,
		Source{Kind: SourceJSON, Text: `[{"n": 1, "name": "a"}, {"n": 2, "name": "b"}]`}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(out.Body) != "\"b\"\n" {
		t.Errorf("expected %q, got %q", "\"b\"\n", out.Body)
	}

	if out.FileName != "report.csv" {
		t.Errorf("expected report.csv, got %s", out.FileName)
	}
}

func TestGenerate_DataURL(t *testing.T) {
	srv := sourceServer(t)
	report := decodeReport(t, "target: json\ndataUrl: "+srv.URL+"/data.json\n")

	out, err := New().Generate(t.Context(), report, Source{}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := `{"b":2,"a":[1,"x"]}`; string(out.Body) != want {
		t.Errorf("expected %s, got %s", want, out.Body)
	}
}

func TestGenerate_Errors(t *testing.T) {
	report := decodeReport(t, "children:\n  - {type: Nope}\n")

	_, err := New().Generate(t.Context(), report, Source{Kind: SourceJSON, Text: "{}"}, "")
	if !errors.Is(err, ErrUnknownWidget) {
		t.Errorf("expected ErrUnknownWidget, got %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err = New().Generate(ctx, decodeReport(t, "children:\n  - {type: Spacer}\n"),
		Source{Kind: SourceJSON, Text: "{}"}, "")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
