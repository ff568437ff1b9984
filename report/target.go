package report

import (
	"bytes"
	"log/slog"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/ardnew/rpt/formula"
)

// Target is an output format.
type Target string

// Supported targets.
const (
	TargetPDF            Target = "pdf"
	TargetHTML           Target = "html"
	TargetJSON           Target = "json"
	TargetCSVUTF8        Target = "csv-utf-8"
	TargetCSVWindows1250 Target = "csv-windows-1250"
)

// Targets lists every supported target.
func Targets() []Target {
	return []Target{TargetPDF, TargetHTML, TargetJSON, TargetCSVUTF8, TargetCSVWindows1250}
}

// ParseTarget returns the target named s.
func ParseTarget(s string) (Target, error) {
	t := Target(strings.ToLower(strings.TrimSpace(s)))

	switch t {
	case TargetPDF, TargetHTML, TargetJSON, TargetCSVUTF8, TargetCSVWindows1250:
		return t, nil
	case "csv-excel-utf-8":
		return TargetCSVUTF8, nil
	}

	return "", ErrUnknownTarget.With(slog.String("target", s))
}

// Extension returns the file extension of t without the dot.
func (t Target) Extension() string {
	switch t {
	case TargetCSVUTF8, TargetCSVWindows1250:
		return "csv"
	default:
		return string(t)
	}
}

// ContentType returns the media type of t.
func (t Target) ContentType() string {
	switch t {
	case TargetPDF:
		return "application/pdf"
	case TargetJSON:
		return "application/json"
	case TargetCSVUTF8:
		return "text/csv; charset=utf-8"
	case TargetCSVWindows1250:
		return "text/csv; charset=windows-1250"
	default:
		return "text/html"
	}
}

// FileName returns the output name for a report compiled for from and
// written as to. An empty name becomes "report.<ext>"; a name ending in
// from's extension gets to's extension instead.
func FileName(name string, from, to Target) string {
	if name == "" {
		return "report." + to.Extension()
	}

	if from != to {
		if base, ok := strings.CutSuffix(name, "."+from.Extension()); ok {
			return base + "." + to.Extension()
		}
	}

	return name
}

// CSVRows checks that v is a rectangular table of strings.
func CSVRows(v formula.Value) ([][]string, error) {
	rows, ok := v.(*formula.Array)
	if !ok {
		return nil, ErrNotCSV
	}

	out := make([][]string, 0, rows.Len())
	cols := -1

	for _, r := range rows.Elems {
		row, ok := r.(*formula.Array)
		if !ok {
			return nil, ErrNotCSV
		}

		if cols < 0 {
			cols = row.Len()
		} else if row.Len() != cols {
			return nil, ErrNotCSV
		}

		cells := make([]string, 0, row.Len())

		for _, c := range row.Elems {
			s, ok := c.(formula.String)
			if !ok {
				return nil, ErrNotCSV
			}

			cells = append(cells, string(s))
		}

		out = append(out, cells)
	}

	return out, nil
}

// MakeCSV renders rows with every cell quoted, ";" between cells and one
// line per row. The windows-1250 form ends lines with CRLF and is encoded
// in that code page; characters it cannot represent become '?'.
func MakeCSV(rows [][]string, t Target) ([]byte, error) {
	newline := "\n"

	var enc transform.Transformer

	if t == TargetCSVWindows1250 {
		newline = "\r\n"
		enc = transform.Chain(
			runes.Map(windows1250Fallback),
			charmap.Windows1250.NewEncoder(),
		)
	}

	var buf bytes.Buffer

	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				buf.WriteByte(';')
			}

			txt := strings.ReplaceAll(cell, `"`, `""`)

			if enc != nil {
				var err error
				if txt, _, err = transform.String(enc, txt); err != nil {
					return nil, err
				}
			}

			buf.WriteByte('"')
			buf.WriteString(txt)
			buf.WriteByte('"')
		}

		buf.WriteString(newline)
	}

	return buf.Bytes(), nil
}

// windows1250Fallback maps runes outside the code page to '?'.
func windows1250Fallback(r rune) rune {
	if _, ok := charmap.Windows1250.EncodeRune(r); !ok {
		return '?'
	}

	return r
}
