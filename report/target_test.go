package report

import (
	"encoding/base64"
	"errors"
	"slices"
	"testing"

	"github.com/ardnew/rpt/formula"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in   string
		want Target
		err  bool
	}{
		{in: "pdf", want: TargetPDF},
		{in: " HTML ", want: TargetHTML},
		{in: "json", want: TargetJSON},
		{in: "csv-utf-8", want: TargetCSVUTF8},
		{in: "csv-excel-utf-8", want: TargetCSVUTF8},
		{in: "csv-windows-1250", want: TargetCSVWindows1250},
		{in: "docx", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTarget(tt.in)
			if tt.err {
				if !errors.Is(err, ErrUnknownTarget) {
					t.Errorf("expected ErrUnknownTarget, got %v", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestTarget_ContentType(t *testing.T) {
	want := map[Target]string{
		TargetPDF:            "application/pdf",
		TargetHTML:           "text/html",
		TargetJSON:           "application/json",
		TargetCSVUTF8:        "text/csv; charset=utf-8",
		TargetCSVWindows1250: "text/csv; charset=windows-1250",
	}

	for _, tgt := range Targets() {
		if got := tgt.ContentType(); got != want[tgt] {
			t.Errorf("%s: expected %q, got %q", tgt, want[tgt], got)
		}
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name     string
		from, to Target
		want     string
	}{
		{"", TargetPDF, TargetPDF, "report.pdf"},
		{"", TargetPDF, TargetCSVWindows1250, "report.csv"},
		{"out.pdf", TargetPDF, TargetHTML, "out.html"},
		{"out.pdf", TargetPDF, TargetPDF, "out.pdf"},
		{"out.txt", TargetPDF, TargetHTML, "out.txt"},
		{"data.csv", TargetCSVUTF8, TargetJSON, "data.json"},
		{"data.csv", TargetCSVUTF8, TargetCSVWindows1250, "data.csv"},
	}

	for _, tt := range tests {
		if got := FileName(tt.name, tt.from, tt.to); got != tt.want {
			t.Errorf("FileName(%q, %s, %s): expected %q, got %q", tt.name, tt.from, tt.to, tt.want, got)
		}
	}
}

func TestCSVRows(t *testing.T) {
	tests := []struct {
		name string
		in   formula.Value
		ok   bool
	}{
		{"empty", formula.FromNative([]any{}), true},
		{"table", formula.FromNative([][]string{{"a", "b"}, {"c", "d"}}), true},
		{"not array", formula.String("a"), false},
		{"row not array", formula.FromNative([]any{"a"}), false},
		{"ragged", formula.FromNative([]any{[]any{"a"}, []any{"b", "c"}}), false},
		{"number cell", formula.FromNative([]any{[]any{"a", 1}}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CSVRows(tt.in)

			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if !tt.ok && !errors.Is(err, ErrNotCSV) {
				t.Errorf("expected ErrNotCSV, got %v", err)
			}
		})
	}
}

func TestMakeCSV(t *testing.T) {
	tests := []struct {
		name   string
		rows   [][]string
		target Target
		want   string
	}{
		{
			name:   "utf-8",
			rows:   [][]string{{`"`, "1\n2"}, {"č", "';'"}},
			target: TargetCSVUTF8,
			want:   "IiIiIjsiMQoyIgoixI0iOyInOyciCg==",
		},
		{
			name:   "windows-1250",
			rows:   [][]string{{"a", "b"}, {"č", "€"}},
			target: TargetCSVWindows1250,
			want:   "ImEiOyJiIg0KIugiOyKAIg0K",
		},
		{
			name:   "windows-1250 unsupported",
			rows:   [][]string{{"a中b", "č€"}},
			target: TargetCSVWindows1250,
			want:   "ImE/YiI7IuiAIg0K",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MakeCSV(tt.rows, tt.target)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if s := base64.StdEncoding.EncodeToString(got); s != tt.want {
				t.Errorf("expected %s, got %s", tt.want, s)
			}
		})
	}
}

func TestMakeCSV_Windows1250Differs(t *testing.T) {
	rows := [][]string{{`"`, "1\n2"}, {"č", "';'"}}

	utf, _ := MakeCSV(rows, TargetCSVUTF8)
	win, _ := MakeCSV(rows, TargetCSVWindows1250)

	if slices.Equal(utf, win) {
		t.Error("expected different encodings")
	}

	// č is 0xE8 in windows-1250.
	if !slices.Contains(win, 0xE8) {
		t.Errorf("expected 0xE8 in %q", win)
	}
}
