package repl

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory_Persist(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("expected missing file to load, got %v", err)
	}

	for _, e := range []HistoryEntry{
		{"1 + 2", modeEval},
		{"list", modeCtrl},
		{"data.rows", modeEval},
		{"1 + 2", modeEval}, // moved to the end
		{"1 + 2", modeEval}, // repeated, ignored
		{"  ", modeEval},    // blank, ignored
	} {
		if _, err := h.WriteWithMode(e.Line, e.Mode); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	want := []HistoryEntry{
		{"list", modeCtrl},
		{"data.rows", modeEval},
		{"1 + 2", modeEval},
	}

	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected history file, got %v", err)
	}

	if got, want := string(data), "C:list\nE:data.rows\nE:1 + 2\n"; got != want {
		t.Errorf("expected file %q, got %q", want, got)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := reloaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("expected reloaded %v, got %v", want, got)
	}
}

func TestHistory_Memory(t *testing.T) {
	h := NewHistory("")

	if err := h.Load(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := h.WriteWithMode("pi", modeEval); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if h.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", h.Len())
	}

	if _, err := h.GetEntry(1); err != ErrOutOfBounds {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestHistory_Seek(t *testing.T) {
	h := NewHistory("")
	for _, e := range []HistoryEntry{
		{"a", modeEval}, {"help", modeCtrl}, {"b", modeEval}, {"list", modeCtrl},
	} {
		_, _ = h.WriteWithMode(e.Line, e.Mode)
	}

	ctrl := func(e HistoryEntry) bool { return e.Mode == modeCtrl }

	tests := []struct {
		name   string
		from   int
		step   int
		match  func(HistoryEntry) bool
		want   int
		wantOK bool
	}{
		{"previous", 4, -1, nil, 3, true},
		{"next", 0, 1, nil, 1, true},
		{"previous ctrl", 3, -1, ctrl, 1, true},
		{"next ctrl", 1, 1, ctrl, 3, true},
		{"past start", 1, -1, ctrl, 0, false},
		{"past end", 3, 1, nil, 0, false},
		{"zero step", 2, 0, nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, ok := h.Seek(tt.from, tt.step, tt.match)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("expected (%d, %v), got (%d, %v)", tt.want, tt.wantOK, got, ok)
			}
		})
	}
}

func TestParseEntry(t *testing.T) {
	tests := []struct {
		line   string
		want   HistoryEntry
		legacy bool
	}{
		{"E:1+1", HistoryEntry{"1+1", modeEval}, false},
		{"C:quit", HistoryEntry{"quit", modeCtrl}, false},
		{"pow(2, 3)", HistoryEntry{"pow(2, 3)", modeEval}, true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := parseEntry(tt.line); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}

			if !tt.legacy && tt.want.String() != tt.line {
				t.Errorf("expected %q, got %q", tt.line, tt.want.String())
			}
		})
	}
}
