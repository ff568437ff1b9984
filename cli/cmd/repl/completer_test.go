package repl

import (
	"regexp"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/rpt/formula"
	"github.com/ardnew/rpt/log"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"dot_separated", "bar.baz", 7, "baz", 4, 7},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_minus", "a-fo", 4, "fo", 2, 4},
		{"after_paren", "pow(fo", 6, "fo", 4, 6},
		{"after_comma", "pow(a, fo", 9, "fo", 7, 9},
		{"after_bracket", "data[fo", 7, "fo", 5, 7},
		{"after_brace", "{a: fo", 6, "fo", 4, 6},
		{"after_quote", `"fo`, 3, "fo", 1, 3},
		{"after_comparison", "a >= fo", 7, "fo", 5, 7},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"between_operators", "a+b", 2, "b", 2, 3},
		{"underscore", "row_count", 9, "row_count", 0, 9},
		{"empty_after_dot", "data.", 5, "", 5, 5},
		{"cursor_past_end", "foo", 10, "foo", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("expected (%q, %d, %d), got (%q, %d, %d)",
					tt.wantWord, tt.wantStart, tt.wantEnd, word, start, end)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top_level", "fo", 0, ""},
		{"simple_chain", "bar.baz.", 8, "bar.baz"},
		{"chain_with_word", "bar.baz.q", 8, "bar.baz"},
		{"after_operator", "foo + bar.baz.", 14, "bar.baz"},
		{"after_paren", "(bar.baz.", 9, "bar.baz"},
		{"no_chain", "a + ", 4, ""},
		{"deep_chain", "a.b.c.", 6, "a.b.c"},
		{"after_equals", "x == a.b.", 9, "a.b"},
		{"after_index", "data[0].", 8, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parentPath(tt.input, tt.wordStart); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func testSession(t *testing.T) *session {
	t.Helper()

	data := formula.NewObject().
		Set("title", formula.String("Sales")).
		Set("rows", formula.NewArray(formula.Number(1), formula.Number(2))).
		Set("meta", formula.NewObject().Set("author", formula.String("ann")))

	return newSession(t.Context(), data, log.Discard())
}

func TestChildCandidates(t *testing.T) {
	s := testSession(t)

	tests := []struct {
		name    string
		parent  string
		want    []string
		exclude []string
	}{
		{"top_level", "", []string{"data", "pow", "prefixList", "pi", "true"}, nil},
		{"object", "data", []string{"title", "rows", "meta"}, []string{"pow"}},
		{"nested_object", "data.meta", []string{"author"}, []string{"title"}},
		{"array", "data.rows", []string{"length", "slice", "join"}, nil},
		{"string", "data.title", []string{"length", "replaceAll", "substring"}, nil},
		{"unknown", "data.missing", nil, []string{"length"}},
		{"invalid", "data..", nil, []string{"length"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.childCandidates(tt.parent)

			for _, w := range tt.want {
				if !slices.Contains(got, w) {
					t.Errorf("expected %q in %v", w, got)
				}
			}

			for _, x := range tt.exclude {
				if slices.Contains(got, x) {
					t.Errorf("expected %q not in %v", x, got)
				}
			}
		})
	}
}

func TestChildCandidates_ObjectOrder(t *testing.T) {
	got := testSession(t).childCandidates("data")

	if want := []string{"title", "rows", "meta"}; !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func typeInto(m model, text string) model {
	next, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})

	return next
}

func TestComputeMatches(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // best match, "" for none
	}{
		{"top_level", "prefixL", "prefixList"},
		{"member", "data.ti", "title"},
		{"after_dot", "data.", "title"},
		{"empty", "", ""},
		{"no_match", "zzzz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel(testSession(t), NewHistory(""))
			m.input.SetValue(tt.input)
			m.input.CursorEnd()

			matches, _, _, _ := m.computeMatches()

			if tt.want == "" {
				if len(matches) != 0 {
					t.Errorf("expected no matches, got %v", matches)
				}

				return
			}

			if len(matches) == 0 {
				t.Fatalf("expected %q, got no matches", tt.want)
			}

			if matches[0].Str != tt.want {
				t.Errorf("expected %q, got %q", tt.want, matches[0].Str)
			}
		})
	}
}

func TestComputeMatches_CtrlMode(t *testing.T) {
	m := newModel(testSession(t), NewHistory(""))
	m = m.switchToMode(modeCtrl)

	m.input.SetValue("ed")
	m.input.CursorEnd()

	matches, _, _, _ := m.computeMatches()
	if len(matches) == 0 || matches[0].Str != "edit" {
		t.Fatalf("expected edit, got %v", matches)
	}

	// Arguments of a command are not completed.
	m.input.SetValue("let x ed")
	m.input.CursorEnd()

	if matches, _, _, _ := m.computeMatches(); len(matches) != 0 {
		t.Errorf("expected no matches, got %v", matches)
	}
}

func TestCycle(t *testing.T) {
	m := newModel(testSession(t), NewHistory(""))
	m = typeInto(m, "data.")

	if len(m.matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(m.matches))
	}

	m = m.cycle(1)
	if got := m.input.Value(); got != "data.title" {
		t.Errorf("expected %q, got %q", "data.title", got)
	}

	m = m.cycle(1)
	if got := m.input.Value(); got != "data.rows" {
		t.Errorf("expected %q, got %q", "data.rows", got)
	}

	m = m.cycle(-1)
	m = m.cycle(-1)
	if got := m.input.Value(); got != "data.meta" {
		t.Errorf("expected %q after wrapping, got %q", "data.meta", got)
	}
}

var sgr = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestRenderCandidateBar(t *testing.T) {
	matches := fuzzy.Matches{
		{Str: "alpha"}, {Str: "beta"}, {Str: "gamma"}, {Str: "delta"},
	}
	isFunc := func(s string) bool { return s == "beta" }

	t.Run("fits", func(t *testing.T) {
		got := sgr.ReplaceAllString(renderCandidateBar(matches, 0, false, 80, isFunc), "")
		if want := "alpha  beta()  gamma  delta"; got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("overflow", func(t *testing.T) {
		got := sgr.ReplaceAllString(renderCandidateBar(matches, 0, false, 17, isFunc), "")
		if want := "alpha  beta()  +2"; got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := renderCandidateBar(nil, 0, false, 80, isFunc); got != "" {
			t.Errorf("expected empty bar, got %q", got)
		}
	})
}

func TestRenderCandidate_Runs(t *testing.T) {
	m := fuzzy.Match{Str: "rows", MatchedIndexes: []int{0, 1}}

	got := sgr.ReplaceAllString(renderCandidate(m, true, false), "")
	if got != "rows" {
		t.Errorf("expected %q, got %q", "rows", got)
	}

	if !strings.HasPrefix(sgr.ReplaceAllString(renderCandidate(m, false, true), ""), "rows()") {
		t.Errorf("expected function suffix")
	}
}
