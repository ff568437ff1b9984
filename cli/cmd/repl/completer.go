package repl

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "let", "edit", "clear", "quit"}

// isWordBoundary returns true if the rune is a word delimiter for completion
// purposes: whitespace, the member-access dot, quotes and formula operator
// or punctuation characters.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':', ';',
		'"', '\'':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary (after a space,
// between dots, start of line, etc.).
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the dot-separated member chain leading up to the
// current word. For input "x + data.rows.le" with the word "le", the parent
// path is "data.rows". Returns "" for top-level words.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")

	end := len(prefix)
	pos := end

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.Trim(prefix[pos:end], ".")
}

// childCandidates returns the valid completions below parent: every bound
// and built-in name at the top level, or the keys and members of the
// parent's value.
func (s *session) childCandidates(parent string) []string {
	if parent == "" {
		return s.names()
	}

	return s.members(parent)
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. An empty word at the top level has no matches, so the hint line
// stays visible. After a dot every member is offered.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, wordStart, wordEnd := wordBounds(input, cursor)

	if m.mode == modeCtrl {
		if word == "" || strings.Contains(input[:wordStart], " ") {
			return nil, nil, wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		parent := parentPath(input, wordStart)
		candidates = m.session.childCandidates(parent)

		if word == "" {
			if parent == "" || len(candidates) == 0 {
				return nil, nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, candidates, wordStart, wordEnd
		}
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

var (
	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedMatchStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("4")).
				Bold(true)
)

// renderCandidateBar lays matches out on one line of at most width cells.
// Candidates that do not fit are summarized as "+N". The candidate at suggIdx
// is drawn selected while tabbing.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	isFunction func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	parts := make([]string, 0, len(matches))
	used := 0

	for i, match := range matches {
		entry := renderCandidate(match, tabActive && i == suggIdx, isFunction(match.Str))

		need := lipgloss.Width(entry)
		if i > 0 {
			need += len(sep)
		}

		reserve := 0
		if rest := len(matches) - i - 1; rest > 0 {
			reserve = len(sep) + len(fmt.Sprintf("+%d", rest))
		}

		if i > 0 && used+need+reserve > width {
			parts = append(parts, hintStyle.Render(fmt.Sprintf("+%d", len(matches)-i)))

			break
		}

		parts = append(parts, entry)
		used += need
	}

	return strings.Join(parts, sep)
}

// renderCandidate draws one candidate, highlighting the runs of characters
// the fuzzy matcher matched. Functions get a "()" suffix.
func renderCandidate(match fuzzy.Match, selected, function bool) string {
	base, hit := suggestionStyle, matchStyle
	if selected {
		base, hit = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var (
		b    strings.Builder
		run  strings.Builder
		high bool
	)

	flush := func() {
		if run.Len() == 0 {
			return
		}

		style := base
		if high {
			style = hit
		}

		b.WriteString(style.Render(run.String()))
		run.Reset()
	}

	for i, r := range match.Str {
		if matched[i] != high {
			flush()

			high = matched[i]
		}

		run.WriteRune(r)
	}

	flush()

	if function {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}
