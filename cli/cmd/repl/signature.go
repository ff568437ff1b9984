package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// signature describes how a built-in function is called.
type signature struct {
	params []string
}

// builtinSignatures lists the parameters of every built-in formula function.
// A parameter starting with "..." accepts any number of arguments.
var builtinSignatures = map[string]signature{
	"pow":          {[]string{"base", "exponent"}},
	"not":          {[]string{"value"}},
	"columnName":   {[]string{"index"}},
	"inArray":      {[]string{"array", "value"}},
	"arrayIndexOf": {[]string{"array", "value"}},
	"string":       {[]string{"value"}},
	"str":          {[]string{"value"}},
	"substr":       {[]string{"subject", "start", "end"}},
	"substring":    {[]string{"subject", "start", "end"}},
	"now":          {nil},
	"lower":        {[]string{"string"}},
	"toLowerCase":  {[]string{"string"}},
	"upper":        {[]string{"string"}},
	"toUpperCase":  {[]string{"string"}},
	"sin":          {[]string{"x"}},
	"cos":          {[]string{"x"}},
	"tan":          {[]string{"x"}},
	"asin":         {[]string{"x"}},
	"acos":         {[]string{"x"}},
	"atan":         {[]string{"x"}},
	"atan2":        {[]string{"y", "x"}},
	"prefixList":   {[]string{"list", "delim", "...items"}},
}

// memberSignatures lists the parameters of callable members, keyed by the
// member name.
var memberSignatures = map[string]signature{
	"slice":      {[]string{"start", "end"}},
	"join":       {[]string{"separator"}},
	"replaceAll": {[]string{"pattern", "replacement"}},
	"substring":  {[]string{"start", "end"}},
}

// signatureHintStyle styles for parameter hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // callee as written (e.g., "data.items.join")
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

func isNameRune(r rune) bool {
	return r == '.' || r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// detectFunctionCall analyzes the input to determine if the cursor is inside
// a function call's parameter list. Parentheses and commas inside string
// literals are not counted.
func detectFunctionCall(input string, cursor int) functionCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Record the opening paren of every call still open at the cursor.
	var (
		open  []int
		args  []int
		quote rune
	)

	for i, r := range input[:cursor] {
		if quote != 0 {
			if r == quote {
				quote = 0
			}

			continue
		}

		switch r {
		case '"', '\'':
			quote = r
		case '(', '[':
			open = append(open, i)
			args = append(args, 0)
		case ')', ']':
			if len(open) > 0 {
				open = open[:len(open)-1]
				args = args[:len(args)-1]
			}
		case ',':
			if len(args) > 0 {
				args[len(args)-1]++
			}
		}
	}

	if len(open) == 0 || input[open[len(open)-1]] != '(' {
		return functionCall{}
	}

	paren := open[len(open)-1]

	// Walk backward from '(' collecting identifier characters and dots.
	start := paren

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isNameRune(r) {
			break
		}

		start -= size
	}

	name := strings.Trim(input[start:paren], ".")
	if name == "" {
		return functionCall{}
	}

	return functionCall{
		name:     name,
		argIndex: args[len(args)-1],
		inCall:   true,
	}
}

// getSignature returns the display signature and parameter names of the
// function called name. A dotted name is looked up as a member call.
// Returns "" if the function is unknown.
func getSignature(name string) (string, []string) {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		if sig, ok := memberSignatures[name[i+1:]]; ok {
			return formatSignature(name, sig.params), sig.params
		}

		return "", nil
	}

	if sig, ok := builtinSignatures[name]; ok {
		return formatSignature(name, sig.params), sig.params
	}

	return "", nil
}

func formatSignature(name string, params []string) string {
	return name + "(" + strings.Join(params, ", ") + ")"
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	if signature == "" {
		return ""
	}

	openParen := strings.Index(signature, "(")
	if openParen == -1 || !strings.HasSuffix(signature, ")") {
		return signatureStyle.Render(signature)
	}

	funcName := signature[:openParen]

	if len(params) == 0 {
		return signatureNameStyle.Render(funcName) +
			signatureStyle.Render("()")
	}

	var b strings.Builder
	b.WriteString(signatureNameStyle.Render(funcName))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		// A variadic parameter stays highlighted for every later argument.
		variadic := strings.HasPrefix(param, "...")
		if (variadic && currentArgIdx >= i) || (!variadic && currentArgIdx == i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
