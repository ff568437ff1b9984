package formula

import (
	"math"
	"slices"
	"strconv"
)

// Parse turns formula source into its infix expression sequence. The whole
// input must be consumed; an empty or blank source yields an empty sequence.
func Parse(src string) ([]Expr, error) {
	p := parser{src: []rune(src)}

	seq, _, err := p.parseImpl(0, nil)
	if err != nil {
		return nil, err
	}

	return seq, nil
}

type parser struct {
	src []rune
}

func isWhiteSpace(ch rune) bool {
	switch ch {
	case ' ', '\n', '\t', '\r', '\u00A0', '\u2028', '\u2029', '\uFEFF':
		return true
	}

	return false
}

func isNum(ch rune) bool { return ch >= '0' && ch <= '9' }

func isAl(ch rune) bool { return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') }

func validVarChar(ch rune) bool { return isAl(ch) || isNum(ch) || ch == '_' }

func isVarStart(ch rune) bool { return validVarChar(ch) && !isNum(ch) }

func (p *parser) skipWhitespace(i int) int {
	for i < len(p.src) && isWhiteSpace(p.src[i]) {
		i++
	}

	return i
}

// operatorAt returns the longest operator starting at i, or "".
func (p *parser) operatorAt(i int) string {
	for l := min(maxOperatorLen, len(p.src)-i); l >= 1; l-- {
		if s := string(p.src[i : i+l]); IsOperator(s) {
			return s
		}
	}

	return ""
}

// parseImpl parses a sequence of parts starting at i until one of endCh is
// consumed. With no end characters the sequence runs to the end of input.
// The returned position is just past the consumed end character.
func (p *parser) parseImpl(i int, endCh []rune) ([]Expr, int, error) {
	var seq []Expr

	i = p.skipWhitespace(i)

	// A leading minus is read as "0 - ...".
	if i < len(p.src) && p.src[i] == '-' {
		seq = append(seq, Expr{Type: ExprNumber, Pos: i})
	}

	for {
		if i >= len(p.src) {
			if len(endCh) > 0 {
				return nil, i, newParseError("End of expression", i)
			}

			break
		}

		if slices.Contains(endCh, p.src[i]) {
			i++

			break
		}

		part, end, err := p.parsePart(i)
		if err != nil {
			return nil, end, err
		}

		seq = append(seq, part)
		i = p.skipWhitespace(end)
	}

	return seq, i, nil
}

// parseArgs parses a parenthesized or bracketed, comma-separated list
// starting at the opening character.
func (p *parser) parseArgs(i int) ([][]Expr, int, error) {
	var endCh rune

	switch p.src[i] {
	case '(':
		endCh = ')'
	case '[':
		endCh = ']'
	default:
		return nil, i, newParseError("Bad character: "+string(p.src[i]), i)
	}

	args := [][]Expr{}
	i = p.skipWhitespace(i + 1)

	if i >= len(p.src) {
		return nil, i, newParseError("Missing closing char: "+string(endCh), i)
	}

	if p.src[i] == endCh {
		return args, i + 1, nil
	}

	for {
		seq, end, err := p.parseImpl(i, []rune{endCh, ','})
		if err != nil {
			return nil, end, err
		}

		if len(seq) == 0 {
			return nil, i, newParseError("Missing expression", i)
		}

		args = append(args, seq)
		i = end

		if p.src[i-1] == endCh {
			return args, i, nil
		}

		i = p.skipWhitespace(i)
	}
}

var escapes = map[rune]rune{
	'\'': '\'',
	'"':  '"',
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
}

func (p *parser) parseString(i int) (string, int, error) {
	if i >= len(p.src) || (p.src[i] != '\'' && p.src[i] != '"') {
		return "", i, newParseError("Bad string", i)
	}

	endCh := p.src[i]
	i++

	var txt []rune

	for {
		if i >= len(p.src) {
			return "", i, newParseError("Unexpected end of string", i)
		}

		ch := p.src[i]

		switch {
		case ch == endCh:
			return string(txt), i + 1, nil

		case ch == '\\':
			i++
			if i >= len(p.src) {
				return "", i - 1, newParseError(
					"Bad escape. Unexpected end-of-string.", i-1)
			}

			esc, ok := escapes[p.src[i]]
			if !ok {
				return "", i, newParseError("Bad escape. Unknown char", i)
			}

			txt = append(txt, esc)

		default:
			txt = append(txt, ch)
		}

		i++
	}
}

func (p *parser) parseVar(i int) (string, int, error) {
	if i >= len(p.src) || !isVarStart(p.src[i]) {
		return "", i, newParseError("Unknown char in string", i)
	}

	start := i
	for i < len(p.src) && validVarChar(p.src[i]) {
		i++
	}

	return string(p.src[start:i]), i, nil
}

func (p *parser) parseNum(i int) (float64, int, error) {
	start := i
	hasDot := false

	for i < len(p.src) && (isNum(p.src[i]) || p.src[i] == '.') {
		if p.src[i] == '.' {
			if hasDot {
				return 0, i, newParseError("Second dot in number", i)
			}

			hasDot = true
		}

		i++
	}

	txt := string(p.src[start:i])
	if hasDot && txt[len(txt)-1] == '.' {
		return 0, i, newParseError("Dot in the end of number", i)
	}

	num, err := strconv.ParseFloat(txt, 64)
	if err != nil || math.IsInf(num, 0) {
		return 0, start, newParseError("Bad number", start)
	}

	return num, i, nil
}

func (p *parser) parsePart(i int) (Expr, int, error) {
	i = p.skipWhitespace(i)

	var (
		part Expr
		err  error
	)

	ch := p.src[i]

	switch {
	case ch == '\'' || ch == '"':
		part = Expr{Type: ExprString, Pos: i}
		part.Text, i, err = p.parseString(i)

	case ch == '[':
		part = Expr{Type: ExprArray, Pos: i}
		part.Args, i, err = p.parseArgs(i)

	case isVarStart(ch):
		part = Expr{Type: ExprVariable, Pos: i}
		part.Text, i, err = p.parseVar(i)

	case ch == '(':
		part = Expr{Type: ExprParentheses, Pos: i}
		part.Inner, i, err = p.parseImpl(i+1, []rune{')'})

	case ch == '{':
		part = Expr{Type: ExprObject, Pos: i}
		part.Fields, i, err = p.parseObject(i)

	case isNum(ch):
		part = Expr{Type: ExprNumber, Pos: i}
		part.Number, i, err = p.parseNum(i)

	default:
		op := p.operatorAt(i)
		if op == "" {
			return Expr{}, i, newParseError("Bad character: "+string(ch), i)
		}

		return Expr{Type: ExprOperator, Pos: i, Text: op}, i + len([]rune(op)), nil
	}

	if err != nil {
		return Expr{}, i, err
	}

	part.Sub, i, err = p.parseSubexpr(p.skipWhitespace(i))
	if err != nil {
		return Expr{}, i, err
	}

	return part, i, nil
}

// parseObject parses an object literal starting at '{'. Repeated keys keep
// their first position and take the last value.
func (p *parser) parseObject(i int) ([]Field, int, error) {
	fields := []Field{}

	i = p.skipWhitespace(i + 1)
	if i >= len(p.src) {
		return nil, i, newParseError("Expecting closing }", i)
	}

	if p.src[i] == '}' {
		return fields, i + 1, nil
	}

	for {
		var (
			key string
			err error
		)

		switch {
		case p.src[i] == '\'' || p.src[i] == '"':
			key, i, err = p.parseString(i)
		case isVarStart(p.src[i]):
			key, i, err = p.parseVar(i)
		default:
			return nil, i, newParseError("Bad char", i)
		}

		if err != nil {
			return nil, i, err
		}

		idx := slices.IndexFunc(fields, func(f Field) bool { return f.Key == key })
		if idx < 0 {
			fields = append(fields, Field{Key: key})
			idx = len(fields) - 1
		} else {
			fields[idx].Value = nil
		}

		i = p.skipWhitespace(i)
		if i >= len(p.src) {
			return nil, i, newParseError("Unexpected end of object. Missing }", i)
		}

		if p.src[i] == ':' {
			i = p.skipWhitespace(i + 1)

			seq, end, err := p.parseImpl(i, []rune{'}', ','})
			if err != nil {
				return nil, end, err
			}

			if len(seq) == 0 || end == i {
				return nil, i, newParseError("Expected expression", i)
			}

			fields[idx].Value = seq
			i = end - 1
		}

		if p.src[i] == '}' {
			return fields, i + 1, nil
		}

		if p.src[i] != ',' {
			return nil, i, newParseError("Bad char "+string(p.src[i]), i)
		}

		i = p.skipWhitespace(i + 1)
		if i >= len(p.src) {
			return nil, i, newParseError("Unexpected end of object. Missing next key", i)
		}
	}
}

func (p *parser) parseSubexpr(i int) ([]SubExpr, int, error) {
	var chain []SubExpr

	for i < len(p.src) {
		switch p.src[i] {
		case '.':
			i = p.skipWhitespace(i + 1)

			name, end, err := p.parseVar(i)
			if err != nil {
				return nil, end, err
			}

			chain = append(chain, SubExpr{Type: SubMember, Pos: i, Name: name})
			i = p.skipWhitespace(end)

		case '[':
			i = p.skipWhitespace(i + 1)

			seq, end, err := p.parseImpl(i, []rune{']'})
			if err != nil {
				return nil, end, err
			}

			if len(seq) == 0 || end == i {
				return nil, i, newParseError("Empty sub-expr", i)
			}

			chain = append(chain, SubExpr{Type: SubIndex, Pos: i, Index: seq})
			i = p.skipWhitespace(end)

		case '(':
			args, end, err := p.parseArgs(i)
			if err != nil {
				return nil, end, err
			}

			chain = append(chain, SubExpr{Type: SubCall, Pos: i, Args: args})
			i = p.skipWhitespace(end)

		default:
			return chain, i, nil
		}
	}

	return chain, i, nil
}
