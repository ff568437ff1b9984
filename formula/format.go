package formula

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Source renders seq back into formula syntax with normalized spacing.
// Parsing the result yields an equivalent sequence.
func Source(seq []Expr) string {
	var b strings.Builder

	writeSeq(&b, seq)

	return b.String()
}

// Format writes the program's infix form in normalized formula syntax.
func (p *Program) Format(_ context.Context, w io.Writer) error {
	_, err := fmt.Fprintln(w, Source(p.Infix))

	return err
}

// FormatJSON writes the infix (or postfix) tree as JSON.
func (p *Program) FormatJSON(_ context.Context, w io.Writer, postfix bool, indent int) error {
	var (
		data []byte
		err  error
	)

	doc := p.doc(postfix)

	if indent > 0 {
		data, err = json.MarshalIndent(doc, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(doc)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the infix (or postfix) tree as YAML.
func (p *Program) FormatYAML(ctx context.Context, w io.Writer, postfix bool, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, p.doc(postfix), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}

func (p *Program) doc(postfix bool) []any {
	if postfix {
		return Docs(p.Postfix)
	}

	return Docs(p.Infix)
}

func writeSeq(b *strings.Builder, seq []Expr) {
	for i, e := range seq {
		if e.Type == ExprOperator {
			b.WriteString(" " + e.Text + " ")

			continue
		}

		if i > 0 && seq[i-1].Type != ExprOperator {
			b.WriteByte(' ')
		}

		writeExpr(b, e)
	}
}

func writeArgs(b *strings.Builder, args [][]Expr) {
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}

		writeSeq(b, a)
	}
}

func writeExpr(b *strings.Builder, e Expr) {
	switch e.Type {
	case ExprNumber:
		b.WriteString(FormatNumber(e.Number))
	case ExprString:
		writeQuoted(b, e.Text)
	case ExprVariable:
		b.WriteString(e.Text)
	case ExprParentheses:
		b.WriteByte('(')
		writeSeq(b, e.Inner)
		b.WriteByte(')')
	case ExprArray:
		b.WriteByte('[')
		writeArgs(b, e.Args)
		b.WriteByte(']')
	case ExprObject:
		b.WriteByte('{')

		for i, f := range e.Fields {
			if i > 0 {
				b.WriteString(", ")
			}

			if isIdentifier(f.Key) {
				b.WriteString(f.Key)
			} else {
				writeQuoted(b, f.Key)
			}

			if len(f.Value) > 0 {
				b.WriteString(": ")
				writeSeq(b, f.Value)
			}
		}

		b.WriteByte('}')
	}

	for _, s := range e.Sub {
		switch s.Type {
		case SubMember:
			b.WriteString("." + s.Name)
		case SubIndex:
			b.WriteByte('[')
			writeSeq(b, s.Index)
			b.WriteByte(']')
		case SubCall:
			b.WriteByte('(')
			writeArgs(b, s.Args)
			b.WriteByte(')')
		}
	}
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}

	b.WriteByte('"')
}

func isIdentifier(s string) bool {
	if s == "" || !isVarStart(rune(s[0])) {
		return false
	}

	for _, r := range s {
		if !validVarChar(r) {
			return false
		}
	}

	return true
}
