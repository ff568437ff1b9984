package formula

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// JSON encodes v as JSON text. Undefined values and functions are omitted
// from objects and written as null inside arrays; non-finite numbers are
// written as null and dates as ISO-8601 strings. When v itself cannot be
// represented the result is "" and ok is false. A non-empty indent produces
// multi-line output.
func JSON(v Value, indent string) (text string, ok bool) {
	var b strings.Builder

	if !appendJSON(&b, v, indent, 0) {
		return "", false
	}

	return b.String(), true
}

// MarshalJSON implements json.Marshaler.
func (a *Array) MarshalJSON() ([]byte, error) {
	s, _ := JSON(a, "")

	return []byte(s), nil
}

// MarshalJSON implements json.Marshaler.
func (o *Object) MarshalJSON() ([]byte, error) {
	s, _ := JSON(o, "")

	return []byte(s), nil
}

func skipJSON(v Value) bool {
	switch v.(type) {
	case nil, Undefined, *Function:
		return true
	}

	return false
}

func appendJSON(b *strings.Builder, v Value, indent string, depth int) bool {
	newline := func(d int) {
		if indent != "" {
			b.WriteByte('\n')
			b.WriteString(strings.Repeat(indent, d))
		}
	}

	switch t := v.(type) {
	case nil, Undefined, *Function:
		return false
	case Null, *Deferred:
		b.WriteString("null")
	case Bool:
		b.WriteString(strconv.FormatBool(bool(t)))
	case Number:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			b.WriteString("null")
		} else {
			b.WriteString(FormatNumber(f))
		}
	case String:
		quoteJSON(b, string(t))
	case *Date:
		quoteJSON(b, isoString(t.Time))
	case *Array:
		if len(t.Elems) == 0 {
			b.WriteString("[]")

			return true
		}

		b.WriteByte('[')

		for i, e := range t.Elems {
			if i > 0 {
				b.WriteByte(',')
			}

			newline(depth + 1)

			if !appendJSON(b, e, indent, depth+1) {
				b.WriteString("null")
			}
		}

		newline(depth)
		b.WriteByte(']')
	case *Object:
		b.WriteByte('{')

		n := 0

		for k, e := range t.All() {
			if skipJSON(e) {
				continue
			}

			if n > 0 {
				b.WriteByte(',')
			}

			n++

			newline(depth + 1)
			quoteJSON(b, k)
			b.WriteByte(':')

			if indent != "" {
				b.WriteByte(' ')
			}

			appendJSON(b, e, indent, depth+1)
		}

		if n > 0 {
			newline(depth)
		}

		b.WriteByte('}')
	}

	return true
}

const hexDigits = "0123456789abcdef"

func quoteJSON(b *strings.Builder, s string) {
	b.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			switch {
			case r < 0x20:
				b.WriteString(`\u00`)
				b.WriteByte(hexDigits[r>>4])
				b.WriteByte(hexDigits[r&0xf])
			default:
				b.WriteRune(r)
			}
		}
	}

	b.WriteByte('"')
}

func isoString(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
