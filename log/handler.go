package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset   = "\033[0m"
	ansiGray    = "\033[90m"
	ansiRed     = "\033[31m"
	ansiGreen   = "\033[32m"
	ansiYellow  = "\033[33m"
	ansiBlue    = "\033[34m"
	ansiMagenta = "\033[35m"
	ansiCyan    = "\033[36m"
)

// colorHandler renders records for terminals. In text mode a record is one
// line of key=value pairs; in JSON mode it is an indented object. Groups are
// flattened into dotted keys in both modes.
type colorHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	format Format
	attrs  []slog.Attr
	prefix string
}

func newColorHandler(w io.Writer, format Format, opts *slog.HandlerOptions) *colorHandler {
	return &colorHandler{opts: *opts, mu: &sync.Mutex{}, w: w, format: format}
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.opts.Level != nil {
		min = h.opts.Level.Level()
	}

	return level >= min
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	c.attrs = append(c.attrs, h.attrs...)

	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		c.attrs = append(c.attrs, a)
	}

	return &c
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		fields = h.appendReplaced(fields, slog.Time(slog.TimeKey, r.Time))
	}

	fields = h.appendReplaced(fields, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			fields = append(fields, slog.String(slog.SourceKey,
				src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	fields = append(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		a.Key = h.prefix + a.Key
		fields = append(fields, a)

		return true
	})

	var buf bytes.Buffer

	if h.format == FormatJSON {
		h.writeJSON(&buf, fields)
	} else {
		h.writeText(&buf, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *colorHandler) appendReplaced(fields []slog.Attr, a slog.Attr) []slog.Attr {
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	if a.Key == "" {
		return fields
	}

	return append(fields, a)
}

// flatten resolves LogValuers and expands groups into dotted keys.
func flatten(dst []slog.Attr, prefix string, a slog.Attr) []slog.Attr {
	v := a.Value.Resolve()
	if v.Kind() != slog.KindGroup {
		return append(dst, slog.Attr{Key: prefix + a.Key, Value: v})
	}

	p := prefix
	if a.Key != "" {
		p += a.Key + "."
	}

	for _, g := range v.Group() {
		dst = flatten(dst, p, g)
	}

	return dst
}

func (h *colorHandler) writeText(buf *bytes.Buffer, fields []slog.Attr) {
	var flat []slog.Attr
	for _, f := range fields {
		flat = flatten(flat, "", f)
	}

	for i, a := range flat {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(ansiGray + a.Key + ansiReset + "=")
		writeColored(buf, a.Key, a.Value, false)
	}

	buf.WriteByte('\n')
}

func (h *colorHandler) writeJSON(buf *bytes.Buffer, fields []slog.Attr) {
	var flat []slog.Attr
	for _, f := range fields {
		flat = flatten(flat, "", f)
	}

	buf.WriteString("{\n")

	for i, a := range flat {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  " + ansiGray + strconv.Quote(a.Key) + ansiReset + ": ")
		writeColored(buf, a.Key, a.Value, true)
	}

	buf.WriteString("\n}\n")
}

func writeColored(buf *bytes.Buffer, key string, v slog.Value, quote bool) {
	str := func(s string) string {
		if quote {
			return strconv.Quote(s)
		}

		return s
	}

	switch v.Kind() {
	case slog.KindInt64:
		buf.WriteString(ansiYellow + strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		buf.WriteString(ansiYellow + strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		buf.WriteString(ansiYellow + strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			buf.WriteString(ansiGreen + "true")
		} else {
			buf.WriteString(ansiRed + "false")
		}
	case slog.KindDuration:
		buf.WriteString(ansiMagenta + str(v.Duration().String()))
	case slog.KindTime:
		buf.WriteString(ansiBlue + str(v.Time().Format(time.RFC3339)))
	default:
		s := v.String()
		if key == slog.LevelKey {
			buf.WriteString(levelColor(s) + str(s))
		} else {
			buf.WriteString(ansiCyan + str(s))
		}
	}

	buf.WriteString(ansiReset)
}

func levelColor(s string) string {
	switch {
	case strings.HasPrefix(s, "ERROR"):
		return ansiRed
	case strings.HasPrefix(s, "WARN"):
		return ansiYellow
	case strings.HasPrefix(s, "INFO"):
		return ansiGreen
	default:
		return ansiBlue
	}
}
