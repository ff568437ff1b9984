package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf)

	if logger.config.level != LevelInfo {
		t.Errorf("expected default level info, got %v", logger.config.level)
	}
	if logger.config.caller {
		t.Error("expected caller disabled by default")
	}
	if logger.config.format != FormatJSON {
		t.Errorf("expected default format json, got %v", logger.config.format)
	}
}

func TestLogger_Make_WithLevel_FiltersMessages(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithLevel(LevelDebug))

	logger.Debug("debug message")
	if !strings.Contains(buf.String(), "debug message") {
		t.Error("debug message not logged after setting level to debug")
	}

	buf.Reset()
	quiet := Make(&buf, WithLevel(LevelError))
	quiet.Info("info message")
	if buf.Len() > 0 {
		t.Error("info message logged when level is error")
	}

	quiet.Error("error message")
	if !strings.Contains(buf.String(), "error message") {
		t.Error("error message not logged at error level")
	}
}

func TestLogger_Trace_BelowDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithLevel(LevelDebug), WithPretty(false))

	logger.Trace("node compiled")
	if buf.Len() > 0 {
		t.Errorf("expected trace suppressed at debug level, got %s", buf.String())
	}

	logger = Make(&buf, WithLevel(LevelTrace), WithPretty(false))
	logger.Trace("node compiled")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %v: %s", err, buf.String())
	}
	if entry["level"] != "TRACE" {
		t.Errorf("expected level TRACE, got %v", entry["level"])
	}
}

func TestLogger_JSON_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithPretty(false), WithTimeLayout("none"))

	logger.With(slog.String("report", "invoice")).
		Info("compiled", slog.Int("nodes", 12))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %v: %s", err, buf.String())
	}

	if _, ok := entry["time"]; ok {
		t.Errorf("expected no time with layout none, got %v", entry["time"])
	}
	if entry["msg"] != "compiled" {
		t.Errorf("expected msg compiled, got %v", entry["msg"])
	}
	if entry["report"] != "invoice" {
		t.Errorf("expected report attr invoice, got %v", entry["report"])
	}
	if entry["nodes"] != float64(12) {
		t.Errorf("expected nodes 12, got %v", entry["nodes"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("expected level INFO, got %v", entry["level"])
	}
}

func TestLogger_WithTimeLayout(t *testing.T) {
	tests := []struct {
		name     string
		layout   string
		contains string
	}{
		{"rfc3339 named", "RFC3339", "T"},
		{"rfc3339 nano named", "RFC3339Nano", "."},
		{"datetime named", "datetime", "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := Make(&buf, WithTimeLayout(tt.layout), WithPretty(false))
			logger.Info("test")

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("expected JSON output, got %v", err)
			}

			ts, _ := entry["time"].(string)
			if !strings.Contains(ts, tt.contains) {
				t.Errorf("expected time to contain %q, got %q", tt.contains, ts)
			}
		})
	}
}

func TestLogger_WithCaller_IncludesSource(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithCaller(true), WithPretty(false))
	logger.Info("test message")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("expected source to name the calling file, got %s", buf.String())
	}
}

func TestLogger_Pretty_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf,
		WithFormat(FormatText),
		WithTimeLayout("none"),
	)

	logger.With(slog.String("id", "0.1")).Warn("slow node", slog.Bool("cached", false))

	out := buf.String()
	for _, want := range []string{"slow node", "id", "0.1", "cached", "WARN"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected a single line, got %q", out)
	}
}

func TestLogger_Pretty_Group(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithFormat(FormatText), WithTimeLayout("none"))

	logger.Info("step", slog.Group("transform", slog.String("name", "Filter")))

	if !strings.Contains(buf.String(), "transform.name") {
		t.Errorf("expected dotted group key, got %q", buf.String())
	}
}

func TestLogger_Zero_Discards(t *testing.T) {
	var logger Logger

	logger.Info("nothing")
	logger.With(slog.String("k", "v")).Error("nothing")

	if logger.Level() != DefaultLevel {
		t.Errorf("expected default level, got %v", logger.Level())
	}
	if logger.Enabled(t.Context(), LevelError) {
		t.Error("expected zero logger to be disabled")
	}
}

func TestLogger_Wrap_Overrides(t *testing.T) {
	var buf bytes.Buffer
	base := Make(&buf, WithLevel(LevelWarn))
	wrapped := base.Wrap(WithLevel(LevelDebug))

	if base.Level() != LevelWarn {
		t.Errorf("expected base level warn, got %v", base.Level())
	}
	if wrapped.Level() != LevelDebug {
		t.Errorf("expected wrapped level debug, got %v", wrapped.Level())
	}
}

func TestLogger_ConcurrentWrites(t *testing.T) {
	var (
		buf bytes.Buffer
		mu  sync.Mutex
		wg  sync.WaitGroup
	)

	logger := Make(writerFunc(func(p []byte) (int, error) {
		mu.Lock()
		defer mu.Unlock()

		return buf.Write(p)
	}), WithPretty(false))

	for i := range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			logger.Info("concurrent", slog.Int("i", i))
		}()
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "\n"); n != 16 {
		t.Errorf("expected 16 lines, got %d", n)
	}
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
