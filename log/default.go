package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// DefaultContextProvider supplies the context for log calls that do not
// take one.
var DefaultContextProvider = context.TODO

var (
	defaultMu  sync.RWMutex
	defaultLog = Make(os.Stderr)
)

// Default returns the package-level logger.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()

	return defaultLog
}

// Config replaces the package-level logger with one derived from the current
// configuration overridden by opts.
func Config(opts ...Option) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultLog = defaultLog.Wrap(opts...)
}

// With returns the package-level logger with attrs added to each message.
func With(attrs ...slog.Attr) Logger { return Default().With(attrs...) }

// Trace logs at Trace level using the package-level logger.
func Trace(msg string, attrs ...slog.Attr) {
	l := Default()
	l.logContext(DefaultContextProvider(), LevelTrace, msg, attrs...)
}

// Debug logs at Debug level using the package-level logger.
func Debug(msg string, attrs ...slog.Attr) {
	l := Default()
	l.logContext(DefaultContextProvider(), LevelDebug, msg, attrs...)
}

// Info logs at Info level using the package-level logger.
func Info(msg string, attrs ...slog.Attr) {
	l := Default()
	l.logContext(DefaultContextProvider(), LevelInfo, msg, attrs...)
}

// Warn logs at Warn level using the package-level logger.
func Warn(msg string, attrs ...slog.Attr) {
	l := Default()
	l.logContext(DefaultContextProvider(), LevelWarn, msg, attrs...)
}

// Error logs at Error level using the package-level logger.
func Error(msg string, attrs ...slog.Attr) {
	l := Default()
	l.logContext(DefaultContextProvider(), LevelError, msg, attrs...)
}

// DebugContext logs at Debug level with ctx using the package-level logger.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l := Default()
	l.logContext(ctx, LevelDebug, msg, attrs...)
}

// InfoContext logs at Info level with ctx using the package-level logger.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l := Default()
	l.logContext(ctx, LevelInfo, msg, attrs...)
}

// WarnContext logs at Warn level with ctx using the package-level logger.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l := Default()
	l.logContext(ctx, LevelWarn, msg, attrs...)
}

// ErrorContext logs at Error level with ctx using the package-level logger.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l := Default()
	l.logContext(ctx, LevelError, msg, attrs...)
}
