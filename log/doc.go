// Package log provides a concurrency-safe structured logger built on
// [log/slog].
//
// Loggers are created with [Make] and configured with functional options
// applied at creation time:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"))
//
//	logger.Info("report compiled", slog.String("target", "pdf"))
//
// Every level has a context-aware variant. The context-unaware variants use
// [DefaultContextProvider].
//
// The zero [Logger] discards everything, so components that accept an
// optional logger can hold one by value without nil checks.
//
// A package-level default logger backs [Debug], [Info], [Warn], [Error] and
// their context variants. [Config] reconfigures it.
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and is used for per-node engine
// tracing (formula evaluation, widget compilation, transform steps).
//
// # Formats
//
// [FormatJSON] (default) and [FormatText]. With [WithPretty] enabled both
// formats are colorized for terminals.
package log
