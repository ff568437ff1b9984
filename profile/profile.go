package profile

import (
	"errors"
	"slices"
)

// ErrUnknownMode is returned by [Start] for a mode not listed by [Modes].
var ErrUnknownMode = errors.New("unknown profiling mode")

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Settings selects what is profiled and where the output goes.
type Settings struct {
	Mode  string
	Dir   string
	Quiet bool
}

// Option updates a [Settings].
type Option func(Settings) Settings

// WithMode selects the profiling mode. An empty mode disables profiling.
func WithMode(mode string) Option {
	return func(s Settings) Settings { s.Mode = mode; return s }
}

// WithDir sets the directory receiving profile files.
func WithDir(dir string) Option {
	return func(s Settings) Settings { s.Dir = dir; return s }
}

// WithQuiet suppresses the profiler's start and stop messages.
func WithQuiet(quiet bool) Option {
	return func(s Settings) Settings { s.Quiet = quiet; return s }
}

// Start begins profiling as configured by opts. Without a mode, or in a
// build without the pprof tag, it returns a no-op [Stopper]. The returned
// Stopper is always safe to call.
func Start(opts ...Option) (Stopper, error) {
	var s Settings
	for _, opt := range opts {
		s = opt(s)
	}

	if s.Mode == "" || len(Modes()) == 0 {
		return ignore{}, nil
	}

	if !slices.Contains(Modes(), s.Mode) {
		return ignore{}, ErrUnknownMode
	}

	return start(s), nil
}

type ignore struct{}

func (ignore) Stop() {}
