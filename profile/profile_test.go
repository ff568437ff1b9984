package profile

import (
	"errors"
	"testing"
)

func TestStart_Disabled(t *testing.T) {
	p, err := Start(WithMode(""), WithDir(t.TempDir()), WithQuiet(true))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, ok := p.(ignore); !ok {
		t.Errorf("expected no-op profiler, got %T", p)
	}

	p.Stop()
}

func TestStart_UnknownMode(t *testing.T) {
	p, err := Start(WithMode("bogus"), WithQuiet(true))

	if len(Modes()) == 0 {
		if err != nil {
			t.Errorf("expected no error without profiling support, got %v", err)
		}
	} else if !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}

	p.Stop()
}

func TestOptions(t *testing.T) {
	var s Settings
	for _, opt := range []Option{WithMode("cpu"), WithDir("/tmp/p"), WithQuiet(true), WithMode("heap")} {
		s = opt(s)
	}

	if want := (Settings{Mode: "heap", Dir: "/tmp/p", Quiet: true}); s != want {
		t.Errorf("expected %+v, got %+v", want, s)
	}
}
