package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/rpt/formula"
)

// writeFile creates name under a temp dir with content and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

// testContext returns a context whose commands read stdin from in and write
// to the returned buffer.
func testContext(t *testing.T, in string) (context.Context, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer

	ctx := WithInput(t.Context(), strings.NewReader(in))
	ctx = WithOutput(ctx, &out)

	return ctx, &out
}

func TestOpenSource(t *testing.T) {
	ctx, _ := testContext(t, "from stdin")
	path := writeFile(t, "in.txt", "from file")

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{"stdin", "-", "from stdin", nil},
		{"file", path, "from file", nil},
		{"missing", filepath.Join(t.TempDir(), "nope"), "", ErrReadInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := openSource(ctx, tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			defer r.Close()

			data, _ := io.ReadAll(r)
			if string(data) != tt.want {
				t.Errorf("expected %q, got %q", tt.want, data)
			}
		})
	}
}

func TestDataFrom(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		stdin   string
		want    string
		wantErr bool
	}{
		{
			name: "none",
			path: func(*testing.T) string { return "" },
			want: "undefined",
		},
		{
			name: "yaml file",
			path: func(t *testing.T) string { return writeFile(t, "d.yaml", "b: 2\na: [x, 1]\n") },
			want: `{"b":2,"a":["x",1]}`,
		},
		{
			name:  "json stdin",
			path:  func(*testing.T) string { return "-" },
			stdin: `{"n": 1.5}`,
			want:  `{"n":1.5}`,
		},
		{
			name:    "invalid",
			path:    func(t *testing.T) string { return writeFile(t, "bad.yaml", "a: [") },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := testContext(t, tt.stdin)
			ctx = WithDataFile(ctx, tt.path(t))

			v, err := dataFrom(ctx)
			if tt.wantErr {
				if !errors.Is(err, ErrReadInput) {
					t.Errorf("expected ErrReadInput, got %v", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if got := display(v, ""); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDataScope(t *testing.T) {
	ctx, _ := testContext(t, "")
	ctx = WithDataFile(ctx, writeFile(t, "d.json", `{"total": 4}`))

	scope, err := dataScope(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	v, err := formula.Evaluate(ctx, "data.total * 2", scope)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := formula.ToString(v); got != "8" {
		t.Errorf("expected 8, got %s", got)
	}
}

func TestError(t *testing.T) {
	err := ErrWriteConfig.With().Wrap(ErrFileExists)

	if !errors.Is(err, ErrWriteConfig) {
		t.Error("expected error to match ErrWriteConfig")
	}

	if !errors.Is(err, ErrFileExists) {
		t.Error("expected error to match ErrFileExists")
	}

	if errors.Is(err, ErrReadInput) {
		t.Error("expected error not to match ErrReadInput")
	}

	want := "write configuration file: file exists (use --force to overwrite)"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
