package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// initCLI mirrors the shape of the root command's flags.
type initCLI struct {
	LogLevel string `default:"info"`
	Count    int    `default:"3"`
	Pretty   bool   `default:"true"`
	Empty    string
	Secret   string `default:"x" hidden:""`
}

func initContext(t *testing.T, confPath string) context.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(nil)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(t.Context(), ktx)
}

func TestInitRun(t *testing.T) {
	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.exists {
				if err := os.WriteFile(confPath, []byte("existing: true\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			err := (&Init{Force: tt.force}).Run(initContext(t, confPath))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var doc map[string]map[string]any
			if err := yaml.Unmarshal(content, &doc); err != nil {
				t.Fatalf("expected valid YAML, got %q: %v", content, err)
			}

			values, ok := doc[ConfigKey]
			if !ok {
				t.Fatalf("expected %q mapping, got %q", ConfigKey, content)
			}

			want := map[string]string{
				"log_level": "info",
				"count":     "3",
				"pretty":    "true",
			}

			for k, v := range want {
				if got := fmt.Sprint(values[k]); got != v {
					t.Errorf("expected %s = %s, got %s", k, v, got)
				}
			}

			for _, k := range []string{"help", "empty", "secret"} {
				if _, ok := values[k]; ok {
					t.Errorf("expected %s to be omitted, got %q", k, content)
				}
			}
		})
	}
}

func TestConfigValue(t *testing.T) {
	type level string

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"empty string", "", nil},
		{"string", "x", "x"},
		{"int", 4, 4},
		{"bool", false, false},
		{"empty slice", []string{}, nil},
		{"named string", level("debug"), "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := configValue(tt.in); fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
