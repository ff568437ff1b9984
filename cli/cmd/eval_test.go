package cmd

import (
	"testing"
)

func TestEvalRun(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		eval    Eval
		want    string
		wantErr bool
	}{
		{
			name: "arithmetic",
			eval: Eval{Formula: "1 + 2 * 3"},
			want: "7\n",
		},
		{
			name: "data",
			data: "total: 21\n",
			eval: Eval{Formula: "data.total * 2"},
			want: "42\n",
		},
		{
			name: "string",
			eval: Eval{Formula: `upper("abc")`},
			want: "\"ABC\"\n",
		},
		{
			name: "raw string",
			eval: Eval{Formula: `upper("abc")`, Raw: true},
			want: "ABC\n",
		},
		{
			name: "indented object",
			data: "{a: 1}",
			eval: Eval{Formula: "data", Indent: 2},
			want: "{\n  \"a\": 1\n}\n",
		},
		{
			name:    "no data document",
			eval:    Eval{Formula: "data"},
			wantErr: true,
		},
		{
			name:    "parse error",
			eval:    Eval{Formula: "[1,]"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := testContext(t, "")
			if tt.data != "" {
				ctx = WithDataFile(ctx, writeFile(t, "data.yaml", tt.data))
			}

			err := tt.eval.Run(ctx)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got output %q", out.String())
				}

				return
			}

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if out.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, out.String())
			}
		})
	}
}
