package formula

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestSource(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`{a:1,"b c":[1,2]}.a+f(x)[0]`, `{a: 1, "b c": [1, 2]}.a + f(x)[0]`},
		{"-5", "0 - 5"},
		{"( 1+2 )*3", "(1 + 2) * 3"},
		{`"a\"b\n"`, `"a\"b\n"`},
		{"{ k }", "{k}"},
		{"x . y ( 1 , 2 )", "x.y(1, 2)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			seq, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			got := Source(seq)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}

			again, err := Parse(got)
			if err != nil {
				t.Fatalf("reparse error: %v", err)
			}

			if Source(again) != got {
				t.Errorf("expected stable output, got %q", Source(again))
			}
		})
	}
}

func TestProgram_Format(t *testing.T) {
	prog, err := Compile("1+2*x")
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	var buf bytes.Buffer
	if err := prog.Format(t.Context(), &buf); err != nil {
		t.Fatalf("format error: %v", err)
	}

	if got := buf.String(); got != "1 + 2 * x\n" {
		t.Errorf("expected %q, got %q", "1 + 2 * x\n", got)
	}
}

func TestProgram_FormatJSON(t *testing.T) {
	prog, err := Compile("1+2*x")
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	for _, postfix := range []bool{false, true} {
		var buf bytes.Buffer
		if err := prog.FormatJSON(t.Context(), &buf, postfix, 2); err != nil {
			t.Fatalf("format error: %v", err)
		}

		var nodes []map[string]any
		if err := json.Unmarshal(buf.Bytes(), &nodes); err != nil {
			t.Fatalf("invalid JSON %q: %v", buf.String(), err)
		}

		if len(nodes) != 5 {
			t.Fatalf("expected 5 nodes, got %d", len(nodes))
		}

		last := nodes[4]["type"]
		if postfix && last != "operator" {
			t.Errorf("expected postfix to end with an operator, got %v", last)
		}

		if !postfix && last != "variable" {
			t.Errorf("expected infix to end with a variable, got %v", last)
		}
	}
}

func TestProgram_FormatYAML(t *testing.T) {
	prog, err := Compile(`f("a")`)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	var buf bytes.Buffer
	if err := prog.FormatYAML(t.Context(), &buf, false, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"variable", "function", "f"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}
