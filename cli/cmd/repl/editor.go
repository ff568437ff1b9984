package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/rpt/formula"
	"github.com/ardnew/rpt/log"
	"github.com/ardnew/rpt/report"
)

const defaultEditor = "vi"

// editDataCommand implements [tea.ExecCommand] for the data document
// edit-parse-retry loop. It writes the current document as YAML to a temp
// file, opens the user's editor, and parses the result. On parse error the
// user is prompted to re-edit; declining exits the program.
type editDataCommand struct {
	data    formula.Value
	ctxFunc func() context.Context
	newData formula.Value
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editDataCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editDataCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editDataCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-parse-retry loop. If the user declines to re-edit,
// it returns [ErrEditDeclined]. Clearing the file leaves newData nil.
func (c *editDataCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := encodeData(c.data)
	if err != nil {
		return fmt.Errorf("encode data: %w", err)
	}

	f, err := os.CreateTemp(os.TempDir(), "rpt-data-*.yaml")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		if strings.TrimSpace(string(data)) == "" {
			return nil
		}

		v, parseErr := report.ParseDocument(data)
		c.logger.TraceContext(
			ctx,
			"editor parse attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", parseErr == nil),
		)

		if parseErr == nil {
			c.newData = v

			return nil
		}

		fmt.Fprintf(c.stderr, "\nParse error: %s\n", parseErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}

		content = data
	}
}

// encodeData renders v as a YAML document, keeping object key order.
// Undefined data yields an empty mapping to start from.
func encodeData(v formula.Value) ([]byte, error) {
	if _, ok := v.(formula.Undefined); ok || v == nil {
		return []byte("{}\n"), nil
	}

	return yaml.MarshalWithOptions(formula.ToOrdered(v), yaml.Indent(2))
}

// runEditor launches the user's editor on the given file path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	args := strings.Fields(editor)
	if len(args) == 0 {
		args = []string{defaultEditor}
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
