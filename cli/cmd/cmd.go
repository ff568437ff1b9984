package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/rpt/formula"
	"github.com/ardnew/rpt/report"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	dataFileKey struct{}
	outputKey   struct{}
	inputKey    struct{}
)

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// WithDataFile returns a new context.Context naming the data document that
// commands evaluate against. An empty path means no data.
func WithDataFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, dataFileKey{}, path)
}

// WithOutput returns a new context.Context whose commands write their
// results to w instead of os.Stdout.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// WithInput returns a new context.Context whose commands read "-" from r
// instead of os.Stdin.
func WithInput(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, inputKey{}, r)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

func inputFrom(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(inputKey{}).(io.Reader); ok && r != nil {
		return r
	}

	return os.Stdin
}

// openSource opens path for reading, or the command input for "-".
func openSource(ctx context.Context, path string) (io.ReadCloser, error) {
	if path == stdinSource || path == "" {
		return io.NopCloser(inputFrom(ctx)), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("file", path))
	}

	return file, nil
}

// dataFrom loads the data document named by [WithDataFile]. It returns
// undefined when no document was named.
func dataFrom(ctx context.Context) (formula.Value, error) {
	path, _ := ctx.Value(dataFileKey{}).(string)
	if path == "" {
		return formula.Undefined{}, nil
	}

	r, err := openSource(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	v, err := report.DecodeData(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("file", path))
	}

	return v, nil
}

// dataScope returns a scope binding data to the loaded data document.
func dataScope(ctx context.Context) (*formula.Scope, error) {
	data, err := dataFrom(ctx)
	if err != nil {
		return nil, err
	}

	scope := formula.NewScope()
	scope.Push("data", data)

	return scope, nil
}

// display renders a formula result for the terminal: JSON when it has a
// JSON form, its string conversion otherwise.
func display(v formula.Value, indent string) string {
	if s, ok := formula.JSON(v, indent); ok {
		return s
	}

	return formula.ToString(v)
}
