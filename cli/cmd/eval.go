package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/rpt/formula"
	"github.com/ardnew/rpt/log"
)

// Eval evaluates a formula against the data document.
type Eval struct {
	Formula string `arg:"" help:"Formula to evaluate; the data document is bound to 'data'" name:"formula"`
	Indent  int    `       help:"Indent width for JSON results (0 for compact)"                             default:"0" short:"i"`
	Raw     bool   `       help:"Print string results without JSON quoting"                                             short:"r"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	scope, err := dataScope(ctx)
	if err != nil {
		return err
	}

	logger := log.Default()

	result, err := formula.Evaluate(ctx, e.Formula, scope,
		formula.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	logger.DebugContext(ctx, "evaluated",
		slog.String("formula", e.Formula),
		slog.String("type", formula.TypeOf(result)),
	)

	out := display(result, strings.Repeat(" ", e.Indent))
	if s, ok := result.(formula.String); ok && e.Raw {
		out = string(s)
	}

	_, err = fmt.Fprintln(outputFrom(ctx), out)

	return err
}
