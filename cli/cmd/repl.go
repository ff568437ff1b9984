package cmd

import (
	"context"

	"github.com/ardnew/rpt/cli/cmd/repl"
	"github.com/ardnew/rpt/log"
)

// Repl starts an interactive formula session against the data document.
type Repl struct {
	NoHistory bool `help:"Do not load or save input history." name:"no-history"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	data, err := dataFrom(ctx)
	if err != nil {
		return err
	}

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil && !r.NoHistory {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, data, cacheDir, log.Default())
}
