package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/rpt/formula"
	"github.com/ardnew/rpt/report"
)

// Fmt parses input and prints it in a normalized or structured form.
type Fmt struct {
	Source  Source  `cmd:"" default:"withargs" help:"Print a formula in normalized syntax (default)."`
	AST     AST     `cmd:""                    help:"Print the parsed expression tree of a formula."`
	Postfix Postfix `cmd:""                    help:"Print the postfix evaluation order of a formula."`
	Report  Report  `cmd:""                    help:"Print a report definition as normalized YAML."`
}

// Source prints a formula in normalized syntax.
type Source struct {
	Formula string `arg:"" help:"Formula to format." name:"formula"`
}

// Run executes the source command.
func (f *Source) Run(ctx context.Context) error {
	prog, err := formula.Compile(f.Formula)
	if err != nil {
		return err
	}

	return prog.Format(ctx, outputFrom(ctx))
}

// AST prints the infix expression tree of a formula.
type AST struct {
	Format string `default:"json" enum:"json,yaml" help:"Output encoding."                         short:"F"`
	Indent int    `default:"2"                     help:"Indent width (0 for single-line output)." short:"i"`

	Formula string `arg:"" help:"Formula to parse." name:"formula"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) error {
	return writeTree(ctx, a.Formula, a.Format, a.Indent, false)
}

// Postfix prints the postfix sequence of a formula.
type Postfix struct {
	Format string `default:"json" enum:"json,yaml" help:"Output encoding."                         short:"F"`
	Indent int    `default:"2"                     help:"Indent width (0 for single-line output)." short:"i"`

	Formula string `arg:"" help:"Formula to parse." name:"formula"`
}

// Run executes the postfix command.
func (p *Postfix) Run(ctx context.Context) error {
	return writeTree(ctx, p.Formula, p.Format, p.Indent, true)
}

func writeTree(ctx context.Context, src, format string, indent int, postfix bool) error {
	prog, err := formula.Compile(src)
	if err != nil {
		return err
	}

	w := outputFrom(ctx)

	if format == "yaml" {
		if err := prog.FormatYAML(ctx, w, postfix, indent); err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		return nil
	}

	return prog.FormatJSON(ctx, w, postfix, indent)
}

// Report re-encodes a report definition.
type Report struct {
	Source string `arg:"" default:"-" help:"Report file or '-' for stdin." name:"source"`
}

// Run executes the report command.
func (r *Report) Run(ctx context.Context) error {
	in, err := openSource(ctx, r.Source)
	if err != nil {
		return err
	}
	defer in.Close()

	doc, err := report.Decode(in)
	if err != nil {
		return ErrReadInput.Wrap(err).With(slog.String("file", r.Source))
	}

	if err := doc.Encode(outputFrom(ctx)); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
