package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ardnew/rpt/formula"
	"github.com/ardnew/rpt/log"
	"github.com/ardnew/rpt/report"
	"github.com/ardnew/rpt/script"
)

// Compile generates a report: it loads the source data, applies the report's
// transforms, compiles the widget tree and serializes the result.
type Compile struct {
	Report string `arg:"" help:"Report definition file (YAML or JSON) or '-' for stdin." name:"report"`

	Target string `help:"Output format overriding the report's target (${targets})." short:"t"`
	Output string `help:"Output file, '-' for stdout; defaults to the report's file name." short:"o" type:"path"`

	DataURL    string `help:"Fetch the source data from an absolute http(s) URL."                   name:"data-url"`
	DataScript string `help:"Produce the source data by running a script (needs --allow-unsafe-eval)." name:"data-script"`

	AllowUnsafeEval bool   `help:"Allow script data sources."                                            name:"allow-unsafe-eval"`
	Files           string `help:"Directory serving 'local/' image urls."                                type:"existingdir"`
	PDFCommand      string `help:"Command converting HTML on stdin to PDF on stdout, e.g. 'wkhtmltopdf - -'." name:"pdf-command"`
}

// Run executes the compile command.
func (c *Compile) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	in, err := openSource(ctx, c.Report)
	if err != nil {
		return err
	}

	doc, err := report.Decode(in)
	in.Close()

	if err != nil {
		return err
	}

	var target report.Target
	if c.Target != "" {
		if target, err = report.ParseTarget(c.Target); err != nil {
			return err
		}
	}

	src, err := c.source(ctx)
	if err != nil {
		return err
	}

	logger := log.Default()
	engine := report.New(
		report.WithAPI(c.api(logger)),
		report.WithAllowUnsafeEval(c.AllowUnsafeEval),
		report.WithLogger(logger),
	)

	out, err := engine.Generate(ctx, doc, src, target)
	if err != nil {
		return err
	}

	return c.write(ctx, out)
}

// source selects the data source from the flags. Without one, the report's
// dataUrl is used.
func (c *Compile) source(ctx context.Context) (report.Source, error) {
	switch {
	case c.DataURL != "":
		return report.Source{Kind: report.SourceURL, Text: c.DataURL}, nil

	case c.DataScript != "":
		return report.Source{Kind: report.SourceScript, Text: c.DataScript}, nil
	}

	if path, _ := ctx.Value(dataFileKey{}).(string); path != "" {
		data, err := dataFrom(ctx)
		if err != nil {
			return report.Source{}, err
		}

		return report.Source{Kind: report.SourceAsIs, Value: data}, nil
	}

	return report.Source{}, nil
}

func (c *Compile) api(logger log.Logger) *report.API {
	api := &report.API{
		EvaluateScript: script.New(script.WithLogger(logger)).Evaluate,
	}

	if c.Files != "" {
		api.FilesDownload = filesDownload(c.Files)
	}

	if c.PDFCommand != "" {
		api.GeneratePDF = pdfCommand(c.PDFCommand)
	}

	return api
}

func (c *Compile) write(ctx context.Context, out *report.Output) error {
	path := c.Output
	if path == "" {
		path = out.FileName
	}

	log.DebugContext(ctx, "report generated",
		slog.String("content_type", out.ContentType),
		slog.String("file", path),
		slog.Int("size", len(out.Body)),
	)

	if path == stdinSource {
		if _, err := outputFrom(ctx).Write(out.Body); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	}

	if err := os.WriteFile(path, out.Body, 0o644); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("file", path))
	}

	return nil
}

// filesDownload serves stored files from dir. The mime type comes from the
// file extension, or from the content when the extension is unknown.
func filesDownload(dir string) func(context.Context, string) (*report.File, error) {
	return func(_ context.Context, name string) (*report.File, error) {
		path := filepath.Join(dir, filepath.FromSlash(name))

		rel, err := filepath.Rel(dir, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, ErrFileAccess.With(slog.String("name", name))
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, ErrReadInput.Wrap(err).With(slog.String("file", path))
		}

		typ, _, _ := strings.Cut(mime.TypeByExtension(filepath.Ext(path)), ";")
		if typ == "" {
			typ, _, _ = strings.Cut(http.DetectContentType(data), ";")
		}

		return &report.File{Data: data, MimeType: typ}, nil
	}
}

// pdfCommand runs command with the HTML document on stdin and returns its
// stdout as the PDF.
func pdfCommand(command string) func(context.Context, string, report.Properties) ([]byte, error) {
	return func(ctx context.Context, html string, props report.Properties) ([]byte, error) {
		args := strings.Fields(command)
		if len(args) == 0 {
			return nil, ErrPDFCommand.With(slog.String("command", command))
		}

		var stdout, stderr bytes.Buffer

		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		cmd.Stdin = strings.NewReader(html)
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		cmd.Env = append(os.Environ(),
			"RPT_PAPER_WIDTH="+formula.FormatNumber(props.PaperWidth),
			"RPT_PAPER_HEIGHT="+formula.FormatNumber(props.PaperHeight),
		)

		if err := cmd.Run(); err != nil {
			return nil, ErrPDFCommand.Wrap(err).With(
				slog.String("command", command),
				slog.String("stderr", strings.TrimSpace(stderr.String())),
			)
		}

		return stdout.Bytes(), nil
	}
}
