package report

import (
	"context"
	"log/slog"

	"github.com/ardnew/rpt/formula"
)

// Output is a serialized report.
type Output struct {
	Body        []byte
	ContentType string
	FileName    string
}

// Serialize writes c in the given target format. An empty target uses the
// report's own. The file name keeps c's name, switching its extension when
// it matched the report's target.
func (e *Engine) Serialize(ctx context.Context, c *CompiledReport, target Target) (*Output, error) {
	if target == "" {
		target = c.Target
	}

	out := &Output{
		ContentType: target.ContentType(),
		FileName:    FileName(c.Properties.FileName, c.Target, target),
	}

	e.logger.TraceContext(ctx, "serialize",
		slog.String("target", string(target)),
		slog.String("file", out.FileName))

	switch target {
	case TargetHTML:
		html, err := e.RenderHTML(ctx, c)
		if err != nil {
			return nil, err
		}

		out.Body = []byte(html)

	case TargetPDF:
		if e.api == nil || e.api.GeneratePDF == nil {
			return nil, unavailable("generatePdf() not available")
		}

		html, err := e.RenderHTML(ctx, c)
		if err != nil {
			return nil, err
		}

		if out.Body, err = e.api.GeneratePDF(ctx, html, c.Properties); err != nil {
			return nil, err
		}

	case TargetJSON:
		text, ok := formula.JSON(c.Data, "")
		if !ok {
			return nil, ErrNotJSON.With(slog.String("type", formula.TypeOf(c.Data)))
		}

		out.Body = []byte(text)

	case TargetCSVUTF8, TargetCSVWindows1250:
		rows, err := CSVRows(c.Data)
		if err != nil {
			return nil, err
		}

		if out.Body, err = MakeCSV(rows, target); err != nil {
			return nil, err
		}

	default:
		return nil, ErrUnknownTarget.With(slog.String("target", string(target)))
	}

	return out, nil
}

// Generate produces a report from scratch: it fetches the source data,
// applies the report's transforms, compiles and serializes to target. A
// zero src loads the report's dataUrl, if it has one.
func (e *Engine) Generate(ctx context.Context, report *Report, src Source, target Target) (*Output, error) {
	if src.Kind == "" {
		src = Source{Kind: SourceAsIs}
		if report.DataURL != "" {
			src = Source{Kind: SourceURL, Text: report.DataURL}
		}
	}

	data, err := e.FetchSource(ctx, src)
	if err != nil {
		return nil, err
	}

	if data, err = e.ApplyTransforms(ctx, report.Transforms, data, -1); err != nil {
		return nil, err
	}

	c, err := e.Compile(ctx, report, data)
	if err != nil {
		return nil, err
	}

	return e.Serialize(ctx, c, target)
}
