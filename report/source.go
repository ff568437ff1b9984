package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/ardnew/rpt/formula"
)

// SourceKind selects how a [Source] produces data.
type SourceKind string

// Source kinds.
const (
	SourceAsIs     SourceKind = "as-is"
	SourceJSON     SourceKind = "json"
	SourceURL      SourceKind = "url"
	SourceScript   SourceKind = "script"
	SourceCallback SourceKind = "callback"
)

// Source describes where a report's input data comes from.
type Source struct {
	Kind SourceKind

	// Value is returned unchanged by as-is sources.
	Value formula.Value

	// Text is the JSON document, the URL or the script code.
	Text string

	// Callback produces the data of callback sources.
	Callback func(ctx context.Context) (formula.Value, error)
}

// FetchSource produces the data described by src.
func (e *Engine) FetchSource(ctx context.Context, src Source) (formula.Value, error) {
	e.logger.DebugContext(ctx, "fetch source", slog.String("kind", string(src.Kind)))

	switch src.Kind {
	case SourceAsIs:
		if src.Value == nil {
			return formula.Undefined{}, nil
		}

		return src.Value, nil

	case SourceJSON:
		return ParseDocument([]byte(src.Text))

	case SourceURL:
		return e.fetchURL(ctx, src.Text)

	case SourceScript, "javascript":
		return e.runScript(ctx, src.Text)

	case SourceCallback:
		if src.Callback == nil {
			return nil, ErrSource.With(slog.String("kind", string(src.Kind)))
		}

		return src.Callback(ctx)
	}

	return nil, ErrSource.Wrap(fmt.Errorf("Unknown data type: %s", src.Kind))
}

func (e *Engine) runScript(ctx context.Context, code string) (formula.Value, error) {
	if !e.allowUnsafe || e.api == nil || e.api.EvaluateScript == nil {
		return nil, ErrScriptDisabled
	}

	out, err := e.api.EvaluateScript(ctx, code)
	if err != nil {
		return nil, ErrSource.Wrap(err)
	}

	return formula.FromNative(out), nil
}

func (e *Engine) fetchURL(ctx context.Context, url string) (formula.Value, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, ErrSource.Wrap(errors.New("Only absolute url is allowed")).
			With(slog.String("url", url))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ErrSource.Wrap(err).With(slog.String("url", url))
	}

	req.Header.Set("Accept", "text/javascript, application/json")

	resp, err := e.api.httpClient().Do(req)
	if err != nil {
		return nil, ErrSource.Wrap(fmt.Errorf(
			"Error while requesting data from url %q. Error: %w", url, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrSource.Wrap(fmt.Errorf("Bad response status: %d", resp.StatusCode)).
			With(slog.String("url", url))
	}

	body, err := ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))

	e.logger.TraceContext(ctx, "source response",
		slog.String("url", url),
		slog.String("content_type", ct),
		slog.Int("length", len(body)))

	switch ct {
	case "text/javascript", "application/javascript":
		return e.runScript(ctx, string(body))
	case "application/json":
		return ParseDocument(body)
	}

	return nil, ErrUnsupportedContent.With(slog.String("content_type", ct))
}
