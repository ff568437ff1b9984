package report

import (
	"context"
	"log/slog"
	"net/http"
)

// File is a downloaded file.
type File struct {
	Data     []byte
	MimeType string
}

// API holds the optional external services used while generating a
// report. A nil field means the service is not available.
type API struct {
	// GeneratePDF renders a complete HTML document to PDF.
	GeneratePDF func(ctx context.Context, html string, props Properties) ([]byte, error)

	// FilesDownload fetches a stored file by name.
	FilesDownload func(ctx context.Context, name string) (*File, error)

	// EvaluateScript runs the code of a script data source. It is only
	// called when unsafe evaluation is allowed.
	EvaluateScript func(ctx context.Context, code string) (any, error)

	// FontCSSURLs returns stylesheet URLs that provide the given faces.
	// When nil, Google Fonts URLs are used.
	FontCSSURLs func(ctx context.Context, fonts []FontStyle) ([]string, error)

	// HTTPClient fetches url data sources. http.DefaultClient is used
	// when nil.
	HTTPClient *http.Client
}

func unavailable(name string) error {
	return ErrAPIUnavailable.With(slog.String("api", name))
}

func (a *API) httpClient() *http.Client {
	if a == nil || a.HTTPClient == nil {
		return http.DefaultClient
	}

	return a.HTTPClient
}
