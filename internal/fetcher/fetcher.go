package fetcher

import (
	"context"
	"fmt"
)

// Response is a successfully fetched document.
type Response struct {
	// URL is the URL the content was finally served from, after redirects.
	URL string

	// StatusCode is the HTTP status code. Zero for non-HTTP transports.
	StatusCode int

	// ContentType is the MIME type of Body as reported by the server.
	ContentType string

	// Body is the document content.
	Body []byte
}

// Fetcher retrieves the document at a URL.
// Implementations must honor ctx cancellation and deadlines.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Response, error)
}

// Func adapts an ordinary function to the Fetcher interface.
type Func func(ctx context.Context, rawURL string) (*Response, error)

// Fetch calls f(ctx, rawURL).
func (f Func) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	return f(ctx, rawURL)
}

// StatusError is returned when the server answers with an error status.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}
