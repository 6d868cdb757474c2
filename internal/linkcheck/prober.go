package linkcheck

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/sitescan/internal/fetcher"
	"github.com/nao1215/sitescan/internal/model"
)

// Prober reports the status of a single, syntactically valid URL.
// When err is non-nil the status is still meaningful (usually NOT_FOUND).
type Prober interface {
	Probe(ctx context.Context, rawURL string) (model.LinkStatus, error)
}

// ProberFunc adapts an ordinary function to the Prober interface.
type ProberFunc func(ctx context.Context, rawURL string) (model.LinkStatus, error)

// Probe calls f(ctx, rawURL).
func (f ProberFunc) Probe(ctx context.Context, rawURL string) (model.LinkStatus, error) {
	return f(ctx, rawURL)
}

// HTTPProber checks links with HEAD requests, falling back to GET when the
// server does not allow HEAD. Redirects are reported, not followed.
type HTTPProber struct {
	client    *http.Client
	userAgent string
}

// NewHTTPProber creates a prober. opts.FollowRedirects is ignored.
func NewHTTPProber(opts fetcher.ClientOptions, userAgent string) (*HTTPProber, error) {
	opts.FollowRedirects = false
	client, err := fetcher.NewHTTPClient(opts)
	if err != nil {
		return nil, err
	}
	if userAgent == "" {
		userAgent = fetcher.DefaultUserAgent
	}
	return &HTTPProber{client: client, userAgent: userAgent}, nil
}

// Probe implements Prober.
func (p *HTTPProber) Probe(ctx context.Context, rawURL string) (model.LinkStatus, error) {
	code, err := p.do(ctx, http.MethodHead, rawURL)
	if err == nil && (code == http.StatusMethodNotAllowed || code == http.StatusNotImplemented) {
		code, err = p.do(ctx, http.MethodGet, rawURL)
	}
	if err != nil {
		return model.LinkStatusNotFound, err
	}
	return statusFromCode(code), nil
}

func (p *HTTPProber) do(ctx context.Context, method, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return resp.StatusCode, nil
}

// statusFromCode maps an HTTP status code to a LinkStatus.
func statusFromCode(code int) model.LinkStatus {
	switch {
	case code >= 200 && code < 300:
		return model.LinkStatusOK
	case code >= 300 && code < 400:
		return model.LinkStatusRedirect
	default:
		return model.LinkStatusNotFound
	}
}

// SimulatedProber classifies URLs without network access: URLs containing
// "404" are NOT_FOUND, URLs containing "redirect" are REDIRECT and all others
// are OK.
type SimulatedProber struct {
	delay time.Duration
}

// NewSimulatedProber creates a SimulatedProber that waits delay per probe.
func NewSimulatedProber(delay time.Duration) *SimulatedProber {
	return &SimulatedProber{delay: delay}
}

// Probe implements Prober.
func (p *SimulatedProber) Probe(ctx context.Context, rawURL string) (model.LinkStatus, error) {
	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return model.LinkStatusNotFound, ctx.Err()
		case <-timer.C:
		}
	}

	switch {
	case strings.Contains(rawURL, "404"):
		return model.LinkStatusNotFound, nil
	case strings.Contains(rawURL, "redirect"):
		return model.LinkStatusRedirect, nil
	default:
		return model.LinkStatusOK, nil
	}
}
