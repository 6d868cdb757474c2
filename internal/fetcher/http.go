package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

// Default values for HTTPFetcher.
const (
	// DefaultUserAgent identifies sitescan in HTTP requests.
	DefaultUserAgent = "sitescan/1.0 (+https://github.com/nao1215/sitescan)"

	// DefaultMaxBodySize limits the response body size to 5MB.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second
)

// ErrBodyTooLarge is returned when a response body exceeds the configured limit.
var ErrBodyTooLarge = errors.New("response body exceeds size limit")

// HTTPFetcher implements Fetcher with an http.Client.
type HTTPFetcher struct {
	// client performs the requests.
	client *http.Client

	// userAgent is the User-Agent header to use.
	userAgent string

	// maxBodySize limits the number of body bytes read.
	maxBodySize int64

	// clientOpts are used to build client when no client is injected.
	clientOpts ClientOptions
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(f *HTTPFetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithTimeout sets the timeout of each request.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.clientOpts.Timeout = d
		}
	}
}

// WithSOCKS5Proxy routes requests through a SOCKS5 proxy at addr ("host:port").
func WithSOCKS5Proxy(addr string) Option {
	return func(f *HTTPFetcher) {
		f.clientOpts.SOCKS5Proxy = addr
	}
}

// WithCookie sends a raw cookie string with every request.
func WithCookie(cookie string) Option {
	return func(f *HTTPFetcher) {
		f.clientOpts.Cookie = cookie
	}
}

// WithHeaders sends extra headers with every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *HTTPFetcher) {
		f.clientOpts.Headers = headers
	}
}

// WithHTTPClient uses client instead of building one.
// Proxy, cookie, header and timeout options are ignored in that case.
func WithHTTPClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(opts ...Option) (*HTTPFetcher, error) {
	f := &HTTPFetcher{
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		clientOpts: ClientOptions{
			Timeout:         DefaultTimeout,
			FollowRedirects: true,
		},
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		client, err := NewHTTPClient(f.clientOpts)
		if err != nil {
			return nil, err
		}
		f.client = client
	}

	return f, nil
}

// Fetch downloads rawURL with a GET request.
// Responses with status 400 and above are returned as *StatusError.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // best effort
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := f.readBody(resp)
	if err != nil {
		return nil, err
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Response{
		URL:         finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// readBody decodes the response body according to Content-Encoding and
// enforces the size limit on the decoded content.
func (f *HTTPFetcher) readBody(resp *http.Response) ([]byte, error) {
	reader := io.Reader(resp.Body)

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	}

	body, err := io.ReadAll(io.LimitReader(reader, f.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, fmt.Errorf("%w: %d bytes", ErrBodyTooLarge, f.maxBodySize)
	}
	return body, nil
}

// Client exposes the underlying HTTP client, e.g. for robots.txt requests.
func (f *HTTPFetcher) Client() *http.Client {
	return f.client
}
