package fetcher

import (
	"context"
	"fmt"
	"html"
	"time"
)

// simulatedPage is served for every URL by Simulated.
const simulatedPage = `<html>
<head>
	<title>Sample Page - %[1]s</title>
	<meta name="description" content="This is a sample page for %[1]s">
	<meta property="og:title" content="Sample Page">
</head>
<body>
	<h1>Welcome to %[1]s</h1>
	<p>This is sample content with <a href="/about">internal link</a> and
	   <a href="https://example.com">external link</a>.</p>
	<img src="/images/logo.png" alt="Logo">
	<img src="https://example.com/banner.jpg" alt="Banner">
</body>
</html>`

// Simulated is a Fetcher that never touches the network. Every URL yields the
// same sample document, which links to /about on the requested host and to
// https://example.com.
type Simulated struct {
	// delay emulates network latency.
	delay time.Duration
}

// NewSimulated creates a Simulated fetcher that waits delay before answering.
func NewSimulated(delay time.Duration) *Simulated {
	return &Simulated{delay: delay}
}

// Fetch returns the sample document for rawURL.
func (s *Simulated) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Response{
		URL:         rawURL,
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(fmt.Sprintf(simulatedPage, html.EscapeString(rawURL))),
	}, nil
}
