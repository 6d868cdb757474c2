package crawler

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSeed is returned by Crawl when the seed URL has no scheme or host.
	ErrInvalidSeed = errors.New("invalid seed URL")

	// ErrNegativeDepth is returned by Crawl when the maximum depth is negative.
	ErrNegativeDepth = errors.New("max depth must not be negative")
)

// FetchError records a URL that could not be fetched.
// It ends the branch that produced it and nothing else.
type FetchError struct {
	URL   string
	Depth int
	Err   error
}

// Error implements error.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (depth %d): %v", e.URL, e.Depth, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractError records a fetched document whose content could not be extracted.
type ExtractError struct {
	URL   string
	Depth int
	Err   error
}

// Error implements error.
func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract %s (depth %d): %v", e.URL, e.Depth, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExtractError) Unwrap() error {
	return e.Err
}
