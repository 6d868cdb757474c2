package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Page represents one successfully fetched and extracted document.
// A Page is created once per canonical URL per crawl and is not modified
// after it has been handed to the crawl result collection.
type Page struct {
	// URL is the canonical URL of the page.
	URL string `json:"url"`

	// Depth is the number of hops from the seed page (the seed is depth 0).
	Depth int `json:"depth"`

	// StatusCode is the HTTP status code returned by the fetcher.
	// Zero for transports that have no notion of status codes.
	StatusCode int `json:"status_code,omitempty"`

	// ContentType is the MIME type reported by the fetcher.
	ContentType string `json:"content_type,omitempty"`

	// Title is the page title from the <title> tag. Empty if absent.
	Title string `json:"title,omitempty"`

	// Text is the whitespace-collapsed plain text of the document.
	Text string `json:"text,omitempty"`

	// Links contains outbound link URLs in document order, without duplicates.
	// Links that were not followed (other domains, depth limit) are kept here.
	Links []string `json:"links"`

	// Images contains image URLs without duplicates.
	Images []string `json:"images"`

	// Metadata maps <meta> name or property attributes to their content.
	Metadata map[string]string `json:"metadata,omitempty"`

	// Hash is the SHA-256 hash of the fetched content.
	Hash string `json:"hash,omitempty"`

	// CapturedAt is when the page was fetched.
	CapturedAt time.Time `json:"captured_at"`
}

// ContentHash returns the hex encoded SHA-256 hash of content.
// Empty content produces an empty hash.
func ContentHash(content []byte) string {
	if len(content) == 0 {
		return ""
	}
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// LinkCount returns the number of outbound links on the page.
func (p *Page) LinkCount() int {
	return len(p.Links)
}

// ImageCount returns the number of images on the page.
func (p *Page) ImageCount() int {
	return len(p.Images)
}

// HasLink reports whether the page links to target.
func (p *Page) HasLink(target string) bool {
	for _, link := range p.Links {
		if link == target {
			return true
		}
	}
	return false
}

// IsHTML returns true if the page content type indicates HTML.
func (p *Page) IsHTML() bool {
	return p.ContentType == "text/html" ||
		p.ContentType == "application/xhtml+xml" ||
		len(p.ContentType) > 9 && p.ContentType[:9] == "text/html"
}
