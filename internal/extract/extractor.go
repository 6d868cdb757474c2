package extract

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidBaseURL is returned when the base URL is not absolute.
var ErrInvalidBaseURL = errors.New("base URL must be absolute")

// Document holds everything extracted from one HTML document.
type Document struct {
	// Title is the trimmed text of the first <title> element.
	Title string

	// Text is the visible text with whitespace collapsed.
	Text string

	// Links contains absolute <a>/<area> targets in document order without duplicates.
	Links []string

	// Images contains absolute <img> sources and icons without duplicates.
	Images []string

	// Metadata maps <meta> name or property to content.
	Metadata map[string]string
}

// Extractor extracts a Document from raw content fetched from baseURL.
type Extractor interface {
	Extract(content []byte, baseURL string) (*Document, error)
}

// HTMLExtractor is an Extractor for HTML documents.
type HTMLExtractor struct {
	// maxLinks caps the number of links kept per document. 0 means no cap.
	maxLinks int
}

// Option configures an HTMLExtractor.
type Option func(*HTMLExtractor)

// WithMaxLinks caps the number of links kept per document.
func WithMaxLinks(n int) Option {
	return func(e *HTMLExtractor) {
		if n > 0 {
			e.maxLinks = n
		}
	}
}

// NewHTMLExtractor creates an HTMLExtractor.
func NewHTMLExtractor(opts ...Option) *HTMLExtractor {
	e := &HTMLExtractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses content as HTML and extracts its fields.
func (e *HTMLExtractor) Extract(content []byte, baseURL string) (*Document, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if !base.IsAbs() {
		return nil, ErrInvalidBaseURL
	}

	root, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	// <base href> changes the resolution root for every relative URL.
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(ref)
		}
	}

	r := resolver{base: base}
	result := &Document{
		Title:    normalizeText(doc.Find("title").First().Text()),
		Text:     visibleText(root),
		Links:    make([]string, 0),
		Images:   make([]string, 0),
		Metadata: make(map[string]string),
	}

	links := newOrderedSet()
	doc.Find("a[href], area[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if resolved := r.resolve(href); resolved != "" {
			links.add(resolved)
		}
		return e.maxLinks == 0 || links.size() < e.maxLinks
	})
	result.Links = links.items

	images := newOrderedSet()
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if resolved := r.resolve(src); resolved != "" {
			images.add(resolved)
		}
	})
	doc.Find("link[href]").Each(func(_ int, s *goquery.Selection) {
		rel := strings.ToLower(s.AttrOr("rel", ""))
		if rel != "icon" && rel != "shortcut icon" && rel != "apple-touch-icon" {
			return
		}
		if resolved := r.resolve(s.AttrOr("href", "")); resolved != "" {
			images.add(resolved)
		}
	})
	result.Images = images.items

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name := s.AttrOr("name", "")
		if name == "" {
			name = s.AttrOr("property", "") // OpenGraph uses property
		}
		content := strings.TrimSpace(s.AttrOr("content", ""))
		if name != "" && content != "" {
			result.Metadata[name] = content
		}
	})

	return result, nil
}

// resolver turns href/src attribute values into absolute URLs.
type resolver struct {
	base *url.URL
}

// resolve returns the absolute form of ref without its fragment, or an empty
// string for references that do not point at a fetchable resource.
func (r resolver) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return ""
	}

	lower := strings.ToLower(ref)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	resolved := r.base.ResolveReference(u)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String()
}

// skippedElements hold text that is not visible page content.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
}

// blockElements end a run of text; inline elements do not.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "td": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true, "nav": true,
	"ul": true, "ol": true, "table": true, "blockquote": true, "pre": true,
}

// visibleText returns the body text of the document with whitespace collapsed.
func visibleText(root *html.Node) string {
	var sb strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			sb.WriteString(" ")
		}
	}
	walk(root)

	return normalizeText(sb.String())
}

// normalizeText collapses runs of whitespace and applies Unicode NFC so that
// visually identical text compares equal.
func normalizeText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// orderedSet keeps insertion order and drops duplicates.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{
		seen:  make(map[string]struct{}),
		items: make([]string, 0),
	}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) size() int {
	return len(s.items)
}
