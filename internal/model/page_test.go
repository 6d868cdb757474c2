package model

import (
	"testing"
)

// TestContentHash tests the ContentHash function.
func TestContentHash(t *testing.T) {
	t.Parallel()

	t.Run("computes SHA256 hash of content", func(t *testing.T) {
		t.Parallel()

		// Expected SHA256 of "Hello, World!"
		expected := "dffd6021bb2bd5b0af676290809ec3a53191dd81c7f70a4b28688a362182986f"
		if got := ContentHash([]byte("Hello, World!")); got != expected {
			t.Errorf("got %q, expected %q", got, expected)
		}
	})

	t.Run("empty content produces empty hash", func(t *testing.T) {
		t.Parallel()

		if got := ContentHash([]byte{}); got != "" {
			t.Errorf("expected empty hash, got %q", got)
		}
	})

	t.Run("nil content produces empty hash", func(t *testing.T) {
		t.Parallel()

		if got := ContentHash(nil); got != "" {
			t.Errorf("expected empty hash, got %q", got)
		}
	})
}

// TestPageCounts tests the link and image helpers.
func TestPageCounts(t *testing.T) {
	t.Parallel()

	page := &Page{
		URL:    "https://example.com/",
		Links:  []string{"https://example.com/about", "https://external.com/"},
		Images: []string{"https://example.com/logo.png"},
	}

	if page.LinkCount() != 2 {
		t.Errorf("expected 2 links, got %d", page.LinkCount())
	}
	if page.ImageCount() != 1 {
		t.Errorf("expected 1 image, got %d", page.ImageCount())
	}
	if !page.HasLink("https://external.com/") {
		t.Error("expected HasLink to find external link")
	}
	if page.HasLink("https://example.com/missing") {
		t.Error("expected HasLink to miss unknown link")
	}
}

// TestPageIsHTML tests the IsHTML method.
func TestPageIsHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"application/xhtml+xml", true},
		{"application/json", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			t.Parallel()
			page := &Page{ContentType: tt.contentType}
			if got := page.IsHTML(); got != tt.want {
				t.Errorf("IsHTML() = %v, want %v", got, tt.want)
			}
		})
	}
}
