package model

import "testing"

// TestComputeStatistics tests aggregation over a page list.
func TestComputeStatistics(t *testing.T) {
	t.Parallel()

	t.Run("empty page set has zero average", func(t *testing.T) {
		t.Parallel()

		stats := ComputeStatistics(nil, 0)
		if stats.AverageLinksPerPage != 0 {
			t.Errorf("expected average 0, got %d", stats.AverageLinksPerPage)
		}
		if stats.PagesScraped != 0 {
			t.Errorf("expected 0 pages, got %d", stats.PagesScraped)
		}
	})

	t.Run("sums links without cross-page deduplication", func(t *testing.T) {
		t.Parallel()

		shared := "https://example.com/shared"
		pages := []*Page{
			{URL: "https://example.com/", Links: []string{shared, "https://example.com/a", "https://example.com/b"}, Images: []string{"https://example.com/1.png"}},
			{URL: "https://example.com/a", Links: []string{shared, "https://example.com/"}, Images: []string{"https://example.com/1.png", "https://example.com/2.png"}},
		}

		stats := ComputeStatistics(pages, 3)
		if stats.PagesScraped != 2 {
			t.Errorf("expected 2 pages, got %d", stats.PagesScraped)
		}
		if stats.UniqueURLsVisited != 3 {
			t.Errorf("expected 3 unique URLs, got %d", stats.UniqueURLsVisited)
		}
		if stats.TotalLinksFound != 5 {
			t.Errorf("expected 5 links, got %d", stats.TotalLinksFound)
		}
		if stats.TotalImagesFound != 3 {
			t.Errorf("expected 3 images, got %d", stats.TotalImagesFound)
		}
		// 5 / 2 with integer division
		if stats.AverageLinksPerPage != 2 {
			t.Errorf("expected average 2, got %d", stats.AverageLinksPerPage)
		}
	})
}
