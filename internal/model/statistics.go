package model

// Statistics contains aggregate counts over a completed crawl.
type Statistics struct {
	// PagesScraped is the number of pages fetched and extracted successfully.
	PagesScraped int `json:"pages_scraped"`

	// UniqueURLsVisited is the number of canonical URLs claimed for fetching,
	// including the ones whose fetch failed.
	UniqueURLsVisited int `json:"unique_urls_visited"`

	// TotalLinksFound is the sum of link counts across pages.
	// A link present on two pages is counted twice.
	TotalLinksFound int `json:"total_links_found"`

	// TotalImagesFound is the sum of image counts across pages.
	TotalImagesFound int `json:"total_images_found"`

	// AverageLinksPerPage is TotalLinksFound / PagesScraped using integer
	// division, or 0 when no page was scraped.
	AverageLinksPerPage int `json:"average_links_per_page"`
}

// ComputeStatistics aggregates pages. uniqueVisited is the size of the
// crawl's visited set, which the page list alone cannot recover.
func ComputeStatistics(pages []*Page, uniqueVisited int) Statistics {
	stats := Statistics{
		PagesScraped:      len(pages),
		UniqueURLsVisited: uniqueVisited,
	}

	for _, page := range pages {
		if page == nil {
			continue
		}
		stats.TotalLinksFound += page.LinkCount()
		stats.TotalImagesFound += page.ImageCount()
	}

	if stats.PagesScraped > 0 {
		stats.AverageLinksPerPage = stats.TotalLinksFound / stats.PagesScraped
	}

	return stats
}
