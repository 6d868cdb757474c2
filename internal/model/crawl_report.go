package model

import (
	"sort"
	"time"
)

// CrawlReport is the result of one crawl of a seed URL, optionally followed
// by a link check over the discovered links.
type CrawlReport struct {
	// Seed is the seed URL as given by the user.
	Seed string `json:"seed"`

	// DateCrawled is when the crawl started.
	DateCrawled time.Time `json:"date_crawled"`

	// Duration is how long the crawl and its follow-up steps took.
	Duration time.Duration `json:"duration"`

	// Pages contains every page produced by the crawl.
	Pages []*Page `json:"pages"`

	// Statistics aggregates Pages.
	Statistics Statistics `json:"statistics"`

	// FailedURLs lists canonical URLs whose fetch or extraction failed.
	FailedURLs []string `json:"failed_urls,omitempty"`

	// LinkResults maps checked URLs to their classification.
	// Nil when link checking was not performed.
	LinkResults map[string]LinkStatus `json:"link_results,omitempty"`

	// BrokenLinks lists checked URLs classified NOT_FOUND or INVALID.
	BrokenLinks []string `json:"broken_links,omitempty"`

	// Cancelled is true if the crawl stopped early because of cancellation.
	// Pages then holds the partial result.
	Cancelled bool `json:"cancelled"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error is the error that stopped processing, if any.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewCrawlReport creates an empty report for seed.
func NewCrawlReport(seed string) *CrawlReport {
	return &CrawlReport{
		Seed:        seed,
		DateCrawled: time.Now(),
		Pages:       make([]*Page, 0),
	}
}

// DiscoveredLinks returns every distinct link found on any page, sorted.
func (r *CrawlReport) DiscoveredLinks() []string {
	seen := make(map[string]struct{})
	links := make([]string, 0)
	for _, page := range r.Pages {
		for _, link := range page.Links {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
		}
	}
	sort.Strings(links)
	return links
}

// SortedPages returns the pages ordered by depth, then URL.
// The crawl itself gives no ordering guarantee between sibling pages.
func (r *CrawlReport) SortedPages() []*Page {
	pages := make([]*Page, len(r.Pages))
	copy(pages, r.Pages)
	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].Depth != pages[j].Depth {
			return pages[i].Depth < pages[j].Depth
		}
		return pages[i].URL < pages[j].URL
	})
	return pages
}

// StatusCounts returns how many checked links fall into each status.
func (r *CrawlReport) StatusCounts() map[LinkStatus]int {
	counts := make(map[LinkStatus]int)
	for _, status := range r.LinkResults {
		counts[status]++
	}
	return counts
}

// LinksChecked reports whether a link check was performed.
func (r *CrawlReport) LinksChecked() bool {
	return r.LinkResults != nil
}

// SetError records err on the report.
func (r *CrawlReport) SetError(err error) {
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}
