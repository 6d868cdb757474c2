// Package crawler implements a recursive, concurrency-bounded crawl session.
//
// # Architecture
//
// A Spider starts at a seed URL, fetches it, extracts its links and claims the
// ones that pass the filters as the next depth. Every URL of a depth is
// fetched in its own goroutine, and the next depth is claimed only after all
// of them have finished, so a page is always reached at its shortest distance
// from the seed. Crawl returns after the last depth has finished.
//
// All branches share one visited set. A URL is claimed (an atomic
// test-and-insert on its canonical form) before it is fetched, which
// guarantees that no URL is fetched twice in a session and that link cycles
// terminate.
//
// # Filters
//
// A discovered link is followed only when it:
//   - is an absolute URL with scheme and host
//   - lies on the seed's host (when same-domain-only is set)
//   - passes the ignore and follow path patterns
//   - has not been claimed yet
//   - is within the page budget
//
// Links that are not followed are still listed on the page that carries them.
//
// # Failures
//
// A fetch or extraction failure ends only its own branch. Failures are
// collected and available from Spider.Failures after the crawl. Cancelling the
// context stops new work from starting and no further links are claimed;
// Crawl then returns the pages gathered so far without an error.
//
// # Usage
//
//	spider := crawler.NewSpider(fetcher.NewSimulated(0),
//		crawler.WithMaxDepth(2),
//		crawler.WithSameDomainOnly(true),
//		crawler.WithConcurrency(8),
//	)
//	pages, err := spider.Crawl(ctx, "https://example.com")
//	stats := spider.Statistics()
package crawler
