// Package model defines the data structures shared by the crawler, the link
// checker, the pipeline and the report writers.
//
// This package contains the following main types:
//   - Page: a fetched and extracted document
//   - LinkStatus: the classification of a link check
//   - Statistics: aggregate counts over a crawl
//   - CrawlReport: everything collected for one seed URL
//
// The types carry JSON tags so reports can be serialized directly.
package model
