// Package pipeline runs the stages of a site scan in sequence.
//
// A scan of one seed URL flows through steps that share a
// model.CrawlReport: the crawl itself, the statistics over the crawled pages
// and an optional check of every discovered link. Each step reads what the
// previous steps wrote and adds its own results.
//
// BatchProcessor runs one pipeline per seed concurrently, bounded with
// errgroup.
package pipeline
