// Package main provides the entry point for the sitescan CLI.
//
// sitescan crawls websites from one or more seed URLs, reports what it
// found and optionally checks every discovered link.
//
// Usage:
//
//	sitescan crawl https://example.com
//	sitescan crawl --check-links --depth 3 https://example.com
//	sitescan check https://example.com/a https://example.com/b
//
// See --help for all available options.
package main

func main() {
	Execute()
}
