// Package robots decides whether a URL may be crawled according to the
// target site's robots.txt. Rules are fetched once per host and cached.
// Errors while fetching or parsing robots.txt allow the crawl to proceed.
package robots
