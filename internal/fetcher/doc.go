// Package fetcher retrieves documents for the crawler.
//
// The crawler only depends on the Fetcher interface. Two implementations are
// provided:
//   - HTTPFetcher performs real HTTP GET requests, optionally through a SOCKS5
//     proxy, with a body size limit and gzip/deflate/brotli decoding.
//   - Simulated returns a generated sample page for any URL without touching
//     the network. It is used for demos and offline runs.
//
// A failed fetch is reported as an error. The crawler treats every error the
// same way: the page is not produced and the branch stops.
package fetcher
