// Package linkcheck classifies URLs as OK, NOT_FOUND, REDIRECT or INVALID.
//
// A Checker runs one probe per URL concurrently, bounded by an optional
// shared throttle.Gate, and returns the results only after every probe in the
// batch has finished. Strings that are not absolute URLs are reported as
// INVALID without touching the network.
package linkcheck
