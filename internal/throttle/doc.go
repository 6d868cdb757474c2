// Package throttle bounds how much work a crawl puts on the network.
//
// Gate caps the number of in-flight fetch and check operations across every
// branch of a crawl. HostLimiter spaces requests to the same host apart.
package throttle
