// Package urlutil validates and canonicalizes URLs for crawl deduplication.
//
// A canonical URL has a lowercase scheme, a lowercase ASCII host without the
// scheme's default port, no fragment, and "/" in place of an empty path.
// The canonical form is the key used by the crawler's visited set.
package urlutil

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// ErrInvalidURL is returned when a string is not an absolute URL with both
// a scheme and a host.
var ErrInvalidURL = errors.New("invalid URL: scheme and host are required")

// defaultPorts maps schemes to the port that is implied when none is given.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Parse parses raw and checks that it carries a scheme and a host.
func Parse(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return nil, ErrInvalidURL
	}
	return u, nil
}

// IsValid reports whether raw is a syntactically valid absolute URL.
func IsValid(raw string) bool {
	_, err := Parse(raw)
	return err == nil
}

// Normalize returns the canonical form of raw.
func Normalize(raw string) (string, error) {
	u, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return Canonicalize(u).String(), nil
}

// Canonicalize returns a canonical copy of u. The input is not modified.
func Canonicalize(u *url.URL) *url.URL {
	c := *u
	if u.User != nil {
		user := *u.User
		c.User = &user
	}

	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = canonicalHost(c.Scheme, u)
	c.Fragment = ""
	c.RawFragment = ""

	// http://example.com and http://example.com/ address the same resource.
	if c.Path == "" && c.Opaque == "" {
		c.Path = "/"
		c.RawPath = ""
	}

	return &c
}

// Host returns the canonical host (with non-default port) of raw.
func Host(raw string) (string, error) {
	u, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return canonicalHost(strings.ToLower(u.Scheme), u), nil
}

// SameDomain reports whether a and b are valid URLs with the same canonical host.
func SameDomain(a, b string) bool {
	hostA, err := Host(a)
	if err != nil {
		return false
	}
	hostB, err := Host(b)
	if err != nil {
		return false
	}
	return hostA == hostB
}

// canonicalHost lowercases the hostname, converts internationalized names to
// their ASCII form and drops the default port for scheme.
func canonicalHost(scheme string, u *url.URL) string {
	hostname := strings.ToLower(u.Hostname())
	if !isASCII(hostname) {
		if ascii, err := idna.Lookup.ToASCII(hostname); err == nil {
			hostname = ascii
		}
	}

	port := u.Port()
	if port == defaultPorts[scheme] {
		port = ""
	}

	if port != "" {
		return net.JoinHostPort(hostname, port)
	}
	if strings.Contains(hostname, ":") {
		// IPv6 literal
		return "[" + hostname + "]"
	}
	return hostname
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
