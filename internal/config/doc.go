// Package config provides configuration structures and utilities for sitescan.
// It defines the crawl limits, transport settings, link checking and report
// preferences, plus the optional per-host .sitescan configuration file.
package config
