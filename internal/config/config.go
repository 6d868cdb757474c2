package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultCrawlDepth follows the seed page and one further level of links.
	DefaultCrawlDepth = 2

	// DefaultConcurrency caps the number of in-flight fetch and check
	// operations across all branches of a crawl.
	DefaultConcurrency = 10

	// DefaultTimeout applies to each individual fetch or link check, not to
	// the whole crawl.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize is the number of seeds crawled concurrently when
	// several seeds are given.
	DefaultBatchSize = 4

	// DefaultMaxPages is the maximum number of URLs claimed per crawl.
	// This prevents runaway crawling on large or infinitely-generating sites.
	DefaultMaxPages = 500

	// AppName is the application name used for XDG directory paths.
	AppName = "sitescan"

	// DefaultCrawlDelay is the minimum delay between requests to one host.
	// Zero disables the per-host politeness delay.
	DefaultCrawlDelay = 0

	// DefaultUserAgent identifies sitescan in HTTP requests.
	DefaultUserAgent = "sitescan/1.0 (+https://github.com/nao1215/sitescan)"

	// DefaultMaxBodySize limits the response body size read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultSimulateLatency is the artificial latency of one simulated
	// fetch or link check.
	DefaultSimulateLatency = 50 * time.Millisecond
)

// Config holds all configuration options for sitescan.
// It is populated from defaults, then CLI flags, then the optional config
// file, and passed through the application rather than kept as global state.
type Config struct {
	// Seeds is the list of seed URLs to crawl.
	Seeds []string

	// CrawlDepth is the maximum link depth followed from the seed.
	// Depth 0 means only fetch the seed page.
	CrawlDepth int

	// CrawlDepthSet reports whether CrawlDepth was given on the command
	// line. An explicit depth wins over per-host depths.
	CrawlDepthSet bool

	// SameDomainOnly restricts crawling to the seed's host.
	SameDomainOnly bool

	// MaxPages is the maximum number of URLs claimed per crawl.
	// A value of 0 means no limit.
	MaxPages int

	// Concurrency is the maximum number of in-flight fetch and check
	// operations. A value of 0 means unbounded.
	Concurrency int

	// Timeout is the timeout of each fetch or link check.
	Timeout time.Duration

	// CrawlDelay is the minimum delay between requests to one host.
	CrawlDelay time.Duration

	// RateRequests and RateWindow optionally cap the number of requests per
	// host within a sliding window. RateRequests of 0 disables the cap.
	RateRequests int
	RateWindow   time.Duration

	// RespectRobots makes the crawler skip URLs disallowed by robots.txt.
	RespectRobots bool

	// CheckLinks runs a link check over every discovered link after crawling.
	CheckLinks bool

	// Simulate replaces network access with the simulated fetcher and
	// prober. Useful for demos and offline testing.
	Simulate bool

	// SimulateLatency is the artificial latency used when Simulate is set.
	SimulateLatency time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of seeds crawled concurrently.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches the current directory, the home
	// directory and the XDG config directory.
	ConfigFilePath string

	// SiteConfigs holds host-specific configurations loaded from the config file.
	SiteConfigs *File

	// JSONReport enables JSON report output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form.
	ProxyAddress string

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		CrawlDepth:      DefaultCrawlDepth,
		SameDomainOnly:  true,
		MaxPages:        DefaultMaxPages,
		Concurrency:     DefaultConcurrency,
		Timeout:         DefaultTimeout,
		CrawlDelay:      DefaultCrawlDelay,
		BatchSize:       DefaultBatchSize,
		SimulateLatency: DefaultSimulateLatency,
		UserAgent:       DefaultUserAgent,
		MaxBodySize:     DefaultMaxBodySize,
	}
}

// XDGConfigDir returns the XDG config directory for sitescan.
// On Linux: ~/.config/sitescan
// On macOS: ~/Library/Application Support/sitescan
// On Windows: %APPDATA%\sitescan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for sitescan.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoTarget
	}

	if c.CrawlDepth < 0 {
		return ErrInvalidCrawlDepth
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency < 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	if c.RateRequests < 0 || (c.RateRequests > 0 && c.RateWindow <= 0) {
		return ErrInvalidRateLimit
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
