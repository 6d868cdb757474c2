package pipeline

import (
	"log/slog"
	"time"

	"github.com/nao1215/sitescan/internal/crawler"
	"github.com/nao1215/sitescan/internal/fetcher"
	"github.com/nao1215/sitescan/internal/linkcheck"
	"github.com/nao1215/sitescan/internal/throttle"
)

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// CrawlDepth is the maximum crawl depth.
	CrawlDepth int

	// SameDomainOnly restricts the crawl to the seed host.
	SameDomainOnly bool

	// CrawlMaxPages caps the URLs fetched per seed. 0 means no cap.
	CrawlMaxPages int

	// Concurrency caps in-flight fetches and link checks together.
	Concurrency int

	// Timeout bounds each fetch and each link check.
	Timeout time.Duration

	// CrawlDelay is the minimum delay between requests to the same host.
	CrawlDelay time.Duration

	// RateRequests and RateWindow limit requests per host when both are set.
	RateRequests int
	RateWindow   time.Duration

	// IgnorePatterns are URL path patterns to skip during crawling.
	IgnorePatterns []string

	// FollowPatterns are URL path patterns to follow during crawling.
	FollowPatterns []string

	// Robots, when set, filters URLs by robots.txt.
	Robots crawler.RobotsPolicy

	// CheckLinks adds the link check step.
	CheckLinks bool
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineCrawlDepth sets the crawl depth for the pipeline.
func WithPipelineCrawlDepth(depth int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CrawlDepth = depth
	}
}

// WithPipelineSameDomainOnly restricts the crawl to the seed host.
func WithPipelineSameDomainOnly(sameDomainOnly bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SameDomainOnly = sameDomainOnly
	}
}

// WithPipelineCrawlMaxPages sets the maximum pages to crawl.
func WithPipelineCrawlMaxPages(maxPages int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CrawlMaxPages = maxPages
	}
}

// WithPipelineConcurrency sets the shared in-flight operation limit.
func WithPipelineConcurrency(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Concurrency = n
	}
}

// WithPipelineTimeout sets the per-operation timeout.
func WithPipelineTimeout(d time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Timeout = d
	}
}

// WithPipelineCrawlDelay sets the per-host delay between requests.
func WithPipelineCrawlDelay(delay time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CrawlDelay = delay
	}
}

// WithPipelineRateLimit limits requests per host.
func WithPipelineRateLimit(requests int, window time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.RateRequests = requests
		c.RateWindow = window
	}
}

// WithPipelineIgnorePatterns sets URL patterns to skip during crawling.
func WithPipelineIgnorePatterns(patterns []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.IgnorePatterns = patterns
	}
}

// WithPipelineFollowPatterns sets URL patterns to follow during crawling.
func WithPipelineFollowPatterns(patterns []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.FollowPatterns = patterns
	}
}

// WithPipelineRobots filters URLs by robots.txt.
func WithPipelineRobots(policy crawler.RobotsPolicy) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Robots = policy
	}
}

// WithPipelineCheckLinks enables the link check step.
func WithPipelineCheckLinks(check bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CheckLinks = check
	}
}

// DefaultPipeline creates a pipeline that crawls with f, computes statistics
// and, if enabled, checks the discovered links with p. The crawl and the
// link check share one concurrency gate.
func DefaultPipeline(
	f fetcher.Fetcher,
	p linkcheck.Prober,
	logger *slog.Logger,
	pipelineOpts []Option,
	configOpts ...DefaultPipelineOption,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	pl := New(append([]Option{WithLogger(logger)}, pipelineOpts...)...)

	cfg := &DefaultPipelineConfig{
		CrawlDepth:     crawler.DefaultMaxDepth,
		SameDomainOnly: true,
		Concurrency:    crawler.DefaultConcurrency,
		Timeout:        crawler.DefaultTimeout,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	gate := throttle.NewGate(cfg.Concurrency)

	crawlOpts := []crawler.SpiderOption{
		crawler.WithMaxDepth(cfg.CrawlDepth),
		crawler.WithSameDomainOnly(cfg.SameDomainOnly),
		crawler.WithMaxPages(cfg.CrawlMaxPages),
		crawler.WithGate(gate),
		crawler.WithTimeout(cfg.Timeout),
		crawler.WithDelay(cfg.CrawlDelay),
		crawler.WithRateLimit(cfg.RateRequests, cfg.RateWindow),
		crawler.WithLogger(logger),
	}
	if len(cfg.IgnorePatterns) > 0 {
		crawlOpts = append(crawlOpts, crawler.WithIgnorePatterns(cfg.IgnorePatterns))
	}
	if len(cfg.FollowPatterns) > 0 {
		crawlOpts = append(crawlOpts, crawler.WithFollowPatterns(cfg.FollowPatterns))
	}
	if cfg.Robots != nil {
		crawlOpts = append(crawlOpts, crawler.WithRobots(cfg.Robots))
	}

	spider := crawler.NewSpider(f, crawlOpts...)
	pl.AddSteps(
		NewCrawlStep(spider, logger),
		NewStatisticsStep(spider),
	)

	if cfg.CheckLinks && p != nil {
		checker := linkcheck.NewChecker(p,
			linkcheck.WithGate(gate),
			linkcheck.WithTimeout(cfg.Timeout),
			linkcheck.WithLogger(logger),
		)
		pl.AddStep(NewLinkCheckStep(checker, logger))
	}

	return pl
}
