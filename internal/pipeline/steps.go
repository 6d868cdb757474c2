package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/sitescan/internal/model"
)

// Step names as recorded in CrawlReport.PerformedSteps.
const (
	StepCrawl      = "crawl"
	StepStatistics = "statistics"
	StepLinkCheck  = "link_check"
)

// Crawler is the part of crawler.Spider used by the pipeline.
type Crawler interface {
	Crawl(ctx context.Context, seedURL string) ([]*model.Page, error)
	Statistics() model.Statistics
	FailedURLs() []string
	Interrupted() bool
}

// LinkChecker is the part of linkcheck.Checker used by the pipeline.
type LinkChecker interface {
	CheckLinks(ctx context.Context, urls []string) (map[string]model.LinkStatus, error)
	BrokenLinks() []string
}

// CrawlStep crawls the report's seed and stores the pages.
type CrawlStep struct {
	crawler Crawler
	logger  *slog.Logger
}

// NewCrawlStep creates a crawl step backed by c.
func NewCrawlStep(c Crawler, logger *slog.Logger) *CrawlStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CrawlStep{crawler: c, logger: logger}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return StepCrawl
}

// Do executes the crawl.
func (s *CrawlStep) Do(ctx context.Context, report *model.CrawlReport) error {
	pages, err := s.crawler.Crawl(ctx, report.Seed)
	if err != nil {
		return fmt.Errorf("crawl %s: %w", report.Seed, err)
	}

	report.Pages = pages
	report.FailedURLs = s.crawler.FailedURLs()
	if s.crawler.Interrupted() {
		report.Cancelled = true
	}

	s.logger.Debug("crawl step finished",
		"seed", report.Seed,
		"pages", len(pages),
		"failed", len(report.FailedURLs),
	)
	return nil
}

// StatisticsStep stores the crawl statistics in the report.
// It must run after CrawlStep with the same Crawler.
type StatisticsStep struct {
	crawler Crawler
}

// NewStatisticsStep creates a statistics step reading from c.
func NewStatisticsStep(c Crawler) *StatisticsStep {
	return &StatisticsStep{crawler: c}
}

// Name returns the step name.
func (s *StatisticsStep) Name() string {
	return StepStatistics
}

// Do records the statistics.
func (s *StatisticsStep) Do(_ context.Context, report *model.CrawlReport) error {
	report.Statistics = s.crawler.Statistics()
	return nil
}

// LinkCheckStep checks every link discovered by the crawl.
type LinkCheckStep struct {
	checker LinkChecker
	logger  *slog.Logger
}

// NewLinkCheckStep creates a link check step backed by c.
func NewLinkCheckStep(c LinkChecker, logger *slog.Logger) *LinkCheckStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinkCheckStep{checker: c, logger: logger}
}

// Name returns the step name.
func (s *LinkCheckStep) Name() string {
	return StepLinkCheck
}

// Do checks the report's discovered links.
func (s *LinkCheckStep) Do(ctx context.Context, report *model.CrawlReport) error {
	links := report.DiscoveredLinks()
	results, err := s.checker.CheckLinks(ctx, links)
	if err != nil {
		return fmt.Errorf("check links: %w", err)
	}

	report.LinkResults = results
	report.BrokenLinks = s.checker.BrokenLinks()

	s.logger.Debug("link check step finished",
		"seed", report.Seed,
		"checked", len(results),
		"broken", len(report.BrokenLinks),
	)
	return nil
}
