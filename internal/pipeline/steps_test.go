package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/nao1215/sitescan/internal/fetcher"
	"github.com/nao1215/sitescan/internal/linkcheck"
	"github.com/nao1215/sitescan/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubCrawler is a Crawler returning fixed results.
type stubCrawler struct {
	pages       []*model.Page
	err         error
	failed      []string
	interrupted bool
}

func (s *stubCrawler) Crawl(context.Context, string) ([]*model.Page, error) {
	return s.pages, s.err
}

func (s *stubCrawler) Statistics() model.Statistics {
	return model.ComputeStatistics(s.pages, len(s.pages)+len(s.failed))
}

func (s *stubCrawler) FailedURLs() []string { return s.failed }

func (s *stubCrawler) Interrupted() bool { return s.interrupted }

// TestCrawlStep tests the crawl step.
func TestCrawlStep(t *testing.T) {
	t.Parallel()

	t.Run("stores pages and failures", func(t *testing.T) {
		t.Parallel()

		stub := &stubCrawler{
			pages:  []*model.Page{{URL: "https://example.com/", Links: []string{"https://example.com/a"}}},
			failed: []string{"https://example.com/a"},
		}
		step := NewCrawlStep(stub, discardLogger())
		report := model.NewCrawlReport("https://example.com/")

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Pages) != 1 {
			t.Errorf("expected 1 page, got %d", len(report.Pages))
		}
		if len(report.FailedURLs) != 1 {
			t.Errorf("expected 1 failed URL, got %d", len(report.FailedURLs))
		}
		if step.Name() != StepCrawl {
			t.Errorf("unexpected name %q", step.Name())
		}
	})

	t.Run("propagates fatal crawl errors", func(t *testing.T) {
		t.Parallel()

		sentinel := errors.New("invalid seed")
		step := NewCrawlStep(&stubCrawler{err: sentinel}, discardLogger())
		if err := step.Do(context.Background(), model.NewCrawlReport("bad")); !errors.Is(err, sentinel) {
			t.Errorf("expected wrapped sentinel, got %v", err)
		}
	})

	t.Run("marks interrupted crawls as cancelled", func(t *testing.T) {
		t.Parallel()

		step := NewCrawlStep(&stubCrawler{interrupted: true}, discardLogger())
		report := model.NewCrawlReport("https://example.com/")
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !report.Cancelled {
			t.Error("expected report to be marked cancelled")
		}
	})
}

// TestStatisticsStep tests the statistics step.
func TestStatisticsStep(t *testing.T) {
	t.Parallel()

	stub := &stubCrawler{pages: []*model.Page{
		{URL: "https://example.com/", Links: []string{"a", "b", "c"}, Images: []string{"i"}},
		{URL: "https://example.com/x", Links: []string{"a", "b"}},
	}}
	report := model.NewCrawlReport("https://example.com/")
	if err := NewStatisticsStep(stub).Do(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Statistics.PagesScraped != 2 || report.Statistics.TotalLinksFound != 5 {
		t.Errorf("unexpected statistics %+v", report.Statistics)
	}
	if report.Statistics.AverageLinksPerPage != 2 {
		t.Errorf("expected integer average 2, got %d", report.Statistics.AverageLinksPerPage)
	}
}

// TestLinkCheckStep tests the link check step.
func TestLinkCheckStep(t *testing.T) {
	t.Parallel()

	checker := linkcheck.NewChecker(linkcheck.NewSimulatedProber(0), linkcheck.WithLogger(discardLogger()))
	report := model.NewCrawlReport("https://example.com/")
	report.Pages = []*model.Page{
		{URL: "https://example.com/", Links: []string{"https://example.com/404-test", "https://example.com/ok"}},
		{URL: "https://example.com/ok", Links: []string{"https://example.com/ok"}},
	}

	if err := NewLinkCheckStep(checker, discardLogger()).Do(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.LinkResults) != 2 {
		t.Errorf("expected 2 link results, got %d", len(report.LinkResults))
	}
	if len(report.BrokenLinks) != 1 || report.BrokenLinks[0] != "https://example.com/404-test" {
		t.Errorf("unexpected broken links %v", report.BrokenLinks)
	}
}

// TestDefaultPipeline tests the assembled pipeline end to end.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("crawl and statistics only", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(fetcher.NewSimulated(0), nil, discardLogger(), nil,
			WithPipelineCrawlDepth(1),
		)
		names := p.StepNames()
		if len(names) != 2 || names[0] != StepCrawl || names[1] != StepStatistics {
			t.Errorf("unexpected steps %v", names)
		}

		report := model.NewCrawlReport("https://example.com")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Pages) != 2 {
			t.Errorf("expected 2 pages, got %d", len(report.Pages))
		}
		if report.Statistics.PagesScraped != 2 {
			t.Errorf("unexpected statistics %+v", report.Statistics)
		}
		if report.LinksChecked() {
			t.Error("links should not be checked")
		}
	})

	t.Run("with link check", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(fetcher.NewSimulated(0), linkcheck.NewSimulatedProber(0), discardLogger(), nil,
			WithPipelineCrawlDepth(1),
			WithPipelineConcurrency(4),
			WithPipelineCheckLinks(true),
		)

		report := model.NewCrawlReport("https://example.com")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !report.LinksChecked() {
			t.Fatal("expected links to be checked")
		}
		if report.LinkResults["https://example.com/about"] != model.LinkStatusOK {
			t.Errorf("expected /about to be OK, got %s", report.LinkResults["https://example.com/about"])
		}
		if len(report.BrokenLinks) != 0 {
			t.Errorf("expected no broken links, got %v", report.BrokenLinks)
		}
		if len(report.PerformedSteps) != 3 {
			t.Errorf("expected 3 performed steps, got %v", report.PerformedSteps)
		}
	})

	t.Run("invalid seed stops the pipeline", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(fetcher.NewSimulated(0), nil, discardLogger(), nil)
		report := model.NewCrawlReport("not a url")
		if err := p.Execute(context.Background(), report); err == nil {
			t.Error("expected an error")
		}
		if report.ErrorMessage == "" {
			t.Error("expected error message in report")
		}
	})
}
