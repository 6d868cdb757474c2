package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescan/internal/config"
	"github.com/nao1215/sitescan/internal/crawler"
	"github.com/nao1215/sitescan/internal/fetcher"
	"github.com/nao1215/sitescan/internal/linkcheck"
	"github.com/nao1215/sitescan/internal/log"
	"github.com/nao1215/sitescan/internal/model"
	"github.com/nao1215/sitescan/internal/pipeline"
	"github.com/nao1215/sitescan/internal/report"
	"github.com/nao1215/sitescan/internal/robots"
	"github.com/nao1215/sitescan/internal/urlutil"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url...]",
		Short: "Crawl websites starting from seed URLs",
		Long: `Crawl fetches each seed URL, extracts its links and follows them
concurrently up to the configured depth. Every URL is fetched at most once.

The report lists the crawled pages and these statistics:
  pages scraped, unique URLs visited, total links, total images and
  average links per page.

With --check-links every discovered link is checked afterwards and broken
links (NOT_FOUND or INVALID) are listed.

Examples:
  # Crawl a site two levels deep
  sitescan crawl https://example.com

  # Crawl deeper, follow external links, check all links
  sitescan crawl -d 3 --same-domain=false --check-links https://example.com

  # Crawl without network access using simulated pages
  sitescan crawl --simulate https://example.com

  # Crawl seeds from a file and write a Markdown report
  sitescan crawl --list seeds.txt -m -o report.md

Configuration file (.sitescan) example:
  sites:
    example.com:
      cookie: "session_id=abc123"
      depth: 3
      ignorePatterns:
        - "/logout"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth,
		"Maximum link depth followed from the seed")
	cmd.Flags().Bool("same-domain", true,
		"Only follow links on the seed's host")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of URLs fetched per seed (0 = no limit)")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Maximum in-flight fetches and link checks (0 = no limit)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each fetch or link check")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Minimum delay between requests to the same host")
	cmd.Flags().Int("rate", 0,
		"Maximum requests per host within --rate-window (0 = no limit)")
	cmd.Flags().Duration("rate-window", time.Second,
		"Window for --rate")
	cmd.Flags().Bool("robots", false,
		"Skip URLs disallowed by robots.txt")
	cmd.Flags().BoolP("check-links", "l", false,
		"Check every discovered link after crawling")
	cmd.Flags().BoolP("simulate", "s", false,
		"Use simulated pages and link checks instead of the network")

	// Transport flags
	cmd.Flags().String("proxy", "",
		"Route requests through a SOCKS5 proxy (host:port)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")

	// Seed and batch flags
	cmd.Flags().String("list", "",
		"Read seed URLs from a file, one per line")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of seeds crawled concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitescan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildCrawlConfig creates a Config from cobra command flags.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()
	var err error

	if cfg.CrawlDepth, err = flags.GetInt("depth"); err != nil {
		return nil, err
	}
	cfg.CrawlDepthSet = flags.Changed("depth")
	if cfg.SameDomainOnly, err = flags.GetBool("same-domain"); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.CrawlDelay, err = flags.GetDuration("delay"); err != nil {
		return nil, err
	}
	if cfg.RateRequests, err = flags.GetInt("rate"); err != nil {
		return nil, err
	}
	if cfg.RateWindow, err = flags.GetDuration("rate-window"); err != nil {
		return nil, err
	}
	if cfg.RespectRobots, err = flags.GetBool("robots"); err != nil {
		return nil, err
	}
	if cfg.CheckLinks, err = flags.GetBool("check-links"); err != nil {
		return nil, err
	}
	if cfg.Simulate, err = flags.GetBool("simulate"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if cfg.SiteConfigs, err = loadSiteConfigs(cfg.ConfigFilePath); err != nil {
		return nil, err
	}

	listPath, err := flags.GetString("list")
	if err != nil {
		return nil, err
	}
	cfg.Seeds = append(cfg.Seeds, args...)
	if listPath != "" {
		seeds, err := readSeedList(listPath)
		if err != nil {
			return nil, err
		}
		cfg.Seeds = append(cfg.Seeds, seeds...)
	}

	return cfg, nil
}

// loadSiteConfigs loads the configuration file. A missing file is only an
// error when its path was given explicitly.
func loadSiteConfigs(explicitPath string) (*config.File, error) {
	configPath := config.FindConfigFile(explicitPath)
	if configPath == "" {
		if explicitPath != "" {
			return nil, fmt.Errorf("configuration file not found: %s", explicitPath)
		}
		return &config.File{Sites: make(map[string]config.SiteConfig)}, nil
	}

	cf, err := config.LoadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	return cf, nil
}

// readSeedList reads seed URLs from path. Blank lines and lines starting
// with '#' are ignored.
func readSeedList(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided list path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open seed list: %w", err)
	}
	defer f.Close()

	var seeds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seeds = append(seeds, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seed list: %w", err)
	}
	return seeds, nil
}

// runCrawl crawls every seed in cfg and writes one report per seed to out,
// or to cfg.ReportFile when set. Progress messages go to progress.
func runCrawl(ctx context.Context, out, progress io.Writer, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"seeds", len(cfg.Seeds),
		"depth", cfg.CrawlDepth,
		"concurrency", cfg.Concurrency,
		"simulate", cfg.Simulate,
	)

	// Building one fetcher up front surfaces transport errors such as an
	// invalid proxy address before any crawl starts.
	if _, err := newFetcher(cfg, config.SiteConfig{}); err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}

	prober, err := newProber(cfg)
	if err != nil {
		return fmt.Errorf("failed to create link prober: %w", err)
	}

	robotsPolicy, err := newRobotsPolicy(cfg)
	if err != nil {
		return fmt.Errorf("failed to create robots.txt agent: %w", err)
	}

	output, closeOutput, err := openOutput(cfg.ReportFile, out)
	if err != nil {
		return err
	}
	defer closeOutput()

	writer := newReportWriter(output, cfg)
	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func(seed string) *pipeline.Pipeline {
			return createPipelineForSeed(cfg, seed, prober, robotsPolicy, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	var (
		mu          sync.Mutex
		writeErrs   []error
		interrupted bool
	)
	err = bp.ProcessBatchWithCallback(ctx, cfg.Seeds, func(r *model.CrawlReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintf(progress, "[%d/%d] Crawl completed: %s (%d pages, %s)\n",
			index+1, len(cfg.Seeds), r.Seed, len(r.Pages), r.Duration.Round(time.Millisecond))
		if r.Cancelled {
			interrupted = true
		}

		if _, err := writer.Write(r); err != nil {
			logger.Error("report failed", "seed", r.Seed, "error", err)
			writeErrs = append(writeErrs, fmt.Errorf("write report for %s: %w", r.Seed, err))
		}
	})

	fmt.Fprintf(progress, "Crawl finished in %s\n", time.Since(startTime).Round(time.Millisecond))
	if interrupted {
		fmt.Fprintln(progress, "Crawl was interrupted; reports contain partial results.")
	}

	// Cancellation is not a failure: whatever was crawled has been reported.
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return errors.Join(writeErrs...)
}

// siteConfigFor returns the merged host configuration for seed.
func siteConfigFor(cfg *config.Config, seed string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}
	host, err := urlutil.Host(seed)
	if err != nil {
		return cfg.SiteConfigs.Defaults
	}
	return cfg.SiteConfigs.GetSiteConfig(host)
}

// createPipelineForSeed creates a pipeline with the global configuration
// and the host configuration of seed.
func createPipelineForSeed(
	cfg *config.Config,
	seed string,
	prober linkcheck.Prober,
	robotsPolicy crawler.RobotsPolicy,
	logger *slog.Logger,
) *pipeline.Pipeline {
	site := siteConfigFor(cfg, seed)

	f, err := newFetcher(cfg, site)
	if err != nil {
		logger.Error("failed to create fetcher", "seed", seed, "error", err)
		f = fetcher.Func(func(context.Context, string) (*fetcher.Response, error) {
			return nil, err
		})
	}

	sameDomainOnly := cfg.SameDomainOnly
	if site.SameDomainOnly != nil {
		sameDomainOnly = *site.SameDomainOnly
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineCrawlDepth(crawlDepthFor(cfg, site)),
		pipeline.WithPipelineSameDomainOnly(sameDomainOnly),
		pipeline.WithPipelineCrawlMaxPages(cfg.MaxPages),
		pipeline.WithPipelineConcurrency(cfg.Concurrency),
		pipeline.WithPipelineTimeout(cfg.Timeout),
		pipeline.WithPipelineCrawlDelay(cfg.CrawlDelay),
		pipeline.WithPipelineRateLimit(cfg.RateRequests, cfg.RateWindow),
		pipeline.WithPipelineIgnorePatterns(site.IgnorePatterns),
		pipeline.WithPipelineFollowPatterns(site.FollowPatterns),
		pipeline.WithPipelineCheckLinks(cfg.CheckLinks),
	}
	if robotsPolicy != nil {
		configOpts = append(configOpts, pipeline.WithPipelineRobots(robotsPolicy))
	}

	return pipeline.DefaultPipeline(f, prober, logger,
		[]pipeline.Option{pipeline.WithContinueOnError(true)},
		configOpts...,
	)
}

// crawlDepthFor returns the host depth from the configuration file unless
// --depth was given.
func crawlDepthFor(cfg *config.Config, site config.SiteConfig) int {
	if site.Depth == nil || cfg.CrawlDepthSet {
		return cfg.CrawlDepth
	}
	return *site.Depth
}

// newFetcher returns the simulated fetcher or an HTTP fetcher configured
// for site.
func newFetcher(cfg *config.Config, site config.SiteConfig) (fetcher.Fetcher, error) {
	if cfg.Simulate {
		return fetcher.NewSimulated(cfg.SimulateLatency), nil
	}
	return fetcher.NewHTTPFetcher(
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithSOCKS5Proxy(cfg.ProxyAddress),
		fetcher.WithCookie(site.Cookie),
		fetcher.WithHeaders(site.Headers),
	)
}

// newProber returns the simulated prober or an HTTP prober.
func newProber(cfg *config.Config) (linkcheck.Prober, error) {
	if cfg.Simulate {
		return linkcheck.NewSimulatedProber(cfg.SimulateLatency), nil
	}
	return linkcheck.NewHTTPProber(fetcher.ClientOptions{
		Timeout:     cfg.Timeout,
		SOCKS5Proxy: cfg.ProxyAddress,
	}, cfg.UserAgent)
}

// newRobotsPolicy returns a robots.txt agent when enabled. Simulated crawls
// never consult robots.txt.
func newRobotsPolicy(cfg *config.Config) (crawler.RobotsPolicy, error) {
	if !cfg.RespectRobots || cfg.Simulate {
		return nil, nil
	}
	client, err := fetcher.NewHTTPClient(fetcher.ClientOptions{
		Timeout:         cfg.Timeout,
		SOCKS5Proxy:     cfg.ProxyAddress,
		FollowRedirects: true,
	})
	if err != nil {
		return nil, err
	}
	return robots.NewAgent(cfg.UserAgent, robots.WithHTTPClient(client)), nil
}

// newReportWriter returns the report writer selected by cfg.
func newReportWriter(output io.Writer, cfg *config.Config) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}
