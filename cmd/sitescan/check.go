package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescan/internal/config"
	"github.com/nao1215/sitescan/internal/linkcheck"
	"github.com/nao1215/sitescan/internal/log"
)

// ErrBrokenLinks is returned by the check command with --fail-on-broken
// when at least one link is broken.
var ErrBrokenLinks = errors.New("broken links found")

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [url...]",
		Short: "Check the status of links without crawling",
		Long: `Check classifies each URL as OK, REDIRECT, NOT_FOUND or INVALID.

URLs that are not absolute http(s) URLs are INVALID and never requested.
Redirects are reported, not followed. Network errors and timeouts count
as NOT_FOUND.

Examples:
  # Check a few URLs
  sitescan check https://example.com https://example.com/missing

  # Check URLs from a file and fail when any is broken (useful in CI)
  sitescan check --list links.txt --fail-on-broken`,
		Args: cobra.ArbitraryArgs,
		RunE: runCheckCmd,
	}

	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Maximum concurrent link checks (0 = no limit)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each link check")
	cmd.Flags().BoolP("simulate", "s", false,
		"Use simulated link checks instead of the network")
	cmd.Flags().String("proxy", "",
		"Route requests through a SOCKS5 proxy (host:port)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")
	cmd.Flags().String("list", "",
		"Read URLs from a file, one per line")
	cmd.Flags().Bool("fail-on-broken", false,
		"Exit with an error when any link is broken")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write results to specified file path")

	return cmd
}

// buildCheckConfig creates a Config from the check command flags.
func buildCheckConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()
	var err error

	if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
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

	listPath, err := flags.GetString("list")
	if err != nil {
		return nil, err
	}
	cfg.Seeds = append(cfg.Seeds, args...)
	if listPath != "" {
		urls, err := readSeedList(listPath)
		if err != nil {
			return nil, err
		}
		cfg.Seeds = append(cfg.Seeds, urls...)
	}

	return cfg, nil
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCheckConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	failOnBroken, err := cmd.Flags().GetBool("fail-on-broken")
	if err != nil {
		return err
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCheck(ctx, cmd.OutOrStdout(), cfg, failOnBroken, logger)
}

// runCheck checks cfg.Seeds as links and writes the results.
func runCheck(ctx context.Context, out io.Writer, cfg *config.Config, failOnBroken bool, logger *slog.Logger) error {
	prober, err := newProber(cfg)
	if err != nil {
		return fmt.Errorf("failed to create link prober: %w", err)
	}

	checker := linkcheck.NewChecker(prober,
		linkcheck.WithConcurrency(cfg.Concurrency),
		linkcheck.WithTimeout(cfg.Timeout),
		linkcheck.WithLogger(logger),
	)

	results, err := checker.CheckLinks(ctx, cfg.Seeds)
	if err != nil {
		return fmt.Errorf("link check interrupted: %w", err)
	}

	output, closeOutput, err := openOutput(cfg.ReportFile, out)
	if err != nil {
		return err
	}
	defer closeOutput()

	if _, err := newReportWriter(output, cfg).WriteLinkResults(results); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	if broken := checker.BrokenLinks(); failOnBroken && len(broken) > 0 {
		return fmt.Errorf("%w: %d of %d", ErrBrokenLinks, len(broken), len(results))
	}
	return nil
}
