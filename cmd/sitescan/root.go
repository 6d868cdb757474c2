package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sitescan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitescan",
		Short: "Recursive website crawler and link checker",
		Long: `sitescan crawls a website from a seed URL, following links up to a
configurable depth, and reports pages, link statistics and broken links.

Fetches and link checks run concurrently under a global concurrency limit.
Press Ctrl+C to stop a crawl early and still get a report of what was found.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
