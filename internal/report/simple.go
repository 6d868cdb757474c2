package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/sitescan/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs plain text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds every page with its links to the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in plain text.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeStatistics(&sb, report)
	w.writePages(&sb, report)
	if report.LinksChecked() {
		w.writeLinkCheck(&sb, report)
	}
	w.writeFailures(&sb, report)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// WriteLinkResults outputs link check results, one per line.
func (w *SimpleWriter) WriteLinkResults(results map[string]model.LinkStatus) (int, error) {
	var sb strings.Builder
	broken := 0
	for _, r := range sortedLinkResults(results) {
		if r.Status.IsBroken() {
			broken++
		}
		fmt.Fprintf(&sb, "%-10s %s\n", r.Status, r.URL)
	}
	fmt.Fprintf(&sb, "\n%d link(s) checked, %d broken\n", len(results), broken)
	return io.WriteString(w.output, sb.String())
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                          SITESCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Seed:        %s\n", report.Seed)
	fmt.Fprintf(sb, "Crawl Date:  %s\n", report.DateCrawled.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:    %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(sb, "Status:      %s\n", statusText(report))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeStatistics(sb *strings.Builder, report *model.CrawlReport) {
	section(sb, "STATISTICS")

	stats := report.Statistics
	fmt.Fprintf(sb, "  Pages scraped:          %d\n", stats.PagesScraped)
	fmt.Fprintf(sb, "  Unique URLs visited:    %d\n", stats.UniqueURLsVisited)
	fmt.Fprintf(sb, "  Total links found:      %d\n", stats.TotalLinksFound)
	fmt.Fprintf(sb, "  Total images found:     %d\n", stats.TotalImagesFound)
	fmt.Fprintf(sb, "  Average links per page: %d\n", stats.AverageLinksPerPage)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.CrawlReport) {
	section(sb, "PAGES")

	pages := report.SortedPages()
	if len(pages) == 0 {
		sb.WriteString("  No pages crawled\n\n")
		return
	}

	for _, page := range pages {
		title := page.Title
		if title == "" {
			title = "(no title)"
		}
		fmt.Fprintf(sb, "  [%d] %s\n", page.Depth, page.URL)
		fmt.Fprintf(sb, "      %s (%d links, %d images)\n", title, page.LinkCount(), page.ImageCount())
		if w.verbose {
			for _, link := range page.Links {
				fmt.Fprintf(sb, "      -> %s\n", link)
			}
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeLinkCheck(sb *strings.Builder, report *model.CrawlReport) {
	section(sb, "LINK CHECK")

	counts := report.StatusCounts()
	for _, status := range model.AllLinkStatuses() {
		fmt.Fprintf(sb, "  %-10s %d\n", status.String()+":", counts[status])
	}
	sb.WriteString("\n")

	if len(report.BrokenLinks) == 0 {
		sb.WriteString("  No broken links\n\n")
		return
	}
	sb.WriteString("  Broken links:\n")
	for _, link := range report.BrokenLinks {
		fmt.Fprintf(sb, "  [!] %s (%s)\n", link, report.LinkResults[link])
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.FailedURLs) == 0 {
		return
	}
	section(sb, "FAILED URLS")
	for _, u := range report.FailedURLs {
		fmt.Fprintf(sb, "  [x] %s\n", u)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by sitescan\n")
	sb.WriteString("https://github.com/nao1215/sitescan\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}
