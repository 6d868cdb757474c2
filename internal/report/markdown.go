package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/sitescan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter

	// maxPages limits the rows of the page table. 0 means all pages.
	maxPages int
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMaxPageRows limits the number of rows in the page table.
func WithMaxPageRows(n int) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.maxPages = n
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeStatistics(md, report)
	w.writePages(md, report)
	if report.LinksChecked() {
		w.writeLinkCheck(md, report.LinkResults, report.BrokenLinks)
	}
	w.writeFailures(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteLinkResults outputs a standalone link check in Markdown format.
func (w *MarkdownWriter) WriteLinkResults(results map[string]model.LinkStatus) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Link Check Report")
	md.PlainText("")

	broken := make([]string, 0)
	for _, r := range sortedLinkResults(results) {
		if r.Status.IsBroken() {
			broken = append(broken, r.URL)
		}
	}
	w.writeLinkCheck(md, results, broken)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Sitescan Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed", "`" + report.Seed + "`"},
			{"Crawl Date", report.DateCrawled.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration.String()},
			{"Status", w.statusText(report)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) statusText(report *model.CrawlReport) string {
	switch {
	case report.ErrorMessage != "":
		return "❌ Error - " + report.ErrorMessage
	case report.Cancelled:
		return "⚠️ Cancelled (partial results)"
	default:
		return "✅ Complete"
	}
}

func (w *MarkdownWriter) writeStatistics(md *markdown.Markdown, report *model.CrawlReport) {
	stats := report.Statistics

	md.H2("Statistics")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Pages scraped", strconv.Itoa(stats.PagesScraped)},
			{"Unique URLs visited", strconv.Itoa(stats.UniqueURLsVisited)},
			{"Total links found", strconv.Itoa(stats.TotalLinksFound)},
			{"Total images found", strconv.Itoa(stats.TotalImagesFound)},
			{"Average links per page", strconv.Itoa(stats.AverageLinksPerPage)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Pages")
	md.PlainText("")

	pages := report.SortedPages()
	if len(pages) == 0 {
		md.PlainText("No pages crawled.")
		md.PlainText("")
		return
	}

	omitted := 0
	if w.maxPages > 0 && len(pages) > w.maxPages {
		omitted = len(pages) - w.maxPages
		pages = pages[:w.maxPages]
	}

	rows := make([][]string, len(pages))
	for i, page := range pages {
		title := page.Title
		if title == "" {
			title = "-"
		}
		rows[i] = []string{
			strconv.Itoa(page.Depth),
			truncateString(page.URL, 60),
			truncateString(title, 40),
			strconv.Itoa(page.LinkCount()),
			strconv.Itoa(page.ImageCount()),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Depth", "URL", "Title", "Links", "Images"},
		Rows:   rows,
	})
	md.PlainText("")

	if omitted > 0 {
		md.PlainTextf("*%d more page(s) omitted.*", omitted)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeLinkCheck(md *markdown.Markdown, results map[string]model.LinkStatus, broken []string) {
	md.H2("Link Check")
	md.PlainText("")

	counts := make(map[model.LinkStatus]int)
	for _, status := range results {
		counts[status]++
	}

	rows := make([][]string, 0, len(model.AllLinkStatuses()))
	for _, status := range model.AllLinkStatuses() {
		rows = append(rows, []string{status.String(), strconv.Itoa(counts[status])})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(len(results)) + "**"})
	md.Table(markdown.TableSet{
		Header: []string{"Status", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(results) > 0 {
		w.writePieChart(md, counts)
	}

	if len(broken) == 0 {
		md.Tip("No broken links detected.")
		md.PlainText("")
		return
	}

	md.Warningf("%d broken link(s) detected.", len(broken))
	md.PlainText("")
	md.H3("Broken Links")
	md.PlainText("")
	items := make([]string, len(broken))
	for i, link := range broken {
		items[i] = "`" + link + "` (" + results[link].String() + ")"
	}
	md.BulletList(items...)
	md.PlainText("")
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.LinkStatus]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Link Status Distribution"),
		piechart.WithShowData(true),
	)

	for _, status := range model.AllLinkStatuses() {
		if n := counts[status]; n > 0 {
			chart.LabelAndIntValue(status.String(), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.FailedURLs) == 0 {
		return
	}
	md.H2("Failed URLs")
	md.PlainText("")
	md.Cautionf("%d URL(s) could not be fetched or parsed.", len(report.FailedURLs))
	md.PlainText("")
	md.BulletList(report.FailedURLs...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sitescan](https://github.com/nao1215/sitescan)*")
}
