package report

import (
	"io"
	"slices"

	"github.com/nao1215/sitescan/internal/model"
)

// Writer renders crawl results.
type Writer interface {
	// Write outputs a full crawl report.
	Write(report *model.CrawlReport) (int, error)

	// WriteLinkResults outputs the result of a standalone link check.
	WriteLinkResults(results map[string]model.LinkStatus) (int, error)
}

// MultiWriter writes to multiple Writers in order and stops at the first
// error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
func (m *MultiWriter) Write(report *model.CrawlReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteLinkResults outputs the link results to all configured Writers.
func (m *MultiWriter) WriteLinkResults(results map[string]model.LinkStatus) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteLinkResults(results)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// linkResult is one row of a link check.
type linkResult struct {
	URL    string           `json:"url"`
	Status model.LinkStatus `json:"status"`
}

// sortedLinkResults orders results by status (broken first), then URL.
func sortedLinkResults(results map[string]model.LinkStatus) []linkResult {
	rows := make([]linkResult, 0, len(results))
	for u, status := range results {
		rows = append(rows, linkResult{URL: u, Status: status})
	}
	slices.SortFunc(rows, func(a, b linkResult) int {
		if a.Status.IsBroken() != b.Status.IsBroken() {
			if a.Status.IsBroken() {
				return -1
			}
			return 1
		}
		if a.Status != b.Status {
			return int(a.Status) - int(b.Status)
		}
		switch {
		case a.URL < b.URL:
			return -1
		case a.URL > b.URL:
			return 1
		}
		return 0
	})
	return rows
}

// statusText summarizes how a crawl ended.
func statusText(report *model.CrawlReport) string {
	switch {
	case report.ErrorMessage != "":
		return "ERROR - " + report.ErrorMessage
	case report.Cancelled:
		return "CANCELLED (partial results)"
	default:
		return "Complete"
	}
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
