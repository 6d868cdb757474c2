package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sitescan/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.CrawlReport {
	report := model.NewCrawlReport("https://example.com")
	report.DateCrawled = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	report.Duration = 1500 * time.Millisecond
	report.Pages = []*model.Page{
		{
			URL:    "https://example.com/about",
			Depth:  1,
			Title:  "About",
			Links:  []string{"https://example.com/"},
			Images: []string{},
		},
		{
			URL:    "https://example.com/",
			Depth:  0,
			Title:  "Home",
			Links:  []string{"https://example.com/about", "https://external.com"},
			Images: []string{"https://example.com/logo.png"},
		},
	}
	report.Statistics = model.ComputeStatistics(report.Pages, 3)
	report.FailedURLs = []string{"https://example.com/broken"}
	report.LinkResults = map[string]model.LinkStatus{
		"https://example.com/about": model.LinkStatusOK,
		"https://example.com/":      model.LinkStatusOK,
		"https://external.com":      model.LinkStatusNotFound,
	}
	report.BrokenLinks = []string{"https://external.com"}
	report.PerformedSteps = []string{"crawl", "statistics", "link_check"}
	return report
}

// TestSimpleWriter tests the plain text writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes all sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}

		output := buf.String()
		for _, want := range []string{
			"SITESCAN REPORT",
			"Seed:        https://example.com",
			"Status:      Complete",
			"Pages scraped:          2",
			"Average links per page: 1",
			"LINK CHECK",
			"[!] https://external.com (NOT_FOUND)",
			"FAILED URLS",
			"[x] https://example.com/broken",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("lists pages by depth", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		home := strings.Index(output, "[0] https://example.com/")
		about := strings.Index(output, "[1] https://example.com/about")
		if home < 0 || about < 0 || home > about {
			t.Errorf("expected seed page before depth 1 page:\n%s", output)
		}
	})

	t.Run("verbose output lists links", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "-> https://external.com") {
			t.Error("expected verbose link listing")
		}
	})

	t.Run("omits link check when not performed", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.LinkResults = nil
		report.BrokenLinks = nil

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "LINK CHECK") {
			t.Error("expected no link check section")
		}
	})

	t.Run("shows cancelled and error status", func(t *testing.T) {
		t.Parallel()

		cancelled := createTestReport()
		cancelled.Cancelled = true
		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(cancelled); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "CANCELLED") {
			t.Error("expected cancelled status")
		}

		failed := model.NewCrawlReport("bad")
		failed.SetError(errors.New("invalid seed URL"))
		buf.Reset()
		if _, err := NewSimpleWriter(&buf).Write(failed); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "ERROR - invalid seed URL") {
			t.Error("expected error status")
		}
		if !strings.Contains(buf.String(), "No pages crawled") {
			t.Error("expected empty page notice")
		}
	})

	t.Run("writes link results", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := NewSimpleWriter(&buf).WriteLinkResults(map[string]model.LinkStatus{
			"https://example.com/ok":  model.LinkStatusOK,
			"not a url":               model.LinkStatusInvalid,
			"https://example.com/404": model.LinkStatusNotFound,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if !strings.HasPrefix(lines[0], "NOT_FOUND") || !strings.HasPrefix(lines[1], "INVALID") {
			t.Errorf("expected broken links first, got %v", lines)
		}
		if !strings.Contains(buf.String(), "3 link(s) checked, 2 broken") {
			t.Errorf("unexpected summary:\n%s", buf.String())
		}
	})
}

// TestJSONWriter tests the JSON writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid JSON with statistics keys", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		stats, ok := decoded["statistics"].(map[string]any)
		if !ok {
			t.Fatal("expected statistics object")
		}
		for _, key := range []string{
			"pages_scraped",
			"unique_urls_visited",
			"total_links_found",
			"total_images_found",
			"average_links_per_page",
		} {
			if _, ok := stats[key]; !ok {
				t.Errorf("missing statistics key %q", key)
			}
		}
		results, ok := decoded["link_results"].(map[string]any)
		if !ok {
			t.Fatal("expected link_results object")
		}
		if results["https://external.com"] != "NOT_FOUND" {
			t.Errorf("expected status name, got %v", results["https://external.com"])
		}
	})

	t.Run("pretty print indents output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"seed\"") {
			t.Error("expected indented output")
		}
	})

	t.Run("writes link results as array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := NewJSONWriter(&buf).WriteLinkResults(map[string]model.LinkStatus{
			"https://example.com/": model.LinkStatusRedirect,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var decoded []struct {
			URL    string `json:"url"`
			Status string `json:"status"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 1 || decoded[0].Status != "REDIRECT" {
			t.Errorf("unexpected results %+v", decoded)
		}
	})

	t.Run("full writer adds version envelope", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewFullJSONWriter(&buf, "v1.2.3").Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var decoded JSONReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Version != "v1.2.3" {
			t.Errorf("expected version v1.2.3, got %q", decoded.Version)
		}
		if decoded.Report == nil || decoded.Report.Seed != "https://example.com" {
			t.Error("expected wrapped report")
		}
	})
}

// TestMarkdownWriter tests the Markdown writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables, chart and alerts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Sitescan Report",
			"## Statistics",
			"## Pages",
			"## Link Check",
			"```mermaid",
			"Link Status Distribution",
			"## Failed URLs",
			"https://external.com",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("limits page rows", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf, WithMaxPageRows(1)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "1 more page(s) omitted") {
			t.Error("expected omitted notice")
		}
	})

	t.Run("no broken links shows tip", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := NewMarkdownWriter(&buf).WriteLinkResults(map[string]model.LinkStatus{
			"https://example.com/": model.LinkStatusOK,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No broken links detected.") {
			t.Error("expected tip for clean results")
		}
	})
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

	n, err := mw.Write(createTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != text.Len()+js.Len() {
		t.Errorf("expected %d bytes, got %d", text.Len()+js.Len(), n)
	}
	if text.Len() == 0 || js.Len() == 0 {
		t.Error("expected both writers to receive output")
	}
}

// TestTruncateString tests truncation.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}
