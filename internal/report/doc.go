// Package report renders crawl reports.
//
// Writers for three formats are provided:
//   - SimpleWriter: plain text for terminal display
//   - JSONWriter: JSON for tool integration
//   - MarkdownWriter: Markdown with a mermaid chart of link statuses
//
// All writers implement Writer and can be combined with MultiWriter.
package report
