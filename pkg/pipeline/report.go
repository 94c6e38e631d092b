package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Report formats accepted by FormatReportAs.
const (
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// FormatReportAs renders a report in the named format.
func FormatReportAs(report *Report, format string) (string, error) {
	switch format {
	case FormatTable, "":
		return FormatReport(report), nil
	case FormatJSON:
		return FormatReportJSON(report), nil
	case FormatMarkdown:
		return FormatReportMarkdown(report), nil
	case FormatHTML:
		return FormatReportHTML(report)
	}
	return "", fmt.Errorf("unknown report format: %s (valid: table, json, markdown, html)", format)
}

// FormatReport formats a batch report for terminal output.
func FormatReport(report *Report) string {
	var builder strings.Builder

	builder.WriteString("\nLink Run Report\n")
	builder.WriteString(strings.Repeat("═", 60) + "\n")
	if report.RunID != "" {
		builder.WriteString(fmt.Sprintf("Run: %s\n", report.RunID))
	}
	builder.WriteString(fmt.Sprintf("Documents: %d | Linked: %d | Skipped: %d | Failed: %d\n",
		report.Total, report.Linked, report.Skipped, report.Failed))
	builder.WriteString(strings.Repeat("─", 60) + "\n")

	for _, entry := range report.Entries {
		line := fmt.Sprintf("  %-8s %-30s", statusMarker(entry.Status), entry.Document)
		if entry.Status == StatusLinked {
			line += fmt.Sprintf(" (%d nodes, %d/%d matched, %d refs, %d relations)",
				entry.Nodes, entry.Match.Total-entry.Match.NotFound, entry.Match.Total,
				entry.AddedRefs, entry.Relations)
		}
		if entry.Error != "" {
			line += fmt.Sprintf(" error: %s", entry.Error)
		}
		builder.WriteString(line + "\n")
	}

	return builder.String()
}

// FormatReportJSON formats a batch report as JSON.
func FormatReportJSON(report *Report) string {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}

// FormatReportMarkdown formats a batch report as a Markdown document with
// one table row per document.
func FormatReportMarkdown(report *Report) string {
	var builder strings.Builder

	builder.WriteString("# Link Run Report\n\n")
	if report.RunID != "" {
		builder.WriteString(fmt.Sprintf("Run `%s`\n\n", report.RunID))
	}
	builder.WriteString(fmt.Sprintf("- Documents: %d\n- Linked: %d\n- Skipped: %d\n- Failed: %d\n\n",
		report.Total, report.Linked, report.Skipped, report.Failed))

	builder.WriteString("| Document | Status | Nodes | Rows | Article | Paragraph | Item | Not found | Refs | Skipped rows | Relations |\n")
	builder.WriteString("|---|---|---:|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, entry := range report.Entries {
		builder.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %d | %d | %d | %d | %d | %d | %d |\n",
			markdownCell(entry.Document), entry.Status, entry.Nodes, entry.Rows,
			entry.Match.Article, entry.Match.Paragraph, entry.Match.Item, entry.Match.NotFound,
			entry.AddedRefs, entry.SkippedRows, entry.Relations))
	}

	var failures []Entry
	for _, entry := range report.Entries {
		if entry.Error != "" {
			failures = append(failures, entry)
		}
	}
	if len(failures) > 0 {
		builder.WriteString("\n## Errors\n\n")
		for _, entry := range failures {
			builder.WriteString(fmt.Sprintf("- **%s**: %s\n", markdownCell(entry.Document), markdownCell(entry.Error)))
		}
	}

	return builder.String()
}

// FormatReportHTML renders the Markdown report as a standalone HTML page.
func FormatReportHTML(report *Report) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(FormatReportMarkdown(report)), &body); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}

	title := "Link Run Report"
	if report.RunID != "" {
		title += " " + report.RunID
	}
	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>" + html.EscapeString(title) + "</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}

func statusMarker(status string) string {
	switch status {
	case StatusLinked:
		return "[OK]"
	case StatusSkipped:
		return "[SKIP]"
	case StatusFailed:
		return "[FAIL]"
	}
	return status
}

// markdownCell keeps a value on one table line.
func markdownCell(value string) string {
	value = strings.ReplaceAll(value, "|", `\|`)
	return strings.Join(strings.Fields(value), " ")
}
