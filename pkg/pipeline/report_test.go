package pipeline

import (
	"strings"
	"testing"

	"github.com/coolbeans/lawlink/pkg/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	report := &Report{RunID: "run-1"}
	report.add(Entry{
		Document:  "산업안전보건법 시행령",
		Status:    StatusLinked,
		Nodes:     120,
		Rows:      40,
		Match:     match.Summary{Total: 40, Article: 5, Paragraph: 20, Item: 10, NotFound: 5},
		AddedRefs: 33,
		Relations: 30,
	})
	report.add(Entry{Document: "없는|법", Status: StatusSkipped, Error: "opening source: no such file"})
	report.add(Entry{Document: "깨진 법", Status: StatusFailed, Error: "missing required column: 조"})
	return report
}

func TestFormatReport(t *testing.T) {
	out := FormatReport(sampleReport())

	assert.Contains(t, out, "Run: run-1")
	assert.Contains(t, out, "Documents: 3 | Linked: 1 | Skipped: 1 | Failed: 1")
	assert.Contains(t, out, "(120 nodes, 35/40 matched, 33 refs, 30 relations)")
	assert.Contains(t, out, "[SKIP]")
	assert.Contains(t, out, "[FAIL]")
	assert.Contains(t, out, "error: missing required column: 조")
}

func TestFormatReportMarkdown(t *testing.T) {
	out := FormatReportMarkdown(sampleReport())

	assert.True(t, strings.HasPrefix(out, "# Link Run Report\n"))
	assert.Contains(t, out, "| 산업안전보건법 시행령 | linked | 120 | 40 | 5 | 20 | 10 | 5 | 33 | 0 | 30 |")
	assert.Contains(t, out, `| 없는\|법 | skipped |`)
	assert.Contains(t, out, "## Errors")
	assert.Contains(t, out, "- **깨진 법**: missing required column: 조")
}

func TestFormatReportHTML(t *testing.T) {
	out, err := FormatReportHTML(sampleReport())
	require.NoError(t, err)

	assert.Contains(t, out, "<title>Link Run Report run-1</title>")
	assert.Contains(t, out, "<h1>Link Run Report</h1>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>산업안전보건법 시행령</td>")
}

func TestFormatReportAs(t *testing.T) {
	for _, format := range []string{FormatTable, FormatJSON, FormatMarkdown, FormatHTML, ""} {
		out, err := FormatReportAs(sampleReport(), format)
		require.NoError(t, err, format)
		assert.NotEmpty(t, out, format)
	}

	_, err := FormatReportAs(sampleReport(), "xml")
	assert.Error(t, err)
}
