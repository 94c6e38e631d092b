package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/coolbeans/lawlink/pkg/config"
	"github.com/coolbeans/lawlink/pkg/extract"
	"github.com/coolbeans/lawlink/pkg/node"
	"github.com/coolbeans/lawlink/pkg/store"
	"github.com/coolbeans/lawlink/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietRunner() *Runner {
	return NewRunner(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeBatch(t *testing.T) *config.BatchConfig {
	t.Helper()
	dir := t.TempDir()

	sourcePath := filepath.Join(dir, "시행령.txt")
	require.NoError(t, os.WriteFile(sourcePath, []byte(enforcementDecree), 0644))
	rowsPath := filepath.Join(dir, "시행령_data.csv")
	require.NoError(t, table.WriteFile(rowsPath, scrapedRows()))

	return &config.BatchConfig{
		OutputDir: filepath.Join(dir, "out"),
		Documents: []config.DocumentSpec{
			{Name: "시행령", Source: sourcePath, Rows: rowsPath},
			{Name: "없는 법", Source: filepath.Join(dir, "missing.txt"), Rows: rowsPath},
		},
	}
}

func TestRunWritesStageOutputs(t *testing.T) {
	cfg := writeBatch(t)

	report, err := quietRunner().Run(context.Background(), cfg, "test")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Linked)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Failed)
	assert.Empty(t, report.RunID)

	entry := report.Entries[0]
	assert.Equal(t, StatusLinked, entry.Status)
	assert.Equal(t, 6, entry.Nodes)
	assert.Equal(t, 4, entry.Rows)
	assert.Equal(t, 1, entry.Payloads)
	assert.Equal(t, 1, entry.AddedRefs)
	assert.Equal(t, 3, entry.SkippedRows)
	assert.Equal(t, 7, entry.Merge.Total)
	assert.Equal(t, 7, entry.Dedup.TotalOut)
	assert.Equal(t, 1, entry.Relations)
	assert.Positive(t, entry.Triples)

	outputDir := filepath.Join(cfg.OutputDir, "시행령")
	for _, name := range []string{FileParsed, FileRows, FileFilled, FileMerged, FileDeduped, FileRelations, FileSkipped, FileGraph} {
		assert.FileExists(t, filepath.Join(outputDir, name))
	}

	parsed, err := os.ReadFile(filepath.Join(outputDir, FileParsed))
	require.NoError(t, err)
	parsedNodes, err := node.Decode(parsed)
	require.NoError(t, err)
	for _, n := range parsedNodes {
		assert.Empty(t, n.Common().Refs, "parse output is written before filling")
	}

	relations, _, err := table.ReadFile(filepath.Join(outputDir, FileRelations))
	require.NoError(t, err)
	require.Equal(t, 1, relations.Len())
	assert.Equal(t, "시행령-2(1)", relations.Get(0, "src_id"))
	assert.Equal(t, "산업안전보건법-3", relations.Get(0, "ref_id"))
	assert.Equal(t, "True", relations.Get(0, "ref_found"))

	rows, _, err := table.ReadFile(filepath.Join(outputDir, FileRows))
	require.NoError(t, err)
	assert.True(t, rows.Has(table.ColPayloadJSON))
	assert.Equal(t, "시행령-2(2)[1]", rows.Get(3, table.ColID))

	missing := report.Entries[1]
	assert.Equal(t, StatusSkipped, missing.Status)
	assert.Contains(t, missing.Error, "missing.txt")
}

func TestRunFailsDocumentWithoutRequiredColumns(t *testing.T) {
	cfg := writeBatch(t)
	badRows := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(badRows, []byte("조,내용\n2,법\n"), 0644))
	cfg.Documents[0].Rows = badRows
	cfg.Documents = cfg.Documents[:1]

	report, err := quietRunner().Run(context.Background(), cfg, "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, StatusFailed, report.Entries[0].Status)
	assert.Contains(t, report.Entries[0].Error, table.ErrMissingColumn.Error())
}

func TestRunRecoversFromStagePanic(t *testing.T) {
	cfg := writeBatch(t)
	runner := quietRunner()
	// A zero Parser has no compiled patterns and panics on first use.
	runner.Parser = &extract.Parser{}

	report, err := runner.Run(context.Background(), cfg, "")
	require.NoError(t, err)
	require.Len(t, report.Entries, 2)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, StatusFailed, report.Entries[0].Status)
	assert.Contains(t, report.Entries[0].Error, "panic")
	assert.Equal(t, StatusSkipped, report.Entries[1].Status)
}

func TestRunSavesToStore(t *testing.T) {
	cfg := writeBatch(t)
	s, err := store.Open(filepath.Join(t.TempDir(), "lawlink.db"))
	require.NoError(t, err)
	defer s.Close()

	runner := quietRunner()
	runner.Store = s
	report, err := runner.Run(context.Background(), cfg, "batch.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, report.RunID)

	documents, err := s.Documents(context.Background(), report.RunID)
	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Equal(t, "시행령", documents[0].Name)
	assert.Equal(t, 7, documents[0].Nodes)

	run, err := s.Run(context.Background(), report.RunID)
	require.NoError(t, err)
	assert.Equal(t, 2, run.Documents)
	assert.NotNil(t, run.FinishedAt)

	inbound, err := s.Inbound(context.Background(), report.RunID, "산업안전보건법-3")
	require.NoError(t, err)
	require.Len(t, inbound, 1)
	assert.Equal(t, "시행령-2(1)", inbound[0].SourceID)
}

func TestRunFromSavedPage(t *testing.T) {
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "시행령.txt")
	require.NoError(t, os.WriteFile(sourcePath, []byte(enforcementDecree), 0644))
	pagePath := filepath.Join(dir, "page.html")
	page := `<html><body><div class="lawcon"><p class="pty1_p4">제2조(적용범위)</p>
<p><a class="link sfon1">법</a> <a class="link sfon2">제3조</a></p></div></body></html>`
	require.NoError(t, os.WriteFile(pagePath, []byte(page), 0644))

	cfg := &config.BatchConfig{
		OutputDir: filepath.Join(dir, "out"),
		Documents: []config.DocumentSpec{{Name: "시행령", Source: sourcePath, Page: pagePath}},
	}
	report, err := quietRunner().Run(context.Background(), cfg, "")
	require.NoError(t, err)

	entry := report.Entries[0]
	assert.Equal(t, StatusLinked, entry.Status)
	assert.Equal(t, 1, entry.Rows)
	assert.Equal(t, 1, entry.Match.Paragraph)
	// Page rows carry no payloads.
	assert.Zero(t, entry.AddedRefs)
	assert.Equal(t, 1, entry.SkippedRows)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := quietRunner().Run(ctx, writeBatch(t), "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, report.Total)
}

func TestDirectoryName(t *testing.T) {
	assert.Equal(t, "산업안전보건법 시행령", directoryName(" 산업안전보건법 시행령 "))
	assert.Equal(t, "a_b_c", directoryName(`a/b\c`))
	assert.Equal(t, "document", directoryName(".."))
}

func TestReportJSONRoundTrip(t *testing.T) {
	report, err := quietRunner().Run(context.Background(), writeBatch(t), "")
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal([]byte(FormatReportJSON(report)), &decoded))
	assert.Equal(t, report.Total, decoded.Total)
	assert.Equal(t, report.Entries[0].Match, decoded.Entries[0].Match)
}

