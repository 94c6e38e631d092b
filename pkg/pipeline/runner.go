package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/coolbeans/lawlink/pkg/config"
	"github.com/coolbeans/lawlink/pkg/extract"
	"github.com/coolbeans/lawlink/pkg/graph"
	"github.com/coolbeans/lawlink/pkg/lawpage"
	"github.com/coolbeans/lawlink/pkg/match"
	"github.com/coolbeans/lawlink/pkg/merge"
	"github.com/coolbeans/lawlink/pkg/node"
	"github.com/coolbeans/lawlink/pkg/relation"
	"github.com/coolbeans/lawlink/pkg/source"
	"github.com/coolbeans/lawlink/pkg/store"
	"github.com/coolbeans/lawlink/pkg/table"
)

// Entry statuses.
const (
	StatusLinked  = "linked"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Files written for every document, in stage order.
const (
	FileParsed    = "parsed.json"
	FileRows      = "rows_labeled.csv"
	FileFilled    = "refs_filled.json"
	FileMerged    = "merged.json"
	FileDeduped   = "dedup.json"
	FileRelations = "relations.csv"
	FileSkipped   = "skipped.csv"
	FileGraph     = "graph.ttl"
)

// Entry is the outcome of one document.
type Entry struct {
	Document     string           `json:"document"`
	Status       string           `json:"status"`
	Nodes        int              `json:"nodes"`
	Issues       int              `json:"issues"`
	Rows         int              `json:"rows"`
	Payloads     int              `json:"payloads"`
	Match        match.Summary    `json:"match"`
	UpdatedNodes int              `json:"updated_nodes"`
	AddedRefs    int              `json:"added_refs"`
	SkippedRows  int              `json:"skipped_rows"`
	Merge        merge.MergeStats `json:"merge"`
	Dedup        merge.DedupStats `json:"dedup"`
	Relations    int              `json:"relations"`
	Triples      int              `json:"triples"`
	OutputDir    string           `json:"output_dir,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// Report summarizes a batch run.
type Report struct {
	RunID   string  `json:"run_id,omitempty"`
	Total   int     `json:"total"`
	Linked  int     `json:"linked"`
	Skipped int     `json:"skipped"`
	Failed  int     `json:"failed"`
	Entries []Entry `json:"entries"`
}

func (r *Report) add(entry Entry) {
	r.Entries = append(r.Entries, entry)
	r.Total++
	switch entry.Status {
	case StatusLinked:
		r.Linked++
	case StatusSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
}

// Runner links the documents of a batch one after another. A document that
// fails is recorded in the report and the batch moves on.
type Runner struct {
	Parser *extract.Parser
	Logger *slog.Logger
	// Store, when set, receives every linked document.
	Store  *store.Store
	Export relation.Options
}

// NewRunner returns a runner with a fresh parser and no store.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Parser: extract.NewParser(), Logger: logger}
}

// Run processes every document of cfg. The error is non-nil only when the
// run could not be recorded or ctx was cancelled; per-document failures
// live in the report.
func (r *Runner) Run(ctx context.Context, cfg *config.BatchConfig, label string) (*Report, error) {
	report := &Report{}

	if r.Store != nil {
		runID, err := r.Store.BeginRun(ctx, label)
		if err != nil {
			return nil, err
		}
		report.RunID = runID
	}

	for _, spec := range cfg.Documents {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		outputDir := filepath.Join(cfg.OutputDir, directoryName(spec.Name))
		entry := r.RunDocument(ctx, report.RunID, spec, outputDir)
		report.add(entry)

		logger := r.Logger.With("document", spec.Name, "status", entry.Status)
		if entry.Error != "" {
			logger.Warn("document not linked", "error", entry.Error)
			continue
		}
		logger.Info("document linked",
			"nodes", entry.Nodes,
			"rows", entry.Rows,
			"added_refs", entry.AddedRefs,
			"relations", entry.Relations,
		)
	}

	if r.Store != nil {
		if err := r.Store.FinishRun(ctx, report.RunID, report.Total, report.Failed); err != nil {
			return report, err
		}
	}
	return report, nil
}

// RunDocument runs every stage for one document and writes the stage
// outputs to outputDir. A panic in any stage fails the document instead of
// the batch.
func (r *Runner) RunDocument(ctx context.Context, runID string, spec config.DocumentSpec, outputDir string) (entry Entry) {
	entry = Entry{Document: spec.Name, Status: StatusLinked, OutputDir: outputDir}
	defer func() {
		if p := recover(); p != nil {
			r.Logger.Error("document stage panicked", "document", spec.Name, "panic", p)
			entry.Status = StatusFailed
			entry.Error = fmt.Sprintf("panic: %v", p)
		}
	}()
	fail := func(err error) Entry {
		entry.Status = StatusFailed
		if errors.Is(err, fs.ErrNotExist) {
			entry.Status = StatusSkipped
		}
		entry.Error = err.Error()
		return entry
	}

	text, err := source.LoadFile(spec.Source)
	if err != nil {
		return fail(err)
	}

	rows, err := r.loadRows(spec)
	if err != nil {
		return fail(err)
	}
	entry.Rows = rows.Len()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fail(fmt.Errorf("failed to create output directory: %w", err))
	}

	main := r.Parser.Parse(text, spec.Name)
	entry.Nodes = len(main)
	issues := extract.Check(main)
	entry.Issues = len(issues)
	for _, issue := range issues {
		r.Logger.Debug("structure issue", "document", spec.Name, "issue", issue.String())
	}
	if err := writeCollection(filepath.Join(outputDir, FileParsed), main); err != nil {
		return fail(err)
	}

	if rows.Has(table.ColPayloadText) && !rows.Has(table.ColPayloadJSON) {
		if entry.Payloads, err = PayloadColumn(rows, r.Parser, table.ColPayloadText); err != nil {
			return fail(err)
		}
	}

	if entry.Match, err = MatchRows(rows, main); err != nil {
		return fail(err)
	}
	if err := LabelRows(rows, spec.Name); err != nil {
		return fail(err)
	}
	if err := table.WriteFile(filepath.Join(outputDir, FileRows), rows); err != nil {
		return fail(err)
	}

	fill, err := FillRows(main, rows, r.Parser)
	if err != nil {
		return fail(err)
	}
	entry.UpdatedNodes = fill.UpdatedNodes
	entry.AddedRefs = fill.AddedRefs
	entry.SkippedRows = len(fill.Skipped)
	if err := writeCollection(filepath.Join(outputDir, FileFilled), main); err != nil {
		return fail(err)
	}
	if err := table.WriteFile(filepath.Join(outputDir, FileSkipped), SkippedTable(fill)); err != nil {
		return fail(err)
	}

	merged, mergeStats := merge.Merge(main, Payloads(rows, r.Parser))
	entry.Merge = mergeStats
	if err := writeCollection(filepath.Join(outputDir, FileMerged), merged); err != nil {
		return fail(err)
	}

	deduped, dedupStats := merge.Dedup(merged)
	entry.Dedup = dedupStats
	if err := writeCollection(filepath.Join(outputDir, FileDeduped), deduped); err != nil {
		return fail(err)
	}

	relations, _ := relation.Export(deduped, r.Export)
	entry.Relations = len(relations)
	if err := table.WriteFile(filepath.Join(outputDir, FileRelations), RelationTable(relations)); err != nil {
		return fail(err)
	}

	g := graph.FromCollection(deduped)
	entry.Triples = g.Count()
	if err := writeGraph(filepath.Join(outputDir, FileGraph), g); err != nil {
		return fail(err)
	}

	if r.Store != nil {
		err := r.Store.SaveDocument(ctx, runID, store.Document{
			Name:      spec.Name,
			Source:    spec.Source,
			Nodes:     deduped,
			Relations: relations,
		})
		if err != nil {
			return fail(err)
		}
	}
	return entry
}

// loadRows reads the document's row table, or builds one from its saved
// law page.
func (r *Runner) loadRows(spec config.DocumentSpec) (*table.Table, error) {
	if spec.Rows != "" {
		rows, format, err := table.ReadFile(spec.Rows, table.ColArticle, table.ColLabel)
		if err != nil {
			return nil, err
		}
		r.Logger.Debug("rows loaded", "document", spec.Name, "format", format.String(), "rows", rows.Len())
		return rows, nil
	}

	f, err := os.Open(spec.Page)
	if err != nil {
		return nil, fmt.Errorf("opening law page: %w", err)
	}
	defer f.Close()

	scraped, err := lawpage.Extract(f)
	if err != nil {
		return nil, err
	}
	return ScrapedTable(scraped), nil
}

func writeCollection(path string, c node.Collection) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	if err := node.Encode(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeGraph(path string, g *graph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	if err := graph.WriteTurtle(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// directoryName makes a document name safe to use as one path element.
func directoryName(name string) string {
	replacer := strings.NewReplacer("/", "_", `\`, "_")
	cleaned := strings.TrimSpace(replacer.Replace(name))
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "document"
	}
	return cleaned
}
