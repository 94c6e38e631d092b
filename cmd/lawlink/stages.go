package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/coolbeans/lawlink/pkg/extract"
	"github.com/coolbeans/lawlink/pkg/graph"
	"github.com/coolbeans/lawlink/pkg/lawpage"
	"github.com/coolbeans/lawlink/pkg/merge"
	"github.com/coolbeans/lawlink/pkg/pipeline"
	"github.com/coolbeans/lawlink/pkg/relation"
	"github.com/coolbeans/lawlink/pkg/source"
	"github.com/coolbeans/lawlink/pkg/table"
	"github.com/spf13/cobra"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a statute into articles, paragraphs and items",
		Long: `Parse the raw text of one statute into a flat JSON list of nodes.

Supported formats: TXT, MD, HTML, PDF, DOCX

Example:
  lawlink parse --source 시행령.txt --title "산업안전보건법 시행령" --output parsed.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath, _ := cmd.Flags().GetString("source")
			title, _ := cmd.Flags().GetString("title")
			output, _ := cmd.Flags().GetString("output")

			if sourcePath == "" || title == "" {
				return fmt.Errorf("--source and --title flags are required")
			}

			text, err := source.LoadFile(sourcePath)
			if err != nil {
				return err
			}
			nodes := extract.NewParser().Parse(text, title)
			for _, issue := range extract.Check(nodes) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", issue)
			}
			if err := writeCollection(output, nodes); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Parsed %d nodes (%d articles)\n", len(nodes), len(nodes.Articles()))
			return nil
		},
	}

	cmd.Flags().StringP("source", "s", "", "Statute text file")
	cmd.Flags().StringP("title", "t", "", "Document title used in node ids")
	cmd.Flags().StringP("output", "o", "", "Output JSON file (default stdout)")
	return cmd
}

func payloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payload",
		Short: "Parse the linked text column of a row table",
		RunE: func(cmd *cobra.Command, args []string) error {
			rowsPath, _ := cmd.Flags().GetString("rows")
			column, _ := cmd.Flags().GetString("column")
			output, _ := cmd.Flags().GetString("output")

			if rowsPath == "" {
				return fmt.Errorf("--rows flag is required")
			}

			rows, _, err := table.ReadFile(rowsPath, column)
			if err != nil {
				return err
			}
			nonEmpty, err := pipeline.PayloadColumn(rows, extract.NewParser(), column)
			if err != nil {
				return err
			}
			if err := writeTable(output, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Parsed payloads: %d of %d rows non-empty\n", nonEmpty, rows.Len())
			return nil
		},
	}

	cmd.Flags().StringP("rows", "r", "", "Scraped row table")
	cmd.Flags().String("column", table.ColPayloadText, "Column holding the linked text")
	cmd.Flags().StringP("output", "o", "", "Output CSV file (default stdout)")
	return cmd
}

func matchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Resolve each row's label to the article, paragraph or item containing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			nodesPath, _ := cmd.Flags().GetString("nodes")
			rowsPath, _ := cmd.Flags().GetString("rows")
			output, _ := cmd.Flags().GetString("output")

			if nodesPath == "" || rowsPath == "" {
				return fmt.Errorf("--nodes and --rows flags are required")
			}

			nodes, err := readCollection(nodesPath)
			if err != nil {
				return err
			}
			rows, _, err := table.ReadFile(rowsPath, table.ColArticle, table.ColLabel)
			if err != nil {
				return err
			}
			summary, err := pipeline.MatchRows(rows, nodes)
			if err != nil {
				return err
			}
			if err := writeTable(output, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Matched %d rows: %d article, %d paragraph, %d item, %d not found\n",
				summary.Total, summary.Article, summary.Paragraph, summary.Item, summary.NotFound)
			return nil
		},
	}

	cmd.Flags().StringP("nodes", "n", "", "Parsed node JSON")
	cmd.Flags().StringP("rows", "r", "", "Scraped row table")
	cmd.Flags().StringP("output", "o", "", "Output CSV file (default stdout)")
	return cmd
}

func labelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Number duplicate labels and assign target node ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			rowsPath, _ := cmd.Flags().GetString("rows")
			title, _ := cmd.Flags().GetString("title")
			output, _ := cmd.Flags().GetString("output")

			if rowsPath == "" || title == "" {
				return fmt.Errorf("--rows and --title flags are required")
			}

			rows, _, err := table.ReadFile(rowsPath, table.ColArticle, table.ColLabel)
			if err != nil {
				return err
			}
			if err := pipeline.LabelRows(rows, title); err != nil {
				return err
			}
			return writeTable(output, rows)
		},
	}

	cmd.Flags().StringP("rows", "r", "", "Matched row table")
	cmd.Flags().StringP("title", "t", "", "Document title used in node ids")
	cmd.Flags().StringP("output", "o", "", "Output CSV file (default stdout)")
	return cmd
}

func fillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Attach linked payloads as references to the document's nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			nodesPath, _ := cmd.Flags().GetString("nodes")
			rowsPath, _ := cmd.Flags().GetString("rows")
			output, _ := cmd.Flags().GetString("output")
			skippedDir, _ := cmd.Flags().GetString("skipped-dir")

			if nodesPath == "" || rowsPath == "" {
				return fmt.Errorf("--nodes and --rows flags are required")
			}

			nodes, err := readCollection(nodesPath)
			if err != nil {
				return err
			}
			rows, _, err := table.ReadFile(rowsPath, table.ColID, table.ColLabel)
			if err != nil {
				return err
			}
			report, err := pipeline.FillRows(nodes, rows, extract.NewParser())
			if err != nil {
				return err
			}
			if err := writeCollection(output, nodes); err != nil {
				return err
			}

			if skippedDir != "" && len(report.Skipped) > 0 {
				if err := os.MkdirAll(skippedDir, 0755); err != nil {
					return fmt.Errorf("failed to create skipped directory: %w", err)
				}
				if err := table.WriteFile(filepath.Join(skippedDir, pipeline.FileSkipped), pipeline.SkippedTable(report)); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Updated %d nodes with %d references; skipped %d rows\n",
				report.UpdatedNodes, report.AddedRefs, len(report.Skipped))
			return nil
		},
	}

	cmd.Flags().StringP("nodes", "n", "", "Parsed node JSON")
	cmd.Flags().StringP("rows", "r", "", "Labeled row table")
	cmd.Flags().StringP("output", "o", "", "Output JSON file (default stdout)")
	cmd.Flags().String("skipped-dir", "", "Directory for the skipped row table")
	return cmd
}

func mergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Append every linked payload to the document's nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			nodesPath, _ := cmd.Flags().GetString("nodes")
			rowsPath, _ := cmd.Flags().GetString("rows")
			output, _ := cmd.Flags().GetString("output")

			if nodesPath == "" || rowsPath == "" {
				return fmt.Errorf("--nodes and --rows flags are required")
			}

			nodes, err := readCollection(nodesPath)
			if err != nil {
				return err
			}
			rows, _, err := table.ReadFile(rowsPath)
			if err != nil {
				return err
			}
			merged, stats := merge.Merge(nodes, pipeline.Payloads(rows, extract.NewParser()))
			if err := writeCollection(output, merged); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Merged %d payloads (%d non-empty): %d + %d = %d nodes\n",
				stats.ScannedPayloads, stats.NonEmpty, stats.Original, stats.Added, stats.Total)
			return nil
		},
	}

	cmd.Flags().StringP("nodes", "n", "", "Filled node JSON")
	cmd.Flags().StringP("rows", "r", "", "Row table with payloads")
	cmd.Flags().StringP("output", "o", "", "Output JSON file (default stdout)")
	return cmd
}

func dedupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dedup",
		Short: "Keep one node per id, preferring copies with references",
		RunE: func(cmd *cobra.Command, args []string) error {
			nodesPath, _ := cmd.Flags().GetString("nodes")
			output, _ := cmd.Flags().GetString("output")

			if nodesPath == "" {
				return fmt.Errorf("--nodes flag is required")
			}

			nodes, err := readCollection(nodesPath)
			if err != nil {
				return err
			}
			deduped, stats := merge.Dedup(nodes)
			if err := writeCollection(output, deduped); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Dedup: %d in, %d out (%d replaced, %d dropped, %d without id)\n",
				stats.TotalIn, stats.TotalOut, stats.Replaced, stats.Skipped, stats.Orphans)
			return nil
		},
	}

	cmd.Flags().StringP("nodes", "n", "", "Merged node JSON")
	cmd.Flags().StringP("output", "o", "", "Output JSON file (default stdout)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export references as relation rows or as an RDF graph",
		Long: `Export the references of a linked node list.

Formats:
  csv       one row per (node, reference) pair
  turtle    reference graph as Turtle
  ntriples  reference graph as N-Triples

Example:
  lawlink export --nodes dedup.json --output relations.csv
  lawlink export --nodes dedup.json --format turtle --output graph.ttl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			nodesPath, _ := cmd.Flags().GetString("nodes")
			output, _ := cmd.Flags().GetString("output")
			format, _ := cmd.Flags().GetString("format")
			truncateSource, _ := cmd.Flags().GetInt("truncate-src-text")
			truncateRef, _ := cmd.Flags().GetInt("truncate-ref-text")
			caseSensitive, _ := cmd.Flags().GetBool("case-sensitive")

			if nodesPath == "" {
				return fmt.Errorf("--nodes flag is required")
			}

			nodes, err := readCollection(nodesPath)
			if err != nil {
				return err
			}

			switch format {
			case "csv":
				rows, stats := relation.Export(nodes, relation.Options{
					TruncateSourceText:  truncateSource,
					TruncateRefText:     truncateRef,
					CaseSensitiveLabels: caseSensitive,
				})
				if err := writeTable(output, pipeline.RelationTable(rows)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d relations (%d before label dedup)\n",
					stats.AfterDedup, stats.BeforeDedup)
			case "turtle", "ttl":
				g := graph.FromCollection(nodes)
				if err := withOutput(output, func(w io.Writer) error { return graph.WriteTurtle(w, g) }); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d triples\n", g.Count())
			case "ntriples", "nt":
				g := graph.FromCollection(nodes)
				if err := withOutput(output, func(w io.Writer) error { return graph.WriteNTriples(w, g) }); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d triples\n", g.Count())
			default:
				return fmt.Errorf("unknown format: %s (valid: csv, turtle, ntriples)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringP("nodes", "n", "", "Deduplicated node JSON")
	cmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringP("format", "f", "csv", "Output format (csv, turtle, ntriples)")
	cmd.Flags().Int("truncate-src-text", 0, "Truncate src_text to this many characters (0 keeps all)")
	cmd.Flags().Int("truncate-ref-text", 0, "Truncate ref_text to this many characters (0 keeps all)")
	cmd.Flags().Bool("case-sensitive", false, "Compare labels case-sensitively when deduplicating")
	return cmd
}

func extractPageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract-page",
		Short: "Extract link rows from a saved law page",
		RunE: func(cmd *cobra.Command, args []string) error {
			htmlPath, _ := cmd.Flags().GetString("html")
			output, _ := cmd.Flags().GetString("output")

			if htmlPath == "" {
				return fmt.Errorf("--html flag is required")
			}

			f, err := os.Open(htmlPath)
			if err != nil {
				return fmt.Errorf("failed to open page: %w", err)
			}
			defer f.Close()

			rows, err := lawpage.Extract(f)
			if err != nil {
				return err
			}
			if err := writeTable(output, pipeline.ScrapedTable(rows)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Extracted %d link rows\n", len(rows))
			return nil
		},
	}

	cmd.Flags().String("html", "", "Saved law page HTML")
	cmd.Flags().StringP("output", "o", "", "Output CSV file (default stdout)")
	return cmd
}
