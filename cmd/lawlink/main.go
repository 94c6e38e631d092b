package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/coolbeans/lawlink/pkg/node"
	"github.com/coolbeans/lawlink/pkg/table"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))

func main() {
	rootCmd := &cobra.Command{
		Use:   "lawlink",
		Short: "Statute cross-reference linker",
		Long: `Lawlink turns the raw text of Korean statutes into a linked node graph.

It parses articles, paragraphs and items, resolves scraped link labels to
the node they appear in, attaches the linked text as references and exports
one relation row per (node, reference) pair.

Each stage reads and writes plain files, so stages can be run one at a time
or all together with "lawlink run".`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			return setupLogger(level)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(payloadCmd())
	rootCmd.AddCommand(matchCmd())
	rootCmd.AddCommand(labelCmd())
	rootCmd.AddCommand(fillCmd())
	rootCmd.AddCommand(mergeCmd())
	rootCmd.AddCommand(dedupCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(graphCmd())
	rootCmd.AddCommand(extractPageCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogger(level string) error {
	var slogLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info", "":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return fmt.Errorf("unknown log level: %s (valid: debug, info, warn, error)", level)
	}
	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)
	return nil
}

func readCollection(path string) (node.Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open nodes: %w", err)
	}
	defer f.Close()
	return node.DecodeReader(f)
}

// writeCollection writes nodes to path, or to stdout when path is empty.
func writeCollection(path string, c node.Collection) error {
	return withOutput(path, func(w io.Writer) error {
		return node.Encode(w, c)
	})
}

// writeTable writes a table to path, or to stdout when path is empty.
func writeTable(path string, t *table.Table) error {
	if path == "" {
		return table.Write(os.Stdout, t)
	}
	return table.WriteFile(path, t)
}

func withOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
