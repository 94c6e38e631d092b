package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coolbeans/lawlink/pkg/api"
	"github.com/coolbeans/lawlink/pkg/config"
	"github.com/coolbeans/lawlink/pkg/pipeline"
	"github.com/coolbeans/lawlink/pkg/relation"
	"github.com/coolbeans/lawlink/pkg/store"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Link every document of a batch config",
		Long: `Run every stage for each document listed in a batch config.

Stage outputs are written to <output_dir>/<document name>/. A document
whose files are missing is skipped; any other failure is reported and the
batch continues.

Example batch.yaml:
  output_dir: out
  store: lawlink.db
  documents:
    - name: 산업안전보건법 시행령
      source: data/시행령.txt
      rows: data/시행령_data.csv

Example:
  lawlink run --config batch.yaml --format markdown --report report.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			format, _ := cmd.Flags().GetString("format")
			reportPath, _ := cmd.Flags().GetString("report")
			outputDir, _ := cmd.Flags().GetString("output-dir")
			storePath, _ := cmd.Flags().GetString("store")
			watch, _ := cmd.Flags().GetBool("watch")

			if configPath == "" {
				return fmt.Errorf("--config flag is required")
			}

			cfg, err := config.LoadBatchConfig(configPath)
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if storePath != "" {
				cfg.Store = storePath
			}

			runner := pipeline.NewRunner(logger)
			runner.Export = relation.Options{
				TruncateSourceText:  cfg.Export.TruncateSourceText,
				TruncateRefText:     cfg.Export.TruncateRefText,
				CaseSensitiveLabels: cfg.Export.CaseSensitiveLabels,
			}
			if cfg.Store != "" {
				s, err := store.Open(cfg.Store)
				if err != nil {
					return err
				}
				defer s.Close()
				runner.Store = s
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if watch {
				err := runner.Watch(ctx, cfg, configPath, pipeline.DefaultDebounce, func(report *pipeline.Report) {
					if err := writeReport(reportPath, report, format); err != nil {
						logger.Error("failed to write report", "error", err)
					}
				})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}

			report, err := runner.Run(ctx, cfg, configPath)
			if err != nil && report == nil {
				return err
			}
			if writeErr := writeReport(reportPath, report, format); writeErr != nil {
				return writeErr
			}
			if err != nil {
				return err
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d documents failed", report.Failed, report.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringP("config", "c", "", "Batch config YAML")
	cmd.Flags().StringP("format", "f", pipeline.FormatTable, "Report format (table, json, markdown, html)")
	cmd.Flags().StringP("report", "r", "", "Report file (default stdout)")
	cmd.Flags().String("output-dir", "", "Override the config's output directory")
	cmd.Flags().String("store", "", "SQLite database that receives the linked documents")
	cmd.Flags().BoolP("watch", "w", false, "Run again whenever an input file changes")
	return cmd
}

func writeReport(path string, report *pipeline.Report, format string) error {
	output, err := pipeline.FormatReportAs(report, format)
	if err != nil {
		return err
	}
	return withOutput(path, func(w io.Writer) error {
		_, err := io.WriteString(w, output)
		return err
	})
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored runs over HTTP",
		Long: `Serve the documents, nodes and references saved by "lawlink run --store".

Endpoints:
  GET /health
  GET /api/runs
  GET /api/documents?run=ID
  GET /api/documents/{name}/nodes?level=항
  GET /api/documents/{name}/relations
  GET /api/node?id=산업안전보건법-3
  GET /api/inbound?id=산업안전보건법-3
  GET /api/graph/{id}/referrers
  GET /api/graph/{id}/targets
  GET /api/graph/{id}/parts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			storePath, _ := cmd.Flags().GetString("store")
			addr, _ := cmd.Flags().GetString("addr")

			if storePath == "" {
				return fmt.Errorf("--store flag is required")
			}

			s, err := store.Open(storePath)
			if err != nil {
				return err
			}
			defer s.Close()

			httpServer := &http.Server{
				Addr:         addr,
				Handler:      api.NewServer(s, logger),
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				logger.Info("shutting down...")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			logger.Info("serving", "addr", addr, "store", storePath)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().String("store", "", "SQLite database written by lawlink run")
	cmd.Flags().String("addr", ":8090", "Listen address")
	return cmd
}
