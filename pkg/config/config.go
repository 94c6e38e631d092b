// Package config loads batch run descriptions from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BatchConfig describes one batch run over several documents.
type BatchConfig struct {
	OutputDir string         `yaml:"output_dir"`
	Store     string         `yaml:"store,omitempty"`
	Export    ExportConfig   `yaml:"export,omitempty"`
	Documents []DocumentSpec `yaml:"documents"`
}

// ExportConfig tunes the relation export.
type ExportConfig struct {
	TruncateSourceText  int  `yaml:"truncate_src_text,omitempty"`
	TruncateRefText     int  `yaml:"truncate_ref_text,omitempty"`
	CaseSensitiveLabels bool `yaml:"case_sensitive_labels,omitempty"`
}

// DocumentSpec names a document, its raw text and its scraped link rows.
// Rows come from a table file or, when only Page is set, from a saved law
// page (those rows carry no payloads).
type DocumentSpec struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Rows   string `yaml:"rows,omitempty"`
	Page   string `yaml:"page,omitempty"`
}

// LoadBatchConfig reads and validates a batch config. Relative paths are
// resolved against the config file's directory.
func LoadBatchConfig(path string) (*BatchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch config: %w", err)
	}

	var config BatchConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse batch config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.resolvePaths(filepath.Dir(path))
	return &config, nil
}

// Validate checks required fields.
func (c *BatchConfig) Validate() error {
	if len(c.Documents) == 0 {
		return fmt.Errorf("batch config: at least one document is required")
	}
	seen := make(map[string]bool)
	for i, document := range c.Documents {
		if document.Name == "" {
			return fmt.Errorf("document %d: name is required", i)
		}
		if seen[document.Name] {
			return fmt.Errorf("document %s: duplicate name", document.Name)
		}
		seen[document.Name] = true
		if document.Source == "" {
			return fmt.Errorf("document %s: source is required", document.Name)
		}
		if document.Rows == "" && document.Page == "" {
			return fmt.Errorf("document %s: rows or page is required", document.Name)
		}
	}
	if c.Export.TruncateSourceText < 0 || c.Export.TruncateRefText < 0 {
		return fmt.Errorf("batch config: truncation limits must not be negative")
	}
	return nil
}

func (c *BatchConfig) resolvePaths(base string) {
	if c.OutputDir == "" {
		c.OutputDir = "out"
	}
	c.OutputDir = resolve(base, c.OutputDir)
	c.Store = resolve(base, c.Store)
	for i := range c.Documents {
		c.Documents[i].Source = resolve(base, c.Documents[i].Source)
		c.Documents[i].Rows = resolve(base, c.Documents[i].Rows)
		c.Documents[i].Page = resolve(base, c.Documents[i].Page)
	}
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
