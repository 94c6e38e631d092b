// Package source loads the raw text of statute documents from text,
// Markdown, PDF, DOCX and HTML files.
package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Loader extracts plain text from a document. Line breaks of the source are
// kept, since article and paragraph markers are recognized at line starts.
type Loader interface {
	Load(r io.Reader) (string, error)
}

// loaders maps each supported file extension to its loader. Files without
// an extension are read as plain text.
var loaders = map[string]func() Loader{
	"":          func() Loader { return &TextLoader{} },
	".txt":      func() Loader { return &TextLoader{} },
	".md":       func() Loader { return &MarkdownLoader{} },
	".markdown": func() Loader { return &MarkdownLoader{} },
	".html":     func() Loader { return &HTMLLoader{} },
	".htm":      func() Loader { return &HTMLLoader{} },
	".pdf":      func() Loader { return &PDFLoader{} },
	".docx":     func() Loader { return &DOCXLoader{} },
}

// SupportedExtensions returns the file extensions ForFile accepts, sorted.
func SupportedExtensions() []string {
	extensions := make([]string, 0, len(loaders))
	for ext := range loaders {
		if ext != "" {
			extensions = append(extensions, ext)
		}
	}
	sort.Strings(extensions)
	return extensions
}

// ForFile returns the loader for a filename's extension.
func ForFile(filename string) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	newLoader, ok := loaders[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file extension: %s (supported: %s)", ext, strings.Join(SupportedExtensions(), ", "))
	}
	return newLoader(), nil
}

// LoadFile reads a document's text with the loader for its extension.
func LoadFile(path string) (string, error) {
	loader, err := ForFile(path)
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening source: %w", err)
	}
	defer f.Close()

	text, err := loader.Load(f)
	if err != nil {
		return "", fmt.Errorf("loading %s: %w", filepath.Base(path), err)
	}
	return text, nil
}

// spoolToTemp copies r into a temporary file for libraries that need random
// access. The caller removes the returned path.
func spoolToTemp(r io.Reader, pattern string) (*os.File, int64, error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return nil, 0, fmt.Errorf("create temp file: %w", err)
	}
	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, 0, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, 0, fmt.Errorf("seek temp file: %w", err)
	}
	return tmp, size, nil
}
