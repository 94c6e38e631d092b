package source

import (
	"fmt"
	"io"

	"github.com/coolbeans/lawlink/pkg/table"
)

// TextLoader reads plain text in UTF-8 or a Korean legacy encoding.
type TextLoader struct{}

func (l *TextLoader) Load(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return table.DecodeText(data, table.DetectEncoding(data))
}
