package source

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownLoader reads statute text kept as Markdown. Headings and
// paragraphs become lines; ordered list items are written back with their
// "N. " markers so item detection still sees them.
type MarkdownLoader struct{}

func (l *MarkdownLoader) Load(r io.Reader) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var lines []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		lines = appendBlock(lines, n, src)
	}
	return strings.Join(lines, "\n"), nil
}

func appendBlock(lines []string, n ast.Node, src []byte) []string {
	switch block := n.(type) {
	case *ast.List:
		number := block.Start
		for item := block.FirstChild(); item != nil; item = item.NextSibling() {
			var itemLines []string
			for child := item.FirstChild(); child != nil; child = child.NextSibling() {
				itemLines = appendBlock(itemLines, child, src)
			}
			if len(itemLines) == 0 {
				itemLines = []string{""}
			}
			if block.IsOrdered() {
				itemLines[0] = fmt.Sprintf("%d. %s", number, itemLines[0])
				number++
			}
			lines = append(lines, itemLines...)
		}
		return lines
	case *ast.ThematicBreak:
		return lines
	}

	t := blockText(n, src)
	if t == "" {
		return lines
	}
	return append(lines, strings.Split(t, "\n")...)
}

// blockText gets the text content of a goldmark block, keeping soft and
// hard line breaks.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(blockText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
