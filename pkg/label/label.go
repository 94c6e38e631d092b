// Package label gives every resolved link row a distinct display label and
// the id of the node its label was found in.
package label

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/coolbeans/lawlink/pkg/node"
)

var trailingIndexPattern = regexp.MustCompile(`\(\d+\)$`)

// Row is a label row after matching.
type Row struct {
	Article   string // article locator as scraped
	Paragraph string
	Item      string
	Label     string
}

// Labeled is a row with its final label and target node id.
type Labeled struct {
	Row
	OriginalLabel string
	TargetID      string
}

// StripTrailingIndex removes a trailing "(n)" occurrence index from a label.
func StripTrailingIndex(label string) string {
	return strings.TrimSpace(trailingIndexPattern.ReplaceAllString(label, ""))
}

// CleanNumber normalizes a spreadsheet number cell: "2.0" and " 2 " become
// "2"; non-integral values are returned trimmed.
func CleanNumber(value string) string {
	s := strings.TrimSpace(value)
	if s == "" {
		return ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return s
	}
	return strconv.FormatInt(int64(f), 10)
}

// ArticleSegment converts an article locator to the form used inside node
// ids: "4의2" becomes "4_2" and "3.0" becomes "3". Locators that are not
// article numbers are returned trimmed.
func ArticleSegment(locator string) string {
	s := strings.TrimSpace(locator)
	if key, err := node.ParseArticleKey(CleanNumber(s)); err == nil {
		return key.Underscore()
	}
	return s
}

// Assign computes labels and target ids for the rows of one document.
//
// Rows sharing article, paragraph, item and base label are numbered
// "label(1)", "label(2)", ... in row order; a label occurring once in its
// group keeps its base form. The target id is built from documentTitle and
// the row's article, paragraph and item, and is empty when the article is.
func Assign(documentTitle string, rows []Row) []Labeled {
	type groupKey struct {
		article, paragraph, item, base string
	}

	bases := make([]string, len(rows))
	keys := make([]groupKey, len(rows))
	sizes := make(map[groupKey]int)
	for i, row := range rows {
		bases[i] = StripTrailingIndex(row.Label)
		keys[i] = groupKey{
			article:   strings.TrimSpace(row.Article),
			paragraph: strings.TrimSpace(row.Paragraph),
			item:      strings.TrimSpace(row.Item),
			base:      bases[i],
		}
		sizes[keys[i]]++
	}

	seen := make(map[groupKey]int)
	labeled := make([]Labeled, 0, len(rows))
	for i, row := range rows {
		key := keys[i]
		seen[key]++

		text := bases[i]
		if sizes[key] > 1 {
			text = fmt.Sprintf("%s(%d)", bases[i], seen[key])
		}

		out := Labeled{
			Row:           row,
			OriginalLabel: row.Label,
			TargetID: node.TargetID(
				documentTitle,
				ArticleSegment(row.Article),
				CleanNumber(row.Paragraph),
				CleanNumber(row.Item),
			),
		}
		out.Label = text
		labeled = append(labeled, out)
	}
	return labeled
}
