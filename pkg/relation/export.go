// Package relation flattens a linked collection into one row per
// (source node, reference) pair.
package relation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/coolbeans/lawlink/pkg/node"
)

// Columns is the stable column order of exported relation tables.
var Columns = []string{
	"src_id",
	"src_law_title",
	"src_level",
	"src_number",
	"src_text",
	"ref_index",
	"ref_label",
	"ref_law_title",
	"ref_id",
	"ref_text",
	"ref_found",
}

// Row is one exported relation.
type Row struct {
	SourceID            string `json:"src_id"`
	SourceDocumentTitle string `json:"src_law_title"`
	SourceLevel         string `json:"src_level"`
	SourceNumber        string `json:"src_number"`
	SourceText          string `json:"src_text"`
	RefIndex            int    `json:"ref_index"`
	RefLabel            string `json:"ref_label"`
	RefDocumentTitle    string `json:"ref_law_title"`
	RefID               string `json:"ref_id"`
	RefText             string `json:"ref_text"`
	RefFound            bool   `json:"ref_found"`
}

// Values returns the row's cells in Columns order.
func (r Row) Values() []string {
	found := "False"
	if r.RefFound {
		found = "True"
	}
	return []string{
		r.SourceID,
		r.SourceDocumentTitle,
		r.SourceLevel,
		r.SourceNumber,
		r.SourceText,
		strconv.Itoa(r.RefIndex),
		r.RefLabel,
		r.RefDocumentTitle,
		r.RefID,
		r.RefText,
		found,
	}
}

// Options tunes an export. A zero limit disables truncation.
type Options struct {
	TruncateSourceText  int
	TruncateRefText     int
	CaseSensitiveLabels bool
}

// Stats counts rows before and after per-source label dedup.
type Stats struct {
	BeforeDedup int `json:"before_dedup"`
	AfterDedup  int `json:"after_dedup"`
}

// Export builds relation rows for every node with references. Within one
// source node a label is reported once. Labels are compared trimmed and
// lowercased, or exactly as written when CaseSensitiveLabels is set.
func Export(nodes node.Collection, opts Options) ([]Row, Stats) {
	index := make(map[string]node.Node, len(nodes))
	for _, n := range nodes {
		if id := n.Common().ID; id != "" {
			index[id] = n
		}
	}

	var rows []Row
	for _, n := range nodes {
		if !node.HasRefs(n) {
			continue
		}
		base := n.Common()
		level, number := levelAndNumber(n)
		sourceText := truncate(base.Text, opts.TruncateSourceText)

		for i, reference := range base.Refs {
			row := Row{
				SourceID:            base.ID,
				SourceDocumentTitle: base.DocumentTitle,
				SourceLevel:         level,
				SourceNumber:        number,
				SourceText:          sourceText,
				RefIndex:            i + 1,
				RefLabel:            reference.Label,
				RefDocumentTitle:    reference.DocumentTitle,
				RefID:               reference.TargetID,
			}
			if target, found := index[reference.TargetID]; found {
				row.RefFound = true
				row.RefText = truncate(target.Common().Text, opts.TruncateRefText)
			}
			rows = append(rows, row)
		}
	}

	stats := Stats{BeforeDedup: len(rows)}
	rows = dedupLabels(rows, opts.CaseSensitiveLabels)
	stats.AfterDedup = len(rows)
	return rows, stats
}

type sourceLabel struct {
	id, title, level, number, text, label string
}

func dedupLabels(rows []Row, caseSensitive bool) []Row {
	seen := make(map[sourceLabel]bool, len(rows))
	kept := make([]Row, 0, len(rows))
	for _, row := range rows {
		label := row.RefLabel
		if !caseSensitive {
			label = strings.ToLower(strings.TrimSpace(label))
		}
		key := sourceLabel{
			id:     row.SourceID,
			title:  row.SourceDocumentTitle,
			level:  row.SourceLevel,
			number: row.SourceNumber,
			text:   row.SourceText,
			label:  label,
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, row)
	}
	return kept
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + " …"
}

// levelAndNumber reads the level and number of a node. Raw records carry
// them only in their serialized form; decoded nodes report the values
// exactly as they were read.
func levelAndNumber(n node.Node) (string, string) {
	var fields struct {
		Level  any `json:"level"`
		Number any `json:"number"`
	}
	if raw, ok := n.(*node.Raw); ok {
		if err := json.Unmarshal(raw.Data, &fields); err != nil {
			return "", ""
		}
		return scalar(fields.Level), scalar(fields.Number)
	}

	level, number := string(n.Level()), n.Number()
	if source := n.Common().Source(); source != nil && json.Unmarshal(source, &fields) == nil {
		if fields.Level != nil {
			level = scalar(fields.Level)
		}
		if fields.Number != nil {
			number = scalar(fields.Number)
		}
	}
	return level, number
}

func scalar(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
