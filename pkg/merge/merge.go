// Package merge appends linked payloads to a document collection and
// collapses nodes that share an id.
package merge

import "github.com/coolbeans/lawlink/pkg/node"

// MergeStats describes a merge.
type MergeStats struct {
	Original        int `json:"original"`
	ScannedPayloads int `json:"scanned_payloads"`
	NonEmpty        int `json:"non_empty_payloads"`
	Added           int `json:"added"`
	Total           int `json:"total"`
}

// Merge returns main followed by every payload node, verbatim and in order.
// No id checks are made; duplicates are left for Dedup.
func Merge(main node.Collection, payloads []node.Collection) (node.Collection, MergeStats) {
	stats := MergeStats{Original: len(main), ScannedPayloads: len(payloads)}

	merged := make(node.Collection, 0, len(main))
	merged = append(merged, main...)
	for _, payload := range payloads {
		if len(payload) == 0 {
			continue
		}
		stats.NonEmpty++
		stats.Added += len(payload)
		merged = append(merged, payload...)
	}

	stats.Total = len(merged)
	return merged, stats
}

// DedupStats describes a dedup pass.
type DedupStats struct {
	Replaced int `json:"replaced"`
	Skipped  int `json:"skipped"`
	Orphans  int `json:"orphans"`
	TotalIn  int `json:"total_in"`
	TotalOut int `json:"total_out"`
}

// Removed returns the number of nodes dropped.
func (s DedupStats) Removed() int {
	return s.TotalIn - s.TotalOut
}

// Dedup keeps one node per id. The first node seen for an id holds its
// position; a later node replaces it only when the kept node has no
// references and the later one has some. Records without an id pass through
// untouched; records whose id is null are grouped together.
func Dedup(nodes node.Collection) (node.Collection, DedupStats) {
	stats := DedupStats{TotalIn: len(nodes)}

	kept := make(node.Collection, 0, len(nodes))
	positions := make(map[string]int)

	for _, n := range nodes {
		key, ok := node.DedupKey(n)
		if !ok {
			kept = append(kept, n)
			stats.Orphans++
			continue
		}

		position, seen := positions[key]
		if !seen {
			positions[key] = len(kept)
			kept = append(kept, n)
			continue
		}

		if !node.HasRefs(kept[position]) && node.HasRefs(n) {
			kept[position] = n
			stats.Replaced++
			continue
		}
		stats.Skipped++
	}

	stats.TotalOut = len(kept)
	return kept, stats
}
