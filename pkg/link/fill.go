// Package link attaches outbound references to the nodes of a parsed
// document.
package link

import (
	"strings"

	"github.com/coolbeans/lawlink/pkg/node"
)

// SkipReason explains why a fill row contributed no references.
type SkipReason string

const (
	SkipNoNode       SkipReason = "no matching node"
	SkipEmptyPayload SkipReason = "empty label or payload"
)

// previewLength caps the payload preview kept for skipped rows.
const previewLength = 100

// Row is one reference-fill input.
type Row struct {
	Index         int
	TargetID      string
	Label         string
	OriginalLabel string
	Payload       node.Collection
	PayloadCell   string
}

// EffectiveLabel returns the label, falling back to the original label when
// the label is blank.
func (r Row) EffectiveLabel() string {
	if label := strings.TrimSpace(r.Label); label != "" {
		return label
	}
	return strings.TrimSpace(r.OriginalLabel)
}

// Skip records a row that was not applied.
type Skip struct {
	Row      int        `json:"row"`
	TargetID string     `json:"id"`
	Label    string     `json:"label"`
	Preview  string     `json:"json_preview"`
	Reason   SkipReason `json:"reason"`
}

// Report summarizes a fill pass.
type Report struct {
	UpdatedNodes int    `json:"updated_nodes"`
	AddedRefs    int    `json:"added_refs"`
	Skipped      []Skip `json:"skipped,omitempty"`
}

// Count returns the number of skipped rows with the given reason.
func (r Report) Count(reason SkipReason) int {
	count := 0
	for _, skip := range r.Skipped {
		if skip.Reason == reason {
			count++
		}
	}
	return count
}

// Fill appends references described by rows to the matching nodes of main,
// modifying them in place. A reference is added only when the node has no
// reference with the same label, target id and document title, so applying
// the same rows again adds nothing.
//
// Rows without a target id are ignored. Rows with an empty label or payload
// and rows whose target id names no node are recorded in the report and
// otherwise ignored.
func Fill(main node.Collection, rows []Row) Report {
	var report Report
	index := main.Index()

	for _, row := range rows {
		targetID := strings.TrimSpace(row.TargetID)
		if targetID == "" {
			continue
		}

		label := row.EffectiveLabel()
		if label == "" || len(row.Payload) == 0 {
			report.Skipped = append(report.Skipped, newSkip(row, targetID, label, SkipEmptyPayload))
			continue
		}

		target, found := index[targetID]
		if !found {
			report.Skipped = append(report.Skipped, newSkip(row, targetID, label, SkipNoNode))
			continue
		}

		base := target.Common()
		if base.Refs == nil {
			base.Refs = []node.Reference{}
		}

		added := 0
		for _, linked := range row.Payload {
			linkedID := strings.TrimSpace(linked.Common().ID)
			if linkedID == "" {
				continue
			}
			reference := node.Reference{
				Label:         label,
				DocumentTitle: GuessTitle(linked),
				TargetID:      linkedID,
			}
			if containsReference(base.Refs, reference) {
				continue
			}
			base.Refs = append(base.Refs, reference)
			added++
		}

		if added > 0 {
			report.UpdatedNodes++
			report.AddedRefs += added
		}
	}
	return report
}

// GuessTitle names the document a linked node belongs to: its document
// title, else its text, else the part of its id before the first "-".
func GuessTitle(linked node.Node) string {
	base := linked.Common()
	if title := strings.TrimSpace(base.DocumentTitle); title != "" {
		return title
	}
	if text := strings.TrimSpace(base.Text); text != "" {
		return text
	}
	id := strings.TrimSpace(base.ID)
	if prefix, _, found := strings.Cut(id, "-"); found && prefix != "" {
		return prefix
	}
	return id
}

func containsReference(references []node.Reference, reference node.Reference) bool {
	for _, existing := range references {
		if existing.Same(reference) {
			return true
		}
	}
	return false
}

func newSkip(row Row, targetID, label string, reason SkipReason) Skip {
	preview := []rune(row.PayloadCell)
	if len(preview) > previewLength {
		preview = preview[:previewLength]
	}
	return Skip{Row: row.Index, TargetID: targetID, Label: label, Preview: string(preview), Reason: reason}
}
