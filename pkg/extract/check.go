package extract

import (
	"fmt"
	"regexp"

	"github.com/coolbeans/lawlink/pkg/node"
)

// IssueKind classifies a structural problem found in a parsed collection.
type IssueKind string

const (
	IssueDuplicateID      IssueKind = "duplicate_id"
	IssueMissingParent    IssueKind = "missing_parent"
	IssueWrongParentLevel IssueKind = "wrong_parent_level"
	IssueChildMismatch    IssueKind = "child_mismatch"
	IssueItemInParagraph  IssueKind = "item_marker_in_paragraph"
)

// Issue is one structural problem.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	NodeID  string    `json:"node_id"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Kind, i.NodeID, i.Message)
}

var paragraphItemPattern = regexp.MustCompile(`(?m)^\s*(\d+)\.\s`)

// Check verifies the tree invariants of a freshly parsed collection: ids are
// unique, every paragraph hangs off an article and every item off a
// paragraph, children lists mirror parent links in order, and no paragraph
// text still carries an item marker.
func Check(collection node.Collection) []Issue {
	var issues []Issue
	index := make(map[string]node.Node, len(collection))
	childrenOf := make(map[string][]string)

	for _, n := range collection {
		if _, isRaw := n.(*node.Raw); isRaw {
			continue
		}
		id := n.Common().ID
		if _, exists := index[id]; exists {
			issues = append(issues, Issue{Kind: IssueDuplicateID, NodeID: id, Message: "id appears more than once"})
			continue
		}
		index[id] = n
		if parent := n.ParentID(); parent != "" {
			childrenOf[parent] = append(childrenOf[parent], id)
		}
	}

	for _, n := range collection {
		switch typed := n.(type) {
		case *node.Paragraph:
			issues = append(issues, checkParent(index, typed.ID, typed.Parent, node.LevelArticle)...)
			if paragraphItemPattern.MatchString(typed.Text) {
				issues = append(issues, Issue{Kind: IssueItemInParagraph, NodeID: typed.ID, Message: "paragraph text still contains an item marker"})
			}
		case *node.Item:
			issues = append(issues, checkParent(index, typed.ID, typed.Parent, node.LevelParagraph)...)
		}
	}

	for _, n := range collection {
		id := n.Common().ID
		if index[id] != n {
			continue
		}
		if !sameOrder(n.ChildIDs(), childrenOf[id]) {
			issues = append(issues, Issue{
				Kind:    IssueChildMismatch,
				NodeID:  id,
				Message: fmt.Sprintf("children %v do not match parent links %v", n.ChildIDs(), childrenOf[id]),
			})
		}
	}

	return issues
}

func checkParent(index map[string]node.Node, id, parentID string, want node.Level) []Issue {
	parent, found := index[parentID]
	if !found {
		return []Issue{{Kind: IssueMissingParent, NodeID: id, Message: fmt.Sprintf("parent %q not found", parentID)}}
	}
	if parent.Level() != want {
		return []Issue{{
			Kind:    IssueWrongParentLevel,
			NodeID:  id,
			Message: fmt.Sprintf("parent %q is %s, want %s", parentID, parent.Level().Name(), want.Name()),
		}}
	}
	return nil
}

func sameOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
