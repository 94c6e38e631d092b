package graph

import (
	"fmt"
	"strings"

	"github.com/coolbeans/lawlink/pkg/node"
)

// FromCollection builds the graph of a linked collection: each node's type,
// document title, number and parent, plus one refersTo edge per reference
// target. Records without an id are left out.
func FromCollection(nodes node.Collection) *Graph {
	g := New()
	var triples []Triple
	for _, n := range nodes {
		base := n.Common()
		id := strings.TrimSpace(base.ID)
		if id == "" {
			continue
		}
		subject := NodeIRI(id)

		triples = append(triples, NewTriple(subject, RDFType, classOf(n.Level())))
		if title := strings.TrimSpace(base.DocumentTitle); title != "" {
			triples = append(triples, NewLiteral(subject, PropTitle, title))
		}
		if number := n.Number(); number != "" {
			triples = append(triples, NewLiteral(subject, PropNumber, number))
		}
		if parent := n.ParentID(); parent != "" {
			triples = append(triples, NewTriple(subject, PropPartOf, NodeIRI(parent)))
		}
		for _, reference := range base.Refs {
			target := strings.TrimSpace(reference.TargetID)
			if target == "" {
				continue
			}
			triples = append(triples, NewTriple(subject, PropRefersTo, NodeIRI(target)))
			if label := strings.TrimSpace(reference.Label); label != "" {
				triples = append(triples, NewLiteral(subject, PropLinkLabel, label))
			}
		}
	}
	g.BulkAdd(triples)
	return g
}

// Referrers returns the ids of nodes with a reference to id.
func (g *Graph) Referrers(id string) []string {
	return subjectIDs(g.Find(Pattern{Predicate: PropRefersTo, Object: NodeIRI(id)}))
}

// Targets returns the ids a node refers to.
func (g *Graph) Targets(id string) []string {
	return objectIDs(g.Find(Pattern{Subject: NodeIRI(id), Predicate: PropRefersTo}))
}

// Parts returns the ids of a node's direct children.
func (g *Graph) Parts(id string) []string {
	return subjectIDs(g.Find(Pattern{Predicate: PropPartOf, Object: NodeIRI(id)}))
}

func subjectIDs(triples []Triple) []string {
	ids := make([]string, 0, len(triples))
	for _, t := range triples {
		if id, ok := NodeID(t.Subject); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func objectIDs(triples []Triple) []string {
	ids := make([]string, 0, len(triples))
	for _, t := range triples {
		if id, ok := NodeID(t.Object); ok && !t.Literal {
			ids = append(ids, id)
		}
	}
	return ids
}

// Names accepted by Related.
const (
	QueryReferrers = "referrers"
	QueryTargets   = "targets"
	QueryParts     = "parts"
)

// Related answers a named neighbour query for id.
func (g *Graph) Related(query, id string) ([]string, error) {
	switch query {
	case QueryReferrers:
		return g.Referrers(id), nil
	case QueryTargets:
		return g.Targets(id), nil
	case QueryParts:
		return g.Parts(id), nil
	}
	return nil, fmt.Errorf("unknown graph query %q (use %s, %s or %s)", query, QueryReferrers, QueryTargets, QueryParts)
}

// Has reports whether id is a node of the graph.
func (g *Graph) Has(id string) bool {
	return len(g.Find(Pattern{Subject: NodeIRI(id), Predicate: RDFType})) > 0
}
