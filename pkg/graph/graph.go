package graph

import (
	"fmt"
	"sort"
	"sync"
)

// term is an object value tagged with its kind, so a literal never
// collides with an IRI of the same spelling.
type term struct {
	value   string
	literal bool
}

// Stats counts the contents of a graph.
type Stats struct {
	Triples         int            `json:"triples"`
	Subjects        int            `json:"subjects"`
	Predicates      int            `json:"predicates"`
	PredicateCounts map[string]int `json:"predicate_counts"`
}

// Graph is an in-memory triple set with three indexes:
//   - SPO: subject -> predicate -> object (facts about a node)
//   - POS: predicate -> object -> subject (nodes with property=value)
//   - OSP: object -> subject -> predicate (nodes pointing at a node)
type Graph struct {
	mu sync.RWMutex

	spo map[string]map[string]map[term]bool
	pos map[string]map[term]map[string]bool
	osp map[term]map[string]map[string]bool

	count           int
	predicateCounts map[string]int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		spo:             make(map[string]map[string]map[term]bool),
		pos:             make(map[string]map[term]map[string]bool),
		osp:             make(map[term]map[string]map[string]bool),
		predicateCounts: make(map[string]int),
	}
}

// Add inserts a triple. Adding an existing triple is a no-op.
func (g *Graph) Add(t Triple) error {
	if !t.IsValid() {
		return fmt.Errorf("triple components cannot be empty")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.addUnsafe(t)
	return nil
}

// BulkAdd inserts triples under one lock, skipping invalid ones. It returns
// the number of triples that were new.
func (g *Graph) BulkAdd(triples []Triple) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	added := 0
	for _, t := range triples {
		if t.IsValid() && g.addUnsafe(t) {
			added++
		}
	}
	return added
}

func (g *Graph) addUnsafe(t Triple) bool {
	object := term{value: t.Object, literal: t.Literal}
	if g.spo[t.Subject][t.Predicate][object] {
		return false
	}

	if g.spo[t.Subject] == nil {
		g.spo[t.Subject] = make(map[string]map[term]bool)
	}
	if g.spo[t.Subject][t.Predicate] == nil {
		g.spo[t.Subject][t.Predicate] = make(map[term]bool)
	}
	g.spo[t.Subject][t.Predicate][object] = true

	if g.pos[t.Predicate] == nil {
		g.pos[t.Predicate] = make(map[term]map[string]bool)
	}
	if g.pos[t.Predicate][object] == nil {
		g.pos[t.Predicate][object] = make(map[string]bool)
	}
	g.pos[t.Predicate][object][t.Subject] = true

	if g.osp[object] == nil {
		g.osp[object] = make(map[string]map[string]bool)
	}
	if g.osp[object][t.Subject] == nil {
		g.osp[object][t.Subject] = make(map[string]bool)
	}
	g.osp[object][t.Subject][t.Predicate] = true

	g.predicateCounts[t.Predicate]++
	g.count++
	return true
}

// Find returns the triples matching a pattern, sorted by subject,
// predicate and object. An object in the pattern matches IRIs and literals
// alike.
func (g *Graph) Find(p Pattern) []Triple {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var results []Triple
	switch {
	case p.Subject != "":
		for predicate, objects := range g.spo[p.Subject] {
			if p.Predicate != "" && predicate != p.Predicate {
				continue
			}
			for object := range objects {
				if p.Object == "" || object.value == p.Object {
					results = append(results, Triple{p.Subject, predicate, object.value, object.literal})
				}
			}
		}
	case p.Object != "":
		for _, object := range []term{{value: p.Object}, {value: p.Object, literal: true}} {
			for subject, predicates := range g.osp[object] {
				for predicate := range predicates {
					if p.Predicate == "" || predicate == p.Predicate {
						results = append(results, Triple{subject, predicate, object.value, object.literal})
					}
				}
			}
		}
	case p.Predicate != "":
		for object, subjects := range g.pos[p.Predicate] {
			for subject := range subjects {
				results = append(results, Triple{subject, p.Predicate, object.value, object.literal})
			}
		}
	default:
		for subject, predicates := range g.spo {
			for predicate, objects := range predicates {
				for object := range objects {
					results = append(results, Triple{subject, predicate, object.value, object.literal})
				}
			}
		}
	}

	sortTriples(results)
	return results
}

// All returns every triple in sorted order.
func (g *Graph) All() []Triple {
	return g.Find(Pattern{})
}

// Count returns the number of triples.
func (g *Graph) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.count
}

// Subjects returns the sorted subjects of the graph.
func (g *Graph) Subjects() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	subjects := make([]string, 0, len(g.spo))
	for subject := range g.spo {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)
	return subjects
}

// Stats returns counts of the graph's contents.
func (g *Graph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	predicateCounts := make(map[string]int, len(g.predicateCounts))
	for predicate, count := range g.predicateCounts {
		predicateCounts[predicate] = count
	}
	return Stats{
		Triples:         g.count,
		Subjects:        len(g.spo),
		Predicates:      len(g.pos),
		PredicateCounts: predicateCounts,
	}
}

func sortTriples(triples []Triple) {
	sort.Slice(triples, func(i, j int) bool {
		a, b := triples[i], triples[j]
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.Predicate != b.Predicate {
			return a.Predicate < b.Predicate
		}
		if a.Object != b.Object {
			return a.Object < b.Object
		}
		return !a.Literal && b.Literal
	})
}
