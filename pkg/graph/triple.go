// Package graph holds the reference graph of linked statute nodes as RDF
// triples and writes it as Turtle or N-Triples.
package graph

import "fmt"

// Triple is one subject-predicate-object statement. Subjects and
// predicates are IRIs; the object is an IRI unless Literal is set.
type Triple struct {
	Subject   string
	Predicate string
	Object    string
	Literal   bool
}

// NewTriple returns a triple whose object is an IRI.
func NewTriple(subject, predicate, object string) Triple {
	return Triple{Subject: subject, Predicate: predicate, Object: object}
}

// NewLiteral returns a triple whose object is a plain string literal.
func NewLiteral(subject, predicate, value string) Triple {
	return Triple{Subject: subject, Predicate: predicate, Object: value, Literal: true}
}

// IsValid returns true if all components are non-empty.
func (t Triple) IsValid() bool {
	return t.Subject != "" && t.Predicate != "" && t.Object != ""
}

// NTriples returns the triple as one N-Triples line.
func (t Triple) NTriples() string {
	object := "<" + escapeIRI(t.Object) + ">"
	if t.Literal {
		object = `"` + escapeLiteral(t.Object) + `"`
	}
	return fmt.Sprintf("<%s> <%s> %s .", escapeIRI(t.Subject), escapeIRI(t.Predicate), object)
}

// Pattern selects triples; empty fields match anything.
type Pattern struct {
	Subject   string
	Predicate string
	Object    string
}

// Matches reports whether a triple fits the pattern.
func (p Pattern) Matches(t Triple) bool {
	if p.Subject != "" && p.Subject != t.Subject {
		return false
	}
	if p.Predicate != "" && p.Predicate != t.Predicate {
		return false
	}
	if p.Object != "" && p.Object != t.Object {
		return false
	}
	return true
}
