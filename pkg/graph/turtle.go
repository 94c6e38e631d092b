package graph

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// PrefixMapping associates a short prefix label with its namespace.
type PrefixMapping struct {
	Prefix    string
	Namespace string
}

// DefaultPrefixes are declared at the top of every Turtle document.
var DefaultPrefixes = []PrefixMapping{
	{Prefix: "dc", Namespace: NamespaceDC},
	{Prefix: "ll", Namespace: NamespaceLaw},
	{Prefix: "n", Namespace: NamespaceNode},
	{Prefix: "rdf", Namespace: NamespaceRDF},
}

// WriteTurtle writes the graph as Turtle, one block per subject. Subjects
// come in sorted order and rdf:type is listed first.
func WriteTurtle(w io.Writer, g *Graph) error {
	out := bufio.NewWriter(w)
	for _, mapping := range DefaultPrefixes {
		fmt.Fprintf(out, "@prefix %s: <%s> .\n", mapping.Prefix, mapping.Namespace)
	}

	bySubject := make(map[string][]Triple)
	for _, t := range g.All() {
		bySubject[t.Subject] = append(bySubject[t.Subject], t)
	}

	for _, subject := range g.Subjects() {
		out.WriteString("\n")
		writeSubjectGroup(out, subject, bySubject[subject])
	}
	return out.Flush()
}

// WriteNTriples writes the graph as sorted N-Triples lines.
func WriteNTriples(w io.Writer, g *Graph) error {
	out := bufio.NewWriter(w)
	for _, t := range g.All() {
		out.WriteString(t.NTriples())
		out.WriteString("\n")
	}
	return out.Flush()
}

func writeSubjectGroup(out *bufio.Writer, subject string, triples []Triple) {
	sort.SliceStable(triples, func(i, j int) bool {
		return triples[i].Predicate == RDFType && triples[j].Predicate != RDFType
	})

	out.WriteString(formatResource(subject))
	previous := ""
	for i, t := range triples {
		switch {
		case i == 0:
			out.WriteString(" " + formatPredicate(t.Predicate) + " ")
		case t.Predicate == previous:
			out.WriteString(" ,\n        ")
		default:
			out.WriteString(" ;\n    " + formatPredicate(t.Predicate) + " ")
		}
		if t.Literal {
			out.WriteString(formatLiteral(t.Object))
		} else {
			out.WriteString(formatResource(t.Object))
		}
		previous = t.Predicate
	}
	out.WriteString(" .\n")
}

// formatPredicate uses the "a" shorthand for rdf:type.
func formatPredicate(predicate string) string {
	if predicate == RDFType {
		return "a"
	}
	return formatResource(predicate)
}

// formatResource compacts an IRI to a prefixed name when its local part is
// a plain name, and writes it in angle brackets otherwise.
func formatResource(iri string) string {
	bestPrefix, bestNamespace := "", ""
	for _, mapping := range DefaultPrefixes {
		if strings.HasPrefix(iri, mapping.Namespace) && len(mapping.Namespace) > len(bestNamespace) {
			if isValidLocalName(iri[len(mapping.Namespace):]) {
				bestPrefix, bestNamespace = mapping.Prefix, mapping.Namespace
			}
		}
	}
	if bestNamespace != "" {
		return bestPrefix + ":" + iri[len(bestNamespace):]
	}
	return "<" + escapeIRI(iri) + ">"
}

// isValidLocalName accepts ASCII letters, digits and underscores, which is
// a safe subset of Turtle local names.
func isValidLocalName(localName string) bool {
	if localName == "" {
		return false
	}
	for _, char := range localName {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '_') {
			return false
		}
	}
	return true
}

func formatLiteral(value string) string {
	return `"` + escapeLiteral(value) + `"`
}

// escapeLiteral escapes special characters per the Turtle string grammar.
func escapeLiteral(value string) string {
	var builder strings.Builder
	builder.Grow(len(value) + len(value)/8)

	for _, char := range value {
		switch char {
		case '\\':
			builder.WriteString(`\\`)
		case '"':
			builder.WriteString(`\"`)
		case '\n':
			builder.WriteString(`\n`)
		case '\r':
			builder.WriteString(`\r`)
		case '\t':
			builder.WriteString(`\t`)
		default:
			builder.WriteRune(char)
		}
	}
	return builder.String()
}

// escapeIRI escapes characters not allowed in IRIs within angle brackets.
func escapeIRI(iri string) string {
	var builder strings.Builder
	builder.Grow(len(iri))

	for _, char := range iri {
		switch char {
		case '<':
			builder.WriteString(`\u003C`)
		case '>':
			builder.WriteString(`\u003E`)
		case '"':
			builder.WriteString(`\u0022`)
		case ' ':
			builder.WriteString(`\u0020`)
		case '{':
			builder.WriteString(`\u007B`)
		case '}':
			builder.WriteString(`\u007D`)
		default:
			builder.WriteRune(char)
		}
	}
	return builder.String()
}
