package graph

import (
	"net/url"
	"strings"

	"github.com/coolbeans/lawlink/pkg/node"
)

// Namespaces used by the reference graph.
const (
	NamespaceLaw  = "https://lawlink.dev/ontology#"
	NamespaceNode = "urn:lawlink:node:"
	NamespaceRDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NamespaceDC   = "http://purl.org/dc/terms/"
)

// Predicates.
const (
	RDFType       = NamespaceRDF + "type"
	PropTitle     = NamespaceDC + "title"
	PropNumber    = NamespaceLaw + "number"
	PropPartOf    = NamespaceLaw + "partOf"
	PropRefersTo  = NamespaceLaw + "refersTo"
	PropLinkLabel = NamespaceLaw + "linkLabel"
)

// Classes.
const (
	ClassArticle    = NamespaceLaw + "Article"
	ClassParagraph  = NamespaceLaw + "Paragraph"
	ClassItem       = NamespaceLaw + "Item"
	ClassAttachment = NamespaceLaw + "Attachment"
	ClassNode       = NamespaceLaw + "Node"
)

// NodeIRI returns the IRI naming a node id.
func NodeIRI(id string) string {
	return NamespaceNode + url.PathEscape(id)
}

// NodeID recovers a node id from its IRI. ok is false for IRIs outside
// the node namespace.
func NodeID(iri string) (string, bool) {
	escaped, found := strings.CutPrefix(iri, NamespaceNode)
	if !found {
		return "", false
	}
	id, err := url.PathUnescape(escaped)
	if err != nil {
		return "", false
	}
	return id, true
}

func classOf(level node.Level) string {
	switch level {
	case node.LevelArticle:
		return ClassArticle
	case node.LevelParagraph:
		return ClassParagraph
	case node.LevelItem:
		return ClassItem
	case node.LevelOther:
		return ClassAttachment
	}
	return ClassNode
}
