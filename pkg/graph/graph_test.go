package graph

import (
	"bytes"
	"strings"
	"testing"

	"github.com/coolbeans/lawlink/pkg/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linkedCollection() node.Collection {
	return node.Collection{
		&node.Article{
			Base:     node.Base{ID: "법-2", DocumentTitle: "법", Text: "제2조(정의)"},
			Key:      node.ArticleKey{Main: 2},
			Children: []string{"법-2(1)"},
		},
		&node.Paragraph{
			Base: node.Base{ID: "법-2(1)", DocumentTitle: "법", Text: "시행령 제3조에 따른다.", Refs: []node.Reference{
				{Label: "시행령 제3조", DocumentTitle: "시행령", TargetID: "시행령-3"},
				{Label: "시행령 제3조", DocumentTitle: "시행령", TargetID: "시행령-3(1)"},
			}},
			Num:    1,
			Parent: "법-2",
		},
		&node.Article{Base: node.Base{ID: "시행령-3", DocumentTitle: "시행령"}, Key: node.ArticleKey{Main: 3}},
		&node.Raw{Base: node.Base{Text: "no id"}},
	}
}

func TestAddIsIdempotent(t *testing.T) {
	g := New()
	require.NoError(t, g.Add(NewTriple("urn:a", PropRefersTo, "urn:b")))
	require.NoError(t, g.Add(NewTriple("urn:a", PropRefersTo, "urn:b")))
	assert.Equal(t, 1, g.Count())

	assert.Error(t, g.Add(NewTriple("", PropRefersTo, "urn:b")))
}

func TestLiteralAndIRIObjectsAreDistinct(t *testing.T) {
	g := New()
	added := g.BulkAdd([]Triple{
		NewTriple("urn:a", PropTitle, "urn:b"),
		NewLiteral("urn:a", PropTitle, "urn:b"),
	})
	assert.Equal(t, 2, added)

	found := g.Find(Pattern{Object: "urn:b"})
	require.Len(t, found, 2)
	assert.False(t, found[0].Literal)
	assert.True(t, found[1].Literal)
}

func TestFindByPattern(t *testing.T) {
	g := FromCollection(linkedCollection())

	testCases := []struct {
		name     string
		pattern  Pattern
		expected int
	}{
		{"subject", Pattern{Subject: NodeIRI("법-2(1)")}, 7},
		{"subject and predicate", Pattern{Subject: NodeIRI("법-2(1)"), Predicate: PropRefersTo}, 2},
		{"predicate", Pattern{Predicate: RDFType}, 3},
		{"object", Pattern{Object: ClassArticle}, 2},
		{"predicate and object", Pattern{Predicate: PropTitle, Object: "시행령"}, 1},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Len(t, g.Find(testCase.pattern), testCase.expected)
		})
	}
}

func TestFromCollectionEdges(t *testing.T) {
	g := FromCollection(linkedCollection())

	assert.Equal(t, []string{"법-2(1)"}, g.Referrers("시행령-3"))
	assert.Equal(t, []string{"법-2(1)"}, g.Referrers("시행령-3(1)"))
	assert.Empty(t, g.Referrers("법-2"))
	assert.ElementsMatch(t, []string{"시행령-3", "시행령-3(1)"}, g.Targets("법-2(1)"))
	assert.Equal(t, []string{"법-2(1)"}, g.Parts("법-2"))

	stats := g.Stats()
	assert.Equal(t, 3, stats.Subjects)
	assert.Equal(t, 2, stats.PredicateCounts[PropRefersTo])
	// Both references share a label.
	assert.Equal(t, 1, stats.PredicateCounts[PropLinkLabel])
}

func TestRelatedByName(t *testing.T) {
	g := FromCollection(linkedCollection())

	ids, err := g.Related(QueryParts, "법-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"법-2(1)"}, ids)

	ids, err = g.Related(QueryReferrers, "시행령-3")
	require.NoError(t, err)
	assert.Equal(t, []string{"법-2(1)"}, ids)

	_, err = g.Related("siblings", "법-2")
	assert.ErrorContains(t, err, "siblings")

	assert.True(t, g.Has("시행령-3"))
	assert.False(t, g.Has("시행령-3(1)"))
}

func TestNodeIRIRoundTrip(t *testing.T) {
	for _, id := range []string{"법-2(1)[3]", "산업안전보건법 시행령-4_2", "[별표 1] 기준"} {
		decoded, ok := NodeID(NodeIRI(id))
		require.True(t, ok, id)
		assert.Equal(t, id, decoded)
	}

	_, ok := NodeID(ClassArticle)
	assert.False(t, ok)
}

func TestWriteTurtle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTurtle(&buf, FromCollection(linkedCollection())))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "@prefix dc: <http://purl.org/dc/terms/> .\n"))
	assert.Contains(t, out, "<"+NodeIRI("법-2")+"> a ll:Article ;\n    dc:title \"법\" ;\n    ll:number \"2\" .\n")
	assert.Contains(t, out, "ll:refersTo <"+NodeIRI("시행령-3")+"> ,\n        <"+NodeIRI("시행령-3(1)")+">")
}

func TestWriteNTriples(t *testing.T) {
	g := New()
	g.BulkAdd([]Triple{
		NewLiteral("urn:a", PropTitle, "say \"hi\"\n"),
		NewTriple("urn:a", RDFType, ClassItem),
	})

	var buf bytes.Buffer
	require.NoError(t, WriteNTriples(&buf, g))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `<urn:a> <http://purl.org/dc/terms/title> "say \"hi\"\n" .`, lines[0])
	assert.Equal(t, "<urn:a> <"+RDFType+"> <"+ClassItem+"> .", lines[1])
}
