package merge

import (
	"strings"
	"testing"

	"github.com/coolbeans/lawlink/pkg/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bare(id string) *node.Article {
	return &node.Article{Base: node.Base{ID: id, Refs: []node.Reference{}}, Key: node.ArticleKey{Main: 1}}
}

func resolved(id, label string) *node.Article {
	return &node.Article{
		Base: node.Base{ID: id, Refs: []node.Reference{{Label: label, DocumentTitle: "시행령", TargetID: "시행령-1"}}},
		Key:  node.ArticleKey{Main: 1},
	}
}

func TestMergeAppendsVerbatim(t *testing.T) {
	main := node.Collection{bare("법-1"), bare("법-2")}
	payloads := []node.Collection{
		{bare("시행령-1")},
		nil,
		{bare("법-1"), node.NewOther("[별표 1] 기준")},
	}

	merged, stats := Merge(main, payloads)
	require.Len(t, merged, 5)
	assert.Same(t, main[0], merged[0])
	assert.Equal(t, "시행령-1", merged[2].Common().ID)
	assert.Equal(t, "법-1", merged[3].Common().ID)
	assert.Equal(t, MergeStats{Original: 2, ScannedPayloads: 3, NonEmpty: 2, Added: 3, Total: 5}, stats)
	assert.Len(t, main, 2)
}

func TestDedupPrefersResolvedCopy(t *testing.T) {
	withRefs := resolved("X-1", "a")
	withoutRefs := bare("X-1")

	for _, order := range []node.Collection{
		{withoutRefs, withRefs},
		{withRefs, withoutRefs},
	} {
		out, _ := Dedup(order)
		require.Len(t, out, 1)
		assert.Same(t, withRefs, out[0])
	}
}

func TestDedupKeepsFirstOnTie(t *testing.T) {
	first := resolved("X-1", "a")
	second := resolved("X-1", "b")
	out, stats := Dedup(node.Collection{first, second})
	require.Len(t, out, 1)
	assert.Same(t, first, out[0])
	assert.Equal(t, 1, stats.Skipped)

	emptyFirst := bare("Y-1")
	emptySecond := bare("Y-1")
	out, _ = Dedup(node.Collection{emptyFirst, emptySecond})
	require.Len(t, out, 1)
	assert.Same(t, emptyFirst, out[0])
}

func TestDedupKeepsPositionAndOrphans(t *testing.T) {
	orphan := &node.Raw{Data: []byte(`{"law_title":"no id"}`)}
	odd := &node.Raw{Base: node.Base{ID: "B", Refs: []node.Reference{{Label: "x", TargetID: "y"}}}, HasID: true, Data: []byte(`{"id":"B"}`)}
	nodes := node.Collection{
		bare("A"),
		orphan,
		bare("B"),
		orphan,
		resolved("A", "a"),
		odd,
		bare("C"),
	}

	out, stats := Dedup(nodes)
	ids := make([]string, 0, len(out))
	for _, n := range out {
		ids = append(ids, n.Common().ID)
	}
	assert.Equal(t, []string{"A", "", "B", "", "C"}, ids)
	assert.True(t, node.HasRefs(out[0]))
	assert.Same(t, odd, out[2])
	assert.Equal(t, DedupStats{Replaced: 2, Skipped: 0, Orphans: 2, TotalIn: 7, TotalOut: 5}, stats)
	assert.Equal(t, 2, stats.Removed())
}

func TestMergeKeepsPayloadRecordsByteForByte(t *testing.T) {
	records := []string{
		`{"id":"시행령-4_2","law_title":"시행령","level":"조","number":"4_2","parent_id":null,"Children_id":[],"text":"제4조의2","refs":[],"source_url":"http://x"}`,
		`{"id":"시행령-4_2(1)","law_title":"시행령","level":"항","number":"01","parent_id":"시행령-4_2","Children_id":[],"text":"① 본문","refs":[]}`,
	}
	payload, err := node.Decode([]byte("[" + strings.Join(records, ",") + "]"))
	require.NoError(t, err)
	require.IsType(t, &node.Article{}, payload[0])
	require.IsType(t, &node.Paragraph{}, payload[1])

	merged, _ := Merge(node.Collection{bare("법-1")}, []node.Collection{payload})
	deduped, _ := Dedup(merged)
	require.Len(t, deduped, 3)

	encoded, err := node.EncodeCompact(deduped[1:])
	require.NoError(t, err)
	assert.Equal(t, "["+strings.Join(records, ",")+"]", encoded)
}

func TestMergeOutputPatchesOnlyChangedFields(t *testing.T) {
	record := `{"number":"4_2","id":"시행령-4_2","level":"조","text":"제4조의2","source_url":"http://x"}`
	payload, err := node.Decode([]byte("[" + record + "]"))
	require.NoError(t, err)

	payload[0].Common().Refs = append(payload[0].Common().Refs, node.Reference{Label: "법", DocumentTitle: "법", TargetID: "법-1"})
	encoded, err := node.EncodeCompact(payload)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"number":"4_2","id":"시행령-4_2","level":"조","text":"제4조의2","source_url":"http://x","refs":[{"label":"법","law_title":"법","id":"법-1","relation":""}]}]`,
		encoded)
}

func TestDedupGroupsNullIDs(t *testing.T) {
	nodes, err := node.Decode([]byte(`[
		{"id":null,"text":"first"},
		{"text":"no id"},
		{"id":null,"text":"second","refs":[{"label":"a","law_title":"","id":"b","relation":""}]},
		{"id":7,"text":"number"},
		{"id":"7","level":"기타","text":"string"}
	]`))
	require.NoError(t, err)

	out, stats := Dedup(nodes)
	require.Len(t, out, 4)
	assert.Equal(t, "second", out[0].Common().Text)
	assert.Equal(t, "no id", out[1].Common().Text)
	assert.Equal(t, DedupStats{Replaced: 1, Orphans: 1, TotalIn: 5, TotalOut: 4}, stats)
}
