package pipeline

import (
	"testing"

	"github.com/coolbeans/lawlink/pkg/extract"
	"github.com/coolbeans/lawlink/pkg/link"
	"github.com/coolbeans/lawlink/pkg/match"
	"github.com/coolbeans/lawlink/pkg/node"
	"github.com/coolbeans/lawlink/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const enforcementDecree = `제1조(목적) 이 영은 산업안전보건법에서 위임된 사항을 규정함을 목적으로 한다.
제2조(적용범위) ① 법 제3조에 따른 사업의 종류는 별표 1과 같다.
② 제1항에도 불구하고 다음 각 호의 사업에는 적용하지 않는다.
1. 공공행정
2. 국방`

const actPayload = "산업안전보건법\n[시행 2024. 1. 1.] [법률 제19591호]\n제3조(적용 범위) 이 법은 모든 사업에 적용한다."

func scrapedRows() *table.Table {
	t := table.New(table.ColArticle, table.ColLabel, table.ColPayloadText)
	t.Rows = [][]string{
		{"2", "법 제3조", actPayload},
		{"2", "별표 1", ""},
		{"9", "없는 조문", ""},
		{"2.0", "공공행정", ""},
	}
	return t
}

func TestPayloadColumn(t *testing.T) {
	rows := scrapedRows()
	nonEmpty, err := PayloadColumn(rows, extract.NewParser(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, nonEmpty)
	assert.Equal(t, "[]", rows.Get(1, table.ColPayloadJSON))

	payload := node.ParsePayload(rows.Get(0, table.ColPayloadJSON))
	require.Len(t, payload, 1)
	assert.Equal(t, "산업안전보건법-3", payload[0].Common().ID)

	_, err = PayloadColumn(table.New(table.ColArticle), extract.NewParser(), "")
	assert.ErrorIs(t, err, table.ErrMissingColumn)
}

func TestMatchRows(t *testing.T) {
	nodes := extract.NewParser().Parse(enforcementDecree, "시행령")
	rows := scrapedRows()

	summary, err := MatchRows(rows, nodes)
	require.NoError(t, err)
	assert.Equal(t, match.Summary{Total: 4, Paragraph: 2, Item: 1, NotFound: 1}, summary)

	assert.Equal(t, []string{
		table.ColArticle, table.ColParagraph, table.ColItem, table.ColLabel,
		table.ColPayloadText, table.ColScope, table.ColMatchedArticle,
	}, rows.Header)

	assert.Equal(t, "1", rows.Get(0, table.ColParagraph))
	assert.Equal(t, "항", rows.Get(0, table.ColScope))
	assert.Equal(t, "2", rows.Get(0, table.ColMatchedArticle))

	assert.Equal(t, "미검출", rows.Get(2, table.ColScope))
	assert.Empty(t, rows.Get(2, table.ColMatchedArticle))

	assert.Equal(t, "2", rows.Get(3, table.ColParagraph))
	assert.Equal(t, "1", rows.Get(3, table.ColItem))
	assert.Equal(t, "호", rows.Get(3, table.ColScope))
}

func TestMatchRowsRequiresColumns(t *testing.T) {
	_, err := MatchRows(table.New(table.ColArticle), nil)
	assert.ErrorIs(t, err, table.ErrMissingColumn)
}

func TestLabelRowsIsRepeatable(t *testing.T) {
	rows := table.New(table.ColArticle, table.ColParagraph, table.ColItem, table.ColLabel, table.ColMatchedArticle)
	rows.Rows = [][]string{
		{"4", "1", "", "법", "4의2"},
		{"4", "1", "", "법", "4의2"},
		{"9", "", "", "영", ""},
	}

	require.NoError(t, LabelRows(rows, "시행령"))
	first := [][]string{}
	for _, row := range rows.Rows {
		first = append(first, append([]string(nil), row...))
	}

	assert.Equal(t, "법(1)", rows.Get(0, table.ColLabel))
	assert.Equal(t, "법(2)", rows.Get(1, table.ColLabel))
	assert.Equal(t, "법", rows.Get(1, table.ColOriginalLabel))
	assert.Equal(t, "시행령-4_2(1)", rows.Get(0, table.ColID))
	assert.Equal(t, "시행령-9", rows.Get(2, table.ColID))

	require.NoError(t, LabelRows(rows, "시행령"))
	assert.Equal(t, first, rows.Rows)
}

func TestFillRowsAndPayloads(t *testing.T) {
	parser := extract.NewParser()
	main := parser.Parse(enforcementDecree, "시행령")
	rows := scrapedRows()

	_, err := MatchRows(rows, main)
	require.NoError(t, err)
	require.NoError(t, LabelRows(rows, "시행령"))

	// Without a JSON column the payload text is parsed directly.
	report, err := FillRows(main, rows, parser)
	require.NoError(t, err)
	assert.Equal(t, 1, report.UpdatedNodes)
	assert.Equal(t, 1, report.AddedRefs)
	assert.Equal(t, 3, report.Count(link.SkipEmptyPayload))

	index := main.Index()
	refs := index["시행령-2(1)"].Common().Refs
	require.Len(t, refs, 1)
	assert.Equal(t, node.Reference{Label: "법 제3조", DocumentTitle: "산업안전보건법", TargetID: "산업안전보건법-3"}, refs[0])

	payloads := Payloads(rows, parser)
	require.Len(t, payloads, 4)
	assert.Len(t, payloads[0], 1)
	assert.Empty(t, payloads[1])

	skipped := SkippedTable(report)
	assert.Equal(t, 3, skipped.Len())
	assert.Equal(t, "1", skipped.Get(0, "row"))
	assert.Equal(t, string(link.SkipEmptyPayload), skipped.Get(0, "reason"))
}
