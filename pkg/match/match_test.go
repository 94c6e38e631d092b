package match

import (
	"testing"

	"github.com/coolbeans/lawlink/pkg/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// definitionArticle mirrors the parser output for
// "제4조(정의) ... ① 첫째항 1. 가목 2. 나목 ② 둘째항".
func definitionArticle() node.Collection {
	return node.Collection{
		&node.Article{
			Base:     node.Base{ID: "테스트법-4", DocumentTitle: "테스트법", Text: "제4조(정의) 이 법에서 사용하는 용어는 다음과 같다."},
			Key:      node.ArticleKey{Main: 4},
			Children: []string{"테스트법-4(1)", "테스트법-4(2)"},
		},
		&node.Paragraph{
			Base:     node.Base{ID: "테스트법-4(1)", DocumentTitle: "테스트법", Text: "첫째항"},
			Num:      1,
			Parent:   "테스트법-4",
			Children: []string{"테스트법-4(1)[1]", "테스트법-4(1)[2]"},
		},
		&node.Item{Base: node.Base{ID: "테스트법-4(1)[1]", DocumentTitle: "테스트법", Text: "가목"}, Num: 1, Parent: "테스트법-4(1)"},
		&node.Item{Base: node.Base{ID: "테스트법-4(1)[2]", DocumentTitle: "테스트법", Text: "나목"}, Num: 2, Parent: "테스트법-4(1)"},
		&node.Paragraph{Base: node.Base{ID: "테스트법-4(2)", DocumentTitle: "테스트법", Text: "둘째항"}, Num: 2, Parent: "테스트법-4"},
	}
}

// repeatedArticle has the phrase "법 제5조" in the article text and in both
// paragraphs.
func repeatedArticle() node.Collection {
	return node.Collection{
		&node.Article{
			Base:     node.Base{ID: "법-7", DocumentTitle: "법", Text: "제7조(준용) 법 제5조를 준용한다."},
			Key:      node.ArticleKey{Main: 7},
			Children: []string{"법-7(1)", "법-7(2)"},
		},
		&node.Paragraph{Base: node.Base{ID: "법-7(1)", Text: "「법」 제5조에 따른 신고"}, Num: 1, Parent: "법-7"},
		&node.Paragraph{Base: node.Base{ID: "법-7(2)", Text: "법 제5조 및 법 제6조"}, Num: 2, Parent: "법-7"},
	}
}

func TestNormalize(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"「산업안전보건법」 제5조", "산업안전보건법제5조"},
		{"  제 1 항 ", "제1항"},
		{"(별표 1)", "별표1"},
		{"“가”, ‘나’; 다: 라·마ㆍ바.", "가나다라마바"},
		{"〈개정〉《법》【주】", "개정법주"},
		{"", ""},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.expected, Normalize(testCase.input), testCase.input)
	}
}

func TestCanonicalLocator(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"2", "2"},
		{" 2.0 ", "2"},
		{"02", "2"},
		{"4의2", "4의2"},
		{"4_2", "4_2"},
		{"2.5", "2.5"},
		{"", ""},
		{"부칙", "부칙"},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.expected, CanonicalLocator(testCase.input), testCase.input)
	}
}

func TestMatchItemWithFreshCursor(t *testing.T) {
	session := NewSession(definitionArticle())
	target, found := session.Lookup("4")
	require.True(t, found)

	result := Match(target, "가목", Cursor{})
	assert.Equal(t, ScopeItem, result.Scope)
	assert.Equal(t, 1, result.Paragraph)
	assert.Equal(t, 1, result.Item)
	// "가목" consumes its whole segment, so the cursor rolls to the next one.
	assert.Equal(t, Cursor{Segment: 3}, result.Cursor)
}

func TestMatchAbsentLabelLeavesCursor(t *testing.T) {
	session := NewSession(definitionArticle())
	target, _ := session.Lookup("4")

	cursor := Cursor{Segment: 2, Offset: 1}
	result := Match(target, "없는내용", cursor)
	assert.Equal(t, ScopeNotFound, result.Scope)
	assert.Zero(t, result.Paragraph)
	assert.Zero(t, result.Item)
	assert.Equal(t, cursor, result.Cursor)
}

func TestMatchScopes(t *testing.T) {
	session := NewSession(definitionArticle())
	target, _ := session.Lookup("4")

	testCases := []struct {
		label     string
		scope     Scope
		paragraph int
		item      int
	}{
		{"용어", ScopeArticle, 0, 0},
		{"첫째항", ScopeParagraph, 1, 0},
		{"나목", ScopeItem, 1, 2},
		{"둘째 항", ScopeParagraph, 2, 0},
		{"", ScopeNotFound, 0, 0},
		{"「」", ScopeNotFound, 0, 0},
	}

	for _, testCase := range testCases {
		result := Match(target, testCase.label, Cursor{})
		assert.Equal(t, testCase.scope, result.Scope, testCase.label)
		assert.Equal(t, testCase.paragraph, result.Paragraph, testCase.label)
		assert.Equal(t, testCase.item, result.Item, testCase.label)
	}
}

func TestSessionCursorAdvancesThroughRepeatedLabels(t *testing.T) {
	session := NewSession(repeatedArticle())
	target, found := session.Lookup("7")
	require.True(t, found)

	first := session.MatchLabel(target, "법 제5조")
	assert.Equal(t, ScopeArticle, first.Scope)

	second := session.MatchLabel(target, "법 제5조")
	assert.Equal(t, ScopeParagraph, second.Scope)
	assert.Equal(t, 1, second.Paragraph)

	third := session.MatchLabel(target, "법 제5조")
	assert.Equal(t, ScopeParagraph, third.Scope)
	assert.Equal(t, 2, third.Paragraph)

	// The cursor now sits inside paragraph 2, after "법제5조".
	assert.Equal(t, 2, session.Cursor(target).Segment)
	assert.Positive(t, session.Cursor(target).Offset)

	sixth := session.MatchLabel(target, "법 제6조")
	assert.Equal(t, ScopeParagraph, sixth.Scope)
	assert.Equal(t, 2, sixth.Paragraph)
	assert.Equal(t, Cursor{Segment: 3}, session.Cursor(target))
}

func TestSessionFallsBackToFullScan(t *testing.T) {
	session := NewSession(repeatedArticle())
	target, _ := session.Lookup("7")

	session.MatchLabel(target, "법 제6조")
	require.Equal(t, Cursor{Segment: 3}, session.Cursor(target))

	// Nothing remains after the cursor, so the second pass finds the first
	// occurrence in the article text.
	result := session.MatchLabel(target, "법 제5조")
	assert.Equal(t, ScopeArticle, result.Scope)
	assert.Equal(t, 0, session.Cursor(target).Segment)
}

func TestSessionCursorsArePerArticle(t *testing.T) {
	collection := append(repeatedArticle(), &node.Article{
		Base: node.Base{ID: "법-8", Text: "제8조 법 제5조와 법 제5조"},
		Key:  node.ArticleKey{Main: 8},
	})
	session := NewSession(collection)
	seven, _ := session.Lookup("7")
	eight, _ := session.Lookup("8")

	session.MatchLabel(seven, "법 제5조")
	session.MatchLabel(seven, "법 제5조")

	assert.Equal(t, Cursor{}, session.Cursor(eight))
	result := session.MatchLabel(eight, "법 제5조")
	assert.Equal(t, ScopeArticle, result.Scope)
	assert.Equal(t, 0, session.Cursor(eight).Segment)
	assert.Equal(t, 1, session.Cursor(seven).Segment)
}

func TestLookup(t *testing.T) {
	collection := node.Collection{
		&node.Article{Base: node.Base{ID: "법-3", Text: "제3조 본문"}, Key: node.ArticleKey{Main: 3}},
		&node.Article{Base: node.Base{ID: "법-4_2", Text: "제4조의2 본문"}, Key: node.ArticleKey{Main: 4, Sub: 2}},
		&node.Article{Base: node.Base{ID: "법-4_3", Text: "제4조의3 본문"}, Key: node.ArticleKey{Main: 4, Sub: 3}},
		&node.Article{Base: node.Base{ID: "부칙-3", Text: "제3조 부칙"}, Key: node.ArticleKey{Main: 3}},
	}
	session := NewSession(collection)
	assert.Equal(t, 4, session.ArticleCount())

	testCases := []struct {
		locator string
		id      string
	}{
		{"3", "법-3"},
		{"3.0", "법-3"},
		{"4의2", "법-4_2"},
		{"4_3", "법-4_3"},
		{"4", "법-4_2"},
		{" 4.0", "법-4_2"},
	}

	for _, testCase := range testCases {
		target, found := session.Lookup(testCase.locator)
		require.True(t, found, testCase.locator)
		assert.Equal(t, testCase.id, target.Article.ID, testCase.locator)
	}

	for _, locator := range []string{"", "5", "4의9", "부칙"} {
		_, found := session.Lookup(locator)
		assert.False(t, found, locator)
	}
}

func TestSegmentsSkipEmptyTexts(t *testing.T) {
	collection := node.Collection{
		&node.Article{Base: node.Base{ID: "법-1", Text: "  "}, Key: node.ArticleKey{Main: 1}, Children: []string{"법-1(1)"}},
		&node.Paragraph{Base: node.Base{ID: "법-1(1)"}, Num: 1, Parent: "법-1", Children: []string{"법-1(1)[1]"}},
		&node.Item{Base: node.Base{ID: "법-1(1)[1]", Text: "유일한 호"}, Num: 1, Parent: "법-1(1)"},
	}
	session := NewSession(collection)
	target, found := session.Lookup("1")
	require.True(t, found)

	require.Len(t, target.Segments, 1)
	assert.Equal(t, ScopeItem, target.Segments[0].Scope)
	assert.Equal(t, "유일한호", target.Segments[0].Normalized)
}

func TestResolveRows(t *testing.T) {
	session := NewSession(definitionArticle())

	resolutions := session.ResolveAll([]Row{
		{ArticleLocator: "4", Label: "가목"},
		{ArticleLocator: "4.0", Label: "둘째항"},
		{ArticleLocator: "4", Label: "없는내용"},
		{ArticleLocator: "9", Label: "가목"},
		{ArticleLocator: "", Label: "가목"},
		{ArticleLocator: "4", Label: " "},
		{ArticleLocator: "4", Label: "용어"},
	})
	require.Len(t, resolutions, 7)

	assert.Equal(t, ScopeItem, resolutions[0].Scope)
	assert.Equal(t, "1", resolutions[0].ParagraphNumber())
	assert.Equal(t, "1", resolutions[0].ItemNumber())
	assert.Equal(t, "4", resolutions[0].ArticleNumber())

	assert.Equal(t, ScopeParagraph, resolutions[1].Scope)
	assert.Equal(t, "2", resolutions[1].ParagraphNumber())
	assert.Empty(t, resolutions[1].ItemNumber())

	assert.Equal(t, ScopeNotFound, resolutions[2].Scope)
	assert.Equal(t, "4", resolutions[2].ArticleNumber())
	assert.Empty(t, resolutions[2].ParagraphNumber())

	for _, unresolved := range resolutions[3:6] {
		assert.Equal(t, ScopeNotFound, unresolved.Scope)
		assert.Empty(t, unresolved.ArticleNumber())
	}

	assert.Equal(t, ScopeArticle, resolutions[6].Scope)
	assert.Empty(t, resolutions[6].ParagraphNumber())

	summary := Summarize(resolutions)
	assert.Equal(t, Summary{Total: 7, Article: 1, Paragraph: 1, Item: 1, NotFound: 4}, summary)
}
