// Package match resolves free-text link labels to the article, paragraph or
// item of a parsed statute that contains them.
package match

import (
	"strconv"
	"strings"

	"github.com/coolbeans/lawlink/pkg/node"
)

// Scope is the level at which a label was found. The values are the Korean
// names written to result tables.
type Scope string

const (
	ScopeArticle   Scope = "조"
	ScopeParagraph Scope = "항"
	ScopeItem      Scope = "호"
	ScopeNotFound  Scope = "미검출"
)

// Name returns the English name of the scope.
func (s Scope) Name() string {
	switch s {
	case ScopeArticle:
		return "article"
	case ScopeParagraph:
		return "paragraph"
	case ScopeItem:
		return "item"
	}
	return "not_found"
}

// Cursor is the scan position inside one article's segments.
type Cursor struct {
	Segment int
	Offset  int
}

// Segment is one searchable text of an article: its own text, a paragraph
// preface or an item.
type Segment struct {
	Scope      Scope
	Paragraph  int
	Item       int
	Text       string
	Normalized string
}

// Target is an article prepared for matching.
type Target struct {
	Article  *node.Article
	Segments []Segment
}

// Result is the outcome of matching one label.
type Result struct {
	Scope     Scope
	Paragraph int // 0 unless Scope is ScopeParagraph or ScopeItem
	Item      int // 0 unless Scope is ScopeItem
	Cursor    Cursor
}

// Session holds the article index of one target document and the scan
// cursor of every article. A session is used for one pass over a document's
// label rows and then discarded.
type Session struct {
	articles map[node.ArticleKey]*Target
	byMain   map[int][]*Target
	cursors  map[*Target]Cursor
	count    int
}

// NewSession indexes the articles of a parsed collection. When an article
// number repeats, the first article in parse order is used for exact
// lookups; every occurrence stays reachable through the base-number list.
func NewSession(collection node.Collection) *Session {
	session := &Session{
		articles: make(map[node.ArticleKey]*Target),
		byMain:   make(map[int][]*Target),
		cursors:  make(map[*Target]Cursor),
	}
	index := collection.Index()

	for _, article := range collection.Articles() {
		target := &Target{Article: article, Segments: buildSegments(article, index)}
		if _, exists := session.articles[article.Key]; !exists {
			session.articles[article.Key] = target
		}
		session.byMain[article.Key.Main] = append(session.byMain[article.Key.Main], target)
		session.count++
	}
	return session
}

// ArticleCount returns the number of indexed articles.
func (s *Session) ArticleCount() int {
	return s.count
}

// buildSegments lists the article text, then each paragraph followed by its
// items, skipping empty texts.
func buildSegments(article *node.Article, index node.Index) []Segment {
	var segments []Segment
	if text := strings.TrimSpace(article.Text); text != "" {
		segments = append(segments, newSegment(ScopeArticle, 0, 0, text))
	}

	for _, paragraphID := range article.Children {
		paragraph, ok := index[paragraphID].(*node.Paragraph)
		if !ok {
			continue
		}
		if text := strings.TrimSpace(paragraph.Text); text != "" {
			segments = append(segments, newSegment(ScopeParagraph, paragraph.Num, 0, text))
		}
		for _, itemID := range paragraph.Children {
			item, ok := index[itemID].(*node.Item)
			if !ok {
				continue
			}
			if text := strings.TrimSpace(item.Text); text != "" {
				segments = append(segments, newSegment(ScopeItem, paragraph.Num, item.Num, text))
			}
		}
	}
	return segments
}

func newSegment(scope Scope, paragraph, item int, text string) Segment {
	return Segment{Scope: scope, Paragraph: paragraph, Item: item, Text: text, Normalized: Normalize(text)}
}

// Lookup resolves an article locator. An exact key is tried first; a purely
// numeric locator without an exact article falls back to the first article
// sharing that main number (for example 제4조의2 when 제4조 is absent).
func (s *Session) Lookup(locator string) (*Target, bool) {
	key := CanonicalLocator(locator)
	if key == "" {
		return nil, false
	}
	if articleKey, err := node.ParseArticleKey(key); err == nil {
		if target, found := s.articles[articleKey]; found {
			return target, true
		}
	}
	if isDigits(key) {
		main, err := strconv.Atoi(key)
		if err != nil {
			return nil, false
		}
		if candidates := s.byMain[main]; len(candidates) > 0 {
			return candidates[0], true
		}
	}
	return nil, false
}

// Cursor returns the current scan position of a target.
func (s *Session) Cursor(target *Target) Cursor {
	return s.cursors[target]
}

// MatchLabel matches a label against a target and stores the advanced
// cursor in the session.
func (s *Session) MatchLabel(target *Target, label string) Result {
	result := Match(target, label, s.cursors[target])
	s.cursors[target] = result.Cursor
	return result
}

// Match finds the segment containing label, starting at cursor. When nothing
// is found between the cursor and the last segment, the whole article is
// scanned again from its first segment. On success the returned cursor sits
// just after the matched text; on failure it is the cursor passed in.
func Match(target *Target, label string, cursor Cursor) Result {
	notFound := Result{Scope: ScopeNotFound, Cursor: cursor}

	query := Normalize(label)
	if target == nil || len(target.Segments) == 0 || query == "" {
		return notFound
	}

	for segmentIndex := cursor.Segment; segmentIndex < len(target.Segments); segmentIndex++ {
		start := 0
		if segmentIndex == cursor.Segment {
			start = cursor.Offset
		}
		if result, found := findInSegment(target.Segments, segmentIndex, query, start); found {
			return result
		}
	}

	for segmentIndex := range target.Segments {
		if result, found := findInSegment(target.Segments, segmentIndex, query, 0); found {
			return result
		}
	}

	return notFound
}

func findInSegment(segments []Segment, segmentIndex int, query string, start int) (Result, bool) {
	segment := segments[segmentIndex]
	if start < 0 || start > len(segment.Normalized) {
		return Result{}, false
	}
	position := strings.Index(segment.Normalized[start:], query)
	if position < 0 {
		return Result{}, false
	}

	end := start + position + len(query)
	next := Cursor{Segment: segmentIndex, Offset: end}
	if end >= len(segment.Normalized) {
		next = Cursor{Segment: segmentIndex + 1}
	}

	result := Result{Scope: segment.Scope, Cursor: next}
	switch segment.Scope {
	case ScopeItem:
		result.Paragraph = segment.Paragraph
		result.Item = segment.Item
	case ScopeParagraph:
		result.Paragraph = segment.Paragraph
	}
	return result, true
}
