package match

import (
	"strconv"
	"strings"

	"github.com/coolbeans/lawlink/pkg/node"
)

// Row is one label to resolve: the article it was scraped under and the
// linked text.
type Row struct {
	ArticleLocator string `json:"article"`
	Label          string `json:"label"`
}

// Resolution augments a row with the node its label was found in.
type Resolution struct {
	Row
	Article   *node.Article `json:"-"`
	Paragraph int          `json:"paragraph,omitempty"`
	Item      int          `json:"item,omitempty"`
	Scope     Scope        `json:"scope"`
}

// ArticleNumber returns the resolved article number in composite form, or
// an empty string when the locator did not resolve.
func (r Resolution) ArticleNumber() string {
	if r.Article == nil {
		return ""
	}
	return r.Article.Number()
}

// ParagraphNumber returns the paragraph column value, empty when unset.
func (r Resolution) ParagraphNumber() string {
	return optionalNumber(r.Paragraph)
}

// ItemNumber returns the item column value, empty when unset.
func (r Resolution) ItemNumber() string {
	return optionalNumber(r.Item)
}

func optionalNumber(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// Resolve looks up the row's article and matches its label, advancing that
// article's cursor. Rows with an empty locator or label, or whose locator
// names no article, come back as ScopeNotFound.
func (s *Session) Resolve(row Row) Resolution {
	resolution := Resolution{Row: row, Scope: ScopeNotFound}
	if strings.TrimSpace(row.ArticleLocator) == "" || strings.TrimSpace(row.Label) == "" {
		return resolution
	}

	target, found := s.Lookup(row.ArticleLocator)
	if !found {
		return resolution
	}
	resolution.Article = target.Article

	result := s.MatchLabel(target, row.Label)
	resolution.Scope = result.Scope
	resolution.Paragraph = result.Paragraph
	resolution.Item = result.Item
	return resolution
}

// ResolveAll resolves rows in order against one session.
func (s *Session) ResolveAll(rows []Row) []Resolution {
	resolutions := make([]Resolution, 0, len(rows))
	for _, row := range rows {
		resolutions = append(resolutions, s.Resolve(row))
	}
	return resolutions
}

// Summary counts resolutions per scope.
type Summary struct {
	Total     int `json:"total"`
	Article   int `json:"article"`
	Paragraph int `json:"paragraph"`
	Item      int `json:"item"`
	NotFound  int `json:"not_found"`
}

// Summarize tallies resolutions by scope.
func Summarize(resolutions []Resolution) Summary {
	summary := Summary{Total: len(resolutions)}
	for _, resolution := range resolutions {
		switch resolution.Scope {
		case ScopeArticle:
			summary.Article++
		case ScopeParagraph:
			summary.Paragraph++
		case ScopeItem:
			summary.Item++
		default:
			summary.NotFound++
		}
	}
	return summary
}
