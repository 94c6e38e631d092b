// Package node defines the article/paragraph/item tree produced from Korean
// statute text, together with the outbound reference records attached to it.
package node

import (
	"encoding/json"
	"strconv"
)

// Level identifies the structural unit a node represents. The values are the
// Korean unit names used in the serialized collections.
type Level string

const (
	LevelArticle   Level = "조"  // Article (조)
	LevelParagraph Level = "항"  // Paragraph (항)
	LevelItem      Level = "호"  // Item (호)
	LevelOther     Level = "기타" // Attached table or form (별표/별지)
)

// OtherNumber is the number recorded for Other nodes.
const OtherNumber = "기타"

// Name returns the English name of the level.
func (l Level) Name() string {
	switch l {
	case LevelArticle:
		return "article"
	case LevelParagraph:
		return "paragraph"
	case LevelItem:
		return "item"
	case LevelOther:
		return "other"
	}
	return "unknown"
}

// Reference is one outbound cross-reference of a node.
type Reference struct {
	Label         string `json:"label"`
	DocumentTitle string `json:"law_title"`
	TargetID      string `json:"id"`

	// Relation is reserved for a future classification and is always empty.
	Relation string `json:"relation"`
}

// Same reports whether two references carry the same label, target and
// document title.
func (r Reference) Same(other Reference) bool {
	return r.Label == other.Label &&
		r.TargetID == other.TargetID &&
		r.DocumentTitle == other.DocumentTitle
}

// Base holds the fields shared by every level.
type Base struct {
	ID            string
	DocumentTitle string
	Text          string
	Refs          []Reference

	// origin is set for nodes read by Decode.
	origin *origin
}

// Node is one element of a parsed collection. The concrete types are
// *Article, *Paragraph, *Item, *Other and *Raw.
type Node interface {
	Common() *Base
	Level() Level
	Number() string
	ParentID() string
	ChildIDs() []string
}

// Article is a top-level provision (제N조 or 제N조의M).
type Article struct {
	Base
	Key      ArticleKey
	Children []string
}

// Paragraph is a circled-number subdivision of an article.
type Paragraph struct {
	Base
	Num      int
	Parent   string
	Children []string
}

// Item is a line-initial "N." subdivision of a paragraph.
type Item struct {
	Base
	Num    int
	Parent string
}

// Other is a non-article unit such as an attached table (별표) or form
// (별지). Its id, title and text all equal the unit title.
type Other struct {
	Base
}

// Raw is a record that did not decode into one of the known levels. It is
// carried through the pipeline verbatim. HasID reports whether the record
// has an "id" key at all; IDValue holds that key's JSON value, which may be
// null or a number. A Raw without an id never takes part in deduplication.
type Raw struct {
	Base
	HasID   bool
	IDValue json.RawMessage
	Data    []byte
}

func (a *Article) Common() *Base      { return &a.Base }
func (a *Article) Level() Level       { return LevelArticle }
func (a *Article) Number() string     { return a.Key.String() }
func (a *Article) ParentID() string   { return "" }
func (a *Article) ChildIDs() []string { return a.Children }

func (p *Paragraph) Common() *Base      { return &p.Base }
func (p *Paragraph) Level() Level       { return LevelParagraph }
func (p *Paragraph) Number() string     { return strconv.Itoa(p.Num) }
func (p *Paragraph) ParentID() string   { return p.Parent }
func (p *Paragraph) ChildIDs() []string { return p.Children }

func (i *Item) Common() *Base      { return &i.Base }
func (i *Item) Level() Level       { return LevelItem }
func (i *Item) Number() string     { return strconv.Itoa(i.Num) }
func (i *Item) ParentID() string   { return i.Parent }
func (i *Item) ChildIDs() []string { return nil }

func (o *Other) Common() *Base      { return &o.Base }
func (o *Other) Level() Level       { return LevelOther }
func (o *Other) Number() string     { return OtherNumber }
func (o *Other) ParentID() string   { return "" }
func (o *Other) ChildIDs() []string { return nil }

func (r *Raw) Common() *Base      { return &r.Base }
func (r *Raw) Level() Level       { return "" }
func (r *Raw) Number() string     { return "" }
func (r *Raw) ParentID() string   { return "" }
func (r *Raw) ChildIDs() []string { return nil }

// NewOther creates the single node emitted for an attached table or form.
func NewOther(title string) *Other {
	return &Other{Base: Base{ID: title, DocumentTitle: title, Text: title, Refs: []Reference{}}}
}

// Collection is an ordered, flat list of nodes. Children are referenced by
// id only.
type Collection []Node

// Index maps node ids to nodes. Raw records are not indexed.
type Index map[string]Node

// Index builds an id lookup over the typed nodes of the collection. When an
// id repeats, the first node wins.
func (c Collection) Index() Index {
	index := make(Index, len(c))
	for _, n := range c {
		if _, isRaw := n.(*Raw); isRaw {
			continue
		}
		id := n.Common().ID
		if id == "" {
			continue
		}
		if _, exists := index[id]; !exists {
			index[id] = n
		}
	}
	return index
}

// Articles returns the article nodes in collection order.
func (c Collection) Articles() []*Article {
	var articles []*Article
	for _, n := range c {
		if a, ok := n.(*Article); ok {
			articles = append(articles, a)
		}
	}
	return articles
}

// DedupKey returns the key nodes are grouped by when duplicates are
// collapsed. Records whose id is not a string (null included) share keys by
// their JSON value, so every null id falls into one group. ok is false for
// records without an id.
func DedupKey(n Node) (key string, ok bool) {
	raw, isRaw := n.(*Raw)
	if !isRaw {
		return n.Common().ID, true
	}
	if !raw.HasID {
		return "", false
	}
	if len(raw.IDValue) > 0 && raw.IDValue[0] != '"' {
		return "\x00" + string(raw.IDValue), true
	}
	return raw.ID, true
}

// HasRefs reports whether the node carries at least one reference.
func HasRefs(n Node) bool {
	return len(n.Common().Refs) > 0
}
