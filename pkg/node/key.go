package node

import (
	"fmt"
	"regexp"
	"strconv"
)

// ArticleKey is the canonical article number: the main number and an
// optional sub-number (제4조의2 is {4, 2}; Sub is 0 for plain articles).
type ArticleKey struct {
	Main int
	Sub  int
}

var articleKeyPattern = regexp.MustCompile(`^(\d+)(?:(?:의|_)(\d+))?$`)

// ParseArticleKey accepts the composite form ("4의2"), the underscore form
// ("4_2") and plain numbers ("4").
func ParseArticleKey(s string) (ArticleKey, error) {
	match := articleKeyPattern.FindStringSubmatch(s)
	if match == nil {
		return ArticleKey{}, fmt.Errorf("invalid article number %q", s)
	}
	main, err := strconv.Atoi(match[1])
	if err != nil {
		return ArticleKey{}, fmt.Errorf("invalid article number %q: %w", s, err)
	}
	key := ArticleKey{Main: main}
	if match[2] != "" {
		sub, err := strconv.Atoi(match[2])
		if err != nil {
			return ArticleKey{}, fmt.Errorf("invalid article sub-number %q: %w", s, err)
		}
		key.Sub = sub
	}
	return key, nil
}

// String returns the composite number form: "4" or "4의2".
func (k ArticleKey) String() string {
	if k.Sub > 0 {
		return fmt.Sprintf("%d의%d", k.Main, k.Sub)
	}
	return strconv.Itoa(k.Main)
}

// Underscore returns the id form: "4" or "4_2".
func (k ArticleKey) Underscore() string {
	if k.Sub > 0 {
		return fmt.Sprintf("%d_%d", k.Main, k.Sub)
	}
	return strconv.Itoa(k.Main)
}

// ArticleID builds "{doc}-{article}" with the underscore sub-number form.
func ArticleID(documentTitle string, key ArticleKey) string {
	return documentTitle + "-" + key.Underscore()
}

// ParagraphID builds "{articleID}({n})".
func ParagraphID(articleID string, number int) string {
	return fmt.Sprintf("%s(%d)", articleID, number)
}

// ItemID builds "{paragraphID}[{n}]".
func ItemID(paragraphID string, number int) string {
	return fmt.Sprintf("%s[%d]", paragraphID, number)
}

// TargetID builds a node id from loose string parts as they appear in
// tabular rows. Empty paragraph or item parts are omitted; an empty article
// yields an empty id.
func TargetID(documentTitle, article, paragraph, item string) string {
	if article == "" {
		return ""
	}
	id := documentTitle + "-" + article
	if paragraph != "" {
		id += "(" + paragraph + ")"
	}
	if item != "" {
		id += "[" + item + "]"
	}
	return id
}
