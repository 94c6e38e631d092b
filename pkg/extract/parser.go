// Package extract segments Korean statute text into article (조), paragraph
// (항) and item (호) nodes.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/coolbeans/lawlink/pkg/node"
)

const (
	// firstCircled and lastCircled bound the circled digits ① through ⑳.
	firstCircled = '①'
	lastCircled  = '⑳'
)

// attachmentMarkers mark a document title as an attached table or form.
var attachmentMarkers = []string{"별표", "별지"}

// Parser parses statute text into a flat node collection.
type Parser struct {
	// articlePattern matches a line-initial article header: 제N조 or
	// 제N조의M, with an optional parenthesized heading.
	articlePattern *regexp.Regexp

	// circledPattern matches a circled-digit paragraph marker.
	circledPattern *regexp.Regexp

	// paragraphTextPattern matches a line-initial textual marker 제N항.
	paragraphTextPattern *regexp.Regexp

	// itemPattern matches a line-initial item marker "N. ".
	itemPattern *regexp.Regexp

	// itemPrefixPattern strips the item marker from an item's text.
	itemPrefixPattern *regexp.Regexp
}

// NewParser creates a Parser with the statute patterns compiled.
func NewParser() *Parser {
	return &Parser{
		articlePattern:       regexp.MustCompile(`(?m)^제\s*(\d+)(?:\s*조의\s*(\d+)|\s*조)(?:\(([^)]*)\))?`),
		circledPattern:       regexp.MustCompile(`[\x{2460}-\x{2473}]`),
		paragraphTextPattern: regexp.MustCompile(`(?m)^\s*제\s*(\d+)\s*항(?:[^\p{L}\p{N}_]|$)`),
		itemPattern:          regexp.MustCompile(`(?m)^\s*(\d+)\.\s`),
		itemPrefixPattern:    regexp.MustCompile(`^\s*\d+\.\s*`),
	}
}

// articleBlock is the span of one article within the normalized text.
type articleBlock struct {
	key   node.ArticleKey
	start int
	end   int
}

// paragraphSpan is one circled-digit paragraph within an article block.
type paragraphSpan struct {
	number int
	text   string
}

// itemSpan is one numbered item within a paragraph.
type itemSpan struct {
	number int
	text   string
}

// Parse segments raw statute text into nodes. Documents without any article
// header produce no nodes unless the title marks an attached table or form,
// in which case a single Other node is returned.
func (p *Parser) Parse(rawText string, documentTitle string) node.Collection {
	text := NormalizeText(rawText)
	blocks := p.splitArticles(text)

	if len(blocks) == 0 {
		if isAttachmentTitle(documentTitle) {
			return node.Collection{node.NewOther(documentTitle)}
		}
		return nil
	}

	var nodes node.Collection
	for _, block := range blocks {
		nodes = append(nodes, p.parseArticle(documentTitle, block.key, strings.TrimSpace(text[block.start:block.end]))...)
	}
	return nodes
}

// ParseCell parses a linked-text cell: the first non-empty line names the
// linked document and the rest is parsed under that title.
func (p *Parser) ParseCell(cell string) node.Collection {
	title, body := SplitTitleAndBody(cell)
	if title == "" {
		return nil
	}
	return p.Parse(body, title)
}

// splitArticles finds every article header and returns the blocks between
// consecutive headers. A header whose number does not fit an int is not a
// header; its text stays in the preceding block.
func (p *Parser) splitArticles(text string) []articleBlock {
	var blocks []articleBlock
	for _, match := range p.articlePattern.FindAllStringSubmatchIndex(text, -1) {
		main, err := strconv.Atoi(text[match[2]:match[3]])
		if err != nil {
			continue
		}
		key := node.ArticleKey{Main: main}
		if match[4] >= 0 {
			if key.Sub, err = strconv.Atoi(text[match[4]:match[5]]); err != nil {
				continue
			}
		}
		if len(blocks) > 0 {
			blocks[len(blocks)-1].end = match[0]
		}
		blocks = append(blocks, articleBlock{key: key, start: match[0], end: len(text)})
	}
	return blocks
}

func (p *Parser) parseArticle(documentTitle string, key node.ArticleKey, block string) node.Collection {
	firstParagraph := p.firstParagraphStart(block)

	articleText := block
	if firstParagraph >= 0 {
		articleText = strings.TrimSpace(block[:firstParagraph])
	}
	articleText = p.hardCut(articleText)

	article := &node.Article{
		Base: node.Base{
			ID:            node.ArticleID(documentTitle, key),
			DocumentTitle: documentTitle,
			Text:          articleText,
			Refs:          []node.Reference{},
		},
		Key:      key,
		Children: []string{},
	}
	nodes := node.Collection{article}
	if firstParagraph < 0 {
		return nodes
	}

	for _, span := range p.splitParagraphs(block[firstParagraph:]) {
		preface, items := p.splitItems(span.text)

		paragraph := &node.Paragraph{
			Base: node.Base{
				ID:            node.ParagraphID(article.ID, span.number),
				DocumentTitle: documentTitle,
				Text:          preface,
				Refs:          []node.Reference{},
			},
			Num:      span.number,
			Parent:   article.ID,
			Children: []string{},
		}
		article.Children = append(article.Children, paragraph.ID)
		nodes = append(nodes, paragraph)

		for _, itemText := range items {
			item := &node.Item{
				Base: node.Base{
					ID:            node.ItemID(paragraph.ID, itemText.number),
					DocumentTitle: documentTitle,
					Text:          itemText.text,
					Refs:          []node.Reference{},
				},
				Num:    itemText.number,
				Parent: paragraph.ID,
			}
			paragraph.Children = append(paragraph.Children, item.ID)
			nodes = append(nodes, item)
		}
	}
	return nodes
}

// firstParagraphStart returns the earliest circled digit or line-initial
// 제N항 position in the block, or -1.
func (p *Parser) firstParagraphStart(block string) int {
	first := -1
	if loc := p.circledPattern.FindStringIndex(block); loc != nil {
		first = loc[0]
	}
	if loc := p.paragraphTextPattern.FindStringIndex(block); loc != nil {
		if first < 0 || loc[0] < first {
			first = loc[0]
		}
	}
	return first
}

// hardCut truncates article text at any remaining paragraph marker.
func (p *Parser) hardCut(articleText string) string {
	if loc := p.circledPattern.FindStringIndex(articleText); loc != nil {
		return strings.TrimRightFunc(articleText[:loc[0]], unicode.IsSpace)
	}
	if loc := p.paragraphTextPattern.FindStringIndex(articleText); loc != nil {
		return strings.TrimRightFunc(articleText[:loc[0]], unicode.IsSpace)
	}
	return strings.TrimRightFunc(articleText, unicode.IsSpace)
}

// splitParagraphs cuts the text at every circled digit. Textual 제N항
// markers only bound the article text and never start a paragraph.
func (p *Parser) splitParagraphs(text string) []paragraphSpan {
	locations := p.circledPattern.FindAllStringIndex(text, -1)
	spans := make([]paragraphSpan, 0, len(locations))
	for i, loc := range locations {
		end := len(text)
		if i+1 < len(locations) {
			end = locations[i+1][0]
		}
		glyph := text[loc[0]:loc[1]]
		body := strings.TrimLeftFunc(text[loc[0]:end], unicode.IsSpace)
		body = strings.TrimPrefix(body, glyph)
		body = strings.TrimSpace(body)
		spans = append(spans, paragraphSpan{number: circledOrdinal(glyph), text: body})
	}
	return spans
}

// splitItems separates a paragraph's preface from its numbered items. A
// paragraph without item markers keeps its whole text as the preface.
func (p *Parser) splitItems(paragraphText string) (string, []itemSpan) {
	var (
		matches [][]int
		numbers []int
	)
	for _, match := range p.itemPattern.FindAllStringSubmatchIndex(paragraphText, -1) {
		number, err := strconv.Atoi(paragraphText[match[2]:match[3]])
		if err != nil {
			continue
		}
		matches = append(matches, match)
		numbers = append(numbers, number)
	}
	if len(matches) == 0 {
		return strings.TrimSpace(paragraphText), nil
	}

	preface := strings.TrimSpace(paragraphText[:matches[0][0]])
	items := make([]itemSpan, 0, len(matches))
	for i, match := range matches {
		number := numbers[i]
		end := len(paragraphText)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		piece := strings.TrimSpace(paragraphText[match[0]:end])
		piece = p.itemPrefixPattern.ReplaceAllString(piece, "")
		items = append(items, itemSpan{number: number, text: strings.TrimSpace(piece)})
	}
	return preface, items
}

func circledOrdinal(glyph string) int {
	for _, r := range glyph {
		if r >= firstCircled && r <= lastCircled {
			return int(r-firstCircled) + 1
		}
	}
	return 0
}

func isAttachmentTitle(title string) bool {
	for _, marker := range attachmentMarkers {
		if strings.Contains(title, marker) {
			return true
		}
	}
	return false
}
