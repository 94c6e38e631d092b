// Package pipeline chains the linking stages over scraped row tables and
// runs them for every document of a batch.
package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coolbeans/lawlink/pkg/extract"
	"github.com/coolbeans/lawlink/pkg/label"
	"github.com/coolbeans/lawlink/pkg/lawpage"
	"github.com/coolbeans/lawlink/pkg/link"
	"github.com/coolbeans/lawlink/pkg/match"
	"github.com/coolbeans/lawlink/pkg/node"
	"github.com/coolbeans/lawlink/pkg/relation"
	"github.com/coolbeans/lawlink/pkg/table"
)

// PayloadColumn parses every payload text cell of column into a node list
// and stores it as compact JSON in the payload JSON column. It returns the
// number of rows whose payload is non-empty.
func PayloadColumn(t *table.Table, parser *extract.Parser, column string) (int, error) {
	if column == "" {
		column = table.ColPayloadText
	}
	if err := t.Require(column); err != nil {
		return 0, err
	}

	t.AppendColumn(table.ColPayloadJSON)
	nonEmpty := 0
	for row := range t.Rows {
		payload := parser.ParseCell(t.Get(row, column))
		if payload == nil {
			payload = node.Collection{}
		}
		encoded, err := node.EncodeCompact(payload)
		if err != nil {
			return nonEmpty, fmt.Errorf("row %d: %w", row, err)
		}
		t.Set(row, table.ColPayloadJSON, encoded)
		if len(payload) > 0 {
			nonEmpty++
		}
	}
	return nonEmpty, nil
}

// MatchRows resolves each row's label against the document's nodes. The
// paragraph and item columns are placed after the article column; the
// scope and resolved article number are appended.
func MatchRows(t *table.Table, nodes node.Collection) (match.Summary, error) {
	if err := t.Require(table.ColArticle, table.ColLabel); err != nil {
		return match.Summary{}, err
	}

	t.InsertColumnAfter(table.ColArticle, table.ColParagraph)
	t.InsertColumnAfter(table.ColParagraph, table.ColItem)
	t.AppendColumn(table.ColScope)
	t.AppendColumn(table.ColMatchedArticle)

	session := match.NewSession(nodes)
	resolutions := make([]match.Resolution, 0, t.Len())
	for row := range t.Rows {
		resolution := session.Resolve(match.Row{
			ArticleLocator: t.Get(row, table.ColArticle),
			Label:          t.Get(row, table.ColLabel),
		})
		t.Set(row, table.ColParagraph, resolution.ParagraphNumber())
		t.Set(row, table.ColItem, resolution.ItemNumber())
		t.Set(row, table.ColScope, string(resolution.Scope))
		t.Set(row, table.ColMatchedArticle, resolution.ArticleNumber())
		resolutions = append(resolutions, resolution)
	}
	return match.Summarize(resolutions), nil
}

// LabelRows gives every row a distinct label and its target node id. The
// scraped label is kept in the original label column, which later runs
// read from, so labeling a table twice gives the same result.
func LabelRows(t *table.Table, documentTitle string) error {
	if err := t.Require(table.ColArticle, table.ColLabel); err != nil {
		return err
	}

	if !t.Has(table.ColOriginalLabel) {
		t.InsertColumnAfter(table.ColLabel, table.ColOriginalLabel)
		for row := range t.Rows {
			t.Set(row, table.ColOriginalLabel, t.Get(row, table.ColLabel))
		}
	}

	rows := make([]label.Row, 0, t.Len())
	for row := range t.Rows {
		article := t.Get(row, table.ColMatchedArticle)
		if strings.TrimSpace(article) == "" {
			article = t.Get(row, table.ColArticle)
		}
		original := t.Get(row, table.ColOriginalLabel)
		if strings.TrimSpace(original) == "" {
			original = t.Get(row, table.ColLabel)
		}
		rows = append(rows, label.Row{
			Article:   article,
			Paragraph: t.Get(row, table.ColParagraph),
			Item:      t.Get(row, table.ColItem),
			Label:     original,
		})
	}

	t.AppendColumn(table.ColID)
	for row, labeled := range label.Assign(documentTitle, rows) {
		t.Set(row, table.ColLabel, labeled.Label)
		t.Set(row, table.ColID, labeled.TargetID)
	}
	return nil
}

// FillRows attaches the references described by the table to main.
func FillRows(main node.Collection, t *table.Table, parser *extract.Parser) (link.Report, error) {
	if err := t.Require(table.ColID, table.ColLabel); err != nil {
		return link.Report{}, err
	}

	rows := make([]link.Row, 0, t.Len())
	for row := range t.Rows {
		payload, cell := payloadAt(t, row, parser)
		rows = append(rows, link.Row{
			Index:         row,
			TargetID:      t.Get(row, table.ColID),
			Label:         t.Get(row, table.ColLabel),
			OriginalLabel: t.Get(row, table.ColOriginalLabel),
			Payload:       payload,
			PayloadCell:   cell,
		})
	}
	return link.Fill(main, rows), nil
}

// Payloads returns the payload node list of every row, in row order.
func Payloads(t *table.Table, parser *extract.Parser) []node.Collection {
	payloads := make([]node.Collection, 0, t.Len())
	for row := range t.Rows {
		payload, _ := payloadAt(t, row, parser)
		payloads = append(payloads, payload)
	}
	return payloads
}

// payloadAt reads a row's payload from the JSON column, or parses the
// payload text column when the table has no JSON column.
func payloadAt(t *table.Table, row int, parser *extract.Parser) (node.Collection, string) {
	if t.Has(table.ColPayloadJSON) {
		cell := t.Get(row, table.ColPayloadJSON)
		return node.ParsePayload(cell), cell
	}
	cell := t.Get(row, table.ColPayloadText)
	if parser == nil {
		return nil, cell
	}
	return parser.ParseCell(cell), cell
}

// SkippedTable lists the rows a fill pass did not apply.
func SkippedTable(report link.Report) *table.Table {
	t := table.New("row", "id", "label", "reason", "json_preview")
	for _, skip := range report.Skipped {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(skip.Row),
			skip.TargetID,
			skip.Label,
			string(skip.Reason),
			skip.Preview,
		})
	}
	return t
}

// RelationTable lays relation rows out in the exported column order.
func RelationTable(rows []relation.Row) *table.Table {
	t := table.New(relation.Columns...)
	for _, row := range rows {
		t.Rows = append(t.Rows, row.Values())
	}
	return t
}

// ScrapedTable converts rows extracted from a saved law page into a row
// table with empty payloads.
func ScrapedTable(rows []lawpage.Row) *table.Table {
	t := table.New(table.ColArticle, table.ColLabel, table.ColPayloadText)
	for _, row := range rows {
		t.Rows = append(t.Rows, []string{row.Article, row.Label, ""})
	}
	return t
}

