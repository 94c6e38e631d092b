// Package table reads and writes the delimited tables exchanged between
// pipeline stages.
package table

import (
	"errors"
	"fmt"
	"strings"
)

// Column names used by the scraped and derived row tables.
const (
	ColArticle        = "조"
	ColParagraph      = "항"
	ColItem           = "호"
	ColLabel          = "링크 텍스트"
	ColOriginalLabel  = "링크 텍스트(원본)"
	ColPayloadText    = "링크텍스트 클릭시 데이터"
	ColPayloadJSON    = "링크데이터_JSON"
	ColID             = "id"
	ColScope          = "매칭범위"
	ColMatchedArticle = "매칭조문자열"
)

// ErrMissingColumn is returned when a table lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Table is a header plus string rows. Rows shorter than the header read as
// empty cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// New returns an empty table with the given header.
func New(header ...string) *Table {
	return &Table{Header: append([]string(nil), header...)}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of a column. An exact match wins; otherwise
// names are compared ignoring case and spaces.
func (t *Table) Index(name string) int {
	for i, column := range t.Header {
		if column == name {
			return i
		}
	}
	want := foldColumn(name)
	for i, column := range t.Header {
		if foldColumn(column) == want {
			return i
		}
	}
	return -1
}

// Has reports whether the table has a column.
func (t *Table) Has(name string) bool {
	return t.Index(name) >= 0
}

// Require returns ErrMissingColumn naming every absent column.
func (t *Table) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if !t.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// Get returns a cell, or "" when the column or cell is absent.
func (t *Table) Get(row int, name string) string {
	column := t.Index(name)
	if column < 0 || row < 0 || row >= len(t.Rows) || column >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][column]
}

// Set writes a cell, adding the column at the end when it does not exist.
func (t *Table) Set(row int, name, value string) {
	column := t.Index(name)
	if column < 0 {
		column = t.AppendColumn(name)
	}
	t.pad(row, column+1)
	t.Rows[row][column] = value
}

// AppendColumn adds an empty column at the end and returns its position.
// An existing column is returned as is.
func (t *Table) AppendColumn(name string) int {
	if column := t.Index(name); column >= 0 {
		return column
	}
	t.Header = append(t.Header, name)
	return len(t.Header) - 1
}

// InsertColumnAfter adds an empty column right after another one, or at the
// end when after is absent. An existing column is left where it is.
func (t *Table) InsertColumnAfter(after, name string) int {
	if column := t.Index(name); column >= 0 {
		return column
	}
	position := t.Index(after)
	if position < 0 {
		return t.AppendColumn(name)
	}
	position++

	t.Header = insertAt(t.Header, position, name)
	for i := range t.Rows {
		if len(t.Rows[i]) >= position {
			t.Rows[i] = insertAt(t.Rows[i], position, "")
		}
	}
	return position
}

// AddRow appends a row built from column values.
func (t *Table) AddRow(values map[string]string) {
	row := make([]string, len(t.Header))
	t.Rows = append(t.Rows, row)
	for name, value := range values {
		t.Set(len(t.Rows)-1, name, value)
	}
}

func (t *Table) pad(row, width int) {
	if len(t.Rows[row]) < width {
		t.Rows[row] = append(t.Rows[row], make([]string, width-len(t.Rows[row]))...)
	}
}

func insertAt(values []string, position int, value string) []string {
	values = append(values, "")
	copy(values[position+1:], values[position:])
	values[position] = value
	return values
}

func foldColumn(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
}
