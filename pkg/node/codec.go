package node

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformedCollection is returned when the top-level JSON value is not a
// list (or a single object) of node records.
var ErrMalformedCollection = errors.New("node collection must be a JSON list")

// record is the flat serialized form of a node.
type record struct {
	ID            *string     `json:"id,omitempty"`
	DocumentTitle string      `json:"law_title"`
	Level         Level       `json:"level"`
	Number        string      `json:"number"`
	ParentID      *string     `json:"parent_id"`
	ChildrenIDs   []string    `json:"Children_id"`
	Text          string      `json:"text"`
	Refs          []Reference `json:"refs"`
}

// Decode parses a serialized collection. A single top-level object is
// treated as a one-element list. Elements that do not decode into a known
// level are kept as *Raw.
func Decode(data []byte) (Collection, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrMalformedCollection
	}

	var elements []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCollection, err)
		}
	case '{':
		elements = []json.RawMessage{json.RawMessage(trimmed)}
	default:
		return nil, ErrMalformedCollection
	}

	collection := make(Collection, 0, len(elements))
	for _, element := range elements {
		collection = append(collection, decodeElement(element))
	}
	return collection, nil
}

// DecodeReader reads and decodes a serialized collection.
func DecodeReader(r io.Reader) (Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading collection: %w", err)
	}
	return Decode(data)
}

// ParsePayload parses a linked-payload cell. Empty cells, values that fail
// to parse, and values that are neither a list nor an object all yield an
// empty collection. Single-quoted JSON is retried with double quotes.
func ParsePayload(cell string) Collection {
	text := strings.TrimSpace(cell)
	if text == "" {
		return nil
	}
	collection, err := Decode([]byte(text))
	if err == nil {
		return collection
	}
	if !json.Valid([]byte(text)) {
		collection, err = Decode([]byte(strings.ReplaceAll(text, "'", `"`)))
		if err == nil {
			return collection
		}
	}
	return nil
}

func decodeElement(element json.RawMessage) Node {
	raw := &Raw{Data: append([]byte(nil), element...)}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(element, &keys); err == nil {
		if value, present := keys["id"]; present {
			raw.HasID = true
			var compact bytes.Buffer
			if json.Compact(&compact, value) == nil {
				raw.IDValue = compact.Bytes()
			}
			var id string
			if json.Unmarshal(value, &id) == nil {
				raw.ID = id
			}
		}
	}

	// A type mismatch in one field still fills the others, which is enough
	// for a Raw record.
	var rec record
	err := json.Unmarshal(element, &rec)
	raw.DocumentTitle = rec.DocumentTitle
	raw.Text = rec.Text
	raw.Refs = rec.Refs
	if err != nil || rec.ID == nil {
		return raw
	}

	base := Base{
		ID:            *rec.ID,
		DocumentTitle: rec.DocumentTitle,
		Text:          rec.Text,
		Refs:          rec.Refs,
	}
	if base.Refs == nil {
		base.Refs = []Reference{}
	}
	parent := ""
	if rec.ParentID != nil {
		parent = *rec.ParentID
	}
	children := rec.ChildrenIDs
	if children == nil {
		children = []string{}
	}

	var n Node
	switch rec.Level {
	case LevelArticle:
		key, err := ParseArticleKey(rec.Number)
		if err != nil {
			return raw
		}
		n = &Article{Base: base, Key: key, Children: children}
	case LevelParagraph:
		number, err := strconv.Atoi(rec.Number)
		if err != nil {
			return raw
		}
		n = &Paragraph{Base: base, Num: number, Parent: parent, Children: children}
	case LevelItem:
		number, err := strconv.Atoi(rec.Number)
		if err != nil {
			return raw
		}
		n = &Item{Base: base, Num: number, Parent: parent}
	case LevelOther:
		n = &Other{Base: base}
	default:
		return raw
	}

	if fields, err := recordFields(toRecord(n)); err == nil {
		n.Common().origin = &origin{data: raw.Data, fields: fields}
	}
	return n
}

// origin is the serialized record a node was decoded from, together with
// the node's record fields as they were right after decoding.
type origin struct {
	data   json.RawMessage
	fields map[string]json.RawMessage
}

// Source returns the serialized record the node was decoded from, or nil
// for nodes built in memory.
func (b *Base) Source() json.RawMessage {
	if b.origin == nil {
		return nil
	}
	return b.origin.data
}

// recordKeys is the field order of a freshly serialized record.
var recordKeys = []string{"id", "law_title", "level", "number", "parent_id", "Children_id", "text", "refs"}

func toRecord(n Node) record {
	b := n.Common()
	id := b.ID
	rec := record{
		ID:            &id,
		DocumentTitle: b.DocumentTitle,
		Level:         n.Level(),
		Number:        n.Number(),
		ChildrenIDs:   n.ChildIDs(),
		Text:          b.Text,
		Refs:          b.Refs,
	}
	if parent := n.ParentID(); parent != "" {
		rec.ParentID = &parent
	}
	if rec.ChildrenIDs == nil {
		rec.ChildrenIDs = []string{}
	}
	if rec.Refs == nil {
		rec.Refs = []Reference{}
	}
	return rec
}

func marshalRecord(rec record) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(rec); err != nil {
		return nil, err
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}

func recordFields(rec record) (map[string]json.RawMessage, error) {
	data, err := marshalRecord(rec)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// encodeNode serializes one node. A decoded node is written back as the
// record it came from; fields changed since decoding are patched in place
// and every other key, known or not, keeps its original bytes.
func encodeNode(n Node) (json.RawMessage, error) {
	if raw, ok := n.(*Raw); ok {
		return json.RawMessage(raw.Data), nil
	}

	rec := toRecord(n)
	src := n.Common().origin
	if src == nil {
		return marshalRecord(rec)
	}

	fields, err := recordFields(rec)
	if err != nil {
		return nil, err
	}
	changed := make(map[string]json.RawMessage)
	for key, value := range fields {
		if !bytes.Equal(value, src.fields[key]) {
			changed[key] = value
		}
	}
	if len(changed) == 0 {
		return src.data, nil
	}
	return patchObject(src.data, changed)
}

// patchObject replaces the values of the changed keys in a JSON object,
// keeping key order. Changed keys missing from the object are appended in
// record order.
func patchObject(data json.RawMessage, changed map[string]json.RawMessage) (json.RawMessage, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	if token, err := decoder.Token(); err != nil || token != json.Delim('{') {
		return nil, fmt.Errorf("record is not a JSON object")
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	written := make(map[string]bool, len(changed))
	writeField := func(key string, value json.RawMessage) {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(key)
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}

	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("reading record key: %w", err)
		}
		key, _ := token.(string)
		var value json.RawMessage
		if err := decoder.Decode(&value); err != nil {
			return nil, fmt.Errorf("reading record field %s: %w", key, err)
		}
		if fresh, ok := changed[key]; ok {
			value = fresh
			written[key] = true
		}
		writeField(key, value)
	}
	for _, key := range recordKeys {
		if fresh, ok := changed[key]; ok && !written[key] {
			writeField(key, fresh)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalElements returns the JSON value of every node. Raw records are
// returned verbatim, as are decoded nodes that were not modified.
func MarshalElements(c Collection) ([]json.RawMessage, error) {
	elements := make([]json.RawMessage, 0, len(c))
	for _, n := range c {
		element, err := encodeNode(n)
		if err != nil {
			return nil, fmt.Errorf("encoding node %s: %w", n.Common().ID, err)
		}
		elements = append(elements, element)
	}
	return elements, nil
}

// Encode writes the collection as an indented JSON list.
func Encode(w io.Writer, c Collection) error {
	elements, err := MarshalElements(c)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(elements); err != nil {
		return fmt.Errorf("encoding collection: %w", err)
	}
	return nil
}

// EncodeCompact returns the collection as a single-line JSON list, the form
// stored in payload cells.
func EncodeCompact(c Collection) (string, error) {
	elements, err := MarshalElements(c)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(elements); err != nil {
		return "", fmt.Errorf("encoding collection: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
