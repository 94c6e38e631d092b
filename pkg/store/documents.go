package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coolbeans/lawlink/pkg/node"
	"github.com/coolbeans/lawlink/pkg/relation"
)

// Document is the output of one linked document.
type Document struct {
	Name      string
	Source    string
	Nodes     node.Collection
	Relations []relation.Row
}

// DocumentSummary counts what a run stored for a document.
type DocumentSummary struct {
	Name      string `json:"name"`
	Source    string `json:"source,omitempty"`
	Nodes     int    `json:"nodes"`
	Refs      int    `json:"refs"`
	Relations int    `json:"relations"`
}

// StoredNode is a node together with the document it was saved under.
type StoredNode struct {
	Document string
	Node     node.Node
}

// InboundLink is a reference pointing at a node.
type InboundLink struct {
	Document      string `json:"document"`
	SourceID      string `json:"src_id"`
	SourceLevel   string `json:"src_level"`
	SourceNumber  string `json:"src_number"`
	RefIndex      int    `json:"ref_index"`
	Label         string `json:"label"`
	DocumentTitle string `json:"law_title"`
}

// SaveDocument stores a document's nodes, references and relation rows
// under a run, replacing anything saved earlier under the same name.
func (s *Store) SaveDocument(ctx context.Context, runID string, doc Document) error {
	elements, err := node.MarshalElements(doc.Nodes)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE run_id = ? AND name = ?", runID, doc.Name); err != nil {
		return fmt.Errorf("failed to clear document: %w", err)
	}

	refCount := 0
	for _, n := range doc.Nodes {
		refCount += len(n.Common().Refs)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (run_id, name, source, node_count, ref_count, relation_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, doc.Name, doc.Source, len(doc.Nodes), refCount, len(doc.Relations))
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	for position, n := range doc.Nodes {
		base := n.Common()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO nodes (run_id, document, position, node_id, law_title, level, number, parent_id, data)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, doc.Name, position, nullable(base.ID), base.DocumentTitle,
			string(n.Level()), n.Number(), nullable(n.ParentID()), string(elements[position]))
		if err != nil {
			return fmt.Errorf("failed to insert node %s: %w", base.ID, err)
		}

		if base.ID == "" {
			continue
		}
		for index, reference := range base.Refs {
			_, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO refs (run_id, document, src_id, ref_index, label, law_title, target_id, relation)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, runID, doc.Name, base.ID, index+1, reference.Label, reference.DocumentTitle,
				reference.TargetID, reference.Relation)
			if err != nil {
				return fmt.Errorf("failed to insert reference of %s: %w", base.ID, err)
			}
		}
	}

	for position, row := range doc.Relations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO relations (run_id, document, position, src_id, src_law_title, src_level, src_number,
				src_text, ref_index, ref_label, ref_law_title, ref_id, ref_text, ref_found)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, doc.Name, position, row.SourceID, row.SourceDocumentTitle, row.SourceLevel, row.SourceNumber,
			row.SourceText, row.RefIndex, row.RefLabel, row.RefDocumentTitle, row.RefID, row.RefText, row.RefFound)
		if err != nil {
			return fmt.Errorf("failed to insert relation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document: %w", err)
	}
	return nil
}

// Documents lists the documents of a run by name.
func (s *Store) Documents(ctx context.Context, runID string) ([]DocumentSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, COALESCE(source, ''), node_count, ref_count, relation_count
		FROM documents WHERE run_id = ? ORDER BY name
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var documents []DocumentSummary
	for rows.Next() {
		var d DocumentSummary
		if err := rows.Scan(&d.Name, &d.Source, &d.Nodes, &d.Refs, &d.Relations); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		documents = append(documents, d)
	}
	return documents, rows.Err()
}

// Nodes returns a document's nodes in saved order, optionally only those
// of one level.
func (s *Store) Nodes(ctx context.Context, runID, document string, level node.Level) (node.Collection, error) {
	query := "SELECT data FROM nodes WHERE run_id = ? AND document = ?"
	args := []any{runID, document}
	if level != "" {
		query += " AND level = ?"
		args = append(args, string(level))
	}
	query += " ORDER BY position"
	return s.queryNodes(ctx, query, args...)
}

// RunNodes returns the nodes of every document saved in a run, ordered by
// document name and then document order.
func (s *Store) RunNodes(ctx context.Context, runID string) (node.Collection, error) {
	return s.queryNodes(ctx, "SELECT data FROM nodes WHERE run_id = ? ORDER BY document, position", runID)
}

func (s *Store) queryNodes(ctx context.Context, query string, args ...any) (node.Collection, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	collection := node.Collection{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		decoded, err := node.Decode([]byte(data))
		if err != nil {
			return nil, err
		}
		collection = append(collection, decoded...)
	}
	return collection, rows.Err()
}

// Node returns the first saved node with the given id in a run.
func (s *Store) Node(ctx context.Context, runID, id string) (StoredNode, error) {
	var document, data string
	err := s.db.QueryRowContext(ctx, `
		SELECT document, data FROM nodes WHERE run_id = ? AND node_id = ?
		ORDER BY document, position LIMIT 1
	`, runID, id).Scan(&document, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredNode{}, fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return StoredNode{}, fmt.Errorf("failed to query node: %w", err)
	}

	decoded, err := node.Decode([]byte(data))
	if err != nil {
		return StoredNode{}, err
	}
	return StoredNode{Document: document, Node: decoded[0]}, nil
}

// Relations returns a document's relation rows in export order.
func (s *Store) Relations(ctx context.Context, runID, document string) ([]relation.Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT src_id, src_law_title, src_level, src_number, src_text, ref_index,
			ref_label, ref_law_title, ref_id, ref_text, ref_found
		FROM relations WHERE run_id = ? AND document = ? ORDER BY position
	`, runID, document)
	if err != nil {
		return nil, fmt.Errorf("failed to query relations: %w", err)
	}
	defer rows.Close()

	var relations []relation.Row
	for rows.Next() {
		var r relation.Row
		err := rows.Scan(&r.SourceID, &r.SourceDocumentTitle, &r.SourceLevel, &r.SourceNumber, &r.SourceText,
			&r.RefIndex, &r.RefLabel, &r.RefDocumentTitle, &r.RefID, &r.RefText, &r.RefFound)
		if err != nil {
			return nil, fmt.Errorf("failed to scan relation: %w", err)
		}
		relations = append(relations, r)
	}
	return relations, rows.Err()
}

// Inbound returns every reference in a run whose target is id.
func (s *Store) Inbound(ctx context.Context, runID, id string) ([]InboundLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.document, r.src_id, COALESCE(n.level, ''), COALESCE(n.number, ''),
			r.ref_index, COALESCE(r.label, ''), COALESCE(r.law_title, '')
		FROM refs r
		LEFT JOIN nodes n ON n.run_id = r.run_id AND n.document = r.document AND n.node_id = r.src_id
		WHERE r.run_id = ? AND r.target_id = ?
		ORDER BY r.document, r.src_id, r.ref_index
	`, runID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query inbound links: %w", err)
	}
	defer rows.Close()

	var links []InboundLink
	for rows.Next() {
		var l InboundLink
		err := rows.Scan(&l.Document, &l.SourceID, &l.SourceLevel, &l.SourceNumber, &l.RefIndex, &l.Label, &l.DocumentTitle)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inbound link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
