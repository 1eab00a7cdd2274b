package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/cypherlite/internal/ir"
)

// Node is a stored node row with its decoded property map.
type Node struct {
	ID         int64
	Label      string // empty when the node has no label
	Properties ir.IRObject
}

// Edge is a stored relationship row with its decoded property map.
type Edge struct {
	ID         int64
	SourceID   int64
	TargetID   int64
	Type       string
	Properties ir.IRObject
}

// Count is one row of a grouped count (label or relationship type).
type Count struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Summary describes the contents of the database.
// Labels and Types are ordered by name; unlabeled nodes appear under "".
type Summary struct {
	Nodes  int64   `json:"nodes"`
	Edges  int64   `json:"relationships"`
	Labels []Count `json:"labels"`
	Types  []Count `json:"types"`
}

// GetNode returns the node with the given id, or ErrNotFound.
func (s *Store) GetNode(ctx context.Context, id int64) (Node, error) {
	var (
		n     Node
		label sql.NullString
		props string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, label, properties FROM nodes WHERE id = ?", id,
	).Scan(&n.ID, &label, &props)
	if errors.Is(err, sql.ErrNoRows) {
		return Node{}, fmt.Errorf("node %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Node{}, fmt.Errorf("get node %d: %w", id, err)
	}

	n.Label = label.String
	n.Properties, err = ir.UnmarshalProperties(props)
	if err != nil {
		return Node{}, fmt.Errorf("node %d properties: %w", id, err)
	}
	return n, nil
}

// GetEdge returns the relationship with the given id, or ErrNotFound.
func (s *Store) GetEdge(ctx context.Context, id int64) (Edge, error) {
	var (
		e     Edge
		props string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, source_id, target_id, type, properties FROM edges WHERE id = ?", id,
	).Scan(&e.ID, &e.SourceID, &e.TargetID, &e.Type, &props)
	if errors.Is(err, sql.ErrNoRows) {
		return Edge{}, fmt.Errorf("edge %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Edge{}, fmt.Errorf("get edge %d: %w", id, err)
	}

	e.Properties, err = ir.UnmarshalProperties(props)
	if err != nil {
		return Edge{}, fmt.Errorf("edge %d properties: %w", id, err)
	}
	return e, nil
}

// CountNodes counts nodes with the given label; an empty label counts all nodes.
func (s *Store) CountNodes(ctx context.Context, label string) (int64, error) {
	query := "SELECT COUNT(*) FROM nodes"
	var args []any
	if label != "" {
		query += " WHERE label = ?"
		args = append(args, label)
	}
	return s.count(ctx, query, args...)
}

// CountEdges counts relationships with the given type; an empty type counts all.
func (s *Store) CountEdges(ctx context.Context, typ string) (int64, error) {
	query := "SELECT COUNT(*) FROM edges"
	var args []any
	if typ != "" {
		query += " WHERE type = ?"
		args = append(args, typ)
	}
	return s.count(ctx, query, args...)
}

func (s *Store) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Summarize returns total and grouped counts for nodes and relationships.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	var (
		sum Summary
		err error
	)
	if sum.Nodes, err = s.CountNodes(ctx, ""); err != nil {
		return Summary{}, err
	}
	if sum.Edges, err = s.CountEdges(ctx, ""); err != nil {
		return Summary{}, err
	}
	if sum.Labels, err = s.groupCounts(ctx,
		"SELECT COALESCE(label, ''), COUNT(*) FROM nodes GROUP BY 1 ORDER BY 1 COLLATE BINARY"); err != nil {
		return Summary{}, err
	}
	if sum.Types, err = s.groupCounts(ctx,
		"SELECT type, COUNT(*) FROM edges GROUP BY 1 ORDER BY 1 COLLATE BINARY"); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

func (s *Store) groupCounts(ctx context.Context, query string) ([]Count, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("group counts: %w", err)
	}
	defer rows.Close()

	counts := []Count{}
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}
