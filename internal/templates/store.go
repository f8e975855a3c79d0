package templates

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no template matches.
var ErrNotFound = errors.New("template not found")

// Store provides postgres persistence for message templates.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// List returns templates, optionally filtered by tag, newest first.
func (s *Store) List(ctx context.Context, tag string) ([]Template, error) {
	query := `
		SELECT id, name, tag, body, created_at
		FROM message_templates`
	args := []any{}
	if tag != "" {
		query += ` WHERE tag = $1`
		args = append(args, tag)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	var results []Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Tag, &t.Body, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

// GetByID loads one template.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*Template, error) {
	var t Template
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, tag, body, created_at
		FROM message_templates
		WHERE id = $1`, id).Scan(&t.ID, &t.Name, &t.Tag, &t.Body, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan template: %w", err)
	}
	return &t, nil
}
