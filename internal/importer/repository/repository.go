// Package repository provides postgres persistence for locally imported
// prospects.
package repository

import (
	"context"
	"errors"
	"fmt"

	"crm_portal_backend/internal/importer/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no prospect matches the query.
var ErrNotFound = errors.New("prospect not found")

// batchSize caps ids per query to respect transport limits on large IN reads.
const batchSize = 100

const prospectColumns = `id, full_name, phone, email, stage, source, dynamics_id, unit_id, executive_id, executive_name, created_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByPhone returns the most recent prospect whose stored phone equals the
// given ten-digit number, or ErrNotFound.
func (r *Repository) FindByPhone(ctx context.Context, phone string) (*domain.Prospect, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM prospects
		WHERE phone = $1
		ORDER BY created_at DESC
		LIMIT 1`, prospectColumns), phone)

	return scanProspect(row)
}

// FindByPhoneOrDynamicsID is the fetch-back query used when an import
// response omits the new record id: match on phone or on the external lead
// id, newest first.
func (r *Repository) FindByPhoneOrDynamicsID(ctx context.Context, phone, dynamicsID string) (*domain.Prospect, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM prospects
		WHERE phone = $1 OR (dynamics_id <> '' AND dynamics_id = $2)
		ORDER BY created_at DESC
		LIMIT 1`, prospectColumns), phone, dynamicsID)

	return scanProspect(row)
}

// GetByIDs loads prospects by id, querying in chunks. Missing ids are
// silently skipped; the result order is not guaranteed.
func (r *Repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Prospect, error) {
	results := make([]*domain.Prospect, 0, len(ids))

	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}

		rows, err := r.pool.Query(ctx, fmt.Sprintf(`
			SELECT %s FROM prospects
			WHERE id = ANY($1)`, prospectColumns), ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("query prospects by ids: %w", err)
		}

		for rows.Next() {
			prospect, err := scanProspect(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			results = append(results, prospect)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate prospects: %w", err)
		}
	}

	return results, nil
}

// GetByID loads a single prospect.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Prospect, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM prospects WHERE id = $1`, prospectColumns), id)
	return scanProspect(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProspect(row rowScanner) (*domain.Prospect, error) {
	var p domain.Prospect
	err := row.Scan(
		&p.ID,
		&p.FullName,
		&p.Phone,
		&p.Email,
		&p.Stage,
		&p.Source,
		&p.DynamicsID,
		&p.UnitID,
		&p.ExecutiveID,
		&p.ExecutiveName,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan prospect: %w", err)
	}
	return &p, nil
}
