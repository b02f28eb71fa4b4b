package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/free-learning-api/internal/models"
)

// UnitAuthorRepository handles the append-only unit authorship records.
type UnitAuthorRepository struct {
	db *sqlx.DB
}

// NewUnitAuthorRepository constructs the repository.
func NewUnitAuthorRepository(db *sqlx.DB) *UnitAuthorRepository {
	return &UnitAuthorRepository{db: db}
}

// Exists reports whether an attribution row exists for the (unit, person) pair.
func (r *UnitAuthorRepository) Exists(ctx context.Context, unitID, personID string) (bool, error) {
	const query = `SELECT 1 FROM unit_authors WHERE unit_id = $1 AND person_id = $2 LIMIT 1`
	var found int
	if err := r.db.GetContext(ctx, &found, query, unitID, personID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check unit author: %w", err)
	}
	return true, nil
}

// Insert appends an attribution row.
func (r *UnitAuthorRepository) Insert(ctx context.Context, author *models.UnitAuthor) error {
	if author.ID == "" {
		author.ID = uuid.NewString()
	}
	const query = `INSERT INTO unit_authors (id, unit_id, person_id, surname, preferred_name, website, created_at)
        VALUES (:id, :unit_id, :person_id, :surname, :preferred_name, :website, NOW())`
	if _, err := r.db.NamedExecContext(ctx, query, author); err != nil {
		return fmt.Errorf("insert unit author: %w", err)
	}
	return nil
}

// ListByUnit returns attribution rows for a unit in insertion order.
func (r *UnitAuthorRepository) ListByUnit(ctx context.Context, unitID string) ([]models.UnitAuthor, error) {
	const query = `SELECT id, unit_id, person_id, surname, preferred_name, website, created_at
        FROM unit_authors WHERE unit_id = $1 ORDER BY created_at`
	var authors []models.UnitAuthor
	if err := r.db.SelectContext(ctx, &authors, query, unitID); err != nil {
		return nil, fmt.Errorf("list unit authors: %w", err)
	}
	return authors, nil
}
