package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/free-learning-api/internal/models"
)

// UnitOutcomeRepository handles a unit's curriculum-outcome associations.
// The full set is replaced on every edit: delete-all then reinsert.
type UnitOutcomeRepository struct {
	db *sqlx.DB
}

// NewUnitOutcomeRepository constructs the repository.
func NewUnitOutcomeRepository(db *sqlx.DB) *UnitOutcomeRepository {
	return &UnitOutcomeRepository{db: db}
}

// DeleteByUnit removes every outcome row for the unit.
func (r *UnitOutcomeRepository) DeleteByUnit(ctx context.Context, unitID string) error {
	const query = `DELETE FROM unit_outcomes WHERE unit_id = $1`
	if _, err := r.db.ExecContext(ctx, query, unitID); err != nil {
		return fmt.Errorf("delete unit outcomes: %w", err)
	}
	return nil
}

// Insert persists one outcome row at its sequence position.
func (r *UnitOutcomeRepository) Insert(ctx context.Context, outcome *models.UnitOutcome) error {
	if outcome.ID == "" {
		outcome.ID = uuid.NewString()
	}
	const query = `INSERT INTO unit_outcomes (id, unit_id, outcome_id, content, sequence_number)
        VALUES (:id, :unit_id, :outcome_id, :content, :sequence_number)`
	if _, err := r.db.NamedExecContext(ctx, query, outcome); err != nil {
		return fmt.Errorf("insert unit outcome: %w", err)
	}
	return nil
}

// ListByUnit returns outcome rows in sequence order.
func (r *UnitOutcomeRepository) ListByUnit(ctx context.Context, unitID string) ([]models.UnitOutcome, error) {
	const query = `SELECT id, unit_id, outcome_id, content, sequence_number
        FROM unit_outcomes WHERE unit_id = $1 ORDER BY sequence_number`
	var outcomes []models.UnitOutcome
	if err := r.db.SelectContext(ctx, &outcomes, query, unitID); err != nil {
		return nil, fmt.Errorf("list unit outcomes: %w", err)
	}
	return outcomes, nil
}
