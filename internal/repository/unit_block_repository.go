package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/free-learning-api/internal/models"
)

// UnitBlockRepository handles a unit's ordered content blocks. Blocks keep
// their identity across edits; sequence is rewritten from submission order.
type UnitBlockRepository struct {
	db *sqlx.DB
}

// NewUnitBlockRepository constructs the repository.
func NewUnitBlockRepository(db *sqlx.DB) *UnitBlockRepository {
	return &UnitBlockRepository{db: db}
}

// Update rewrites an existing block in place, preserving its identity.
func (r *UnitBlockRepository) Update(ctx context.Context, block *models.UnitBlock) error {
	const query = `UPDATE unit_blocks SET unit_id = :unit_id, title = :title, type = :type,
        length = :length, content = :content, teacher_notes = :teacher_notes,
        sequence_number = :sequence_number WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return fmt.Errorf("update unit block: %w", err)
	}
	return nil
}

// Insert persists a new block and captures its generated identifier.
func (r *UnitBlockRepository) Insert(ctx context.Context, block *models.UnitBlock) error {
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	const query = `INSERT INTO unit_blocks (id, unit_id, title, type, length, content, teacher_notes, sequence_number)
        VALUES (:id, :unit_id, :title, :type, :length, :content, :teacher_notes, :sequence_number)`
	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return fmt.Errorf("insert unit block: %w", err)
	}
	return nil
}

// DeleteOrphans removes the unit's blocks whose identifiers were not part of
// the just-processed submission, excluding each kept ID with a conjunctive
// NOT-equal predicate. An empty keep list removes every block for the unit.
func (r *UnitBlockRepository) DeleteOrphans(ctx context.Context, unitID string, keepIDs []string) error {
	query := "DELETE FROM unit_blocks WHERE unit_id = $1"
	args := []interface{}{unitID}
	var sb strings.Builder
	sb.WriteString(query)
	for _, id := range keepIDs {
		sb.WriteString(fmt.Sprintf(" AND NOT id = $%d", len(args)+1))
		args = append(args, id)
	}
	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("delete orphaned unit blocks: %w", err)
	}
	return nil
}

// ListByUnit returns the unit's blocks in sequence order.
func (r *UnitBlockRepository) ListByUnit(ctx context.Context, unitID string) ([]models.UnitBlock, error) {
	const query = `SELECT id, unit_id, title, type, length, content, teacher_notes, sequence_number
        FROM unit_blocks WHERE unit_id = $1 ORDER BY sequence_number`
	var blocks []models.UnitBlock
	if err := r.db.SelectContext(ctx, &blocks, query, unitID); err != nil {
		return nil, fmt.Errorf("list unit blocks: %w", err)
	}
	return blocks, nil
}
