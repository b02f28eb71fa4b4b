package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/free-learning-api/internal/models"
)

// DiscussionRepository reads and writes the comment thread attached to an
// enrolment. The thread is the union of stored discussion rows and comments
// synthesised from the enrolment's own evidence and approval fields, so older
// enrolments without discussion rows still render a history.
type DiscussionRepository struct {
	db *sqlx.DB
}

// NewDiscussionRepository constructs the repository.
func NewDiscussionRepository(db *sqlx.DB) *DiscussionRepository {
	return &DiscussionRepository{db: db}
}

// ListByEnrolment returns the full thread for one enrolment, oldest first.
func (r *DiscussionRepository) ListByEnrolment(ctx context.Context, unitStudentID string) ([]models.DiscussionEntry, error) {
	args := &argList{}
	idBind := args.bind(unitStudentID)

	stored := newSelect().
		Columns(
			"disc.comment",
			"'comment' AS type",
			"COALESCE(disc.tag, '') AS tag",
			"disc.attachment_type",
			"disc.attachment_location",
			"p.id AS person_id",
			"p.title",
			"p.surname",
			"p.preferred_name",
			"p.role_category AS category",
			"disc.timestamp",
		).
		From("discussions disc").
		Join("persons p", "p.id = disc.person_id").
		Where("disc.foreign_table = 'unit_students'").
		Where("disc.foreign_table_id = " + idBind)

	evidence := newSelect().
		Columns(
			"us.comment_student AS comment",
			"'evidence' AS type",
			fmt.Sprintf("'%s' AS tag", models.StatusCompletePending),
			"us.evidence_type AS attachment_type",
			"us.evidence_location AS attachment_location",
			"p.id AS person_id",
			"p.title",
			"p.surname",
			"p.preferred_name",
			"p.role_category AS category",
			"us.timestamp_complete_pending AS timestamp",
		).
		From("unit_students us").
		Join("persons p", "p.id = us.student_id").
		Where("us.id = " + idBind).
		Where("us.timestamp_complete_pending IS NOT NULL")

	approval := newSelect().
		Columns(
			"us.comment_approval AS comment",
			"'approval' AS type",
			"us.status AS tag",
			"NULL AS attachment_type",
			"NULL AS attachment_location",
			"p.id AS person_id",
			"p.title",
			"p.surname",
			"p.preferred_name",
			"p.role_category AS category",
			"us.timestamp_complete_approved AS timestamp",
		).
		From("unit_students us").
		Join("persons p", "p.id = us.approver_id").
		Where("us.id = " + idBind).
		Where("us.comment_approval IS NOT NULL")

	sql := union(stored, evidence, approval).OrderBy("timestamp").SQL()

	var entries []models.DiscussionEntry
	if err := r.db.SelectContext(ctx, &entries, sql, args.values()...); err != nil {
		return nil, fmt.Errorf("list discussion by enrolment: %w", err)
	}
	if len(entries) > 0 {
		return entries, nil
	}

	// No comments anywhere yet: fall back to a single row describing the
	// enrolment itself so callers always have a thread head to render.
	fallback := `SELECT NULL AS comment, 'enrolment' AS type, us.status AS tag,
 NULL AS attachment_type, NULL AS attachment_location,
 p.id AS person_id, p.title, p.surname, p.preferred_name, p.role_category AS category,
 us.timestamp_joined AS timestamp
 FROM unit_students us
 JOIN persons p ON (p.id = us.student_id)
 WHERE us.id = $1`
	if err := r.db.SelectContext(ctx, &entries, fallback, unitStudentID); err != nil {
		return nil, fmt.Errorf("list discussion fallback: %w", err)
	}
	return entries, nil
}

// Add appends one comment to an enrolment's thread.
func (r *DiscussionRepository) Add(ctx context.Context, unitStudentID, personID, comment, tag string) error {
	const query = `INSERT INTO discussions (id, foreign_table, foreign_table_id, person_id, comment, tag, timestamp)
        VALUES ($1, 'unit_students', $2, $3, $4, NULLIF($5, ''), NOW())`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), unitStudentID, personID, comment, tag); err != nil {
		return fmt.Errorf("add discussion comment: %w", err)
	}
	return nil
}
