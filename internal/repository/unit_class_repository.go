package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/free-learning-api/internal/models"
)

// UnitClassRepository reads class rosters joined against unit enrolments.
type UnitClassRepository struct {
	db *sqlx.DB
}

// NewUnitClassRepository constructs the repository.
func NewUnitClassRepository(db *sqlx.DB) *UnitClassRepository {
	return &UnitClassRepository{db: db}
}

// ListUnitsByClass returns every enrolled student of a class paired with the
// unit they are working on in that class, if any. Sorting by unit name puts
// students on the same unit together; sorting by surname gives a roster view.
func (r *UnitClassRepository) ListUnitsByClass(ctx context.Context, schoolYearID, courseClassID, sortBy string) ([]models.ClassUnitRow, error) {
	orderBy := "p.surname, p.preferred_name"
	if sortBy == "unit" {
		orderBy = "us.collaboration_key, unit_name, p.surname, p.preferred_name"
	}

	query := fmt.Sprintf(`SELECT p.id AS person_id, p.surname, p.preferred_name,
 u.id AS unit_id, u.name AS unit_name, us.status, us.enrolment_method, us.collaboration_key, us.timestamp_joined
 FROM course_class_persons ccp
 JOIN persons p ON (p.id = ccp.person_id)
 LEFT JOIN unit_students us ON (us.course_class_id = ccp.course_class_id
   AND us.student_id = p.id AND us.school_year_id = $1)
 LEFT JOIN units u ON (u.id = us.unit_id)
 WHERE ccp.course_class_id = $2
 AND ccp.role = '%s'
 AND p.status = 'Full'
 AND (p.date_start IS NULL OR p.date_start <= CURRENT_DATE)
 AND (p.date_end IS NULL OR p.date_end >= CURRENT_DATE)
 ORDER BY %s`, models.ClassRoleStudent, orderBy)

	var rows []models.ClassUnitRow
	if err := r.db.SelectContext(ctx, &rows, query, schoolYearID, courseClassID); err != nil {
		return nil, fmt.Errorf("list units by class: %w", err)
	}
	return rows, nil
}
