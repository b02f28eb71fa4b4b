package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/free-learning-api/internal/models"
)

const unitColumns = `id, name, course, logo, difficulty, blurb, outline, student_reflection_text, license,
 available_students, available_staff, available_parents, available_other, shared_public, active, edit_lock,
 year_group_minimum, grouping, department_id_list, prerequisite_id_list,
 mentor_completors, mentor_custom_list, mentor_custom_role_id, created_at, updated_at`

// UnitRepository handles persistence of unit definitions.
type UnitRepository struct {
	db *sqlx.DB
}

// NewUnitRepository constructs the repository.
func NewUnitRepository(db *sqlx.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

// FindByID returns a unit by its ID.
func (r *UnitRepository) FindByID(ctx context.Context, id string) (*models.Unit, error) {
	query := fmt.Sprintf("SELECT %s FROM units WHERE id = $1", unitColumns)
	var unit models.Unit
	if err := r.db.GetContext(ctx, &unit, query, id); err != nil {
		return nil, err
	}
	return &unit, nil
}

// FindManaged returns the unit only when the actor's scope covers it. Full
// scope sees every unit; learning-area scope requires the unit to belong to
// a department where the actor holds a curriculum staff role. The scoped
// lookup must match exactly one row; zero or multiple matches return
// sql.ErrNoRows so no mutation proceeds on an ambiguous target.
func (r *UnitRepository) FindManaged(ctx context.Context, id string, actor models.Actor) (*models.Unit, error) {
	if actor.ManagesAll() {
		return r.FindByID(ctx, id)
	}

	query := fmt.Sprintf(`SELECT DISTINCT %s
 FROM units u
 JOIN departments d ON (%s)
 JOIN department_staff ds ON (ds.department_id = d.id)
 WHERE ds.person_id = $1
 AND ds.role IN ('%s', '%s', '%s')
 AND u.id = $2`,
		prefixColumns("u", unitColumns), departmentListJoin,
		models.DeptRoleCoordinator, models.DeptRoleAssistantCoordinator, models.DeptRoleCurriculumTeacher)

	var units []models.Unit
	if err := r.db.SelectContext(ctx, &units, query, actor.PersonID, id); err != nil {
		return nil, fmt.Errorf("find managed unit: %w", err)
	}
	if len(units) != 1 {
		return nil, sql.ErrNoRows
	}
	return &units[0], nil
}

// UpdateFields rewrites every scalar field of the unit in one statement.
func (r *UnitRepository) UpdateFields(ctx context.Context, unit *models.Unit) error {
	const query = `UPDATE units SET
 name = :name, course = :course, logo = :logo, difficulty = :difficulty, blurb = :blurb,
 outline = :outline, student_reflection_text = :student_reflection_text, license = :license,
 available_students = :available_students, available_staff = :available_staff,
 available_parents = :available_parents, available_other = :available_other,
 shared_public = :shared_public, active = :active, edit_lock = :edit_lock,
 year_group_minimum = :year_group_minimum, grouping = :grouping,
 department_id_list = :department_id_list, prerequisite_id_list = :prerequisite_id_list,
 mentor_completors = :mentor_completors, mentor_custom_list = :mentor_custom_list,
 mentor_custom_role_id = :mentor_custom_role_id, updated_at = NOW()
 WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, unit); err != nil {
		return fmt.Errorf("update unit fields: %w", err)
	}
	return nil
}

// prefixColumns qualifies each column of a comma-separated list with a table
// alias.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
