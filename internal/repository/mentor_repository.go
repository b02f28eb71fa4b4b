package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/free-learning-api/internal/models"
)

// MentorRepository resolves eligible mentors and collaborators for a unit.
type MentorRepository struct {
	db *sqlx.DB
}

// NewMentorRepository constructs the repository.
func NewMentorRepository(db *sqlx.DB) *MentorRepository {
	return &MentorRepository{db: db}
}

// SelectUnitMentors returns the people a student may pick as school mentor for
// a unit, never including the requesting person themselves. The base branch is
// the staff of the unit's learning areas; the unit's mentor settings add
// optional branches for past completors and authors, a custom person list and
// a custom role.
func (r *MentorRepository) SelectUnitMentors(ctx context.Context, unit *models.Unit, excludePersonID string) ([]models.MentorCandidate, error) {
	args := &argList{}
	unitBind := args.bind(unit.ID)
	excludeBind := args.bind(excludePersonID)

	cols := []string{
		"p.id AS person_id",
		"p.title",
		"p.preferred_name",
		"p.surname",
	}

	staffBranch := newSelect().
		Distinct().
		Columns(cols...).
		From("units u").
		Join("departments d", departmentListJoin).
		Join("department_staff ds", "ds.department_id = d.id").
		Join("persons p", "p.id = ds.person_id").
		Where("u.id = " + unitBind).
		Where(fmt.Sprintf("ds.role IN ('%s', '%s', '%s')",
			models.DeptRoleCoordinator, models.DeptRoleAssistantCoordinator, models.DeptRoleCurriculumTeacher)).
		Where("NOT p.id = " + excludeBind).
		Where(activePersonWindow("p", args)...)

	branches := []*selectBuilder{staffBranch}

	if unit.MentorCompletors {
		// Anyone who completed the unit, plus its authors.
		completorBranch := newSelect().
			Distinct().
			Columns(cols...).
			From("persons p").
			LeftJoin("unit_authors ua", fmt.Sprintf("ua.person_id = p.id AND ua.unit_id = %s", unitBind)).
			LeftJoin("unit_students us", fmt.Sprintf("us.student_id = p.id AND us.unit_id = %s", unitBind)).
			Where(fmt.Sprintf("(us.status = '%s' OR ua.id IS NOT NULL)", models.StatusCompleteApproved)).
			Where("NOT p.id = " + excludeBind).
			Where(activePersonWindow("p", args)...)
		branches = append(branches, completorBranch)
	}

	if unit.MentorCustomList != "" {
		customBranch := newSelect().
			Distinct().
			Columns(cols...).
			From("persons p").
			Where(fmt.Sprintf("p.id = ANY(string_to_array(%s, ','))", args.bind(unit.MentorCustomList))).
			Where("NOT p.id = " + excludeBind).
			Where(activePersonWindow("p", args)...)
		branches = append(branches, customBranch)
	}

	if unit.MentorCustomRoleID != nil && *unit.MentorCustomRoleID != "" {
		roleBranch := newSelect().
			Distinct().
			Columns(cols...).
			From("persons p").
			Where("p.primary_role_id = " + args.bind(*unit.MentorCustomRoleID)).
			Where("NOT p.id = " + excludeBind).
			Where(activePersonWindow("p", args)...)
		branches = append(branches, roleBranch)
	}

	sql := union(branches...).OrderBy("surname", "preferred_name").SQL()

	var mentors []models.MentorCandidate
	if err := r.db.SelectContext(ctx, &mentors, sql, args.values()...); err != nil {
		return nil, fmt.Errorf("select unit mentors: %w", err)
	}
	return mentors, nil
}

// SelectPotentialCollaborators returns the people a student can invite into a
// shared enrolment, partitioned by role category and always excluding the
// requester. The student variant admits only candidates at or above the
// unit's minimum year group who hold all of its prerequisites and have not
// already completed the unit; each row carries the candidate's prerequisite
// count.
func (r *MentorRepository) SelectPotentialCollaborators(ctx context.Context, unit *models.Unit, schoolYearID, excludePersonID string, category models.RoleCategory) ([]models.CollaboratorCandidate, error) {
	args := &argList{}

	switch category {
	case models.RoleCategoryStudent:
		// Exempt counts the same as an approved completion, both for
		// prerequisites and for having finished this unit.
		prereqCountExpr := fmt.Sprintf(`(SELECT COUNT(DISTINCT prereq.unit_id) FROM unit_students prereq
 JOIN units pu ON (pu.id = prereq.unit_id AND pu.active)
 WHERE prereq.student_id = p.id AND prereq.status IN ('%s', '%s')
 AND prereq.unit_id = ANY(string_to_array(NULLIF(%s, ''), ',')))`,
			models.StatusCompleteApproved, models.StatusExempt, args.bind(unit.PrerequisiteIDList))
		completedExpr := fmt.Sprintf(`(SELECT done.id FROM unit_students done
 WHERE done.student_id = p.id AND done.unit_id = %s
 AND done.status IN ('%s', '%s') LIMIT 1)`,
			args.bind(unit.ID), models.StatusCompleteApproved, models.StatusExempt)

		query := newSelect().
			Columns(
				"p.id AS person_id",
				"p.preferred_name",
				"p.surname",
				"se.roll_group",
				prereqCountExpr+" AS prerequisite_count",
				completedExpr+" AS completed_enrolment_id",
			).
			From("persons p").
			Join("student_enrolments se", "se.person_id = p.id").
			Where("se.school_year_id = " + args.bind(schoolYearID)).
			Where("p.role_category = " + args.bind(string(category))).
			Where("NOT p.id = " + args.bind(excludePersonID)).
			Where(activePersonWindow("p", args)...).
			Where(completedExpr + " IS NULL")
		if unit.YearGroupMinimum != nil {
			query = query.Where("se.year_group_id >= " + args.bind(*unit.YearGroupMinimum))
		}
		if n := prerequisiteTotal(unit.PrerequisiteIDList); n > 0 {
			query = query.Where(prereqCountExpr + " >= " + args.bind(n))
		}
		query = query.OrderBy("p.surname", "p.preferred_name")

		var rows []models.CollaboratorCandidate
		if err := r.db.SelectContext(ctx, &rows, query.SQL(), args.values()...); err != nil {
			return nil, fmt.Errorf("select potential collaborators: %w", err)
		}
		return rows, nil

	default:
		query := newSelect().
			Columns(
				"p.id AS person_id",
				"p.preferred_name",
				"p.surname",
				"NULL AS roll_group",
				"NULL AS prerequisite_count",
				"NULL AS completed_enrolment_id",
			).
			From("persons p").
			Where("p.role_category = "+args.bind(string(category))).
			Where("NOT p.id = "+args.bind(excludePersonID)).
			Where(activePersonWindow("p", args)...).
			OrderBy("p.surname", "p.preferred_name")

		var rows []models.CollaboratorCandidate
		if err := r.db.SelectContext(ctx, &rows, query.SQL(), args.values()...); err != nil {
			return nil, fmt.Errorf("select potential collaborators: %w", err)
		}
		return rows, nil
	}
}

// prerequisiteTotal counts the entries of a CSV prerequisite list.
func prerequisiteTotal(list string) int {
	total := 0
	for _, id := range strings.Split(list, ",") {
		if strings.TrimSpace(id) != "" {
			total++
		}
	}
	return total
}
