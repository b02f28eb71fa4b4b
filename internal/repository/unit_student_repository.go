package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/free-learning-api/internal/models"
)

const unitStudentColumns = `us.id, us.unit_id, us.student_id, us.school_year_id, us.course_class_id,
 us.enrolment_method, us.status, us.school_mentor_id, us.external_mentor_name, us.external_mentor_email,
 us.evidence_type, us.evidence_location, us.comment_student, us.comment_approval, us.approver_id,
 us.collaboration_key, us.confirmation_key, us.timestamp_joined, us.timestamp_complete_pending,
 us.timestamp_complete_approved`

// learningAreaExpr aggregates the department names behind a unit's CSV list.
const learningAreaExpr = `(SELECT string_agg(DISTINCT d.name, ', ') FROM departments d WHERE ` + departmentListJoin + `) AS learning_area`

// UnitStudentRepository composes the read queries over unit enrolments and
// handles enrolment writes.
type UnitStudentRepository struct {
	db *sqlx.DB
}

// NewUnitStudentRepository constructs the repository.
func NewUnitStudentRepository(db *sqlx.DB) *UnitStudentRepository {
	return &UnitStudentRepository{db: db}
}

// QueryCurrentStudentsByUnit returns the enrolments of one unit for a school
// year, ranked pending-first. A full-scope actor sees every enrolment in one
// branch; a restricted actor gets the union of a mentor-scoped branch and a
// class-teacher branch, deduplicated by distinct selection.
func (r *UnitStudentRepository) QueryCurrentStudentsByUnit(ctx context.Context, schoolYearID, unitID string, actor models.Actor) ([]models.UnitStudentDetail, error) {
	args := &argList{}
	unitBind := args.bind(unitID)
	yearBind := args.bind(schoolYearID)

	baseCols := []string{
		unitStudentColumns,
		"p.surname AS student_surname",
		"p.preferred_name AS student_preferred_name",
		"p.email AS student_email",
		statusSortExpr + " AS status_sort",
	}

	var sql string
	if actor.ManagesAll() {
		branch := newSelect().
			Distinct().
			Columns(baseCols...).
			Columns(
				"c.name_short AS course_name",
				"cc.name_short AS class_name",
				"mentor.surname AS mentor_surname",
				"mentor.preferred_name AS mentor_preferred_name",
			).
			From("unit_students us").
			Join("persons p", "p.id = us.student_id").
			LeftJoin("course_classes cc", "cc.id = us.course_class_id").
			LeftJoin("courses c", "c.id = cc.course_id").
			LeftJoin("persons mentor", "mentor.id = us.school_mentor_id").
			Where("us.unit_id = "+unitBind, "us.school_year_id = "+yearBind).
			Where(activePersonWindow("p", args)...).
			OrderBy("status_sort", "student_surname", "student_preferred_name")
		sql = branch.SQL()
	} else {
		actorBind := args.bind(actor.PersonID)

		mentorBranch := newSelect().
			Distinct().
			Columns(baseCols...).
			Columns(
				"NULL AS course_name",
				"NULL AS class_name",
				"mentor.surname AS mentor_surname",
				"mentor.preferred_name AS mentor_preferred_name",
			).
			From("unit_students us").
			Join("persons p", "p.id = us.student_id").
			Join("persons mentor", "mentor.id = us.school_mentor_id").
			Where("us.unit_id = "+unitBind, "us.school_year_id = "+yearBind).
			Where(activePersonWindow("p", args)...).
			Where("mentor.id = " + actorBind)

		teacherBranch := newSelect().
			Distinct().
			Columns(baseCols...).
			Columns(
				"c.name_short AS course_name",
				"cc.name_short AS class_name",
				"NULL AS mentor_surname",
				"NULL AS mentor_preferred_name",
			).
			From("unit_students us").
			Join("persons p", "p.id = us.student_id").
			Join("course_classes cc", "cc.id = us.course_class_id").
			Join("course_class_persons ccp", "ccp.course_class_id = cc.id").
			Join("courses c", "c.id = cc.course_id").
			Where("us.unit_id = "+unitBind, "us.school_year_id = "+yearBind).
			Where(activePersonWindow("p", args)...).
			Where(fmt.Sprintf("ccp.person_id = %s AND ccp.role IN ('%s', '%s')",
				actorBind, models.ClassRoleTeacher, models.ClassRoleAssistant))

		sql = union(mentorBranch, teacherBranch).
			OrderBy("status_sort", "student_surname", "student_preferred_name").
			SQL()
	}

	var rows []models.UnitStudentDetail
	if err := r.db.SelectContext(ctx, &rows, sql, args.values()...); err != nil {
		return nil, fmt.Errorf("query current students by unit: %w", err)
	}
	return rows, nil
}

// QueryUnitsByStudent returns a student's unit history. Optional department
// and status filters are applied as predicate fragments with title-case
// normalisation; unrecognised filter fields leave the query unmodified.
func (r *UnitStudentRepository) QueryUnitsByStudent(ctx context.Context, personID string, filter models.UnitHistoryFilter) ([]models.UnitHistoryRow, error) {
	args := &argList{}
	personBind := args.bind(personID)

	query := newSelect().
		Columns(
			"us.id AS unit_student_id",
			"u.id AS unit_id",
			"u.name AS unit_name",
			learningAreaExpr,
			"u.course AS unit_course",
			"us.enrolment_method",
			"us.status",
			"COALESCE(sy.name, '') AS school_year",
			"us.evidence_type",
			"us.evidence_location",
			"us.comment_student",
			"us.comment_approval",
			"c.name_short AS course_name",
			"cc.name_short AS class_name",
			"us.timestamp_joined",
			"us.timestamp_complete_pending",
			"us.timestamp_complete_approved",
		).
		From("units u").
		Join("unit_students us", "us.unit_id = u.id").
		Join("persons p", "p.id = us.student_id").
		LeftJoin("school_years sy", "sy.id = us.school_year_id").
		LeftJoin("course_classes cc", "cc.id = us.course_class_id").
		LeftJoin("courses c", "c.id = cc.course_id").
		Where("p.id = " + personBind).
		Where(activePersonWindow("p", args)...).
		OrderBy("us.timestamp_joined DESC")

	if filter.Department != "" {
		query.Where(fmt.Sprintf(
			"EXISTS (SELECT 1 FROM departments d WHERE %s AND d.name = %s)",
			departmentListJoin, args.bind(titleCase(filter.Department))))
	}
	if filter.Status != "" {
		query.Where("us.status = " + args.bind(titleCase(filter.Status)))
	}

	var rows []models.UnitHistoryRow
	if err := r.db.SelectContext(ctx, &rows, query.SQL(), args.values()...); err != nil {
		return nil, fmt.Errorf("query units by student: %w", err)
	}
	return rows, nil
}

// QueryEvidencePending returns Complete - Pending enrolments awaiting review:
// the union of a class-teacher branch and a school-mentor branch. A non-empty
// reviewerID narrows each branch to that reviewer.
func (r *UnitStudentRepository) QueryEvidencePending(ctx context.Context, schoolYearID, reviewerID string) ([]models.PendingReviewRow, error) {
	args := &argList{}
	yearBind := args.bind(schoolYearID)

	baseCols := []string{
		unitStudentColumns,
		"u.name AS unit_name",
		learningAreaExpr,
		"u.course AS unit_course",
		"p.surname AS student_surname",
		"p.preferred_name AS student_preferred_name",
	}

	teacherBranch := newSelect().
		Distinct().
		Columns(baseCols...).
		Columns(
			"c.name_short AS course_name",
			"cc.name_short AS class_name",
			"NULL AS mentor_surname",
			"NULL AS mentor_preferred_name",
		).
		From("units u").
		Join("unit_students us", "us.unit_id = u.id").
		Join("persons p", "p.id = us.student_id").
		LeftJoin("course_classes cc", "cc.id = us.course_class_id").
		LeftJoin("courses c", "c.id = cc.course_id").
		LeftJoin("course_class_persons ccp", "ccp.course_class_id = cc.id").
		Where(fmt.Sprintf("ccp.role IN ('%s', '%s')", models.ClassRoleTeacher, models.ClassRoleAssistant)).
		Where(fmt.Sprintf("us.status = '%s'", models.StatusCompletePending)).
		Where("us.school_year_id = " + yearBind).
		Where(activePersonWindow("p", args)...)

	mentorBranch := newSelect().
		Distinct().
		Columns(baseCols...).
		Columns(
			"NULL AS course_name",
			"NULL AS class_name",
			"mentor.surname AS mentor_surname",
			"mentor.preferred_name AS mentor_preferred_name",
		).
		From("units u").
		Join("unit_students us", "us.unit_id = u.id").
		Join("persons p", "p.id = us.student_id").
		Join("persons mentor", "mentor.id = us.school_mentor_id").
		Where(fmt.Sprintf("us.status = '%s'", models.StatusCompletePending)).
		Where("us.school_year_id = " + yearBind).
		Where(activePersonWindow("p", args)...)

	if reviewerID != "" {
		reviewerBind := args.bind(reviewerID)
		teacherBranch.Where("ccp.person_id = " + reviewerBind)
		mentorBranch.Where("us.school_mentor_id = " + reviewerBind)
	}

	sql := union(teacherBranch, mentorBranch).
		OrderBy("timestamp_complete_pending", "student_surname").
		SQL()

	var rows []models.PendingReviewRow
	if err := r.db.SelectContext(ctx, &rows, sql, args.values()...); err != nil {
		return nil, fmt.Errorf("query evidence pending: %w", err)
	}
	return rows, nil
}

// QueryEnrolmentPending returns school-mentor enrolment requests still
// awaiting mentor confirmation. A non-empty mentorID narrows to that mentor.
func (r *UnitStudentRepository) QueryEnrolmentPending(ctx context.Context, schoolYearID, mentorID string) ([]models.PendingReviewRow, error) {
	args := &argList{}

	query := newSelect().
		Columns(
			unitStudentColumns,
			"u.name AS unit_name",
			learningAreaExpr,
			"u.course AS unit_course",
			"p.surname AS student_surname",
			"p.preferred_name AS student_preferred_name",
			"NULL AS course_name",
			"NULL AS class_name",
			"mentor.surname AS mentor_surname",
			"mentor.preferred_name AS mentor_preferred_name",
		).
		From("units u").
		Join("unit_students us", "us.unit_id = u.id").
		Join("persons p", "p.id = us.student_id").
		Join("persons mentor", "mentor.id = us.school_mentor_id").
		Where(fmt.Sprintf("us.enrolment_method = '%s'", models.EnrolSchoolMentor)).
		Where(fmt.Sprintf("us.status = '%s'", models.StatusCurrentPending)).
		Where("us.school_year_id = "+args.bind(schoolYearID)).
		Where(activePersonWindow("p", args)...).
		OrderBy("us.timestamp_joined", "student_surname")

	if mentorID != "" {
		query.Where("us.school_mentor_id = " + args.bind(mentorID))
	}

	var rows []models.PendingReviewRow
	if err := r.db.SelectContext(ctx, &rows, query.SQL(), args.values()...); err != nil {
		return nil, fmt.Errorf("query enrolment pending: %w", err)
	}
	return rows, nil
}

// GetDetail returns one enrolment with person context, optionally narrowed by
// student and/or enrolment identifier.
func (r *UnitStudentRepository) GetDetail(ctx context.Context, unitID, personID, unitStudentID string) (*models.UnitStudentDetail, error) {
	args := &argList{}
	query := newSelect().
		Columns(
			unitStudentColumns,
			"p.surname AS student_surname",
			"p.preferred_name AS student_preferred_name",
			"p.email AS student_email",
			"NULL AS course_name",
			"NULL AS class_name",
			"NULL AS mentor_surname",
			"NULL AS mentor_preferred_name",
			statusSortExpr+" AS status_sort",
		).
		From("unit_students us").
		Join("persons p", "p.id = us.student_id").
		Where("us.unit_id = " + args.bind(unitID))

	if personID != "" {
		query.Where("us.student_id = " + args.bind(personID))
	}
	if unitStudentID != "" {
		query.Where("us.id = " + args.bind(unitStudentID))
	}

	var detail models.UnitStudentDetail
	if err := r.db.GetContext(ctx, &detail, query.SQL(), args.values()...); err != nil {
		return nil, err
	}
	return &detail, nil
}

// SelectCollaboratorsByKey returns the enrolments sharing a collaboration key.
func (r *UnitStudentRepository) SelectCollaboratorsByKey(ctx context.Context, collaborationKey string) ([]models.UnitStudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s,
 p.surname AS student_surname, p.preferred_name AS student_preferred_name, p.email AS student_email,
 NULL AS course_name, NULL AS class_name, NULL AS mentor_surname, NULL AS mentor_preferred_name,
 %s AS status_sort
 FROM unit_students us
 JOIN persons p ON (p.id = us.student_id)
 WHERE us.collaboration_key = $1
 ORDER BY p.surname, p.preferred_name`, unitStudentColumns, statusSortExpr)

	var rows []models.UnitStudentDetail
	if err := r.db.SelectContext(ctx, &rows, query, collaborationKey); err != nil {
		return nil, fmt.Errorf("select collaborators by key: %w", err)
	}
	return rows, nil
}

// SelectLearningAreasByStudent returns the distinct Learning Area departments
// across every unit the student has enrolled in.
func (r *UnitStudentRepository) SelectLearningAreasByStudent(ctx context.Context, personID string) ([]models.LearningArea, error) {
	query := fmt.Sprintf(`SELECT DISTINCT d.id, d.name
 FROM units u
 JOIN unit_students us ON (us.unit_id = u.id)
 JOIN departments d ON (%s)
 WHERE us.student_id = $1
 AND d.type = 'Learning Area'
 ORDER BY d.name`, departmentListJoin)

	var areas []models.LearningArea
	if err := r.db.SelectContext(ctx, &areas, query, personID); err != nil {
		return nil, fmt.Errorf("select learning areas by student: %w", err)
	}
	return areas, nil
}

// Create persists a new enrolment record.
func (r *UnitStudentRepository) Create(ctx context.Context, enrolment *models.UnitStudent) error {
	if enrolment.ID == "" {
		enrolment.ID = uuid.NewString()
	}
	if enrolment.TimestampJoined.IsZero() {
		enrolment.TimestampJoined = time.Now().UTC()
	}
	const query = `INSERT INTO unit_students (id, unit_id, student_id, school_year_id, course_class_id,
        enrolment_method, status, school_mentor_id, external_mentor_name, external_mentor_email,
        evidence_type, evidence_location, comment_student, comment_approval, approver_id,
        collaboration_key, confirmation_key, timestamp_joined, timestamp_complete_pending, timestamp_complete_approved)
        VALUES (:id, :unit_id, :student_id, :school_year_id, :course_class_id,
        :enrolment_method, :status, :school_mentor_id, :external_mentor_name, :external_mentor_email,
        :evidence_type, :evidence_location, :comment_student, :comment_approval, :approver_id,
        :collaboration_key, :confirmation_key, :timestamp_joined, :timestamp_complete_pending, :timestamp_complete_approved)`
	if _, err := r.db.NamedExecContext(ctx, query, enrolment); err != nil {
		return fmt.Errorf("create unit enrolment: %w", err)
	}
	return nil
}

// SubmitEvidence records completion evidence and moves the enrolment to
// Complete - Pending.
func (r *UnitStudentRepository) SubmitEvidence(ctx context.Context, id, evidenceType, evidenceLocation, commentStudent string) error {
	const query = `UPDATE unit_students SET status = $2, evidence_type = $3, evidence_location = $4,
        comment_student = NULLIF($5, ''), timestamp_complete_pending = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.StatusCompletePending, evidenceType, evidenceLocation, commentStudent); err != nil {
		return fmt.Errorf("submit evidence: %w", err)
	}
	return nil
}

// RecordReview stores a reviewer's decision. The approval timestamp is only
// written for Complete - Approved outcomes.
func (r *UnitStudentRepository) RecordReview(ctx context.Context, id string, status models.UnitStudentStatus, commentApproval, approverID string) error {
	query := `UPDATE unit_students SET status = $2, comment_approval = NULLIF($3, ''), approver_id = $4 WHERE id = $1`
	if status == models.StatusCompleteApproved {
		query = `UPDATE unit_students SET status = $2, comment_approval = NULLIF($3, ''), approver_id = $4,
        timestamp_complete_approved = NOW() WHERE id = $1`
	}
	if _, err := r.db.ExecContext(ctx, query, id, status, commentApproval, approverID); err != nil {
		return fmt.Errorf("record review: %w", err)
	}
	return nil
}

// FindByID returns one enrolment row.
func (r *UnitStudentRepository) FindByID(ctx context.Context, id string) (*models.UnitStudent, error) {
	query := fmt.Sprintf(`SELECT %s FROM unit_students us WHERE us.id = $1`, unitStudentColumns)
	var enrolment models.UnitStudent
	if err := r.db.GetContext(ctx, &enrolment, query, id); err != nil {
		return nil, err
	}
	return &enrolment, nil
}
