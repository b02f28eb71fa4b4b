package models

import "time"

// UnitStudentStatus is the lifecycle status of one person's enrolment in a unit.
type UnitStudentStatus string

const (
	StatusCurrent             UnitStudentStatus = "Current"
	StatusCurrentPending      UnitStudentStatus = "Current - Pending"
	StatusCompletePending     UnitStudentStatus = "Complete - Pending"
	StatusEvidenceNotApproved UnitStudentStatus = "Evidence Not Yet Approved"
	StatusCompleteApproved    UnitStudentStatus = "Complete - Approved"
	StatusExempt              UnitStudentStatus = "Exempt"
)

// statusPriority is the fixed pending-first ordering used when sorting
// enrolments for review queues.
var statusPriority = []UnitStudentStatus{
	StatusCompletePending,
	StatusEvidenceNotApproved,
	StatusCurrent,
	StatusCompleteApproved,
	StatusExempt,
}

// statusRank returns the position of a status in the pending-first priority
// ordering; unknown statuses sort last.
func statusRank(s UnitStudentStatus) int {
	for i, candidate := range statusPriority {
		if candidate == s {
			return i
		}
	}
	return len(statusPriority)
}

// progression is the fixed forward ordering of the enrolment lifecycle.
// Approval outcomes (Evidence Not Yet Approved / Complete - Approved) both
// follow Complete - Pending.
var progression = map[UnitStudentStatus]int{
	StatusCurrent:             0,
	StatusCurrentPending:      0,
	StatusCompletePending:     1,
	StatusEvidenceNotApproved: 2,
	StatusCompleteApproved:    2,
	StatusExempt:              2,
}

// CanTransition reports whether moving from one status to another respects
// the forward progression. Who may request a transition is the caller's
// concern; only direction is enforced here. Two same-or-backward moves are
// part of the lifecycle: mentor confirmation of a pending enrolment, and
// resubmission after rejected evidence.
func CanTransition(from, to UnitStudentStatus) bool {
	fromStage, okFrom := progression[from]
	toStage, okTo := progression[to]
	if !okFrom || !okTo {
		return false
	}
	if from == StatusCurrentPending && to == StatusCurrent {
		return true
	}
	if from == StatusEvidenceNotApproved && (to == StatusCompleteApproved || to == StatusCompletePending) {
		return true
	}
	return toStage > fromStage
}

// EnrolmentMethod describes how a student joined a unit.
type EnrolmentMethod string

const (
	EnrolSelf           EnrolmentMethod = "self"
	EnrolSchoolMentor   EnrolmentMethod = "schoolMentor"
	EnrolExternalMentor EnrolmentMethod = "externalMentor"
)

// UnitStudent is one person's enrolment/progress record for one unit within
// a school year. Status transitions are appended via timestamps; the record
// is otherwise immutable history.
type UnitStudent struct {
	ID                        string            `db:"id" json:"id"`
	UnitID                    string            `db:"unit_id" json:"unit_id"`
	StudentID                 string            `db:"student_id" json:"student_id"`
	SchoolYearID              string            `db:"school_year_id" json:"school_year_id"`
	CourseClassID             *string           `db:"course_class_id" json:"course_class_id,omitempty"`
	EnrolmentMethod           EnrolmentMethod   `db:"enrolment_method" json:"enrolment_method"`
	Status                    UnitStudentStatus `db:"status" json:"status"`
	SchoolMentorID            *string           `db:"school_mentor_id" json:"school_mentor_id,omitempty"`
	ExternalMentorName        *string           `db:"external_mentor_name" json:"external_mentor_name,omitempty"`
	ExternalMentorEmail       *string           `db:"external_mentor_email" json:"external_mentor_email,omitempty"`
	EvidenceType              *string           `db:"evidence_type" json:"evidence_type,omitempty"`
	EvidenceLocation          *string           `db:"evidence_location" json:"evidence_location,omitempty"`
	CommentStudent            *string           `db:"comment_student" json:"comment_student,omitempty"`
	CommentApproval           *string           `db:"comment_approval" json:"comment_approval,omitempty"`
	ApproverID                *string           `db:"approver_id" json:"approver_id,omitempty"`
	CollaborationKey          *string           `db:"collaboration_key" json:"collaboration_key,omitempty"`
	ConfirmationKey           *string           `db:"confirmation_key" json:"confirmation_key,omitempty"`
	TimestampJoined           time.Time         `db:"timestamp_joined" json:"timestamp_joined"`
	TimestampCompletePending  *time.Time        `db:"timestamp_complete_pending" json:"timestamp_complete_pending,omitempty"`
	TimestampCompleteApproved *time.Time        `db:"timestamp_complete_approved" json:"timestamp_complete_approved,omitempty"`
}

// UnitStudentDetail enriches an enrolment with person, class and mentor info
// for review queues.
type UnitStudentDetail struct {
	UnitStudent
	StudentSurname       string  `db:"student_surname" json:"student_surname"`
	StudentPreferredName string  `db:"student_preferred_name" json:"student_preferred_name"`
	StudentEmail         string  `db:"student_email" json:"student_email"`
	CourseName           *string `db:"course_name" json:"course_name,omitempty"`
	ClassName            *string `db:"class_name" json:"class_name,omitempty"`
	MentorSurname        *string `db:"mentor_surname" json:"mentor_surname,omitempty"`
	MentorPreferredName  *string `db:"mentor_preferred_name" json:"mentor_preferred_name,omitempty"`
	StatusSort           int     `db:"status_sort" json:"status_sort"`
}

// PendingReviewRow is one enrolment awaiting reviewer action, enriched with
// unit and person context.
type PendingReviewRow struct {
	UnitStudent
	UnitName             string  `db:"unit_name" json:"unit_name"`
	LearningArea         *string `db:"learning_area" json:"learning_area,omitempty"`
	UnitCourse           *string `db:"unit_course" json:"unit_course,omitempty"`
	StudentSurname       string  `db:"student_surname" json:"student_surname"`
	StudentPreferredName string  `db:"student_preferred_name" json:"student_preferred_name"`
	CourseName           *string `db:"course_name" json:"course_name,omitempty"`
	ClassName            *string `db:"class_name" json:"class_name,omitempty"`
	MentorSurname        *string `db:"mentor_surname" json:"mentor_surname,omitempty"`
	MentorPreferredName  *string `db:"mentor_preferred_name" json:"mentor_preferred_name,omitempty"`
}

// UnitHistoryRow is one line of a student's unit history.
type UnitHistoryRow struct {
	UnitStudentID             string            `db:"unit_student_id" json:"unit_student_id"`
	UnitID                    string            `db:"unit_id" json:"unit_id"`
	UnitName                  string            `db:"unit_name" json:"unit_name"`
	LearningArea              *string           `db:"learning_area" json:"learning_area,omitempty"`
	UnitCourse                *string           `db:"unit_course" json:"unit_course,omitempty"`
	EnrolmentMethod           EnrolmentMethod   `db:"enrolment_method" json:"enrolment_method"`
	Status                    UnitStudentStatus `db:"status" json:"status"`
	SchoolYear                string            `db:"school_year" json:"school_year"`
	EvidenceType              *string           `db:"evidence_type" json:"evidence_type,omitempty"`
	EvidenceLocation          *string           `db:"evidence_location" json:"evidence_location,omitempty"`
	CommentStudent            *string           `db:"comment_student" json:"comment_student,omitempty"`
	CommentApproval           *string           `db:"comment_approval" json:"comment_approval,omitempty"`
	CourseName                *string           `db:"course_name" json:"course_name,omitempty"`
	ClassName                 *string           `db:"class_name" json:"class_name,omitempty"`
	TimestampJoined           time.Time         `db:"timestamp_joined" json:"timestamp_joined"`
	TimestampCompletePending  *time.Time        `db:"timestamp_complete_pending" json:"timestamp_complete_pending,omitempty"`
	TimestampCompleteApproved *time.Time        `db:"timestamp_complete_approved" json:"timestamp_complete_approved,omitempty"`
}

// UnitHistoryFilter narrows a unit history query. Unrecognised values are
// ignored and leave the query unmodified.
type UnitHistoryFilter struct {
	Department string
	Status     string
}

// LearningArea is a department of type Learning Area linked to a student's
// enrolled units.
type LearningArea struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
