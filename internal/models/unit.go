package models

import "time"

// Unit is a self-directed learning-module definition. Child outcome and
// block rows are owned by the unit and reconciled on every edit.
type Unit struct {
	ID                    string    `db:"id" json:"id"`
	Name                  string    `db:"name" json:"name"`
	Course                *string   `db:"course" json:"course,omitempty"`
	Logo                  *string   `db:"logo" json:"logo,omitempty"`
	Difficulty            string    `db:"difficulty" json:"difficulty"`
	Blurb                 string    `db:"blurb" json:"blurb"`
	Outline               string    `db:"outline" json:"outline"`
	StudentReflectionText string    `db:"student_reflection_text" json:"student_reflection_text"`
	License               string    `db:"license" json:"license"`
	AvailableStudents     bool      `db:"available_students" json:"available_students"`
	AvailableStaff        bool      `db:"available_staff" json:"available_staff"`
	AvailableParents      bool      `db:"available_parents" json:"available_parents"`
	AvailableOther        bool      `db:"available_other" json:"available_other"`
	SharedPublic          bool      `db:"shared_public" json:"shared_public"`
	Active                bool      `db:"active" json:"active"`
	EditLock              bool      `db:"edit_lock" json:"edit_lock"`
	YearGroupMinimum      *int      `db:"year_group_minimum" json:"year_group_minimum,omitempty"`
	Grouping              string    `db:"grouping" json:"grouping"`
	DepartmentIDList      string    `db:"department_id_list" json:"department_id_list"`
	PrerequisiteIDList    string    `db:"prerequisite_id_list" json:"prerequisite_id_list"`
	MentorCompletors      bool      `db:"mentor_completors" json:"mentor_completors"`
	MentorCustomList      string    `db:"mentor_custom_list" json:"mentor_custom_list"`
	MentorCustomRoleID    *string   `db:"mentor_custom_role_id" json:"mentor_custom_role_id,omitempty"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// UnitOutcome attaches an external curriculum-outcome reference to a unit.
// The full set is replaced on every edit.
type UnitOutcome struct {
	ID             string `db:"id" json:"id"`
	UnitID         string `db:"unit_id" json:"unit_id"`
	OutcomeID      string `db:"outcome_id" json:"outcome_id"`
	Content        string `db:"content" json:"content"`
	SequenceNumber int    `db:"sequence_number" json:"sequence_number"`
}

// UnitBlock is an ordered content segment within a unit. Identity persists
// across edits; sequence is re-derived from submission order.
type UnitBlock struct {
	ID             string `db:"id" json:"id"`
	UnitID         string `db:"unit_id" json:"unit_id"`
	Title          string `db:"title" json:"title"`
	Type           string `db:"type" json:"type"`
	Length         *int   `db:"length" json:"length,omitempty"`
	Content        string `db:"content" json:"content"`
	TeacherNotes   string `db:"teacher_notes" json:"teacher_notes"`
	SequenceNumber int    `db:"sequence_number" json:"sequence_number"`
}

// UnitAuthor is an append-only attribution record written for major edits.
type UnitAuthor struct {
	ID            string    `db:"id" json:"id"`
	UnitID        string    `db:"unit_id" json:"unit_id"`
	PersonID      string    `db:"person_id" json:"person_id"`
	Surname       string    `db:"surname" json:"surname"`
	PreferredName string    `db:"preferred_name" json:"preferred_name"`
	Website       string    `db:"website" json:"website"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ClassUnitRow pairs a class-roster student with their active unit, if any.
type ClassUnitRow struct {
	PersonID         string     `db:"person_id" json:"person_id"`
	Surname          string     `db:"surname" json:"surname"`
	PreferredName    string     `db:"preferred_name" json:"preferred_name"`
	UnitID           *string    `db:"unit_id" json:"unit_id,omitempty"`
	UnitName         *string    `db:"unit_name" json:"unit_name,omitempty"`
	Status           *string    `db:"status" json:"status,omitempty"`
	EnrolmentMethod  *string    `db:"enrolment_method" json:"enrolment_method,omitempty"`
	CollaborationKey *string    `db:"collaboration_key" json:"collaboration_key,omitempty"`
	TimestampJoined  *time.Time `db:"timestamp_joined" json:"timestamp_joined,omitempty"`
}
