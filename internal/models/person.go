package models

// Department staff roles that carry unit-management rights for a learning area.
const (
	DeptRoleCoordinator          = "Coordinator"
	DeptRoleAssistantCoordinator = "Assistant Coordinator"
	DeptRoleCurriculumTeacher    = "Teacher (Curriculum)"
)

// Course-class roles that grant a teacher visibility of class enrolments.
const (
	ClassRoleTeacher   = "Teacher"
	ClassRoleAssistant = "Assistant"
	ClassRoleStudent   = "Student"
)

// MentorCandidate is an eligible school mentor for a unit.
type MentorCandidate struct {
	PersonID      string `db:"person_id" json:"person_id"`
	Title         string `db:"title" json:"title"`
	PreferredName string `db:"preferred_name" json:"preferred_name"`
	Surname       string `db:"surname" json:"surname"`
}

// CollaboratorCandidate is a person eligible to join a unit enrolment as a
// collaborator. PrerequisiteCount and CompletedEnrolmentID are only populated
// for the student variant.
type CollaboratorCandidate struct {
	PersonID             string  `db:"person_id" json:"person_id"`
	PreferredName        string  `db:"preferred_name" json:"preferred_name"`
	Surname              string  `db:"surname" json:"surname"`
	RollGroup            *string `db:"roll_group" json:"roll_group,omitempty"`
	PrerequisiteCount    *int    `db:"prerequisite_count" json:"prerequisite_count,omitempty"`
	CompletedEnrolmentID *string `db:"completed_enrolment_id" json:"completed_enrolment_id,omitempty"`
}

// RoleCategory partitions people for collaborator candidate queries.
type RoleCategory string

const (
	RoleCategoryStudent RoleCategory = "Student"
	RoleCategoryStaff   RoleCategory = "Staff"
	RoleCategoryParent  RoleCategory = "Parent"
)
