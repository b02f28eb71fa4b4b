package dto

// OutcomeInput is one position in the submitted ordered outcome list.
// Entries with an empty OutcomeID are skipped on insert while still
// consuming a sequence position.
type OutcomeInput struct {
	OutcomeID string `json:"outcome_id"`
	Content   string `json:"content"`
}

// BlockInput is one position in the submitted ordered block list. A non-empty
// ID updates the existing block in place; an empty ID inserts a new block.
type BlockInput struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Type         string `json:"type"`
	Length       *int   `json:"length,omitempty"`
	Content      string `json:"content"`
	TeacherNotes string `json:"teacher_notes"`
}

// EditUnitRequest is the full replacement submission for a unit edit.
type EditUnitRequest struct {
	Name                  string   `json:"name" validate:"required"`
	Difficulty            string   `json:"difficulty" validate:"required"`
	Blurb                 string   `json:"blurb"`
	StudentReflectionText string   `json:"student_reflection_text"`
	DepartmentIDs         []string `json:"department_ids"`
	Course                string   `json:"course"`
	License               string   `json:"license"`
	MajorEdit             bool     `json:"major_edit"`
	AvailableStudents     *bool    `json:"available_students" validate:"required"`
	AvailableStaff        *bool    `json:"available_staff" validate:"required"`
	AvailableParents      *bool    `json:"available_parents" validate:"required"`
	AvailableOther        *bool    `json:"available_other" validate:"required"`
	SharedPublic          bool     `json:"shared_public"`
	Active                bool     `json:"active"`
	EditLock              bool     `json:"edit_lock"`
	YearGroupMinimum      *int     `json:"year_group_minimum,omitempty"`
	Grouping              []string `json:"grouping"`
	PrerequisiteUnitIDs   []string `json:"prerequisite_unit_ids"`
	Outline               string   `json:"outline"`
	MentorCompletors      bool     `json:"mentor_completors"`
	MentorCustomIDs       []string `json:"mentor_custom_ids"`
	MentorCustomRoleID    string   `json:"mentor_custom_role_id"`
	RetainLogo            bool     `json:"retain_logo"`

	Outcomes []OutcomeInput `json:"outcomes" validate:"dive"`
	Blocks   []BlockInput   `json:"blocks" validate:"dive"`
}

// LogoUpload carries an optional logo file accompanying an edit submission.
type LogoUpload struct {
	Filename string
	Data     []byte
}

// EditStepOutcome reports the result of one named edit step.
type EditStepOutcome struct {
	Step  string `json:"step"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// EditUnitResult aggregates per-step outcomes of an edit transaction.
type EditUnitResult struct {
	UnitID         string            `json:"unit_id"`
	Steps          []EditStepOutcome `json:"steps"`
	PartialFailure bool              `json:"partial_failure"`
}
