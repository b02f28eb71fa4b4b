package dto

// EnrolRequest creates a unit enrolment record.
type EnrolRequest struct {
	UnitID              string `json:"unit_id" validate:"required"`
	StudentID           string `json:"student_id" validate:"required"`
	SchoolYearID        string `json:"school_year_id" validate:"required"`
	CourseClassID       string `json:"course_class_id"`
	EnrolmentMethod     string `json:"enrolment_method" validate:"required,oneof=self schoolMentor externalMentor"`
	SchoolMentorID      string `json:"school_mentor_id"`
	ExternalMentorName  string `json:"external_mentor_name"`
	ExternalMentorEmail string `json:"external_mentor_email" validate:"omitempty,email"`
	CollaborationKey    string `json:"collaboration_key"`
}

// SubmitEvidenceRequest records a student's completion evidence.
type SubmitEvidenceRequest struct {
	EvidenceType     string `json:"evidence_type" validate:"required"`
	EvidenceLocation string `json:"evidence_location" validate:"required"`
	CommentStudent   string `json:"comment_student"`
}

// ReviewRequest records a reviewer's decision on pending evidence.
type ReviewRequest struct {
	Status          string `json:"status" validate:"required"`
	CommentApproval string `json:"comment_approval"`
}

// UnitHistoryQuery filters a student's unit history listing.
type UnitHistoryQuery struct {
	Department string `form:"department"`
	Status     string `form:"status"`
}
