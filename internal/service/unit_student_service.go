package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/free-learning-api/internal/dto"
	"github.com/noah-isme/free-learning-api/internal/models"
	appErrors "github.com/noah-isme/free-learning-api/pkg/errors"
)

type unitStudentRepository interface {
	QueryCurrentStudentsByUnit(ctx context.Context, schoolYearID, unitID string, actor models.Actor) ([]models.UnitStudentDetail, error)
	QueryUnitsByStudent(ctx context.Context, personID string, filter models.UnitHistoryFilter) ([]models.UnitHistoryRow, error)
	QueryEvidencePending(ctx context.Context, schoolYearID, reviewerID string) ([]models.PendingReviewRow, error)
	QueryEnrolmentPending(ctx context.Context, schoolYearID, mentorID string) ([]models.PendingReviewRow, error)
	GetDetail(ctx context.Context, unitID, personID, unitStudentID string) (*models.UnitStudentDetail, error)
	SelectCollaboratorsByKey(ctx context.Context, collaborationKey string) ([]models.UnitStudentDetail, error)
	SelectLearningAreasByStudent(ctx context.Context, personID string) ([]models.LearningArea, error)
	Create(ctx context.Context, enrolment *models.UnitStudent) error
	SubmitEvidence(ctx context.Context, id, evidenceType, evidenceLocation, commentStudent string) error
	RecordReview(ctx context.Context, id string, status models.UnitStudentStatus, commentApproval, approverID string) error
	FindByID(ctx context.Context, id string) (*models.UnitStudent, error)
}

type discussionRepository interface {
	ListByEnrolment(ctx context.Context, unitStudentID string) ([]models.DiscussionEntry, error)
	Add(ctx context.Context, unitStudentID, personID, comment, tag string) error
}

// UnitStudentService covers enrolment lifecycle and the read views over it.
// It stores the transitions authorized reviewers request and enforces only
// the fixed forward progression of statuses.
type UnitStudentService struct {
	repo        unitStudentRepository
	discussions discussionRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewUnitStudentService constructs the service.
func NewUnitStudentService(repo unitStudentRepository, discussions discussionRepository, validate *validator.Validate, logger *zap.Logger) *UnitStudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UnitStudentService{repo: repo, discussions: discussions, validator: validate, logger: logger}
}

// CurrentStudentsByUnit lists one unit's enrolments scoped to the actor.
func (s *UnitStudentService) CurrentStudentsByUnit(ctx context.Context, schoolYearID, unitID string, actor models.Actor) ([]models.UnitStudentDetail, error) {
	rows, err := s.repo.QueryCurrentStudentsByUnit(ctx, schoolYearID, unitID, actor)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list unit students")
	}
	return rows, nil
}

// UnitHistory lists a student's enrolment history with optional filters.
func (s *UnitStudentService) UnitHistory(ctx context.Context, personID string, query dto.UnitHistoryQuery) ([]models.UnitHistoryRow, error) {
	filter := models.UnitHistoryFilter{Department: query.Department, Status: query.Status}
	rows, err := s.repo.QueryUnitsByStudent(ctx, personID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unit history")
	}
	return rows, nil
}

// EvidencePending lists submissions awaiting review, optionally narrowed to
// one reviewer.
func (s *UnitStudentService) EvidencePending(ctx context.Context, schoolYearID, reviewerID string) ([]models.PendingReviewRow, error) {
	rows, err := s.repo.QueryEvidencePending(ctx, schoolYearID, reviewerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending evidence")
	}
	return rows, nil
}

// EnrolmentPending lists school-mentor requests awaiting confirmation.
func (s *UnitStudentService) EnrolmentPending(ctx context.Context, schoolYearID, mentorID string) ([]models.PendingReviewRow, error) {
	rows, err := s.repo.QueryEnrolmentPending(ctx, schoolYearID, mentorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending enrolments")
	}
	return rows, nil
}

// Detail returns one enrolment, narrowed when identifiers are supplied.
func (s *UnitStudentService) Detail(ctx context.Context, unitID, personID, unitStudentID string) (*models.UnitStudentDetail, error) {
	detail, err := s.repo.GetDetail(ctx, unitID, personID, unitStudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrolment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrolment")
	}
	return detail, nil
}

// Collaborators returns every enrolment sharing a collaboration key.
func (s *UnitStudentService) Collaborators(ctx context.Context, collaborationKey string) ([]models.UnitStudentDetail, error) {
	rows, err := s.repo.SelectCollaboratorsByKey(ctx, collaborationKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list collaborators")
	}
	return rows, nil
}

// LearningAreas returns the learning areas a student has worked in.
func (s *UnitStudentService) LearningAreas(ctx context.Context, personID string) ([]models.LearningArea, error) {
	areas, err := s.repo.SelectLearningAreasByStudent(ctx, personID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learning areas")
	}
	return areas, nil
}

// Enrol creates an enrolment record. A school-mentor enrolment starts in
// Current - Pending awaiting mentor confirmation; other methods start in
// Current.
func (s *UnitStudentService) Enrol(ctx context.Context, req dto.EnrolRequest) (*models.UnitStudent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrolment payload")
	}

	method := models.EnrolmentMethod(req.EnrolmentMethod)
	status := models.StatusCurrent
	if method == models.EnrolSchoolMentor {
		if req.SchoolMentorID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "school mentor enrolment requires a mentor")
		}
		status = models.StatusCurrentPending
	}
	if method == models.EnrolExternalMentor && (req.ExternalMentorName == "" || req.ExternalMentorEmail == "") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "external mentor enrolment requires name and email")
	}

	enrolment := &models.UnitStudent{
		UnitID:              req.UnitID,
		StudentID:           req.StudentID,
		SchoolYearID:        req.SchoolYearID,
		CourseClassID:       nilIfEmpty(req.CourseClassID),
		EnrolmentMethod:     method,
		Status:              status,
		SchoolMentorID:      nilIfEmpty(req.SchoolMentorID),
		ExternalMentorName:  nilIfEmpty(req.ExternalMentorName),
		ExternalMentorEmail: nilIfEmpty(req.ExternalMentorEmail),
		CollaborationKey:    nilIfEmpty(req.CollaborationKey),
	}
	if err := s.repo.Create(ctx, enrolment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, "failed to create enrolment")
	}
	return enrolment, nil
}

// SubmitEvidence records completion evidence and moves the enrolment to
// Complete - Pending. Only the enrolled student may submit, and only from a
// status that can still move forward.
func (s *UnitStudentService) SubmitEvidence(ctx context.Context, unitStudentID string, actor models.Actor, req dto.SubmitEvidenceRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evidence payload")
	}

	enrolment, err := s.loadEnrolment(ctx, unitStudentID)
	if err != nil {
		return err
	}
	if enrolment.StudentID != actor.PersonID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the enrolled student can submit evidence")
	}
	if !models.CanTransition(enrolment.Status, models.StatusCompletePending) {
		return appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("cannot submit evidence from status %q", enrolment.Status))
	}

	if err := s.repo.SubmitEvidence(ctx, unitStudentID, req.EvidenceType, req.EvidenceLocation, req.CommentStudent); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, "failed to record evidence")
	}
	if req.CommentStudent != "" {
		if err := s.discussions.Add(ctx, unitStudentID, actor.PersonID, req.CommentStudent, string(models.StatusCompletePending)); err != nil {
			s.logger.Warn("failed to append evidence comment", zap.Error(err))
		}
	}
	return nil
}

// Review stores a reviewer's decision on pending evidence. The requested
// status must be a recognised review outcome and a forward move from the
// enrolment's current status.
func (s *UnitStudentService) Review(ctx context.Context, unitStudentID string, actor models.Actor, req dto.ReviewRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	target := models.UnitStudentStatus(req.Status)
	switch target {
	case models.StatusCompleteApproved, models.StatusEvidenceNotApproved, models.StatusExempt, models.StatusCurrent:
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown review status %q", req.Status))
	}

	enrolment, err := s.loadEnrolment(ctx, unitStudentID)
	if err != nil {
		return err
	}
	if !models.CanTransition(enrolment.Status, target) {
		return appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("cannot move from %q to %q", enrolment.Status, target))
	}

	if err := s.repo.RecordReview(ctx, unitStudentID, target, req.CommentApproval, actor.PersonID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, "failed to record review")
	}
	if req.CommentApproval != "" {
		if err := s.discussions.Add(ctx, unitStudentID, actor.PersonID, req.CommentApproval, req.Status); err != nil {
			s.logger.Warn("failed to append review comment", zap.Error(err))
		}
	}
	return nil
}

// Discussion returns the full comment thread of an enrolment.
func (s *UnitStudentService) Discussion(ctx context.Context, unitStudentID string) ([]models.DiscussionEntry, error) {
	entries, err := s.discussions.ListByEnrolment(ctx, unitStudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load discussion")
	}
	return entries, nil
}

func (s *UnitStudentService) loadEnrolment(ctx context.Context, id string) (*models.UnitStudent, error) {
	enrolment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrolment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrolment")
	}
	return enrolment, nil
}
