package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/free-learning-api/internal/models"
	appErrors "github.com/noah-isme/free-learning-api/pkg/errors"
)

type mentorUnitRepository interface {
	FindByID(ctx context.Context, id string) (*models.Unit, error)
}

type mentorRepository interface {
	SelectUnitMentors(ctx context.Context, unit *models.Unit, excludePersonID string) ([]models.MentorCandidate, error)
	SelectPotentialCollaborators(ctx context.Context, unit *models.Unit, schoolYearID, excludePersonID string, category models.RoleCategory) ([]models.CollaboratorCandidate, error)
}

// MentorService resolves mentor and collaborator candidates for a unit.
type MentorService struct {
	units   mentorUnitRepository
	mentors mentorRepository
	logger  *zap.Logger
}

// NewMentorService constructs the service.
func NewMentorService(units mentorUnitRepository, mentors mentorRepository, logger *zap.Logger) *MentorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MentorService{units: units, mentors: mentors, logger: logger}
}

// UnitMentors lists the people a student can pick as school mentor for a
// unit, per the unit's mentor settings. The requester is never a candidate
// for their own enrolment.
func (s *MentorService) UnitMentors(ctx context.Context, unitID, requesterID string) ([]models.MentorCandidate, error) {
	unit, err := s.loadUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	mentors, err := s.mentors.SelectUnitMentors(ctx, unit, requesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list unit mentors")
	}
	return mentors, nil
}

// PotentialCollaborators lists people a student can invite into a shared
// enrolment, by role category. The requester themselves is excluded.
func (s *MentorService) PotentialCollaborators(ctx context.Context, unitID, schoolYearID, requesterID string, category models.RoleCategory) ([]models.CollaboratorCandidate, error) {
	switch category {
	case models.RoleCategoryStudent, models.RoleCategoryStaff, models.RoleCategoryParent:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown collaborator category")
	}
	unit, err := s.loadUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.mentors.SelectPotentialCollaborators(ctx, unit, schoolYearID, requesterID, category)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list collaborators")
	}
	return candidates, nil
}

func (s *MentorService) loadUnit(ctx context.Context, unitID string) (*models.Unit, error) {
	unit, err := s.units.FindByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unit not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unit")
	}
	return unit, nil
}
