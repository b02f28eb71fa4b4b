package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/free-learning-api/internal/models"
	appErrors "github.com/noah-isme/free-learning-api/pkg/errors"
)

type mentorUnitsStub struct {
	unit *models.Unit
	err  error
}

func (s *mentorUnitsStub) FindByID(ctx context.Context, id string) (*models.Unit, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.unit, nil
}

type mentorRepoStub struct {
	mentors       []models.MentorCandidate
	collaborators []models.CollaboratorCandidate
	lastUnit      *models.Unit
	lastExclude   string
	lastCategory  models.RoleCategory
	called        bool
}

func (s *mentorRepoStub) SelectUnitMentors(ctx context.Context, unit *models.Unit, excludePersonID string) ([]models.MentorCandidate, error) {
	s.called = true
	s.lastUnit = unit
	s.lastExclude = excludePersonID
	return s.mentors, nil
}

func (s *mentorRepoStub) SelectPotentialCollaborators(ctx context.Context, unit *models.Unit, schoolYearID, excludePersonID string, category models.RoleCategory) ([]models.CollaboratorCandidate, error) {
	s.called = true
	s.lastUnit = unit
	s.lastExclude = excludePersonID
	s.lastCategory = category
	return s.collaborators, nil
}

func TestMentorServiceUnitMentorsPassesUnitSettings(t *testing.T) {
	unit := &models.Unit{ID: "unit-1", MentorCompletors: true}
	repo := &mentorRepoStub{mentors: []models.MentorCandidate{{}}}
	svc := NewMentorService(&mentorUnitsStub{unit: unit}, repo, nil)

	mentors, err := svc.UnitMentors(context.Background(), "unit-1", "person-9")
	require.NoError(t, err)
	require.Len(t, mentors, 1)
	assert.True(t, repo.lastUnit.MentorCompletors)
	assert.Equal(t, "person-9", repo.lastExclude)
}

func TestMentorServiceUnitMentorsUnknownUnit(t *testing.T) {
	repo := &mentorRepoStub{}
	svc := NewMentorService(&mentorUnitsStub{err: sql.ErrNoRows}, repo, nil)

	_, err := svc.UnitMentors(context.Background(), "missing", "person-9")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.False(t, repo.called)
}

func TestMentorServicePotentialCollaboratorsByCategory(t *testing.T) {
	unit := &models.Unit{ID: "unit-1"}
	repo := &mentorRepoStub{collaborators: []models.CollaboratorCandidate{{}}}
	svc := NewMentorService(&mentorUnitsStub{unit: unit}, repo, nil)

	candidates, err := svc.PotentialCollaborators(context.Background(), "unit-1", "year-1", "person-9", models.RoleCategoryStaff)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, models.RoleCategoryStaff, repo.lastCategory)
	assert.Equal(t, "person-9", repo.lastExclude)
}

func TestMentorServicePotentialCollaboratorsRejectsUnknownCategory(t *testing.T) {
	repo := &mentorRepoStub{}
	svc := NewMentorService(&mentorUnitsStub{unit: &models.Unit{}}, repo, nil)

	_, err := svc.PotentialCollaborators(context.Background(), "unit-1", "year-1", "person-9", models.RoleCategory("Robot"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.False(t, repo.called)
}
