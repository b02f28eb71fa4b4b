package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/free-learning-api/internal/models"
	appErrors "github.com/noah-isme/free-learning-api/pkg/errors"
	"github.com/noah-isme/free-learning-api/pkg/response"
)

type mentorService interface {
	UnitMentors(ctx context.Context, unitID, requesterID string) ([]models.MentorCandidate, error)
	PotentialCollaborators(ctx context.Context, unitID, schoolYearID, requesterID string, category models.RoleCategory) ([]models.CollaboratorCandidate, error)
}

// MentorHandler exposes mentor and collaborator candidate endpoints.
type MentorHandler struct {
	service mentorService
}

// NewMentorHandler constructs the handler.
func NewMentorHandler(svc mentorService) *MentorHandler {
	return &MentorHandler{service: svc}
}

// UnitMentors godoc
// @Summary Eligible school mentors for a unit
// @Tags Mentoring
// @Produce json
// @Security BearerAuth
// @Param id path string true "Unit ID"
// @Success 200 {object} response.Envelope
// @Router /units/{id}/mentors [get]
func (h *MentorHandler) UnitMentors(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	mentors, err := h.service.UnitMentors(c.Request.Context(), c.Param("id"), actor.PersonID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentors, nil)
}

// CollaboratorCandidates godoc
// @Summary People a student can invite as collaborators
// @Tags Mentoring
// @Produce json
// @Security BearerAuth
// @Param id path string true "Unit ID"
// @Param schoolYearId query string true "School year ID"
// @Param category query string false "Student, Staff or Parent" default(Student)
// @Success 200 {object} response.Envelope
// @Router /units/{id}/collaborator-candidates [get]
func (h *MentorHandler) CollaboratorCandidates(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	schoolYearID := c.Query("schoolYearId")
	if schoolYearID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "schoolYearId required"))
		return
	}
	category := models.RoleCategory(c.DefaultQuery("category", string(models.RoleCategoryStudent)))
	candidates, err := h.service.PotentialCollaborators(c.Request.Context(), c.Param("id"), schoolYearID, actor.PersonID, category)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, nil)
}
