package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/free-learning-api/internal/dto"
	"github.com/noah-isme/free-learning-api/internal/models"
	appErrors "github.com/noah-isme/free-learning-api/pkg/errors"
	"github.com/noah-isme/free-learning-api/pkg/response"
)

type unitStudentService interface {
	CurrentStudentsByUnit(ctx context.Context, schoolYearID, unitID string, actor models.Actor) ([]models.UnitStudentDetail, error)
	UnitHistory(ctx context.Context, personID string, query dto.UnitHistoryQuery) ([]models.UnitHistoryRow, error)
	EvidencePending(ctx context.Context, schoolYearID, reviewerID string) ([]models.PendingReviewRow, error)
	EnrolmentPending(ctx context.Context, schoolYearID, mentorID string) ([]models.PendingReviewRow, error)
	Detail(ctx context.Context, unitID, personID, unitStudentID string) (*models.UnitStudentDetail, error)
	Collaborators(ctx context.Context, collaborationKey string) ([]models.UnitStudentDetail, error)
	LearningAreas(ctx context.Context, personID string) ([]models.LearningArea, error)
	Enrol(ctx context.Context, req dto.EnrolRequest) (*models.UnitStudent, error)
	SubmitEvidence(ctx context.Context, unitStudentID string, actor models.Actor, req dto.SubmitEvidenceRequest) error
	Review(ctx context.Context, unitStudentID string, actor models.Actor, req dto.ReviewRequest) error
	Discussion(ctx context.Context, unitStudentID string) ([]models.DiscussionEntry, error)
}

// UnitStudentHandler exposes enrolment lifecycle and review-queue endpoints.
type UnitStudentHandler struct {
	service unitStudentService
}

// NewUnitStudentHandler constructs the handler.
func NewUnitStudentHandler(svc unitStudentService) *UnitStudentHandler {
	return &UnitStudentHandler{service: svc}
}

// CurrentStudents godoc
// @Summary Students enrolled in a unit
// @Description Current enrolments of one unit, scoped to the caller: full-scope actors see everything, restricted actors see their mentees and their class students.
// @Tags Enrolments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Unit ID"
// @Param schoolYearId query string true "School year ID"
// @Success 200 {object} response.Envelope
// @Router /units/{id}/students [get]
func (h *UnitStudentHandler) CurrentStudents(c *gin.Context) {
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
	rows, err := h.service.CurrentStudentsByUnit(c.Request.Context(), schoolYearID, c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// History godoc
// @Summary A student's unit history
// @Tags Enrolments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Person ID"
// @Param department query string false "Learning area filter"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/units [get]
func (h *UnitStudentHandler) History(c *gin.Context) {
	var query dto.UnitHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid history query"))
		return
	}
	rows, err := h.service.UnitHistory(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// LearningAreas godoc
// @Summary Learning areas a student has worked in
// @Tags Enrolments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Person ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/learning-areas [get]
func (h *UnitStudentHandler) LearningAreas(c *gin.Context) {
	areas, err := h.service.LearningAreas(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, areas, nil)
}

// EvidencePending godoc
// @Summary Evidence submissions awaiting review
// @Tags Review
// @Produce json
// @Security BearerAuth
// @Param schoolYearId query string true "School year ID"
// @Param reviewerId query string false "Narrow to one reviewer"
// @Success 200 {object} response.Envelope
// @Router /review/evidence [get]
func (h *UnitStudentHandler) EvidencePending(c *gin.Context) {
	schoolYearID := c.Query("schoolYearId")
	if schoolYearID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "schoolYearId required"))
		return
	}
	rows, err := h.service.EvidencePending(c.Request.Context(), schoolYearID, c.Query("reviewerId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// EnrolmentPending godoc
// @Summary Mentor enrolment requests awaiting confirmation
// @Tags Review
// @Produce json
// @Security BearerAuth
// @Param schoolYearId query string true "School year ID"
// @Param mentorId query string false "Narrow to one mentor"
// @Success 200 {object} response.Envelope
// @Router /review/enrolments [get]
func (h *UnitStudentHandler) EnrolmentPending(c *gin.Context) {
	schoolYearID := c.Query("schoolYearId")
	if schoolYearID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "schoolYearId required"))
		return
	}
	rows, err := h.service.EnrolmentPending(c.Request.Context(), schoolYearID, c.Query("mentorId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Enrol godoc
// @Summary Enrol a student in a unit
// @Tags Enrolments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.EnrolRequest true "Enrolment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /enrolments [post]
func (h *UnitStudentHandler) Enrol(c *gin.Context) {
	var req dto.EnrolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrolment payload"))
		return
	}
	enrolment, err := h.service.Enrol(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrolment)
}

// SubmitEvidence godoc
// @Summary Submit completion evidence
// @Tags Enrolments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrolment ID"
// @Param payload body dto.SubmitEvidenceRequest true "Evidence payload"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrolments/{id}/evidence [post]
func (h *UnitStudentHandler) SubmitEvidence(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SubmitEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid evidence payload"))
		return
	}
	if err := h.service.SubmitEvidence(c.Request.Context(), c.Param("id"), actor, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Review godoc
// @Summary Record a review decision
// @Tags Review
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrolment ID"
// @Param payload body dto.ReviewRequest true "Review payload"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /enrolments/{id}/review [post]
func (h *UnitStudentHandler) Review(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}
	if err := h.service.Review(c.Request.Context(), c.Param("id"), actor, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Detail godoc
// @Summary One enrolment with person context
// @Tags Enrolments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Unit ID"
// @Param personId query string false "Narrow to one student"
// @Param enrolmentId query string false "Narrow to one enrolment"
// @Success 200 {object} response.Envelope
// @Router /units/{id}/enrolment [get]
func (h *UnitStudentHandler) Detail(c *gin.Context) {
	detail, err := h.service.Detail(c.Request.Context(), c.Param("id"), c.Query("personId"), c.Query("enrolmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Collaborators godoc
// @Summary Enrolments sharing a collaboration key
// @Tags Enrolments
// @Produce json
// @Security BearerAuth
// @Param key path string true "Collaboration key"
// @Success 200 {object} response.Envelope
// @Router /collaborations/{key} [get]
func (h *UnitStudentHandler) Collaborators(c *gin.Context) {
	rows, err := h.service.Collaborators(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Discussion godoc
// @Summary Comment thread of an enrolment
// @Tags Enrolments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrolment ID"
// @Success 200 {object} response.Envelope
// @Router /enrolments/{id}/discussion [get]
func (h *UnitStudentHandler) Discussion(c *gin.Context) {
	entries, err := h.service.Discussion(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
