package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/free-learning-api/internal/models"
	appErrors "github.com/noah-isme/free-learning-api/pkg/errors"
	"github.com/noah-isme/free-learning-api/pkg/response"
)

type browseService interface {
	UnitsByClass(ctx context.Context, schoolYearID, courseClassID, sortBy string) ([]models.ClassUnitRow, error)
}

// BrowseHandler exposes the per-class unit listing.
type BrowseHandler struct {
	service browseService
}

// NewBrowseHandler constructs the handler.
func NewBrowseHandler(svc browseService) *BrowseHandler {
	return &BrowseHandler{service: svc}
}

// UnitsByClass godoc
// @Summary Class roster with active units
// @Description Every enrolled student of a class paired with the unit they are working on. Sort by student for a roster view or by unit to group shared work.
// @Tags Browse
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course class ID"
// @Param schoolYearId query string true "School year ID"
// @Param sort query string false "student or unit" default(student)
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/units [get]
func (h *BrowseHandler) UnitsByClass(c *gin.Context) {
	schoolYearID := c.Query("schoolYearId")
	if schoolYearID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "schoolYearId required"))
		return
	}
	rows, err := h.service.UnitsByClass(c.Request.Context(), schoolYearID, c.Param("id"), c.DefaultQuery("sort", "student"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
