package handler

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/free-learning-api/internal/dto"
	"github.com/noah-isme/free-learning-api/internal/service"
	appErrors "github.com/noah-isme/free-learning-api/pkg/errors"
	"github.com/noah-isme/free-learning-api/pkg/response"
)

type reportService interface {
	ExportUnitHistory(ctx context.Context, personID, format string, query dto.UnitHistoryQuery) (*service.ReportExport, error)
	OpenExport(token string) (*os.File, string, error)
}

// ReportHandler exposes unit history exports and their signed downloads.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(svc reportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// ExportHistory godoc
// @Summary Export a student's unit history
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Person ID"
// @Param format query string true "csv or pdf"
// @Param department query string false "Learning area filter"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/units/export [post]
func (h *ReportHandler) ExportHistory(c *gin.Context) {
	var query dto.UnitHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	result, err := h.service.ExportUnitHistory(c.Request.Context(), c.Param("id"), c.Query("format"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download an export by signed token
// @Tags Reports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200
// @Failure 401 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	file, filename, err := h.service.OpenExport(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(filename, ".csv"):
		contentType = "text/csv"
	case strings.HasSuffix(filename, ".pdf"):
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", contentType)
	c.File(file.Name())
}
