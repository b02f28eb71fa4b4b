package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/free-learning-api/internal/dto"
	"github.com/noah-isme/free-learning-api/internal/models"
	appErrors "github.com/noah-isme/free-learning-api/pkg/errors"
	"github.com/noah-isme/free-learning-api/pkg/response"
)

type unitEditor interface {
	Edit(ctx context.Context, unitID string, actor models.Actor, req *dto.EditUnitRequest, logo *dto.LogoUpload) (*dto.EditUnitResult, error)
}

// UnitHandler exposes the unit edit endpoint.
type UnitHandler struct {
	edits unitEditor
}

// NewUnitHandler constructs the handler.
func NewUnitHandler(edits unitEditor) *UnitHandler {
	return &UnitHandler{edits: edits}
}

// Edit godoc
// @Summary Edit a unit
// @Description Apply a full-replacement edit to a unit: scalar fields, ordered outcomes, ordered blocks and an optional logo upload. Steps commit independently; a partial failure is reported per step with HTTP 207.
// @Tags Units
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Unit ID"
// @Param payload body dto.EditUnitRequest true "Edit submission"
// @Success 200 {object} response.Envelope
// @Success 207 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /units/{id} [put]
func (h *UnitHandler) Edit(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req, logo, err := h.parseEditSubmission(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.edits.Edit(c.Request.Context(), c.Param("id"), actor, req, logo)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if result.PartialFailure {
		status = http.StatusMultiStatus
	}
	response.JSON(c, status, result, nil)
}

// parseEditSubmission accepts either a plain JSON body or a multipart form
// carrying the JSON submission in a "payload" field plus an optional "logo"
// file.
func (h *UnitHandler) parseEditSubmission(c *gin.Context) (*dto.EditUnitRequest, *dto.LogoUpload, error) {
	contentType := c.ContentType()
	if !strings.HasPrefix(contentType, "multipart/") {
		var req dto.EditUnitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid edit payload")
		}
		return &req, nil, nil
	}

	payload := c.PostForm("payload")
	if payload == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "multipart edit requires a payload field")
	}
	var req dto.EditUnitRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid edit payload")
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		// no logo part is fine; the retain flag decides what happens
		return &req, nil, nil
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable logo upload")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable logo upload")
	}
	return &req, &dto.LogoUpload{Filename: fileHeader.Filename, Data: data}, nil
}
