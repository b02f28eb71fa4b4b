package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/free-learning-api/internal/dto"
	"github.com/noah-isme/free-learning-api/internal/middleware"
	"github.com/noah-isme/free-learning-api/internal/models"
	appErrors "github.com/noah-isme/free-learning-api/pkg/errors"
)

type unitEditorMock struct {
	resp       *dto.EditUnitResult
	err        error
	called     bool
	lastUnitID string
	lastActor  models.Actor
	lastReq    *dto.EditUnitRequest
	lastLogo   *dto.LogoUpload
}

func (m *unitEditorMock) Edit(ctx context.Context, unitID string, actor models.Actor, req *dto.EditUnitRequest, logo *dto.LogoUpload) (*dto.EditUnitResult, error) {
	m.called = true
	m.lastUnitID = unitID
	m.lastActor = actor
	m.lastReq = req
	m.lastLogo = logo
	return m.resp, m.err
}

func editorActor() models.Actor {
	return models.Actor{PersonID: "person-1", Role: models.RoleAdmin, ManageScope: models.ManageScopeAll}
}

func editBody(t *testing.T) []byte {
	t.Helper()
	yes := true
	payload, err := json.Marshal(dto.EditUnitRequest{
		Name:              "Robotics",
		Difficulty:        "Advanced",
		AvailableStudents: &yes,
		AvailableStaff:    &yes,
		AvailableParents:  &yes,
		AvailableOther:    &yes,
	})
	require.NoError(t, err)
	return payload
}

func TestUnitHandlerEditJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &unitEditorMock{
		resp: &dto.EditUnitResult{UnitID: "unit-1"},
	}
	handler := NewUnitHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/units/unit-1", bytes.NewReader(editBody(t)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "unit-1"}}
	c.Set(middleware.ContextActorKey, editorActor())

	handler.Edit(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.called)
	assert.Equal(t, "unit-1", mockSvc.lastUnitID)
	assert.Equal(t, "Robotics", mockSvc.lastReq.Name)
	assert.Nil(t, mockSvc.lastLogo)
}

func TestUnitHandlerEditPartialFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &unitEditorMock{
		resp: &dto.EditUnitResult{
			UnitID:         "unit-1",
			PartialFailure: true,
			Steps:          []dto.EditStepOutcome{{Step: "blocks_upsert", OK: false, Error: "insert failed"}},
		},
	}
	handler := NewUnitHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/units/unit-1", bytes.NewReader(editBody(t)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "unit-1"}}
	c.Set(middleware.ContextActorKey, editorActor())

	handler.Edit(c)
	require.Equal(t, http.StatusMultiStatus, w.Code)
}

func TestUnitHandlerEditMissingActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &unitEditorMock{}
	handler := NewUnitHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/units/unit-1", bytes.NewReader(editBody(t)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Edit(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, mockSvc.called)
}

func TestUnitHandlerEditInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &unitEditorMock{}
	handler := NewUnitHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/units/unit-1", bytes.NewBufferString(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextActorKey, editorActor())

	handler.Edit(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.called)
}

func TestUnitHandlerEditLocked(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &unitEditorMock{err: appErrors.ErrEditLocked}
	handler := NewUnitHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/units/unit-1", bytes.NewReader(editBody(t)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "unit-1"}}
	c.Set(middleware.ContextActorKey, editorActor())

	handler.Edit(c)
	require.Equal(t, http.StatusLocked, w.Code)
}

func TestUnitHandlerEditMultipart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &unitEditorMock{
		resp: &dto.EditUnitResult{UnitID: "unit-1"},
	}
	handler := NewUnitHandler(mockSvc)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("payload", string(editBody(t))))
	part, err := form.CreateFormFile("logo", "logo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte{0x89, 0x50, 0x4E, 0x47})
	require.NoError(t, err)
	require.NoError(t, form.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/units/unit-1", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "unit-1"}}
	c.Set(middleware.ContextActorKey, editorActor())

	handler.Edit(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.lastLogo)
	assert.Equal(t, "logo.png", mockSvc.lastLogo.Filename)
	assert.Equal(t, "Robotics", mockSvc.lastReq.Name)
}

func TestUnitHandlerEditMultipartMissingPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &unitEditorMock{}
	handler := NewUnitHandler(mockSvc)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("unused", "x"))
	require.NoError(t, form.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/units/unit-1", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.Request = req
	c.Set(middleware.ContextActorKey, editorActor())

	handler.Edit(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.called)
}
