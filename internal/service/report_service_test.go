package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/free-learning-api/internal/dto"
	"github.com/noah-isme/free-learning-api/internal/models"
	"github.com/noah-isme/free-learning-api/pkg/config"
	appErrors "github.com/noah-isme/free-learning-api/pkg/errors"
	"github.com/noah-isme/free-learning-api/pkg/storage"
)

type historyStub struct {
	rows []models.UnitHistoryRow
}

func (s *historyStub) QueryUnitsByStudent(ctx context.Context, personID string, filter models.UnitHistoryFilter) ([]models.UnitHistoryRow, error) {
	return s.rows, nil
}

func newReportServiceForTest(t *testing.T, enabled bool) (*ReportService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	area := "Design & Technology"
	history := &historyStub{rows: []models.UnitHistoryRow{{
		UnitStudentID:   "us-1",
		UnitID:          "unit-1",
		UnitName:        "Woodwork Basics",
		LearningArea:    &area,
		EnrolmentMethod: models.EnrolSelf,
		Status:          models.StatusCompleteApproved,
		SchoolYear:      "2025-2026",
		TimestampJoined: time.Now(),
	}}}
	cfg := config.ReportsConfig{Enabled: enabled, SignedURLSecret: "secret", SignedURLTTL: time.Hour}
	signer := storage.NewSignedURLSigner(cfg.SignedURLSecret, cfg.SignedURLTTL)
	return NewReportService(history, store, signer, zap.NewNop(), cfg), store
}

func TestExportUnitHistoryCSVRoundTrip(t *testing.T) {
	svc, _ := newReportServiceForTest(t, true)

	result, err := svc.ExportUnitHistory(context.Background(), "stu-1", "csv", dto.UnitHistoryQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.RowCount)
	assert.NotEmpty(t, result.DownloadURL)

	file, filename, err := svc.OpenExport(result.DownloadURL)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, result.Filename, filename)

	info, err := file.Stat()
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportUnitHistoryPDF(t *testing.T) {
	svc, store := newReportServiceForTest(t, true)

	result, err := svc.ExportUnitHistory(context.Background(), "stu-1", "pdf", dto.UnitHistoryQuery{})
	require.NoError(t, err)

	file, err := store.Open(result.Filename)
	require.NoError(t, err)
	defer file.Close()
	info, err := file.Stat()
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportUnitHistoryUnknownFormatRejected(t *testing.T) {
	svc, _ := newReportServiceForTest(t, true)

	_, err := svc.ExportUnitHistory(context.Background(), "stu-1", "xlsx", dto.UnitHistoryQuery{})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportUnitHistoryDisabled(t *testing.T) {
	svc, _ := newReportServiceForTest(t, false)

	_, err := svc.ExportUnitHistory(context.Background(), "stu-1", "csv", dto.UnitHistoryQuery{})
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestOpenExportRejectsTamperedToken(t *testing.T) {
	svc, _ := newReportServiceForTest(t, true)

	result, err := svc.ExportUnitHistory(context.Background(), "stu-1", "csv", dto.UnitHistoryQuery{})
	require.NoError(t, err)

	_, _, err = svc.OpenExport(result.DownloadURL + "x")
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
