package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/free-learning-api/internal/dto"
	"github.com/noah-isme/free-learning-api/internal/models"
	"github.com/noah-isme/free-learning-api/pkg/config"
	appErrors "github.com/noah-isme/free-learning-api/pkg/errors"
	"github.com/noah-isme/free-learning-api/pkg/export"
	"github.com/noah-isme/free-learning-api/pkg/storage"
)

type reportHistoryRepository interface {
	QueryUnitsByStudent(ctx context.Context, personID string, filter models.UnitHistoryFilter) ([]models.UnitHistoryRow, error)
}

type reportStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

// ReportExport describes a rendered unit history export and its signed
// download token.
type ReportExport struct {
	ExportID    string    `json:"export_id"`
	Format      string    `json:"format"`
	Filename    string    `json:"filename"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	RowCount    int       `json:"row_count"`
}

// ReportService renders unit history exports synchronously and hands out
// HMAC-signed download links for the stored files.
type ReportService struct {
	history reportHistoryRepository
	storage reportStorage
	signer  *storage.SignedURLSigner
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
	config  config.ReportsConfig
}

// NewReportService constructs the service.
func NewReportService(history reportHistoryRepository, store reportStorage, signer *storage.SignedURLSigner, logger *zap.Logger, cfg config.ReportsConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		history: history,
		storage: store,
		signer:  signer,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
		config:  cfg,
	}
}

// ExportUnitHistory renders a student's unit history in the requested format,
// stores the file and returns a signed download reference.
func (s *ReportService) ExportUnitHistory(ctx context.Context, personID, format string, query dto.UnitHistoryQuery) (*ReportExport, error) {
	if !s.config.Enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report exports are disabled")
	}

	filter := models.UnitHistoryFilter{Department: query.Department, Status: query.Status}
	rows, err := s.history.QueryUnitsByStudent(ctx, personID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unit history")
	}

	dataset := historyDataset(rows)

	var payload []byte
	switch format {
	case "csv":
		payload, err = s.csv.Render(dataset)
	case "pdf":
		payload, err = s.pdf.Render(dataset, "Unit History")
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("unit-history-%s.%s", exportID, format)
	if _, err := s.storage.Save(filename, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download")
	}

	s.logger.Info("unit history export rendered",
		zap.String("person_id", personID),
		zap.String("format", format),
		zap.Int("rows", len(rows)))

	return &ReportExport{
		ExportID:    exportID,
		Format:      format,
		Filename:    filename,
		DownloadURL: token,
		ExpiresAt:   expiresAt,
		RowCount:    len(rows),
	}, nil
}

// OpenExport validates a signed token and opens the referenced file.
func (s *ReportService) OpenExport(token string) (*os.File, string, error) {
	_, filename, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.storage.Open(filename)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}
	return file, filename, nil
}

func historyDataset(rows []models.UnitHistoryRow) export.Dataset {
	headers := []string{"Unit", "Learning Area", "School Year", "Enrolment Method", "Status", "Joined", "Completed"}
	dataset := export.Dataset{Headers: headers, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		completed := ""
		if row.TimestampCompleteApproved != nil {
			completed = row.TimestampCompleteApproved.Format("2006-01-02")
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Unit":             row.UnitName,
			"Learning Area":    deref(row.LearningArea),
			"School Year":      row.SchoolYear,
			"Enrolment Method": string(row.EnrolmentMethod),
			"Status":           string(row.Status),
			"Joined":           row.TimestampJoined.Format("2006-01-02"),
			"Completed":        completed,
		})
	}
	return dataset
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
