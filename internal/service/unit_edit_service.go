package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/free-learning-api/internal/dto"
	"github.com/noah-isme/free-learning-api/internal/models"
	"github.com/noah-isme/free-learning-api/pkg/config"
	appErrors "github.com/noah-isme/free-learning-api/pkg/errors"
)

// Named steps of the edit transaction, reported per-step in the result.
const (
	StepLogoUpload  = "logo_upload"
	StepUnitUpdate  = "unit_update"
	StepAuthorship  = "author_attribution"
	StepOutcomes    = "outcomes_replace"
	StepBlockUpsert = "blocks_upsert"
	StepBlockPrune  = "blocks_cleanup"
)

type editUnitRepository interface {
	FindManaged(ctx context.Context, id string, actor models.Actor) (*models.Unit, error)
	UpdateFields(ctx context.Context, unit *models.Unit) error
}

type editAuthorRepository interface {
	Exists(ctx context.Context, unitID, personID string) (bool, error)
	Insert(ctx context.Context, author *models.UnitAuthor) error
}

type editOutcomeRepository interface {
	DeleteByUnit(ctx context.Context, unitID string) error
	Insert(ctx context.Context, outcome *models.UnitOutcome) error
}

type editBlockRepository interface {
	Update(ctx context.Context, block *models.UnitBlock) error
	Insert(ctx context.Context, block *models.UnitBlock) error
	DeleteOrphans(ctx context.Context, unitID string, keepIDs []string) error
}

type logoStorage interface {
	Save(filename string, data []byte) (string, error)
}

type editCacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

type editMetricsRecorder interface {
	RecordEditStep(step string, ok bool)
	RecordEditOutcome(partial bool)
}

// UnitEditService applies a full-replacement unit edit as a sequence of
// independently committed steps. A failed step is recorded and the remaining
// steps still run, so a partially applied edit reports exactly which parts
// did not land.
type UnitEditService struct {
	units     editUnitRepository
	authors   editAuthorRepository
	outcomes  editOutcomeRepository
	blocks    editBlockRepository
	storage   logoStorage
	cache     editCacheInvalidator
	metrics   editMetricsRecorder
	validator *validator.Validate
	logger    *zap.Logger
	config    config.UnitsConfig
}

// NewUnitEditService constructs the edit service.
func NewUnitEditService(
	units editUnitRepository,
	authors editAuthorRepository,
	outcomes editOutcomeRepository,
	blocks editBlockRepository,
	storage logoStorage,
	cache editCacheInvalidator,
	metrics editMetricsRecorder,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.UnitsConfig,
) *UnitEditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UnitEditService{
		units: units, authors: authors, outcomes: outcomes, blocks: blocks,
		storage: storage, cache: cache, metrics: metrics,
		validator: validate, logger: logger, config: cfg,
	}
}

// Edit runs the edit transaction against one unit. The scope pre-check and
// the lock check abort before anything is written; from the first write
// onward every step commits independently and failures are collected into
// the result instead of rolling back.
func (s *UnitEditService) Edit(ctx context.Context, unitID string, actor models.Actor, req *dto.EditUnitRequest, logo *dto.LogoUpload) (*dto.EditUnitResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid edit payload")
	}

	unit, err := s.units.FindManaged(ctx, unitID, actor)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unit not found or outside your scope")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unit")
	}

	if unit.EditLock && !actor.ManagesAll() {
		return nil, appErrors.Clone(appErrors.ErrEditLocked, "")
	}

	result := &dto.EditUnitResult{UnitID: unit.ID}
	record := func(step string, err error) bool {
		ok := err == nil
		outcome := dto.EditStepOutcome{Step: step, OK: ok}
		if err != nil {
			outcome.Error = err.Error()
			result.PartialFailure = true
			s.logger.Warn("edit step failed",
				zap.String("unit_id", unit.ID),
				zap.String("step", step),
				zap.Error(err))
		}
		result.Steps = append(result.Steps, outcome)
		if s.metrics != nil {
			s.metrics.RecordEditStep(step, ok)
		}
		return ok
	}

	// Logo first: the field update persists whatever path this step leaves
	// on the unit, so a failed upload keeps the previous logo.
	if logo != nil {
		record(StepLogoUpload, s.applyLogo(unit, logo))
	} else if !req.RetainLogo {
		unit.Logo = nil
	}

	// The scalar update is mandatory: without it the unit row and the child
	// rows would diverge, so a failure here aborts. Statements already
	// committed stay committed.
	s.applyScalarFields(unit, req)
	if err := s.units.UpdateFields(ctx, unit); err != nil {
		record(StepUnitUpdate, err)
		return nil, appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, "failed to update unit")
	}
	record(StepUnitUpdate, nil)

	if req.MajorEdit {
		record(StepAuthorship, s.recordAuthorship(ctx, unit.ID, actor))
	}

	// Clearing the outcome set is mandatory before reinsertion; a failed
	// delete would duplicate outcomes on reinsert.
	if err := s.outcomes.DeleteByUnit(ctx, unit.ID); err != nil {
		record(StepOutcomes, err)
		return nil, appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, "failed to clear unit outcomes")
	}
	record(StepOutcomes, s.insertOutcomes(ctx, unit.ID, req.Outcomes))

	keepIDs, blockErr := s.upsertBlocks(ctx, unit.ID, req.Blocks)
	record(StepBlockUpsert, blockErr)
	record(StepBlockPrune, s.blocks.DeleteOrphans(ctx, unit.ID, keepIDs))

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "browse:*"); err != nil {
			s.logger.Warn("failed to invalidate browse cache", zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.RecordEditOutcome(result.PartialFailure)
	}

	return result, nil
}

func (s *UnitEditService) applyLogo(unit *models.Unit, logo *dto.LogoUpload) error {
	if int64(len(logo.Data)) > s.config.MaxLogoSizeBytes {
		return fmt.Errorf("logo exceeds %d bytes", s.config.MaxLogoSizeBytes)
	}
	mime := http.DetectContentType(logo.Data)
	if !s.mimeAllowed(mime) {
		return fmt.Errorf("logo type %s not allowed", mime)
	}
	name := uuid.NewString() + strings.ToLower(filepath.Ext(logo.Filename))
	path, err := s.storage.Save(name, logo.Data)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, "failed to store logo")
	}
	unit.Logo = &path
	return nil
}

func (s *UnitEditService) mimeAllowed(mime string) bool {
	for _, allowed := range s.config.AllowedMIMEs {
		if strings.EqualFold(allowed, mime) {
			return true
		}
	}
	return false
}

func (s *UnitEditService) applyScalarFields(unit *models.Unit, req *dto.EditUnitRequest) {
	unit.Name = req.Name
	unit.Course = nilIfEmpty(req.Course)
	unit.Difficulty = req.Difficulty
	unit.Blurb = req.Blurb
	unit.Outline = req.Outline
	unit.StudentReflectionText = req.StudentReflectionText
	unit.License = req.License
	unit.AvailableStudents = *req.AvailableStudents
	unit.AvailableStaff = *req.AvailableStaff
	unit.AvailableParents = *req.AvailableParents
	unit.AvailableOther = *req.AvailableOther
	unit.SharedPublic = req.SharedPublic
	unit.Active = req.Active
	unit.EditLock = req.EditLock
	unit.YearGroupMinimum = req.YearGroupMinimum
	unit.Grouping = strings.Join(req.Grouping, ",")
	unit.DepartmentIDList = strings.Join(req.DepartmentIDs, ",")
	unit.PrerequisiteIDList = strings.Join(req.PrerequisiteUnitIDs, ",")
	unit.MentorCompletors = req.MentorCompletors
	unit.MentorCustomList = strings.Join(req.MentorCustomIDs, ",")
	unit.MentorCustomRoleID = nilIfEmpty(req.MentorCustomRoleID)
}

// recordAuthorship appends an attribution row for a major edit, once per
// (unit, person) pair.
func (s *UnitEditService) recordAuthorship(ctx context.Context, unitID string, actor models.Actor) error {
	exists, err := s.authors.Exists(ctx, unitID, actor.PersonID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.authors.Insert(ctx, &models.UnitAuthor{
		UnitID:        unitID,
		PersonID:      actor.PersonID,
		Surname:       actor.Surname,
		PreferredName: actor.PreferredName,
		Website:       actor.Website,
	})
}

// insertOutcomes reinserts the submitted outcome list. Entries without an
// outcome reference are skipped but still consume their sequence position.
// Individual insert failures are collected and the rest of the list still
// lands.
func (s *UnitEditService) insertOutcomes(ctx context.Context, unitID string, inputs []dto.OutcomeInput) error {
	var errs []error
	for seq, input := range inputs {
		if input.OutcomeID == "" {
			continue
		}
		outcome := &models.UnitOutcome{
			UnitID:         unitID,
			OutcomeID:      input.OutcomeID,
			Content:        input.Content,
			SequenceNumber: seq,
		}
		if err := s.outcomes.Insert(ctx, outcome); err != nil {
			errs = append(errs, fmt.Errorf("outcome at position %d: %w", seq, err))
		}
	}
	return errors.Join(errs...)
}

const blockTypePlaceholder = "type (e.g. discussion, outcome)"

// upsertBlocks walks the submitted block list in order: a block carrying an
// identifier updates in place, one without gets inserted. Sequence numbers
// are rewritten from submission order. Every walked block's identifier joins
// the keep list even when its write fails, so the orphan prune never removes
// a block the submission still claims. Placeholder title and type text is
// stored as empty.
func (s *UnitEditService) upsertBlocks(ctx context.Context, unitID string, inputs []dto.BlockInput) ([]string, error) {
	keepIDs := make([]string, 0, len(inputs))
	var errs []error
	for seq, input := range inputs {
		title := input.Title
		if title == fmt.Sprintf("Block %d", seq+1) {
			title = ""
		}
		blockType := input.Type
		if blockType == blockTypePlaceholder {
			blockType = ""
		}
		block := &models.UnitBlock{
			ID:             input.ID,
			UnitID:         unitID,
			Title:          title,
			Type:           blockType,
			Length:         input.Length,
			Content:        input.Content,
			TeacherNotes:   input.TeacherNotes,
			SequenceNumber: seq,
		}
		var err error
		if block.ID != "" {
			err = s.blocks.Update(ctx, block)
		} else {
			err = s.blocks.Insert(ctx, block)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("block at position %d: %w", seq, err))
		}
		keepIDs = append(keepIDs, block.ID)
	}
	return keepIDs, errors.Join(errs...)
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
