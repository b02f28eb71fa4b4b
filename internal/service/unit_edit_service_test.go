package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/free-learning-api/internal/dto"
	"github.com/noah-isme/free-learning-api/internal/models"
	"github.com/noah-isme/free-learning-api/pkg/config"
	appErrors "github.com/noah-isme/free-learning-api/pkg/errors"
)

type editUnitsStub struct {
	unit      *models.Unit
	findErr   error
	updateErr error
	updated   *models.Unit
}

func (s *editUnitsStub) FindManaged(ctx context.Context, id string, actor models.Actor) (*models.Unit, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.unit, nil
}

func (s *editUnitsStub) UpdateFields(ctx context.Context, unit *models.Unit) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	copied := *unit
	s.updated = &copied
	return nil
}

type editAuthorsStub struct {
	exists    bool
	insertErr error
	inserted  []*models.UnitAuthor
}

func (s *editAuthorsStub) Exists(ctx context.Context, unitID, personID string) (bool, error) {
	return s.exists, nil
}

func (s *editAuthorsStub) Insert(ctx context.Context, author *models.UnitAuthor) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, author)
	return nil
}

type editOutcomesStub struct {
	deleteErr error
	insertErr error
	deleted   []string
	inserted  []*models.UnitOutcome
}

func (s *editOutcomesStub) DeleteByUnit(ctx context.Context, unitID string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, unitID)
	return nil
}

func (s *editOutcomesStub) Insert(ctx context.Context, outcome *models.UnitOutcome) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, outcome)
	return nil
}

type editBlocksStub struct {
	updateErrFor string
	updated      []*models.UnitBlock
	inserted     []*models.UnitBlock
	prunedUnit   string
	prunedKeep   []string
}

func (s *editBlocksStub) Update(ctx context.Context, block *models.UnitBlock) error {
	if s.updateErrFor != "" && block.ID == s.updateErrFor {
		return fmt.Errorf("update failed")
	}
	copied := *block
	s.updated = append(s.updated, &copied)
	return nil
}

func (s *editBlocksStub) Insert(ctx context.Context, block *models.UnitBlock) error {
	if block.ID == "" {
		block.ID = fmt.Sprintf("new-%d", len(s.inserted)+1)
	}
	copied := *block
	s.inserted = append(s.inserted, &copied)
	return nil
}

func (s *editBlocksStub) DeleteOrphans(ctx context.Context, unitID string, keepIDs []string) error {
	s.prunedUnit = unitID
	s.prunedKeep = keepIDs
	return nil
}

type storageStub struct {
	saved map[string][]byte
	err   error
}

func (s *storageStub) Save(filename string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[filename] = data
	return "uploads/" + filename, nil
}

func validEditRequest() *dto.EditUnitRequest {
	yes, no := true, false
	return &dto.EditUnitRequest{
		Name:              "Woodwork Basics",
		Difficulty:        "Beginner",
		AvailableStudents: &yes,
		AvailableStaff:    &yes,
		AvailableParents:  &no,
		AvailableOther:    &no,
		RetainLogo:        true,
	}
}

func newEditServiceForTest(units *editUnitsStub, authors *editAuthorsStub, outcomes *editOutcomesStub, blocks *editBlocksStub, store *storageStub) *UnitEditService {
	cfg := config.UnitsConfig{
		UploadDir:        "uploads",
		MaxLogoSizeBytes: 1 << 20,
		AllowedMIMEs:     []string{"image/png", "image/jpeg"},
	}
	return NewUnitEditService(units, authors, outcomes, blocks, store, nil, nil, nil, zap.NewNop(), cfg)
}

func TestEditOutOfScopeAbortsWithoutWrites(t *testing.T) {
	units := &editUnitsStub{findErr: sql.ErrNoRows}
	outcomes := &editOutcomesStub{}
	blocks := &editBlocksStub{}
	svc := newEditServiceForTest(units, &editAuthorsStub{}, outcomes, blocks, &storageStub{})

	actor := models.Actor{PersonID: "p-1", ManageScope: models.ManageScopeLearningAreas}
	_, err := svc.Edit(context.Background(), "unit-1", actor, validEditRequest(), nil)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Nil(t, units.updated)
	assert.Empty(t, outcomes.deleted)
	assert.Empty(t, blocks.prunedUnit)
}

func TestEditLockBlocksRestrictedActor(t *testing.T) {
	units := &editUnitsStub{unit: &models.Unit{ID: "unit-1", EditLock: true}}
	svc := newEditServiceForTest(units, &editAuthorsStub{}, &editOutcomesStub{}, &editBlocksStub{}, &storageStub{})

	actor := models.Actor{PersonID: "p-1", ManageScope: models.ManageScopeLearningAreas}
	_, err := svc.Edit(context.Background(), "unit-1", actor, validEditRequest(), nil)
	require.Equal(t, appErrors.ErrEditLocked.Code, appErrors.FromError(err).Code)
	assert.Nil(t, units.updated)
}

func TestEditLockDoesNotBlockFullScopeActor(t *testing.T) {
	units := &editUnitsStub{unit: &models.Unit{ID: "unit-1", EditLock: true}}
	svc := newEditServiceForTest(units, &editAuthorsStub{}, &editOutcomesStub{}, &editBlocksStub{}, &storageStub{})

	actor := models.Actor{PersonID: "p-1", ManageScope: models.ManageScopeAll}
	result, err := svc.Edit(context.Background(), "unit-1", actor, validEditRequest(), nil)
	require.NoError(t, err)
	assert.False(t, result.PartialFailure)
	assert.NotNil(t, units.updated)
}

func TestEditReconcilesBlocksAndPrunesOrphans(t *testing.T) {
	units := &editUnitsStub{unit: &models.Unit{ID: "unit-1"}}
	blocks := &editBlocksStub{}
	svc := newEditServiceForTest(units, &editAuthorsStub{}, &editOutcomesStub{}, blocks, &storageStub{})

	req := validEditRequest()
	req.Blocks = []dto.BlockInput{
		{ID: "block-7", Title: "Research", Type: "discussion"},
		{Title: "Build", Type: "practical"},
		{ID: "block-2", Title: "Reflect", Type: "outcome"},
	}

	actor := models.Actor{PersonID: "p-1", ManageScope: models.ManageScopeAll}
	result, err := svc.Edit(context.Background(), "unit-1", actor, req, nil)
	require.NoError(t, err)
	assert.False(t, result.PartialFailure)

	require.Len(t, blocks.updated, 2)
	require.Len(t, blocks.inserted, 1)
	assert.Equal(t, 0, blocks.updated[0].SequenceNumber)
	assert.Equal(t, 1, blocks.inserted[0].SequenceNumber)
	assert.Equal(t, 2, blocks.updated[1].SequenceNumber)
	assert.Equal(t, []string{"block-7", "new-1", "block-2"}, blocks.prunedKeep)
	assert.Equal(t, "unit-1", blocks.prunedUnit)
}

func TestEditBlockPlaceholderTextStoredEmpty(t *testing.T) {
	units := &editUnitsStub{unit: &models.Unit{ID: "unit-1"}}
	blocks := &editBlocksStub{}
	svc := newEditServiceForTest(units, &editAuthorsStub{}, &editOutcomesStub{}, blocks, &storageStub{})

	req := validEditRequest()
	req.Blocks = []dto.BlockInput{
		{Title: "Block 1", Type: "type (e.g. discussion, outcome)", Content: "body"},
	}

	actor := models.Actor{PersonID: "p-1", ManageScope: models.ManageScopeAll}
	_, err := svc.Edit(context.Background(), "unit-1", actor, req, nil)
	require.NoError(t, err)
	require.Len(t, blocks.inserted, 1)
	assert.Empty(t, blocks.inserted[0].Title)
	assert.Empty(t, blocks.inserted[0].Type)
}

func TestEditFailedBlockUpdateStaysInKeepList(t *testing.T) {
	units := &editUnitsStub{unit: &models.Unit{ID: "unit-1"}}
	blocks := &editBlocksStub{updateErrFor: "block-7"}
	svc := newEditServiceForTest(units, &editAuthorsStub{}, &editOutcomesStub{}, blocks, &storageStub{})

	req := validEditRequest()
	req.Blocks = []dto.BlockInput{
		{ID: "block-7", Title: "Research"},
		{ID: "block-9", Title: "Reflect"},
	}

	actor := models.Actor{PersonID: "p-1", ManageScope: models.ManageScopeAll}
	result, err := svc.Edit(context.Background(), "unit-1", actor, req, nil)
	require.NoError(t, err)
	assert.True(t, result.PartialFailure)
	// the failed block is still claimed by the submission, so the prune
	// must not remove it
	assert.Equal(t, []string{"block-7", "block-9"}, blocks.prunedKeep)

	var upsertStep *dto.EditStepOutcome
	for i := range result.Steps {
		if result.Steps[i].Step == StepBlockUpsert {
			upsertStep = &result.Steps[i]
		}
	}
	require.NotNil(t, upsertStep)
	assert.False(t, upsertStep.OK)
	assert.Contains(t, upsertStep.Error, "position 0")
}

func TestEditEmptyOutcomeReferenceSkippedButConsumesSequence(t *testing.T) {
	units := &editUnitsStub{unit: &models.Unit{ID: "unit-1"}}
	outcomes := &editOutcomesStub{}
	svc := newEditServiceForTest(units, &editAuthorsStub{}, outcomes, &editBlocksStub{}, &storageStub{})

	req := validEditRequest()
	req.Outcomes = []dto.OutcomeInput{
		{OutcomeID: "out-1"},
		{OutcomeID: ""},
		{OutcomeID: "out-3"},
	}

	actor := models.Actor{PersonID: "p-1", ManageScope: models.ManageScopeAll}
	result, err := svc.Edit(context.Background(), "unit-1", actor, req, nil)
	require.NoError(t, err)
	assert.False(t, result.PartialFailure)

	require.Len(t, outcomes.inserted, 2)
	assert.Equal(t, 0, outcomes.inserted[0].SequenceNumber)
	assert.Equal(t, 2, outcomes.inserted[1].SequenceNumber)
	assert.Equal(t, []string{"unit-1"}, outcomes.deleted)
}

func TestEditMajorEditRecordsAuthorshipOnce(t *testing.T) {
	units := &editUnitsStub{unit: &models.Unit{ID: "unit-1"}}
	authors := &editAuthorsStub{}
	svc := newEditServiceForTest(units, authors, &editOutcomesStub{}, &editBlocksStub{}, &storageStub{})

	req := validEditRequest()
	req.MajorEdit = true
	actor := models.Actor{PersonID: "p-1", Surname: "Carter", PreferredName: "Beth", ManageScope: models.ManageScopeAll}

	_, err := svc.Edit(context.Background(), "unit-1", actor, req, nil)
	require.NoError(t, err)
	require.Len(t, authors.inserted, 1)
	assert.Equal(t, "Carter", authors.inserted[0].Surname)

	// second major edit by the same person adds nothing
	authors.exists = true
	_, err = svc.Edit(context.Background(), "unit-1", actor, req, nil)
	require.NoError(t, err)
	require.Len(t, authors.inserted, 1)
}

func TestEditAuxiliaryFailureReportsPartialAndContinues(t *testing.T) {
	units := &editUnitsStub{unit: &models.Unit{ID: "unit-1"}}
	authors := &editAuthorsStub{insertErr: errors.New("author insert failed")}
	blocks := &editBlocksStub{}
	svc := newEditServiceForTest(units, authors, &editOutcomesStub{}, blocks, &storageStub{})

	req := validEditRequest()
	req.MajorEdit = true
	actor := models.Actor{PersonID: "p-1", ManageScope: models.ManageScopeAll}

	result, err := svc.Edit(context.Background(), "unit-1", actor, req, nil)
	require.NoError(t, err)
	assert.True(t, result.PartialFailure)
	// later steps still ran
	assert.Equal(t, "unit-1", blocks.prunedUnit)
}

func TestEditMandatoryUpdateFailureAborts(t *testing.T) {
	units := &editUnitsStub{unit: &models.Unit{ID: "unit-1"}, updateErr: errors.New("db down")}
	outcomes := &editOutcomesStub{}
	svc := newEditServiceForTest(units, &editAuthorsStub{}, outcomes, &editBlocksStub{}, &storageStub{})

	actor := models.Actor{PersonID: "p-1", ManageScope: models.ManageScopeAll}
	_, err := svc.Edit(context.Background(), "unit-1", actor, validEditRequest(), nil)
	require.Equal(t, appErrors.ErrStorageFailure.Code, appErrors.FromError(err).Code)
	assert.Empty(t, outcomes.deleted)
}

func TestEditClearsLogoWithoutRetainFlag(t *testing.T) {
	logo := "uploads/old.png"
	units := &editUnitsStub{unit: &models.Unit{ID: "unit-1", Logo: &logo}}
	svc := newEditServiceForTest(units, &editAuthorsStub{}, &editOutcomesStub{}, &editBlocksStub{}, &storageStub{})

	req := validEditRequest()
	req.RetainLogo = false
	actor := models.Actor{PersonID: "p-1", ManageScope: models.ManageScopeAll}

	_, err := svc.Edit(context.Background(), "unit-1", actor, req, nil)
	require.NoError(t, err)
	require.NotNil(t, units.updated)
	assert.Nil(t, units.updated.Logo)
}

func TestEditRejectsOversizedLogoButContinues(t *testing.T) {
	units := &editUnitsStub{unit: &models.Unit{ID: "unit-1"}}
	store := &storageStub{}
	svc := newEditServiceForTest(units, &editAuthorsStub{}, &editOutcomesStub{}, &editBlocksStub{}, store)

	actor := models.Actor{PersonID: "p-1", ManageScope: models.ManageScopeAll}
	upload := &dto.LogoUpload{Filename: "big.png", Data: make([]byte, 2<<20)}

	result, err := svc.Edit(context.Background(), "unit-1", actor, validEditRequest(), upload)
	require.NoError(t, err)
	assert.True(t, result.PartialFailure)
	assert.Equal(t, StepLogoUpload, result.Steps[0].Step)
	assert.False(t, result.Steps[0].OK)
	assert.Empty(t, store.saved)
	// the field update still committed
	assert.NotNil(t, units.updated)
}
