package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/free-learning-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestUnitBlockRepositoryInsertAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUnitBlockRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO unit_blocks")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	block := &models.UnitBlock{UnitID: "unit-1", Title: "Intro", Type: "Text", SequenceNumber: 0}
	require.NoError(t, repo.Insert(context.Background(), block))
	require.NotEmpty(t, block.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitBlockRepositoryUpdatePreservesIdentity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUnitBlockRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE unit_blocks SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	block := &models.UnitBlock{ID: "block-1", UnitID: "unit-1", Title: "Intro", Type: "Text", SequenceNumber: 2}
	require.NoError(t, repo.Update(context.Background(), block))
	require.Equal(t, "block-1", block.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitBlockRepositoryDeleteOrphansExcludesKeptIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUnitBlockRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM unit_blocks WHERE unit_id = $1 AND NOT id = $2 AND NOT id = $3")).
		WithArgs("unit-1", "block-1", "block-2").
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := repo.DeleteOrphans(context.Background(), "unit-1", []string{"block-1", "block-2"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitBlockRepositoryDeleteOrphansEmptyKeepListRemovesAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUnitBlockRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM unit_blocks WHERE unit_id = $1")).
		WithArgs("unit-1").
		WillReturnResult(sqlmock.NewResult(0, 5))

	require.NoError(t, repo.DeleteOrphans(context.Background(), "unit-1", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
