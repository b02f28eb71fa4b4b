package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func userRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "person_id", "email", "password_hash", "full_name", "role", "manage_scope",
		"surname", "preferred_name", "website", "active", "last_login", "created_at", "updated_at",
	}).AddRow(
		"user-1", "person-1", "teacher@example.com", "hash", "Sam Rivers", "TEACHER", "all",
		"Rivers", "Sam", "", true, nil, now, now,
	)
}

func TestUserRepositoryFindByEmailFiltersInactive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1 AND active = TRUE")).
		WithArgs("teacher@example.com").
		WillReturnRows(userRows())

	user, err := repo.FindByEmail(context.Background(), "teacher@example.com")
	require.NoError(t, err)
	require.Equal(t, "person-1", user.PersonID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1 AND active = TRUE")).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepositoryTouchLastLogin(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET last_login = NOW() WHERE id = $1")).
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.TouchLastLogin(context.Background(), "user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
