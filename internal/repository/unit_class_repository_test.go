package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func classUnitColumns() []string {
	return []string{
		"person_id", "surname", "preferred_name", "unit_id", "unit_name",
		"status", "enrolment_method", "collaboration_key", "timestamp_joined",
	}
}

func TestUnitClassRepositoryListIncludesStudentsWithoutUnits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUnitClassRepository(db)

	rows := sqlmock.NewRows(classUnitColumns()).
		AddRow("person-1", "Park", "Jo", "unit-1", "Robotics", "Current", "self", nil, nil).
		AddRow("person-2", "Chen", "Amy", nil, nil, nil, nil, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY p.surname, p.preferred_name")).
		WithArgs("year-1", "class-1").
		WillReturnRows(rows)

	result, err := repo.ListUnitsByClass(context.Background(), "year-1", "class-1", "student")
	require.NoError(t, err)
	require.Len(t, result, 2)
	require.NotNil(t, result[0].UnitID)
	require.Nil(t, result[1].UnitID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitClassRepositoryListSortByUnitGroupsCollaborators(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUnitClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY us.collaboration_key, unit_name, p.surname, p.preferred_name")).
		WithArgs("year-1", "class-1").
		WillReturnRows(sqlmock.NewRows(classUnitColumns()))

	_, err := repo.ListUnitsByClass(context.Background(), "year-1", "class-1", "unit")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
