package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/free-learning-api/internal/models"
)

func mentorRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"person_id", "title", "preferred_name", "surname"}).
		AddRow("staff-1", "Ms.", "Beth", "Carter")
}

func collaboratorColumns() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"person_id", "preferred_name", "surname", "roll_group", "prerequisite_count", "completed_enrolment_id",
	})
}

func TestSelectUnitMentorsStaffOnlyExcludesRequester(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMentorRepository(db)

	mock.ExpectQuery("^\\(SELECT DISTINCT p\\.id AS person_id, (.+) FROM units u JOIN departments d (.+) NOT p\\.id = \\$2 (.+)\\) ORDER BY surname, preferred_name$").
		WithArgs("unit-1", "person-9", sqlmock.AnyArg()).
		WillReturnRows(mentorRows())

	unit := &models.Unit{ID: "unit-1"}
	mentors, err := repo.SelectUnitMentors(context.Background(), unit, "person-9")
	require.NoError(t, err)
	require.Len(t, mentors, 1)
	require.Equal(t, "Carter", mentors[0].Surname)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectUnitMentorsAddsCompletorAndCustomBranches(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMentorRepository(db)

	mock.ExpectQuery("\\) UNION \\((.+)LEFT JOIN unit_students us(.+)NOT p\\.id = \\$2(.+)\\) UNION \\((.+)string_to_array(.+)NOT p\\.id = \\$2(.+)\\) ORDER BY surname").
		WithArgs("unit-1", "person-9", sqlmock.AnyArg(), sqlmock.AnyArg(), "stu-5,stu-9", sqlmock.AnyArg()).
		WillReturnRows(mentorRows())

	unit := &models.Unit{ID: "unit-1", MentorCompletors: true, MentorCustomList: "stu-5,stu-9"}
	mentors, err := repo.SelectUnitMentors(context.Background(), unit, "person-9")
	require.NoError(t, err)
	require.Len(t, mentors, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectUnitMentorsCompletorBranchAdmitsAuthors(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMentorRepository(db)

	mock.ExpectQuery("LEFT JOIN unit_authors ua ON \\(ua\\.person_id = p\\.id AND ua\\.unit_id = \\$1\\)(.+)\\(us\\.status = 'Complete - Approved' OR ua\\.id IS NOT NULL\\)").
		WithArgs("unit-1", "person-9", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(mentorRows())

	unit := &models.Unit{ID: "unit-1", MentorCompletors: true}
	mentors, err := repo.SelectUnitMentors(context.Background(), unit, "person-9")
	require.NoError(t, err)
	require.Len(t, mentors, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectPotentialCollaboratorsStudentVariantCountsPrerequisites(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMentorRepository(db)

	rows := collaboratorColumns().AddRow("stu-2", "Dan", "Evans", "10A", 2, nil)

	mock.ExpectQuery("prereq\\.status IN \\('Complete - Approved', 'Exempt'\\)(.+)completed_enrolment_id(.+)FROM persons p JOIN student_enrolments se(.+)NOT p\\.id = \\$5").
		WithArgs("unit-a,unit-b", "unit-1", "year-1", string(models.RoleCategoryStudent), "stu-1", sqlmock.AnyArg(), 2).
		WillReturnRows(rows)

	unit := &models.Unit{ID: "unit-1", PrerequisiteIDList: "unit-a,unit-b"}
	candidates, err := repo.SelectPotentialCollaborators(context.Background(), unit, "year-1", "stu-1", models.RoleCategoryStudent)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.NotNil(t, candidates[0].PrerequisiteCount)
	require.Equal(t, 2, *candidates[0].PrerequisiteCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectPotentialCollaboratorsStudentAppliesMinimumYearGroup(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMentorRepository(db)

	mock.ExpectQuery("se\\.year_group_id >= \\$7").
		WithArgs("", "unit-1", "year-1", string(models.RoleCategoryStudent), "stu-1", sqlmock.AnyArg(), 9).
		WillReturnRows(collaboratorColumns())

	minimum := 9
	unit := &models.Unit{ID: "unit-1", YearGroupMinimum: &minimum}
	_, err := repo.SelectPotentialCollaborators(context.Background(), unit, "year-1", "stu-1", models.RoleCategoryStudent)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectPotentialCollaboratorsStudentRequiresPrerequisiteThreshold(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMentorRepository(db)

	mock.ExpectQuery("string_to_array\\(NULLIF\\(\\$1, ''\\), ','\\)\\)\\) >= \\$7").
		WithArgs("unit-a,unit-b,unit-c", "unit-1", "year-1", string(models.RoleCategoryStudent), "stu-1", sqlmock.AnyArg(), 3).
		WillReturnRows(collaboratorColumns())

	unit := &models.Unit{ID: "unit-1", PrerequisiteIDList: "unit-a,unit-b,unit-c"}
	_, err := repo.SelectPotentialCollaborators(context.Background(), unit, "year-1", "stu-1", models.RoleCategoryStudent)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectPotentialCollaboratorsStudentSkipsCompletedCandidates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMentorRepository(db)

	mock.ExpectQuery("done\\.unit_id = \\$2 AND done\\.status IN \\('Complete - Approved', 'Exempt'\\) LIMIT 1\\) IS NULL").
		WithArgs("", "unit-1", "year-1", string(models.RoleCategoryStudent), "stu-1", sqlmock.AnyArg()).
		WillReturnRows(collaboratorColumns())

	unit := &models.Unit{ID: "unit-1"}
	_, err := repo.SelectPotentialCollaborators(context.Background(), unit, "year-1", "stu-1", models.RoleCategoryStudent)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectPotentialCollaboratorsStaffVariantExcludesRequester(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMentorRepository(db)

	mock.ExpectQuery("NULL AS completed_enrolment_id FROM persons p WHERE p\\.role_category = \\$1 AND NOT p\\.id = \\$2").
		WithArgs(string(models.RoleCategoryStaff), "person-9", sqlmock.AnyArg()).
		WillReturnRows(collaboratorColumns())

	unit := &models.Unit{ID: "unit-1"}
	_, err := repo.SelectPotentialCollaborators(context.Background(), unit, "year-1", "person-9", models.RoleCategoryStaff)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
