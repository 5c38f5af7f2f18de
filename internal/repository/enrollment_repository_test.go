package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
)

func TestEnrollmentRepositoryListSubjectIDsByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"subject_id"}).AddRow("sub-1").AddRow("sub-2")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT subject_id FROM student_enrollments WHERE student_id = $1")).
		WithArgs("stu-1").
		WillReturnRows(rows)

	ids, err := repo.ListSubjectIDsByStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Equal(t, []string{"sub-1", "sub-2"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryReplaceForTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_enrollments WHERE student_id = $1 AND semester = $2 AND academic_year = $3")).
		WithArgs("stu-1", "1st", "2024-2025").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO student_enrollments")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO student_enrollments")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE subjects SET slots_filled = slots_filled + 1 WHERE id IN ($1,$2)")).
		WithArgs("sub-1", "sub-2").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	payment := &models.Payment{StudentID: "stu-1", Amount: 6800, Description: "Enrollment assessment"}
	err := repo.ReplaceForTerm(context.Background(), "stu-1", "1st", "2024-2025", []string{"sub-1", "sub-2"}, payment)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryReplaceForTermRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_enrollments")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO student_enrollments")).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	err := repo.ReplaceForTerm(context.Background(), "stu-1", "1st", "2024-2025", []string{"sub-1"}, nil)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
