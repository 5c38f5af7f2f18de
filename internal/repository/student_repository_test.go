package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_number", "email", "personal_email", "full_name", "birth_date", "sex", "address", "phone",
		"college", "course", "year_level", "semester", "academic_year", "last_school", "strand",
		"graduation_year", "status", "created_at", "updated_at",
	}).AddRow(
		"stu-1", "2024-00123", "2024-00123@psu.palawan.edu.ph", "juan@example.com", "Juan Dela Cruz", nil, "male",
		"Puerto Princesa", "09171234567", "CS", "BSCS", 2, "1st", "2024-2025", "PSU Laboratory HS", "STEM",
		"2023", models.StatusEnrolled, time.Now(), time.Now(),
	)
}

func TestStudentRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE email = $1 OR personal_email = $1")).
		WithArgs("2024-00123@psu.palawan.edu.ph").
		WillReturnRows(studentRows())

	student, err := repo.FindByEmail(context.Background(), "2024-00123@psu.palawan.edu.ph")
	require.NoError(t, err)
	require.Equal(t, "stu-1", student.ID)
	require.Equal(t, "BSCS", student.Course)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByStudentNumber(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE student_number = $1")).
		WithArgs("2024-00123").
		WillReturnRows(studentRows())

	student, err := repo.FindByStudentNumber(context.Background(), "2024-00123")
	require.NoError(t, err)
	require.Equal(t, "2024-00123", student.StudentNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET course = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("stu-1", "BSIT", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateCourse(context.Background(), "stu-1", "BSIT")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
