package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
)

func TestPaymentRepositoryCreateAssignsIdentity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	payment := &models.Payment{
		StudentID:   "stu-1",
		Amount:      2500,
		Description: "Partial tuition payment",
		Method:      "e-wallet",
	}
	err := repo.Create(context.Background(), payment)
	require.NoError(t, err)
	require.NotEmpty(t, payment.ID)
	require.False(t, payment.PaidAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryListByStudentNewestFirst(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "amount", "description", "method", "reference", "paid_at"}).
		AddRow("pay-2", "stu-1", 1500.0, "Partial tuition payment", "cash", "", time.Now()).
		AddRow("pay-1", "stu-1", 6800.0, "Enrollment assessment 1st 2024-2025", "cash", "", time.Now().Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE student_id = $1 ORDER BY paid_at DESC")).
		WithArgs("stu-1").
		WillReturnRows(rows)

	payments, err := repo.ListByStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, payments, 2)
	require.Equal(t, "pay-2", payments[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositorySumByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(amount), 0) FROM payments WHERE student_id = $1")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(8300.0))

	total, err := repo.SumByStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Equal(t, 8300.0, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
