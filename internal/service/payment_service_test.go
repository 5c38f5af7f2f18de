package service

import (
	"context"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
	appErrors "github.com/valiant-11/psu-enrollment-api/pkg/errors"
	"github.com/valiant-11/psu-enrollment-api/pkg/export"
)

type mockPaymentStore struct {
	payments []models.Payment
	created  []*models.Payment
}

func (m *mockPaymentStore) Create(ctx context.Context, payment *models.Payment) error {
	payment.ID = "pay-new"
	m.created = append(m.created, payment)
	m.payments = append([]models.Payment{*payment}, m.payments...)
	return nil
}

func (m *mockPaymentStore) ListByStudent(ctx context.Context, studentID string) ([]models.Payment, error) {
	return m.payments, nil
}

func (m *mockPaymentStore) SumByStudent(ctx context.Context, studentID string) (float64, error) {
	var total float64
	for _, p := range m.payments {
		total += p.Amount
	}
	return total, nil
}

func enrolledLoad() *mockEnrollmentStore {
	return &mockEnrollmentStore{enrolled: []models.EnrolledSubject{
		{Subject: models.Subject{ID: "sub-x", Code: "CS201", Units: 3, Type: models.SubjectMajor}},
		{Subject: models.Subject{ID: "sub-y", Code: "CS202", Units: 3, Type: models.SubjectCore}},
	}}
}

func newPaymentService(payments *mockPaymentStore, enrollments *mockEnrollmentStore) *PaymentService {
	students := testStudent()
	return NewPaymentService(payments, enrollments, students, testFeeSchedule(),
		export.NewCSVExporter(), export.NewPDFExporter(), validator.New(), zap.NewNop())
}

func TestAssessmentComputesBalance(t *testing.T) {
	payments := &mockPaymentStore{payments: []models.Payment{{ID: "pay-1", Amount: 1800}}}
	svc := newPaymentService(payments, enrolledLoad())

	assessment, err := svc.Assessment(context.Background(), "stu-1", "1st", "2024-2025")
	require.NoError(t, err)

	assert.Equal(t, 6800.0, assessment.Fees.Total, "6 units x 500 + 2800 misc + 1000 lab")
	assert.Equal(t, 1800.0, assessment.TotalPaid)
	assert.Equal(t, 5000.0, assessment.Balance)
}

func TestAssessmentBalanceClampsAtZero(t *testing.T) {
	payments := &mockPaymentStore{payments: []models.Payment{{ID: "pay-1", Amount: 9000}}}
	svc := newPaymentService(payments, enrolledLoad())

	assessment, err := svc.Assessment(context.Background(), "stu-1", "1st", "2024-2025")
	require.NoError(t, err)
	assert.Equal(t, 0.0, assessment.Balance)
}

func TestRecordPaymentReducesBalanceExactly(t *testing.T) {
	payments := &mockPaymentStore{}
	svc := newPaymentService(payments, enrolledLoad())

	_, err := svc.RecordPayment(context.Background(), "stu-1", "1st", "2024-2025", models.RecordPaymentRequest{Amount: 2500, Method: "e-wallet"})
	require.NoError(t, err)

	assessment, err := svc.Assessment(context.Background(), "stu-1", "1st", "2024-2025")
	require.NoError(t, err)
	assert.Equal(t, 4300.0, assessment.Balance)
}

func TestRecordPaymentRejectsNonPositiveAmount(t *testing.T) {
	payments := &mockPaymentStore{}
	svc := newPaymentService(payments, enrolledLoad())

	_, err := svc.RecordPayment(context.Background(), "stu-1", "1st", "2024-2025", models.RecordPaymentRequest{Amount: 0, Method: "cash"})
	require.Error(t, err)
	assert.Empty(t, payments.created, "ledger must stay unchanged")
}

func TestRecordPaymentRejectsAmountOverBalance(t *testing.T) {
	payments := &mockPaymentStore{payments: []models.Payment{{ID: "pay-1", Amount: 6000}}}
	svc := newPaymentService(payments, enrolledLoad())

	_, err := svc.RecordPayment(context.Background(), "stu-1", "1st", "2024-2025", models.RecordPaymentRequest{Amount: 1000, Method: "cash"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrPaymentExceeds.Code, appErr.Code)
	assert.Empty(t, payments.created)
}

func TestRecordPaymentRejectsUnknownMethod(t *testing.T) {
	svc := newPaymentService(&mockPaymentStore{}, enrolledLoad())

	_, err := svc.RecordPayment(context.Background(), "stu-1", "1st", "2024-2025", models.RecordPaymentRequest{Amount: 100, Method: "barter"})
	require.Error(t, err)
}

func TestExportHistoryCSVContainsLedger(t *testing.T) {
	payments := &mockPaymentStore{payments: []models.Payment{
		{ID: "pay-1", Amount: 6800, Description: "Tuition - 1st 2024-2025", Method: "assessment"},
	}}
	svc := newPaymentService(payments, enrolledLoad())

	raw, filename, err := svc.ExportHistoryCSV(context.Background(), "stu-1", "1st", "2024-2025")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".csv"))
	assert.Contains(t, string(raw), "Tuition - 1st 2024-2025")
	assert.Contains(t, string(raw), "6800.00")
}

func TestExportAssessmentPDFRendersDocument(t *testing.T) {
	svc := newPaymentService(&mockPaymentStore{}, enrolledLoad())

	raw, filename, err := svc.ExportAssessmentPDF(context.Background(), "stu-1", "1st", "2024-2025")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
}

func TestExportAssessmentPDFUnknownStudentIsNotFound(t *testing.T) {
	svc := newPaymentService(&mockPaymentStore{}, enrolledLoad())

	_, _, err := svc.ExportAssessmentPDF(context.Background(), "stu-missing", "1st", "2024-2025")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
