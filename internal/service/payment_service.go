package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
	appErrors "github.com/valiant-11/psu-enrollment-api/pkg/errors"
	"github.com/valiant-11/psu-enrollment-api/pkg/export"
)

type paymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	ListByStudent(ctx context.Context, studentID string) ([]models.Payment, error)
	SumByStudent(ctx context.Context, studentID string) (float64, error)
}

type enrolledSubjectLister interface {
	ListByStudent(ctx context.Context, studentID, semester, academicYear string) ([]models.EnrolledSubject, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string, summary []export.SummaryLine) ([]byte, error)
}

// PaymentService computes assessments and maintains the append-only ledger.
type PaymentService struct {
	payments    paymentStore
	enrollments enrolledSubjectLister
	students    studentRepository
	fees        FeeSchedule
	csv         csvRenderer
	pdf         pdfRenderer
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewPaymentService constructs a PaymentService instance.
func NewPaymentService(
	payments paymentStore,
	enrollments enrolledSubjectLister,
	students studentRepository,
	fees FeeSchedule,
	csv csvRenderer,
	pdf pdfRenderer,
	validate *validator.Validate,
	logger *zap.Logger,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PaymentService{
		payments:    payments,
		enrollments: enrollments,
		students:    students,
		fees:        fees,
		csv:         csv,
		pdf:         pdf,
		validator:   validate,
		logger:      logger,
	}
}

// Assessment returns the fee statement for the student's enrolled load
// together with the ledger totals. The displayed balance clamps at zero.
func (s *PaymentService) Assessment(ctx context.Context, studentID, semester, academicYear string) (*models.Assessment, error) {
	fees, err := s.enrolledBreakdown(ctx, studentID, semester, academicYear)
	if err != nil {
		return nil, err
	}

	paid, err := s.payments.SumByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum payments")
	}

	balance := fees.Total - paid
	if balance < 0 {
		balance = 0
	}

	return &models.Assessment{
		StudentID:    studentID,
		Semester:     semester,
		AcademicYear: academicYear,
		Fees:         fees,
		TotalPaid:    paid,
		Balance:      balance,
	}, nil
}

// RecordPayment appends a ledger entry. Amounts above the outstanding
// balance are rejected so the ledger can never overshoot the assessment.
func (s *PaymentService) RecordPayment(ctx context.Context, studentID, semester, academicYear string, req models.RecordPaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	assessment, err := s.Assessment(ctx, studentID, semester, academicYear)
	if err != nil {
		return nil, err
	}

	if req.Amount > assessment.Balance {
		return nil, appErrors.Clone(appErrors.ErrPaymentExceeds,
			fmt.Sprintf("amount exceeds the remaining balance of %.2f", assessment.Balance))
	}

	payment := &models.Payment{
		StudentID:   studentID,
		Amount:      req.Amount,
		Description: fmt.Sprintf("Partial payment - %s %s", semester, academicYear),
		Method:      req.Method,
		Reference:   req.Reference,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}

	s.logger.Info("payment recorded",
		zap.String("student_id", studentID),
		zap.String("payment_id", payment.ID),
		zap.Float64("amount", payment.Amount))

	return payment, nil
}

// History returns the ledger newest first with derived totals.
func (s *PaymentService) History(ctx context.Context, studentID, semester, academicYear string) (*models.PaymentHistory, error) {
	fees, err := s.enrolledBreakdown(ctx, studentID, semester, academicYear)
	if err != nil {
		return nil, err
	}

	payments, err := s.payments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}

	var paid float64
	for _, payment := range payments {
		paid += payment.Amount
	}
	balance := fees.Total - paid
	if balance < 0 {
		balance = 0
	}

	return &models.PaymentHistory{
		Payments:   payments,
		TotalPaid:  paid,
		Assessment: fees.Total,
		Balance:    balance,
	}, nil
}

// ExportHistoryCSV renders the ledger as CSV for download.
func (s *PaymentService) ExportHistoryCSV(ctx context.Context, studentID, semester, academicYear string) ([]byte, string, error) {
	history, err := s.History(ctx, studentID, semester, academicYear)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Description", "Method", "Reference", "Amount"},
		Rows:    make([]map[string]string, 0, len(history.Payments)),
	}
	for _, payment := range history.Payments {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":        payment.PaidAt.Format("2006-01-02"),
			"Description": payment.Description,
			"Method":      payment.Method,
			"Reference":   payment.Reference,
			"Amount":      fmt.Sprintf("%.2f", payment.Amount),
		})
	}

	raw, err := s.csv.Render(dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}

	filename := fmt.Sprintf("payments-%s.csv", time.Now().UTC().Format("20060102"))
	return raw, filename, nil
}

// ExportAssessmentPDF renders the fee statement as a PDF for download.
func (s *PaymentService) ExportAssessmentPDF(ctx context.Context, studentID, semester, academicYear string) ([]byte, string, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	assessment, err := s.Assessment(ctx, studentID, semester, academicYear)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Item", "Amount"},
		Rows: []map[string]string{
			{"Item": fmt.Sprintf("Tuition (%d units)", assessment.Fees.TotalUnits), "Amount": fmt.Sprintf("%.2f", assessment.Fees.Tuition)},
		},
	}
	for _, item := range assessment.Fees.Miscellaneous {
		dataset.Rows = append(dataset.Rows, map[string]string{"Item": item.Name, "Amount": fmt.Sprintf("%.2f", item.Amount)})
	}
	for _, item := range assessment.Fees.Laboratory {
		dataset.Rows = append(dataset.Rows, map[string]string{"Item": item.Name, "Amount": fmt.Sprintf("%.2f", item.Amount)})
	}
	dataset.Rows = append(dataset.Rows,
		map[string]string{"Item": "Total Assessment", "Amount": fmt.Sprintf("%.2f", assessment.Fees.Total)},
		map[string]string{"Item": "Total Paid", "Amount": fmt.Sprintf("%.2f", assessment.TotalPaid)},
		map[string]string{"Item": "Remaining Balance", "Amount": fmt.Sprintf("%.2f", assessment.Balance)},
	)

	summary := []export.SummaryLine{
		{Label: "Student", Value: student.FullName},
		{Label: "Student Number", Value: student.StudentNumber},
		{Label: "Course", Value: student.Course},
		{Label: "Term", Value: fmt.Sprintf("%s Semester %s", semester, academicYear)},
	}

	raw, err := s.pdf.Render(dataset, "Statement of Account", summary)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}

	filename := fmt.Sprintf("assessment-%s.pdf", student.StudentNumber)
	return raw, filename, nil
}

func (s *PaymentService) enrolledBreakdown(ctx context.Context, studentID, semester, academicYear string) (models.FeeBreakdown, error) {
	enrolled, err := s.enrollments.ListByStudent(ctx, studentID, semester, academicYear)
	if err != nil {
		return models.FeeBreakdown{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolled subjects")
	}

	subjects := make([]models.Subject, 0, len(enrolled))
	for _, item := range enrolled {
		subjects = append(subjects, item.Subject)
	}
	return s.fees.Breakdown(subjects), nil
}
