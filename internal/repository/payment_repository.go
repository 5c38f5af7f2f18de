package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
)

// PaymentRepository handles the append-only payment ledger.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentInsert = `INSERT INTO payments (id, student_id, amount, description, method, reference, paid_at)
        VALUES (:id, :student_id, :amount, :description, :method, :reference, :paid_at)`

// Create appends a new ledger entry.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	prepare(payment)
	if _, err := r.db.NamedExecContext(ctx, paymentInsert, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// CreateTx appends a new ledger entry inside an existing transaction.
func (r *PaymentRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, payment *models.Payment) error {
	prepare(payment)
	if _, err := tx.NamedExecContext(ctx, paymentInsert, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// ListByStudent returns the ledger newest first.
func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Payment, error) {
	const query = `SELECT id, student_id, amount, description, method, reference, paid_at
        FROM payments WHERE student_id = $1 ORDER BY paid_at DESC`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, studentID); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// SumByStudent totals all recorded payments for the student.
func (r *PaymentRepository) SumByStudent(ctx context.Context, studentID string) (float64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE student_id = $1`
	var total float64
	if err := r.db.GetContext(ctx, &total, query, studentID); err != nil {
		return 0, fmt.Errorf("sum payments: %w", err)
	}
	return total, nil
}

func prepare(payment *models.Payment) {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.PaidAt.IsZero() {
		payment.PaidAt = time.Now().UTC()
	}
}
