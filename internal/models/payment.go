package models

import "time"

// Payment is one append-only ledger entry. Balances are always recomputed
// from the sequence, never stored.
type Payment struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	Amount      float64   `db:"amount" json:"amount"`
	Description string    `db:"description" json:"description"`
	Method      string    `db:"method" json:"method"`
	Reference   string    `db:"reference" json:"reference"`
	PaidAt      time.Time `db:"paid_at" json:"paid_at"`
}

// RecordPaymentRequest submits a new payment against the outstanding balance.
type RecordPaymentRequest struct {
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Method    string  `json:"method" validate:"required,oneof=credit-card bank-transfer e-wallet mobile-payment cash"`
	Reference string  `json:"reference" validate:"omitempty,max=64"`
}

// Assessment is the full fee statement for the student's enrolled load.
type Assessment struct {
	StudentID    string       `json:"student_id"`
	Semester     string       `json:"semester"`
	AcademicYear string       `json:"academic_year"`
	Fees         FeeBreakdown `json:"fees"`
	TotalPaid    float64      `json:"total_paid"`
	Balance      float64      `json:"balance"`
}

// PaymentHistory bundles the ledger with its derived balance.
type PaymentHistory struct {
	Payments   []Payment `json:"payments"`
	TotalPaid  float64   `json:"total_paid"`
	Assessment float64   `json:"assessment"`
	Balance    float64   `json:"balance"`
}
