package models

import "time"

// Enrollment links a student to one subject for a term.
type Enrollment struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	Semester     string    `db:"semester" json:"semester"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	EnrolledAt   time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// EnrolledSubject joins an enrollment row with its offering details.
type EnrolledSubject struct {
	Subject
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// Selection is the candidate subject set a student builds before confirming.
// It lives in Redis keyed by student and term so it survives page reloads
// without touching the enrollment table.
type Selection struct {
	StudentID    string    `json:"student_id"`
	Semester     string    `json:"semester"`
	AcademicYear string    `json:"academic_year"`
	SubjectIDs   []string  `json:"subject_ids"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Contains reports whether the subject is part of the selection.
func (s *Selection) Contains(subjectID string) bool {
	for _, id := range s.SubjectIDs {
		if id == subjectID {
			return true
		}
	}
	return false
}

// ToggleRequest adds or removes one offering from the candidate set.
type ToggleRequest struct {
	SubjectID    string `json:"subject_id" validate:"required"`
	Semester     string `json:"semester" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
}

// FeeBreakdown itemizes the charges behind a quote or assessment.
type FeeBreakdown struct {
	TuitionPerUnit float64   `json:"tuition_per_unit"`
	TotalUnits     int       `json:"total_units"`
	Tuition        float64   `json:"tuition"`
	Miscellaneous  []FeeItem `json:"miscellaneous"`
	MiscTotal      float64   `json:"misc_total"`
	Laboratory     []FeeItem `json:"laboratory"`
	LabTotal       float64   `json:"lab_total"`
	Total          float64   `json:"total"`
}

// FeeItem is a single named charge.
type FeeItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// EnrollmentQuote reports the running totals for the current selection.
type EnrollmentQuote struct {
	Subjects            []EligibleSubject `json:"subjects"`
	TotalUnits          int               `json:"total_units"`
	Fees                FeeBreakdown      `json:"fees"`
	BelowMinimumUnits   bool              `json:"below_minimum_units"`
	ExceedsMaximumUnits bool              `json:"exceeds_maximum_units"`
}

// ConfirmRequest commits the candidate selection for a term.
type ConfirmRequest struct {
	Semester     string `json:"semester" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
}

// ConfirmResult summarises a committed enrollment.
type ConfirmResult struct {
	EnrolledSubjects  []string     `json:"enrolled_subjects"`
	TotalUnits        int          `json:"total_units"`
	Fees              FeeBreakdown `json:"fees"`
	BelowMinimumUnits bool         `json:"below_minimum_units"`
	PaymentID         string       `json:"payment_id"`
}
