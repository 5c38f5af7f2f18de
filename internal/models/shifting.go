package models

import "time"

// ShiftStatus enumerates the course-shift request states.
type ShiftStatus string

const (
	ShiftPending  ShiftStatus = "pending"
	ShiftApproved ShiftStatus = "approved"
	ShiftRejected ShiftStatus = "rejected"
)

// ShiftingRequest is a student's petition to change course. At most one
// live request exists per student; cancel deletes it outright.
type ShiftingRequest struct {
	ID              string      `db:"id" json:"id"`
	StudentID       string      `db:"student_id" json:"student_id"`
	FromCourse      string      `db:"from_course" json:"from_course"`
	ToCourse        string      `db:"to_course" json:"to_course"`
	Reason          string      `db:"reason" json:"reason"`
	PerformanceNote string      `db:"performance_note" json:"performance_note"`
	Status          ShiftStatus `db:"status" json:"status"`
	SubmittedAt     time.Time   `db:"submitted_at" json:"submitted_at"`
	ResolvedAt      *time.Time  `db:"resolved_at" json:"resolved_at,omitempty"`
}

// SubmitShiftRequest opens a new shifting petition.
type SubmitShiftRequest struct {
	ToCourse        string `json:"to_course" validate:"required"`
	Reason          string `json:"reason" validate:"required"`
	PerformanceNote string `json:"performance_note" validate:"required"`
}
