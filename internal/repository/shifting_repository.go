package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
)

// ShiftingRepository persists course-shift requests. At most one row
// exists per student at any time.
type ShiftingRepository struct {
	db *sqlx.DB
}

// NewShiftingRepository constructs the repository.
func NewShiftingRepository(db *sqlx.DB) *ShiftingRepository {
	return &ShiftingRepository{db: db}
}

// Create persists a new pending request.
func (r *ShiftingRepository) Create(ctx context.Context, request *models.ShiftingRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.SubmittedAt.IsZero() {
		request.SubmittedAt = time.Now().UTC()
	}
	if request.Status == "" {
		request.Status = models.ShiftPending
	}
	const query = `INSERT INTO shifting_requests (id, student_id, from_course, to_course, reason, performance_note, status, submitted_at, resolved_at)
        VALUES (:id, :student_id, :from_course, :to_course, :reason, :performance_note, :status, :submitted_at, :resolved_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create shifting request: %w", err)
	}
	return nil
}

// FindByStudent returns the student's live request, if any.
func (r *ShiftingRepository) FindByStudent(ctx context.Context, studentID string) (*models.ShiftingRequest, error) {
	const query = `SELECT id, student_id, from_course, to_course, reason, performance_note, status, submitted_at, resolved_at
        FROM shifting_requests WHERE student_id = $1`
	var request models.ShiftingRequest
	if err := r.db.GetContext(ctx, &request, query, studentID); err != nil {
		return nil, err
	}
	return &request, nil
}

// UpdateStatus resolves a pending request.
func (r *ShiftingRepository) UpdateStatus(ctx context.Context, id string, status models.ShiftStatus, resolvedAt time.Time) error {
	const query = `UPDATE shifting_requests SET status = $2, resolved_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, resolvedAt); err != nil {
		return fmt.Errorf("update shifting status: %w", err)
	}
	return nil
}

// Delete discards the request record. Cancel does not archive.
func (r *ShiftingRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM shifting_requests WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete shifting request: %w", err)
	}
	return nil
}
