package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
)

// EnrollmentRepository handles persistence of student enrollments.
type EnrollmentRepository struct {
	db       *sqlx.DB
	subjects *SubjectRepository
	payments *PaymentRepository
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{
		db:       db,
		subjects: NewSubjectRepository(db),
		payments: NewPaymentRepository(db),
	}
}

// ListByStudent returns the enrolled offerings with their subject details.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID, semester, academicYear string) ([]models.EnrolledSubject, error) {
	const query = `SELECT s.id, s.code, s.description, s.units, s.schedule, s.room, s.instructor, s.type,
        s.college, s.course, s.year_level, s.semester, s.academic_year, s.slots_filled, s.slots_max,
        s.prerequisites, s.created_at, e.enrolled_at
        FROM student_enrollments e
        JOIN subjects s ON s.id = e.subject_id
        WHERE e.student_id = $1 AND e.semester = $2 AND e.academic_year = $3
        ORDER BY s.code ASC`
	var subjects []models.EnrolledSubject
	if err := r.db.SelectContext(ctx, &subjects, query, studentID, semester, academicYear); err != nil {
		return nil, fmt.Errorf("list enrolled subjects: %w", err)
	}
	return subjects, nil
}

// ListSubjectIDsByStudent returns every subject identifier the student has
// ever enrolled in, across all terms. Prerequisite checks read this set.
func (r *EnrollmentRepository) ListSubjectIDsByStudent(ctx context.Context, studentID string) ([]string, error) {
	const query = `SELECT subject_id FROM student_enrollments WHERE student_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrolled subject ids: %w", err)
	}
	return ids, nil
}

// ReplaceForTerm swaps the student's enrolled set for the term with the
// given subjects, appends the assessment payment and bumps offering slots,
// all inside one transaction.
func (r *EnrollmentRepository) ReplaceForTerm(
	ctx context.Context,
	studentID, semester, academicYear string,
	subjectIDs []string,
	payment *models.Payment,
) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enrollment tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const deleteQuery = `DELETE FROM student_enrollments WHERE student_id = $1 AND semester = $2 AND academic_year = $3`
	if _, err := tx.ExecContext(ctx, deleteQuery, studentID, semester, academicYear); err != nil {
		return fmt.Errorf("clear term enrollments: %w", err)
	}

	const insertQuery = `INSERT INTO student_enrollments (id, student_id, subject_id, semester, academic_year, enrolled_at)
        VALUES ($1, $2, $3, $4, $5, $6)`
	now := time.Now().UTC()
	for _, subjectID := range subjectIDs {
		if _, err := tx.ExecContext(ctx, insertQuery, uuid.NewString(), studentID, subjectID, semester, academicYear, now); err != nil {
			return fmt.Errorf("insert enrollment: %w", err)
		}
	}

	if err := r.subjects.IncrementSlots(ctx, tx, subjectIDs); err != nil {
		return err
	}

	if payment != nil {
		if err := r.payments.CreateTx(ctx, tx, payment); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment tx: %w", err)
	}
	return nil
}
