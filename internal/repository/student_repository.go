package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
)

// StudentRepository handles persistence of student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, student_number, email, personal_email, full_name, birth_date, sex, address, phone,
        college, course, year_level, semester, academic_year, last_school, strand, graduation_year, status,
        created_at, updated_at`

// Create persists a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	if student.Status == "" {
		student.Status = models.StatusRegistered
	}
	const query = `INSERT INTO students (id, student_number, email, personal_email, full_name, birth_date, sex, address, phone,
        college, course, year_level, semester, academic_year, last_school, strand, graduation_year, status, created_at, updated_at)
        VALUES (:id, :student_number, :email, :personal_email, :full_name, :birth_date, :sex, :address, :phone,
        :college, :course, :year_level, :semester, :academic_year, :last_school, :strand, :graduation_year, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// FindByID returns a student by its ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByEmail returns a student by institutional or personal email.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE email = $1 OR personal_email = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, email); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByStudentNumber returns a student by their student number.
func (r *StudentRepository) FindByStudentNumber(ctx context.Context, number string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE student_number = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, number); err != nil {
		return nil, err
	}
	return &student, nil
}

// Update replaces the full student record. Profile edits persist by
// replacing the row rather than patching individual columns.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET student_number = :student_number, email = :email, personal_email = :personal_email,
        full_name = :full_name, birth_date = :birth_date, sex = :sex, address = :address, phone = :phone,
        college = :college, course = :course, year_level = :year_level, semester = :semester,
        academic_year = :academic_year, last_school = :last_school, strand = :strand,
        graduation_year = :graduation_year, status = :status, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// UpdateCourse sets only the course field, used when a shift is approved.
func (r *StudentRepository) UpdateCourse(ctx context.Context, id, course string) error {
	const query = `UPDATE students SET course = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, course, time.Now().UTC()); err != nil {
		return fmt.Errorf("update student course: %w", err)
	}
	return nil
}

// UpdateStatus moves the student between enrollment cycle states.
func (r *StudentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	const query = `UPDATE students SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update student status: %w", err)
	}
	return nil
}
