package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
)

// GradeRepository reads posted final grades.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// ListByStudent returns grades, optionally narrowed to one term.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID, semester, academicYear string) ([]models.Grade, error) {
	conditions := []string{"student_id = $1"}
	args := []interface{}{studentID}

	if semester != "" {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, semester)
	}
	if academicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, academicYear)
	}

	query := `SELECT id, student_id, subject_code, subject_name, units, grade, remarks, semester, academic_year
        FROM grades WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY subject_code ASC`

	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}
