package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
	appErrors "github.com/valiant-11/psu-enrollment-api/pkg/errors"
)

type gradeStore interface {
	ListByStudent(ctx context.Context, studentID, semester, academicYear string) ([]models.Grade, error)
}

// GradeService reads posted grades and derives the weighted average.
type GradeService struct {
	grades gradeStore
	logger *zap.Logger
}

// NewGradeService constructs a GradeService instance.
func NewGradeService(grades gradeStore, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{grades: grades, logger: logger}
}

// Report lists grades for the term with the general weighted average,
// computed as sum(grade x units) / sum(units) rounded to two decimals.
func (s *GradeService) Report(ctx context.Context, studentID, semester, academicYear string) (*models.GradeReport, error) {
	grades, err := s.grades.ListByStudent(ctx, studentID, semester, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}

	report := &models.GradeReport{Grades: grades}
	var weighted float64
	for _, grade := range grades {
		report.TotalUnits += grade.Units
		weighted += grade.Grade * float64(grade.Units)
	}
	if report.TotalUnits > 0 {
		report.GWA = math.Round(weighted/float64(report.TotalUnits)*100) / 100
	}

	return report, nil
}
