package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
)

type mockGradeStore struct {
	grades []models.Grade
}

func (m *mockGradeStore) ListByStudent(ctx context.Context, studentID, semester, academicYear string) ([]models.Grade, error) {
	return m.grades, nil
}

func TestReportComputesWeightedAverage(t *testing.T) {
	store := &mockGradeStore{grades: []models.Grade{
		{SubjectCode: "CS201", Units: 3, Grade: 1.5},
		{SubjectCode: "CS202", Units: 3, Grade: 2.0},
		{SubjectCode: "GE101", Units: 2, Grade: 1.25},
	}}
	svc := NewGradeService(store, zap.NewNop())

	report, err := svc.Report(context.Background(), "stu-1", "1st", "2024-2025")
	require.NoError(t, err)

	assert.Equal(t, 8, report.TotalUnits)
	// (1.5*3 + 2.0*3 + 1.25*2) / 8 = 13.0 / 8 = 1.625 -> 1.63
	assert.Equal(t, 1.63, report.GWA)
}

func TestReportWithNoGradesHasZeroAverage(t *testing.T) {
	svc := NewGradeService(&mockGradeStore{}, zap.NewNop())

	report, err := svc.Report(context.Background(), "stu-1", "1st", "2024-2025")
	require.NoError(t, err)

	assert.Empty(t, report.Grades)
	assert.Zero(t, report.TotalUnits)
	assert.Zero(t, report.GWA)
}
