package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
	appErrors "github.com/valiant-11/psu-enrollment-api/pkg/errors"
)

type mockStudentRepo struct {
	students map[string]*models.Student
	statuses map[string]models.EnrollmentStatus
	courses  map[string]string
	updated  []*models.Student
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = student
	m.updated = append(m.updated, student)
	return nil
}

func (m *mockStudentRepo) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	if m.statuses == nil {
		m.statuses = make(map[string]models.EnrollmentStatus)
	}
	m.statuses[id] = status
	return nil
}

func (m *mockStudentRepo) UpdateCourse(ctx context.Context, id, course string) error {
	if m.courses == nil {
		m.courses = make(map[string]string)
	}
	m.courses[id] = course
	if s, ok := m.students[id]; ok {
		s.Course = course
	}
	return nil
}

type mockSubjectCatalog struct {
	subjects []models.Subject
}

func (m *mockSubjectCatalog) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	var out []models.Subject
	for _, s := range m.subjects {
		if filter.Semester != "" && s.Semester != filter.Semester {
			continue
		}
		if filter.AcademicYear != "" && s.AcademicYear != filter.AcademicYear {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *mockSubjectCatalog) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	for _, s := range m.subjects {
		if s.ID == id {
			clone := s
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubjectCatalog) FindByIDs(ctx context.Context, ids []string) ([]models.Subject, error) {
	var out []models.Subject
	for _, id := range ids {
		for _, s := range m.subjects {
			if s.ID == id {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

type replacedTerm struct {
	subjectIDs []string
	payment    *models.Payment
}

type mockEnrollmentStore struct {
	historyIDs []string
	enrolled   []models.EnrolledSubject
	replaced   *replacedTerm
}

func (m *mockEnrollmentStore) ListByStudent(ctx context.Context, studentID, semester, academicYear string) ([]models.EnrolledSubject, error) {
	return m.enrolled, nil
}

func (m *mockEnrollmentStore) ListSubjectIDsByStudent(ctx context.Context, studentID string) ([]string, error) {
	return m.historyIDs, nil
}

func (m *mockEnrollmentStore) ReplaceForTerm(ctx context.Context, studentID, semester, academicYear string, subjectIDs []string, payment *models.Payment) error {
	if payment != nil && payment.ID == "" {
		payment.ID = "pay-1"
	}
	m.replaced = &replacedTerm{subjectIDs: subjectIDs, payment: payment}
	return nil
}

type mockSelectionStore struct {
	selections map[string]*models.Selection
	cleared    int
}

func (m *mockSelectionStore) key(studentID, semester, academicYear string) string {
	return studentID + "|" + semester + "|" + academicYear
}

func (m *mockSelectionStore) Get(ctx context.Context, studentID, semester, academicYear string) (*models.Selection, error) {
	if s, ok := m.selections[m.key(studentID, semester, academicYear)]; ok {
		return s, nil
	}
	return &models.Selection{StudentID: studentID, Semester: semester, AcademicYear: academicYear, SubjectIDs: []string{}}, nil
}

func (m *mockSelectionStore) Save(ctx context.Context, selection *models.Selection) error {
	if m.selections == nil {
		m.selections = make(map[string]*models.Selection)
	}
	m.selections[m.key(selection.StudentID, selection.Semester, selection.AcademicYear)] = selection
	return nil
}

func (m *mockSelectionStore) Clear(ctx context.Context, studentID, semester, academicYear string) error {
	delete(m.selections, m.key(studentID, semester, academicYear))
	m.cleared++
	return nil
}

func testFeeSchedule() FeeSchedule {
	return FeeSchedule{TuitionPerUnit: 500, LabFeePerMajor: 1000, MinFullTimeUnits: 12, MaxSemesterUnits: 21}
}

func testCatalog() *mockSubjectCatalog {
	return &mockSubjectCatalog{subjects: []models.Subject{
		{ID: "sub-x", Code: "CS201", Units: 3, Type: models.SubjectMajor, Course: "BSCS", Semester: "1st", AcademicYear: "2024-2025", SlotsFilled: 10, SlotsMax: 40},
		{ID: "sub-y", Code: "CS202", Units: 3, Type: models.SubjectCore, Course: "BSCS", Semester: "1st", AcademicYear: "2024-2025", SlotsFilled: 5, SlotsMax: 40, Prerequisites: []string{"sub-x"}},
		{ID: "sub-full", Code: "CS203", Units: 3, Type: models.SubjectCore, Course: "BSCS", Semester: "1st", AcademicYear: "2024-2025", SlotsFilled: 40, SlotsMax: 40},
		{ID: "sub-it", Code: "IT210", Units: 3, Type: models.SubjectCore, Course: "BSIT", Semester: "1st", AcademicYear: "2024-2025", SlotsFilled: 0, SlotsMax: 40},
	}}
}

func newEnrollmentService(students *mockStudentRepo, catalog *mockSubjectCatalog, store *mockEnrollmentStore, selections *mockSelectionStore) *EnrollmentService {
	return NewEnrollmentService(students, catalog, store, selections, nil, time.Minute, nil, testFeeSchedule(), validator.New(), zap.NewNop())
}

func testStudent() *mockStudentRepo {
	return &mockStudentRepo{students: map[string]*models.Student{
		"stu-1": {ID: "stu-1", Course: "BSCS", Status: models.StatusRegistered},
	}}
}

func TestListEligibleExcludesUnmetPrerequisites(t *testing.T) {
	svc := newEnrollmentService(testStudent(), testCatalog(), &mockEnrollmentStore{}, &mockSelectionStore{})

	eligible, err := svc.ListEligible(context.Background(), "stu-1", "1st", "2024-2025")
	require.NoError(t, err)

	ids := eligibleIDs(eligible)
	assert.Contains(t, ids, "sub-x")
	assert.NotContains(t, ids, "sub-y", "prerequisite sub-x is not in the enrollment history")
	assert.NotContains(t, ids, "sub-full")
}

func TestListEligibleIncludesSubjectOncePrerequisiteSatisfied(t *testing.T) {
	store := &mockEnrollmentStore{historyIDs: []string{"sub-x"}}
	svc := newEnrollmentService(testStudent(), testCatalog(), store, &mockSelectionStore{})

	eligible, err := svc.ListEligible(context.Background(), "stu-1", "1st", "2024-2025")
	require.NoError(t, err)

	ids := eligibleIDs(eligible)
	assert.NotContains(t, ids, "sub-x", "already enrolled")
	assert.Contains(t, ids, "sub-y")
}

func TestListEligibleFlagsCrossEnrollment(t *testing.T) {
	svc := newEnrollmentService(testStudent(), testCatalog(), &mockEnrollmentStore{}, &mockSelectionStore{})

	eligible, err := svc.ListEligible(context.Background(), "stu-1", "1st", "2024-2025")
	require.NoError(t, err)

	for _, item := range eligible {
		if item.ID == "sub-it" {
			assert.True(t, item.CrossEnrollment)
		}
		if item.ID == "sub-x" {
			assert.False(t, item.CrossEnrollment)
		}
	}
}

func TestToggleAddsAndRemoves(t *testing.T) {
	selections := &mockSelectionStore{}
	svc := newEnrollmentService(testStudent(), testCatalog(), &mockEnrollmentStore{}, selections)

	req := models.ToggleRequest{SubjectID: "sub-x", Semester: "1st", AcademicYear: "2024-2025"}

	selection, err := svc.Toggle(context.Background(), "stu-1", req)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-x"}, selection.SubjectIDs)

	selection, err = svc.Toggle(context.Background(), "stu-1", req)
	require.NoError(t, err)
	assert.Empty(t, selection.SubjectIDs)
}

func TestToggleIsNoOpForFullSubject(t *testing.T) {
	selections := &mockSelectionStore{}
	svc := newEnrollmentService(testStudent(), testCatalog(), &mockEnrollmentStore{}, selections)

	selection, err := svc.Toggle(context.Background(), "stu-1", models.ToggleRequest{SubjectID: "sub-full", Semester: "1st", AcademicYear: "2024-2025"})
	require.NoError(t, err)
	assert.Empty(t, selection.SubjectIDs)
	assert.Empty(t, selections.selections)
}

func TestQuoteComputesScenarioAssessment(t *testing.T) {
	selections := &mockSelectionStore{selections: map[string]*models.Selection{}}
	svc := newEnrollmentService(testStudent(), testCatalog(), &mockEnrollmentStore{}, selections)

	require.NoError(t, selections.Save(context.Background(), &models.Selection{
		StudentID: "stu-1", Semester: "1st", AcademicYear: "2024-2025",
		SubjectIDs: []string{"sub-x", "sub-y"},
	}))

	quote, err := svc.Quote(context.Background(), "stu-1", "1st", "2024-2025")
	require.NoError(t, err)

	assert.Equal(t, 6, quote.TotalUnits)
	assert.Equal(t, 3000.0, quote.Fees.Tuition)
	assert.Equal(t, 2800.0, quote.Fees.MiscTotal)
	assert.Equal(t, 1000.0, quote.Fees.LabTotal, "one Major subject adds one lab fee")
	assert.Equal(t, 6800.0, quote.Fees.Total)
	assert.True(t, quote.BelowMinimumUnits)
	assert.False(t, quote.ExceedsMaximumUnits)
}

func TestConfirmRejectsEmptySelection(t *testing.T) {
	svc := newEnrollmentService(testStudent(), testCatalog(), &mockEnrollmentStore{}, &mockSelectionStore{})

	_, err := svc.Confirm(context.Background(), "stu-1", models.ConfirmRequest{Semester: "1st", AcademicYear: "2024-2025"})
	assert.ErrorIs(t, err, appErrors.ErrSelectionEmpty)
}

func TestConfirmRejectsOverMaximumUnits(t *testing.T) {
	catalog := &mockSubjectCatalog{}
	var ids []string
	for i := 0; i < 8; i++ {
		id := string(rune('a' + i))
		catalog.subjects = append(catalog.subjects, models.Subject{
			ID: id, Units: 3, Type: models.SubjectCore, Semester: "1st", AcademicYear: "2024-2025", SlotsMax: 40,
		})
		ids = append(ids, id)
	}
	selections := &mockSelectionStore{selections: map[string]*models.Selection{}}
	require.NoError(t, selections.Save(context.Background(), &models.Selection{
		StudentID: "stu-1", Semester: "1st", AcademicYear: "2024-2025", SubjectIDs: ids,
	}))
	svc := newEnrollmentService(testStudent(), catalog, &mockEnrollmentStore{}, selections)

	_, err := svc.Confirm(context.Background(), "stu-1", models.ConfirmRequest{Semester: "1st", AcademicYear: "2024-2025"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnitLimit.Code, appErr.Code)
}

func TestConfirmCommitsSelectionAndAppendsPayment(t *testing.T) {
	students := testStudent()
	store := &mockEnrollmentStore{}
	selections := &mockSelectionStore{selections: map[string]*models.Selection{}}
	require.NoError(t, selections.Save(context.Background(), &models.Selection{
		StudentID: "stu-1", Semester: "1st", AcademicYear: "2024-2025",
		SubjectIDs: []string{"sub-x", "sub-y"},
	}))
	svc := newEnrollmentService(students, testCatalog(), store, selections)

	result, err := svc.Confirm(context.Background(), "stu-1", models.ConfirmRequest{Semester: "1st", AcademicYear: "2024-2025"})
	require.NoError(t, err)

	require.NotNil(t, store.replaced)
	assert.Equal(t, []string{"sub-x", "sub-y"}, store.replaced.subjectIDs)
	require.NotNil(t, store.replaced.payment)
	assert.Equal(t, 6800.0, store.replaced.payment.Amount)
	assert.Equal(t, "Tuition - 1st 2024-2025", store.replaced.payment.Description)

	assert.True(t, result.BelowMinimumUnits, "6 units is below the full-time minimum but still commits")
	assert.Equal(t, models.StatusEnrolled, students.statuses["stu-1"])
	assert.Equal(t, 1, selections.cleared)
	assert.Empty(t, selections.selections)
}

func TestListEligibleRecordsCatalogCacheHitAndMiss(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewEnrollmentService(testStudent(), testCatalog(), &mockEnrollmentStore{}, &mockSelectionStore{},
		&mockCatalogCache{}, time.Minute, metrics, testFeeSchedule(), validator.New(), zap.NewNop())

	_, err := svc.ListEligible(context.Background(), "stu-1", "1st", "2024-2025")
	require.NoError(t, err)
	_, err = svc.ListEligible(context.Background(), "stu-1", "1st", "2024-2025")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheHits))
}

func eligibleIDs(eligible []models.EligibleSubject) []string {
	ids := make([]string, 0, len(eligible))
	for _, item := range eligible {
		ids = append(ids, item.ID)
	}
	return ids
}
