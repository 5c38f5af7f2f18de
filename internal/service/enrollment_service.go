package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
	appErrors "github.com/valiant-11/psu-enrollment-api/pkg/errors"
)

type enrollmentStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error
}

type subjectCatalog interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Subject, error)
}

type enrollmentStore interface {
	ListByStudent(ctx context.Context, studentID, semester, academicYear string) ([]models.EnrolledSubject, error)
	ListSubjectIDsByStudent(ctx context.Context, studentID string) ([]string, error)
	ReplaceForTerm(ctx context.Context, studentID, semester, academicYear string, subjectIDs []string, payment *models.Payment) error
}

type selectionStore interface {
	Get(ctx context.Context, studentID, semester, academicYear string) (*models.Selection, error)
	Save(ctx context.Context, selection *models.Selection) error
	Clear(ctx context.Context, studentID, semester, academicYear string) error
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// EnrollmentService is the rule-bearing core: it filters the catalog down
// to eligible offerings, maintains the candidate selection, computes fee
// quotes and commits confirmed selections.
type EnrollmentService struct {
	students    enrollmentStudentRepository
	subjects    subjectCatalog
	enrollments enrollmentStore
	selections  selectionStore
	cache       catalogCache
	cacheTTL    time.Duration
	metrics     *MetricsService
	fees        FeeSchedule
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService instance.
func NewEnrollmentService(
	students enrollmentStudentRepository,
	subjects subjectCatalog,
	enrollments enrollmentStore,
	selections selectionStore,
	cache catalogCache,
	cacheTTL time.Duration,
	metrics *MetricsService,
	fees FeeSchedule,
	validate *validator.Validate,
	logger *zap.Logger,
) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EnrollmentService{
		students:    students,
		subjects:    subjects,
		enrollments: enrollments,
		selections:  selections,
		cache:       cache,
		cacheTTL:    cacheTTL,
		metrics:     metrics,
		fees:        fees,
		validator:   validate,
		logger:      logger,
	}
}

// ListEligible returns the offerings the student may add this term. An
// offering qualifies when it belongs to the term, is not already enrolled,
// has every prerequisite satisfied by the student's enrollment history and
// still has open slots. Offerings from another course stay in the list,
// flagged as cross-enrollment.
func (s *EnrollmentService) ListEligible(ctx context.Context, studentID, semester, academicYear string) ([]models.EligibleSubject, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.termCatalog(ctx, semester, academicYear)
	if err != nil {
		return nil, err
	}

	enrolledIDs, err := s.enrollments.ListSubjectIDsByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment history")
	}
	enrolled := make(map[string]struct{}, len(enrolledIDs))
	for _, id := range enrolledIDs {
		enrolled[id] = struct{}{}
	}

	selection, err := s.selections.Get(ctx, studentID, semester, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selection")
	}

	eligible := make([]models.EligibleSubject, 0, len(catalog))
	for _, subject := range catalog {
		if _, ok := enrolled[subject.ID]; ok {
			continue
		}
		if subject.Full() {
			continue
		}
		if !prerequisitesMet(subject, enrolled) {
			continue
		}
		eligible = append(eligible, models.EligibleSubject{
			Subject:         subject,
			CrossEnrollment: subject.Course != "" && subject.Course != student.Course,
			Selected:        selection.Contains(subject.ID),
		})
	}

	return eligible, nil
}

// Toggle adds or removes one offering from the candidate selection. A full
// offering is a silent no-op so a stale eligible list cannot oversubscribe.
func (s *EnrollmentService) Toggle(ctx context.Context, studentID string, req models.ToggleRequest) (*models.Selection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid toggle payload")
	}

	selection, err := s.selections.Get(ctx, studentID, req.Semester, req.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selection")
	}

	if selection.Contains(req.SubjectID) {
		kept := make([]string, 0, len(selection.SubjectIDs)-1)
		for _, id := range selection.SubjectIDs {
			if id != req.SubjectID {
				kept = append(kept, id)
			}
		}
		selection.SubjectIDs = kept
	} else {
		subject, err := s.subjects.FindByID(ctx, req.SubjectID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch subject")
		}
		if subject.Full() {
			return selection, nil
		}
		selection.SubjectIDs = append(selection.SubjectIDs, req.SubjectID)
	}

	if err := s.selections.Save(ctx, selection); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save selection")
	}

	return selection, nil
}

// ClearSelection resets the candidate set.
func (s *EnrollmentService) ClearSelection(ctx context.Context, studentID, semester, academicYear string) error {
	if err := s.selections.Clear(ctx, studentID, semester, academicYear); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear selection")
	}
	return nil
}

// Quote computes running totals for the current selection without
// committing anything.
func (s *EnrollmentService) Quote(ctx context.Context, studentID, semester, academicYear string) (*models.EnrollmentQuote, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	selection, err := s.selections.Get(ctx, studentID, semester, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selection")
	}

	subjects, err := s.subjects.FindByIDs(ctx, selection.SubjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selected subjects")
	}

	fees := s.fees.Breakdown(subjects)
	quote := &models.EnrollmentQuote{
		Subjects:            make([]models.EligibleSubject, 0, len(subjects)),
		TotalUnits:          fees.TotalUnits,
		Fees:                fees,
		BelowMinimumUnits:   fees.TotalUnits > 0 && fees.TotalUnits < s.fees.MinFullTimeUnits,
		ExceedsMaximumUnits: fees.TotalUnits > s.fees.MaxSemesterUnits,
	}
	for _, subject := range subjects {
		quote.Subjects = append(quote.Subjects, models.EligibleSubject{
			Subject:         subject,
			CrossEnrollment: subject.Course != "" && subject.Course != student.Course,
			Selected:        true,
		})
	}

	return quote, nil
}

// Confirm commits the candidate selection: the enrolled set for the term
// is replaced, one assessment payment is appended, offering slots are
// bumped and the selection is cleared. An empty selection or a load above
// the semester maximum blocks the commit; a load below the full-time
// minimum goes through with a warning flag.
func (s *EnrollmentService) Confirm(ctx context.Context, studentID string, req models.ConfirmRequest) (*models.ConfirmResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid confirm payload")
	}

	if _, err := s.loadStudent(ctx, studentID); err != nil {
		return nil, err
	}

	selection, err := s.selections.Get(ctx, studentID, req.Semester, req.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selection")
	}
	if len(selection.SubjectIDs) == 0 {
		return nil, appErrors.ErrSelectionEmpty
	}

	subjects, err := s.subjects.FindByIDs(ctx, selection.SubjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selected subjects")
	}

	fees := s.fees.Breakdown(subjects)
	if fees.TotalUnits > s.fees.MaxSemesterUnits {
		return nil, appErrors.Clone(appErrors.ErrUnitLimit,
			fmt.Sprintf("selected units (%d) exceed the maximum of %d", fees.TotalUnits, s.fees.MaxSemesterUnits))
	}

	payment := &models.Payment{
		StudentID:   studentID,
		Amount:      fees.Total,
		Description: fmt.Sprintf("Tuition - %s %s", req.Semester, req.AcademicYear),
		Method:      "assessment",
	}
	if err := s.enrollments.ReplaceForTerm(ctx, studentID, req.Semester, req.AcademicYear, selection.SubjectIDs, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit enrollment")
	}

	if err := s.students.UpdateStatus(ctx, studentID, models.StatusEnrolled); err != nil {
		s.logger.Warn("failed to update enrollment status", zap.Error(err), zap.String("student_id", studentID))
	}

	if err := s.selections.Clear(ctx, studentID, req.Semester, req.AcademicYear); err != nil {
		s.logger.Warn("failed to clear selection after confirm", zap.Error(err), zap.String("student_id", studentID))
	}

	below := fees.TotalUnits < s.fees.MinFullTimeUnits
	s.logger.Info("enrollment confirmed",
		zap.String("student_id", studentID),
		zap.Int("total_units", fees.TotalUnits),
		zap.Float64("assessment", fees.Total),
		zap.Bool("below_minimum_units", below))

	return &models.ConfirmResult{
		EnrolledSubjects:  selection.SubjectIDs,
		TotalUnits:        fees.TotalUnits,
		Fees:              fees,
		BelowMinimumUnits: below,
		PaymentID:         payment.ID,
	}, nil
}

// ListEnrolled returns the committed offerings for the term.
func (s *EnrollmentService) ListEnrolled(ctx context.Context, studentID, semester, academicYear string) ([]models.EnrolledSubject, error) {
	subjects, err := s.enrollments.ListByStudent(ctx, studentID, semester, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolled subjects")
	}
	return subjects, nil
}

func (s *EnrollmentService) loadStudent(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	return student, nil
}

// termCatalog loads the term's full catalog, serving repeat reads from
// Redis while the TTL holds.
func (s *EnrollmentService) termCatalog(ctx context.Context, semester, academicYear string) ([]models.Subject, error) {
	key := fmt.Sprintf("catalog:%s:%s", semester, academicYear)

	var cached []models.Subject
	if s.cache != nil {
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, nil
		} else {
			s.metrics.RecordCacheOperation(false)
			if !errors.Is(err, appErrors.ErrCacheMiss) {
				s.logger.Warn("catalog cache read failed", zap.Error(err))
			}
		}
	}

	catalog, err := s.subjects.List(ctx, models.SubjectFilter{Semester: semester, AcademicYear: academicYear})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, catalog, s.cacheTTL); err != nil {
			s.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}

	return catalog, nil
}

func prerequisitesMet(subject models.Subject, enrolled map[string]struct{}) bool {
	for _, prereq := range subject.Prerequisites {
		if _, ok := enrolled[prereq]; !ok {
			return false
		}
	}
	return true
}
