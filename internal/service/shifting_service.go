package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
	appErrors "github.com/valiant-11/psu-enrollment-api/pkg/errors"
)

type shiftingStore interface {
	Create(ctx context.Context, request *models.ShiftingRequest) error
	FindByStudent(ctx context.Context, studentID string) (*models.ShiftingRequest, error)
	UpdateStatus(ctx context.Context, id string, status models.ShiftStatus, resolvedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

type shiftingStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdateCourse(ctx context.Context, id, course string) error
}

type courseLookup interface {
	FindByCode(ctx context.Context, code string) (*models.Course, error)
}

// ShiftingService runs the course-shift request state machine:
// none -> pending -> approved|rejected -> none. Transitions are always
// caller driven, there are no timers.
type ShiftingService struct {
	requests  shiftingStore
	students  shiftingStudentRepository
	courses   courseLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewShiftingService constructs a ShiftingService instance.
func NewShiftingService(requests shiftingStore, students shiftingStudentRepository, courses courseLookup, validate *validator.Validate, logger *zap.Logger) *ShiftingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ShiftingService{requests: requests, students: students, courses: courses, validator: validate, logger: logger}
}

// Current returns the student's live request, or nil if none exists.
func (s *ShiftingService) Current(ctx context.Context, studentID string) (*models.ShiftingRequest, error) {
	request, err := s.requests.FindByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch shifting request")
	}
	return request, nil
}

// Submit opens a pending request. Only one live request may exist, the
// target must differ from the current course, and both the reason and the
// performance note are required.
func (s *ShiftingService) Submit(ctx context.Context, studentID string, req models.SubmitShiftRequest) (*models.ShiftingRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shifting payload")
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	if req.ToCourse == student.Course {
		return nil, appErrors.Clone(appErrors.ErrValidation, "target course matches the current course")
	}

	if _, err := s.courses.FindByCode(ctx, req.ToCourse); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "target course does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check target course")
	}

	if existing, err := s.requests.FindByStudent(ctx, studentID); err == nil && existing != nil {
		return nil, appErrors.ErrPendingShift
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing request")
	}

	request := &models.ShiftingRequest{
		StudentID:       studentID,
		FromCourse:      student.Course,
		ToCourse:        req.ToCourse,
		Reason:          req.Reason,
		PerformanceNote: req.PerformanceNote,
		Status:          models.ShiftPending,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create shifting request")
	}

	s.logger.Info("shifting request submitted",
		zap.String("student_id", studentID),
		zap.String("from", request.FromCourse),
		zap.String("to", request.ToCourse))

	return request, nil
}

// Approve resolves a pending request and moves the student to the target
// course. Nothing else on the student record changes.
func (s *ShiftingService) Approve(ctx context.Context, studentID string) (*models.ShiftingRequest, error) {
	return s.resolve(ctx, studentID, models.ShiftApproved)
}

// Reject resolves a pending request without touching the student record.
func (s *ShiftingService) Reject(ctx context.Context, studentID string) (*models.ShiftingRequest, error) {
	return s.resolve(ctx, studentID, models.ShiftRejected)
}

// Cancel discards the live request from any state, returning to none.
func (s *ShiftingService) Cancel(ctx context.Context, studentID string) error {
	request, err := s.requests.FindByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "no shifting request to cancel")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch shifting request")
	}

	if err := s.requests.Delete(ctx, request.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete shifting request")
	}

	s.logger.Info("shifting request cancelled", zap.String("student_id", studentID))
	return nil
}

func (s *ShiftingService) resolve(ctx context.Context, studentID string, status models.ShiftStatus) (*models.ShiftingRequest, error) {
	request, err := s.requests.FindByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no shifting request found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch shifting request")
	}

	if request.Status != models.ShiftPending {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "request is not pending")
	}

	now := time.Now().UTC()
	if err := s.requests.UpdateStatus(ctx, request.ID, status, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request status")
	}

	if status == models.ShiftApproved {
		if err := s.students.UpdateCourse(ctx, studentID, request.ToCourse); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student course")
		}
	}

	request.Status = status
	request.ResolvedAt = &now

	s.logger.Info("shifting request resolved",
		zap.String("student_id", studentID),
		zap.String("status", string(status)))

	return request, nil
}
