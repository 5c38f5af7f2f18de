package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
	appErrors "github.com/valiant-11/psu-enrollment-api/pkg/errors"
)

type courseStore interface {
	List(ctx context.Context, college string) ([]models.Course, error)
}

// CourseService reads the degree program reference list, cached in Redis
// since it changes at most once per term.
type CourseService struct {
	courses  courseStore
	cache    catalogCache
	cacheTTL time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(courses courseStore, cache catalogCache, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, cache: cache, cacheTTL: cacheTTL, metrics: metrics, logger: logger}
}

// List returns programs, optionally filtered by college.
func (s *CourseService) List(ctx context.Context, college string) ([]models.Course, error) {
	key := "courses:" + college
	if college == "" {
		key = "courses:all"
	}

	var cached []models.Course
	if s.cache != nil {
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, nil
		} else {
			s.metrics.RecordCacheOperation(false)
			if !errors.Is(err, appErrors.ErrCacheMiss) {
				s.logger.Warn("course cache read failed", zap.Error(err))
			}
		}
	}

	courses, err := s.courses.List(ctx, college)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, courses, s.cacheTTL); err != nil {
			s.logger.Warn("course cache write failed", zap.Error(err))
		}
	}

	return courses, nil
}
