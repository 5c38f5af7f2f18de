package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
	appErrors "github.com/valiant-11/psu-enrollment-api/pkg/errors"
)

type mockCourseStore struct {
	courses []models.Course
	calls   int
}

func (m *mockCourseStore) List(ctx context.Context, college string) ([]models.Course, error) {
	m.calls++
	if college == "" {
		return m.courses, nil
	}
	var out []models.Course
	for _, c := range m.courses {
		if c.College == college {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockCatalogCache struct {
	entries map[string][]byte
}

func (m *mockCatalogCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCatalogCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = raw
	return nil
}

func testCourses() *mockCourseStore {
	return &mockCourseStore{courses: []models.Course{
		{ID: "crs-1", Code: "BSCS", Name: "BS Computer Science", College: "CS", Years: 4},
		{ID: "crs-2", Code: "BSN", Name: "BS Nursing", College: "CHS", Years: 4},
	}}
}

func TestCourseListServesRepeatReadsFromCache(t *testing.T) {
	store := testCourses()
	svc := NewCourseService(store, &mockCatalogCache{}, time.Minute, nil, zap.NewNop())

	first, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	second, err := svc.List(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, store.calls, "second read must come from the cache")
	assert.Equal(t, first, second)
}

func TestCourseListFiltersByCollege(t *testing.T) {
	svc := NewCourseService(testCourses(), nil, time.Minute, nil, zap.NewNop())

	courses, err := svc.List(context.Background(), "CHS")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "BSN", courses[0].Code)
}

func TestCourseListRecordsCacheHitAndMiss(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCourseService(testCourses(), &mockCatalogCache{}, time.Minute, metrics, zap.NewNop())

	_, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	_, err = svc.List(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, 0.5, testutil.ToFloat64(metrics.cacheHitRatio))
}
