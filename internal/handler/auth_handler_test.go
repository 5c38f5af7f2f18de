package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
	"github.com/valiant-11/psu-enrollment-api/internal/service"
)

type stubStudentRepo struct {
	student *models.Student
}

func (s *stubStudentRepo) Create(ctx context.Context, student *models.Student) error {
	return nil
}

func (s *stubStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s.student != nil && s.student.ID == id {
		return s.student, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubStudentRepo) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	if s.student != nil && (s.student.Email == email || s.student.PersonalEmail == email) {
		return s.student, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubStudentRepo) FindByStudentNumber(ctx context.Context, number string) (*models.Student, error) {
	if s.student != nil && s.student.StudentNumber == number {
		return s.student, nil
	}
	return nil, sql.ErrNoRows
}

type stubOTPStore struct {
	hashes map[string]string
}

func (s *stubOTPStore) Save(ctx context.Context, email, codeHash string, ttl time.Duration) error {
	if s.hashes == nil {
		s.hashes = make(map[string]string)
	}
	s.hashes[email] = codeHash
	return nil
}

func (s *stubOTPStore) Consume(ctx context.Context, email string) (string, error) {
	hash, ok := s.hashes[email]
	if !ok {
		return "", sql.ErrNoRows
	}
	delete(s.hashes, email)
	return hash, nil
}

func newOTPTestRouter(echoCode bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewAuthService(
		&stubStudentRepo{student: &models.Student{
			ID:            "stu-1",
			StudentNumber: "2021-00123",
			Email:         "2021-00123@psu.palawan.edu.ph",
		}},
		&stubOTPStore{},
		nil, nil,
		service.AuthConfig{
			TokenSecret: "test-secret",
			TokenExpiry: time.Hour,
			OTPTTL:      5 * time.Minute,
			OTPDigits:   6,
			EchoCode:    echoCode,
		},
	)
	h := NewAuthHandler(svc)

	r := gin.New()
	r.POST("/auth/otp/request", h.RequestOTP)
	return r
}

func requestOTPEnvelope(t *testing.T, r *gin.Engine) (map[string]interface{}, map[string]interface{}) {
	t.Helper()
	body := strings.NewReader(`{"email":"2021-00123@psu.palawan.edu.ph"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/otp/request", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data map[string]interface{} `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data, envelope.Meta
}

func TestRequestOTPEchoesCodeThroughMeta(t *testing.T) {
	data, meta := requestOTPEnvelope(t, newOTPTestRouter(true))

	assert.NotContains(t, data, "debug_code", "data payload must stay free of the demo code")
	require.Contains(t, meta, "debug_code")
	code, ok := meta["debug_code"].(string)
	require.True(t, ok)
	assert.Len(t, code, 6)
}

func TestRequestOTPOmitsMetaWhenEchoDisabled(t *testing.T) {
	_, meta := requestOTPEnvelope(t, newOTPTestRouter(false))
	assert.Nil(t, meta)
}
