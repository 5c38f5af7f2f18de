package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
	appErrors "github.com/valiant-11/psu-enrollment-api/pkg/errors"
)

type mockAuthStudentRepo struct {
	students []*models.Student
}

func (m *mockAuthStudentRepo) Create(ctx context.Context, student *models.Student) error {
	student.ID = "stu-new"
	m.students = append(m.students, student)
	return nil
}

func (m *mockAuthStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	for _, s := range m.students {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthStudentRepo) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	for _, s := range m.students {
		if s.Email == email || s.PersonalEmail == email {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthStudentRepo) FindByStudentNumber(ctx context.Context, number string) (*models.Student, error) {
	for _, s := range m.students {
		if s.StudentNumber == number {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockOTPStore struct {
	hashes map[string]string
}

func (m *mockOTPStore) Save(ctx context.Context, email, codeHash string, ttl time.Duration) error {
	if m.hashes == nil {
		m.hashes = make(map[string]string)
	}
	m.hashes[email] = codeHash
	return nil
}

func (m *mockOTPStore) Consume(ctx context.Context, email string) (string, error) {
	hash, ok := m.hashes[email]
	if !ok {
		return "", appErrors.Clone(appErrors.ErrInvalidOTP, "")
	}
	delete(m.hashes, email)
	return hash, nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "psu-enrollment-api",
		OTPTTL:      5 * time.Minute,
		OTPDigits:   6,
		EchoCode:    true,
		EmailDomain: "psu.palawan.edu.ph",
	}
}

func newAuthService(students *mockAuthStudentRepo, otps *mockOTPStore) *AuthService {
	return NewAuthService(students, otps, validator.New(), zap.NewNop(), testAuthConfig())
}

func validRegistration() models.RegisterRequest {
	return models.RegisterRequest{
		StudentNumber: "2021-00123",
		FullName:      "Juan Dela Cruz",
		PersonalEmail: "juan@example.com",
		College:       "CS",
		Course:        "BSCS",
		YearLevel:     2,
	}
}

func TestRegisterDerivesInstitutionalEmail(t *testing.T) {
	students := &mockAuthStudentRepo{}
	svc := newAuthService(students, &mockOTPStore{})

	student, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	assert.Equal(t, "2021-00123@psu.palawan.edu.ph", student.Email)
	assert.Equal(t, models.StatusRegistered, student.Status)
}

func TestRegisterRejectsDuplicateStudentNumber(t *testing.T) {
	students := &mockAuthStudentRepo{students: []*models.Student{
		{ID: "stu-1", StudentNumber: "2021-00123", Email: "2021-00123@psu.palawan.edu.ph"},
	}}
	svc := newAuthService(students, &mockOTPStore{})

	_, err := svc.Register(context.Background(), validRegistration())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	students := &mockAuthStudentRepo{students: []*models.Student{
		{ID: "stu-1", StudentNumber: "2019-00001", PersonalEmail: "juan@example.com"},
	}}
	svc := newAuthService(students, &mockOTPStore{})

	_, err := svc.Register(context.Background(), validRegistration())
	require.Error(t, err)
}

func TestOTPRoundTripIssuesToken(t *testing.T) {
	students := &mockAuthStudentRepo{}
	svc := newAuthService(students, &mockOTPStore{})

	student, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	issued, err := svc.RequestOTP(context.Background(), models.OTPRequest{Email: student.Email})
	require.NoError(t, err)
	require.NotEmpty(t, issued.DebugCode, "code is echoed when enabled")
	assert.Len(t, issued.DebugCode, 6)

	login, err := svc.VerifyOTP(context.Background(), models.OTPVerifyRequest{Email: student.Email, Code: issued.DebugCode})
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)
	assert.Equal(t, student.ID, login.Student.ID)

	claims, err := svc.ValidateToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, student.ID, claims.StudentID)
	assert.Equal(t, "2021-00123", claims.StudentNumber)
}

func TestVerifyOTPRejectsWrongCode(t *testing.T) {
	students := &mockAuthStudentRepo{}
	otps := &mockOTPStore{}
	svc := newAuthService(students, otps)

	student, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	_, err = svc.RequestOTP(context.Background(), models.OTPRequest{Email: student.Email})
	require.NoError(t, err)

	_, err = svc.VerifyOTP(context.Background(), models.OTPVerifyRequest{Email: student.Email, Code: "000000"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidOTP.Code, appErr.Code)

	assert.Empty(t, otps.hashes, "a failed comparison burns the stored hash")
}

func TestVerifyOTPIsSingleUse(t *testing.T) {
	students := &mockAuthStudentRepo{}
	svc := newAuthService(students, &mockOTPStore{})

	student, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	issued, err := svc.RequestOTP(context.Background(), models.OTPRequest{Email: student.Email})
	require.NoError(t, err)

	_, err = svc.VerifyOTP(context.Background(), models.OTPVerifyRequest{Email: student.Email, Code: issued.DebugCode})
	require.NoError(t, err)

	_, err = svc.VerifyOTP(context.Background(), models.OTPVerifyRequest{Email: student.Email, Code: issued.DebugCode})
	require.Error(t, err)
}

func TestRequestOTPRejectsUnknownEmail(t *testing.T) {
	svc := newAuthService(&mockAuthStudentRepo{}, &mockOTPStore{})

	_, err := svc.RequestOTP(context.Background(), models.OTPRequest{Email: "nobody@psu.palawan.edu.ph"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	students := &mockAuthStudentRepo{}
	svc := newAuthService(students, &mockOTPStore{})

	student, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	issued, err := svc.RequestOTP(context.Background(), models.OTPRequest{Email: student.Email})
	require.NoError(t, err)
	login, err := svc.VerifyOTP(context.Background(), models.OTPVerifyRequest{Email: student.Email, Code: issued.DebugCode})
	require.NoError(t, err)

	other := testAuthConfig()
	other.TokenSecret = "another-secret"
	otherSvc := NewAuthService(students, &mockOTPStore{}, validator.New(), zap.NewNop(), other)

	_, err = otherSvc.ValidateToken(login.AccessToken)
	require.Error(t, err)
}
