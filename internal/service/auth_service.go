package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
	appErrors "github.com/valiant-11/psu-enrollment-api/pkg/errors"
)

type authStudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	FindByStudentNumber(ctx context.Context, number string) (*models.Student, error)
}

type otpStore interface {
	Save(ctx context.Context, email, codeHash string, ttl time.Duration) error
	Consume(ctx context.Context, email string) (string, error)
}

// AuthConfig defines configuration for the OTP login flow.
type AuthConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string
	OTPTTL      time.Duration
	OTPDigits   int
	EchoCode    bool
	EmailDomain string
}

// AuthService provides registration and passwordless login use cases.
type AuthService struct {
	students  authStudentRepository
	otps      otpStore
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(students authStudentRepository, otps otpStore, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.OTPDigits <= 0 {
		config.OTPDigits = 6
	}
	return &AuthService{students: students, otps: otps, validator: validate, logger: logger, config: config}
}

// Register creates a student account. The institutional email is derived
// from the student number and the configured domain.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	if _, err := s.students.FindByStudentNumber(ctx, req.StudentNumber); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student number is already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student number")
	}

	if _, err := s.students.FindByEmail(ctx, req.PersonalEmail); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email is already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	student := &models.Student{
		StudentNumber:  req.StudentNumber,
		Email:          fmt.Sprintf("%s@%s", req.StudentNumber, s.config.EmailDomain),
		PersonalEmail:  req.PersonalEmail,
		FullName:       req.FullName,
		Sex:            req.Sex,
		Address:        req.Address,
		Phone:          req.Phone,
		College:        req.College,
		Course:         req.Course,
		YearLevel:      req.YearLevel,
		LastSchool:     req.LastSchool,
		Strand:         req.Strand,
		GraduationYear: req.GraduationYear,
		Status:         models.StatusRegistered,
	}
	if req.BirthDate != "" {
		birthDate, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid birth date")
		}
		student.BirthDate = &birthDate
	}

	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.logger.Info("student registered",
		zap.String("student_id", student.ID),
		zap.String("student_number", student.StudentNumber))

	return student, nil
}

// RequestOTP issues a one-time login code for the given email. Only the
// bcrypt hash of the code is stored; the plain code leaves the process
// solely through the mail channel, or the response when echoing is on.
func (s *AuthService) RequestOTP(ctx context.Context, req models.OTPRequest) (*models.OTPRequestResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid otp request payload")
	}

	student, err := s.students.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no account matches this email")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	code, err := s.generateCode()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate code")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash code")
	}

	if err := s.otps.Save(ctx, student.Email, string(hash), s.config.OTPTTL); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store code")
	}

	s.logger.Info("otp issued", zap.String("student_id", student.ID))

	resp := &models.OTPRequestResponse{
		Email:     student.Email,
		ExpiresAt: time.Now().UTC().Add(s.config.OTPTTL),
	}
	if s.config.EchoCode {
		resp.DebugCode = code
	}
	return resp, nil
}

// VerifyOTP exchanges a valid code for an access token. Codes are single
// use; a failed comparison burns the stored hash as well.
func (s *AuthService) VerifyOTP(ctx context.Context, req models.OTPVerifyRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid otp verify payload")
	}

	student, err := s.students.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidOTP, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	hash, err := s.otps.Consume(ctx, student.Email)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load code")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Code)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidOTP, "")
	}

	accessToken, err := s.generateAccessToken(student)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("student logged in", zap.String("student_id", student.ID))

	return &models.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.config.TokenExpiry.Seconds()),
		IssuedAt:    time.Now().UTC(),
		Student: models.StudentInfo{
			ID:            student.ID,
			StudentNumber: student.StudentNumber,
			Email:         student.Email,
			FullName:      student.FullName,
			Course:        student.Course,
			YearLevel:     student.YearLevel,
		},
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken(student *models.Student) (string, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.TokenExpiry)
	claims := &models.JWTClaims{
		StudentID:     student.ID,
		StudentNumber: student.StudentNumber,
		Email:         student.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   student.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.TokenSecret))
}

func (s *AuthService) generateCode() (string, error) {
	max := big.NewInt(10)
	code := make([]byte, s.config.OTPDigits)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}
