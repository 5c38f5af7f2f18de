package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest creates a new student account. The institutional email is
// derived from the student number, never supplied by the caller.
type RegisterRequest struct {
	StudentNumber  string `json:"student_number" validate:"required,max=20"`
	FullName       string `json:"full_name" validate:"required,max=120"`
	PersonalEmail  string `json:"personal_email" validate:"required,email"`
	BirthDate      string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Sex            string `json:"sex" validate:"omitempty,oneof=male female"`
	Address        string `json:"address" validate:"omitempty,max=255"`
	Phone          string `json:"phone" validate:"omitempty,max=20"`
	College        string `json:"college" validate:"required"`
	Course         string `json:"course" validate:"required"`
	YearLevel      int    `json:"year_level" validate:"required,min=1,max=6"`
	LastSchool     string `json:"last_school" validate:"omitempty,max=120"`
	Strand         string `json:"strand" validate:"omitempty,max=60"`
	GraduationYear string `json:"graduation_year" validate:"omitempty,len=4"`
}

// OTPRequest asks for a one-time code to be issued for the given email.
type OTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// OTPRequestResponse acknowledges code issuance. DebugCode carries the code
// only when echoing is enabled outside production; the handler surfaces it
// through the envelope meta, never the data payload.
type OTPRequestResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	DebugCode string    `json:"-"`
}

// OTPVerifyRequest exchanges a one-time code for an access token.
type OTPVerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,numeric"`
}

// LoginResponse returns the issued token and student info.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   int64       `json:"expires_in"`
	Student     StudentInfo `json:"student"`
	IssuedAt    time.Time   `json:"issued_at"`
}

// StudentInfo describes the authenticated student in responses.
type StudentInfo struct {
	ID            string `json:"id"`
	StudentNumber string `json:"student_number"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	Course        string `json:"course"`
	YearLevel     int    `json:"year_level"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	StudentID     string `json:"student_id"`
	StudentNumber string `json:"student_number"`
	Email         string `json:"email"`
	jwt.RegisteredClaims
}
