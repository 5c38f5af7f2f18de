package models

import "time"

// EnrollmentStatus describes where a student stands in the enrollment cycle.
type EnrollmentStatus string

const (
	StatusRegistered EnrollmentStatus = "registered"
	StatusEnrolled   EnrollmentStatus = "enrolled"
)

// Student represents a learner registered in the institution.
type Student struct {
	ID             string           `db:"id" json:"id"`
	StudentNumber  string           `db:"student_number" json:"student_number"`
	Email          string           `db:"email" json:"email"`
	PersonalEmail  string           `db:"personal_email" json:"personal_email"`
	FullName       string           `db:"full_name" json:"full_name"`
	BirthDate      *time.Time       `db:"birth_date" json:"birth_date,omitempty"`
	Sex            string           `db:"sex" json:"sex"`
	Address        string           `db:"address" json:"address"`
	Phone          string           `db:"phone" json:"phone"`
	College        string           `db:"college" json:"college"`
	Course         string           `db:"course" json:"course"`
	YearLevel      int              `db:"year_level" json:"year_level"`
	Semester       string           `db:"semester" json:"semester"`
	AcademicYear   string           `db:"academic_year" json:"academic_year"`
	LastSchool     string           `db:"last_school" json:"last_school"`
	Strand         string           `db:"strand" json:"strand"`
	GraduationYear string           `db:"graduation_year" json:"graduation_year"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// ProfileUpdateRequest carries the contact fields a student may edit.
// Academic placement and identity fields stay read-only.
type ProfileUpdateRequest struct {
	PersonalEmail string `json:"personal_email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"omitempty,max=20"`
	Address       string `json:"address" validate:"omitempty,max=255"`
}
