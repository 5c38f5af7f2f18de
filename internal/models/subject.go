package models

import (
	"time"

	"github.com/lib/pq"
)

// SubjectType classifies an offering pedagogically.
type SubjectType string

const (
	SubjectGeneralEducation SubjectType = "GE"
	SubjectCore             SubjectType = "Core"
	SubjectMajor            SubjectType = "Major"
)

// Subject is one scheduled offering of a subject for a term.
type Subject struct {
	ID            string         `db:"id" json:"id"`
	Code          string         `db:"code" json:"code"`
	Description   string         `db:"description" json:"description"`
	Units         int            `db:"units" json:"units"`
	Schedule      string         `db:"schedule" json:"schedule"`
	Room          string         `db:"room" json:"room"`
	Instructor    string         `db:"instructor" json:"instructor"`
	Type          SubjectType    `db:"type" json:"type"`
	College       string         `db:"college" json:"college"`
	Course        string         `db:"course" json:"course"`
	YearLevel     int            `db:"year_level" json:"year_level"`
	Semester      string         `db:"semester" json:"semester"`
	AcademicYear  string         `db:"academic_year" json:"academic_year"`
	SlotsFilled   int            `db:"slots_filled" json:"slots_filled"`
	SlotsMax      int            `db:"slots_max" json:"slots_max"`
	Prerequisites pq.StringArray `db:"prerequisites" json:"prerequisites"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// Full reports whether the offering has no remaining slots.
func (s Subject) Full() bool {
	return s.SlotsMax > 0 && s.SlotsFilled >= s.SlotsMax
}

// SubjectFilter captures catalog search criteria.
type SubjectFilter struct {
	Semester     string
	AcademicYear string
	College      string
	Course       string
	YearLevel    int
}

// EligibleSubject decorates an offering with display flags computed per student.
type EligibleSubject struct {
	Subject
	CrossEnrollment bool `json:"cross_enrollment"`
	Selected        bool `json:"selected"`
}
