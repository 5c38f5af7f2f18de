package models

// Grade is one final rating for a completed subject.
type Grade struct {
	ID           string  `db:"id" json:"id"`
	StudentID    string  `db:"student_id" json:"student_id"`
	SubjectCode  string  `db:"subject_code" json:"subject_code"`
	SubjectName  string  `db:"subject_name" json:"subject_name"`
	Units        int     `db:"units" json:"units"`
	Grade        float64 `db:"grade" json:"grade"`
	Remarks      string  `db:"remarks" json:"remarks"`
	Semester     string  `db:"semester" json:"semester"`
	AcademicYear string  `db:"academic_year" json:"academic_year"`
}

// GradeReport lists grades for a term with the weighted average.
type GradeReport struct {
	Grades     []Grade `json:"grades"`
	TotalUnits int     `json:"total_units"`
	GWA        float64 `json:"gwa"`
}
