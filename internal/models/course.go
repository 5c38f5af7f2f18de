package models

// Course is a degree program offered by a college.
type Course struct {
	ID      string `db:"id" json:"id"`
	Code    string `db:"code" json:"code"`
	Name    string `db:"name" json:"name"`
	College string `db:"college" json:"college"`
	Years   int    `db:"years" json:"years"`
}
