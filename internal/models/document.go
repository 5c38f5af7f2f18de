package models

import "time"

// Document is an uploaded requirement file (form 138, good moral, etc.).
type Document struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	Name       string    `db:"name" json:"name"`
	Kind       string    `db:"kind" json:"kind"`
	MIMEType   string    `db:"mime_type" json:"mime_type"`
	SizeBytes  int64     `db:"size_bytes" json:"size_bytes"`
	Path       string    `db:"path" json:"-"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// DocumentLink is a time-limited download reference.
type DocumentLink struct {
	DocumentID string    `json:"document_id"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
}
