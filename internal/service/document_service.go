package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
	appErrors "github.com/valiant-11/psu-enrollment-api/pkg/errors"
	"github.com/valiant-11/psu-enrollment-api/pkg/storage"
)

type documentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	FindByID(ctx context.Context, id string) (*models.Document, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Document, error)
	Delete(ctx context.Context, id string) error
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Delete(filename string) error
	Path(filename string) string
}

// DocumentConfig bounds uploads. BasePath is the route prefix download
// links are issued under, matching where the redeem endpoint is mounted.
type DocumentConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
	BasePath         string
}

// DocumentService manages uploaded requirement files: local storage for
// bytes, a database row for metadata and HMAC-signed tokens for downloads.
type DocumentService struct {
	documents documentStore
	files     fileStorage
	signer    *storage.SignedURLSigner
	config    DocumentConfig
	logger    *zap.Logger
}

// NewDocumentService constructs a DocumentService instance.
func NewDocumentService(documents documentStore, files fileStorage, signer *storage.SignedURLSigner, config DocumentConfig, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{documents: documents, files: files, signer: signer, config: config, logger: logger}
}

// Upload validates and stores one requirement file.
func (s *DocumentService) Upload(ctx context.Context, studentID, name, kind, mimeType string, data []byte) (*models.Document, error) {
	if name == "" || kind == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "document name and kind are required")
	}
	if s.config.MaxFileSizeBytes > 0 && int64(len(data)) > s.config.MaxFileSizeBytes {
		return nil, appErrors.ErrFileTooLarge
	}
	if !s.mimeAllowed(mimeType) {
		return nil, appErrors.ErrUnsupportedMedia
	}

	doc := &models.Document{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Name:      name,
		Kind:      kind,
		MIMEType:  mimeType,
		SizeBytes: int64(len(data)),
	}
	doc.Path = filepath.Join("students", studentID, doc.ID+filepath.Ext(name))

	if _, err := s.files.Save(doc.Path, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		_ = s.files.Delete(doc.Path)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save document record")
	}

	s.logger.Info("document uploaded",
		zap.String("student_id", studentID),
		zap.String("document_id", doc.ID),
		zap.Int64("size_bytes", doc.SizeBytes))

	return doc, nil
}

// List returns the student's uploaded documents.
func (s *DocumentService) List(ctx context.Context, studentID string) ([]models.Document, error) {
	docs, err := s.documents.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return docs, nil
}

// Link issues a time-limited signed download token for one document.
// Documents belong to their uploader only.
func (s *DocumentService) Link(ctx context.Context, studentID, documentID string) (*models.DocumentLink, error) {
	doc, err := s.ownedDocument(ctx, studentID, documentID)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(doc.ID, doc.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}

	return &models.DocumentLink{
		DocumentID: doc.ID,
		URL:        fmt.Sprintf("%s/documents/download?token=%s", strings.TrimRight(s.config.BasePath, "/"), token),
		ExpiresAt:  expiresAt,
	}, nil
}

// Resolve validates a download token and returns the stored file path and
// its metadata.
func (s *DocumentService) Resolve(ctx context.Context, token string) (*models.Document, string, error) {
	documentID, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	doc, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch document")
	}
	if doc.Path != relPath {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "token does not match document")
	}

	return doc, s.files.Path(doc.Path), nil
}

// Delete removes the file and its record.
func (s *DocumentService) Delete(ctx context.Context, studentID, documentID string) error {
	doc, err := s.ownedDocument(ctx, studentID, documentID)
	if err != nil {
		return err
	}

	if err := s.documents.Delete(ctx, doc.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document record")
	}
	if err := s.files.Delete(doc.Path); err != nil {
		s.logger.Warn("failed to delete stored file", zap.Error(err), zap.String("document_id", doc.ID))
	}

	s.logger.Info("document deleted", zap.String("student_id", studentID), zap.String("document_id", doc.ID))
	return nil
}

func (s *DocumentService) ownedDocument(ctx context.Context, studentID, documentID string) (*models.Document, error) {
	doc, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch document")
	}
	if doc.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "document belongs to another student")
	}
	return doc, nil
}

func (s *DocumentService) mimeAllowed(mimeType string) bool {
	if len(s.config.AllowedMIMEs) == 0 {
		return true
	}
	for _, allowed := range s.config.AllowedMIMEs {
		if strings.EqualFold(allowed, mimeType) {
			return true
		}
	}
	return false
}
