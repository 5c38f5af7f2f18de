package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
)

// selectionTTL bounds how long an unconfirmed candidate set survives.
const selectionTTL = 24 * time.Hour

// SelectionRepository keeps the candidate subject set in Redis so toggles
// survive reloads without touching the enrollment table.
type SelectionRepository struct {
	client *redis.Client
}

// NewSelectionRepository constructs the repository.
func NewSelectionRepository(client *redis.Client) *SelectionRepository {
	return &SelectionRepository{client: client}
}

func selectionKey(studentID, semester, academicYear string) string {
	return fmt.Sprintf("enrollment:selection:%s:%s:%s", studentID, semester, academicYear)
}

// Get returns the current selection, or an empty one if none is stored.
func (r *SelectionRepository) Get(ctx context.Context, studentID, semester, academicYear string) (*models.Selection, error) {
	raw, err := r.client.Get(ctx, selectionKey(studentID, semester, academicYear)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return &models.Selection{
				StudentID:    studentID,
				Semester:     semester,
				AcademicYear: academicYear,
				SubjectIDs:   []string{},
			}, nil
		}
		return nil, fmt.Errorf("get selection: %w", err)
	}

	var selection models.Selection
	if err := json.Unmarshal(raw, &selection); err != nil {
		return nil, fmt.Errorf("unmarshal selection: %w", err)
	}
	return &selection, nil
}

// Save stores the selection, refreshing its TTL.
func (r *SelectionRepository) Save(ctx context.Context, selection *models.Selection) error {
	selection.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(selection)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}
	key := selectionKey(selection.StudentID, selection.Semester, selection.AcademicYear)
	if err := r.client.Set(ctx, key, payload, selectionTTL).Err(); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}
	return nil
}

// Clear drops the selection, used after confirm or an explicit reset.
func (r *SelectionRepository) Clear(ctx context.Context, studentID, semester, academicYear string) error {
	if err := r.client.Del(ctx, selectionKey(studentID, semester, academicYear)).Err(); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	return nil
}
