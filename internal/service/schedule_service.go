package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
	"github.com/valiant-11/psu-enrollment-api/internal/schedule"
	appErrors "github.com/valiant-11/psu-enrollment-api/pkg/errors"
)

// ScheduleService expands enrolled offerings into weekly timetable blocks.
type ScheduleService struct {
	enrollments enrolledSubjectLister
	logger      *zap.Logger
}

// NewScheduleService constructs a ScheduleService instance.
func NewScheduleService(enrollments enrolledSubjectLister, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{enrollments: enrollments, logger: logger}
}

// WeeklySchedule builds grid placements for every enrolled offering.
// Offerings whose schedule string does not parse simply contribute no
// blocks; they still appear in the subject list.
func (s *ScheduleService) WeeklySchedule(ctx context.Context, studentID, semester, academicYear string) (*models.WeeklySchedule, error) {
	enrolled, err := s.enrollments.ListByStudent(ctx, studentID, semester, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolled subjects")
	}

	result := &models.WeeklySchedule{
		Blocks:   []models.ScheduleBlock{},
		Subjects: make([]models.Subject, 0, len(enrolled)),
	}

	for _, item := range enrolled {
		result.Subjects = append(result.Subjects, item.Subject)

		placements := schedule.Parse(item.Schedule)
		if len(placements) == 0 && item.Schedule != "" {
			s.logger.Debug("unparseable schedule string",
				zap.String("subject_id", item.ID),
				zap.String("schedule", item.Schedule))
		}
		for _, placement := range placements {
			result.Blocks = append(result.Blocks, models.ScheduleBlock{
				SubjectID:   item.ID,
				Code:        item.Code,
				Description: item.Description,
				Instructor:  item.Instructor,
				Room:        item.Room,
				Type:        item.Type,
				Day:         placement.Day,
				StartHour:   placement.StartHour,
				EndHour:     placement.EndHour,
			})
		}
	}

	return result, nil
}
