package models

// ScheduleBlock is one placement on the weekly timetable grid.
// Day is 1 (Monday) through 6 (Saturday); hours are decimal, so 10.5
// means 10:30.
type ScheduleBlock struct {
	SubjectID   string      `json:"subject_id"`
	Code        string      `json:"code"`
	Description string      `json:"description"`
	Instructor  string      `json:"instructor"`
	Room        string      `json:"room"`
	Type        SubjectType `json:"type"`
	Day         int         `json:"day"`
	StartHour   float64     `json:"start_hour"`
	EndHour     float64     `json:"end_hour"`
}

// WeeklySchedule groups placements with the raw offerings they came from.
type WeeklySchedule struct {
	Blocks   []ScheduleBlock `json:"blocks"`
	Subjects []Subject       `json:"subjects"`
}
