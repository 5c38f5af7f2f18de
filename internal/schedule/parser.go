// Package schedule parses offering schedule strings into timetable placements.
package schedule

import (
	"regexp"
	"strconv"
	"strings"
)

// Placement is one occupied slot on the weekly grid. Day runs 1 (Monday)
// through 6 (Saturday); hours are decimal, 13.5 meaning 1:30 PM.
type Placement struct {
	Day       int
	StartHour float64
	EndHour   float64
}

// dayCodes is the fixed vocabulary of recognized day-code strings.
var dayCodes = map[string][]int{
	"M":   {1},
	"T":   {2},
	"W":   {3},
	"Th":  {4},
	"F":   {5},
	"MW":  {1, 3},
	"MWF": {1, 3, 5},
	"TTh": {2, 4},
	"Sat": {6},
}

// timePattern matches "9:00-10:30 AM"; the single period applies to both
// endpoints.
var timePattern = regexp.MustCompile(`(\d+):(\d+)-(\d+):(\d+)\s*(AM|PM)`)

// Parse expands a schedule string such as "MWF 9:00-10:00 AM" or
// "TTh 1:00-2:30 PM" into grid placements. Strings with an unrecognized
// day code or malformed time yield no placements and no error.
func Parse(raw string) []Placement {
	parts := strings.SplitN(strings.TrimSpace(raw), " ", 2)
	if len(parts) < 2 {
		return nil
	}

	days, ok := dayCodes[parts[0]]
	if !ok {
		return nil
	}

	m := timePattern.FindStringSubmatch(parts[1])
	if m == nil {
		return nil
	}

	startHour, _ := strconv.Atoi(m[1])
	startMin, _ := strconv.Atoi(m[2])
	endHour, _ := strconv.Atoi(m[3])
	endMin, _ := strconv.Atoi(m[4])
	period := m[5]

	if period == "PM" && startHour != 12 {
		startHour += 12
	}
	if period == "PM" && endHour != 12 {
		endHour += 12
	}
	if period == "AM" && startHour == 12 {
		startHour = 0
	}
	if period == "AM" && endHour == 12 {
		endHour = 0
	}

	start := float64(startHour) + float64(startMin)/60
	end := float64(endHour) + float64(endMin)/60

	placements := make([]Placement, 0, len(days))
	for _, day := range days {
		placements = append(placements, Placement{Day: day, StartHour: start, EndHour: end})
	}

	return placements
}
