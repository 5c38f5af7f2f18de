package service

import (
	"github.com/valiant-11/psu-enrollment-api/internal/models"
)

// FeeSchedule holds the institutional rates applied to every assessment.
type FeeSchedule struct {
	TuitionPerUnit   float64
	LabFeePerMajor   float64
	MinFullTimeUnits int
	MaxSemesterUnits int
}

// miscItems is the fixed miscellaneous fee block charged once per term.
var miscItems = []models.FeeItem{
	{Name: "Library Fee", Amount: 500},
	{Name: "Computer Laboratory Fee", Amount: 1500},
	{Name: "ID Fee", Amount: 150},
	{Name: "Registration Fee", Amount: 300},
	{Name: "Athletic Fee", Amount: 200},
	{Name: "Cultural Fee", Amount: 150},
}

// Breakdown itemizes the charges for a subject load. Tuition scales with
// units, the misc block is flat, and each Major-type subject adds one
// laboratory fee.
func (f FeeSchedule) Breakdown(subjects []models.Subject) models.FeeBreakdown {
	breakdown := models.FeeBreakdown{
		TuitionPerUnit: f.TuitionPerUnit,
		Miscellaneous:  make([]models.FeeItem, len(miscItems)),
		Laboratory:     []models.FeeItem{},
	}
	copy(breakdown.Miscellaneous, miscItems)

	for _, subject := range subjects {
		breakdown.TotalUnits += subject.Units
		if subject.Type == models.SubjectMajor {
			breakdown.Laboratory = append(breakdown.Laboratory, models.FeeItem{
				Name:   "Laboratory Fee (" + subject.Code + ")",
				Amount: f.LabFeePerMajor,
			})
			breakdown.LabTotal += f.LabFeePerMajor
		}
	}

	breakdown.Tuition = float64(breakdown.TotalUnits) * f.TuitionPerUnit
	for _, item := range breakdown.Miscellaneous {
		breakdown.MiscTotal += item.Amount
	}
	breakdown.Total = breakdown.Tuition + breakdown.MiscTotal + breakdown.LabTotal

	return breakdown
}
