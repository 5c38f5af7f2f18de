package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseExpandsCompositeDayCodes(t *testing.T) {
	placements := Parse("MWF 9:00-10:00 AM")

	assert.Equal(t, []Placement{
		{Day: 1, StartHour: 9, EndHour: 10},
		{Day: 3, StartHour: 9, EndHour: 10},
		{Day: 5, StartHour: 9, EndHour: 10},
	}, placements)
}

func TestParseAppliesPeriodToBothEndpoints(t *testing.T) {
	placements := Parse("TTh 1:00-2:30 PM")

	assert.Equal(t, []Placement{
		{Day: 2, StartHour: 13, EndHour: 14.5},
		{Day: 4, StartHour: 13, EndHour: 14.5},
	}, placements)
}

func TestParseNoonIsNotShifted(t *testing.T) {
	placements := Parse("F 12:00-1:00 PM")

	assert.Equal(t, []Placement{{Day: 5, StartHour: 12, EndHour: 13}}, placements)
}

func TestParseMidnightWrapsToZero(t *testing.T) {
	placements := Parse("M 12:00-1:30 AM")

	assert.Equal(t, []Placement{{Day: 1, StartHour: 0, EndHour: 1.5}}, placements)
}

func TestParseSaturday(t *testing.T) {
	placements := Parse("Sat 8:00-11:00 AM")

	assert.Equal(t, []Placement{{Day: 6, StartHour: 8, EndHour: 11}}, placements)
}

func TestParseUnknownDayCodeYieldsNothing(t *testing.T) {
	assert.Empty(t, Parse("MTWThF 9:00-10:00 AM"))
	assert.Empty(t, Parse("Sun 9:00-10:00 AM"))
}

func TestParseMalformedInputYieldsNothing(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("MWF"))
	assert.Empty(t, Parse("MWF nine to ten"))
	assert.Empty(t, Parse("MWF 9:00-10:00"))
}
