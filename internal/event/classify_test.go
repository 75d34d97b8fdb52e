package event

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"avevents/internal/domain"
)

func TestClassify_Derived(t *testing.T) {
	tests := []struct {
		name string
		rec  domain.EventRecord
		want domain.Category
	}{
		{"concrete date", domain.EventRecord{Date: "November 14, 2025"}, domain.DateSpecific},
		{"date and day", domain.EventRecord{Date: "November 14, 2025", Day: "Friday"}, domain.DateSpecific},
		{"weekday only", domain.EventRecord{Day: "Monday"}, domain.Weekly},
		{"weekday list", domain.EventRecord{Day: "Monday, Wednesday"}, domain.Weekly},
		{"placeholder date falls through", domain.EventRecord{Date: "upcoming", Day: "Tuesday"}, domain.Weekly},
		{"n/a date no day", domain.EventRecord{Date: "N/A"}, domain.DailyAppointment},
		{"nothing at all", domain.EventRecord{}, domain.DailyAppointment},
		{"day that is not a weekday", domain.EventRecord{Day: "full moon days"}, domain.DailyAppointment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.rec))
		})
	}
}

// An explicit category from the source wins over the derived one.
func TestClassify_HintOverrides(t *testing.T) {
	tests := []struct {
		name string
		rec  domain.EventRecord
		want domain.Category
	}{
		{"weekly hint beats date", domain.EventRecord{CategoryHint: "Weekly class", Date: "November 14, 2025"}, domain.Weekly},
		{"appointment hint", domain.EventRecord{CategoryHint: "By appointment", Day: "Monday"}, domain.DailyAppointment},
		{"everyday hint", domain.EventRecord{CategoryHint: "everyday"}, domain.DailyAppointment},
		{"date hint", domain.EventRecord{CategoryHint: "date-specific"}, domain.DateSpecific},
		{"unrecognized hint ignored", domain.EventRecord{CategoryHint: "special", Day: "Sunday"}, domain.Weekly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.rec))
		})
	}
}
