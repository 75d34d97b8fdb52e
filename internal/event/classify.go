// Package event holds the in-memory transformation pipeline applied to
// retrieved event records: classification, deduplication, past-event
// exclusion and chronological grouping.
package event

import (
	"strings"

	"avevents/internal/domain"
)

// datePlaceholders are date values that mean "no date known".
var datePlaceholders = map[string]struct{}{
	"":         {},
	"n/a":      {},
	"na":       {},
	"none":     {},
	"upcoming": {},
	"tbd":      {},
}

var weekdays = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// Classify derives the record's category. An explicit category from the
// source wins when it is recognizable; otherwise a concrete date makes the
// event date-specific, a weekday makes it weekly, and anything else is a
// daily or appointment-based activity.
func Classify(r domain.EventRecord) domain.Category {
	if c, ok := categoryFromHint(r.CategoryHint); ok {
		return c
	}
	if !isDatePlaceholder(r.Date) {
		return domain.DateSpecific
	}
	if NamesWeekday(r.Day) {
		return domain.Weekly
	}
	return domain.DailyAppointment
}

func categoryFromHint(hint string) (domain.Category, bool) {
	h := strings.ToLower(strings.TrimSpace(hint))
	if h == "" {
		return 0, false
	}
	switch {
	case strings.Contains(h, "date"):
		return domain.DateSpecific, true
	case strings.Contains(h, "week"):
		return domain.Weekly, true
	case strings.Contains(h, "daily"),
		strings.Contains(h, "appoint"),
		strings.Contains(h, "everyday"):
		return domain.DailyAppointment, true
	}
	return 0, false
}

func isDatePlaceholder(date string) bool {
	_, ok := datePlaceholders[strings.ToLower(strings.TrimSpace(date))]
	return ok
}

// NamesWeekday reports whether the freeform day value mentions at least one
// weekday. Lists like "Monday, Wednesday" count.
func NamesWeekday(day string) bool {
	d := strings.ToLower(day)
	for _, w := range weekdays {
		if strings.Contains(d, w) {
			return true
		}
	}
	return false
}
