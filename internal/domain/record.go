package domain

import "strings"

// Category buckets an event by how it recurs.
type Category int

const (
	DateSpecific Category = iota
	Weekly
	DailyAppointment
)

func (c Category) String() string {
	switch c {
	case DateSpecific:
		return "Date-specific events"
	case Weekly:
		return "Weekly events"
	case DailyAppointment:
		return "Daily & appointment-based events"
	}
	return "Events"
}

// Categories is the fixed presentation order for grouped output.
var Categories = []Category{DateSpecific, Weekly, DailyAppointment}

// Specificity is a coarse hint about how many candidates a query should pull.
type Specificity int

const (
	Broad Specificity = iota
	Specific
)

// EventRecord is one bookable or attendable activity as loaded from the
// source spreadsheets. Empty string means "unknown, omit from rendering".
type EventRecord struct {
	Title        string
	CategoryHint string // freeform category text from the source, if any
	Category     Category
	Day          string
	Date         string
	Time         string
	Location     string
	Contribution string
	ContactName  string
	Phone        string
	Email        string
	Description  string
	PosterURL    string
	Audience     string
}

// SearchText is the flat text a record is embedded and matched against.
func (r EventRecord) SearchText() string {
	parts := make([]string, 0, 10)
	for _, s := range []string{
		r.Title, r.CategoryHint, r.Day, r.Date, r.Time,
		r.Location, r.Contribution, r.ContactName, r.Description, r.Audience,
	} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// SearchResult pairs a retrieved record with its similarity score.
type SearchResult struct {
	Record EventRecord
	Score  float64
}

// Filter restricts retrieval by exact metadata match. When more than one
// field is set the fields combine with OR semantics.
type Filter struct {
	Day      string
	Date     string
	Location string
}

// IsZero reports whether no filter field is set.
func (f Filter) IsZero() bool {
	return f.Day == "" && f.Date == "" && f.Location == ""
}

// Matches reports whether the record satisfies the filter. Comparison is
// case-insensitive on trimmed values.
func (f Filter) Matches(r EventRecord) bool {
	if f.IsZero() {
		return true
	}
	eq := func(a, b string) bool {
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	}
	if f.Day != "" && eq(f.Day, r.Day) {
		return true
	}
	if f.Date != "" && eq(f.Date, r.Date) {
		return true
	}
	if f.Location != "" && eq(f.Location, r.Location) {
		return true
	}
	return false
}
