// Package temporal parses the loosely formatted date and time strings found
// in community event listings. Parsing is total: garbage input degrades to a
// sentinel or a negative result, never to an error.
package temporal

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SentinelMinutes sorts after every real time of day. Unparseable or
// open-ended times ("Anytime", "all day") resolve to it so they fall to the
// bottom of their bucket.
const SentinelMinutes = 24 * 60

var (
	clockRe    = regexp.MustCompile(`(\d{1,2})(?::(\d{2}))?`)
	meridianRe = regexp.MustCompile(`^\s*\.?\s*(am|pm)`)
	dayRangeRe = regexp.MustCompile(`(?i)^\s*(\d{1,2})\s*-\s*(\d{1,2})\s+([a-z]+)\s*(?:,?\s*(\d{4}))?\s*$`)
)

// ParseTime converts a freeform time string into minutes from midnight.
// The first clock-like token wins; a missing meridian marker is searched for
// in the following few characters so ranges like "7-9 AM" read as 7:00 AM.
func ParseTime(raw string) int {
	s := strings.ToLower(normalizeDashes(raw))
	loc := clockRe.FindStringSubmatchIndex(s)
	if loc == nil {
		return SentinelMinutes
	}
	m := clockRe.FindStringSubmatch(s[loc[0]:])
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}

	// Look for AM/PM right after the token, then up to 10 chars ahead to
	// catch the trailing marker of a range ("7-9 AM").
	rest := s[loc[1]:]
	meridian := ""
	if mm := meridianRe.FindStringSubmatch(rest); mm != nil {
		meridian = mm[1]
	} else {
		window := rest
		if len(window) > 10 {
			window = window[:10]
		}
		switch {
		case strings.Contains(window, "pm"):
			meridian = "pm"
		case strings.Contains(window, "am"):
			meridian = "am"
		}
	}

	switch meridian {
	case "pm":
		if hour < 1 || hour > 12 {
			return SentinelMinutes
		}
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour < 1 || hour > 12 {
			return SentinelMinutes
		}
		if hour == 12 {
			hour = 0
		}
	default:
		if hour > 23 {
			return SentinelMinutes
		}
	}
	if minute > 59 {
		return SentinelMinutes
	}
	return hour*60 + minute
}

// dateLayouts are tried in order; entries without a year borrow the context
// year from the caller.
var dateLayouts = []struct {
	layout  string
	hasYear bool
}{
	{"January 2, 2006", true},
	{"January 2 2006", true},
	{"Monday, January 2, 2006", true},
	{"Jan 2, 2006", true},
	{"January 2", false},
	{"Jan 2", false},
	{"Monday, January 2", false},
	{"2 January 2006", true},
	{"2 January", false},
	{"2 Jan", false},
	{"2.1.2006", true},
	{"2/1/2006", true},
	{"2006-01-02", true},
}

// ParseDate parses a human-entered date. Dates without a year assume
// contextYear. The second return is false when nothing matched.
func ParseDate(raw string, contextYear int) (time.Time, bool) {
	s := strings.TrimSpace(normalizeDashes(raw))
	if s == "" {
		return time.Time{}, false
	}
	for _, dl := range dateLayouts {
		t, err := time.Parse(dl.layout, s)
		if err != nil {
			continue
		}
		if !dl.hasYear {
			t = time.Date(contextYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
		return t, true
	}
	return time.Time{}, false
}

// ParseDateRange handles spans like "17-28 November" (shared month, two day
// numbers) and "14 November - 16 November". A single parseable date counts
// as both start and end. ok is false when no date could be extracted.
func ParseDateRange(raw string, contextYear int) (start, end time.Time, ok bool) {
	s := strings.TrimSpace(normalizeDashes(raw))
	if s == "" {
		return time.Time{}, time.Time{}, false
	}

	if m := dayRangeRe.FindStringSubmatch(s); m != nil {
		year := contextYear
		if m[4] != "" {
			year, _ = strconv.Atoi(m[4])
		}
		from, okFrom := ParseDate(m[1]+" "+m[3], year)
		to, okTo := ParseDate(m[2]+" "+m[3], year)
		if okFrom && okTo {
			return from, to, true
		}
	}

	if i := strings.Index(s, "-"); i > 0 {
		from, okFrom := ParseDate(s[:i], contextYear)
		to, okTo := ParseDate(s[i+1:], contextYear)
		if okFrom && okTo {
			return from, to, true
		}
	}

	if d, okd := ParseDate(s, contextYear); okd {
		return d, d, true
	}
	return time.Time{}, time.Time{}, false
}

var dashReplacer = strings.NewReplacer("–", "-", "—", "-", "−", "-", "‐", "-", "‑", "-")

func normalizeDashes(s string) string {
	return dashReplacer.Replace(s)
}
