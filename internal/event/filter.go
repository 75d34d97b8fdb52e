package event

import (
	"strings"
	"time"

	"avevents/internal/domain"
	"avevents/internal/temporal"
)

// FilterUpcoming drops exact duplicates and events that have already ended.
// Deduplication runs before expiry filtering; the key is (title, date, day)
// and the first occurrence wins.
//
// Expiry rules: an event whose resolved end date is before today is gone.
// An event ending today is gone once its parsed start time has passed.
// Events with no resolvable date (weekly and appointment activities) never
// expire.
func FilterUpcoming(records []domain.EventRecord, now time.Time) []domain.EventRecord {
	type dedupKey struct {
		title, date, day string
	}
	seen := make(map[dedupKey]struct{}, len(records))
	unique := records[:0:0]
	for _, r := range records {
		k := dedupKey{
			title: strings.TrimSpace(strings.ToLower(r.Title)),
			date:  strings.TrimSpace(strings.ToLower(r.Date)),
			day:   strings.TrimSpace(strings.ToLower(r.Day)),
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, r)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	nowMinutes := now.Hour()*60 + now.Minute()

	out := unique[:0]
	for _, r := range unique {
		_, end, ok := temporal.ParseDateRange(r.Date, now.Year())
		if !ok {
			out = append(out, r)
			continue
		}
		if end.Before(today) {
			continue
		}
		if end.Equal(today) {
			if t := temporal.ParseTime(r.Time); t != temporal.SentinelMinutes && t < nowMinutes {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}
