package event

import (
	"sort"

	"avevents/internal/domain"
	"avevents/internal/temporal"
)

// Bucket is one category's worth of events in display order.
type Bucket struct {
	Category domain.Category
	Events   []domain.EventRecord
}

// GroupAndSort classifies records, buckets them in the fixed category order
// (date-specific, weekly, daily/appointment) and stable-sorts each bucket by
// parsed start time. Unparseable times carry the sentinel and sink to the
// bottom of their bucket. Empty buckets are dropped.
func GroupAndSort(records []domain.EventRecord) []Bucket {
	byCategory := make(map[domain.Category][]domain.EventRecord, len(domain.Categories))
	for _, r := range records {
		r.Category = Classify(r)
		byCategory[r.Category] = append(byCategory[r.Category], r)
	}

	buckets := make([]Bucket, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		events := byCategory[c]
		if len(events) == 0 {
			continue
		}
		type keyed struct {
			sortTime int
			rec      domain.EventRecord
		}
		ks := make([]keyed, len(events))
		for i, e := range events {
			ks[i] = keyed{sortTime: temporal.ParseTime(e.Time), rec: e}
		}
		sort.SliceStable(ks, func(i, j int) bool { return ks[i].sortTime < ks[j].sortTime })
		for i := range ks {
			events[i] = ks[i].rec
		}
		buckets = append(buckets, Bucket{Category: c, Events: events})
	}
	return buckets
}
