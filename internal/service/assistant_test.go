package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avevents/internal/domain"
	"avevents/internal/refs"
	"avevents/internal/render"
)

// fakeRetriever returns queued result sets, one per Search call, and records
// the last filter it was given.
type fakeRetriever struct {
	queue      [][]domain.EventRecord
	err        error
	lastFilter *domain.Filter
	lastK      int
}

func (f *fakeRetriever) Search(_ context.Context, _ string, topK int, filter *domain.Filter) ([]domain.EventRecord, error) {
	f.lastFilter = filter
	f.lastK = topK
	if f.err != nil {
		return nil, f.err
	}
	if len(f.queue) == 0 {
		return nil, nil
	}
	out := f.queue[0]
	if len(f.queue) > 1 {
		f.queue = f.queue[1:]
	}
	return out, nil
}

type fakeRefiner struct {
	query string
	spec  domain.Specificity
}

func (f fakeRefiner) Refine(context.Context, string, time.Time) (string, domain.Specificity, error) {
	return f.query, f.spec, nil
}

type nopSessions struct{}

func (nopSessions) SaveMessage(context.Context, string, string, string) error     { return nil }
func (nopSessions) LoadHistory(context.Context, string) ([]domain.Message, error) { return nil, nil }
func (nopSessions) Close() error                                                  { return nil }

func fixedNow(t *testing.T) func() time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", "2025-11-13 09:00")
	require.NoError(t, err)
	return func() time.Time { return ts }
}

func futureEvents() []domain.EventRecord {
	return []domain.EventRecord{
		{Title: "Evening Concert", Date: "November 14, 2025", Time: "7 PM"},
		{Title: "Morning Yoga", Date: "November 14, 2025", Time: "7 AM"},
		{Title: "Weekly Satsang", Day: "Sunday", Time: "6 PM"},
		{Title: "Pottery Workshop", Date: "November 20, 2025", Time: "10 AM"},
		{Title: "Sound Healing", Date: "November 21, 2025", Time: "5 PM"},
		{Title: "Ayurveda Consultation", Time: "Anytime"},
	}
}

func newTestAssistant(t *testing.T, retriever *fakeRetriever, refiner domain.QueryRefiner) (*Assistant, *refs.Registry) {
	t.Helper()
	registry := refs.NewRegistry()
	a := NewAssistant(retriever, refiner, registry, nopSessions{}, Options{Now: fixedNow(t)})
	return a, registry
}

func TestRespond_ListModeAndDetailRoundTrip(t *testing.T) {
	retriever := &fakeRetriever{queue: [][]domain.EventRecord{futureEvents()}}
	a, registry := newTestAssistant(t, retriever, fakeRefiner{query: "weekend happenings", spec: domain.Broad})

	out := a.Respond(context.Background(), "s1", "what's happening this weekend?")
	assert.Contains(t, out, "Found 6 events")
	assert.Contains(t, out, "(#EVT::1)")
	assert.Contains(t, out, "(#EVT::6)")
	assert.Contains(t, out, "**Date-specific events**")
	assert.Contains(t, out, "**Weekly events**")
	assert.Contains(t, out, "**Daily & appointment-based events**")
	assert.Contains(t, out, "See daily & appointment-based events")
	assert.Equal(t, 100, retriever.lastK)

	// Key 1 is the earliest date-specific event.
	rec, ok := registry.Lookup("s1", 1)
	require.True(t, ok)
	assert.Equal(t, "Morning Yoga", rec.Title)

	// Numbered follow-ups resolve against the cache, in both syntaxes.
	byNumber := a.Respond(context.Background(), "s1", "1")
	byCall := a.Respond(context.Background(), "s1", "Details( 1 )")
	assert.Equal(t, byNumber, byCall)
	assert.Equal(t, render.DetailCard(rec), byNumber)
}

func TestRespond_SearchIsIdempotent(t *testing.T) {
	records := futureEvents()
	retriever := &fakeRetriever{queue: [][]domain.EventRecord{records, records}}
	a, registry := newTestAssistant(t, retriever, fakeRefiner{query: "events", spec: domain.Broad})

	a.Respond(context.Background(), "s1", "events this week")
	first := map[int]string{}
	for k := 1; k <= registry.Len("s1"); k++ {
		rec, ok := registry.Lookup("s1", k)
		require.True(t, ok)
		first[k] = rec.Title
	}

	a.Respond(context.Background(), "s1", "events this week")
	require.Equal(t, len(first), registry.Len("s1"))
	for k, title := range first {
		rec, ok := registry.Lookup("s1", k)
		require.True(t, ok)
		assert.Equal(t, title, rec.Title)
	}
}

func TestRespond_CardModeForSpecificQueries(t *testing.T) {
	retriever := &fakeRetriever{queue: [][]domain.EventRecord{{
		{Title: "Pottery Workshop", Date: "November 20, 2025", Time: "10 AM"},
	}}}
	a, registry := newTestAssistant(t, retriever, fakeRefiner{query: "pottery workshop", spec: domain.Specific})

	out := a.Respond(context.Background(), "s1", "when is the pottery workshop?")
	assert.Contains(t, out, "Found 1 event(s)")
	assert.Contains(t, out, "**Event Name:** Pottery Workshop")
	assert.Equal(t, 12, retriever.lastK)

	// Card mode populates the cache too.
	rec, ok := registry.Lookup("s1", 1)
	require.True(t, ok)
	assert.Equal(t, "Pottery Workshop", rec.Title)
}

func TestRespond_ShowMoreAppends(t *testing.T) {
	daily := []domain.EventRecord{
		{Title: "Drop-in Clay Studio"},
		{Title: "Ayurveda Consultation"},
		{Title: "Library Hours"},
		{Title: "Open Gym"},
		{Title: "Botanical Garden Walks"},
	}
	retriever := &fakeRetriever{queue: [][]domain.EventRecord{futureEvents(), daily}}
	a, registry := newTestAssistant(t, retriever, fakeRefiner{query: "events", spec: domain.Broad})

	a.Respond(context.Background(), "s1", "what's happening this weekend?")
	require.Equal(t, 6, registry.MaxKey("s1"))
	before, ok := registry.Lookup("s1", 1)
	require.True(t, ok)

	out := a.Respond(context.Background(), "s1", "show daily events")
	assert.Contains(t, out, "(#EVT::7)")
	assert.Contains(t, out, "(#EVT::11)")
	assert.Equal(t, 11, registry.MaxKey("s1"))

	// Earlier entries are untouched.
	after, ok := registry.Lookup("s1", 1)
	require.True(t, ok)
	assert.Equal(t, before.Title, after.Title)
}

func TestRespond_ErrorsBecomeMessages(t *testing.T) {
	t.Run("index not ready", func(t *testing.T) {
		retriever := &fakeRetriever{err: domain.ErrIndexNotReady}
		a, _ := newTestAssistant(t, retriever, fakeRefiner{query: "events", spec: domain.Broad})
		assert.Equal(t, msgNotReady, a.Respond(context.Background(), "s1", "any events?"))
	})

	t.Run("no results", func(t *testing.T) {
		retriever := &fakeRetriever{}
		a, _ := newTestAssistant(t, retriever, fakeRefiner{query: "events", spec: domain.Broad})
		assert.Equal(t, msgNoResults, a.Respond(context.Background(), "s1", "any events?"))
	})

	t.Run("cache miss", func(t *testing.T) {
		retriever := &fakeRetriever{}
		a, _ := newTestAssistant(t, retriever, fakeRefiner{query: "events", spec: domain.Broad})
		assert.Equal(t, msgNotFound, a.Respond(context.Background(), "s1", "details(42)"))
	})

	t.Run("malformed reference", func(t *testing.T) {
		retriever := &fakeRetriever{}
		a, _ := newTestAssistant(t, retriever, fakeRefiner{query: "events", spec: domain.Broad})
		assert.Equal(t, msgBadRef, a.Respond(context.Background(), "s1", "details(three)"))
	})
}

func TestRespond_LookupIsSessionScoped(t *testing.T) {
	retriever := &fakeRetriever{queue: [][]domain.EventRecord{futureEvents()}}
	a, _ := newTestAssistant(t, retriever, fakeRefiner{query: "events", spec: domain.Broad})

	a.Respond(context.Background(), "alice", "what's happening this weekend?")
	assert.Equal(t, msgNotFound, a.Respond(context.Background(), "bob", "details(1)"))
}

func TestSearchFiltered_DateDerivesWeekday(t *testing.T) {
	retriever := &fakeRetriever{queue: [][]domain.EventRecord{futureEvents()}}
	a, _ := newTestAssistant(t, retriever, fakeRefiner{})

	a.SearchFiltered(context.Background(), "s1", "events", domain.Broad, domain.Filter{Date: "November 14, 2025"})
	require.NotNil(t, retriever.lastFilter)
	assert.Equal(t, "Friday", retriever.lastFilter.Day)
	assert.Equal(t, "November 14, 2025", retriever.lastFilter.Date)
}

func TestRespond_PastEventsDroppedFromResults(t *testing.T) {
	retriever := &fakeRetriever{queue: [][]domain.EventRecord{{
		{Title: "Old Concert", Date: "November 1, 2025", Time: "7 PM"},
		{Title: "Pottery Workshop", Date: "November 20, 2025", Time: "10 AM"},
	}}}
	a, _ := newTestAssistant(t, retriever, fakeRefiner{query: "concerts and workshops", spec: domain.Broad})

	out := a.Respond(context.Background(), "s1", "what's on?")
	assert.NotContains(t, out, "Old Concert")
	assert.Contains(t, out, "Pottery Workshop")
}
