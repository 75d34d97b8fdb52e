// Package service implements the conversational assistant: routing user
// input to the right path (detail lookup, daily-events append, refined
// search), running the retrieval pipeline and rendering the answer. Respond
// never returns an error; every failure becomes a user-facing message.
package service

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"avevents/internal/domain"
	"avevents/internal/event"
	"avevents/internal/refs"
	"avevents/internal/render"
)

const (
	msgNotReady  = "The event database is still initializing. Please try again in a moment."
	msgSearchErr = "Something went wrong while searching for events. Please try again."
	msgNoResults = "I couldn't find any upcoming events matching those criteria."
	msgBadRef    = "I couldn't work out which event number you mean. Try something like 'details(3)'."
	msgNotFound  = "I couldn't find that event. It may be from an older search - try searching again."

	// dailyQuery is the fixed append-mode search; the refiner is skipped
	// for it, matching the shortcut users reach through the trailer link.
	dailyQuery = "daily and appointment-based events"

	cardSeparator = "\n==============================\n"
)

// Options tunes retrieval breadth and the card/list switchover.
type Options struct {
	BroadK        int
	SpecificK     int
	CardThreshold int
	Now           func() time.Time
}

func (o *Options) fill() {
	if o.BroadK <= 0 {
		o.BroadK = 100
	}
	if o.SpecificK <= 0 {
		o.SpecificK = 12
	}
	if o.CardThreshold <= 0 {
		o.CardThreshold = 5
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Assistant wires the refiner, retriever, reference registry and session log
// into the request flow described in the package comment.
type Assistant struct {
	retriever domain.Retriever
	refiner   domain.QueryRefiner
	registry  *refs.Registry
	sessions  domain.SessionStore
	opts      Options
}

func NewAssistant(retriever domain.Retriever, refiner domain.QueryRefiner, registry *refs.Registry, sessions domain.SessionStore, opts Options) *Assistant {
	opts.fill()
	return &Assistant{
		retriever: retriever,
		refiner:   refiner,
		registry:  registry,
		sessions:  sessions,
		opts:      opts,
	}
}

var detailRefRe = regexp.MustCompile(`(?i)^\s*(?:details\s*\(\s*(\d+)\s*\)|#?(\d+))\s*$`)

// showMorePhrases route to the append-mode daily/appointment search.
var showMorePhrases = []string{
	"show daily events",
	"show daily",
	"show more",
	"show appointment events",
	"daily and appointment-based events",
	"see daily & appointment-based events",
	"see daily and appointment-based events",
}

func isShowMore(input string) bool {
	lower := strings.ToLower(strings.TrimSpace(input))
	for _, p := range showMorePhrases {
		if lower == p {
			return true
		}
	}
	return false
}

// Respond handles one user turn. The turn and its answer are appended to the
// session log; a log failure never blocks the answer.
func (a *Assistant) Respond(ctx context.Context, sessionID, input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return "Ask me about events and activities in Auroville - for example 'what's happening this weekend?'"
	}
	_ = a.sessions.SaveMessage(ctx, sessionID, "user", input)

	answer := a.respond(ctx, sessionID, input)

	_ = a.sessions.SaveMessage(ctx, sessionID, "assistant", answer)
	return answer
}

func (a *Assistant) respond(ctx context.Context, sessionID, input string) string {
	if key, ok, malformed := parseDetailRef(input); malformed {
		return msgBadRef
	} else if ok {
		return a.details(sessionID, key)
	}

	if isShowMore(input) {
		return a.search(ctx, sessionID, dailyQuery, domain.Broad, nil, true)
	}

	query, spec, err := a.refiner.Refine(ctx, input, a.opts.Now())
	if err != nil {
		// Degrade to the raw utterance rather than failing the turn.
		query, spec = input, domain.Broad
	}
	return a.search(ctx, sessionID, query, spec, nil, false)
}

// SearchFiltered runs a search with explicit structured filters, bypassing
// the refiner. A date filter also derives its weekday so listings keyed by
// day still match.
func (a *Assistant) SearchFiltered(ctx context.Context, sessionID, query string, spec domain.Specificity, filter domain.Filter) string {
	if filter.Date != "" && filter.Day == "" {
		if d, ok := parseFilterDate(filter.Date, a.opts.Now().Year()); ok {
			filter.Day = d.Weekday().String()
		}
	}
	var fp *domain.Filter
	if !filter.IsZero() {
		fp = &filter
	}
	return a.search(ctx, sessionID, query, spec, fp, false)
}

// search runs the full pipeline: retrieve, dedupe and expire, classify,
// group, sort, render, and populate the reference registry. In append mode
// the registry keeps its entries and numbering continues past the current
// maximum key.
func (a *Assistant) search(ctx context.Context, sessionID, query string, spec domain.Specificity, filter *domain.Filter, appendMode bool) string {
	k := a.opts.BroadK
	if spec == domain.Specific {
		k = a.opts.SpecificK
	}

	retrieved, err := a.retriever.Search(ctx, query, k, filter)
	if err != nil {
		if errors.Is(err, domain.ErrIndexNotReady) {
			return msgNotReady
		}
		return msgSearchErr
	}
	if len(retrieved) == 0 {
		return msgNoResults
	}

	now := a.opts.Now()
	upcoming := event.FilterUpcoming(retrieved, now)
	if len(upcoming) == 0 {
		return msgNoResults
	}
	buckets := event.GroupAndSort(upcoming)

	start := 0
	if appendMode {
		start = a.registry.MaxKey(sessionID)
	} else {
		a.registry.Clear(sessionID)
	}

	count := len(upcoming)
	exactMatch := strings.Contains(
		strings.ToLower(upcoming[0].Title),
		strings.ToLower(strings.TrimSpace(query)),
	)

	if count < a.opts.CardThreshold || spec == domain.Specific || exactMatch {
		return a.renderCards(sessionID, buckets, start, count)
	}
	return a.renderList(sessionID, buckets, start, count, spec)
}

func (a *Assistant) renderCards(sessionID string, buckets []event.Bucket, start, count int) string {
	var b strings.Builder
	b.WriteString("Found " + strconv.Itoa(count) + " event(s):\n")
	n := start
	for _, bucket := range buckets {
		for _, rec := range bucket.Events {
			n++
			a.registry.Put(sessionID, n, rec)
			b.WriteString("\n")
			b.WriteString(render.DetailCard(rec))
			b.WriteString(cardSeparator)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *Assistant) renderList(sessionID string, buckets []event.Bucket, start, count int, spec domain.Specificity) string {
	var b strings.Builder
	b.WriteString("Found " + strconv.Itoa(count) + " events. Click a name or ask for its number to see details:\n")
	n := start
	for _, bucket := range buckets {
		b.WriteString("\n**" + bucket.Category.String() + "**\n")
		for _, rec := range bucket.Events {
			n++
			a.registry.Put(sessionID, n, rec)
			b.WriteString(render.SummaryLine(n, rec))
			b.WriteString("\n")
		}
	}
	if spec == domain.Broad {
		b.WriteString("\n[**See daily & appointment-based events**](#MORE::daily)")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *Assistant) details(sessionID string, key int) string {
	rec, ok := a.registry.Lookup(sessionID, key)
	if !ok {
		return msgNotFound
	}
	return render.DetailCard(rec)
}

// parseDetailRef accepts a bare positive integer or details(N), optionally
// prefixed with '#'. malformed is set when the input clearly tried to be a
// detail reference but the number did not parse.
func parseDetailRef(input string) (key int, ok, malformed bool) {
	m := detailRefRe.FindStringSubmatch(input)
	if m == nil {
		if looksLikeDetailCall(input) {
			return 0, false, true
		}
		return 0, false, false
	}
	num := m[1]
	if num == "" {
		num = m[2]
	}
	key, err := strconv.Atoi(num)
	if err != nil || key <= 0 {
		return 0, false, true
	}
	return key, true, false
}

func looksLikeDetailCall(input string) bool {
	lower := strings.ToLower(strings.TrimSpace(input))
	return strings.HasPrefix(lower, "details(") || strings.HasPrefix(lower, "details (")
}

func parseFilterDate(raw string, year int) (time.Time, bool) {
	for _, layout := range []string{"January 2, 2006", "January 2"} {
		if t, err := time.Parse(layout, raw); err == nil {
			if t.Year() == 0 {
				t = time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			}
			return t, true
		}
	}
	return time.Time{}, false
}
