package refiner

import (
	"context"
	"strings"
	"time"

	"avevents/internal/domain"
)

// HeuristicRefiner resolves relative dates and guesses specificity with
// keyword rules. It is the default when no chat model is configured: worse
// queries than the model produces, but never unavailable.
type HeuristicRefiner struct{}

func NewHeuristicRefiner() *HeuristicRefiner { return &HeuristicRefiner{} }

const dateLayout = "Monday, January 2, 2006"

var broadCues = []string{
	"what's happening", "whats happening", "what is happening", "what's on",
	"anything", "events", "activities", "this weekend", "next week",
	"this week", "this month", "today", "tomorrow", "schedule",
}

func (HeuristicRefiner) Refine(_ context.Context, utterance string, today time.Time) (string, domain.Specificity, error) {
	query := resolveRelativeDates(utterance, today)

	lower := strings.ToLower(utterance)
	spec := domain.Specific
	for _, cue := range broadCues {
		if strings.Contains(lower, cue) {
			spec = domain.Broad
			break
		}
	}
	// Very short questions with no named activity are broad too.
	if len(strings.Fields(lower)) <= 2 {
		spec = domain.Broad
	}
	if spec == domain.Broad && !mentionsDate(strings.ToLower(query)) {
		query += " or appointment events"
	}
	return strings.TrimSpace(query), spec, nil
}

// resolveRelativeDates substitutes "today", "tomorrow" and "this weekend"
// with explicit dates so the similarity search can match dated listings.
func resolveRelativeDates(utterance string, today time.Time) string {
	replacements := [][2]string{
		{"day after tomorrow", today.AddDate(0, 0, 2).Format(dateLayout)},
		{"tomorrow", today.AddDate(0, 0, 1).Format(dateLayout)},
		{"tonight", today.Format(dateLayout)},
		{"today", today.Format(dateLayout)},
		{"this weekend", weekendSpan(today)},
	}
	out := utterance
	for _, rep := range replacements {
		out = replaceFold(out, rep[0], rep[1])
	}
	return out
}

func weekendSpan(today time.Time) string {
	daysToSaturday := (int(time.Saturday) - int(today.Weekday()) + 7) % 7
	saturday := today.AddDate(0, 0, daysToSaturday)
	sunday := saturday.AddDate(0, 0, 1)
	return saturday.Format(dateLayout) + " and " + sunday.Format(dateLayout)
}

func mentionsDate(lower string) bool {
	for _, m := range []string{
		"january", "february", "march", "april", "may", "june", "july",
		"august", "september", "october", "november", "december",
		"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	} {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// replaceFold is a case-insensitive strings.ReplaceAll.
func replaceFold(s, old, new string) string {
	lower := strings.ToLower(s)
	oldLower := strings.ToLower(old)
	var b strings.Builder
	for {
		i := strings.Index(lower, oldLower)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		b.WriteString(new)
		s = s[i+len(old):]
		lower = lower[i+len(oldLower):]
	}
}
