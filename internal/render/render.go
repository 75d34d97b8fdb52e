// Package render turns event records into the two user-facing shapes: a
// one-line clickable summary and a full detail card. Empty and placeholder
// values are suppressed rather than shown as filler.
package render

import (
	"fmt"
	"net/url"
	"strings"

	"avevents/internal/domain"
)

// placeholders are field values treated the same as empty.
var placeholders = map[string]struct{}{
	"n/a":              {},
	"na":               {},
	"none":             {},
	"unknown location": {},
	"upcoming":         {},
	"check details":    {},
}

func present(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if _, ok := placeholders[strings.ToLower(s)]; ok {
		return "", false
	}
	return s, true
}

func title(r domain.EventRecord) string {
	if t, ok := present(r.Title); ok {
		return t
	}
	return "Event"
}

// SummaryLine renders one numbered list entry. The anchor target carries the
// reference key and must stay byte-stable between render and lookup.
func SummaryLine(index int, r domain.EventRecord) string {
	parts := []string{fmt.Sprintf("- %d. [**%s**](#EVT::%d)", index, title(r), index)}

	var details []string
	if day, ok := present(r.Day); ok {
		details = append(details, day)
	}
	if t, ok := present(r.Time); ok {
		details = append(details, t)
	}
	if loc, ok := present(r.Location); ok {
		details = append(details, "@"+loc)
	}
	if contrib, ok := present(r.Contribution); ok {
		details = append(details, "| Contrib: "+contrib)
	}
	if phone := digitsOnly(r.Phone); phone != "" {
		details = append(details, "| Ph: "+phone)
	}
	if len(details) > 0 {
		parts = append(parts, "|", strings.Join(details, " "))
	}
	return strings.Join(parts, " ")
}

// DetailCard renders the full multi-field card. Event Name and Description
// always appear; every other field is omitted when empty.
func DetailCard(r domain.EventRecord) string {
	var lines []string
	lines = append(lines, "**Event Name:** "+title(r))

	if hint, ok := present(r.CategoryHint); ok {
		lines = append(lines, "**Category:** "+hint)
	}

	var when []string
	if day, ok := present(r.Day); ok {
		when = append(when, day)
	}
	if date, ok := present(r.Date); ok {
		when = append(when, date)
	}
	if t, ok := present(r.Time); ok {
		when = append(when, "@ "+t)
	}
	if len(when) > 0 {
		lines = append(lines, "**When:** "+strings.Join(when, " "))
	}

	if loc, ok := present(r.Location); ok {
		lines = append(lines, "**Where:** "+loc)
	}
	if contrib, ok := present(r.Contribution); ok {
		lines = append(lines, "**Contribution:** "+contrib)
	}
	if aud, ok := present(r.Audience); ok {
		lines = append(lines, "**Who is it for:** "+aud)
	}

	contact, hasContact := present(r.ContactName)
	wa := whatsAppSection(r)
	if hasContact || wa != "" {
		line := "**Contact:**"
		if hasContact {
			line = "**Contact:** " + contact
		}
		if email, ok := present(r.Email); ok {
			line += " (" + email + ")"
		}
		lines = append(lines, line+wa)
	}

	lines = append(lines, "", "**Description:**")
	if desc, ok := present(r.Description); ok {
		lines = append(lines, desc)
	} else {
		lines = append(lines, "No further details were provided for this event.")
	}

	if poster, ok := present(r.PosterURL); ok {
		lines = append(lines, "", fmt.Sprintf("![Event Poster](%s)", poster))
	}
	return strings.Join(lines, "\n")
}

// whatsAppSection builds the click-to-message deep link from the digits of
// the phone number, with a templated message mentioning the event.
func whatsAppSection(r domain.EventRecord) string {
	phone := digitsOnly(r.Phone)
	if phone == "" {
		return ""
	}
	date := r.Date
	if _, ok := present(date); !ok {
		date = "upcoming"
	}
	msg := fmt.Sprintf("Hi, I came across your event '%s' scheduled on %s. Info?", title(r), date)
	return fmt.Sprintf("\n[**Click to Chat on WhatsApp**](https://wa.me/%s?text=%s)", phone, url.QueryEscape(msg))
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteByte(byte(c))
		}
	}
	return b.String()
}
