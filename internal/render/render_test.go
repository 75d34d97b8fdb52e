package render

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"avevents/internal/domain"
)

func TestSummaryLine_AllFields(t *testing.T) {
	rec := domain.EventRecord{
		Title:        "Morning Yoga",
		Day:          "Monday",
		Time:         "7 AM",
		Location:     "Town Hall",
		Contribution: "Free",
		Phone:        "+91 98765 43210",
	}
	got := SummaryLine(3, rec)
	assert.Equal(t, "- 3. [**Morning Yoga**](#EVT::3) | Monday 7 AM @Town Hall | Contrib: Free | Ph: 919876543210", got)
}

func TestSummaryLine_OmitsEmptyAndPlaceholders(t *testing.T) {
	rec := domain.EventRecord{
		Title:        "Morning Yoga",
		Day:          "",
		Time:         "N/A",
		Location:     "Unknown Location",
		Contribution: "check details",
	}
	got := SummaryLine(1, rec)
	assert.Equal(t, "- 1. [**Morning Yoga**](#EVT::1)", got)
	assert.NotContains(t, got, "N/A")
}

// The anchor target must stay byte-stable so a click resolves to the same key.
func TestSummaryLine_ReferenceIsStable(t *testing.T) {
	rec := domain.EventRecord{Title: "Pottery"}
	assert.Contains(t, SummaryLine(7, rec), "(#EVT::7)")
	assert.Contains(t, SummaryLine(7, rec), "- 7. ")
}

func TestSummaryLine_MissingTitleUsesPlaceholder(t *testing.T) {
	assert.Contains(t, SummaryLine(1, domain.EventRecord{}), "[**Event**]")
}

func TestDetailCard_FullRecord(t *testing.T) {
	rec := domain.EventRecord{
		Title:        "Pottery Workshop",
		CategoryHint: "Weekly",
		Day:          "Thursday",
		Date:         "November 20, 2025",
		Time:         "10 AM",
		Location:     "Creativity Hall",
		Contribution: "500 INR",
		ContactName:  "Maya",
		Phone:        "+91 98765-43210",
		Email:        "maya@example.org",
		Description:  "Hands-on wheel throwing for beginners.",
		PosterURL:    "https://example.org/poster.png",
		Audience:     "Beginners welcome",
	}
	got := DetailCard(rec)
	assert.Contains(t, got, "**Event Name:** Pottery Workshop")
	assert.Contains(t, got, "**Category:** Weekly")
	assert.Contains(t, got, "**When:** Thursday November 20, 2025 @ 10 AM")
	assert.Contains(t, got, "**Where:** Creativity Hall")
	assert.Contains(t, got, "**Contribution:** 500 INR")
	assert.Contains(t, got, "**Who is it for:** Beginners welcome")
	assert.Contains(t, got, "**Contact:** Maya (maya@example.org)")
	assert.Contains(t, got, "**Description:**\nHands-on wheel throwing for beginners.")
	assert.Contains(t, got, "![Event Poster](https://example.org/poster.png)")
}

func TestDetailCard_WhatsAppLink(t *testing.T) {
	rec := domain.EventRecord{
		Title: "Pottery Workshop",
		Date:  "November 20, 2025",
		Phone: "+91 98765-43210",
	}
	got := DetailCard(rec)
	msg := "Hi, I came across your event 'Pottery Workshop' scheduled on November 20, 2025. Info?"
	want := fmt.Sprintf("[**Click to Chat on WhatsApp**](https://wa.me/919876543210?text=%s)", url.QueryEscape(msg))
	assert.Contains(t, got, want)
}

// A phone number alone is enough to produce a Contact line.
func TestDetailCard_PhoneWithoutContactName(t *testing.T) {
	got := DetailCard(domain.EventRecord{Title: "Pottery", Phone: "98765"})
	assert.Contains(t, got, "**Contact:**")
	assert.Contains(t, got, "wa.me/98765")
}

func TestDetailCard_MinimalRecord(t *testing.T) {
	got := DetailCard(domain.EventRecord{Title: "Quiet Sit"})
	assert.Contains(t, got, "**Event Name:** Quiet Sit")
	assert.NotContains(t, got, "**When:**")
	assert.NotContains(t, got, "**Where:**")
	assert.NotContains(t, got, "**Contribution:**")
	assert.NotContains(t, got, "**Contact:**")
	assert.NotContains(t, got, "Poster")
	// Description always renders, with a placeholder when empty.
	assert.Contains(t, got, "**Description:**\nNo further details were provided for this event.")
}

func TestDetailCard_EmptyTitleStillRenders(t *testing.T) {
	got := DetailCard(domain.EventRecord{})
	assert.True(t, strings.HasPrefix(got, "**Event Name:** Event"))
}
