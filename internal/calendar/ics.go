// Package calendar exports an itinerary text as an iCalendar file.
package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

const (
	ProductID = "-//AI Travel Planner//github.com//"
	Filename  = "travel_itinerary.ics"
)

var (
	dayHeader   = regexp.MustCompile(`Day (\d+)[:\s]+`)
	dayBoundary = regexp.MustCompile(`Day \d+`)
)

// Block is the text of one "Day N" section.
type Block struct {
	Day  int
	Body string
}

// SplitDays finds every "Day N:" header and returns the text up to the next
// "Day <digits>" mention, trimmed.
func SplitDays(text string) []Block {
	var blocks []Block
	pos := 0
	for pos < len(text) {
		loc := dayHeader.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		n, _ := strconv.Atoi(text[pos+loc[2] : pos+loc[3]])
		bodyStart := pos + loc[1]
		bodyEnd := len(text)
		if next := dayBoundary.FindStringIndex(text[bodyStart:]); next != nil {
			bodyEnd = bodyStart + next[0]
		}
		blocks = append(blocks, Block{Day: n, Body: strings.TrimSpace(text[bodyStart:bodyEnd])})
		pos = bodyEnd
	}
	return blocks
}

// Generate builds the calendar: one all-day event per day block dated
// start + (N-1) days, or a single "Travel Itinerary" event holding the
// whole text when no block exists. now stamps DTSTAMP.
func Generate(text string, start, now time.Time) []byte {
	cal := ics.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetVersion("2.0")

	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	blocks := SplitDays(text)
	if len(blocks) == 0 {
		addEvent(cal, "Travel Itinerary", text, day, now)
	}
	for _, b := range blocks {
		addEvent(cal, fmt.Sprintf("Day %d Itinerary", b.Day), b.Body, day.AddDate(0, 0, b.Day-1), now)
	}
	return []byte(cal.Serialize())
}

func addEvent(cal *ics.Calendar, summary, description string, date, now time.Time) {
	ev := cal.AddEvent(uuid.NewString())
	ev.SetSummary(summary)
	ev.SetDescription(description)
	ev.SetAllDayStartAt(date)
	ev.SetAllDayEndAt(date)
	ev.SetDtStampTime(now)
}

// ParseStart reads an ISO-8601 date or timestamp ("2026-02-06",
// "2026-02-06T00:00:00Z"). Empty or invalid input yields today.
func ParseStart(s string, today time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return today
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return today
}
