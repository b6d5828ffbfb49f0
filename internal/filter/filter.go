// Package filter drops rows and events outside the publication time window
// and events carrying removable tags.
package filter

import (
	"strings"
	"time"

	"github.com/cityatlas/eventpipe/internal/event"
	"github.com/cityatlas/eventpipe/internal/tags"
)

// dateLayout is the ISO date form every start_date and end_date must use.
const dateLayout = "2006-01-02"

// Window is the publication time window for one run: events are kept when
// their effective span overlaps [Today, FutureLimit] and does not exceed
// MaxSpanDays.
type Window struct {
	Today       time.Time
	FutureLimit time.Time
	MaxSpanDays int
}

// NewWindow builds the window for a run anchored at now, truncated to
// calendar dates.
func NewWindow(now time.Time, lookaheadDays, maxSpanDays int) Window {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return Window{
		Today:       today,
		FutureLimit: today.AddDate(0, 0, lookaheadDays),
		MaxSpanDays: maxSpanDays,
	}
}

// RowInRange reports whether a raw row's dates fall inside the window. Rows
// with unparseable or missing start dates are rejected, as are spans longer
// than MaxSpanDays.
func (w Window) RowInRange(startDate, endDate string) bool {
	start, err := time.Parse(dateLayout, strings.TrimSpace(startDate))
	if err != nil {
		return false
	}
	if start.After(w.FutureLimit) {
		return false
	}

	effective := strings.TrimSpace(endDate)
	if effective == "" {
		effective = strings.TrimSpace(startDate)
	}
	end, err := time.Parse(dateLayout, effective)
	if err != nil {
		return false
	}
	if end.Before(w.Today) {
		return false
	}

	if int(end.Sub(start).Hours()/24) > w.MaxSpanDays {
		return false
	}
	return true
}

// EventInRange reports whether at least one occurrence overlaps the window.
// Occurrences with malformed dates are ignored rather than disqualifying the
// event.
func (w Window) EventInRange(e *event.Event) bool {
	for _, occ := range e.Occurrences {
		if occ.StartDate == "" {
			continue
		}
		start, err := time.Parse(dateLayout, occ.StartDate)
		if err != nil {
			continue
		}
		endStr := occ.EndDate
		if endStr == "" {
			endStr = occ.StartDate
		}
		end, err := time.Parse(dateLayout, endStr)
		if err != nil {
			continue
		}
		if !start.After(w.FutureLimit) && !end.Before(w.Today) {
			return true
		}
	}
	return false
}

// RemovedByTags reports whether any of the event's tags is in the removable
// set, which voids the whole event.
func RemovedByTags(eventTags []string, rules *tags.Rules) bool {
	for _, tag := range eventTags {
		if rules.Removable(tag) {
			return true
		}
	}
	return false
}
