// Package group merges rows that describe repeated occurrences of the same
// logical event. Grouping is order-sensitive: the first-seen key governs
// merges, so rows must be fed in their original file order.
package group

import (
	"strings"
	"unicode/utf8"

	"github.com/cityatlas/eventpipe/internal/event"
	"github.com/cityatlas/eventpipe/internal/textnorm"
)

// minKeyLength is the shortest normalized name allowed to merge via substring
// containment. Shorter names are too generic to trust.
const minKeyLength = 5

// cancelPrefixes mark rows that are dropped before grouping.
var cancelPrefixes = []string{"CANCELED:", "CANCELLED:", "KIM:", "KIM -"}

// Row is one processed table row ready for grouping: sanitized fields,
// normalized tags, and resolved coordinates when the venue matched.
type Row struct {
	Name        string
	Location    string
	Sublocation string
	Description string
	URL         string
	Tags        []string
	Emoji       string
	Lat         *float64
	Lng         *float64
	StartDate   string
	StartTime   string
	EndDate     string
	EndTime     string
}

// Grouper accumulates rows from one source file into events. Keys iterate in
// insertion order; a plain map would make merges nondeterministic.
type Grouper struct {
	keys   []string
	events map[string]*event.Event
}

// New creates an empty grouper for one source file.
func New() *Grouper {
	return &Grouper{events: make(map[string]*event.Event)}
}

// Add merges a row into its group, creating a new event when no existing key
// matches. Canceled rows and rows without a name are dropped.
func (g *Grouper) Add(row Row) {
	if row.Name == "" || isCanceled(row.Name) {
		return
	}

	endDate := row.EndDate
	if row.StartDate != "" && endDate == row.StartDate {
		endDate = ""
	}
	occ := event.Occurrence{
		StartDate: row.StartDate,
		StartTime: StandardizeTime(row.StartTime),
		EndDate:   endDate,
		EndTime:   StandardizeTime(row.EndTime),
	}

	key := g.matchKey(row.Name)
	evt, exists := g.events[key]
	if !exists {
		evt = &event.Event{
			Name:        row.Name,
			Location:    row.Location,
			Description: row.Description,
			Tags:        row.Tags,
			Emoji:       row.Emoji,
			URLs:        []string{},
		}
		if subloc := strings.TrimSpace(row.Sublocation); subloc != "" && !strings.EqualFold(subloc, "N/A") {
			evt.Sublocation = row.Sublocation
		}
		if row.Lat != nil && row.Lng != nil {
			evt.SetCoords(*row.Lat, *row.Lng)
		}
		evt.AddURL(strings.TrimSpace(row.URL))
		g.keys = append(g.keys, key)
		g.events[key] = evt
	} else {
		// Prefer the shorter name, which tends to carry less stray punctuation.
		if utf8.RuneCountInString(row.Name) < utf8.RuneCountInString(evt.Name) {
			evt.Name = row.Name
		}
		evt.AddURL(strings.TrimSpace(row.URL))
	}

	evt.AddOccurrence(occ)
}

// Events returns the grouped events in first-seen order.
func (g *Grouper) Events() []*event.Event {
	out := make([]*event.Event, 0, len(g.keys))
	for _, key := range g.keys {
		out = append(out, g.events[key])
	}
	return out
}

// matchKey finds the existing group a name belongs to: exact key match first,
// then normalized equality, then substring containment between normalized
// forms when both are long enough. No match makes the name its own key.
func (g *Grouper) matchKey(name string) string {
	if _, ok := g.events[name]; ok {
		return name
	}
	normalized := textnorm.Key(name)
	for _, existing := range g.keys {
		ne := textnorm.Key(existing)
		if normalized == ne {
			return existing
		}
		if utf8.RuneCountInString(normalized) >= minKeyLength && utf8.RuneCountInString(ne) >= minKeyLength {
			if strings.Contains(ne, normalized) || strings.Contains(normalized, ne) {
				return existing
			}
		}
	}
	return name
}

// StandardizeTime normalizes time text: "6:00 PM" -> "6pm", "All Day" -> "".
func StandardizeTime(t string) string {
	s := strings.ToLower(t)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	if s == "allday" {
		return ""
	}
	return strings.ReplaceAll(s, ":00", "")
}

func isCanceled(name string) bool {
	upper := strings.ToUpper(name)
	for _, prefix := range cancelPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}
