package event

import (
	"encoding/json"
	"fmt"
)

// maxStartDate sorts events with no parseable start date after everything else.
const maxStartDate = "9999-99-99"

// Occurrence is one concrete date/time instance of an event. An empty EndDate
// means the occurrence ends the same day it starts. Serialized as a 4-element
// array to keep the published payload compact.
type Occurrence struct {
	StartDate string
	StartTime string
	EndDate   string
	EndTime   string
}

// MarshalJSON encodes the occurrence as [start_date, start_time, end_date, end_time].
func (o Occurrence) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]string{o.StartDate, o.StartTime, o.EndDate, o.EndTime})
}

// UnmarshalJSON decodes the 4-element array form.
func (o *Occurrence) UnmarshalJSON(data []byte) error {
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("parsing occurrence: %w", err)
	}
	if len(parts) != 4 {
		return fmt.Errorf("occurrence has %d elements, want 4", len(parts))
	}
	o.StartDate, o.StartTime, o.EndDate, o.EndTime = parts[0], parts[1], parts[2], parts[3]
	return nil
}

// Event is a logical activity that may recur across multiple occurrences.
// Lat and Lng are either both set or both nil; nil means the venue could not
// be resolved against the location registry.
type Event struct {
	Name        string       `json:"name"`
	ShortName   string       `json:"short_name,omitempty"`
	Location    string       `json:"location,omitempty"`
	Sublocation string       `json:"sublocation,omitempty"`
	Description string       `json:"description,omitempty"`
	URLs        []string     `json:"urls"`
	Tags        []string     `json:"tags,omitempty"`
	Emoji       string       `json:"emoji,omitempty"`
	Lat         *float64     `json:"lat,omitempty"`
	Lng         *float64     `json:"lng,omitempty"`
	Occurrences []Occurrence `json:"occurrences"`
}

// HasCoords reports whether the event carries a resolved location.
func (e *Event) HasCoords() bool {
	return e.Lat != nil && e.Lng != nil
}

// SetCoords attaches resolved coordinates to the event.
func (e *Event) SetCoords(lat, lng float64) {
	e.Lat = &lat
	e.Lng = &lng
}

// FirstStart returns the start date of the first occurrence, or the maximal
// sentinel date when the event has none.
func (e *Event) FirstStart() string {
	if len(e.Occurrences) == 0 || e.Occurrences[0].StartDate == "" {
		return maxStartDate
	}
	return e.Occurrences[0].StartDate
}

// AddURL appends url to the event's URL list unless it is empty or already present.
func (e *Event) AddURL(url string) {
	if url == "" {
		return
	}
	for _, existing := range e.URLs {
		if existing == url {
			return
		}
	}
	e.URLs = append(e.URLs, url)
}

// AddOccurrence appends occ unless an identical 4-tuple is already recorded.
func (e *Event) AddOccurrence(occ Occurrence) {
	for _, existing := range e.Occurrences {
		if existing == occ {
			return
		}
	}
	e.Occurrences = append(e.Occurrences, occ)
}

// RawRow is one parsed table line. All fields are strings and any may be
// empty. Rows are consumed immediately after being merged into an event.
type RawRow struct {
	Name        string
	Location    string
	Sublocation string
	StartDate   string
	StartTime   string
	EndDate     string
	EndTime     string
	Description string
	URL         string
	Hashtags    string
	Emoji       string
}

// LocationEntry is a canonical venue from the location registry. Entries are
// immutable reference data loaded once per run.
type LocationEntry struct {
	Name           string   `json:"name"`
	AlternateNames []string `json:"alternate_names,omitempty"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	Emoji          string   `json:"emoji,omitempty"`
}
