package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cityatlas/eventpipe/internal/event"
)

var nycBox = BoundingBox{
	LatMin: 40.686695,
	LatMax: 40.749285,
	LngMin: -74.014855,
	LngMax: -73.959385,
}

func testEvent(name, start string, lat, lng float64) *event.Event {
	e := &event.Event{Name: name, URLs: []string{}, Occurrences: []event.Occurrence{{StartDate: start}}}
	e.SetCoords(lat, lng)
	return e
}

func TestBoundingBox_Contains(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lng  float64
		want bool
	}{
		{"inside", 40.73, -74.0, true},
		{"on the edge", 40.686695, -74.014855, true},
		{"north of box", 40.80, -74.0, false},
		{"east of box", 40.73, -73.90, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nycBox.Contains(tt.lat, tt.lng); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestSortByFirstStart(t *testing.T) {
	events := []*event.Event{
		testEvent("later", "2026-09-10", 40.73, -74.0),
		{Name: "undated"},
		testEvent("sooner", "2026-09-01", 40.73, -74.0),
	}

	SortByFirstStart(events)

	if events[0].Name != "sooner" || events[1].Name != "later" || events[2].Name != "undated" {
		t.Errorf("order = %q, %q, %q, want sooner, later, undated",
			events[0].Name, events[1].Name, events[2].Name)
	}
}

func TestSplit(t *testing.T) {
	initLimit := time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)

	inBoxSoon := testEvent("in box soon", "2026-09-05", 40.73, -74.0)
	inBoxLate := testEvent("in box late", "2026-09-20", 40.73, -74.0)
	outOfBox := testEvent("out of box", "2026-09-05", 40.80, -73.90)
	noCoords := &event.Event{Name: "no coords", Occurrences: []event.Occurrence{{StartDate: "2026-09-05"}}}
	undated := testEvent("undated", "", 40.73, -74.0)

	p := Split([]*event.Event{inBoxSoon, inBoxLate, outOfBox, noCoords, undated}, nycBox, initLimit)

	if len(p.Init) != 1 || p.Init[0].Name != "in box soon" {
		t.Errorf("Init = %v, want only the in-box near-term event", names(p.Init))
	}
	if len(p.Full) != 4 {
		t.Errorf("Full has %d events, want 4", len(p.Full))
	}

	// Every input lands in exactly one partition.
	if len(p.Init)+len(p.Full) != 5 {
		t.Errorf("partitions cover %d events, want 5", len(p.Init)+len(p.Full))
	}
}

func TestActiveLocations(t *testing.T) {
	registry := []event.LocationEntry{
		{Name: "Blue Note", Lat: 40.7306, Lng: -74.0007},
		{Name: "Brooklyn Museum", Lat: 40.6712, Lng: -73.9636},
	}
	events := []*event.Event{testEvent("Jazz Night", "2026-09-05", 40.7306, -74.0007)}

	got := ActiveLocations(events, registry)
	if len(got) != 1 || got[0].Name != "Blue Note" {
		t.Errorf("ActiveLocations() = %v, want only Blue Note", got)
	}
}

func TestActiveLocations_RoundsCoordinates(t *testing.T) {
	registry := []event.LocationEntry{{Name: "Blue Note", Lat: 40.7306, Lng: -74.0007}}
	// Coordinates differing past the fifth decimal still match.
	events := []*event.Event{testEvent("Jazz Night", "2026-09-05", 40.730600004, -74.000699996)}

	if got := ActiveLocations(events, registry); len(got) != 1 {
		t.Errorf("ActiveLocations() matched %d locations, want 1", len(got))
	}
}

func TestExcludeCoords(t *testing.T) {
	locations := []event.LocationEntry{
		{Name: "Blue Note", Lat: 40.7306, Lng: -74.0007},
		{Name: "Brooklyn Museum", Lat: 40.6712, Lng: -73.9636},
	}
	exclude := []event.LocationEntry{{Name: "Blue Note", Lat: 40.7306, Lng: -74.0007}}

	got := ExcludeCoords(locations, exclude)
	if len(got) != 1 || got[0].Name != "Brooklyn Museum" {
		t.Errorf("ExcludeCoords() = %v, want only Brooklyn Museum", got)
	}
}

func TestRun(t *testing.T) {
	outDir := t.TempDir()
	registry := []event.LocationEntry{
		{Name: "Blue Note", Lat: 40.7306, Lng: -74.0007},
		{Name: "Brooklyn Museum", Lat: 40.6712, Lng: -73.9636},
	}
	events := []*event.Event{
		testEvent("Full Event", "2026-10-01", 40.6712, -73.9636),
		testEvent("Init Event", "2026-09-05", 40.7306, -74.0007),
	}
	initLimit := time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)

	if err := Run(events, registry, nycBox, initLimit, outDir); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var initEvents, fullEvents []*event.Event
	readJSON(t, filepath.Join(outDir, EventsInitFile), &initEvents)
	readJSON(t, filepath.Join(outDir, EventsFullFile), &fullEvents)

	if len(initEvents) != 1 || initEvents[0].Name != "Init Event" {
		t.Errorf("init events = %v, want only Init Event", names(initEvents))
	}
	if len(fullEvents) != 1 || fullEvents[0].Name != "Full Event" {
		t.Errorf("full events = %v, want only Full Event", names(fullEvents))
	}

	var initLocs, fullLocs []event.LocationEntry
	readJSON(t, filepath.Join(outDir, LocationsInitFile), &initLocs)
	readJSON(t, filepath.Join(outDir, LocationsFullFile), &fullLocs)

	if len(initLocs) != 1 || initLocs[0].Name != "Blue Note" {
		t.Errorf("init locations = %v, want only Blue Note", initLocs)
	}

	// Location subsets must be disjoint in coordinates.
	taken := make(map[[2]float64]struct{})
	for _, loc := range initLocs {
		taken[[2]float64{loc.Lat, loc.Lng}] = struct{}{}
	}
	for _, loc := range fullLocs {
		if _, dup := taken[[2]float64{loc.Lat, loc.Lng}]; dup {
			t.Errorf("location %q appears in both subsets", loc.Name)
		}
	}
}

func TestRun_EmptyInputWritesEmptyArrays(t *testing.T) {
	outDir := t.TempDir()
	initLimit := time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)

	if err := Run(nil, nil, nycBox, initLimit, outDir); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, name := range []string{EventsInitFile, LocationsInitFile, EventsFullFile, LocationsFullFile} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		var decoded []json.RawMessage
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Errorf("%s is not a JSON array: %v", name, err)
		}
		if len(decoded) != 0 {
			t.Errorf("%s has %d entries, want 0", name, len(decoded))
		}
	}
}

func readJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("parsing %s: %v", path, err)
	}
}

func names(events []*event.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Name
	}
	return out
}
