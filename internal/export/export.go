// Package export splits the deduplicated event set into the narrow "init"
// subset and the broad "full" subset, derives matching location subsets, and
// writes the four publication artifacts.
package export

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cityatlas/eventpipe/internal/event"
)

// Artifact file names, fixed by the published site contract.
const (
	EventsInitFile    = "events.init.json"
	LocationsInitFile = "locations.init.json"
	EventsFullFile    = "events.full.json"
	LocationsFullFile = "locations.full.json"
)

// coordPrecision rounds coordinates before set comparisons so registry
// entries and event coordinates agree despite float noise.
const coordPrecision = 1e5

// BoundingBox is an inclusive geographic rectangle.
type BoundingBox struct {
	LatMin float64 `yaml:"lat_min"`
	LatMax float64 `yaml:"lat_max"`
	LngMin float64 `yaml:"lng_min"`
	LngMax float64 `yaml:"lng_max"`
}

// Contains reports whether the point lies inside the box.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.LatMin && lat <= b.LatMax && lng >= b.LngMin && lng <= b.LngMax
}

// Partition holds the two publication subsets.
type Partition struct {
	Init []*event.Event
	Full []*event.Event
}

// SortByFirstStart orders events by the start date of their first occurrence,
// ascending. Events without a parseable date sort last via the sentinel date.
func SortByFirstStart(events []*event.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].FirstStart() < events[j].FirstStart()
	})
}

// Split partitions events: those inside the bounding box that start before
// initLimit go to Init, everything else to Full. Relative order is preserved.
func Split(events []*event.Event, bbox BoundingBox, initLimit time.Time) Partition {
	var p Partition
	for _, e := range events {
		inBox := e.HasCoords() && bbox.Contains(*e.Lat, *e.Lng)

		inTimeframe := false
		if start, err := time.Parse("2006-01-02", e.FirstStart()); err == nil {
			inTimeframe = start.Before(initLimit)
		}

		if inBox && inTimeframe {
			p.Init = append(p.Init, e)
		} else {
			p.Full = append(p.Full, e)
		}
	}
	return p
}

type coordKey struct {
	lat float64
	lng float64
}

func roundCoord(v float64) float64 {
	return math.Round(v*coordPrecision) / coordPrecision
}

func coordSet(events []*event.Event) map[coordKey]struct{} {
	set := make(map[coordKey]struct{})
	for _, e := range events {
		if e.HasCoords() {
			set[coordKey{roundCoord(*e.Lat), roundCoord(*e.Lng)}] = struct{}{}
		}
	}
	return set
}

// ActiveLocations filters the registry to venues whose rounded coordinates
// appear in the event set, preserving registry order.
func ActiveLocations(events []*event.Event, registry []event.LocationEntry) []event.LocationEntry {
	active := coordSet(events)
	var out []event.LocationEntry
	for _, loc := range registry {
		if _, ok := active[coordKey{roundCoord(loc.Lat), roundCoord(loc.Lng)}]; ok {
			out = append(out, loc)
		}
	}
	return out
}

// ExcludeCoords drops locations whose rounded coordinates already appear in
// the exclusion list, keeping the init and full location sets disjoint.
func ExcludeCoords(locations, exclude []event.LocationEntry) []event.LocationEntry {
	taken := make(map[coordKey]struct{}, len(exclude))
	for _, loc := range exclude {
		taken[coordKey{roundCoord(loc.Lat), roundCoord(loc.Lng)}] = struct{}{}
	}
	var out []event.LocationEntry
	for _, loc := range locations {
		if _, ok := taken[coordKey{roundCoord(loc.Lat), roundCoord(loc.Lng)}]; !ok {
			out = append(out, loc)
		}
	}
	return out
}

// Run sorts, splits, derives location subsets, and writes the four artifacts
// into outDir.
func Run(events []*event.Event, registry []event.LocationEntry, bbox BoundingBox, initLimit time.Time, outDir string) error {
	SortByFirstStart(events)
	p := Split(events, bbox, initLimit)

	initLocations := ActiveLocations(p.Init, registry)
	fullLocations := ExcludeCoords(ActiveLocations(p.Full, registry), initLocations)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	files := []struct {
		name string
		data interface{}
	}{
		{EventsInitFile, emptyIfNil(p.Init)},
		{LocationsInitFile, emptyLocsIfNil(initLocations)},
		{EventsFullFile, emptyIfNil(p.Full)},
		{LocationsFullFile, emptyLocsIfNil(fullLocations)},
	}
	for _, f := range files {
		if err := WriteJSON(filepath.Join(outDir, f.name), f.data); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes v as indented UTF-8 JSON with non-ASCII characters left
// unescaped.
func WriteJSON(path string, v interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}

func emptyIfNil(events []*event.Event) []*event.Event {
	if events == nil {
		return []*event.Event{}
	}
	return events
}

func emptyLocsIfNil(locations []event.LocationEntry) []event.LocationEntry {
	if locations == nil {
		return []event.LocationEntry{}
	}
	return locations
}
