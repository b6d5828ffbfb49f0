// Package dedup merges near-duplicate events that arrive from different
// source files but share a venue and start date.
package dedup

import (
	"strings"
	"unicode/utf8"

	"github.com/cityatlas/eventpipe/internal/event"
	"github.com/cityatlas/eventpipe/internal/textnorm"
)

// minKeyLength is the shortest normalized name allowed to match by substring
// containment, mirroring the grouping threshold.
const minKeyLength = 5

type groupKey struct {
	lat   float64
	lng   float64
	start string
}

// Deduplicate merges events sharing exact coordinates and first-occurrence
// start date whose normalized names are equal or substring-similar. Events
// without coordinates or occurrences cannot be grouped and pass through
// unchanged, after the deduplicated set. Within a group, an incoming event
// merges into the first similar predecessor.
func Deduplicate(events []*event.Event) []*event.Event {
	var order []groupKey
	groups := make(map[groupKey][]*event.Event)
	var passthrough []*event.Event

	for _, e := range events {
		if e.Name == "" || !e.HasCoords() || len(e.Occurrences) == 0 {
			passthrough = append(passthrough, e)
			continue
		}
		key := groupKey{lat: *e.Lat, lng: *e.Lng, start: e.Occurrences[0].StartDate}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], e)
	}

	unique := make([]*event.Event, 0, len(events))
	for _, key := range order {
		grp := groups[key]
		if len(grp) == 1 {
			unique = append(unique, grp[0])
			continue
		}

		var kept []*event.Event
		for _, e := range grp {
			merged := false
			for i, existing := range kept {
				if !SimilarNames(e.Name, existing.Name) {
					continue
				}
				merged = true
				mergedURLs := mergeURLs(existing.URLs, e.URLs)
				if preferIncoming(e, existing) {
					e.URLs = mergedURLs
					kept[i] = e
				} else {
					existing.URLs = mergedURLs
				}
				break
			}
			if !merged {
				kept = append(kept, e)
			}
		}
		unique = append(unique, kept...)
	}

	return append(unique, passthrough...)
}

// SimilarNames reports whether two event names are close enough to be the
// same event: equal normalized forms, or one contained in the other when
// both are at least minKeyLength characters.
func SimilarNames(a, b string) bool {
	na := textnorm.Key(a)
	nb := textnorm.Key(b)
	if na == nb {
		return true
	}
	if utf8.RuneCountInString(na) >= minKeyLength && utf8.RuneCountInString(nb) >= minKeyLength {
		return strings.Contains(na, nb) || strings.Contains(nb, na)
	}
	return false
}

// preferIncoming keeps the shorter name; on a length tie, the longer
// description wins.
func preferIncoming(incoming, existing *event.Event) bool {
	li := utf8.RuneCountInString(incoming.Name)
	le := utf8.RuneCountInString(existing.Name)
	if li != le {
		return li < le
	}
	return utf8.RuneCountInString(incoming.Description) > utf8.RuneCountInString(existing.Description)
}

func mergeURLs(existing, incoming []string) []string {
	merged := make([]string, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)
	for _, url := range incoming {
		if url == "" {
			continue
		}
		dup := false
		for _, have := range merged {
			if have == url {
				dup = true
				break
			}
		}
		if !dup {
			merged = append(merged, url)
		}
	}
	return merged
}
