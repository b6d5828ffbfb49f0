package location

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/cityatlas/eventpipe/internal/event"
)

// minKeyLength keeps short, ambiguous names out of the index entirely.
const minKeyLength = 5

// Coords is the projection of a registry entry the resolver hands back.
type Coords struct {
	Lat   float64
	Lng   float64
	Emoji string
}

// Index maps normalized venue names to coordinates. Each registry entry
// contributes its raw-lowercased and normalized canonical name plus the same
// two forms of every alias; several keys may point at the same entry.
//
// Key order is insertion order. The resolver's scan semantics depend on it:
// when two candidates tie, the first-encountered key wins, so iteration must
// be deterministic.
type Index struct {
	keys    []string
	entries map[string]Coords
}

// BuildIndex constructs the read-only lookup from the full registry. Built
// once per run and shared by every resolver call.
func BuildIndex(registry []event.LocationEntry) *Index {
	ix := &Index{entries: make(map[string]Coords)}
	for _, loc := range registry {
		info := Coords{Lat: loc.Lat, Lng: loc.Lng, Emoji: loc.Emoji}
		ix.add(strings.ToLower(loc.Name), info)
		ix.add(Normalize(loc.Name), info)
		for _, alt := range loc.AlternateNames {
			ix.add(strings.ToLower(alt), info)
			ix.add(Normalize(alt), info)
		}
	}
	return ix
}

func (ix *Index) add(key string, info Coords) {
	if utf8.RuneCountInString(key) < minKeyLength {
		return
	}
	if _, exists := ix.entries[key]; !exists {
		ix.keys = append(ix.keys, key)
	}
	ix.entries[key] = info
}

// Lookup returns the entry for an exact normalized key.
func (ix *Index) Lookup(key string) (Coords, bool) {
	info, ok := ix.entries[key]
	return info, ok
}

// Keys returns every index key in insertion order. Callers must not modify
// the returned slice.
func (ix *Index) Keys() []string {
	return ix.keys
}

// Len reports the number of distinct keys.
func (ix *Index) Len() int {
	return len(ix.keys)
}

// LoadRegistry reads the canonical venue list. Unlike tag rules, a missing or
// corrupt registry is fatal: nothing can be resolved without it.
func LoadRegistry(path string) ([]event.LocationEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading location registry: %w", err)
	}
	var registry []event.LocationEntry
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("parsing location registry: %w", err)
	}
	return registry, nil
}
