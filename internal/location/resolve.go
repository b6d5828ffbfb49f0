package location

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// scoreThreshold is the floor for accepting a scored partial match.
const scoreThreshold = 0.85

// minQueryLength guards against matching short, generic strings.
const minQueryLength = 5

// query carries the normalized forms of one resolution request.
type query struct {
	loc      string
	subloc   string
	name     string
	combined string
}

// Resolve maps raw venue text to coordinates, trying exact lookups first and
// falling back to the scored scan and finally the source site name. A miss
// returns ok=false; an unresolved venue is ordinary data, not an error.
func Resolve(locationText, sublocationText, siteName, eventName string, ix *Index) (Coords, bool) {
	q := query{
		loc:    Normalize(locationText),
		subloc: Normalize(sublocationText),
		name:   Normalize(eventName),
	}
	q.combined = strings.TrimSpace(q.loc + " " + q.subloc)

	if runeLen(q.combined) > minQueryLength {
		if info, ok := ix.Lookup(q.combined); ok {
			return info, true
		}
		if info, ok := ix.Lookup(q.loc); ok {
			return info, true
		}
	}
	if runeLen(q.name) > minQueryLength {
		if info, ok := ix.Lookup(q.name); ok {
			return info, true
		}
	}

	bestScore := -1.0
	bestKey := ""
	if runeLen(q.combined) > minQueryLength || runeLen(q.name) > minQueryLength {
		for _, key := range ix.Keys() {
			if strings.TrimSpace(key) == "" {
				continue
			}
			score, candidate := scoreCandidate(q, key)
			if candidate && score >= scoreThreshold && score > bestScore {
				bestScore = score
				bestKey = key
			}
		}
	}

	if bestKey == "" {
		site := Normalize(siteName)
		sq := query{loc: site, combined: site}
		for _, key := range ix.Keys() {
			if strings.TrimSpace(key) == "" {
				continue
			}
			score, candidate := scoreCandidate(sq, key)
			if candidate && score >= scoreThreshold && score > bestScore {
				bestScore = score
				bestKey = key
			}
		}
	}

	if bestKey == "" {
		return Coords{}, false
	}
	info, _ := ix.Lookup(bestKey)
	return info, true
}

// scoreCandidate decides whether an index key is a candidate for the query
// and scores it. The bands are disjoint by construction: an exact event-name
// match scores 1.0, affix matches land in [0.9, 0.99] favoring the longest
// key, and everything else gets the best Levenshtein similarity of the
// location, combined, and name forms.
func scoreCandidate(q query, key string) (float64, bool) {
	keyLen := runeLen(key)

	exactName := runeLen(q.name) > minQueryLength && key == q.name
	exactLoc := key == q.loc
	prefix := keyLen > minQueryLength && strings.HasPrefix(q.combined, key)
	suffix := keyLen > minQueryLength && strings.HasSuffix(q.combined, key)
	keyInCombined := keyLen > minQueryLength && strings.Contains(q.combined, key)
	locInKey := runeLen(q.loc) > minQueryLength && strings.Contains(key, q.loc)
	sublocInKey := runeLen(q.subloc) > minQueryLength && strings.Contains(key, q.subloc)

	if !exactName && !exactLoc && !prefix && !suffix && !keyInCombined && !locInKey && !sublocInKey {
		return 0, false
	}

	switch {
	case exactName:
		return 1.0, true
	case prefix || suffix:
		return 0.9 + (float64(keyLen)/float64(runeLen(q.combined)))*0.09, true
	default:
		score := max(Similarity(q.loc, key), Similarity(q.combined, key))
		if runeLen(q.name) > minQueryLength {
			score = max(score, Similarity(q.name, key))
		}
		return score, true
	}
}

// Similarity is the normalized Levenshtein ratio
// (len(a)+len(b)-distance)/(len(a)+len(b)), in rune counts. Empty input
// scores zero.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	la := runeLen(a)
	lb := runeLen(b)
	d := levenshtein.ComputeDistance(a, b)
	return float64(la+lb-d) / float64(la+lb)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
