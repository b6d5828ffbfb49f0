// Package location resolves raw venue text to canonical geocoded entries.
//
// Resolution runs an ordered cascade: exact index lookups first, then a
// scored partial match over every index key (exact event-name matches score
// 1.0, prefix/suffix matches land in the 0.9-0.99 band, everything else falls
// back to normalized Levenshtein similarity with a 0.85 floor), and finally
// the same scan keyed on the source site name. The cascade is deterministic:
// ties go to the first-encountered index key.
package location

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var punctRE = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// boroughs checked for a preceding dash or underscore, which marks the
// borough as part of the venue identifier rather than a description.
var boroughs = []string{"queens", "bronx", "brooklyn", "manhattan", "staten island"}

// geoSuffixes are trailing geographic qualifiers stripped during
// normalization.
var geoSuffixes = []string{"nyc", "new york", "brooklyn", "manhattan", "queens", "bronx", "staten island"}

// Normalize prepares venue text for matching: lowercase, punctuation
// stripped, leading "the " dropped from long names, trailing geographic
// suffixes removed unless dash-qualified, whitespace collapsed. Purely
// virtual venues normalize to empty and are never matched.
func Normalize(name string) string {
	if name == "" {
		return ""
	}
	lower := strings.ToLower(name)

	dashQualified := false
	for _, b := range boroughs {
		if strings.Contains(lower, "- "+b) || strings.Contains(lower, "_"+b) {
			dashQualified = true
			break
		}
	}

	n := punctRE.ReplaceAllString(lower, "")
	n = strings.Join(strings.Fields(n), " ")

	switch n {
	case "virtual", "online", "livestream":
		return ""
	}

	if strings.HasPrefix(n, "the ") && utf8.RuneCountInString(n)-4 > 15 {
		n = n[4:]
	}

	for _, s := range geoSuffixes {
		if n == s {
			return ""
		}
	}

	if !dashQualified {
		for _, suffix := range geoSuffixes {
			if strings.HasSuffix(n, " "+suffix) && utf8.RuneCountInString(n) > utf8.RuneCountInString(suffix)+2 {
				n = strings.TrimSpace(strings.TrimSuffix(n, " "+suffix))
				break
			}
		}
	}

	return strings.Join(strings.Fields(n), " ")
}
