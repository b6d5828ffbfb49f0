// Package textnorm holds the small text transforms shared by the tag, name,
// grouping, and dedup stages. Everything here is pure and deterministic.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	spaceRE      = regexp.MustCompile(`\s+`)
	punctRE      = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	connectiveRE = regexp.MustCompile(`\b(A|And|Of|The|Or|In|At|On|For|To|With|From|By)\b`)
	ordinalRE    = regexp.MustCompile(`(\d+)(St|Nd|Rd|Th)\b`)
)

// CollapseSpaces trims s and squeezes every whitespace run to a single space.
func CollapseSpaces(s string) string {
	return spaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Key normalizes a name for fuzzy grouping and dedup comparisons: underscores
// removed, lowercased, punctuation stripped, whitespace collapsed.
func Key(name string) string {
	s := strings.ReplaceAll(name, "_", "")
	s = strings.ToLower(strings.TrimSpace(s))
	s = punctRE.ReplaceAllString(s, "")
	return CollapseSpaces(s)
}

// LowerConnectives lowercases common connective words ("And", "Of", "The", ...)
// except when one opens the string.
func LowerConnectives(s string) string {
	locs := connectiveRE.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(s[last:loc[0]])
		word := s[loc[0]:loc[1]]
		if loc[0] == 0 {
			b.WriteString(word)
		} else {
			b.WriteString(strings.ToLower(word))
		}
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// LowerOrdinals rewrites title-cased ordinal suffixes after digits,
// e.g. "38Th" -> "38th" and "1St" -> "1st".
func LowerOrdinals(s string) string {
	return ordinalRE.ReplaceAllStringFunc(s, strings.ToLower)
}
