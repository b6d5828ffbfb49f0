// Package names repairs over-capitalized event titles and derives the
// abbreviated display name used in search results. Both transforms are purely
// textual and applied once per grouped event.
package names

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/cityatlas/eventpipe/internal/textnorm"
)

var (
	possessiveSRE = regexp.MustCompile(`['’]S\b`)
	contractionT  = regexp.MustCompile(`['’]T\b`)
	contractionD  = regexp.MustCompile(`['’]D\b`)
	withSlashRE   = regexp.MustCompile(`\bW/`)
	romanRE       = regexp.MustCompile(`\b(I|Ii|Iii|Iv|V|Vi|Vii|Viii|Ix|X|Xi|Xii)\b`)
	filmFormatRE  = regexp.MustCompile(`\b(35|65|70)Mm\b`)
	abbrevRE      = regexp.MustCompile(`\b([BCDFGHJKLMNPQRSTVWXYZ])([bcdfghjklmnpqrstvwxyz])\b`)

	curlyApostrophes = strings.NewReplacer("’", "'", "‘", "'")
)

// Normalize converts a mostly-uppercase name to title case and repairs the
// damage title-casing does: possessives, contractions, connective words,
// Roman numerals, film formats, ordinals, and two-letter abbreviations.
// Names that are short or not predominantly uppercase pass through untouched.
func Normalize(name string) string {
	if !mostlyUppercase(name) {
		return name
	}
	s := titleCase(name)
	s = curlyApostrophes.Replace(s)
	s = possessiveSRE.ReplaceAllString(s, "'s")
	s = contractionT.ReplaceAllString(s, "'t")
	s = contractionD.ReplaceAllString(s, "'d")
	s = textnorm.LowerConnectives(s)
	s = withSlashRE.ReplaceAllString(s, "w/")
	s = romanRE.ReplaceAllStringFunc(s, strings.ToUpper)
	s = filmFormatRE.ReplaceAllString(s, "${1}mm")
	s = textnorm.LowerOrdinals(s)
	s = abbrevRE.ReplaceAllStringFunc(s, strings.ToUpper)
	return s
}

// mostlyUppercase reports whether more than half of the alphabetic characters
// are uppercase. Names of 5 or fewer characters are never recapitalized.
func mostlyUppercase(name string) bool {
	if len([]rune(name)) <= 5 {
		return false
	}
	var alpha, upper int
	for _, r := range name {
		if unicode.IsLetter(r) {
			alpha++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	return alpha > 0 && float64(upper)/float64(alpha) > 0.5
}

// titleCase uppercases every letter that follows a non-letter and lowercases
// the rest, so "BAKER'S DOZEN" becomes "Baker'S Dozen". The apostrophe damage
// is repaired by the caller.
func titleCase(s string) string {
	runes := []rune(s)
	prevLetter := false
	for i, r := range runes {
		if unicode.IsLetter(r) {
			if prevLetter {
				runes[i] = unicode.ToLower(r)
			} else {
				runes[i] = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
	}
	return string(runes)
}
