// Package tags converts the raw "#Tag1 #Tag2" strings from extracted rows
// into clean, deduplicated tag lists, applying the rewrite/exclude/remove
// rules loaded from the tag rules file.
package tags

import (
	"regexp"
	"strings"

	"github.com/cityatlas/eventpipe/internal/textnorm"
)

var (
	digitRE = regexp.MustCompile(`([a-zA-Z])(\d+)`)
	mcRE    = regexp.MustCompile(`\bMc\s+([A-Z])`)
	oRE     = regexp.MustCompile(`\bO\s+([A-Z])`)
	stRE    = regexp.MustCompile(`\bSt\s+([A-Z])`)
	numKRE  = regexp.MustCompile(`\b(\d+)\s+K\b`)
	numDRE  = regexp.MustCompile(`\b(\d+)\s+D\b`)
	ampRE   = regexp.MustCompile(`\b([A-Z])&([a-z])\b`)
)

// Normalize splits a raw hashtag string and rewrites each fragment into its
// display form. Duplicates and excluded tags are dropped; first-seen order is
// preserved.
func Normalize(hashtags string, rules *Rules) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, frag := range strings.Split(hashtags, "#") {
		tag := strings.TrimRight(strings.TrimSpace(frag), ",")
		if tag == "" {
			continue
		}

		t := splitCamel(tag)
		t = digitRE.ReplaceAllString(t, "$1 $2")
		t = mcRE.ReplaceAllString(t, "Mc$1")
		t = oRE.ReplaceAllString(t, "O'$1")
		t = stRE.ReplaceAllString(t, "St. $1")
		if rewritten, ok := rules.RewriteFor(t); ok {
			t = rewritten
		}
		t = textnorm.LowerConnectives(t)
		t = numKRE.ReplaceAllString(t, "${1}K")
		t = numDRE.ReplaceAllString(t, "${1}D")
		t = textnorm.LowerOrdinals(t)
		t = ampRE.ReplaceAllStringFunc(t, fixAmpersand)

		key := LookupKey(t)
		if rules.Excluded(t) {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// LookupKey is the case- and space-insensitive form used for rewrite lookups,
// exclusion checks, and duplicate suppression.
func LookupKey(tag string) string {
	return strings.ReplaceAll(strings.ToLower(tag), " ", "")
}

// splitCamel inserts spaces at lower-to-upper and acronym-to-TitleCase
// boundaries, so "LiveMusic" becomes "Live Music" and "NYCParks" becomes
// "NYC Parks".
func splitCamel(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && isASCIIUpper(r) {
			prev := runes[i-1]
			if isASCIILower(prev) || isASCIIDigit(prev) {
				b.WriteRune(' ')
			} else if isASCIIUpper(prev) && i+1 < len(runes) && isASCIILower(runes[i+1]) {
				b.WriteRune(' ')
			}
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// fixAmpersand restores capitalization around ampersands: "Q&a" -> "Q&A".
func fixAmpersand(match string) string {
	parts := strings.SplitN(match, "&", 2)
	return parts[0] + "&" + strings.ToUpper(parts[1])
}

func isASCIIUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isASCIILower(r rune) bool { return r >= 'a' && r <= 'z' }
func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }
