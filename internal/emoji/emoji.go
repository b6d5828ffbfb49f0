// Package emoji picks the display emoji for an event: the first emoji found
// in the extracted cell, falling back to the resolved venue's emoji. Glyphs
// that render as boxes or squares on common platforms are rejected.
package emoji

import (
	"github.com/forPelevin/gomoji"
)

// blocked are glyphs that render as hollow or filled boxes and are never
// published.
var blocked = map[string]struct{}{
	"⬜": {}, "□": {}, "◻": {}, "⬛": {}, "■": {},
	"▪": {}, "▫": {}, "◼": {}, "◾": {}, "◽": {},
	"◿": {}, "▢": {}, "▣": {}, "▤": {}, "▥": {},
	"▦": {}, "▧": {}, "▨": {}, "▩": {},
}

// First returns the first emoji sequence in text, or "" when none is found.
// Compound sequences (skin tones, ZWJ families, flags) are kept whole.
func First(text string) string {
	found := gomoji.FindAll(text)
	if len(found) == 0 {
		return ""
	}
	return found[0].Character
}

// Resolve picks the event emoji: the first valid emoji from the raw cell
// wins, then the venue emoji, then nothing.
func Resolve(rawCell, venueEmoji string) string {
	if first := First(rawCell); first != "" && !isBlocked(first) {
		return first
	}
	return venueEmoji
}

func isBlocked(e string) bool {
	_, ok := blocked[e]
	return ok
}
