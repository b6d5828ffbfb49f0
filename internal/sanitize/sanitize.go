// Package sanitize strips markup and invisible characters from the free-text
// fields of extracted rows. All transforms are pure, and running them on
// already-clean text is a no-op.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/cityatlas/eventpipe/internal/textnorm"
)

var tagRE = regexp.MustCompile(`<[^>]+>`)

// entityReplacer decodes the fixed set of HTML entities seen in extraction
// output. Deliberately not a full HTML5 decoder: anything outside this table
// is left alone so unexpected input stays visible downstream.
var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
	"&ndash;", "–",
	"&mdash;", "—",
	"&rsquo;", "’",
	"&lsquo;", "‘",
	"&rdquo;", "”",
	"&ldquo;", "“",
)

// invisibleReplacer drops zero-width and soft-hyphen characters that survive
// extraction but corrupt matching and display.
var invisibleReplacer = strings.NewReplacer(
	"​", "", // zero-width space
	"‌", "", // zero-width non-joiner
	"\uFEFF", "", // BOM / zero-width no-break space
	"­", "", // soft hyphen
)

// Clean removes HTML-like tags, decodes the fixed entity table, flattens
// newlines and tabs, strips invisible characters, and collapses whitespace.
func Clean(text string) string {
	if text == "" {
		return text
	}
	s := tagRE.ReplaceAllString(text, " ")
	s = entityReplacer.Replace(s)
	s = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(s)
	s = invisibleReplacer.Replace(s)
	return textnorm.CollapseSpaces(s)
}

// RepairEscapedPipes rewrites escaped pipe sequences that the extraction
// service sometimes emits inside event names, turning them into colons.
func RepairEscapedPipes(name string) string {
	s := strings.ReplaceAll(name, ` \ |`, ":")
	return strings.ReplaceAll(s, ` \|`, ":")
}
