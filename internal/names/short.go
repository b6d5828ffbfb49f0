package names

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cityatlas/eventpipe/internal/textnorm"
)

// longNameThreshold is the length above which subtitle extraction and
// trailing-clause removal kick in.
const longNameThreshold = 40

var categoryPrefixREs = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^Exhibition\s*[–:\-]\s*`),
	regexp.MustCompile(`(?i)^Talks?\s*[:\-]\s*`),
	regexp.MustCompile(`(?i)^Screening\s*[:\-]\s*`),
	regexp.MustCompile(`(?i)^Performance\s*[:\-]\s*`),
	regexp.MustCompile(`(?i)^Concert\s*[:\-]\s*`),
	regexp.MustCompile(`(?i)^Event\s*[:\-]\s*`),
}

var (
	trailingClauseRE = regexp.MustCompile(`\s+[–\-]\s+.*$`)
	parentheticalRE  = regexp.MustCompile(`\s*\([^)]*\)`)
	qaSuffixRE       = regexp.MustCompile(`\s*[-–]\s*Q&A\s+with\s+.*$`)
	pipeWithRE       = regexp.MustCompile(`\s*\\?\s*\|\s*with\s+.*$`)
	wSlashSuffixRE   = regexp.MustCompile(`\s+w/\s+.*$`)
	withSuffixRE     = regexp.MustCompile(`(?i)\s+with\s+.*$`)
	atSuffixRE       = regexp.MustCompile(`(?i)\s+at\s+.*$`)
	atSignSuffixRE   = regexp.MustCompile(`\s*@.*$`)
	inNYCSuffixRE    = regexp.MustCompile(`\s+in\s+NYC\s*[-–].*$`)
	weekdaySuffixRE  = regexp.MustCompile(`\s*[-–]\s*(?:Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday),?\s+.*$`)
)

// Short derives the abbreviated display name: category prefixes, venue and
// performer suffixes, parentheticals, and trailing date ranges are stripped,
// and long titles are cut down to their subtitle.
func Short(name string) string {
	if name == "" {
		return name
	}
	short := name

	for _, re := range categoryPrefixREs {
		short = re.ReplaceAllString(short, "")
	}

	// For long "Series: Title" names, keep the substantial subtitle.
	if utf8.RuneCountInString(short) > longNameThreshold && strings.Contains(short, ":") {
		parts := strings.SplitN(short, ":", 2)
		if subtitle := strings.TrimSpace(parts[1]); utf8.RuneCountInString(subtitle) > 3 {
			short = subtitle
		}
	}

	if utf8.RuneCountInString(short) > longNameThreshold {
		short = trailingClauseRE.ReplaceAllString(short, "")
	}

	short = parentheticalRE.ReplaceAllString(short, "")
	short = qaSuffixRE.ReplaceAllString(short, "")
	short = pipeWithRE.ReplaceAllString(short, "")
	short = wSlashSuffixRE.ReplaceAllString(short, "")
	short = withSuffixRE.ReplaceAllString(short, "")
	short = atSuffixRE.ReplaceAllString(short, "")
	short = atSignSuffixRE.ReplaceAllString(short, "")
	short = inNYCSuffixRE.ReplaceAllString(short, "")
	short = weekdaySuffixRE.ReplaceAllString(short, "")

	return textnorm.CollapseSpaces(short)
}
