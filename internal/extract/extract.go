// Package extract is the thin client side of the external Extraction
// Service: it chunks long page content at natural boundaries, builds the
// canonical extraction prompt, retries failed calls, and concatenates
// chunked responses back into a single table. The service itself is an
// external collaborator behind the Extractor interface.
package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cityatlas/eventpipe/internal/table"
)

// DefaultChunkSize is the largest content slice sent in one extraction call.
const DefaultChunkSize = 90000

// Extractor produces semi-structured table text from a prompt. Implemented
// outside this module; the pipeline only depends on this contract.
type Extractor interface {
	Extract(ctx context.Context, prompt string) (string, error)
}

// Source is one page of content to extract events from.
type Source struct {
	Name    string // friendly site name
	URL     string // page URL, quoted in the prompt
	Notes   string // optional site-specific instructions
	Content string // page text
}

var headingRE = regexp.MustCompile(`\n###?`)

// Chunk splits content into slices of at most size bytes, preferring to cut
// after the last heading in a slice, then at a blank line in its final
// stretch, so events are not split mid-description.
func Chunk(content string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks []string
	start := 0
	for start < len(content) {
		end := start + size
		if end < len(content) {
			segment := content[start:end]
			split := -1
			if locs := headingRE.FindAllStringIndex(segment, -1); len(locs) > 0 {
				split = start + locs[len(locs)-1][0]
			}
			if split > start {
				end = split
			} else if searchEnd := end - size/10; searchEnd > start {
				if pos := strings.LastIndex(content[start:searchEnd], "\n\n"); pos > 0 {
					end = start + pos
				}
			}
		} else {
			end = len(content)
		}
		chunks = append(chunks, content[start:end])
		if end <= start {
			break
		}
		start = end
	}
	return chunks
}

// Prompt builds the canonical extraction prompt for one content chunk.
func Prompt(src Source, content string, today time.Time) string {
	noteSection := ""
	if src.Notes != "" {
		noteSection = "Note: " + src.Notes
	}
	header := "| " + strings.Join(table.Columns, " | ") + " |"
	return fmt.Sprintf(`Today's date is %s. We are assembling a database of upcoming events in New York City. Currently, we are looking at %s (%s). Based on the text content retrieved from the website, please identify and list any upcoming events with dates, times, locations, and descriptions. Format your output as a Markdown table with the following header:

%s

Some pointers about these fields:

- "name" is the name of the event
- "location" is the name of the venue where the event is being held
- "sublocation" is optional and names a spot within the venue (e.g., rooftop, 5th floor)
- "start_date" is the date of the event in YYYY-MM-DD format
- "start_time" is the time of the event (e.g., 4:00 PM)
- "end_date" and "end_time" are optional
- "description" should be 1-3 sentences
- "url" should be a url for the specific event if available, otherwise %s
- "hashtags" are 4-7 CamelCase tags describing the event; avoid location-specific tags
- "emoji" is a single emoji that describes the event

Only include events that take place in the NYC area within the next 3 months. If an event has multiple dates or times, output a separate row for each instance. If no events are present, output an empty header.

%s

Here is the content:

%s`, today.Format("2006-01-02"), src.Name, src.URL, header, src.URL, noteSection, content)
}

// EmptyTable is the canonical zero-event response: header and separator with
// no data rows.
func EmptyTable() string {
	header := "| " + strings.Join(table.Columns, " | ") + " |"
	separator := "|" + strings.Repeat("---|", len(table.Columns))
	return header + "\n" + separator
}

// Combine stitches per-chunk responses into one table. The first response
// keeps its header; later responses contribute only their data rows, with
// repeated headers and separators dropped.
func Combine(responses []string) string {
	var out string
	for i, resp := range responses {
		resp = strings.TrimSpace(resp)
		if i == 0 {
			out = resp
			continue
		}
		idx := strings.Index(resp, "|---")
		if idx < 0 {
			out += "\n" + resp
			continue
		}
		rest := resp[idx:]
		if nl := strings.Index(rest, "\n"); nl >= 0 {
			rest = rest[nl+1:]
		} else {
			rest = ""
		}
		var rows []string
		for _, line := range strings.Split(strings.TrimSpace(rest), "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "|---") {
				rows = append(rows, line)
			}
		}
		if len(rows) > 0 {
			out += "\n" + strings.Join(rows, "\n")
		}
	}
	return out
}
