// Package table parses the pipe-delimited tables produced by the extraction
// service into raw rows. The header line is never trusted: the canonical
// column order is assumed regardless of what the service returned.
package table

import (
	"regexp"
	"strings"
	"time"

	"github.com/cityatlas/eventpipe/internal/event"
	"github.com/cityatlas/eventpipe/internal/logger"
)

// Columns is the canonical header, in order. The extraction prompt asks for
// exactly these columns; malformed headers are ignored in favor of this list.
var Columns = []string{
	"name", "location", "sublocation", "start_date", "start_time",
	"end_date", "end_time", "description", "url", "hashtags", "emoji",
}

const shiftedStartDate = 4 // where start_date lands when the name held a pipe

var cellSplitRE = regexp.MustCompile(`\s*\|\s*`)

// Parse turns raw table text into rows, preserving input order. Malformed
// rows are dropped and logged, never fatal. Empty or headerless input yields
// no rows.
func Parse(text string) []event.RawRow {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return nil
	}

	var rows []event.RawRow
	// lines[0] is the header, lines[1] the separator; both are skipped.
	for _, line := range lines[2:] {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "|---") {
			continue
		}

		cells := cellSplitRE.Split(strings.Trim(line, "|"), -1)
		for i, c := range cells {
			cells[i] = strings.TrimSpace(c)
		}

		switch {
		case len(cells) == len(Columns)+1:
			// A literal "|" inside the name shifts every cell right by one.
			// Accept only when the shifted start_date cell still parses.
			if _, err := time.Parse("2006-01-02", cells[shiftedStartDate]); err != nil {
				logger.Warn("dropping malformed row", logger.Fields{"cells": len(cells), "row": line})
				continue
			}
			merged := append([]string{cells[0] + " | " + cells[1]}, cells[2:]...)
			cells = merged
		case len(cells) == len(Columns)-1 && strings.HasSuffix(line, "|"):
			// Trailing optional field missing; pad it.
			cells = append(cells, "")
		case len(cells) != len(Columns):
			logger.Warn("dropping malformed row", logger.Fields{"cells": len(cells), "row": line})
			continue
		}

		rows = append(rows, event.RawRow{
			Name:        cells[0],
			Location:    cells[1],
			Sublocation: cells[2],
			StartDate:   cells[3],
			StartTime:   cells[4],
			EndDate:     cells[5],
			EndTime:     cells[6],
			Description: cells[7],
			URL:         cells[8],
			Hashtags:    cells[9],
			Emoji:       cells[10],
		})
	}
	return rows
}
