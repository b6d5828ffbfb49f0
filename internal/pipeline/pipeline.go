// Package pipeline chains the per-file stages: parse, sanitize, filter by
// date, normalize tags, resolve locations, group occurrences, and normalize
// names. Each source file is processed independently; a bad row is dropped,
// never fatal.
package pipeline

import (
	"strings"

	"github.com/cityatlas/eventpipe/internal/emoji"
	"github.com/cityatlas/eventpipe/internal/event"
	"github.com/cityatlas/eventpipe/internal/filter"
	"github.com/cityatlas/eventpipe/internal/group"
	"github.com/cityatlas/eventpipe/internal/location"
	"github.com/cityatlas/eventpipe/internal/logger"
	"github.com/cityatlas/eventpipe/internal/names"
	"github.com/cityatlas/eventpipe/internal/sanitize"
	"github.com/cityatlas/eventpipe/internal/table"
	"github.com/cityatlas/eventpipe/internal/tags"
)

// virtualKeywords mark rows held online rather than at a venue.
var virtualKeywords = []string{"virtual", "online", "livestream"}

// Processor carries the per-run read-only state. Both Index and Rules are
// built once and shared; the processor never mutates them.
type Processor struct {
	Index  *location.Index
	Rules  *tags.Rules
	Window filter.Window
}

// New creates a processor over the run's reference data and time window.
func New(index *location.Index, rules *tags.Rules, window filter.Window) *Processor {
	return &Processor{Index: index, Rules: rules, Window: window}
}

// ProcessFile turns one source file's table text into grouped, resolved
// events. Empty or unparseable text yields an empty slice.
func (p *Processor) ProcessFile(tableText, siteName string) []*event.Event {
	rows := table.Parse(tableText)
	logger.AddCounter("rows.parsed", int64(len(rows)))

	g := group.New()
	for _, raw := range rows {
		row, ok := p.processRow(raw, siteName)
		if !ok {
			continue
		}
		g.Add(row)
	}

	events := g.Events()
	for _, e := range events {
		e.Name = names.Normalize(e.Name)
		e.ShortName = names.Short(e.Name)
	}
	return events
}

// processRow sanitizes, filters, and enriches one raw row. ok=false means
// the row was dropped by the date window or the removable-tag rule.
func (p *Processor) processRow(raw event.RawRow, siteName string) (group.Row, bool) {
	name := sanitize.RepairEscapedPipes(sanitize.Clean(raw.Name))
	loc := sanitize.Clean(raw.Location)
	subloc := sanitize.Clean(raw.Sublocation)
	description := sanitize.Clean(raw.Description)

	if !p.Window.RowInRange(raw.StartDate, raw.EndDate) {
		logger.IncrCounter("rows.outside_window")
		return group.Row{}, false
	}

	tagList := tags.Normalize(raw.Hashtags, p.Rules)
	if isVirtual(loc) && !containsTag(tagList, "Virtual") {
		tagList = append(tagList, "Virtual")
	}
	if filter.RemovedByTags(tagList, p.Rules) {
		logger.IncrCounter("rows.removed_by_tag")
		return group.Row{}, false
	}

	row := group.Row{
		Name:        name,
		Location:    loc,
		Sublocation: subloc,
		Description: description,
		URL:         raw.URL,
		Tags:        tagList,
		StartDate:   strings.TrimSpace(raw.StartDate),
		StartTime:   raw.StartTime,
		EndDate:     strings.TrimSpace(raw.EndDate),
		EndTime:     raw.EndTime,
	}

	if info, ok := location.Resolve(loc, subloc, siteName, name, p.Index); ok {
		lat, lng := info.Lat, info.Lng
		row.Lat, row.Lng = &lat, &lng
		row.Emoji = emoji.Resolve(raw.Emoji, info.Emoji)
	} else {
		logger.IncrCounter("locations.unresolved")
		logger.Warn("could not resolve location", logger.Fields{
			"event":       name,
			"location":    loc,
			"sublocation": subloc,
			"site":        siteName,
		})
		row.Emoji = emoji.Resolve(raw.Emoji, "")
	}

	return row, true
}

func isVirtual(locationText string) bool {
	lower := strings.ToLower(locationText)
	for _, kw := range virtualKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func containsTag(tagList []string, tag string) bool {
	for _, t := range tagList {
		if t == tag {
			return true
		}
	}
	return false
}
