package tags

import (
	"encoding/json"
	"os"

	"github.com/cityatlas/eventpipe/internal/logger"
)

// rulesFile is the on-disk shape of the tag rules file.
type rulesFile struct {
	Rewrite map[string]string `json:"rewrite"`
	Exclude []string          `json:"exclude"`
	Remove  []string          `json:"remove"`
}

// Rules holds the tag policy for a run: rewrites override processed tag text,
// excluded tags are silently dropped, and removable tags void the whole
// event. Lookups are case- and space-insensitive. Read-only after load.
type Rules struct {
	rewrite map[string]string
	exclude map[string]struct{}
	remove  map[string]struct{}
}

// NewRules builds a rule set from literal mappings; keys and entries are
// normalized with LookupKey. Used directly in tests and by LoadRules.
func NewRules(rewrite map[string]string, exclude, remove []string) *Rules {
	r := &Rules{
		rewrite: make(map[string]string, len(rewrite)),
		exclude: make(map[string]struct{}, len(exclude)),
		remove:  make(map[string]struct{}, len(remove)),
	}
	for k, v := range rewrite {
		r.rewrite[LookupKey(k)] = v
	}
	for _, tag := range exclude {
		r.exclude[LookupKey(tag)] = struct{}{}
	}
	for _, tag := range remove {
		r.remove[LookupKey(tag)] = struct{}{}
	}
	return r
}

// LoadRules reads the tag rules file. A missing or unparseable file degrades
// to an empty rule set with no rewrites or exclusions, never an error.
func LoadRules(path string) *Rules {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("tag rules unavailable, using empty rules", logger.Fields{"path": path})
		return NewRules(nil, nil, nil)
	}
	var file rulesFile
	if err := json.Unmarshal(data, &file); err != nil {
		logger.Warn("tag rules unparseable, using empty rules", logger.Fields{"path": path})
		return NewRules(nil, nil, nil)
	}
	return NewRules(file.Rewrite, file.Exclude, file.Remove)
}

// RewriteFor returns the canonical form for a processed tag, if one is
// configured.
func (r *Rules) RewriteFor(tag string) (string, bool) {
	canonical, ok := r.rewrite[LookupKey(tag)]
	return canonical, ok
}

// Excluded reports whether the tag should be dropped from every event.
func (r *Rules) Excluded(tag string) bool {
	_, ok := r.exclude[LookupKey(tag)]
	return ok
}

// Removable reports whether carrying this tag voids the whole event.
func (r *Rules) Removable(tag string) bool {
	_, ok := r.remove[LookupKey(tag)]
	return ok
}
