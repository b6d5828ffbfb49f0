// Package storage manages the on-disk layout of the pipeline: extracted
// table text under extracted/YYYYMMDD/<site>.md and per-source event output
// under processed/YYYYMMDD/<site>.json.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cityatlas/eventpipe/internal/event"
	"github.com/cityatlas/eventpipe/internal/logger"
)

var (
	dateDirRE    = regexp.MustCompile(`^\d{8}$`)
	datePrefixRE = regexp.MustCompile(`^\d{8}_`)
)

// Store handles persistence under a single data directory.
type Store struct {
	dataDir string
}

// New creates a Store rooted at dataDir, expanding a leading ~ and creating
// the directory if needed.
func New(dataDir string) (*Store, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{dataDir: dataDir}, nil
}

// ExtractedDir returns the root of the extracted table-text tree.
func (s *Store) ExtractedDir() string {
	return filepath.Join(s.dataDir, "extracted")
}

// ProcessedDir returns the root of the per-source event output tree.
func (s *Store) ProcessedDir() string {
	return filepath.Join(s.dataDir, "processed")
}

// SourceFile identifies one extracted input and its processing output.
type SourceFile struct {
	Date string // YYYYMMDD batch directory
	Name string // file base name without extension
	Site string // friendly site name used for resolver fallback
	Path string // full path to the extracted .md file
}

// OutputPath is where this source's processed events are written.
func (s *Store) OutputPath(f SourceFile) string {
	return filepath.Join(s.ProcessedDir(), f.Date, f.Name+".json")
}

// HasProcessed reports whether this source already has an output file.
func (s *Store) HasProcessed(f SourceFile) bool {
	_, err := os.Stat(s.OutputPath(f))
	return err == nil
}

// ListExtracted returns every extracted .md file across the dated
// subdirectories, in lexical order.
func (s *Store) ListExtracted() ([]SourceFile, error) {
	root := s.ExtractedDir()
	dateDirs, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading extracted directory: %w", err)
	}

	var files []SourceFile
	for _, dd := range dateDirs {
		if !dd.IsDir() || !dateDirRE.MatchString(dd.Name()) {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(root, dd.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", dd.Name(), err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				continue
			}
			base := strings.TrimSuffix(entry.Name(), ".md")
			base = datePrefixRE.ReplaceAllString(base, "")
			files = append(files, SourceFile{
				Date: dd.Name(),
				Name: base,
				Site: SiteName(base),
				Path: filepath.Join(root, dd.Name(), entry.Name()),
			})
		}
	}
	return files, nil
}

// SiteName derives the friendly source site name from a file base name:
// underscores become spaces, lowercased. Used as the resolver's last-resort
// query.
func SiteName(base string) string {
	return strings.ToLower(strings.ReplaceAll(base, "_", " "))
}

// ReadExtracted returns the raw table text for a source.
func (s *Store) ReadExtracted(f SourceFile) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("reading extracted file: %w", err)
	}
	return string(data), nil
}

// WriteProcessed writes the source's events as an indented JSON array. A nil
// slice writes an empty array: an empty extraction result is data, not an
// error.
func (s *Store) WriteProcessed(f SourceFile, events []*event.Event) error {
	dir := filepath.Join(s.ProcessedDir(), f.Date)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating processed directory: %w", err)
	}
	if events == nil {
		events = []*event.Event{}
	}
	return writeJSON(s.OutputPath(f), events)
}

// LoadAllProcessed merges every per-source output across all dated
// directories. Unreadable files are logged and skipped; one bad file never
// aborts the batch.
func (s *Store) LoadAllProcessed() ([]*event.Event, error) {
	root := s.ProcessedDir()
	dateDirs, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading processed directory: %w", err)
	}

	var all []*event.Event
	for _, dd := range dateDirs {
		if !dd.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(root, dd.Name()))
		if err != nil {
			logger.Warn("skipping unreadable processed directory", logger.Fields{"dir": dd.Name()})
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			path := filepath.Join(root, dd.Name(), entry.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Warn("skipping unreadable processed file", logger.Fields{"path": path})
				continue
			}
			var events []*event.Event
			if err := json.Unmarshal(data, &events); err != nil {
				logger.Warn("skipping unparseable processed file", logger.Fields{"path": path})
				continue
			}
			all = append(all, events...)
		}
	}
	return all, nil
}

func writeJSON(path string, v interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}
