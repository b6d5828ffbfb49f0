// Package config loads the YAML run configuration: data directories,
// reference data paths, and the publication window parameters.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cityatlas/eventpipe/internal/export"
)

// Config is the top-level run configuration.
type Config struct {
	// DataDir holds the extracted/ and processed/ trees.
	DataDir string `yaml:"data_dir"`

	// OutputDir receives the four publication artifacts.
	OutputDir string `yaml:"output_dir"`

	// LocationsPath is the canonical venue registry (required at run time).
	LocationsPath string `yaml:"locations_path"`

	// TagsPath is the tag rules file (optional; absence degrades to no rules).
	TagsPath string `yaml:"tags_path"`

	// WindowDays is how far ahead events are published.
	WindowDays int `yaml:"window_days"`

	// MaxSpanDays rejects events longer than this many days.
	MaxSpanDays int `yaml:"max_span_days"`

	// InitDays is the lookahead for the fast-loading init subset.
	InitDays int `yaml:"init_days"`

	// InitBox is the geographic bound for the init subset.
	InitBox export.BoundingBox `yaml:"init_box"`

	// Concurrency bounds in-flight extraction calls.
	Concurrency int `yaml:"concurrency"`
}

// Default returns the stock configuration, centered on the core NYC area.
func Default() *Config {
	return &Config{
		DataDir:       "event_data",
		OutputDir:     "public/data",
		LocationsPath: "data/locations.json",
		TagsPath:      "data/tags.json",
		WindowDays:    90,
		MaxSpanDays:   400,
		InitDays:      7,
		InitBox: export.BoundingBox{
			LatMin: 40.686695,
			LatMax: 40.749285,
			LngMin: -74.014855,
			LngMax: -73.959385,
		},
		Concurrency: 5,
	}
}

// Normalize fills zero values with defaults so partial configs behave.
func (c *Config) Normalize() {
	d := Default()
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if c.LocationsPath == "" {
		c.LocationsPath = d.LocationsPath
	}
	if c.TagsPath == "" {
		c.TagsPath = d.TagsPath
	}
	if c.WindowDays <= 0 {
		c.WindowDays = d.WindowDays
	}
	if c.MaxSpanDays <= 0 {
		c.MaxSpanDays = d.MaxSpanDays
	}
	if c.InitDays <= 0 {
		c.InitDays = d.InitDays
	}
	if c.InitBox == (export.BoundingBox{}) {
		c.InitBox = d.InitBox
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
}

// Load reads the configuration from path. A missing file yields the default
// configuration; a malformed file is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Normalize()
	return &cfg, nil
}
