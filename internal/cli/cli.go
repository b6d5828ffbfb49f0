// Package cli wires the processing and export stages into the eventpipe
// command. Crawling, extraction-service credentials, and artifact upload live
// outside this binary.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cityatlas/eventpipe/internal/config"
	"github.com/cityatlas/eventpipe/internal/dedup"
	"github.com/cityatlas/eventpipe/internal/event"
	"github.com/cityatlas/eventpipe/internal/export"
	"github.com/cityatlas/eventpipe/internal/filter"
	"github.com/cityatlas/eventpipe/internal/location"
	"github.com/cityatlas/eventpipe/internal/logger"
	"github.com/cityatlas/eventpipe/internal/pipeline"
	"github.com/cityatlas/eventpipe/internal/storage"
	"github.com/cityatlas/eventpipe/internal/tags"
)

// Exit codes returned by the binary.
const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig  string
	flagDataDir string
	flagOutDir  string
	flagVerbose bool
)

// NewRootCmd creates the eventpipe root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eventpipe",
		Short: "Resolve extracted event tables into publishable datasets",
		Long: `eventpipe turns semi-structured event tables into a clean, deduplicated,
geo-located dataset: per-source processing first, then a cross-source export.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagVerbose {
				logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
			}
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config (defaults used when absent)")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Override the configured data directory")
	cmd.PersistentFlags().StringVar(&flagOutDir, "out-dir", "", "Override the configured output directory")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newProcessCmd(), newExportCmd(), newRunCmd())
	return cmd
}

func newProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Resolve each extracted table into per-source event JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runProcess(cfg)
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Deduplicate all processed events and write the publication artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runExport(cfg)
		},
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process every pending source, then export",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := runProcess(cfg); err != nil {
				return err
			}
			return runExport(cfg)
		},
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagOutDir != "" {
		cfg.OutputDir = flagOutDir
	}
	return cfg, nil
}

// runProcess resolves every pending extracted file. An unreadable location
// registry is fatal; individual file failures are logged and skipped.
func runProcess(cfg *config.Config) error {
	registry, err := location.LoadRegistry(cfg.LocationsPath)
	if err != nil {
		return fmt.Errorf("location registry is required: %w", err)
	}
	index := location.BuildIndex(registry)
	logger.Info("location index built", logger.Fields{"keys": index.Len()})

	rules := tags.LoadRules(cfg.TagsPath)

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	window := filter.NewWindow(time.Now(), cfg.WindowDays, cfg.MaxSpanDays)
	proc := pipeline.New(index, rules, window)

	files, err := store.ListExtracted()
	if err != nil {
		return err
	}

	processed := 0
	for _, f := range files {
		if store.HasProcessed(f) {
			continue
		}
		text, err := store.ReadExtracted(f)
		if err != nil {
			logger.Error("skipping unreadable source", logger.Fields{"source": f.Name}, err)
			continue
		}
		events := proc.ProcessFile(text, f.Site)
		if err := store.WriteProcessed(f, events); err != nil {
			logger.Error("failed to write processed events", logger.Fields{"source": f.Name}, err)
			continue
		}
		logger.Info("processed source", logger.Fields{
			"source": f.Name,
			"date":   f.Date,
			"events": len(events),
		})
		processed++
	}

	logger.Info("processing complete", logger.Fields{
		"sources":  processed,
		"counters": logger.CountersSnapshot(),
	})
	return nil
}

// runExport merges all processed output, deduplicates across sources,
// filters to the publication window, and writes the init/full artifacts.
func runExport(cfg *config.Config) error {
	registry, err := location.LoadRegistry(cfg.LocationsPath)
	if err != nil {
		return fmt.Errorf("location registry is required: %w", err)
	}

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	all, err := store.LoadAllProcessed()
	if err != nil {
		return err
	}

	deduped := dedup.Deduplicate(all)

	window := filter.NewWindow(time.Now(), cfg.WindowDays, cfg.MaxSpanDays)
	inWindow := make([]*event.Event, 0, len(deduped))
	for _, e := range deduped {
		if window.EventInRange(e) {
			inWindow = append(inWindow, e)
		}
	}

	initLimit := window.Today.AddDate(0, 0, cfg.InitDays)
	if err := export.Run(inWindow, registry, cfg.InitBox, initLimit, cfg.OutputDir); err != nil {
		return err
	}

	logger.Info("export complete", logger.Fields{
		"loaded":   len(all),
		"deduped":  len(deduped),
		"exported": len(inWindow),
	})
	return nil
}
