// Package cli wires the catalog's commands: fetching sources, exporting
// calendars, and blacklist administration.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cartelera/internal/config"
	"cartelera/internal/dedup"
	"cartelera/internal/logger"
	"cartelera/internal/pipeline"
	"cartelera/internal/preferences"
	"cartelera/internal/rules"
	"cartelera/internal/store"
)

var (
	flagConfig  string
	flagFormat  string
	flagVerbose bool
)

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cartelera",
		Short: "Scrape, deduplicate and catalog live event listings",
		Long: `cartelera runs configured site scrapers, validates and normalizes the
extracted events, removes fuzzy duplicates, and persists the survivors.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to the YAML config file")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newBlacklistCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds everything a command needs after wiring.
type app struct {
	cfg       config.Config
	log       *logger.Logger
	events    store.EventStore
	blacklist store.BlacklistStore
	rules     *rules.Engine
	dedup     *dedup.Engine
	pipeline  *pipeline.Pipeline

	pg *store.PostgresStore
}

// buildApp loads config and wires stores and engines. A configured database
// DSN selects Postgres; otherwise everything runs against the in-memory
// store, which only makes sense for dry runs and tests.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	level := logger.Level(strings.ToUpper(cfg.LogLevel))
	if flagVerbose {
		level = logger.LevelDebug
	}
	log := logger.New(level, os.Stderr)
	logger.SetDefault(log)

	a := &app{cfg: cfg, log: log}

	if cfg.Database.DSN != "" {
		pg, err := store.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		a.pg = pg
		a.events = pg
		a.blacklist = pg
	} else {
		mem := store.NewMemoryStore()
		a.events = mem
		a.blacklist = mem
		log.Warn("no database configured, using in-memory store", nil)
	}

	var prefs rules.PreferenceChecker
	if cfg.Preferences.Path != "" {
		storage, err := preferences.NewFileStorage(cfg.Preferences.Path)
		if err != nil {
			return nil, fmt.Errorf("opening preferences: %w", err)
		}
		prefs = preferences.NewService(storage, preferences.DefaultTTL)
	}

	a.rules = rules.New(cfg.Rules, prefs)
	a.dedup = dedup.New(cfg.Dedup.Engine(), nil)
	a.pipeline = pipeline.New(cfg.Pipeline, a.events, a.blacklist, a.rules, a.dedup, log)
	return a, nil
}

func (a *app) Close() {
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.log.Warn("closing database", logger.Fields{"error": err.Error()})
		}
	}
}
