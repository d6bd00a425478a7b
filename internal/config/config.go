// Package config loads the application configuration: a YAML file with
// environment-variable overrides for deployment secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"cartelera/internal/dedup"
	"cartelera/internal/logger"
	"cartelera/internal/pipeline"
	"cartelera/internal/rules"
	"cartelera/internal/scrape"
)

const (
	databaseDSNEnv = "CARTELERA_DATABASE_DSN"
	logLevelEnv    = "CARTELERA_LOG_LEVEL"
	metricsAddrEnv = "CARTELERA_METRICS_ADDR"
)

// Config holds every setting the application needs.
type Config struct {
	Database    DatabaseConfig  `yaml:"database"`
	LogLevel    string          `yaml:"logLevel"`
	MetricsAddr string          `yaml:"metricsAddr"` // empty disables the endpoint
	Rules       rules.Config    `yaml:"rules"`
	Dedup       DedupConfig     `yaml:"dedup"`
	Pipeline    pipeline.Config `yaml:"pipeline"`
	Preferences PreferencesRef  `yaml:"preferences"`
	Sources     []scrape.Config `yaml:"sources"`
}

// DatabaseConfig holds Postgres connection details. An empty DSN selects the
// in-memory store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// PreferencesRef points at the preference rules file.
type PreferencesRef struct {
	Path string `yaml:"path"`
}

// DedupConfig is the YAML-facing form of the dedup thresholds.
type DedupConfig struct {
	DateTolerance  scrape.Duration `yaml:"dateTolerance"`
	TitleThreshold float64         `yaml:"titleThreshold"`
	VenueThreshold float64         `yaml:"venueThreshold"`
}

// Engine converts to the dedup engine's config.
func (d DedupConfig) Engine() dedup.Config {
	return dedup.Config{
		DateTolerance:  time.Duration(d.DateTolerance),
		TitleThreshold: d.TitleThreshold,
		VenueThreshold: d.VenueThreshold,
	}
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		LogLevel: string(logger.LevelInfo),
		Rules:    rules.DefaultConfig(),
	}
}

// Load reads the YAML file at path when non-empty, then applies environment
// overrides. Source definitions inside the file are validated lazily, when
// scrapers are compiled.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(metricsAddrEnv); v != "" {
		c.MetricsAddr = v
	}
}
