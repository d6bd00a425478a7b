package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "INFO" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Rules.MaxDaysInFuture != 365 {
		t.Errorf("MaxDaysInFuture = %d", cfg.Rules.MaxDaysInFuture)
	}
	if cfg.Database.DSN != "" {
		t.Errorf("DSN = %q, expected in-memory default", cfg.Database.DSN)
	}
}

func TestLoadFile(t *testing.T) {
	yaml := `
logLevel: DEBUG
metricsAddr: ":9102"
database:
  dsn: postgres://cartelera@localhost/cartelera
dedup:
  dateTolerance: 12h
  titleThreshold: 0.9
rules:
  maxDaysInFuture: 180
pipeline:
  currency: ARS
preferences:
  path: ~/.cartelera/preferences.json
sources:
  - name: agenda-madrid
    baseUrl: https://agenda.example
    listing:
      url: https://agenda.example/eventos
      item: article.evento
    fields:
      title:
        selector: h2
`
	path := filepath.Join(t.TempDir(), "cartelera.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "DEBUG" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.MetricsAddr != ":9102" {
		t.Errorf("MetricsAddr = %q", cfg.MetricsAddr)
	}
	if cfg.Rules.MaxDaysInFuture != 180 {
		t.Errorf("MaxDaysInFuture = %d", cfg.Rules.MaxDaysInFuture)
	}
	if got := cfg.Dedup.Engine().DateTolerance; got != 12*time.Hour {
		t.Errorf("DateTolerance = %v", got)
	}
	if cfg.Pipeline.Currency != "ARS" {
		t.Errorf("Currency = %q", cfg.Pipeline.Currency)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "agenda-madrid" {
		t.Errorf("Sources = %+v", cfg.Sources)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CARTELERA_DATABASE_DSN", "postgres://env@localhost/cartelera")
	t.Setenv("CARTELERA_LOG_LEVEL", "WARN")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.DSN != "postgres://env@localhost/cartelera" {
		t.Errorf("DSN = %q", cfg.Database.DSN)
	}
	if cfg.LogLevel != "WARN" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
