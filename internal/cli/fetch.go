package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cartelera/internal/event"
	"cartelera/internal/logger"
	"cartelera/internal/metrics"
	"cartelera/internal/notifier"
	"cartelera/internal/orchestrator"
	"cartelera/internal/render"
	"cartelera/internal/scrape"
	"cartelera/internal/store"
)

var (
	flagSources  []string
	flagMaxPages int
	flagDryRun   bool
	flagTimeout  time.Duration
)

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run the configured scrapers and ingest the results",
		RunE:  runFetch,
	}

	cmd.Flags().StringSliceVar(&flagSources, "source", nil, "Only run these sources (default: all)")
	cmd.Flags().IntVar(&flagMaxPages, "max-pages", 0, "Override the per-source page limit")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Scrape and validate without persisting")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 15*time.Minute, "Overall run deadline")

	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if flagDryRun {
		// A throwaway store keeps the whole pipeline exercised without
		// touching persisted data.
		mem := store.NewMemoryStore()
		a.pipeline = a.pipeline.WithStores(mem, nil)
	}

	sources := selectSources(a.cfg.Sources, flagSources)
	if len(sources) == 0 {
		return fmt.Errorf("no sources selected")
	}

	var browser *render.Browser
	defer func() {
		if browser != nil {
			browser.Shutdown()
		}
	}()

	orch := orchestrator.New(a.log)
	for _, sourceCfg := range sources {
		var renderer scrape.Renderer
		if sourceCfg.Render {
			if browser == nil {
				browser = render.New(a.log)
			}
			renderer = browser
		}
		scraper, err := scrape.New(sourceCfg, renderer, a.log)
		if err != nil {
			return fmt.Errorf("compiling scraper: %w", err)
		}
		orch.Register(&pagedSource{scraper: scraper, maxPages: flagMaxPages})
	}

	var exporter *metrics.Exporter
	if a.cfg.MetricsAddr != "" && !flagDryRun {
		exporter = metrics.NewExporter(a.cfg.MetricsAddr)
		go func() {
			if err := exporter.Serve(); err != nil {
				a.log.Warn("metrics listener failed", logger.Fields{"error": err.Error()})
			}
		}()
	}

	result := orch.Run(ctx, a.pipeline)
	summary := result.Summary

	if exporter != nil {
		exporter.ObserveRun(result, summary)
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := exporter.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("metrics shutdown failed", logger.Fields{"error": err.Error()})
		}
	}

	if err := (&notifier.LogNotifier{Log: a.log}).Notify(result, summary); err != nil {
		a.log.Warn("publishing run report failed", logger.Fields{"error": err.Error()})
	}

	return WriteRun(cmd.OutOrStdout(), result, summary, OutputFormat(flagFormat))
}

// selectSources filters the configured sources by name. An empty filter
// keeps everything.
func selectSources(configured []scrape.Config, names []string) []scrape.Config {
	if len(names) == 0 {
		return configured
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	selected := make([]scrape.Config, 0, len(names))
	for _, cfg := range configured {
		if wanted[cfg.Name] {
			selected = append(selected, cfg)
		}
	}
	return selected
}

// pagedSource applies the run's page-limit override to a scraper.
type pagedSource struct {
	scraper  *scrape.Scraper
	maxPages int
}

func (p *pagedSource) Name() string { return p.scraper.Name() }

func (p *pagedSource) Fetch(ctx context.Context) ([]event.RawEvent, error) {
	return p.scraper.FetchWith(ctx, scrape.Options{MaxPages: p.maxPages})
}
