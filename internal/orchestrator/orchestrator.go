// Package orchestrator runs every registered event source concurrently and
// aggregates their results. A failing or panicking source never interrupts
// the rest of the run.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cartelera/internal/event"
	"cartelera/internal/logger"
	"cartelera/internal/pipeline"
)

// Source is anything that can produce raw events for a run. Scrapers are
// the main implementation; imports and API clients fit the same shape.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]event.RawEvent, error)
}

// SourceResult reports one source's outcome within a run.
type SourceResult struct {
	Name       string        `json:"name"`
	Success    bool          `json:"success"`
	EventCount int           `json:"eventCount"`
	Duration   time.Duration `json:"duration"`
	Error      string        `json:"error,omitempty"`
}

// Result aggregates a full run across all sources. Summary is filled by Run
// once the fetched events have been handed to the ingestion pipeline.
type Result struct {
	CheckedAt   time.Time        `json:"checkedAt"`
	Sources     []SourceResult   `json:"sources"`
	TotalEvents int              `json:"totalEvents"`
	Failed      int              `json:"failed"`
	Duration    time.Duration    `json:"duration"`
	Summary     pipeline.Summary `json:"summary"`
	Events      []event.RawEvent `json:"-"`
}

// Ingestor consumes a run's combined raw events and accounts for every one
// of them. *pipeline.Pipeline is the main implementation.
type Ingestor interface {
	Ingest(ctx context.Context, raws []event.RawEvent) pipeline.Summary
}

// Orchestrator holds the source registry. Safe for concurrent registration,
// though sources are normally registered once at startup.
type Orchestrator struct {
	mu      sync.Mutex
	sources []Source
	log     *logger.Logger
}

// New creates an empty orchestrator. log may be nil to use the package
// default.
func New(log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.Default()
	}
	return &Orchestrator{log: log}
}

// Register adds a source. Registering a second source with the same name is
// a no-op, so repeated wiring during startup stays harmless.
func (o *Orchestrator) Register(s Source) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, existing := range o.sources {
		if existing.Name() == s.Name() {
			return
		}
	}
	o.sources = append(o.sources, s)
}

// ClearSources empties the registry.
func (o *Orchestrator) ClearSources() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sources = nil
}

// SourceNames lists the registered sources in registration order.
func (o *Orchestrator) SourceNames() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	names := make([]string, len(o.sources))
	for i, s := range o.sources {
		names[i] = s.Name()
	}
	return names
}

// FetchAll runs every registered source concurrently and waits for all of
// them to settle. The result carries one entry per source in registration
// order, plus the combined events of the successful ones.
func (o *Orchestrator) FetchAll(ctx context.Context) Result {
	o.mu.Lock()
	sources := make([]Source, len(o.sources))
	copy(sources, o.sources)
	o.mu.Unlock()

	start := time.Now()
	results := make([]SourceResult, len(sources))
	collected := make([][]event.RawEvent, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			events, res := o.fetchOne(ctx, src)
			results[i] = res
			collected[i] = events
		}(i, src)
	}
	wg.Wait()

	result := Result{
		CheckedAt: start.UTC(),
		Sources:   results,
		Duration:  time.Since(start),
	}
	for i, res := range results {
		if res.Success {
			result.TotalEvents += res.EventCount
			result.Events = append(result.Events, collected[i]...)
		} else {
			result.Failed++
		}
	}

	o.log.Info("fetch run finished", logger.Fields{
		"sources":     len(sources),
		"failed":      result.Failed,
		"totalEvents": result.TotalEvents,
		"duration":    result.Duration.String(),
	})
	return result
}

// Run fetches every registered source and hands the combined events to ing,
// merging the ingestion counters into the run result.
func (o *Orchestrator) Run(ctx context.Context, ing Ingestor) Result {
	result := o.FetchAll(ctx)
	result.Summary = ing.Ingest(ctx, result.Events)
	return result
}

// fetchOne runs a single source, converting panics into failed results so
// one bad scraper cannot take down the run.
func (o *Orchestrator) fetchOne(ctx context.Context, src Source) (events []event.RawEvent, res SourceResult) {
	res = SourceResult{Name: src.Name()}
	start := time.Now()

	defer func() {
		res.Duration = time.Since(start)
		if r := recover(); r != nil {
			events = nil
			res.Success = false
			res.EventCount = 0
			res.Error = fmt.Sprintf("panic: %v", r)
			logger.IncrCounter("orchestrator.source_panics")
			o.log.Error("source panicked", logger.Fields{"source": src.Name()},
				fmt.Errorf("%v", r))
		}
	}()

	events, err := src.Fetch(ctx)
	if err != nil {
		res.Error = err.Error()
		logger.IncrCounter("orchestrator.source_failures")
		o.log.Error("source failed", logger.Fields{"source": src.Name()}, err)
		return nil, res
	}

	res.Success = true
	res.EventCount = len(events)
	return events, res
}
