// Package metrics exposes ingestion run metrics over a Prometheus endpoint.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cartelera/internal/orchestrator"
	"cartelera/internal/pipeline"
)

// Exporter registers the catalog metrics on its own registry and serves
// them over HTTP. Using a private registry keeps repeated construction in
// tests from colliding on the global one.
type Exporter struct {
	server *http.Server

	eventsScraped  *prometheus.CounterVec
	sourceFailures *prometheus.CounterVec
	sourceDuration *prometheus.SummaryVec

	eventsAccepted   prometheus.Counter
	eventsRejected   prometheus.Counter
	eventsDuplicates prometheus.Counter
	eventsUpdated    prometheus.Counter
	ingestErrors     prometheus.Counter

	runDuration  prometheus.Summary
	lastRunTS    prometheus.Gauge
	storedEvents prometheus.Gauge
}

// NewExporter builds the exporter listening on addr when served.
func NewExporter(addr string) *Exporter {
	e := &Exporter{
		eventsScraped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cartelera",
			Name:      "events_scraped_total",
			Help:      "Raw events produced per source",
		}, []string{"source"}),
		sourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cartelera",
			Name:      "source_failures_total",
			Help:      "Failed source runs, panics included",
		}, []string{"source"}),
		sourceDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Namespace: "cartelera",
			Name:      "source_duration_seconds",
			Help:      "Time spent fetching each source",
		}, []string{"source"}),
		eventsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cartelera",
			Name:      "events_accepted_total",
			Help:      "Events accepted as new inserts",
		}),
		eventsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cartelera",
			Name:      "events_rejected_total",
			Help:      "Events rejected by blacklist or validation rules",
		}),
		eventsDuplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cartelera",
			Name:      "events_duplicates_total",
			Help:      "Events dropped as duplicates of stored ones",
		}),
		eventsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cartelera",
			Name:      "events_updated_total",
			Help:      "Stored events replaced by richer incoming records",
		}),
		ingestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cartelera",
			Name:      "ingest_errors_total",
			Help:      "Events that hit canonicalization or persistence errors",
		}),
		runDuration: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace: "cartelera",
			Name:      "run_duration_seconds",
			Help:      "Total duration of a fetch run across all sources",
		}),
		lastRunTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cartelera",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix timestamp of the last completed run",
		}),
		storedEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cartelera",
			Name:      "stored_events",
			Help:      "Events written by the last run's batch",
		}),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		e.eventsScraped, e.sourceFailures, e.sourceDuration,
		e.eventsAccepted, e.eventsRejected, e.eventsDuplicates,
		e.eventsUpdated, e.ingestErrors,
		e.runDuration, e.lastRunTS, e.storedEvents,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	e.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return e
}

// ObserveRun records one completed fetch-and-ingest run.
func (e *Exporter) ObserveRun(result orchestrator.Result, summary pipeline.Summary) {
	for _, src := range result.Sources {
		e.sourceDuration.WithLabelValues(src.Name).Observe(src.Duration.Seconds())
		if src.Success {
			e.eventsScraped.WithLabelValues(src.Name).Add(float64(src.EventCount))
		} else {
			e.sourceFailures.WithLabelValues(src.Name).Inc()
		}
	}

	e.eventsAccepted.Add(float64(summary.Accepted))
	e.eventsRejected.Add(float64(summary.Rejected))
	e.eventsDuplicates.Add(float64(summary.Duplicates))
	e.eventsUpdated.Add(float64(summary.Updated))
	e.ingestErrors.Add(float64(len(summary.Errors)))

	e.runDuration.Observe(result.Duration.Seconds())
	e.lastRunTS.SetToCurrentTime()
	e.storedEvents.Set(float64(summary.Stored))
}

// Serve blocks on the HTTP listener until Shutdown or failure.
func (e *Exporter) Serve() error {
	err := e.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the HTTP listener.
func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.server.Shutdown(ctx)
}
