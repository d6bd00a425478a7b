// Package pipeline turns raw scraped records into persisted canonical
// events: blacklist filter, canonicalization, validation, normalization,
// fuzzy deduplication, and one batched write at the end of the run.
package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cartelera/internal/dedup"
	"cartelera/internal/event"
	"cartelera/internal/logger"
	"cartelera/internal/rules"
	"cartelera/internal/store"
	"cartelera/internal/transform"
)

const defaultCurrency = "EUR"

// IngestError records one event that could not be processed, with a
// human-readable reason. Rejections by validation rules are counted, not
// listed here.
type IngestError struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// Summary reports the outcome of one ingestion run.
type Summary struct {
	Received   int           `json:"received"`
	Accepted   int           `json:"accepted"`
	Rejected   int           `json:"rejected"`
	Duplicates int           `json:"duplicates"`
	Updated    int           `json:"updated"`
	Stored     int           `json:"stored"`
	Errors     []IngestError `json:"errors,omitempty"`
}

// Config tunes per-run behavior.
type Config struct {
	// Currency stamped onto canonical events; scrapers only extract amounts.
	Currency string `yaml:"currency"`
}

// Pipeline wires the validation and dedup engines to the persistence
// collaborators. blacklist may be nil to disable blacklist filtering.
type Pipeline struct {
	cfg       Config
	events    store.EventStore
	blacklist store.BlacklistStore
	rules     *rules.Engine
	dedup     *dedup.Engine
	log       *logger.Logger
}

// New creates a pipeline. rules and dedup fall back to their defaults when
// nil; log may be nil to use the package default.
func New(cfg Config, events store.EventStore, blacklist store.BlacklistStore, ruleEngine *rules.Engine, dedupEngine *dedup.Engine, log *logger.Logger) *Pipeline {
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}
	if ruleEngine == nil {
		ruleEngine = rules.New(rules.DefaultConfig(), nil)
	}
	if dedupEngine == nil {
		dedupEngine = dedup.New(dedup.DefaultConfig(), nil)
	}
	if log == nil {
		log = logger.Default()
	}
	return &Pipeline{
		cfg:       cfg,
		events:    events,
		blacklist: blacklist,
		rules:     ruleEngine,
		dedup:     dedupEngine,
		log:       log,
	}
}

// WithStores returns a copy of the pipeline bound to different stores,
// used for dry runs against a throwaway store.
func (p *Pipeline) WithStores(events store.EventStore, blacklist store.BlacklistStore) *Pipeline {
	clone := *p
	clone.events = events
	clone.blacklist = blacklist
	return &clone
}

// Ingest processes one run's raw events. Failures are data: every raw event
// is accounted for in the summary and nothing escapes as an error.
func (p *Pipeline) Ingest(ctx context.Context, raws []event.RawEvent) Summary {
	summary := Summary{Received: len(raws)}
	batch := make([]event.Event, 0, len(raws))

	for _, raw := range raws {
		if p.isBlacklisted(ctx, raw) {
			summary.Rejected++
			continue
		}

		evt, err := p.canonicalize(raw)
		if err != nil {
			summary.Rejected++
			summary.Errors = append(summary.Errors, IngestError{
				Title: raw.Title, Source: raw.SourceName, Reason: err.Error(),
			})
			continue
		}

		if verdict := p.rules.IsAcceptable(evt); !verdict.Valid {
			summary.Rejected++
			logger.IncrCounter("pipeline.rejected")
			p.log.Debug("event rejected", logger.Fields{
				"title": evt.Title, "source": evt.Source,
				"field": verdict.Field, "reason": verdict.Reason,
			})
			continue
		}

		evt = p.rules.Normalize(evt)

		if idx := p.matchInBatch(evt, batch); idx >= 0 {
			if p.dedup.ShouldUpdate(evt, batch[idx]) {
				// Same identity, richer content wins the slot.
				evt.ID = batch[idx].ID
				evt.CreatedAt = batch[idx].CreatedAt
				batch[idx] = evt
			}
			summary.Duplicates++
			logger.IncrCounter("pipeline.duplicates")
			continue
		}

		existing, found, err := p.findMatch(ctx, evt)
		if err != nil {
			summary.Errors = append(summary.Errors, IngestError{
				Title: evt.Title, Source: evt.Source, Reason: err.Error(),
			})
			continue
		}
		if found {
			if !p.dedup.ShouldUpdate(evt, existing) {
				summary.Duplicates++
				logger.IncrCounter("pipeline.duplicates")
				continue
			}
			// Keep the stored identity; take the incoming content.
			evt.ID = existing.ID
			evt.CreatedAt = existing.CreatedAt
			evt.UpdatedAt = time.Now().UTC()
			summary.Updated++
			logger.IncrCounter("pipeline.updated")
		} else {
			summary.Accepted++
			logger.IncrCounter("pipeline.accepted")
		}
		batch = append(batch, evt)
	}

	if len(batch) > 0 {
		stored, err := p.events.UpsertMany(ctx, batch)
		summary.Stored = stored
		if err != nil {
			summary.Errors = append(summary.Errors, IngestError{
				Reason: fmt.Sprintf("persisting batch: %v", err),
			})
			p.log.Error("batch persist failed", logger.Fields{
				"batch": len(batch), "stored": stored,
			}, err)
		}
	}

	p.log.Info("ingestion finished", logger.Fields{
		"received":   summary.Received,
		"accepted":   summary.Accepted,
		"rejected":   summary.Rejected,
		"duplicates": summary.Duplicates,
		"updated":    summary.Updated,
		"errors":     len(summary.Errors),
	})
	return summary
}

// isBlacklisted fails open: a lookup error means "not blacklisted" so a
// transient store problem never drops legitimate events.
func (p *Pipeline) isBlacklisted(ctx context.Context, raw event.RawEvent) bool {
	if p.blacklist == nil || raw.ExternalID == "" {
		return false
	}
	listed, err := p.blacklist.IsBlacklisted(ctx, raw.SourceName, raw.ExternalID)
	if err != nil {
		p.log.Warn("blacklist lookup failed, allowing event", logger.Fields{
			"source": raw.SourceName, "externalId": raw.ExternalID, "error": err.Error(),
		})
		return false
	}
	return listed
}

// canonicalize converts a raw record into a canonical Event. The date is
// required; everything else degrades to its zero value.
func (p *Pipeline) canonicalize(raw event.RawEvent) (event.Event, error) {
	date, ok := transform.ParseDateTime(raw.Date)
	if !ok {
		return event.Event{}, fmt.Errorf("unparseable date %q", raw.Date)
	}

	evt := event.New()
	evt.Title = strings.TrimSpace(raw.Title)
	evt.Description = strings.TrimSpace(raw.Description)
	evt.Date = date.UTC()
	evt.VenueName = strings.TrimSpace(raw.Venue)
	evt.City = strings.TrimSpace(raw.City)
	evt.Country = strings.TrimSpace(raw.Country)
	evt.Genre = strings.TrimSpace(raw.Genre)
	evt.Currency = p.cfg.Currency
	evt.ImageURL = raw.ImageURL
	evt.ExternalURL = raw.ExternalURL
	evt.Source = raw.SourceName
	evt.ExternalID = raw.ExternalID

	if raw.Category != "" {
		evt.Category = rules.NormalizeCategory(raw.Category)
	}
	if end, ok := transform.ParseDateTime(raw.EndDate); ok {
		u := end.UTC()
		evt.EndDate = &u
	}
	if price, ok := parseAmount(raw.Price); ok {
		evt.Price = &price
	}
	if priceMax, ok := parseAmount(raw.PriceMax); ok {
		evt.PriceMax = &priceMax
	}
	if evt.ExternalID == "" {
		evt.ExternalID = event.StableExternalID(raw.ExternalURL, "", evt.Title, raw.Date, evt.VenueName)
	}
	return evt, nil
}

// parseAmount accepts both already-transformed integers and raw price text.
func parseAmount(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	return transform.ParsePrice(s)
}

// matchInBatch scans the run's pending writes so two sources emitting the
// same new event in one run collapse to a single insert.
func (p *Pipeline) matchInBatch(evt event.Event, batch []event.Event) int {
	for i, pending := range batch {
		if p.dedup.IsDuplicate(evt, pending) {
			return i
		}
	}
	return -1
}

// findMatch searches stored events within the dedup date window for a fuzzy
// match.
func (p *Pipeline) findMatch(ctx context.Context, evt event.Event) (event.Event, bool, error) {
	tolerance := p.dedup.DateTolerance()
	candidates, err := p.events.FindByFilters(ctx, store.Filters{
		DateFrom: evt.Date.Add(-tolerance),
		DateTo:   evt.Date.Add(tolerance),
	})
	if err != nil {
		return event.Event{}, false, fmt.Errorf("searching duplicates: %w", err)
	}
	for _, candidate := range candidates {
		if p.dedup.IsDuplicate(evt, candidate) {
			return candidate, true, nil
		}
	}
	return event.Event{}, false, nil
}
