package rules

import (
	"fmt"
	"strings"
	"time"

	"cartelera/internal/event"
)

// ValidationResult is the outcome of a single acceptance check. Rejections
// are expected data, not errors.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
	Field  string `json:"field,omitempty"`
}

// Accept is the passing result.
func Accept() ValidationResult {
	return ValidationResult{Valid: true}
}

// Reject builds a failing result for a field with a human-readable reason.
func Reject(field, reason string) ValidationResult {
	return ValidationResult{Valid: false, Field: field, Reason: reason}
}

// PreferenceChecker is the delegated preference check (allow/block lists)
// supplied by the preferences service.
type PreferenceChecker interface {
	ShouldAcceptEvent(evt event.Event) ValidationResult
}

// Config tunes the acceptance checks.
type Config struct {
	MinTitleLength  int  `yaml:"minTitleLength"`
	MinDaysInFuture int  `yaml:"minDaysInFuture"` // negative permits recent past
	MaxDaysInFuture int  `yaml:"maxDaysInFuture"`
	RequireLocation bool `yaml:"requireLocation"`
}

// DefaultConfig permits events from 1 day in the past through 365 days ahead.
func DefaultConfig() Config {
	return Config{
		MinTitleLength:  3,
		MinDaysInFuture: -1,
		MaxDaysInFuture: 365,
		RequireLocation: true,
	}
}

// Engine runs validation and normalization over canonical events.
type Engine struct {
	cfg   Config
	prefs PreferenceChecker
	now   func() time.Time
}

// New creates a rule engine. prefs may be nil, disabling the delegated check.
func New(cfg Config, prefs PreferenceChecker) *Engine {
	if cfg.MinTitleLength <= 0 {
		cfg.MinTitleLength = DefaultConfig().MinTitleLength
	}
	if cfg.MaxDaysInFuture <= 0 {
		cfg.MaxDaysInFuture = DefaultConfig().MaxDaysInFuture
	}
	return &Engine{cfg: cfg, prefs: prefs, now: time.Now}
}

// IsAcceptable runs the acceptance checks in order, short-circuiting on the
// first failure: required fields, date window, location, preferences.
func (e *Engine) IsAcceptable(evt event.Event) ValidationResult {
	if strings.TrimSpace(evt.Title) == "" {
		return Reject("title", "missing title")
	}
	if len(strings.TrimSpace(evt.Title)) < e.cfg.MinTitleLength {
		return Reject("title", fmt.Sprintf("title shorter than %d characters", e.cfg.MinTitleLength))
	}
	if evt.Date.IsZero() {
		return Reject("date", "missing date")
	}

	now := e.now()
	earliest := now.AddDate(0, 0, e.cfg.MinDaysInFuture)
	latest := now.AddDate(0, 0, e.cfg.MaxDaysInFuture)
	if evt.Date.Before(earliest) {
		return Reject("date", "event is in the past")
	}
	if evt.Date.After(latest) {
		return Reject("date", fmt.Sprintf("event is more than %d days ahead", e.cfg.MaxDaysInFuture))
	}

	if e.cfg.RequireLocation {
		if strings.TrimSpace(evt.City) == "" {
			return Reject("city", "missing city")
		}
		if strings.TrimSpace(evt.Country) == "" {
			return Reject("country", "missing country")
		}
	}

	if e.prefs != nil {
		if res := e.prefs.ShouldAcceptEvent(evt); !res.Valid {
			return res
		}
	}

	return Accept()
}
