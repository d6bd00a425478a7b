package store

import (
	"context"
	"errors"
	"time"

	"cartelera/internal/event"
)

// ErrNotFound is returned when a lookup by ID matches nothing.
var ErrNotFound = errors.New("event not found")

// Filters narrows FindByFilters results. Zero values mean "any".
type Filters struct {
	DateFrom time.Time
	DateTo   time.Time
	City     string
	Country  string
	Category event.Category
	Source   string
	Limit    int
}

// EventStore persists canonical events. Implementations must be safe for
// concurrent use.
type EventStore interface {
	FindByFilters(ctx context.Context, f Filters) ([]event.Event, error)
	UpsertMany(ctx context.Context, events []event.Event) (int, error)
	FindByID(ctx context.Context, id string) (event.Event, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

// BlacklistStore persists (source, externalID) pairs to exclude permanently.
// Callers treat lookup errors as "not blacklisted" (fail open).
type BlacklistStore interface {
	IsBlacklisted(ctx context.Context, source, externalID string) (bool, error)
	AddToBlacklist(ctx context.Context, source, externalID, reason string) error
	ClearAll(ctx context.Context) (int, error)
}
