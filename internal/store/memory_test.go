package store

import (
	"context"
	"testing"
	"time"

	"cartelera/internal/event"
)

func storedEvent(title string, date time.Time) event.Event {
	evt := event.New()
	evt.Title = title
	evt.Date = date
	evt.City = "Madrid"
	evt.Country = "ES"
	evt.Source = "test"
	evt.ExternalID = event.Slug(title)
	return evt
}

func TestMemoryStoreUpsertAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2026, time.April, 4, 21, 0, 0, 0, time.UTC)

	events := []event.Event{
		storedEvent("Concierto A", base),
		storedEvent("Concierto B", base.AddDate(0, 0, 5)),
		storedEvent("Concierto C", base.AddDate(0, 0, 10)),
	}
	n, err := s.UpsertMany(ctx, events)
	if err != nil {
		t.Fatalf("UpsertMany failed: %v", err)
	}
	if n != 3 {
		t.Errorf("UpsertMany wrote %d, expected 3", n)
	}

	got, err := s.FindByFilters(ctx, Filters{
		DateFrom: base.AddDate(0, 0, -1),
		DateTo:   base.AddDate(0, 0, 6),
	})
	if err != nil {
		t.Fatalf("FindByFilters failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events in window, got %d", len(got))
	}
	if !got[0].Date.Before(got[1].Date) {
		t.Error("results should be ordered by date")
	}

	count, _ := s.Count(ctx)
	if count != 3 {
		t.Errorf("Count = %d, expected 3", count)
	}
}

func TestMemoryStoreUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	evt := storedEvent("Concierto A", time.Now())

	s.UpsertMany(ctx, []event.Event{evt})
	evt.Title = "Concierto A (actualizado)"
	s.UpsertMany(ctx, []event.Event{evt})

	got, err := s.FindByID(ctx, evt.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got.Title != "Concierto A (actualizado)" {
		t.Errorf("Title = %q, expected the updated value", got.Title)
	}
	if count, _ := s.Count(ctx); count != 1 {
		t.Errorf("Count = %d, expected 1 after re-upsert", count)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	evt := storedEvent("Concierto A", time.Now())
	s.UpsertMany(ctx, []event.Event{evt})

	if err := s.DeleteByID(ctx, evt.ID); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}
	if err := s.DeleteByID(ctx, evt.ID); err != ErrNotFound {
		t.Errorf("deleting a missing event should return ErrNotFound, got %v", err)
	}
	if _, err := s.FindByID(ctx, evt.ID); err != ErrNotFound {
		t.Errorf("FindByID after delete should return ErrNotFound, got %v", err)
	}

	s.UpsertMany(ctx, []event.Event{storedEvent("A", time.Now()), storedEvent("B", time.Now())})
	n, err := s.DeleteAll(ctx)
	if err != nil || n != 2 {
		t.Errorf("DeleteAll = (%d, %v), expected (2, nil)", n, err)
	}
}

func TestMemoryStoreBlacklist(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if blocked, _ := s.IsBlacklisted(ctx, "src", "id-1"); blocked {
		t.Error("empty blacklist should not block anything")
	}

	if err := s.AddToBlacklist(ctx, "src", "id-1", "spam"); err != nil {
		t.Fatalf("AddToBlacklist failed: %v", err)
	}
	if blocked, _ := s.IsBlacklisted(ctx, "src", "id-1"); !blocked {
		t.Error("expected entry to be blacklisted")
	}
	if blocked, _ := s.IsBlacklisted(ctx, "other", "id-1"); blocked {
		t.Error("blacklist entries are scoped per source")
	}

	n, err := s.ClearAll(ctx)
	if err != nil || n != 1 {
		t.Errorf("ClearAll = (%d, %v), expected (1, nil)", n, err)
	}
	if blocked, _ := s.IsBlacklisted(ctx, "src", "id-1"); blocked {
		t.Error("blacklist should be empty after ClearAll")
	}
}
