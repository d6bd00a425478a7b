package rules

import (
	"testing"
	"time"

	"cartelera/internal/event"
)

func validEvent() event.Event {
	evt := event.New()
	evt.Title = "Metallica - World Tour 2026"
	evt.Date = time.Now().UTC().AddDate(0, 0, 30)
	evt.City = "Madrid"
	evt.Country = "ES"
	evt.Category = event.CategoryConcert
	return evt
}

func TestIsAcceptable(t *testing.T) {
	engine := New(DefaultConfig(), nil)

	tests := []struct {
		name      string
		mutate    func(*event.Event)
		wantValid bool
		wantField string
	}{
		{
			name:      "valid event passes",
			mutate:    func(*event.Event) {},
			wantValid: true,
		},
		{
			name:      "missing title",
			mutate:    func(e *event.Event) { e.Title = "  " },
			wantField: "title",
		},
		{
			name:      "title too short",
			mutate:    func(e *event.Event) { e.Title = "ab" },
			wantField: "title",
		},
		{
			name:      "missing date",
			mutate:    func(e *event.Event) { e.Date = time.Time{} },
			wantField: "date",
		},
		{
			name:      "too far in the past",
			mutate:    func(e *event.Event) { e.Date = time.Now().UTC().AddDate(0, 0, -10) },
			wantField: "date",
		},
		{
			name:      "too far ahead",
			mutate:    func(e *event.Event) { e.Date = time.Now().UTC().AddDate(0, 0, 400) },
			wantField: "date",
		},
		{
			name:      "missing city",
			mutate:    func(e *event.Event) { e.City = "" },
			wantField: "city",
		},
		{
			name:      "missing country",
			mutate:    func(e *event.Event) { e.Country = "" },
			wantField: "country",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := validEvent()
			tt.mutate(&evt)
			res := engine.IsAcceptable(evt)
			if res.Valid != tt.wantValid {
				t.Fatalf("IsAcceptable() valid = %v, expected %v (reason: %s)",
					res.Valid, tt.wantValid, res.Reason)
			}
			if !tt.wantValid && res.Field != tt.wantField {
				t.Errorf("rejection field = %q, expected %q", res.Field, tt.wantField)
			}
			if !tt.wantValid && res.Reason == "" {
				t.Error("rejection should carry a reason")
			}
		})
	}
}

func TestIsAcceptableRecentPastAllowed(t *testing.T) {
	engine := New(DefaultConfig(), nil)
	evt := validEvent()
	evt.Date = time.Now().UTC().Add(-12 * time.Hour)
	if res := engine.IsAcceptable(evt); !res.Valid {
		t.Errorf("event 12h in the past should be acceptable, rejected: %s", res.Reason)
	}
}

func TestIsAcceptableLocationOptional(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequireLocation = false
	engine := New(cfg, nil)
	evt := validEvent()
	evt.City = ""
	evt.Country = ""
	if res := engine.IsAcceptable(evt); !res.Valid {
		t.Errorf("location should be optional, rejected: %s", res.Reason)
	}
}

type denyAllPrefs struct{}

func (denyAllPrefs) ShouldAcceptEvent(event.Event) ValidationResult {
	return Reject("genre", "genre is blocked")
}

func TestIsAcceptableDelegatesToPreferences(t *testing.T) {
	engine := New(DefaultConfig(), denyAllPrefs{})
	res := engine.IsAcceptable(validEvent())
	if res.Valid {
		t.Fatal("preference rejection should fail the event")
	}
	if res.Field != "genre" {
		t.Errorf("preference rejection field = %q, expected %q", res.Field, "genre")
	}
}

func TestNormalize(t *testing.T) {
	engine := New(DefaultConfig(), nil)
	evt := validEvent()
	evt.Title = "  Metallica en Madrid  "
	evt.City = "buenos aires"
	evt.Country = "España"
	evt.Category = event.Category("concierto")
	evt.Genre = " Metal "

	got := engine.Normalize(evt)

	if got.Title != "Metallica en Madrid" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.City != "Buenos Aires" {
		t.Errorf("City = %q, expected %q", got.City, "Buenos Aires")
	}
	if got.Country != "ES" {
		t.Errorf("Country = %q, expected %q", got.Country, "ES")
	}
	if got.Category != event.CategoryConcert {
		t.Errorf("Category = %q, expected %q", got.Category, event.CategoryConcert)
	}
	if got.Genre != "metal" {
		t.Errorf("Genre = %q, expected %q", got.Genre, "metal")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	engine := New(DefaultConfig(), nil)
	evt := validEvent()
	evt.City = "BUENOS AIRES"
	evt.Country = "argentina"
	evt.Category = event.Category("stand-up")

	once := engine.Normalize(evt)
	twice := engine.Normalize(once)

	if once != twice {
		t.Errorf("Normalize is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestNormalizeCountry(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"es", "ES"},
		{"ES", "ES"},
		{"España", "ES"},
		{"spain", "ES"},
		{"Estados Unidos", "US"},
		{"EEUU", "US"},
		{"united kingdom", "GB"},
		{"Atlantis", "Atlantis"}, // unknown passes through for validation
	}
	for _, tt := range tests {
		if got := NormalizeCountry(tt.input); got != tt.expected {
			t.Errorf("NormalizeCountry(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		input    string
		expected event.Category
	}{
		{"Concert", event.CategoryConcert},
		{"concierto", event.CategoryConcert},
		{"música en vivo", event.CategoryConcert},
		{"stand up", event.CategoryStandUp},
		{"Stand-Up", event.CategoryStandUp},
		{"comedia", event.CategoryStandUp},
		{"teatro", event.CategoryTheater},
		{"ópera", event.CategoryOpera},
		{"danza", event.CategoryBallet},
		{"electro swing rave", event.CategoryOther},
		{"", event.CategoryOther},
	}
	for _, tt := range tests {
		if got := NormalizeCategory(tt.input); got != tt.expected {
			t.Errorf("NormalizeCategory(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
