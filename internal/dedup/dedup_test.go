package dedup

import (
	"testing"
	"time"

	"cartelera/internal/event"
)

func makeEvent(title, venue string, date time.Time) event.Event {
	evt := event.New()
	evt.Title = title
	evt.VenueName = venue
	evt.Date = date
	return evt
}

func TestIsDuplicate(t *testing.T) {
	engine := New(DefaultConfig(), nil)
	base := time.Date(2026, time.April, 4, 21, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		a        event.Event
		b        event.Event
		expected bool
	}{
		{
			name:     "same title punctuation differs 30 minutes apart",
			a:        makeEvent("Metallica - World Tour 2025", "Wizink Center", base),
			b:        makeEvent("Metallica World Tour 2025", "Wizink Center", base.Add(30*time.Minute)),
			expected: true,
		},
		{
			name:     "identical but 48 hours apart",
			a:        makeEvent("Metallica World Tour", "Wizink Center", base),
			b:        makeEvent("Metallica World Tour", "Wizink Center", base.Add(48*time.Hour)),
			expected: false,
		},
		{
			name:     "different titles same night",
			a:        makeEvent("Metallica World Tour", "Wizink Center", base),
			b:        makeEvent("Iron Maiden Legacy Tour", "Wizink Center", base),
			expected: false,
		},
		{
			name:     "same title different venues",
			a:        makeEvent("Carmen", "Teatro Real", base),
			b:        makeEvent("Carmen", "Gran Teatre del Liceu", base),
			expected: false,
		},
		{
			name:     "venue check skipped when one side has no venue",
			a:        makeEvent("Metallica World Tour", "", base),
			b:        makeEvent("Metallica World Tour", "Wizink Center", base.Add(2*time.Hour)),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.IsDuplicate(tt.a, tt.b); got != tt.expected {
				t.Errorf("IsDuplicate = %v, expected %v", got, tt.expected)
			}
			// The relation is symmetric by contract.
			if ab, ba := engine.IsDuplicate(tt.a, tt.b), engine.IsDuplicate(tt.b, tt.a); ab != ba {
				t.Errorf("IsDuplicate not symmetric: (a,b)=%v (b,a)=%v", ab, ba)
			}
		})
	}
}

func TestIsDuplicateCrossSource(t *testing.T) {
	engine := New(DefaultConfig(), nil)
	base := time.Date(2026, time.April, 4, 21, 0, 0, 0, time.UTC)

	a := makeEvent("Rosalía en concierto", "Palau Sant Jordi", base)
	a.Source = "ticketmaster"
	b := makeEvent("Rosalía en Concierto", "Palau Sant Jordi", base.Add(time.Hour))
	b.Source = "venue-scraper"

	if !engine.IsDuplicate(a, b) {
		t.Error("duplicate detection should ignore the source")
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"Metallica - World Tour 2025", "Metallica World Tour 2025", 1, 1},
		{"Metallica", "Metallica", 1, 1},
		{"Metallica", "Rammstein", 0, 0.3},
		{"", "", 0, 0},
		{"a", "ab", 0, 0},
	}
	for _, tt := range tests {
		got := Similarity(tt.a, tt.b)
		if got < tt.min || got > tt.max {
			t.Errorf("Similarity(%q, %q) = %f, expected within [%f, %f]", tt.a, tt.b, got, tt.min, tt.max)
		}
		if back := Similarity(tt.b, tt.a); back != got {
			t.Errorf("Similarity not symmetric for (%q, %q): %f vs %f", tt.a, tt.b, got, back)
		}
	}
}

func TestShouldUpdate(t *testing.T) {
	engine := New(DefaultConfig(), nil)
	price := 30

	base := event.New()
	base.Title = "Carmen"
	base.Description = "Una ópera de Bizet."
	base.Source = "scraper"

	tests := []struct {
		name     string
		mutate   func(in, ex *event.Event)
		expected bool
	}{
		{
			name:     "identical content same reliability keeps existing",
			mutate:   func(in, ex *event.Event) {},
			expected: false,
		},
		{
			name: "much longer description wins",
			mutate: func(in, ex *event.Event) {
				in.Description = ex.Description + " Con un reparto internacional y orquesta en vivo durante tres horas."
			},
			expected: true,
		},
		{
			name: "slightly longer description is not enough",
			mutate: func(in, ex *event.Event) {
				in.Description = ex.Description + "!!"
			},
			expected: false,
		},
		{
			name:     "adds missing image",
			mutate:   func(in, ex *event.Event) { in.ImageURL = "https://img.example/carmen.jpg" },
			expected: true,
		},
		{
			name:     "adds missing price",
			mutate:   func(in, ex *event.Event) { in.Price = &price },
			expected: true,
		},
		{
			name: "higher reliability source wins with identical content",
			mutate: func(in, ex *event.Event) {
				in.Source = "ticketmaster"
				ex.Source = "scraper"
			},
			expected: true,
		},
		{
			name: "lower reliability source never wins",
			mutate: func(in, ex *event.Event) {
				in.Source = "file-import"
				ex.Source = "ticketmaster"
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			incoming, existing := base, base
			tt.mutate(&incoming, &existing)
			if got := engine.ShouldUpdate(incoming, existing); got != tt.expected {
				t.Errorf("ShouldUpdate = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestReliability(t *testing.T) {
	r := DefaultRanking()
	if r.Reliability("ticketmaster") <= r.Reliability("scraper") {
		t.Error("ticketing API should outrank a generic scraper")
	}
	if r.Reliability("scraper") <= r.Reliability("file-import") {
		t.Error("scraper should outrank a file import")
	}
	if r.Reliability("ticketmaster-es") != r.Reliability("ticketmaster") {
		t.Error("prefix matching should apply")
	}
	if r.Reliability("unknown-venue") != defaultReliability {
		t.Error("unknown sources score as generic")
	}
}
