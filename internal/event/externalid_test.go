package event

import "testing"

func TestStableExternalID(t *testing.T) {
	tests := []struct {
		name     string
		link     string
		baseURL  string
		expected string
	}{
		{
			name:     "absolute link keeps origin and path",
			link:     "https://tickets.example.com/events/metallica-2026",
			expected: "https://tickets.example.com/events/metallica-2026",
		},
		{
			name:     "query string is stripped",
			link:     "https://tickets.example.com/events/metallica-2026?utm_source=home&ref=33",
			expected: "https://tickets.example.com/events/metallica-2026",
		},
		{
			name:     "fragment is kept",
			link:     "https://tickets.example.com/agenda?day=3#show-412",
			expected: "https://tickets.example.com/agenda#show-412",
		},
		{
			name:     "relative link resolves against base",
			link:     "/events/jazz-night",
			baseURL:  "https://venue.example.org",
			expected: "https://venue.example.org/events/jazz-night",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StableExternalID(tt.link, tt.baseURL, "", "", "")
			if got != tt.expected {
				t.Errorf("StableExternalID(%q) = %q, expected %q", tt.link, got, tt.expected)
			}
		})
	}
}

func TestStableExternalIDSlugFallback(t *testing.T) {
	got := StableExternalID("", "", "Metallica - World Tour", "2026-04-04", "Wizink Center")
	expected := "metallica_world_tour_2026_04_04_wizink_center"
	if got != expected {
		t.Errorf("slug fallback = %q, expected %q", got, expected)
	}

	// A relative link with no base to resolve against also falls back.
	got = StableExternalID("/events/1", "", "A", "B", "C")
	if got != "a_b_c" {
		t.Errorf("unresolvable link fallback = %q, expected %q", got, "a_b_c")
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("category %q should be valid", c)
		}
	}
	if Category("Rave").Valid() {
		t.Error("unknown category should not be valid")
	}
}
