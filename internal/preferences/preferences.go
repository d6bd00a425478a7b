package preferences

import (
	"strings"

	"cartelera/internal/event"
	"cartelera/internal/rules"
)

// Rules holds the catalog owner's acceptance preferences. Empty lists mean
// "no restriction".
type Rules struct {
	Countries       []string `json:"countries,omitempty" yaml:"countries"`
	Cities          []string `json:"cities,omitempty" yaml:"cities"`
	GenresAllow     []string `json:"genres_allow,omitempty" yaml:"genresAllow"`
	GenresBlock     []string `json:"genres_block,omitempty" yaml:"genresBlock"`
	Categories      []string `json:"categories,omitempty" yaml:"categories"`
	CapacityBuckets []string `json:"capacity_buckets,omitempty" yaml:"capacityBuckets"`
}

// Storage loads and saves preference rules.
type Storage interface {
	Load() (Rules, error)
	Save(Rules) error
}

// ShouldAcceptEvent checks an event against the preference lists, in order:
// country, city, blocked genres, allowed genres, categories, venue-capacity
// bucket.
func (r Rules) ShouldAcceptEvent(evt event.Event) rules.ValidationResult {
	if len(r.Countries) > 0 && !containsFold(r.Countries, evt.Country) {
		return rules.Reject("country", "country not in allow-list")
	}
	if len(r.Cities) > 0 && !containsFold(r.Cities, evt.City) {
		return rules.Reject("city", "city not in allow-list")
	}
	if evt.Genre != "" && containsFold(r.GenresBlock, evt.Genre) {
		return rules.Reject("genre", "genre is blocked")
	}
	if len(r.GenresAllow) > 0 && !containsFold(r.GenresAllow, evt.Genre) {
		return rules.Reject("genre", "genre not in allow-list")
	}
	if len(r.Categories) > 0 && !containsFold(r.Categories, string(evt.Category)) {
		return rules.Reject("category", "category not in allow-list")
	}
	if len(r.CapacityBuckets) > 0 && evt.VenueCapacity > 0 {
		if !containsFold(r.CapacityBuckets, CapacityBucket(evt.VenueCapacity)) {
			return rules.Reject("venue_capacity", "venue capacity bucket not in allow-list")
		}
	}
	return rules.Accept()
}

// CapacityBucket names the size class of a venue.
func CapacityBucket(capacity int) string {
	switch {
	case capacity <= 0:
		return "unknown"
	case capacity < 500:
		return "small"
	case capacity < 5000:
		return "medium"
	default:
		return "large"
	}
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), strings.TrimSpace(value)) {
			return true
		}
	}
	return false
}
