package event

import (
	"time"

	"github.com/google/uuid"
)

// Category is the closed set of event categories the catalog knows about.
type Category string

const (
	CategoryConcert  Category = "Concert"
	CategoryFestival Category = "Festival"
	CategoryTheater  Category = "Theater"
	CategoryStandUp  Category = "StandUp"
	CategoryOpera    Category = "Opera"
	CategoryBallet   Category = "Ballet"
	CategoryOther    Category = "Other"
)

// Categories lists every valid category value.
var Categories = []Category{
	CategoryConcert,
	CategoryFestival,
	CategoryTheater,
	CategoryStandUp,
	CategoryOpera,
	CategoryBallet,
	CategoryOther,
}

// Valid reports whether c is one of the known category values.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// RawEvent is a loosely-typed record straight out of a scraper, before any
// validation or normalization. All fields are strings as extracted; Date
// holds either the raw source text or an RFC3339 value when a transform
// already succeeded. RawEvents are transient: produced by the scrape engine,
// consumed once by the ingestion pipeline, never persisted.
type RawEvent struct {
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Date        string            `json:"date"`
	EndDate     string            `json:"end_date,omitempty"`
	Venue       string            `json:"venue,omitempty"`
	City        string            `json:"city,omitempty"`
	Country     string            `json:"country,omitempty"`
	Category    string            `json:"category,omitempty"`
	Genre       string            `json:"genre,omitempty"`
	Price       string            `json:"price,omitempty"`
	PriceMax    string            `json:"price_max,omitempty"`
	ImageURL    string            `json:"image_url,omitempty"`
	ExternalURL string            `json:"external_url,omitempty"`
	ExternalID  string            `json:"external_id,omitempty"`
	SourceName  string            `json:"source_name"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// Event is the canonical, validated entity stored in the catalog.
type Event struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Date          time.Time  `json:"date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	VenueName     string     `json:"venue_name,omitempty"`
	City          string     `json:"city"`
	Country       string     `json:"country"` // ISO-2 after normalization
	Category      Category   `json:"category"`
	Genre         string     `json:"genre,omitempty"`
	Price         *int       `json:"price,omitempty"` // whole currency units
	PriceMax      *int       `json:"price_max,omitempty"`
	Currency      string     `json:"currency"`
	ImageURL      string     `json:"image_url,omitempty"`
	ExternalURL   string     `json:"external_url,omitempty"`
	VenueCapacity int        `json:"venue_capacity,omitempty"`
	Source        string     `json:"source"`
	ExternalID    string     `json:"external_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// New creates an Event with a fresh ID and timestamps populated.
func New() Event {
	now := time.Now().UTC()
	return Event{
		ID:        uuid.NewString(),
		Category:  CategoryOther,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasPrice reports whether the event carries any price information.
func (e *Event) HasPrice() bool {
	return e.Price != nil || e.PriceMax != nil
}
