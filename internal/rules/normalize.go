package rules

import (
	"strings"
	"unicode"

	"cartelera/internal/event"
)

// countryCodes maps country names and common abbreviations to ISO-2 codes.
// Two-letter inputs pass through uppercased without consulting the table.
var countryCodes = map[string]string{
	"argentina":      "AR",
	"bolivia":        "BO",
	"brasil":         "BR",
	"brazil":         "BR",
	"chile":          "CL",
	"colombia":       "CO",
	"costa rica":     "CR",
	"ecuador":        "EC",
	"espana":         "ES",
	"españa":         "ES",
	"spain":          "ES",
	"estados unidos": "US",
	"united states":  "US",
	"usa":            "US",
	"eeuu":           "US",
	"ee.uu.":         "US",
	"francia":        "FR",
	"france":         "FR",
	"alemania":       "DE",
	"germany":        "DE",
	"italia":         "IT",
	"italy":          "IT",
	"mexico":         "MX",
	"méxico":         "MX",
	"paraguay":       "PY",
	"peru":           "PE",
	"perú":           "PE",
	"portugal":       "PT",
	"reino unido":    "GB",
	"united kingdom": "GB",
	"uk":             "GB",
	"uruguay":        "UY",
	"venezuela":      "VE",
}

// categorySynonyms maps free-text category labels (English and Spanish,
// hyphenated or not) onto the closed enum.
var categorySynonyms = map[string]event.Category{
	"concert":        event.CategoryConcert,
	"concierto":      event.CategoryConcert,
	"conciertos":     event.CategoryConcert,
	"recital":        event.CategoryConcert,
	"gig":            event.CategoryConcert,
	"live music":     event.CategoryConcert,
	"musica en vivo": event.CategoryConcert,
	"música en vivo": event.CategoryConcert,
	"festival":       event.CategoryFestival,
	"festivales":     event.CategoryFestival,
	"fest":           event.CategoryFestival,
	"theater":        event.CategoryTheater,
	"theatre":        event.CategoryTheater,
	"teatro":         event.CategoryTheater,
	"obra":           event.CategoryTheater,
	"obra de teatro": event.CategoryTheater,
	"play":           event.CategoryTheater,
	"standup":        event.CategoryStandUp,
	"stand-up":       event.CategoryStandUp,
	"stand up":       event.CategoryStandUp,
	"comedy":         event.CategoryStandUp,
	"comedia":        event.CategoryStandUp,
	"monologos":      event.CategoryStandUp,
	"monólogos":      event.CategoryStandUp,
	"opera":          event.CategoryOpera,
	"ópera":          event.CategoryOpera,
	"ballet":         event.CategoryBallet,
	"danza":          event.CategoryBallet,
	"dance":          event.CategoryBallet,
}

// Normalize canonicalizes an accepted event in place: trims title and
// description, title-cases the city, maps the country to ISO-2 and the
// category onto the closed enum. Normalizing twice is a no-op.
func (e *Engine) Normalize(evt event.Event) event.Event {
	evt.Title = strings.TrimSpace(evt.Title)
	evt.Description = strings.TrimSpace(evt.Description)
	evt.City = TitleCase(evt.City)
	evt.Country = NormalizeCountry(evt.Country)
	evt.Category = NormalizeCategory(string(evt.Category))
	evt.Genre = strings.ToLower(strings.TrimSpace(evt.Genre))
	evt.VenueName = strings.TrimSpace(evt.VenueName)
	return evt
}

// NormalizeCountry maps a country name or abbreviation to its ISO-2 code.
// Two-letter inputs pass through uppercased; unknown names are returned
// trimmed and unchanged so validation can surface them.
func NormalizeCountry(country string) string {
	c := strings.TrimSpace(country)
	if len(c) == 2 {
		return strings.ToUpper(c)
	}
	if code, ok := countryCodes[strings.ToLower(c)]; ok {
		return code
	}
	return c
}

// NormalizeCategory maps free-text category labels onto the closed enum,
// defaulting to Other for anything unrecognized. Already-canonical values
// pass through.
func NormalizeCategory(raw string) event.Category {
	c := strings.TrimSpace(raw)
	if c == "" {
		return event.CategoryOther
	}
	if cat := event.Category(c); cat.Valid() {
		return cat
	}
	if cat, ok := categorySynonyms[strings.ToLower(c)]; ok {
		return cat
	}
	return event.CategoryOther
}

// TitleCase uppercases the first letter of each word and lowercases the
// rest, so "buenos aires" and "BUENOS AIRES" both become "Buenos Aires".
func TitleCase(s string) string {
	words := strings.Fields(strings.TrimSpace(s))
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		if len(runes) > 0 {
			runes[0] = unicode.ToUpper(runes[0])
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
