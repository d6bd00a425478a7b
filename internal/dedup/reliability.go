package dedup

import "strings"

// Ranking is a static source-reliability ordering used to break
// update-vs-keep ties: a record from a more reliable source replaces one
// from a less reliable source even when the content is otherwise identical.
type Ranking map[string]int

const defaultReliability = 50

// DefaultRanking orders the known source classes: primary ticketing APIs
// above generic scrapers, scrapers above file imports.
func DefaultRanking() Ranking {
	return Ranking{
		"ticketmaster": 90,
		"bandsintown":  85,
		"scraper":      50,
		"import":       20,
		"file":         20,
	}
}

// Reliability returns the score for a source name, matching the most
// specific known prefix ("ticketmaster-es" scores as "ticketmaster").
// Unknown sources score as generic scrapers.
func (r Ranking) Reliability(source string) int {
	source = strings.ToLower(strings.TrimSpace(source))
	if score, ok := r[source]; ok {
		return score
	}
	best := -1
	bestLen := 0
	for name, score := range r {
		if strings.HasPrefix(source, name) && len(name) > bestLen {
			best = score
			bestLen = len(name)
		}
	}
	if best >= 0 {
		return best
	}
	return defaultReliability
}
