package dedup

import (
	"strings"
	"time"

	"cartelera/internal/event"
)

// Config tunes the fuzzy-match thresholds.
type Config struct {
	DateTolerance  time.Duration // max distance between dates
	TitleThreshold float64       // min bigram similarity
	VenueThreshold float64       // applied when both have a venue
}

// DefaultConfig: 24h tolerance, 0.85 title similarity, 0.8 venue similarity.
func DefaultConfig() Config {
	return Config{
		DateTolerance:  24 * time.Hour,
		TitleThreshold: 0.85,
		VenueThreshold: 0.8,
	}
}

// Engine decides whether two events are the same real-world event and
// whether an incoming record should replace a stored one.
type Engine struct {
	cfg     Config
	ranking Ranking
}

// New creates a dedup engine. A nil ranking uses DefaultRanking.
func New(cfg Config, ranking Ranking) *Engine {
	if cfg.DateTolerance <= 0 {
		cfg.DateTolerance = DefaultConfig().DateTolerance
	}
	if cfg.TitleThreshold <= 0 {
		cfg.TitleThreshold = DefaultConfig().TitleThreshold
	}
	if cfg.VenueThreshold <= 0 {
		cfg.VenueThreshold = DefaultConfig().VenueThreshold
	}
	if ranking == nil {
		ranking = DefaultRanking()
	}
	return &Engine{cfg: cfg, ranking: ranking}
}

// DateTolerance exposes the configured date window, used by callers to
// bound candidate searches.
func (e *Engine) DateTolerance() time.Duration {
	return e.cfg.DateTolerance
}

// IsDuplicate reports whether a and b describe the same event: dates within
// tolerance, titles similar enough, and venues similar enough when both are
// present. Symmetric and source-agnostic, so duplicates are caught across
// sources.
func (e *Engine) IsDuplicate(a, b event.Event) bool {
	diff := a.Date.Sub(b.Date)
	if diff < 0 {
		diff = -diff
	}
	if diff > e.cfg.DateTolerance {
		return false
	}

	if Similarity(a.Title, b.Title) < e.cfg.TitleThreshold {
		return false
	}

	if a.VenueName != "" && b.VenueName != "" {
		if Similarity(a.VenueName, b.VenueName) < e.cfg.VenueThreshold {
			return false
		}
	}

	return true
}

// ShouldUpdate reports whether incoming should replace existing: a clearly
// richer description (≥50% longer), an image or price the stored record
// lacks, or a more reliable source. Otherwise the stored record wins.
func (e *Engine) ShouldUpdate(incoming, existing event.Event) bool {
	if len(incoming.Description) >= len(existing.Description)*3/2 && len(incoming.Description) > len(existing.Description) {
		return true
	}
	if incoming.ImageURL != "" && existing.ImageURL == "" {
		return true
	}
	if incoming.HasPrice() && !existing.HasPrice() {
		return true
	}
	if e.ranking.Reliability(incoming.Source) > e.ranking.Reliability(existing.Source) {
		return true
	}
	return false
}

// Similarity is a Dice-coefficient bigram similarity over lowercased,
// punctuation-insensitive text, in [0, 1].
func Similarity(a, b string) float64 {
	a = foldText(a)
	b = foldText(b)
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	if len(a) < 2 || len(b) < 2 {
		return 0
	}

	bigrams := make(map[string]int)
	for i := 0; i < len(a)-1; i++ {
		bigrams[a[i:i+2]]++
	}

	matches := 0
	for i := 0; i < len(b)-1; i++ {
		pair := b[i : i+2]
		if bigrams[pair] > 0 {
			bigrams[pair]--
			matches++
		}
	}

	return 2 * float64(matches) / float64(len(a)-1+len(b)-1)
}

// foldText lowercases and collapses anything that is not a letter or digit,
// so "Metallica - World Tour" and "Metallica World Tour" compare equal.
func foldText(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r > 127:
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
