package transform

import (
	"fmt"
	"strconv"
	"time"
)

// Kind identifies one of the built-in field transforms. Scraper configs
// refer to transforms by name; names are resolved to a Kind once at config
// load, so an unknown name is a construction error instead of a runtime one.
type Kind int

const (
	KindNone Kind = iota
	KindDate
	KindDateTime
	KindPrice
	KindSanitizeHTML
	KindResolveURL
)

var kindNames = map[string]Kind{
	"":              KindNone,
	"date":          KindDate,
	"datetime":      KindDateTime,
	"price":         KindPrice,
	"sanitize-html": KindSanitizeHTML,
	"resolve-url":   KindResolveURL,
}

// KindFromName resolves a transform name from a scraper config.
func KindFromName(name string) (Kind, error) {
	k, ok := kindNames[name]
	if !ok {
		return KindNone, fmt.Errorf("unknown transform %q", name)
	}
	return k, nil
}

// String returns the config name of the transform.
func (k Kind) String() string {
	for name, kind := range kindNames {
		if kind == k && name != "" {
			return name
		}
	}
	return "none"
}

// Apply runs the transform over a single raw value. baseURL is only used by
// KindResolveURL. Transforms are total: unparseable input yields ok=false,
// never a panic or error.
func (k Kind) Apply(value, baseURL string) (string, bool) {
	switch k {
	case KindNone:
		return value, true
	case KindDate:
		t, ok := ParseDate(value)
		if !ok {
			return "", false
		}
		return t.UTC().Format(time.RFC3339), true
	case KindDateTime:
		t, ok := ParseDateTime(value)
		if !ok {
			return "", false
		}
		return t.UTC().Format(time.RFC3339), true
	case KindPrice:
		n, ok := ParsePrice(value)
		if !ok {
			return "", false
		}
		return strconv.Itoa(n), true
	case KindSanitizeHTML:
		s := SanitizeHTML(value)
		return s, s != ""
	case KindResolveURL:
		return ResolveURL(value, baseURL)
	}
	return "", false
}
