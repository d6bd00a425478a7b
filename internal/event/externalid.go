package event

import (
	"net/url"
	"regexp"
	"strings"
)

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// StableExternalID derives a stable identifier for a scraped item.
//
// When the item has a resolvable link, the ID is the link's origin + path +
// fragment with the query string stripped, so the same event page produces
// the same ID whether the source emits absolute or relative links, and
// regardless of tracking parameters. Known limitation: two distinct events
// that differ only in query parameters collapse into one ID.
//
// Without a link, the ID is a slug of title, date and venue.
func StableExternalID(link, baseURL, title, date, venue string) string {
	if link != "" {
		if id := stableLinkID(link, baseURL); id != "" {
			return id
		}
	}
	return Slug(title + "_" + date + "_" + venue)
}

func stableLinkID(link, baseURL string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	if !u.IsAbs() {
		base, err := url.Parse(baseURL)
		if err != nil || base.Host == "" {
			return ""
		}
		u = base.ResolveReference(u)
	}
	if u.Host == "" {
		return ""
	}
	id := u.Scheme + "://" + u.Host + u.Path
	if u.Fragment != "" {
		id += "#" + u.Fragment
	}
	return id
}

// Slug lowercases s and collapses every run of non-alphanumeric characters
// into a single underscore.
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugUnsafe.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
