package transform

import "strings"

// ResolveURL makes href absolute. Already-absolute URLs pass through
// untouched; relative ones join the base with exactly one separating slash.
func ResolveURL(href, base string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href, true
	}
	base = strings.TrimSpace(base)
	if base == "" {
		return "", false
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(href, "/"), true
}
