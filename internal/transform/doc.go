// Package transform holds the pure field transforms scraper configs refer to
// by name: multi-format date and date+time parsing, price extraction, HTML
// sanitization, and URL resolution.
//
// Every transform is a total function over a single string: unparseable
// input yields an absent result, never an error or panic. Names resolve to
// Kind values when a config is compiled, so a typo in a config fails at
// startup rather than mid-scrape.
package transform
