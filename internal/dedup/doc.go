// Package dedup decides whether two events are the same real-world event
// (fuzzy title/venue similarity plus a date tolerance) and whether an
// incoming record should replace a stored one (richer content or a more
// reliable source).
package dedup
