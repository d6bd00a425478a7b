// Package preferences holds the catalog owner's acceptance rules: country
// and city allow-lists, genre allow/block-lists, category and venue-capacity
// filters. The Service caches loaded rules with a TTL and supports explicit
// invalidation on update.
package preferences
