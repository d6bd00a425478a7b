// Package store persists canonical events and the source blacklist. It
// defines the EventStore and BlacklistStore interfaces the pipeline consumes
// plus two implementations: Postgres for production and an in-memory store
// for tests and dry runs.
package store
