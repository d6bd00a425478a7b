// Package event defines the data model shared across the ingestion pipeline.
//
// RawEvent is the loosely-typed record a scraper emits; Event is the
// canonical, validated entity the catalog stores. The package also owns the
// closed category enum and the external-ID derivation used to keep scraped
// items stable across runs.
package event
