// Package scrape implements the configuration-driven scrape engine: given a
// declarative site definition (selectors, transforms, pagination, rate
// limits), it extracts RawEvents from listing pages without per-site code,
// optionally enriching each item from its own detail page via schema.org
// JSON-LD or fallback selectors.
//
// Configs are compiled once: selector syntax and transform names are
// validated up front, so a bad config fails at startup instead of mid-run.
// Transport failures retry with exponential backoff; extraction failures
// skip the single item or page per the configured error policy.
package scrape
