// Package rules validates and normalizes canonical events before they reach
// the catalog: required fields, a configurable date window, location
// presence, a delegated preference check, and canonicalization of cities,
// countries and categories.
package rules
