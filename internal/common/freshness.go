// Package common provides shared utilities for Folio
package common

import "time"

// Freshness TTLs for quote data
const (
	// FreshnessQuote is how long a fetched price is considered current before
	// a background refresh will re-fetch it.
	FreshnessQuote = 5 * time.Minute
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
