// Package common provides shared utilities for haito
package common

import "time"

// FreshnessPrice is the default validity window of a cached quote.
const FreshnessPrice = 300 * time.Second

// IsFresh returns true if the given timestamp is within the TTL as of now.
func IsFresh(updated, now time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return now.Sub(updated) < ttl
}
