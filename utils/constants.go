// File: utils/constants.go
package utils

import "time"

// LocationCachePrefix is the prefix for cached professional positions.
const LocationCachePrefix = "loc:"

// LocationCacheTTL bounds how stale a cached position may be before the
// matching path falls back to the durable record.
const LocationCacheTTL = 5 * time.Minute

// CodeTTL is the logical lifetime of a completion code.
const CodeTTL = 10 * time.Minute

// CodeResendCooldown is the minimum gap between two code deliveries for
// the same booking.
const CodeResendCooldown = 30 * time.Second

// MaxCodeAttempts bounds failed completion-code checks per session.
const MaxCodeAttempts = 3
