package utils

import (
	"time"
)

// IsLocationValid checks if the provided coordinates are valid
func IsLocationValid(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// IsLocationRecent checks if the location was reported within maxAge
func IsLocationRecent(lastSeen *time.Time, maxAge time.Duration) bool {
	if lastSeen == nil {
		return false
	}
	return lastSeen.After(time.Now().Add(-maxAge))
}
