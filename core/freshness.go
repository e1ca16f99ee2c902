package core

import "time"

// IsFresh reports whether an entry stored at storedAt is still inside its window.
// Only time decides; a default-shaped payload is judged the same way as live data.
// A zero storedAt marks an invalidated entry and is never fresh.
func IsFresh(storedAt time.Time, window time.Duration, now time.Time) bool {
	if storedAt.IsZero() {
		return false
	}
	return now.Sub(storedAt) < window
}

// Remaining returns the time left until the entry goes stale. Zero or below means due now.
func Remaining(storedAt time.Time, window time.Duration, now time.Time) time.Duration {
	if storedAt.IsZero() {
		return 0
	}
	return storedAt.Add(window).Sub(now)
}
