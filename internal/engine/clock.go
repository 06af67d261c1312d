package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The engine uses it to stamp new leads and to decide whether a backup is due.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}
