package engine

import "time"

// IsDue reports whether a scheduled backup should run at now.
// It is due when no backup was ever recorded, or when now falls on a
// different UTC calendar day than the last one.
func IsDue(last time.Time, hasLast bool, now time.Time) bool {
	if !hasLast {
		return true
	}
	ly, lm, ld := last.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	return ly != ny || lm != nm || ld != nd
}
