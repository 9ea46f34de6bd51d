// Package discount recomputes time-dependent discount state so a customer's
// benefit is neither extended nor truncated by when the migration runs.
package discount

import "time"

// RemainingMonths returns how many months of a repeating discount are left
// at now, given when the discount started and its total duration. Whole
// calendar months are counted: a month is elapsed only once its anniversary
// has passed. The result is clamped to [0, totalMonths].
func RemainingMonths(start time.Time, totalMonths int64, now time.Time) int64 {
	if totalMonths <= 0 {
		return 0
	}
	if !start.Before(now) {
		return totalMonths
	}
	var elapsed int64
	for elapsed < totalMonths && !start.AddDate(0, int(elapsed)+1, 0).After(now) {
		elapsed++
	}
	return totalMonths - elapsed
}
