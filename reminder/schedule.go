// Package reminder computes reminder send times and delivers due
// reminders over a pluggable sender.
package reminder

import "time"

// ComputeSendAt returns the UTC instant at which a reminder for an
// occurrence should fire: the occurrence instant minus the lead time.
// Negative lead times are clamped to zero. Pure and total.
func ComputeSendAt(occurrenceAt time.Time, leadMinutes int) time.Time {
	if leadMinutes < 0 {
		leadMinutes = 0
	}
	return occurrenceAt.UTC().Add(-time.Duration(leadMinutes) * time.Minute)
}
