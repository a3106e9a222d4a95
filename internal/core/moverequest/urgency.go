package moverequest

import "time"

// Urgency is a derived, never-persisted classification of a scheduled date.
type Urgency string

const (
	UrgencyOverdue   Urgency = "overdue"
	UrgencyUrgent    Urgency = "urgent"
	UrgencySoon      Urgency = "soon"
	UrgencyScheduled Urgency = "scheduled"
)

const secondsPerDay = 86400

// UrgencyOf classifies scheduledDate (epoch seconds) relative to now.
// Recompute on every read; the result depends on wall-clock time.
func UrgencyOf(scheduledDate int64, now time.Time) Urgency {
	nowSec := now.Unix()
	if scheduledDate < nowSec {
		return UrgencyOverdue
	}
	daysUntil := float64(scheduledDate-nowSec) / secondsPerDay
	switch {
	case daysUntil < 1:
		return UrgencyUrgent
	case daysUntil < 3:
		return UrgencySoon
	default:
		return UrgencyScheduled
	}
}
