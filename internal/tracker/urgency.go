package tracker

import "time"

// Urgency classifies how close a due date is. Purely informational: it is
// computed for API responses and never persisted.
type Urgency string

const (
	// UrgencyOverdue means the due date has already passed.
	UrgencyOverdue Urgency = "overdue"
	// UrgencyImminent means the record is due within 2 days.
	UrgencyImminent Urgency = "imminent"
	// UrgencyApproaching means the record is due within 3 to 7 days.
	UrgencyApproaching Urgency = "approaching"
	// UrgencyDistant means the due date is more than a week away.
	UrgencyDistant Urgency = "distant"
	// UrgencyNone means the record has no due date.
	UrgencyNone Urgency = "none"
)

// Classify returns the urgency class for a due date relative to now.
// Days are counted on calendar-day boundaries in the local time of now.
func Classify(due, now time.Time) Urgency {
	days := DaysRemaining(due, now)
	switch {
	case days < 0:
		return UrgencyOverdue
	case days <= 2:
		return UrgencyImminent
	case days <= 7:
		return UrgencyApproaching
	default:
		return UrgencyDistant
	}
}

// DaysRemaining returns the number of whole calendar days between now and
// the due date. Negative when the due date is in the past.
func DaysRemaining(due, now time.Time) int {
	startOfDay := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	return int(startOfDay(due).Sub(startOfDay(now)).Hours() / 24)
}
