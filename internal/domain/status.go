package domain

import "time"

// Tag is the derived, point-in-time classification of a homework item
// relative to "now" and the remind-days setting. It is never persisted;
// it is always recomputable from the item plus configuration.
type Tag string

// Possible derived status tags.
const (
	TagPending   Tag = "pending"
	TagDueSoon   Tag = "due_soon"
	TagDueToday  Tag = "due_today"
	TagOverdue   Tag = "overdue"
	TagCompleted Tag = "completed"
)

// Weight returns the sort weight for a tag. Lower weights sort first so
// the most urgent items surface at the top of the list regardless of
// persisted order.
func (t Tag) Weight() int {
	switch t {
	case TagDueToday:
		return 0
	case TagOverdue:
		return 1
	case TagDueSoon:
		return 2
	case TagCompleted:
		return 4
	default:
		return 3
	}
}

// Classify maps an item's due date and explicit status to a derived tag.
// due is the parsed due date; dueOK is false when the due date string was
// unparseable, which degrades to TagPending rather than failing.
//
// Classify is pure: for fixed inputs it always returns the same tag, and
// a completed item classifies as TagCompleted regardless of its due date.
func Classify(due time.Time, dueOK bool, explicit Status, now time.Time, remindDays int) Tag {
	if explicit == StatusCompleted {
		return TagCompleted
	}
	if !dueOK {
		return TagPending
	}

	// Compare date-only parts; times of day are irrelevant at day precision.
	dueDay := truncateToDay(due)
	today := truncateToDay(now)

	switch {
	case dueDay.Before(today):
		return TagOverdue
	case dueDay.Equal(today):
		return TagDueToday
	case int(dueDay.Sub(today).Hours()/24) <= remindDays:
		return TagDueSoon
	default:
		return TagPending
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
