package present

import "github.com/studyhall/hwtrack/internal/domain"

// Severity classifies user-facing notifications.
type Severity string

// Possible notification severities.
const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Stats are the headline counts shown alongside every presented list,
// computed over displayable items only.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
	DueToday  int `json:"due_today"`
}

// Aggregates are the derived-view numbers: per-tag counts over displayable
// items plus per-day created/due counts over the trailing chart window.
// Days, Created and Due are parallel slices, oldest day first.
type Aggregates struct {
	ByTag   map[domain.Tag]int `json:"by_tag"`
	Days    []string           `json:"days"`
	Created []int              `json:"created"`
	Due     []int              `json:"due"`
}

// ProgressComplete marks a PresentList call that carries the final view
// rather than an incremental partial during a bulk load.
const ProgressComplete = 1.0

// Presenter receives results and notifications from the task core. Calls
// arrive from the coordinator goroutine and from pipeline workers;
// implementations must be safe for concurrent use.
type Presenter interface {
	// NotifyUser surfaces a one-line message to the user.
	NotifyUser(message string, severity Severity)

	// PresentList delivers a sorted, display-filtered view. progress is in
	// (0, 1] — values below ProgressComplete are incremental partial
	// results during a bulk load.
	PresentList(items []domain.Homework, stats Stats, progress float64)

	// PresentAggregates delivers recomputed derived-view numbers.
	PresentAggregates(agg Aggregates)
}
