package domain

// Status is the explicit, persisted completion state of a homework item.
// It is distinct from the derived Tag, which also factors in the due date
// and the current time.
type Status string

// Possible persisted status values. An empty status in a legacy document
// is normalized to StatusPending during load.
const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Homework represents a single homework record. Code is the primary key
// and is immutable once the record is created. Dates are stored as
// DD/MM/YYYY strings, day precision, no timezone, matching the persisted
// document format.
type Homework struct {
	Code       string `json:"code"`
	Subject    string `json:"subject"`
	Content    string `json:"content"`
	CreateDate string `json:"create_date"`
	DueDate    string `json:"due_date"`
	Status     Status `json:"status"`
}

// Completed reports whether the item has been explicitly marked complete.
func (h Homework) Completed() bool {
	return h.Status == StatusCompleted
}
