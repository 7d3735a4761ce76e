package api

import (
	"encoding/json"

	"github.com/studyhall/hwtrack/internal/domain"
	"github.com/studyhall/hwtrack/internal/present"
	"github.com/studyhall/hwtrack/internal/task"
)

// AddHomeworkRequest defines the payload for creating a homework record.
// Dates arrive in DD/MM/YYYY user format and are normalized by the core.
type AddHomeworkRequest struct {
	Code       string `json:"code"        validate:"required"`
	Subject    string `json:"subject"     validate:"required"`
	Content    string `json:"content"     validate:"required"`
	CreateDate string `json:"create_date" validate:"required"`
	DueDate    string `json:"due_date"    validate:"required"`
}

// DeleteHomeworksRequest defines the payload for bulk deletion by code.
type DeleteHomeworksRequest struct {
	Codes []string `json:"codes" validate:"required,min=1"`
}

// SubmitTaskRequest defines the payload for the generic task submission
// endpoint. Params is decoded according to Kind.
type SubmitTaskRequest struct {
	Kind   task.Kind       `json:"kind" validate:"required"`
	Params json.RawMessage `json:"params,omitempty"`
}

// TaskAcceptedResponse acknowledges an asynchronous task submission.
type TaskAcceptedResponse struct {
	Kind       task.Kind `json:"kind"`
	QueueDepth int       `json:"queue_depth"`
}

// HomeworkListResponse is the latest presented view of the collection.
type HomeworkListResponse struct {
	Items    []domain.Homework `json:"items"`
	Stats    present.Stats     `json:"stats"`
	Progress float64           `json:"progress"`
}

// QueueStatusResponse reports the coordinator's queue readout.
type QueueStatusResponse struct {
	Depth       int        `json:"depth"`
	CurrentKind *task.Kind `json:"current_kind"`
}

// NoticeResponse is one retained user notification.
type NoticeResponse struct {
	Message  string           `json:"message"`
	Severity present.Severity `json:"severity"`
}
