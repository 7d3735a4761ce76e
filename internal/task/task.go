package task

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies a task's operation. The set is closed: every kind has a
// dedicated handler and, where applicable, a dedicated params type.
type Kind string

// The nine task kinds.
const (
	KindLoad               Kind = "load"
	KindSave               Kind = "save"
	KindAdd                Kind = "add"
	KindRefresh            Kind = "refresh"
	KindUpdateDerivedViews Kind = "update_derived_views"
	KindQuery              Kind = "query"
	KindDelete             Kind = "delete"
	KindClearAll           Kind = "clear_all"
	KindMarkCompleted      Kind = "mark_completed"
)

// ErrBadParams is returned by Submit when the params value does not match
// the task kind.
var ErrBadParams = errors.New("task params do not match task kind")

// Params is the closed set of per-kind payloads. Kinds without parameters
// take a nil Params.
type Params interface {
	taskKind() Kind
}

// AddParams carries a new homework record. Dates arrive in user format
// and are normalized by the add handler.
type AddParams struct {
	Code       string `json:"code"       validate:"required"`
	Subject    string `json:"subject"    validate:"required"`
	Content    string `json:"content"    validate:"required"`
	CreateDate string `json:"create_date" validate:"required"`
	DueDate    string `json:"due_date"   validate:"required"`
}

func (AddParams) taskKind() Kind { return KindAdd }

// QueryField selects which date field a query matches against.
type QueryField string

// Possible query fields.
const (
	QueryByDue    QueryField = "due"
	QueryByCreate QueryField = "create"
)

// QueryParams carries an exact-date query.
type QueryParams struct {
	Date  string     `json:"date"  validate:"required"`
	Field QueryField `json:"field" validate:"required,oneof=due create"`
}

func (QueryParams) taskKind() Kind { return KindQuery }

// DeleteParams carries the set of codes to remove.
type DeleteParams struct {
	Codes []string `json:"codes" validate:"required,min=1"`
}

func (DeleteParams) taskKind() Kind { return KindDelete }

// MarkCompletedParams identifies the single item to mark complete.
type MarkCompletedParams struct {
	Code string `json:"code" validate:"required"`
}

func (MarkCompletedParams) taskKind() Kind { return KindMarkCompleted }

// RefreshParams optionally forces a full status cache recompute before
// the view is rebuilt. A refresh submitted with nil params keeps the
// current cache.
type RefreshParams struct {
	Recompute bool `json:"recompute"`
}

func (RefreshParams) taskKind() Kind { return KindRefresh }

// Task is a single queued work request. The submission timestamp is kept
// for ordering diagnostics only; scheduling is strictly FIFO.
type Task struct {
	ID          uuid.UUID
	Kind        Kind
	Params      Params
	SubmittedAt time.Time
}

func newTask(kind Kind, params Params, now time.Time) (Task, error) {
	if params != nil && params.taskKind() != kind {
		return Task{}, fmt.Errorf("%w: %s params submitted as %s", ErrBadParams, params.taskKind(), kind)
	}
	if params == nil {
		switch kind {
		case KindAdd, KindQuery, KindDelete, KindMarkCompleted:
			return Task{}, fmt.Errorf("%w: %s requires params", ErrBadParams, kind)
		}
	}
	return Task{
		ID:          uuid.New(),
		Kind:        kind,
		Params:      params,
		SubmittedAt: now,
	}, nil
}
