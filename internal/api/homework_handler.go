package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/studyhall/hwtrack/internal/api/shared"
	"github.com/studyhall/hwtrack/internal/task"
)

// TaskSubmitter is the slice of the task coordinator the HTTP layer
// needs: asynchronous submission plus the queue readout.
type TaskSubmitter interface {
	Submit(kind task.Kind, params task.Params) error
	QueueDepth() int
	CurrentTaskKind() *task.Kind
}

// HomeworkHandler handles homework-related HTTP requests by translating
// them into coordinator task submissions.
type HomeworkHandler struct {
	tasks     TaskSubmitter
	views     *MemoryPresenter
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHomeworkHandler creates a new HomeworkHandler.
func NewHomeworkHandler(tasks TaskSubmitter, views *MemoryPresenter, logger *slog.Logger) *HomeworkHandler {
	return &HomeworkHandler{
		tasks:     tasks,
		views:     views,
		validator: validator.New(),
		logger:    logger.With(slog.String("component", "api")),
	}
}

// SubmitTask handles POST /api/tasks requests: the generic submission
// endpoint accepting any task kind with kind-shaped params.
func (h *HomeworkHandler) SubmitTask(w http.ResponseWriter, r *http.Request) {
	var req SubmitTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	params, err := decodeParams(req.Kind, req.Params)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task params: "+err.Error())
		return
	}

	h.submit(w, r, req.Kind, params)
}

// AddHomework handles POST /api/homeworks requests.
func (h *HomeworkHandler) AddHomework(w http.ResponseWriter, r *http.Request) {
	var req AddHomeworkRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	h.submit(w, r, task.KindAdd, task.AddParams{
		Code:       req.Code,
		Subject:    req.Subject,
		Content:    req.Content,
		CreateDate: req.CreateDate,
		DueDate:    req.DueDate,
	})
}

// ListHomeworks handles GET /api/homeworks requests, serving the latest
// view the core presented. During a bulk load the response carries a
// progress below 1.
func (h *HomeworkHandler) ListHomeworks(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.views.List())
}

// GetStats handles GET /api/homeworks/stats requests, serving the latest
// aggregate counts.
func (h *HomeworkHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	agg, ok := h.views.Aggregates()
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "No aggregates computed yet")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, agg)
}

// DeleteHomeworks handles DELETE /api/homeworks requests: bulk removal
// by code set.
func (h *HomeworkHandler) DeleteHomeworks(w http.ResponseWriter, r *http.Request) {
	var req DeleteHomeworksRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	h.submit(w, r, task.KindDelete, task.DeleteParams{Codes: req.Codes})
}

// MarkCompleted handles POST /api/homeworks/{code}/complete requests.
func (h *HomeworkHandler) MarkCompleted(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing homework code")
		return
	}

	h.submit(w, r, task.KindMarkCompleted, task.MarkCompletedParams{Code: code})
}

// GetQueue handles GET /api/queue requests: the coordinator readout plus
// the retained notification history.
func (h *HomeworkHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		QueueStatusResponse
		Notices []NoticeResponse `json:"notices"`
	}{
		QueueStatusResponse: QueueStatusResponse{
			Depth:       h.tasks.QueueDepth(),
			CurrentKind: h.tasks.CurrentTaskKind(),
		},
		Notices: h.views.Notices(),
	})
}

// submit enqueues the task and acknowledges with 202; a full queue maps
// to 503 so clients can back off and retry.
func (h *HomeworkHandler) submit(w http.ResponseWriter, r *http.Request, kind task.Kind, params task.Params) {
	if err := h.tasks.Submit(kind, params); err != nil {
		switch {
		case errors.Is(err, task.ErrQueueFull):
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable,
				"Task queue is full, retry later", err)
		case errors.Is(err, task.ErrBadParams):
			shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		default:
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"Failed to submit task", err)
		}
		return
	}

	h.logger.Debug("task submitted", "task_kind", kind)
	shared.RespondWithJSON(w, r, http.StatusAccepted, TaskAcceptedResponse{
		Kind:       kind,
		QueueDepth: h.tasks.QueueDepth(),
	})
}

// decodeParams unmarshals raw params into the concrete type for the task
// kind. Kinds without params tolerate an absent body.
func decodeParams(kind task.Kind, raw json.RawMessage) (task.Params, error) {
	unmarshal := func(v any) error {
		if len(raw) == 0 {
			return errors.New("params are required for kind " + string(kind))
		}
		return json.Unmarshal(raw, v)
	}

	switch kind {
	case task.KindAdd:
		var p task.AddParams
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case task.KindQuery:
		var p task.QueryParams
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case task.KindDelete:
		var p task.DeleteParams
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case task.KindMarkCompleted:
		var p task.MarkCompletedParams
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case task.KindRefresh:
		if len(raw) == 0 {
			return nil, nil
		}
		var p task.RefreshParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, nil
	}
}
