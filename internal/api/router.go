package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/studyhall/hwtrack/internal/api/middleware"
)

// NewRouter builds the application router with standard middleware and
// all homework routes registered.
func NewRouter(handler *HomeworkHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/tasks", handler.SubmitTask)

		r.Post("/homeworks", handler.AddHomework)
		r.Get("/homeworks", handler.ListHomeworks)
		r.Delete("/homeworks", handler.DeleteHomeworks)
		r.Get("/homeworks/stats", handler.GetStats)
		r.Post("/homeworks/{code}/complete", handler.MarkCompleted)

		r.Get("/queue", handler.GetQueue)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
