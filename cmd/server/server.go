package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/studyhall/hwtrack/internal/api"
	"github.com/studyhall/hwtrack/internal/task"
)

// run starts the coordinator, the recompute scheduler and the HTTP
// server, then blocks until shutdown completes.
func (app *application) run() error {
	app.coordinator.Start()
	defer app.coordinator.Stop()

	// The initial bulk load is just the first queued task.
	if err := app.coordinator.Submit(task.KindLoad, nil); err != nil {
		return fmt.Errorf("submitting initial load: %w", err)
	}

	app.scheduler.Start()
	defer app.scheduler.Stop()

	handler := api.NewHomeworkHandler(app.coordinator, app.views, app.logger)
	router := api.NewRouter(handler, app.logger)

	return app.startHTTPServer(router)
}

// startHTTPServer runs the HTTP server with graceful shutdown on SIGINT
// and SIGTERM.
func (app *application) startHTTPServer(router http.Handler) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: router,
	}

	serverCtx, cancelServer := context.WithCancel(context.Background())
	defer cancelServer()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		app.logger.Info("starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error("server failed", "error", err)
			cancelServer()
		}
	}()

	select {
	case <-shutdownCh:
		app.logger.Info("shutting down server")
	case <-serverCtx.Done():
		app.logger.Info("server context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.logger.Info("server shutdown completed")
	return nil
}
