// Package main implements the entry point for the homework tracker
// server: it wires configuration, logging, the document store, the task
// coordinator and the HTTP API together.
package main

import (
	"fmt"
	"log"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/studyhall/hwtrack/internal/api"
	"github.com/studyhall/hwtrack/internal/config"
	"github.com/studyhall/hwtrack/internal/pipeline"
	"github.com/studyhall/hwtrack/internal/platform/jsonfile"
	"github.com/studyhall/hwtrack/internal/platform/logger"
	"github.com/studyhall/hwtrack/internal/task"
)

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// application holds the wired components for the server lifecycle.
type application struct {
	config      *config.Config
	logger      *slog.Logger
	coordinator *task.Coordinator
	views       *api.MemoryPresenter
	scheduler   *cron.Cron
}

// initializeApp loads configuration and sets up application components.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"data_file", cfg.Storage.DataFile)

	docs := jsonfile.New(cfg.Storage.DataFile, appLogger)
	views := api.NewMemoryPresenter()

	coordinator := task.New(docs, views, task.Config{
		TickInterval:  cfg.Scheduler.TickInterval(),
		QueueSize:     cfg.Scheduler.QueueSize,
		DateCacheSize: cfg.Scheduler.DateCacheSize,
		Pipeline: pipeline.Config{
			BatchSize:       cfg.Scheduler.BatchSize,
			ChannelCapacity: cfg.Scheduler.ChannelCapacity,
			EagerBatches:    cfg.Scheduler.EagerBatches,
		},
	}, appLogger)

	scheduler, err := newRecomputeScheduler(cfg.Scheduler.RecomputeSchedule, coordinator, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up recompute schedule: %w", err)
	}

	return &application{
		config:      cfg,
		logger:      appLogger,
		coordinator: coordinator,
		views:       views,
		scheduler:   scheduler,
	}, nil
}

// newRecomputeScheduler builds the cron job that periodically recomputes
// every cached status tag, so day rollovers surface without a mutation.
func newRecomputeScheduler(schedule string, coordinator *task.Coordinator, appLogger *slog.Logger) (*cron.Cron, error) {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(schedule, func() {
		if err := coordinator.Submit(task.KindRefresh, task.RefreshParams{Recompute: true}); err != nil {
			appLogger.Warn("periodic recompute submission failed", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return scheduler, nil
}
