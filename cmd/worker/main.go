package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/menuforge/menuforge/internal/app"
	"github.com/menuforge/menuforge/internal/businesses"
	"github.com/menuforge/menuforge/internal/cascade"
	"github.com/menuforge/menuforge/internal/identity"
	"github.com/menuforge/menuforge/internal/media"
	"github.com/menuforge/menuforge/internal/observability"
	"github.com/menuforge/menuforge/internal/platform/db"
	"github.com/menuforge/menuforge/internal/profiles"
	"github.com/menuforge/menuforge/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()
	adminClient := identity.NewAdminClient(cfg.IdentityBaseURL, cfg.IdentityServiceKey)
	mediaHost := media.NewCloudinaryClient(cfg.MediaBaseURL, cfg.MediaAPIKey, cfg.MediaAPISecret)

	profileRepo := profiles.NewRepository(pool)
	businessRepo := businesses.NewRepository(pool)
	orchestrator := cascade.NewOrchestrator(logger, profileRepo, businessRepo, mediaHost, adminClient, metrics, cfg.MediaRoot)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeAccountPurge, Handler: jobs.NewAccountPurgeHandler(logger, orchestrator)},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
