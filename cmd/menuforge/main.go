package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/menuforge/menuforge/internal/app"
	"github.com/menuforge/menuforge/internal/authz"
	"github.com/menuforge/menuforge/internal/businesses"
	"github.com/menuforge/menuforge/internal/cascade"
	"github.com/menuforge/menuforge/internal/categories"
	"github.com/menuforge/menuforge/internal/identity"
	"github.com/menuforge/menuforge/internal/items"
	"github.com/menuforge/menuforge/internal/media"
	"github.com/menuforge/menuforge/internal/observability"
	"github.com/menuforge/menuforge/internal/platform/cache"
	"github.com/menuforge/menuforge/internal/platform/db"
	"github.com/menuforge/menuforge/internal/profiles"
	"github.com/menuforge/menuforge/internal/shared"
	"github.com/menuforge/menuforge/internal/users"
	"github.com/menuforge/menuforge/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	gate := authz.NewGate(authz.DefaultMatrix(), metrics)

	verifier, err := identity.NewJWKSVerifier(ctx, cfg.IdentityJWKSURL, logger)
	if err != nil {
		logger.Error("init token verifier", slog.Any("error", err))
		os.Exit(1)
	}
	adminClient := identity.NewAdminClient(cfg.IdentityBaseURL, cfg.IdentityServiceKey)
	mediaHost := media.NewCloudinaryClient(cfg.MediaBaseURL, cfg.MediaAPIKey, cfg.MediaAPISecret)

	profileRepo := profiles.NewRepository(pool)
	businessRepo := businesses.NewRepository(pool)
	categoryRepo := categories.NewRepository(pool)
	itemRepo := items.NewRepository(pool)

	resolver := identity.NewResolver(verifier, profileRepo, logger)
	auditLogger := shared.NewAuditLogger(pool)

	orchestrator := cascade.NewOrchestrator(logger, profileRepo, businessRepo, mediaHost, adminClient, metrics, cfg.MediaRoot)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	profileService := profiles.NewService(profileRepo)
	businessService := businesses.NewService(businessRepo)
	categoryService := categories.NewService(categoryRepo)
	itemService := items.NewService(itemRepo)
	userService := users.NewService(logger, profileRepo, users.NewRepository(pool), orchestrator, jobsClient,
		auditLogger, cache.NewJSONCache(redisClient, cfg.StatsTTL))

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Resolver:        resolver,
		ProfileHandler:  profiles.NewHandler(logger, profileService, gate),
		BusinessHandler: businesses.NewHandler(logger, businessService, gate),
		CategoryHandler: categories.NewHandler(logger, categoryService, businessService, gate),
		ItemHandler:     items.NewHandler(logger, itemService, categoryService, gate),
		UserHandler:     users.NewHandler(logger, userService, gate),
		Metrics:         metrics,
	})

	srv := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", slog.Any("error", err))
	}
}
