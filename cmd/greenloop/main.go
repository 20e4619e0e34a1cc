package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/greenloop/greenloop/internal/app"
	"github.com/greenloop/greenloop/internal/auth"
	"github.com/greenloop/greenloop/internal/nav"
	"github.com/greenloop/greenloop/internal/observability"
	"github.com/greenloop/greenloop/internal/platform/cache"
	"github.com/greenloop/greenloop/internal/platform/db"
	"github.com/greenloop/greenloop/internal/progression"
	"github.com/greenloop/greenloop/internal/rbac"
	"github.com/greenloop/greenloop/internal/shared"
	"github.com/greenloop/greenloop/internal/users"
	"github.com/greenloop/greenloop/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "greenloop_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	table := rbac.NewTable()
	gate := rbac.NewGate(table, logger)
	if err := gate.Validate(); err != nil {
		logger.Error("screen gate validation", slog.Any("error", err))
		os.Exit(1)
	}
	guard := rbac.NewGuard(table)
	metrics := observability.NewMetrics()
	rbacMiddleware := rbac.Middleware{Guard: guard, Logger: logger, Metrics: metrics}

	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, table, sessionManager, csrfManager)

	accessHandler := rbac.NewHandler(logger, table, gate, guard, rbacMiddleware)

	navResolver := nav.NewResolver(gate)
	navHandler := nav.NewHandler(logger, navResolver)

	progressionRepo := progression.NewRepository(dbpool)
	progressionService := progression.NewService(progressionRepo, auditLogger, metrics, logger)
	progressionHandler := progression.NewHandler(logger, progressionService, idempotencyStore, rbacMiddleware)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, auditLogger, logger)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		AuthHandler:        authHandler,
		AccessHandler:      accessHandler,
		NavHandler:         navHandler,
		ProgressionHandler: progressionHandler,
		UsersHandler:       usersHandler,
		JobHandler:         jobHandler,
		RBACMiddleware:     rbacMiddleware,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
