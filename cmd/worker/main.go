package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/greenloop/greenloop/internal/app"
	"github.com/greenloop/greenloop/internal/observability"
	"github.com/greenloop/greenloop/internal/platform/cache"
	"github.com/greenloop/greenloop/internal/platform/db"
	"github.com/greenloop/greenloop/internal/progression"
	"github.com/greenloop/greenloop/jobs"
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	client, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	mailer := &jobs.Mailer{From: cfg.SMTPFrom}
	if cfg.SMTPHost == "" {
		logger.Warn("smtp host not configured, outgoing mail will be dropped")
	} else {
		mailer.Addr = fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	}

	progressionRepo := progression.NewRepository(pool)
	reminderJob := jobs.NewStreakReminder(progressionRepo, client, metrics, logger)
	digestJob := jobs.NewProgressionDigest(progressionRepo, metrics, logger)

	remindTask, err := jobs.NewStreakRemindTask(jobs.DailyPayload{})
	if err != nil {
		logger.Error("build reminder task", slog.Any("error", err))
		os.Exit(1)
	}
	digestTask, err := jobs.NewProgressionDigestTask(jobs.DailyPayload{})
	if err != nil {
		logger.Error("build digest task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: jobs.HandleSendEmailTask(mailer)},
			{Type: jobs.TaskTypeStreakRemind, Handler: reminderJob.Handle},
			{Type: jobs.TaskTypeProgressionDigest, Handler: digestJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 17 * * *", Task: remindTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "15 0 * * *", Task: digestTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
