package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/greenloop/greenloop/internal/observability"
	"github.com/greenloop/greenloop/internal/progression"
)

// DigestPort aggregates daily progression stats.
type DigestPort interface {
	Digest(ctx context.Context, asOf time.Time) (progression.DigestStats, error)
}

// ProgressionDigest logs a daily summary of streak activity for
// operators.
type ProgressionDigest struct {
	repo    DigestPort
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewProgressionDigest constructs the digest job.
func NewProgressionDigest(repo DigestPort, metrics *observability.Metrics, logger *slog.Logger) *ProgressionDigest {
	return &ProgressionDigest{repo: repo, metrics: metrics, logger: logger}
}

// Handle processes TaskTypeProgressionDigest tasks.
func (j *ProgressionDigest) Handle(ctx context.Context, t *asynq.Task) error {
	var payload DailyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	asOf, err := payload.asOf(time.Now().UTC())
	if err != nil {
		return asynq.SkipRetry
	}

	stats, err := j.repo.Digest(ctx, asOf)
	if err != nil {
		j.metrics.JobProcessed(TaskTypeProgressionDigest, "failure")
		return fmt.Errorf("progression digest: %w", err)
	}

	j.metrics.JobProcessed(TaskTypeProgressionDigest, "success")
	j.logger.Info("progression digest",
		slog.Time("as_of", asOf),
		slog.Int("active_streaks", stats.ActiveStreaks),
		slog.Int("milestones_granted", stats.MilestonesGranted),
		slog.Int("longest_streak", stats.LongestStreak))
	return nil
}
