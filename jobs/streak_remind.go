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

// StreakPort lists streaks the reminder job cares about.
type StreakPort interface {
	ListStreaksAtRisk(ctx context.Context, asOf time.Time) ([]progression.AtRiskStreak, error)
}

// StreakReminder emails users whose streak ends unless they log activity
// before midnight.
type StreakReminder struct {
	repo    StreakPort
	client  *Client
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewStreakReminder constructs the reminder job.
func NewStreakReminder(repo StreakPort, client *Client, metrics *observability.Metrics, logger *slog.Logger) *StreakReminder {
	return &StreakReminder{repo: repo, client: client, metrics: metrics, logger: logger}
}

// Handle processes TaskTypeStreakRemind tasks.
func (j *StreakReminder) Handle(ctx context.Context, t *asynq.Task) error {
	var payload DailyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	asOf, err := payload.asOf(time.Now().UTC())
	if err != nil {
		return asynq.SkipRetry
	}

	atRisk, err := j.repo.ListStreaksAtRisk(ctx, asOf)
	if err != nil {
		j.metrics.JobProcessed(TaskTypeStreakRemind, "failure")
		return fmt.Errorf("list streaks at risk: %w", err)
	}

	sent := 0
	for _, streak := range atRisk {
		multiplier := progression.Multiplier(streak.CurrentStreak)
		_, err := j.client.EnqueueSendEmail(ctx, SendEmailPayload{
			To:      streak.Email,
			Subject: fmt.Sprintf("Your %d-day streak ends tonight", streak.CurrentStreak),
			Body: fmt.Sprintf(
				"Log a cleanup today to keep your %d-day streak and your %.2fx point multiplier alive.",
				streak.CurrentStreak, multiplier),
		})
		if err != nil {
			j.logger.Warn("enqueue reminder", slog.Int64("user_id", streak.UserID), slog.Any("error", err))
			continue
		}
		sent++
	}

	j.metrics.JobProcessed(TaskTypeStreakRemind, "success")
	j.logger.Info("streak reminders enqueued",
		slog.Int("at_risk", len(atRisk)),
		slog.Int("sent", sent),
		slog.Time("as_of", asOf))
	return nil
}
