package progression

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/greenloop/greenloop/internal/observability"
	"github.com/greenloop/greenloop/internal/shared"
)

// Progress is the persisted XP state. XP only increases; level and
// attribute scores are derived from it on read.
type Progress struct {
	UserID     int64
	TotalXP    int
	BadgeCount int
}

// RepositoryPort defines data access for streak and XP state.
type RepositoryPort interface {
	GetStreak(ctx context.Context, userID int64) (StreakRecord, error)
	InsertStreak(ctx context.Context, rec StreakRecord) error
	// UpdateStreak persists rec only when the stored last_activity_date
	// still equals expected, and reports whether the write happened. The
	// compare-and-swap keeps same-day double recording idempotent even
	// with two devices racing.
	UpdateStreak(ctx context.Context, rec StreakRecord, expected time.Time) (bool, error)
	AddReward(ctx context.Context, userID int64, milestone int, grantedAt time.Time) error
	GetProgress(ctx context.Context, userID int64) (Progress, error)
	GrantXP(ctx context.Context, userID int64, points int) (Progress, error)
}

// AuditPort records progression events to the audit log.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service drives streak transitions and serves derived progression state.
type Service struct {
	repo    RepositoryPort
	audit   AuditPort
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit AuditPort, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, metrics: metrics, logger: logger}
}

// ActivityResult reports the streak state after an activity event.
type ActivityResult struct {
	Record StreakRecord
	Change StreakChange
	Status StreakStatus
}

// StreakStatus is the derived streak summary for display.
type StreakStatus struct {
	CurrentStreak          int     `json:"current_streak"`
	LongestStreak          int     `json:"longest_streak"`
	Multiplier             float64 `json:"multiplier"`
	NextMilestone          *int    `json:"next_milestone,omitempty"`
	DaysUntilNextMilestone *int    `json:"days_until_next_milestone,omitempty"`
	Message                string  `json:"message"`
	RewardsEarned          []int   `json:"rewards_earned"`
}

// RecordActivity applies a qualifying-activity event for the user. What
// counts as qualifying is decided by the caller; this only advances the
// streak state machine.
func (s *Service) RecordActivity(ctx context.Context, userID int64, now time.Time) (ActivityResult, error) {
	rec, err := s.repo.GetStreak(ctx, userID)
	isNew := false
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return ActivityResult{}, fmt.Errorf("progression: load streak: %w", err)
		}
		rec = StreakRecord{UserID: userID}
		isNew = true
	}

	prevLastActivity := rec.LastActivityDate
	next, change, err := Advance(rec, now)
	if err != nil {
		s.logger.Warn("rejected backdated activity",
			slog.Int64("user_id", userID),
			slog.Time("last_activity", rec.LastActivityDate),
			slog.Time("event_time", now))
		return ActivityResult{}, err
	}

	if change.Kind == ChangeNone {
		return s.result(next, change), nil
	}

	if isNew {
		if err := s.repo.InsertStreak(ctx, next); err != nil {
			return ActivityResult{}, fmt.Errorf("progression: insert streak: %w", err)
		}
	} else {
		ok, err := s.repo.UpdateStreak(ctx, next, prevLastActivity)
		if err != nil {
			return ActivityResult{}, fmt.Errorf("progression: update streak: %w", err)
		}
		if !ok {
			// Lost a same-day race with another device. Re-read and
			// report the stored state; the day is already counted.
			stored, err := s.repo.GetStreak(ctx, userID)
			if err != nil {
				return ActivityResult{}, fmt.Errorf("progression: reload streak: %w", err)
			}
			return s.result(stored, StreakChange{Kind: ChangeNone}), nil
		}
	}
	s.metrics.ActivityRecorded()

	if m := change.NewMilestone; m != 0 {
		if err := s.repo.AddReward(ctx, userID, m, DateOnly(now)); err != nil {
			return ActivityResult{}, fmt.Errorf("progression: grant milestone: %w", err)
		}
		next.Rewards = append(next.Rewards, m)
		s.metrics.MilestoneGranted(m)
		s.recordAudit(ctx, userID, "streak.milestone", map[string]any{
			"milestone": m,
			"streak":    next.CurrentStreak,
		})
	}

	return s.result(next, change), nil
}

// Status returns the streak summary for a user. Users with no recorded
// activity get the zero streak, not an error.
func (s *Service) Status(ctx context.Context, userID int64) (StreakStatus, error) {
	rec, err := s.repo.GetStreak(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return statusFor(StreakRecord{UserID: userID}), nil
		}
		return StreakStatus{}, fmt.Errorf("progression: load streak: %w", err)
	}
	return statusFor(rec), nil
}

// ProfileAttributes is the derived level and attribute view.
type ProfileAttributes struct {
	Level          int        `json:"level"`
	TotalXP        int        `json:"total_xp"`
	XPIntoLevel    int        `json:"xp_into_level"`
	XPForNextLevel int        `json:"xp_for_next_level"`
	BadgeCount     int        `json:"badge_count"`
	Attributes     Attributes `json:"attributes"`
}

// AttributesFor recomputes the profile attributes from stored XP, badges
// and streak. The two reads are independent and run concurrently.
func (s *Service) AttributesFor(ctx context.Context, userID int64) (ProfileAttributes, error) {
	var (
		progress Progress
		rec      StreakRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.repo.GetProgress(gctx, userID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("progression: load progress: %w", err)
		}
		progress = p
		return nil
	})
	g.Go(func() error {
		r, err := s.repo.GetStreak(gctx, userID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("progression: load streak: %w", err)
		}
		rec = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return ProfileAttributes{}, err
	}
	return ProfileAttributes{
		Level:          LevelForXP(progress.TotalXP),
		TotalXP:        progress.TotalXP,
		XPIntoLevel:    XPIntoLevel(progress.TotalXP),
		XPForNextLevel: XPForNextLevel(progress.TotalXP),
		BadgeCount:     progress.BadgeCount,
		Attributes:     ComputeAttributes(progress.TotalXP, progress.BadgeCount, rec.CurrentStreak),
	}, nil
}

// GrantXP adds points to the user's XP total. Multipliers are applied by
// the caller before granting; the engine never applies its own multiplier.
func (s *Service) GrantXP(ctx context.Context, userID int64, points int) (Progress, error) {
	if points <= 0 {
		return Progress{}, errors.New("progression: xp grant must be positive")
	}
	progress, err := s.repo.GrantXP(ctx, userID, points)
	if err != nil {
		return Progress{}, fmt.Errorf("progression: grant xp: %w", err)
	}
	s.recordAudit(ctx, userID, "xp.grant", map[string]any{
		"points":   points,
		"total_xp": progress.TotalXP,
	})
	return progress, nil
}

func (s *Service) result(rec StreakRecord, change StreakChange) ActivityResult {
	return ActivityResult{Record: rec, Change: change, Status: statusFor(rec)}
}

func statusFor(rec StreakRecord) StreakStatus {
	status := StreakStatus{
		CurrentStreak: rec.CurrentStreak,
		LongestStreak: rec.LongestStreak,
		Multiplier:    Multiplier(rec.CurrentStreak),
		Message:       StatusMessage(rec.CurrentStreak),
		RewardsEarned: append([]int(nil), rec.Rewards...),
	}
	if next, ok := NextMilestone(rec.CurrentStreak); ok {
		days := next - rec.CurrentStreak
		status.NextMilestone = &next
		status.DaysUntilNextMilestone = &days
	}
	return status
}

func (s *Service) recordAudit(ctx context.Context, userID int64, action string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  userID,
		Action:   action,
		Entity:   "progression",
		EntityID: strconv.FormatInt(userID, 10),
		Meta:     meta,
		At:       time.Now(),
	})
	if err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
