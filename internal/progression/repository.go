package progression

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenloop/greenloop/internal/shared"
)

// Repository is the pgx-backed implementation of RepositoryPort.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds Repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetStreak loads the streak record including granted rewards.
func (r *Repository) GetStreak(ctx context.Context, userID int64) (StreakRecord, error) {
	rec := StreakRecord{UserID: userID}
	err := r.pool.QueryRow(ctx,
		`SELECT current_streak, longest_streak, last_activity_date
		   FROM streak_records WHERE user_id = $1`, userID).
		Scan(&rec.CurrentStreak, &rec.LongestStreak, &rec.LastActivityDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StreakRecord{}, shared.ErrNotFound
		}
		return StreakRecord{}, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT milestone FROM streak_rewards WHERE user_id = $1 ORDER BY milestone`, userID)
	if err != nil {
		return StreakRecord{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var m int
		if err := rows.Scan(&m); err != nil {
			return StreakRecord{}, err
		}
		rec.Rewards = append(rec.Rewards, m)
	}
	return rec, rows.Err()
}

// InsertStreak creates the streak record on first qualifying activity.
func (r *Repository) InsertStreak(ctx context.Context, rec StreakRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO streak_records (user_id, current_streak, longest_streak, last_activity_date, updated_at)
		 VALUES ($1, $2, $3, $4, NOW())`,
		rec.UserID, rec.CurrentStreak, rec.LongestStreak, DateOnly(rec.LastActivityDate))
	return err
}

// UpdateStreak writes the record conditionally on the previously read
// last_activity_date. A zero rows-affected result means another writer got
// there first.
func (r *Repository) UpdateStreak(ctx context.Context, rec StreakRecord, expected time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE streak_records
		    SET current_streak = $2, longest_streak = $3, last_activity_date = $4, updated_at = NOW()
		  WHERE user_id = $1 AND last_activity_date = $5`,
		rec.UserID, rec.CurrentStreak, rec.LongestStreak, DateOnly(rec.LastActivityDate), DateOnly(expected))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AddReward stores a granted milestone. The primary key on
// (user_id, milestone) makes re-grants impossible at the storage layer
// too; conflicts are ignored.
func (r *Repository) AddReward(ctx context.Context, userID int64, milestone int, grantedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO streak_rewards (user_id, milestone, granted_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, milestone) DO NOTHING`,
		userID, milestone, grantedAt)
	return err
}

// GetProgress loads the XP state.
func (r *Repository) GetProgress(ctx context.Context, userID int64) (Progress, error) {
	p := Progress{UserID: userID}
	err := r.pool.QueryRow(ctx,
		`SELECT total_xp, badge_count FROM user_progression WHERE user_id = $1`, userID).
		Scan(&p.TotalXP, &p.BadgeCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Progress{UserID: userID}, shared.ErrNotFound
		}
		return Progress{}, err
	}
	return p, nil
}

// GrantXP adds points to the XP total, creating the row when needed, and
// returns the new state.
func (r *Repository) GrantXP(ctx context.Context, userID int64, points int) (Progress, error) {
	p := Progress{UserID: userID}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO user_progression (user_id, total_xp, badge_count, updated_at)
		 VALUES ($1, $2, 0, NOW())
		 ON CONFLICT (user_id)
		 DO UPDATE SET total_xp = user_progression.total_xp + $2, updated_at = NOW()
		 RETURNING total_xp, badge_count`,
		userID, points).
		Scan(&p.TotalXP, &p.BadgeCount)
	if err != nil {
		return Progress{}, err
	}
	return p, nil
}

// AtRiskStreak identifies a user whose streak breaks unless they act
// today. Consumed by the reminder job.
type AtRiskStreak struct {
	UserID        int64
	Email         string
	CurrentStreak int
}

// DigestStats aggregates one day of progression activity for the daily
// digest job.
type DigestStats struct {
	ActiveStreaks     int
	MilestonesGranted int
	LongestStreak     int
}

// Digest computes the stats for the given day.
func (r *Repository) Digest(ctx context.Context, asOf time.Time) (DigestStats, error) {
	var stats DigestStats
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(MAX(longest_streak), 0)
		   FROM streak_records WHERE last_activity_date = $1::date`,
		DateOnly(asOf)).
		Scan(&stats.ActiveStreaks, &stats.LongestStreak)
	if err != nil {
		return DigestStats{}, err
	}
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM streak_rewards WHERE granted_at::date = $1::date`,
		DateOnly(asOf)).
		Scan(&stats.MilestonesGranted)
	if err != nil {
		return DigestStats{}, err
	}
	return stats, nil
}

// ListStreaksAtRisk returns active streaks whose last activity was exactly
// yesterday relative to asOf.
func (r *Repository) ListStreaksAtRisk(ctx context.Context, asOf time.Time) ([]AtRiskStreak, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.user_id, u.email, s.current_streak
		   FROM streak_records s
		   JOIN users u ON u.id = s.user_id
		  WHERE s.last_activity_date = $1::date - 1
		    AND s.current_streak >= 2
		    AND u.is_active`,
		DateOnly(asOf))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AtRiskStreak
	for rows.Next() {
		var s AtRiskStreak
		if err := rows.Scan(&s.UserID, &s.Email, &s.CurrentStreak); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
