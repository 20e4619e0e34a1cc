// Package progression implements the streak, level and attribute model.
// Streak state lives in a per-user record; everything else is derived on
// read from XP, badge count and streak length so stored and displayed
// values can never diverge.
package progression

import (
	"errors"
	"fmt"
	"time"
)

// ErrBackdatedActivity is returned when an activity event predates the
// last recorded activity. The record is left untouched; a rolled-back
// device clock must not reset or extend a streak.
var ErrBackdatedActivity = errors.New("progression: activity predates last recorded activity")

// Milestones are the fixed streak lengths that grant a one-time reward.
var Milestones = []int{3, 7, 14, 30, 100}

// StreakRecord is the persistent per-user streak state. LongestStreak is
// monotonically non-decreasing and always >= CurrentStreak. Rewards holds
// the milestone values already granted; a milestone is granted at most
// once per account regardless of resets.
type StreakRecord struct {
	UserID           int64
	CurrentStreak    int
	LongestStreak    int
	LastActivityDate time.Time
	Rewards          []int
}

// ChangeKind describes what an activity event did to the streak.
type ChangeKind string

const (
	// ChangeStarted is the first recorded activity for the account.
	ChangeStarted ChangeKind = "started"
	// ChangeContinued extends the streak by one day.
	ChangeContinued ChangeKind = "continued"
	// ChangeReset restarts the streak at one after a missed day.
	ChangeReset ChangeKind = "reset"
	// ChangeNone means activity was already recorded today.
	ChangeNone ChangeKind = "none"
)

// StreakChange reports the outcome of an Advance call.
type StreakChange struct {
	Kind ChangeKind
	// NewMilestone is the milestone value earned by this event, zero if
	// none.
	NewMilestone int
}

// DateOnly truncates a timestamp to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}

// Advance applies one "activity recorded today" event to a streak record
// and returns the new record. It is a pure function; persistence is the
// caller's concern. Recording twice on the same calendar date is a no-op.
func Advance(rec StreakRecord, today time.Time) (StreakRecord, StreakChange, error) {
	today = DateOnly(today)

	if rec.LastActivityDate.IsZero() {
		rec.CurrentStreak = 1
		rec.LastActivityDate = today
		if rec.LongestStreak < 1 {
			rec.LongestStreak = 1
		}
		return rec, withMilestone(rec, StreakChange{Kind: ChangeStarted}), nil
	}

	switch days := daysBetween(rec.LastActivityDate, today); {
	case days == 0:
		return rec, StreakChange{Kind: ChangeNone}, nil
	case days == 1:
		rec.CurrentStreak++
	case days > 1:
		// A missed day forfeits the whole streak.
		rec.CurrentStreak = 1
	default:
		return rec, StreakChange{}, ErrBackdatedActivity
	}

	if rec.CurrentStreak > rec.LongestStreak {
		rec.LongestStreak = rec.CurrentStreak
	}
	rec.LastActivityDate = today

	kind := ChangeContinued
	if rec.CurrentStreak == 1 {
		kind = ChangeReset
	}
	return rec, withMilestone(rec, StreakChange{Kind: kind}), nil
}

// withMilestone grants the milestone matching the new streak length unless
// it was earned before.
func withMilestone(rec StreakRecord, change StreakChange) StreakChange {
	for _, m := range Milestones {
		if rec.CurrentStreak == m && !hasReward(rec.Rewards, m) {
			change.NewMilestone = m
			return change
		}
	}
	return change
}

func hasReward(rewards []int, milestone int) bool {
	for _, r := range rewards {
		if r == milestone {
			return true
		}
	}
	return false
}

// Multiplier returns the reward-scaling factor for a streak length. The
// engine only reports the multiplier; applying it to reward points is the
// caller's job.
func Multiplier(streak int) float64 {
	switch {
	case streak >= 30:
		return 2.0
	case streak >= 14:
		return 1.5
	case streak >= 7:
		return 1.25
	case streak >= 3:
		return 1.1
	default:
		return 1.0
	}
}

// NextMilestone returns the smallest milestone above the streak, with
// ok=false once the final milestone is reached.
func NextMilestone(streak int) (int, bool) {
	for _, m := range Milestones {
		if m > streak {
			return m, true
		}
	}
	return 0, false
}

// StatusMessage renders the streak summary shown on the dashboard.
func StatusMessage(streak int) string {
	if streak <= 0 {
		return "Start your streak today!"
	}
	next, ok := NextMilestone(streak)
	if !ok {
		return fmt.Sprintf("%d-day streak. Legendary!", streak)
	}
	remaining := next - streak
	if remaining == 1 {
		return fmt.Sprintf("%d-day streak. 1 day to your next reward!", streak)
	}
	return fmt.Sprintf("%d-day streak. %d days to your next reward.", streak, remaining)
}

// Attributes are the display-only profile scores, each clamped to
// [0, 100]. They are recomputed on every read and never persisted.
type Attributes struct {
	Efficiency  int `json:"efficiency"`
	Impact      int `json:"impact"`
	Reliability int `json:"reliability"`
	Speed       int `json:"speed"`
}

// ComputeAttributes derives the attribute scores from XP, badge count and
// current streak.
func ComputeAttributes(totalXP, badgeCount, currentStreak int) Attributes {
	return Attributes{
		Efficiency:  clampScore(totalXP / 50),
		Impact:      clampScore(badgeCount * 8),
		Reliability: clampScore(currentStreak * 5),
		Speed:       clampScore(totalXP/80 + currentStreak*2),
	}
}

const xpPerLevel = 500

// LevelForXP derives the level from total XP. Levels start at one.
func LevelForXP(totalXP int) int {
	if totalXP < 0 {
		return 1
	}
	return totalXP/xpPerLevel + 1
}

// XPIntoLevel returns the XP accumulated inside the current level.
func XPIntoLevel(totalXP int) int {
	if totalXP < 0 {
		return 0
	}
	return totalXP % xpPerLevel
}

// XPForNextLevel returns the XP still needed to reach the next level.
func XPForNextLevel(totalXP int) int {
	return xpPerLevel - XPIntoLevel(totalXP)
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
