package progression

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func TestAdvanceFirstActivityStartsStreak(t *testing.T) {
	rec, change, err := Advance(StreakRecord{UserID: 1}, day(0))
	require.NoError(t, err)
	require.Equal(t, ChangeStarted, change.Kind)
	require.Equal(t, 1, rec.CurrentStreak)
	require.Equal(t, 1, rec.LongestStreak)
	require.Equal(t, day(0), rec.LastActivityDate)
}

func TestAdvanceSameDayIsIdempotent(t *testing.T) {
	rec := StreakRecord{UserID: 1, CurrentStreak: 5, LongestStreak: 5, LastActivityDate: day(0)}

	// A later clock reading on the same calendar date changes nothing.
	got, change, err := Advance(rec, day(0).Add(18*time.Hour))
	require.NoError(t, err)
	require.Equal(t, ChangeNone, change.Kind)
	require.Equal(t, rec, got)
}

func TestAdvanceNextDayContinues(t *testing.T) {
	rec := StreakRecord{UserID: 1, CurrentStreak: 5, LongestStreak: 8, LastActivityDate: day(0)}

	got, change, err := Advance(rec, day(1))
	require.NoError(t, err)
	require.Equal(t, ChangeContinued, change.Kind)
	require.Equal(t, 6, got.CurrentStreak)
	require.Equal(t, 8, got.LongestStreak)
}

func TestAdvanceMissedDayResetsToOne(t *testing.T) {
	rec := StreakRecord{UserID: 1, CurrentStreak: 10, LongestStreak: 10, LastActivityDate: day(0)}

	got, change, err := Advance(rec, day(2))
	require.NoError(t, err)
	require.Equal(t, ChangeReset, change.Kind)
	require.Equal(t, 1, got.CurrentStreak)
	require.Equal(t, 10, got.LongestStreak, "longest streak survives the reset")
}

func TestAdvanceRejectsBackdatedActivity(t *testing.T) {
	rec := StreakRecord{UserID: 1, CurrentStreak: 4, LongestStreak: 4, LastActivityDate: day(3)}

	_, _, err := Advance(rec, day(2))
	require.True(t, errors.Is(err, ErrBackdatedActivity))
}

func TestAdvanceGrantsMilestoneOnce(t *testing.T) {
	rec := StreakRecord{UserID: 1, CurrentStreak: 2, LongestStreak: 6, LastActivityDate: day(0)}

	got, change, err := Advance(rec, day(1))
	require.NoError(t, err)
	require.Equal(t, 3, got.CurrentStreak)
	require.Equal(t, 3, change.NewMilestone)

	// After a reset, climbing back through day three grants nothing: the
	// milestone was already earned.
	earned := StreakRecord{UserID: 1, CurrentStreak: 2, LongestStreak: 6, LastActivityDate: day(0), Rewards: []int{3}}
	_, change, err = Advance(earned, day(1))
	require.NoError(t, err)
	require.Zero(t, change.NewMilestone)
}

func TestAdvanceFullMilestoneLadder(t *testing.T) {
	rec := StreakRecord{UserID: 1}
	var granted []int
	for i := 0; i < 31; i++ {
		var change StreakChange
		var err error
		rec, change, err = Advance(rec, day(i))
		require.NoError(t, err)
		if change.NewMilestone != 0 {
			granted = append(granted, change.NewMilestone)
			rec.Rewards = append(rec.Rewards, change.NewMilestone)
		}
	}
	require.Equal(t, []int{3, 7, 14, 30}, granted)
	require.Equal(t, 31, rec.CurrentStreak)
}

func TestMultiplierSteps(t *testing.T) {
	cases := []struct {
		streak int
		want   float64
	}{
		{0, 1.0},
		{2, 1.0},
		{3, 1.1},
		{6, 1.1},
		{7, 1.25},
		{13, 1.25},
		{14, 1.5},
		{29, 1.5},
		{30, 2.0},
		{31, 2.0},
		{365, 2.0},
	}
	for _, tc := range cases {
		if got := Multiplier(tc.streak); got != tc.want {
			t.Fatalf("Multiplier(%d) = %v, want %v", tc.streak, got, tc.want)
		}
	}
}

func TestNextMilestone(t *testing.T) {
	next, ok := NextMilestone(0)
	require.True(t, ok)
	require.Equal(t, 3, next)

	next, ok = NextMilestone(14)
	require.True(t, ok)
	require.Equal(t, 30, next)

	_, ok = NextMilestone(100)
	require.False(t, ok)
}

func TestLevelDerivation(t *testing.T) {
	cases := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{499, 1},
		{500, 2},
		{1250, 3},
		{-10, 1},
	}
	for _, tc := range cases {
		if got := LevelForXP(tc.xp); got != tc.level {
			t.Fatalf("LevelForXP(%d) = %d, want %d", tc.xp, got, tc.level)
		}
	}
	require.Equal(t, 250, XPIntoLevel(1250))
	require.Equal(t, 250, XPForNextLevel(1250))
}

func TestComputeAttributesClampsToRange(t *testing.T) {
	attrs := ComputeAttributes(100000, 50, 400)
	require.Equal(t, Attributes{Efficiency: 100, Impact: 100, Reliability: 100, Speed: 100}, attrs)

	attrs = ComputeAttributes(0, 0, 0)
	require.Equal(t, Attributes{}, attrs)

	attrs = ComputeAttributes(1000, 3, 6)
	require.Equal(t, Attributes{Efficiency: 20, Impact: 24, Reliability: 30, Speed: 24}, attrs)
}

func TestStatusMessage(t *testing.T) {
	require.Equal(t, "Start your streak today!", StatusMessage(0))
	require.Equal(t, "5-day streak. 2 days to your next reward.", StatusMessage(5))
	require.Equal(t, "6-day streak. 1 day to your next reward!", StatusMessage(6))
	require.Equal(t, "100-day streak. Legendary!", StatusMessage(100))
}
