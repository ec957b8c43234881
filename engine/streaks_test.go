package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarsor/leaderboard/engine"
	enginestore "github.com/sarsor/leaderboard/engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testStreakBadges = []engine.StreakBadge{
	{Days: 3, Badge: "3-Day Streak"},
	{Days: 7, Badge: "7-Day Streak"},
}

var testMilestones = []engine.MilestoneTier{
	{Name: "First 1000", Threshold: engine.Pts(1000)},
	{Name: "5000 Club", Threshold: engine.Pts(5000)},
}

func newTestTracker(t *testing.T) (*engine.StreakTracker, *engine.BadgeRegistry) {
	t.Helper()
	store := enginestore.NewMemory()
	badges := engine.NewBadgeRegistry(store)
	tracker := engine.NewStreakTracker(store, badges, testStreakBadges, testMilestones)
	return tracker, badges
}

// =============================================================================
// STREAK WALK TESTS
// =============================================================================

func TestCheckStreaks_ThreeConsecutiveDays(t *testing.T) {
	// GIVEN: Activity today, yesterday, and the day before
	// WHEN: Recomputing the streak
	// THEN: Current streak is 3 and the 3-day badge is awarded

	tracker, _ := newTestTracker(t)
	ctx := context.Background()
	today := day(2024, time.June, 10)

	entries := []engine.Entry{
		entry("Alice", today, 10, 0),
		entry("Alice", today.AddDays(-1), 10, 0),
		entry("Alice", today.AddDays(-2), 10, 0),
	}

	state, awarded, err := tracker.CheckStreaks(ctx, entries, "Alice", today)
	require.NoError(t, err)

	assert.Equal(t, 3, state.CurrentStreak)
	assert.Equal(t, 3, state.LongestStreak)
	assert.Equal(t, today.String(), state.LastActivityDate)
	assert.Equal(t, []string{"3-Day Streak"}, awarded)
}

func TestCheckStreaks_GapResetsToOne(t *testing.T) {
	// GIVEN: Activity today and two days ago, nothing yesterday
	// WHEN: Recomputing the streak
	// THEN: The chain stops at today: streak 1

	tracker, _ := newTestTracker(t)
	ctx := context.Background()
	today := day(2024, time.June, 10)

	entries := []engine.Entry{
		entry("Alice", today, 10, 0),
		entry("Alice", today.AddDays(-2), 10, 0),
	}

	state, awarded, err := tracker.CheckStreaks(ctx, entries, "Alice", today)
	require.NoError(t, err)

	assert.Equal(t, 1, state.CurrentStreak)
	assert.Empty(t, awarded)
}

func TestCheckStreaks_StaleActivityIsZero(t *testing.T) {
	// GIVEN: Most recent activity more than one day before today
	// WHEN: Recomputing the streak
	// THEN: The chain is already broken: streak 0

	tracker, _ := newTestTracker(t)
	ctx := context.Background()
	today := day(2024, time.June, 10)

	entries := []engine.Entry{
		entry("Alice", today.AddDays(-3), 10, 0),
		entry("Alice", today.AddDays(-4), 10, 0),
	}

	state, _, err := tracker.CheckStreaks(ctx, entries, "Alice", today)
	require.NoError(t, err)

	assert.Equal(t, 0, state.CurrentStreak)
}

func TestCheckStreaks_YesterdayKeepsChainAlive(t *testing.T) {
	// GIVEN: Activity ending yesterday
	// WHEN: Recomputing before today's entry lands
	// THEN: The streak still counts back from yesterday

	tracker, _ := newTestTracker(t)
	ctx := context.Background()
	today := day(2024, time.June, 10)

	entries := []engine.Entry{
		entry("Alice", today.AddDays(-1), 10, 0),
		entry("Alice", today.AddDays(-2), 10, 0),
	}

	state, _, err := tracker.CheckStreaks(ctx, entries, "Alice", today)
	require.NoError(t, err)

	assert.Equal(t, 2, state.CurrentStreak)
}

func TestCheckStreaks_LongestStreakIsMonotonic(t *testing.T) {
	// GIVEN: A 3-day streak recorded, then the chain breaks
	// WHEN: Recomputing after the break
	// THEN: Current drops but longest stays at its high-water mark

	tracker, _ := newTestTracker(t)
	ctx := context.Background()
	today := day(2024, time.June, 10)

	run := []engine.Entry{
		entry("Alice", today, 10, 0),
		entry("Alice", today.AddDays(-1), 10, 0),
		entry("Alice", today.AddDays(-2), 10, 0),
	}
	_, _, err := tracker.CheckStreaks(ctx, run, "Alice", today)
	require.NoError(t, err)

	later := today.AddDays(5)
	state, _, err := tracker.CheckStreaks(ctx, run, "Alice", later)
	require.NoError(t, err)

	assert.Equal(t, 0, state.CurrentStreak)
	assert.Equal(t, 3, state.LongestStreak)
}

func TestCheckStreaks_DuplicateDaysCountOnce(t *testing.T) {
	// GIVEN: Multiple entries on the same day (correction + bonus)
	// WHEN: Walking the streak
	// THEN: Distinct days drive the count

	tracker, _ := newTestTracker(t)
	ctx := context.Background()
	today := day(2024, time.June, 10)

	entries := []engine.Entry{
		entry("Alice", today, 10, 0),
		entry("Alice", today, 0, 5),
		entry("Alice", today.AddDays(-1), 10, 0),
	}

	state, _, err := tracker.CheckStreaks(ctx, entries, "Alice", today)
	require.NoError(t, err)

	assert.Equal(t, 2, state.CurrentStreak)
}

func TestCheckStreaks_NoActivityNoChange(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	state, awarded, err := tracker.CheckStreaks(ctx, nil, "Alice", day(2024, time.June, 10))
	require.NoError(t, err)
	assert.Zero(t, state.CurrentStreak)
	assert.Empty(t, awarded)
}

// =============================================================================
// STREAK BADGE TESTS
// =============================================================================

func TestCheckStreaks_ThresholdsCheckedIndependently(t *testing.T) {
	// GIVEN: A participant jumping straight to a 7-day streak
	// WHEN: Checking streak badges
	// THEN: Both the 3-day and 7-day badges are awarded in one pass

	tracker, badges := newTestTracker(t)
	ctx := context.Background()
	today := day(2024, time.June, 10)

	var entries []engine.Entry
	for i := 0; i < 7; i++ {
		entries = append(entries, entry("Alice", today.AddDays(-i), 10, 0))
	}

	_, awarded, err := tracker.CheckStreaks(ctx, entries, "Alice", today)
	require.NoError(t, err)
	assert.Equal(t, []string{"3-Day Streak", "7-Day Streak"}, awarded)

	// A second run awards nothing new.
	_, awarded, err = tracker.CheckStreaks(ctx, entries, "Alice", today)
	require.NoError(t, err)
	assert.Empty(t, awarded)

	held, err := badges.Badges(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"3-Day Streak", "7-Day Streak"}, held)
}

// =============================================================================
// MILESTONE TESTS
// =============================================================================

func TestCheckMilestones_CrossingAwardsTier(t *testing.T) {
	// GIVEN: An all-time total crossing the first tier
	// WHEN: Checking milestones
	// THEN: The tier is awarded once and lands in the badge ledger

	tracker, badges := newTestTracker(t)
	ctx := context.Background()

	entries := []engine.Entry{
		entry("Alice", day(2024, time.June, 1), 100, 900),
	}

	awarded, err := tracker.CheckMilestones(ctx, entries, "Alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"First 1000"}, awarded)

	has, err := badges.Has(ctx, "Alice", "First 1000")
	require.NoError(t, err)
	assert.True(t, has)

	// Re-check: nothing new.
	awarded, err = tracker.CheckMilestones(ctx, entries, "Alice")
	require.NoError(t, err)
	assert.Empty(t, awarded)
}

func TestCheckMilestones_SurvivesDownwardCorrection(t *testing.T) {
	// GIVEN: A tier awarded at 1000 points
	// WHEN: An edit drops the all-time total below the threshold
	// THEN: The tier stays awarded

	tracker, badges := newTestTracker(t)
	ctx := context.Background()

	before := []engine.Entry{entry("Alice", day(2024, time.June, 1), 100, 900)}
	_, err := tracker.CheckMilestones(ctx, before, "Alice")
	require.NoError(t, err)

	after := []engine.Entry{entry("Alice", day(2024, time.June, 1), 50, 0)}
	awarded, err := tracker.CheckMilestones(ctx, after, "Alice")
	require.NoError(t, err)
	assert.Empty(t, awarded)

	has, err := badges.Has(ctx, "Alice", "First 1000")
	require.NoError(t, err)
	assert.True(t, has, "milestones are monotonic")
}

func TestCheckMilestones_MultipleTiersInOnePass(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	entries := []engine.Entry{
		entry("Alice", day(2024, time.June, 1), 100, 0),
		entry("Alice", day(2024, time.June, 2), 100, 4900),
	}

	awarded, err := tracker.CheckMilestones(ctx, entries, "Alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"First 1000", "5000 Club"}, awarded)
}
