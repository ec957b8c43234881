package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarsor/leaderboard/engine"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func day(y int, m time.Month, d int) engine.Day {
	return engine.NewDay(y, m, d)
}

func entry(name string, d engine.Day, base, bonus int) engine.Entry {
	return engine.Entry{
		Name:  name,
		Day:   d,
		Base:  engine.Pts(base),
		Bonus: engine.Pts(bonus),
		Total: engine.Pts(base + bonus),
	}
}

// =============================================================================
// CUMULATIVE SCORING TESTS
// =============================================================================

func TestScoreboard_CumulativeAcrossDays(t *testing.T) {
	// GIVEN: Alice scores 80 on Jan 1 and 20 on Jan 2, Bob scores 95 on Jan 1
	// WHEN: Computing the month scoreboard as of Jan 2
	// THEN: Alice's total is 100 (rank 1), Bob's is 95 (rank 2)

	asOf := day(2024, time.January, 2)
	entries := []engine.Entry{
		entry("Alice", day(2024, time.January, 1), 80, 0),
		entry("Bob", day(2024, time.January, 1), 95, 0),
		entry("Alice", day(2024, time.January, 2), 20, 0),
	}

	rows := engine.Scoreboard(entries, engine.WindowMonth, asOf)

	require.Len(t, rows, 2)
	assert.Equal(t, "Alice", rows[0].Name)
	assert.Equal(t, 1, rows[0].Rank)
	assert.True(t, rows[0].Total.Equal(engine.Pts(100)), "Alice total should be 100, got %v", rows[0].Total)
	assert.Equal(t, "Bob", rows[1].Name)
	assert.Equal(t, 2, rows[1].Rank)
	assert.True(t, rows[1].Total.Equal(engine.Pts(95)))
}

func TestScoreboard_TiesShareMinimumRank(t *testing.T) {
	// GIVEN: Two participants with equal totals and one below
	// WHEN: Computing the scoreboard
	// THEN: The tied pair share rank 1 and the next rank is 3

	asOf := day(2024, time.March, 15)
	entries := []engine.Entry{
		entry("Alice", day(2024, time.March, 10), 50, 0),
		entry("Bob", day(2024, time.March, 10), 50, 0),
		entry("Carol", day(2024, time.March, 10), 30, 0),
	}

	rows := engine.Scoreboard(entries, engine.WindowMonth, asOf)

	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 1, rows[1].Rank)
	assert.Equal(t, 3, rows[2].Rank, "rank after a two-way tie resumes at 3")
	// Ties order alphabetically for determinism
	assert.Equal(t, "Alice", rows[0].Name)
	assert.Equal(t, "Bob", rows[1].Name)
}

func TestScoreboard_SameDayLastSnapshotWinsTotalsSum(t *testing.T) {
	// GIVEN: A corrected form submission followed by a same-day punishment
	// WHEN: Reconciling the day
	// THEN: The displayed base/bonus come from the last write, totals sum

	d := day(2024, time.May, 3)
	entries := []engine.Entry{
		entry("Alice", d, 40, 0),   // original submission, total 40
		entry("Alice", d, 0, -10),  // punishment, total -10
	}

	rows := engine.Scoreboard(entries, engine.WindowMonth, d)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].Base.Equal(engine.Pts(0)), "base snapshot is the last write")
	assert.True(t, rows[0].Bonus.Equal(engine.Pts(-10)))
	assert.True(t, rows[0].Total.Equal(engine.Pts(30)), "totals accumulate: 40 + (-10)")
}

func TestScoreboard_DisplaySnapshotFromMostRecentDay(t *testing.T) {
	// GIVEN: Entries on two days with different base/bonus snapshots
	// WHEN: Folding into a single row
	// THEN: Base/bonus show the most recent day, not the first

	asOf := day(2024, time.June, 10)
	entries := []engine.Entry{
		entry("Alice", day(2024, time.June, 1), 60, 5),
		entry("Alice", day(2024, time.June, 9), 20, 0),
	}

	rows := engine.Scoreboard(entries, engine.WindowMonth, asOf)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].Base.Equal(engine.Pts(20)))
	assert.True(t, rows[0].Bonus.Equal(engine.Pts(0)))
	assert.True(t, rows[0].Total.Equal(engine.Pts(85)))
}

// =============================================================================
// WINDOW TESTS
// =============================================================================

func TestScoreboard_WeekWindowTrailingSevenDays(t *testing.T) {
	// GIVEN: Entries inside and outside the trailing 7 days
	// WHEN: Computing the week scoreboard
	// THEN: Only the last 7 days (inclusive) count

	asOf := day(2024, time.April, 10)
	entries := []engine.Entry{
		entry("Alice", day(2024, time.April, 4), 10, 0),  // 6 days back: in
		entry("Alice", day(2024, time.April, 3), 50, 0),  // 7 days back: out
		entry("Alice", day(2024, time.April, 10), 5, 0),  // today: in
	}

	rows := engine.Scoreboard(entries, engine.WindowWeek, asOf)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].Total.Equal(engine.Pts(15)))
}

func TestScoreboard_MonthWindowExcludesOtherMonths(t *testing.T) {
	// GIVEN: Entries in March and April
	// WHEN: Computing the month scoreboard as of an April day
	// THEN: March entries are excluded

	asOf := day(2024, time.April, 15)
	entries := []engine.Entry{
		entry("Alice", day(2024, time.March, 31), 90, 0),
		entry("Alice", day(2024, time.April, 1), 10, 0),
	}

	rows := engine.Scoreboard(entries, engine.WindowMonth, asOf)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].Total.Equal(engine.Pts(10)))
}

func TestScoreboard_AllTimeWindowCountsEverything(t *testing.T) {
	asOf := day(2024, time.April, 15)
	entries := []engine.Entry{
		entry("Alice", day(2023, time.December, 1), 90, 0),
		entry("Alice", day(2024, time.April, 1), 10, 0),
	}

	rows := engine.Scoreboard(entries, engine.WindowAllTime, asOf)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].Total.Equal(engine.Pts(100)))
}

func TestScoreboard_EmptyWindowYieldsEmptySlice(t *testing.T) {
	// GIVEN: A log with no entries in the window
	// WHEN: Computing the scoreboard
	// THEN: The result is an empty slice, never nil semantics or an error

	asOf := day(2024, time.July, 1)
	entries := []engine.Entry{
		entry("Alice", day(2024, time.June, 1), 50, 0),
	}

	rows := engine.Scoreboard(entries, engine.WindowMonth, asOf)

	require.NotNil(t, rows)
	assert.Empty(t, rows)
}

// =============================================================================
// HELPERS
// =============================================================================

func TestRankOf_AbsentParticipantIsZero(t *testing.T) {
	rows := engine.Scoreboard([]engine.Entry{
		entry("Alice", day(2024, time.May, 1), 50, 0),
	}, engine.WindowMonth, day(2024, time.May, 1))

	assert.Equal(t, 1, engine.RankOf(rows, "Alice"))
	assert.Equal(t, 0, engine.RankOf(rows, "Nobody"))
}

func TestAllTimeTotal_IgnoresWindows(t *testing.T) {
	entries := []engine.Entry{
		entry("Alice", day(2023, time.January, 1), 500, 0),
		entry("Alice", day(2024, time.June, 1), 600, 0),
		entry("Bob", day(2024, time.June, 1), 50, 0),
	}

	total := engine.AllTimeTotal(entries, "Alice")
	assert.True(t, total.Equal(engine.Pts(1100)))
}

func TestParsePoints_NonNumericContributesZero(t *testing.T) {
	assert.True(t, engine.ParsePoints("garbage").IsZero())
	assert.True(t, engine.ParsePoints("").IsZero())
	assert.True(t, engine.ParsePoints("12.5").Equal(engine.ParsePoints("12.50")))
}
