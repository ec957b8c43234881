package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarsor/leaderboard/engine"
)

func TestParseDay_AcceptedFormats(t *testing.T) {
	want := engine.NewDay(2024, time.March, 5)

	for _, input := range []string{
		"2024-03-05",
		"2024/03/05",
		"03/05/2024",
		"Mar 5, 2024",
		"March 5, 2024",
		"2024-03-05T14:30:00Z",
		"2024-03-05 14:30:00",
	} {
		got, err := engine.ParseDay(input)
		require.NoError(t, err, "input %q", input)
		assert.True(t, got.Equal(want), "input %q parsed to %v", input, got)
	}
}

func TestParseDay_RejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "not a date", "05-03-2024"} {
		_, err := engine.ParseDay(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestDay_TimeComponentDropped(t *testing.T) {
	d := engine.DayOf(time.Date(2024, time.March, 5, 23, 59, 59, 0, time.FixedZone("X", 3600)))
	assert.Equal(t, "2024-03-05", d.String())
}

func TestDaysBetween(t *testing.T) {
	a := engine.NewDay(2024, time.February, 28)
	b := engine.NewDay(2024, time.March, 1)
	assert.Equal(t, 2, engine.DaysBetween(a, b), "2024 is a leap year")
	assert.Equal(t, 0, engine.DaysBetween(a, a))
}

func TestMonthBounds(t *testing.T) {
	d := engine.NewDay(2024, time.February, 15)
	assert.Equal(t, "2024-02-01", engine.StartOfMonth(d).String())
	assert.Equal(t, "2024-02-29", engine.EndOfMonth(d).String())
}
