package engine

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DAY - Calendar date (the only time granularity this system needs)
// =============================================================================

// Day is a calendar date in UTC. Entries, streaks, and windows are all keyed
// by Day; times of day are never significant.
type Day struct {
	Time time.Time
}

func NewDay(year int, month time.Month, day int) Day {
	return Day{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() Day {
	now := time.Now()
	return NewDay(now.Year(), now.Month(), now.Day())
}

// DayOf truncates an arbitrary time to its calendar date.
func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

// Comparison
func (d Day) Before(other Day) bool        { return d.normalize().Before(other.normalize()) }
func (d Day) Equal(other Day) bool         { return d.normalize().Equal(other.normalize()) }
func (d Day) After(other Day) bool         { return d.normalize().After(other.normalize()) }
func (d Day) BeforeOrEqual(other Day) bool { return d.Before(other) || d.Equal(other) }
func (d Day) AfterOrEqual(other Day) bool  { return d.After(other) || d.Equal(other) }

func (d Day) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Day) AddDays(n int) Day { return DayOf(d.Time.AddDate(0, 0, n)) }

// Properties
func (d Day) Year() int         { return d.Time.Year() }
func (d Day) Month() time.Month { return d.Time.Month() }
func (d Day) DayOfMonth() int   { return d.Time.Day() }
func (d Day) IsZero() bool      { return d.Time.IsZero() }

func (d Day) String() string { return d.normalize().Format("2006-01-02") }

// DaysBetween returns the number of calendar days from one day to another.
func DaysBetween(from, to Day) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

func StartOfMonth(d Day) Day {
	return NewDay(d.Year(), d.Month(), 1)
}

func EndOfMonth(d Day) Day {
	t := time.Date(d.Year(), d.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return DayOf(t)
}

// =============================================================================
// DATE PARSING - Tolerant of the formats seen in historical exports
// =============================================================================

// dayFormats are tried in order when normalizing a persisted date string.
// ISO-8601 is canonical; the rest cover spreadsheet exports and older logs.
var dayFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParseDay normalizes a date string to a Day. Any time-of-day component is
// dropped. Returns an error when no accepted format matches; callers loading
// persisted state filter such rows out rather than failing the load.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Day{}, fmt.Errorf("empty date")
	}
	for _, layout := range dayFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return DayOf(t), nil
		}
	}
	return Day{}, fmt.Errorf("unrecognized date format: %q", s)
}
