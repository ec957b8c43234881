/*
Package engine provides the scoring and gamification core.

PURPOSE:
  This package turns an append-only log of dated point entries into derived
  gamification state: a time-windowed cumulative leaderboard, per-participant
  streaks and milestones, achievement trigger counts, challenge lifecycles,
  and a badge ledger.

KEY CONCEPTS IN THIS FILE (types.go):
  - Entry: One dated row of the point log (per-category, base, bonus, total)
  - CumulativeRow: Derived leaderboard row (never persisted)
  - Limits: Configured bounds for entry validation

DESIGN PRINCIPLES:
  1. Log is truth: Every derived value is recomputed from the full entry log
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Tolerant reads: Malformed persisted values degrade to zero, never panic
  4. Monotonic awards: Milestones and achievement counts only ever grow

SEE ALSO:
  - scoring.go: Leaderboard computation and ranking
  - streaks.go: Streak and milestone tracking
  - achievements.go: Criterion dispatch and trigger counting
  - challenges.go: Join/approve/reject workflow
  - badges.go: Badge ledger
  - store.go: Persistence interfaces
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// POINTS - decimal helpers
// =============================================================================

// Pts builds a point value from an int. Test and config convenience.
func Pts(v int) decimal.Decimal { return decimal.NewFromInt(int64(v)) }

// ParsePoints parses a persisted point value. Non-numeric or missing fields
// contribute zero rather than failing the load.
func ParsePoints(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// ENTRY - One row of the append-only point log
// =============================================================================

// Entry is a single dated point record for a participant. Entries are
// immutable once written; edits go through Replace (delete-and-reinsert).
// Multiple entries for the same (participant, day) are legal and are
// reconciled at read time by the scoring engine.
type Entry struct {
	Name       string
	Day        Day
	Categories map[string]decimal.Decimal
	Base       decimal.Decimal // sum of category points
	Bonus      decimal.Decimal // may be negative (punishments)
	Total      decimal.Decimal // base + bonus
}

// ZeroEntry builds an all-zero entry for a participant, used to seed a new
// scoring period.
func ZeroEntry(name string, day Day, categories []string) Entry {
	cats := make(map[string]decimal.Decimal, len(categories))
	for _, c := range categories {
		cats[c] = decimal.Zero
	}
	return Entry{
		Name:       name,
		Day:        day,
		Categories: cats,
		Base:       decimal.Zero,
		Bonus:      decimal.Zero,
		Total:      decimal.Zero,
	}
}

// BonusEntry builds an entry that carries only bonus points (challenge awards
// and punishments).
func BonusEntry(name string, day Day, bonus decimal.Decimal, categories []string) Entry {
	e := ZeroEntry(name, day, categories)
	e.Bonus = bonus
	e.Total = bonus
	return e
}

// =============================================================================
// CUMULATIVE ROW - Derived leaderboard state
// =============================================================================

// CumulativeRow is one leaderboard line: the participant's cumulative total
// over the window, their competition rank, and the base/bonus snapshot from
// their most recent day in the window (display only; ranking uses Total).
type CumulativeRow struct {
	Name  string
	Rank  int
	Base  decimal.Decimal
	Bonus decimal.Decimal
	Total decimal.Decimal
}

// =============================================================================
// LIMITS - Entry validation bounds
// =============================================================================

// Limits carries the configured bounds an entry must satisfy on append.
type Limits struct {
	// CategoryMax maps each scoring category to its per-day maximum.
	CategoryMax map[string]int

	// MaxBase bounds the sum of category points (base points).
	MaxBase int

	// MaxBonus bounds bonus points in both directions: [-MaxBonus, MaxBonus].
	// Negative bonus is how punishments enter the log.
	MaxBonus int
}

// Validate checks an entry against the limits. Unknown categories and
// out-of-range values are rejected; the caller surfaces the typed error.
func (l Limits) Validate(e Entry) error {
	for category, value := range e.Categories {
		max, ok := l.CategoryMax[category]
		if !ok {
			return &CategoryBoundsError{Category: category, Value: value, Max: 0, Unknown: true}
		}
		if value.IsNegative() || value.GreaterThan(Pts(max)) {
			return &CategoryBoundsError{Category: category, Value: value, Max: max}
		}
	}
	if e.Base.IsNegative() || e.Base.GreaterThan(Pts(l.MaxBase)) {
		return &BaseBoundsError{Value: e.Base, Max: l.MaxBase}
	}
	bound := Pts(l.MaxBonus)
	if e.Bonus.GreaterThan(bound) || e.Bonus.LessThan(bound.Neg()) {
		return &BonusBoundsError{Value: e.Bonus, Max: l.MaxBonus}
	}
	return nil
}
