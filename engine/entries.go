/*
entries.go - Entry log service

PURPOSE:
  Wraps the raw EntryStore with validation and the period-seeding operation.
  This is the only write path into the point log; everything downstream
  (scoreboard, streaks, milestones, achievements) is derived from what goes
  through here.

EDIT FLOW:
  An edit is not an update. Replace removes every row matching (day, name)
  and appends the corrected entry, preserving the one-authoritative-entry-
  per-day reconciliation model.
*/
package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// EntryLog is the validated write path into the point log.
type EntryLog struct {
	store      EntryStore
	limits     Limits
	categories []string // configured category order, used for zero entries
}

// NewEntryLog builds the entry service. The category list fixes the column
// order for seeded zero entries.
func NewEntryLog(store EntryStore, limits Limits, categories []string) *EntryLog {
	return &EntryLog{store: store, limits: limits, categories: categories}
}

// Append validates an entry against the configured bounds and writes it.
// A duplicate (name, day) is not an error.
func (l *EntryLog) Append(ctx context.Context, e Entry) error {
	if err := l.limits.Validate(e); err != nil {
		return err
	}
	if err := l.store.AppendEntry(ctx, e); err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

// Replace removes all rows matching (day, name) and appends the new entry.
func (l *EntryLog) Replace(ctx context.Context, day Day, name string, e Entry) error {
	if err := l.limits.Validate(e); err != nil {
		return err
	}
	if err := l.store.ReplaceEntry(ctx, day, name, e); err != nil {
		return fmt.Errorf("replace entry: %w", err)
	}
	return nil
}

// LoadAll returns the full normalized log.
func (l *EntryLog) LoadAll(ctx context.Context) ([]Entry, error) {
	return l.store.LoadEntries(ctx)
}

// InitializePeriod seeds a new scoring period with one zero entry per
// participant, dated today. Prior data is untouched.
func (l *EntryLog) InitializePeriod(ctx context.Context, participants []string, today Day) error {
	for _, name := range participants {
		if err := l.store.AppendEntry(ctx, ZeroEntry(name, today, l.categories)); err != nil {
			return fmt.Errorf("initialize period for %s: %w", name, err)
		}
	}
	return nil
}

// AwardBonus appends a bonus-only entry (challenge award or punishment).
// The bonus still honors the configured bounds.
func (l *EntryLog) AwardBonus(ctx context.Context, name string, day Day, bonus decimal.Decimal) (Entry, error) {
	e := BonusEntry(name, day, bonus, l.categories)
	if err := l.Append(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Categories returns the configured category order.
func (l *EntryLog) Categories() []string { return l.categories }
