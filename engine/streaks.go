/*
streaks.go - Streak and milestone tracker

PURPOSE:
  Derived state machine over per-participant activity dates and cumulative
  totals. Recomputed after every triggering event (a new entry for the
  participant).

STREAK WALK:
  Take the participant's distinct activity dates, newest first. If the most
  recent date is more than one day before today the chain is already broken
  and the streak is 0. Otherwise start at 1 and extend backwards while each
  immediately-preceding calendar day is present; stop at the first gap.

AWARDS:
  Streak thresholds are checked independently: crossing 7 days awards both
  the 3-day and 7-day badges if either is missing from the ledger. Milestone
  tiers compare the all-time cumulative total and are monotonic - once
  awarded, a tier survives later point corrections that drop the total back
  below the threshold.
*/
package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PERSISTED STATE
// =============================================================================

// StreakState is the per-participant streak record.
type StreakState struct {
	CurrentStreak    int    `json:"current_streak"`
	LongestStreak    int    `json:"longest_streak"`
	LastActivityDate string `json:"last_activity_date"`
}

// StreakData is the persisted streaks/milestones document.
type StreakData struct {
	Participants      map[string]StreakState `json:"participants"`
	MilestonesAwarded map[string][]string    `json:"milestones_awarded"`
}

// NewStreakData returns an empty document with maps allocated.
func NewStreakData() StreakData {
	return StreakData{
		Participants:      make(map[string]StreakState),
		MilestonesAwarded: make(map[string][]string),
	}
}

// =============================================================================
// RULE TABLES
// =============================================================================

// StreakBadge pairs a consecutive-day threshold with the badge it awards.
type StreakBadge struct {
	Days  int
	Badge string
}

// MilestoneTier pairs a named tier with its all-time point threshold.
type MilestoneTier struct {
	Name      string
	Threshold decimal.Decimal
}

// =============================================================================
// TRACKER
// =============================================================================

// StreakTracker owns streak state and milestone records. It writes badges
// through the registry but never touches other components' state.
type StreakTracker struct {
	store        StreakStore
	badges       *BadgeRegistry
	streakBadges []StreakBadge
	milestones   []MilestoneTier
}

func NewStreakTracker(store StreakStore, badges *BadgeRegistry, streakBadges []StreakBadge, milestones []MilestoneTier) *StreakTracker {
	return &StreakTracker{
		store:        store,
		badges:       badges,
		streakBadges: streakBadges,
		milestones:   milestones,
	}
}

// State returns the persisted streak record for a participant. Unknown
// participants get a zero state.
func (t *StreakTracker) State(ctx context.Context, name string) (StreakState, error) {
	data, err := t.store.LoadStreaks(ctx)
	if err != nil {
		return StreakState{}, fmt.Errorf("load streaks: %w", err)
	}
	return data.Participants[name], nil
}

// CheckStreaks recomputes the participant's streak from the entry log,
// persists the updated state, and awards any streak badges whose thresholds
// are met and not yet in the ledger. Returns the new state and the badges
// awarded by this call.
func (t *StreakTracker) CheckStreaks(ctx context.Context, entries []Entry, name string, today Day) (StreakState, []string, error) {
	data, err := t.store.LoadStreaks(ctx)
	if err != nil {
		return StreakState{}, nil, fmt.Errorf("load streaks: %w", err)
	}
	if data.Participants == nil {
		data.Participants = make(map[string]StreakState)
	}

	dates := activityDates(entries, name)
	if len(dates) == 0 {
		return data.Participants[name], nil, nil
	}

	streak := walkStreak(dates, today)

	state := data.Participants[name]
	state.CurrentStreak = streak
	if streak > state.LongestStreak {
		state.LongestStreak = streak
	}
	state.LastActivityDate = dates[0].String()
	data.Participants[name] = state

	if err := t.store.SaveStreaks(ctx, data); err != nil {
		return StreakState{}, nil, fmt.Errorf("save streaks: %w", err)
	}

	// Thresholds are independent checks against the current streak.
	var awarded []string
	for _, sb := range t.streakBadges {
		if streak < sb.Days {
			continue
		}
		isNew, err := t.badges.Award(ctx, name, sb.Badge)
		if err != nil {
			return state, awarded, err
		}
		if isNew {
			awarded = append(awarded, sb.Badge)
		}
	}
	return state, awarded, nil
}

// CheckMilestones compares the participant's all-time total against the tier
// table and awards each newly crossed tier. The awarded set is monotonic.
func (t *StreakTracker) CheckMilestones(ctx context.Context, entries []Entry, name string) ([]string, error) {
	data, err := t.store.LoadStreaks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load streaks: %w", err)
	}
	if data.MilestonesAwarded == nil {
		data.MilestonesAwarded = make(map[string][]string)
	}

	total := AllTimeTotal(entries, name)
	already := data.MilestonesAwarded[name]

	var awarded []string
	for _, tier := range t.milestones {
		if total.LessThan(tier.Threshold) || contains(already, tier.Name) {
			continue
		}
		if _, err := t.badges.Award(ctx, name, tier.Name); err != nil {
			return awarded, err
		}
		already = append(already, tier.Name)
		awarded = append(awarded, tier.Name)
	}

	if len(awarded) > 0 {
		data.MilestonesAwarded[name] = already
		if err := t.store.SaveStreaks(ctx, data); err != nil {
			return awarded, fmt.Errorf("save streaks: %w", err)
		}
	}
	return awarded, nil
}

// =============================================================================
// STREAK COMPUTATION
// =============================================================================

// activityDates returns the participant's distinct entry days, newest first.
func activityDates(entries []Entry, name string) []Day {
	seen := make(map[string]Day)
	for _, e := range entries {
		if e.Name == name {
			seen[e.Day.String()] = e.Day
		}
	}
	dates := make([]Day, 0, len(seen))
	for _, d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	return dates
}

// walkStreak counts consecutive days ending at the most recent activity date,
// which must be today or yesterday for the chain to be alive.
func walkStreak(dates []Day, today Day) int {
	if DaysBetween(dates[0], today) > 1 {
		return 0
	}
	streak := 1
	last := dates[0]
	for _, d := range dates[1:] {
		if DaysBetween(d, last) != 1 {
			break
		}
		streak++
		last = d
	}
	return streak
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
