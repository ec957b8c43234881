/*
store.go - Persistence interfaces for the entry log and derived state

PURPOSE:
  Defines the interface between the engine and storage. Implementations keep
  whole-document semantics: a save replaces the entire ledger/document, which
  matches the system's load-mutate-persist critical sections. There is no
  partial write path.

IMPLEMENTATIONS:
  - engine/store: in-memory (tests/dev)
  - store/file:   plain-text CSV + JSON files (human-inspectable, default)
  - store/sqlite: SQLite database

OWNERSHIP:
  Each derived-state document (badges, achievements, streaks, challenges) is
  owned by exactly one engine component and mutated only through it. The
  store never interprets document contents.
*/
package engine

import "context"

// =============================================================================
// ENTRY STORE - Append-only point log
// =============================================================================

// EntryStore persists the point log. The log is append-only except for
// Replace, the explicit delete-and-reinsert used by edit flows.
type EntryStore interface {
	// AppendEntry adds one entry to the log. Duplicate (name, day) pairs are
	// allowed; the scoring engine reconciles them at read time.
	AppendEntry(ctx context.Context, e Entry) error

	// ReplaceEntry atomically removes every row matching (day, name) and
	// appends the replacement.
	ReplaceEntry(ctx context.Context, day Day, name string, e Entry) error

	// LoadEntries returns the full log in write order, dates normalized.
	// Rows with unparseable dates are filtered out, never fatal.
	LoadEntries(ctx context.Context) ([]Entry, error)
}

// =============================================================================
// DERIVED-STATE STORES - Whole-document load/save
// =============================================================================

// BadgeStore persists the badge ledger: participant -> ordered badge labels.
type BadgeStore interface {
	LoadBadges(ctx context.Context) (map[string][]string, error)
	SaveBadges(ctx context.Context, badges map[string][]string) error
}

// AchievementStore persists achievement trigger counts.
type AchievementStore interface {
	LoadAchievements(ctx context.Context) (AchievementData, error)
	SaveAchievements(ctx context.Context, data AchievementData) error
}

// StreakStore persists streak state and awarded milestone tiers.
type StreakStore interface {
	LoadStreaks(ctx context.Context) (StreakData, error)
	SaveStreaks(ctx context.Context, data StreakData) error
}

// ChallengeStore persists challenges and their pending request queues.
type ChallengeStore interface {
	LoadChallenges(ctx context.Context) (ChallengeData, error)
	SaveChallenges(ctx context.Context, data ChallengeData) error
}

// Store is the full persistence surface the application context wires up.
type Store interface {
	EntryStore
	BadgeStore
	AchievementStore
	StreakStore
	ChallengeStore
}
