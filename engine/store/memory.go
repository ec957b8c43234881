// Package store provides engine.Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/sarsor/leaderboard/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps the entry log and all derived-state documents in memory.
// Loads return deep copies so callers can't mutate shared state.
type Memory struct {
	mu           sync.RWMutex
	entries      []engine.Entry
	badges       map[string][]string
	achievements engine.AchievementData
	streaks      engine.StreakData
	challenges   engine.ChallengeData
}

func NewMemory() *Memory {
	return &Memory{
		badges:       make(map[string][]string),
		achievements: make(engine.AchievementData),
		streaks:      engine.NewStreakData(),
		challenges:   engine.NewChallengeData(),
	}
}

var _ engine.Store = (*Memory)(nil)

// -----------------------------------------------------------------------------
// Entry log
// -----------------------------------------------------------------------------

func (m *Memory) AppendEntry(_ context.Context, e engine.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, copyEntry(e))
	return nil
}

func (m *Memory) ReplaceEntry(_ context.Context, day engine.Day, name string, e engine.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, existing := range m.entries {
		if existing.Name == name && existing.Day.Equal(day) {
			continue
		}
		kept = append(kept, existing)
	}
	m.entries = append(kept, copyEntry(e))
	return nil
}

func (m *Memory) LoadEntries(_ context.Context) ([]engine.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]engine.Entry, len(m.entries))
	for i, e := range m.entries {
		result[i] = copyEntry(e)
	}
	return result, nil
}

// -----------------------------------------------------------------------------
// Derived-state documents
// -----------------------------------------------------------------------------

func (m *Memory) LoadBadges(_ context.Context) (map[string][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyBadges(m.badges), nil
}

func (m *Memory) SaveBadges(_ context.Context, badges map[string][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.badges = copyBadges(badges)
	return nil
}

func (m *Memory) LoadAchievements(_ context.Context) (engine.AchievementData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyAchievements(m.achievements), nil
}

func (m *Memory) SaveAchievements(_ context.Context, data engine.AchievementData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.achievements = copyAchievements(data)
	return nil
}

func (m *Memory) LoadStreaks(_ context.Context) (engine.StreakData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyStreaks(m.streaks), nil
}

func (m *Memory) SaveStreaks(_ context.Context, data engine.StreakData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streaks = copyStreaks(data)
	return nil
}

func (m *Memory) LoadChallenges(_ context.Context) (engine.ChallengeData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyChallenges(m.challenges), nil
}

func (m *Memory) SaveChallenges(_ context.Context, data engine.ChallengeData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.challenges = copyChallenges(data)
	return nil
}

// -----------------------------------------------------------------------------
// Deep copies
// -----------------------------------------------------------------------------

func copyEntry(e engine.Entry) engine.Entry {
	out := e
	out.Categories = make(map[string]decimal.Decimal, len(e.Categories))
	for k, v := range e.Categories {
		out.Categories[k] = v
	}
	return out
}

func copyBadges(badges map[string][]string) map[string][]string {
	out := make(map[string][]string, len(badges))
	for name, list := range badges {
		out[name] = append([]string{}, list...)
	}
	return out
}

func copyAchievements(data engine.AchievementData) engine.AchievementData {
	out := make(engine.AchievementData, len(data))
	for participant, categories := range data {
		out[participant] = make(map[string]map[string]int, len(categories))
		for category, counts := range categories {
			out[participant][category] = make(map[string]int, len(counts))
			for name, count := range counts {
				out[participant][category][name] = count
			}
		}
	}
	return out
}

func copyStreaks(data engine.StreakData) engine.StreakData {
	out := engine.NewStreakData()
	for name, state := range data.Participants {
		out.Participants[name] = state
	}
	for name, tiers := range data.MilestonesAwarded {
		out.MilestonesAwarded[name] = append([]string{}, tiers...)
	}
	return out
}

func copyChallenges(data engine.ChallengeData) engine.ChallengeData {
	out := engine.NewChallengeData()
	for name, ch := range data.Challenges {
		copied := ch
		copied.Participants = append([]string{}, ch.Participants...)
		copied.Completed = append([]engine.CompletedRecord{}, ch.Completed...)
		out.Challenges[name] = copied
	}
	for name, queue := range data.Pending {
		out.Pending[name] = append([]string{}, queue...)
	}
	return out
}
