/*
achievements.go - Achievement engine

PURPOSE:
  Rule evaluator mapping (points, rank, streak) triggers to incrementing
  counters. The engine does not decide when it runs; the application context
  invokes it after every new entry and rank recomputation. Counters are
  trigger counts: re-satisfying the same criterion increments again, and
  nothing ever decrements.

CRITERIA:
  Criteria are a tagged enum, not closures. Each kind binds to exactly one
  input scalar: a performance threshold reads the latest entry total, a rank
  equality reads the just-computed rank, a streak threshold reads the
  current streak. A dispatcher evaluates the kind against its scalar.

TIERS:
  A counter maps to the highest bronze/silver/gold threshold met, or to no
  tier at all. The counter itself is unbounded; gold is a display floor,
  not a cap.
*/
package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RULE CATEGORIES
// =============================================================================

const (
	CategoryPerformance = "performance"
	CategoryRank        = "rank"
	CategoryStreak      = "streak"
)

// =============================================================================
// CRITERION - Tagged enum evaluated by a dispatcher
// =============================================================================

type CriterionKind string

const (
	// PerformanceThreshold fires when the latest entry total is >= Value.
	PerformanceThreshold CriterionKind = "performance_threshold"

	// RankEquals fires when the just-computed rank equals Value.
	RankEquals CriterionKind = "rank_equals"

	// StreakThreshold fires when the current streak is >= Value.
	StreakThreshold CriterionKind = "streak_threshold"
)

// Criterion is one achievement trigger condition.
type Criterion struct {
	Kind  CriterionKind
	Value int
}

// Met dispatches the criterion against the scalar its kind binds to.
func (c Criterion) Met(points decimal.Decimal, rank, streak int) bool {
	switch c.Kind {
	case PerformanceThreshold:
		return points.GreaterThanOrEqual(Pts(c.Value))
	case RankEquals:
		return rank == c.Value
	case StreakThreshold:
		return streak >= c.Value
	default:
		return false
	}
}

// Levels are the tier thresholds over the trigger count.
type Levels struct {
	Bronze int
	Silver int
	Gold   int
}

// Tier maps a trigger count to the highest tier met, or "" for none.
func (l Levels) Tier(count int) string {
	switch {
	case l.Gold > 0 && count >= l.Gold:
		return "gold"
	case l.Silver > 0 && count >= l.Silver:
		return "silver"
	case l.Bronze > 0 && count >= l.Bronze:
		return "bronze"
	default:
		return ""
	}
}

// Rule is one achievement definition.
type Rule struct {
	Criterion Criterion
	Levels    Levels
}

// RuleTable maps category -> achievement name -> rule.
type RuleTable map[string]map[string]Rule

// =============================================================================
// PERSISTED STATE
// =============================================================================

// AchievementData maps participant -> category -> achievement -> count.
type AchievementData map[string]map[string]map[string]int

// Count returns a trigger count, zero when absent.
func (d AchievementData) Count(participant, category, achievement string) int {
	return d[participant][category][achievement]
}

// =============================================================================
// ENGINE
// =============================================================================

// AchievementEngine owns the trigger counters.
type AchievementEngine struct {
	store AchievementStore
	rules RuleTable
}

func NewAchievementEngine(store AchievementStore, rules RuleTable) *AchievementEngine {
	return &AchievementEngine{store: store, rules: rules}
}

// Triggered describes one criterion satisfied by a Check call.
type Triggered struct {
	Category    string
	Achievement string
	Count       int
	Tier        string
}

// Check evaluates every rule against the participant's scalars and
// increments the counter for each satisfied criterion. Returns what fired.
func (e *AchievementEngine) Check(ctx context.Context, participant string, points decimal.Decimal, rank, streak int) ([]Triggered, error) {
	data, err := e.store.LoadAchievements(ctx)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}
	if data == nil {
		data = make(AchievementData)
	}

	var fired []Triggered
	for category, rules := range e.rules {
		for name, rule := range rules {
			if !rule.Criterion.Met(points, rank, streak) {
				continue
			}
			if data[participant] == nil {
				data[participant] = make(map[string]map[string]int)
			}
			if data[participant][category] == nil {
				data[participant][category] = make(map[string]int)
			}
			data[participant][category][name]++
			count := data[participant][category][name]
			fired = append(fired, Triggered{
				Category:    category,
				Achievement: name,
				Count:       count,
				Tier:        rule.Levels.Tier(count),
			})
		}
	}

	if len(fired) > 0 {
		if err := e.store.SaveAchievements(ctx, data); err != nil {
			return nil, fmt.Errorf("save achievements: %w", err)
		}
	}
	return fired, nil
}

// Records returns the full achievement document.
func (e *AchievementEngine) Records(ctx context.Context) (AchievementData, error) {
	return e.store.LoadAchievements(ctx)
}

// For returns one participant's counters by category.
func (e *AchievementEngine) For(ctx context.Context, participant string) (map[string]map[string]int, error) {
	data, err := e.store.LoadAchievements(ctx)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}
	return data[participant], nil
}

// Rules exposes the rule table for display (tier thresholds etc).
func (e *AchievementEngine) Rules() RuleTable { return e.rules }
