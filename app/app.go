/*
Package app wires the engine components into one application context.

PURPOSE:
  Holds the configured engine components (entry log, scoring, trackers,
  challenge workflow, badge registry) plus the admin gate, and runs the
  recomputation pipeline every mutating operation triggers. The HTTP layer
  talks only to this package.

INITIALIZATION ORDER:
  auth gate -> entry log -> badge registry -> trackers. The trackers write
  through the badge registry, so the registry exists first.

PIPELINE:
  Every operation that writes a point entry follows the same sequence:
    1. Persist the entry (durable before any derived state).
    2. Reload the full log.
    3. Recompute the current-month rank.
    4. Recompute streak state; award missing streak badges.
    5. Check milestone tiers against the all-time total.
    6. Run the achievement rules with (points, rank, streak).
  The result carries everything newly awarded so callers can surface the
  celebration signal.

CONCURRENCY:
  A process-wide mutex serializes mutating operations. Reads go through
  without it; the stores guard their own documents.
*/
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/sarsor/leaderboard/auth"
	"github.com/sarsor/leaderboard/config"
	"github.com/sarsor/leaderboard/engine"
)

// App is the application context.
type App struct {
	cfg          *config.Config
	store        engine.Store
	gate         *auth.Gate
	entries      *engine.EntryLog
	badges       *engine.BadgeRegistry
	streaks      *engine.StreakTracker
	achievements *engine.AchievementEngine
	challenges   *engine.ChallengeWorkflow

	mu    sync.Mutex
	today func() engine.Day
}

// New builds the application context from configuration and a store.
func New(cfg *config.Config, store engine.Store) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	gate := auth.New(cfg.AdminHash)
	entries := engine.NewEntryLog(store, cfg.Limits(), cfg.CategoryNames())
	badges := engine.NewBadgeRegistry(store)
	streaks := engine.NewStreakTracker(store, badges, cfg.StreakBadgeTable(), cfg.MilestoneTable())
	achievements := engine.NewAchievementEngine(store, cfg.RuleTable())
	challenges := engine.NewChallengeWorkflow(store)

	return &App{
		cfg:          cfg,
		store:        store,
		gate:         gate,
		entries:      entries,
		badges:       badges,
		streaks:      streaks,
		achievements: achievements,
		challenges:   challenges,
		today:        engine.Today,
	}, nil
}

// Gate exposes the admin gate for the HTTP middleware.
func (a *App) Gate() *auth.Gate { return a.gate }

// Config exposes the loaded configuration (read-only by convention).
func (a *App) Config() *config.Config { return a.cfg }

// =============================================================================
// CHECK RESULT - What a mutation awarded
// =============================================================================

// CheckResult reports everything a point-writing operation derived.
type CheckResult struct {
	Entry         engine.Entry
	Rank          int
	Streak        engine.StreakState
	NewBadges     []string
	NewMilestones []string
	Achievements  []engine.Triggered
}

// Celebrate reports whether anything worth celebrating was awarded.
func (r CheckResult) Celebrate() bool {
	return len(r.NewBadges) > 0 || len(r.NewMilestones) > 0 || len(r.Achievements) > 0
}

// =============================================================================
// ENTRY OPERATIONS
// =============================================================================

// SubmitEntry validates and appends a point entry, then runs the pipeline.
func (a *App) SubmitEntry(ctx context.Context, name string, day engine.Day, categories map[string]decimal.Decimal, bonus decimal.Decimal) (CheckResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e := buildEntry(name, day, categories, bonus, a.entries.Categories())
	if err := a.entries.Append(ctx, e); err != nil {
		return CheckResult{}, err
	}
	return a.refresh(ctx, e)
}

// ReplaceEntry swaps every row for (day, name) with the given snapshot, then
// runs the pipeline against the corrected log.
func (a *App) ReplaceEntry(ctx context.Context, name string, day engine.Day, categories map[string]decimal.Decimal, bonus decimal.Decimal) (CheckResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e := buildEntry(name, day, categories, bonus, a.entries.Categories())
	if err := a.entries.Replace(ctx, day, name, e); err != nil {
		return CheckResult{}, err
	}
	return a.refresh(ctx, e)
}

// InitializePeriod appends one zero entry per configured participant, dated
// today. Prior data is untouched.
func (a *App) InitializePeriod(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.entries.InitializePeriod(ctx, a.cfg.Participants, a.today())
}

// Entries returns the full normalized log.
func (a *App) Entries(ctx context.Context) ([]engine.Entry, error) {
	return a.entries.LoadAll(ctx)
}

// buildEntry assembles a full entry from category points and a bonus,
// zero-filling configured categories the caller omitted.
func buildEntry(name string, day engine.Day, categories map[string]decimal.Decimal, bonus decimal.Decimal, configured []string) engine.Entry {
	e := engine.ZeroEntry(name, day, configured)
	base := decimal.Zero
	for _, cat := range configured {
		if v, ok := categories[cat]; ok {
			e.Categories[cat] = v
			base = base.Add(v)
		}
	}
	e.Base = base
	e.Bonus = bonus
	e.Total = base.Add(bonus)
	return e
}

// refresh is the post-entry pipeline. The triggering entry is already
// durable; everything here is derived state.
func (a *App) refresh(ctx context.Context, e engine.Entry) (CheckResult, error) {
	entries, err := a.entries.LoadAll(ctx)
	if err != nil {
		return CheckResult{}, err
	}

	today := a.today()
	rows := engine.Scoreboard(entries, engine.WindowMonth, today)
	rank := engine.RankOf(rows, e.Name)

	streak, streakBadges, err := a.streaks.CheckStreaks(ctx, entries, e.Name, today)
	if err != nil {
		return CheckResult{}, err
	}

	milestones, err := a.streaks.CheckMilestones(ctx, entries, e.Name)
	if err != nil {
		return CheckResult{}, err
	}

	triggered, err := a.achievements.Check(ctx, e.Name, e.Total, rank, streak.CurrentStreak)
	if err != nil {
		return CheckResult{}, err
	}

	return CheckResult{
		Entry:         e,
		Rank:          rank,
		Streak:        streak,
		NewBadges:     streakBadges,
		NewMilestones: milestones,
		Achievements:  triggered,
	}, nil
}

// =============================================================================
// LEADERBOARD & PARTICIPANT VIEWS
// =============================================================================

// Leaderboard computes the ranked cumulative rows for a window, anchored at
// today.
func (a *App) Leaderboard(ctx context.Context, w engine.Window) ([]engine.CumulativeRow, error) {
	entries, err := a.entries.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return engine.Scoreboard(entries, w, a.today()), nil
}

// StreakOf returns the persisted streak state for a participant.
func (a *App) StreakOf(ctx context.Context, name string) (engine.StreakState, error) {
	return a.streaks.State(ctx, name)
}

// BadgesOf returns the badge list for a participant.
func (a *App) BadgesOf(ctx context.Context, name string) ([]string, error) {
	return a.badges.Badges(ctx, name)
}

// AllBadges returns the full badge ledger.
func (a *App) AllBadges(ctx context.Context) (map[string][]string, error) {
	return a.badges.All(ctx)
}

// AchievementsOf returns a participant's trigger counts by category.
func (a *App) AchievementsOf(ctx context.Context, name string) (map[string]map[string]int, error) {
	return a.achievements.For(ctx, name)
}

// AllAchievements returns every participant's trigger counts.
func (a *App) AllAchievements(ctx context.Context) (engine.AchievementData, error) {
	return a.achievements.Records(ctx)
}

// AchievementRules exposes the configured rule table for display.
func (a *App) AchievementRules() engine.RuleTable {
	return a.achievements.Rules()
}

// =============================================================================
// BADGE ADMINISTRATION
// =============================================================================

// AwardBadge adds a badge to a participant. Returns false when the badge was
// already held.
func (a *App) AwardBadge(ctx context.Context, name, badge string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.badges.Award(ctx, name, badge)
}

// RevokeBadge removes a badge from a participant.
func (a *App) RevokeBadge(ctx context.Context, name, badge string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.badges.Revoke(ctx, name, badge)
}

// =============================================================================
// CHALLENGES
// =============================================================================

// Challenges returns the challenge document.
func (a *App) Challenges(ctx context.Context) (engine.ChallengeData, error) {
	return a.challenges.List(ctx)
}

// AddChallenge creates a challenge.
func (a *App) AddChallenge(ctx context.Context, name, description string, bonus decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.challenges.Add(ctx, name, description, bonus)
}

// RemoveChallenge deletes a challenge and its pending queue. Completed
// records and already-awarded points stand.
func (a *App) RemoveChallenge(ctx context.Context, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.challenges.Remove(ctx, name)
}

// RequestJoin queues a participant's completion request. Idempotent.
func (a *App) RequestJoin(ctx context.Context, participant, challenge string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.challenges.RequestJoin(ctx, participant, challenge)
}

// ApproveChallenge grants a pending request. The pending queue is vetted
// before anything is written: only a pending->accepted transition may emit
// points. The bonus entry then lands before the workflow state, so points
// are never awarded without a durable log row.
func (a *App) ApproveChallenge(ctx context.Context, participant, challenge string, points decimal.Decimal) (CheckResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.challenges.IsPending(ctx, participant, challenge); err != nil {
		return CheckResult{}, err
	}

	today := a.today()
	e, err := a.entries.AwardBonus(ctx, participant, today, points)
	if err != nil {
		return CheckResult{}, err
	}
	if _, err := a.challenges.Approve(ctx, participant, challenge, points, today); err != nil {
		return CheckResult{}, err
	}
	return a.refresh(ctx, e)
}

// RejectChallenge discards a pending request.
func (a *App) RejectChallenge(ctx context.Context, participant, challenge string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.challenges.Reject(ctx, participant, challenge)
}

// =============================================================================
// PUNISHMENTS
// =============================================================================

// ApplyPunishment writes the named penalty as a negative bonus entry and
// runs the pipeline (rank drops propagate immediately).
func (a *App) ApplyPunishment(ctx context.Context, participant, punishment string) (CheckResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	points, ok := a.cfg.PunishmentPoints(punishment)
	if !ok {
		return CheckResult{}, engine.ErrUnknownPunishment
	}
	e, err := a.entries.AwardBonus(ctx, participant, a.today(), points)
	if err != nil {
		return CheckResult{}, err
	}
	return a.refresh(ctx, e)
}

// =============================================================================
// ADMIN DASHBOARD
// =============================================================================

// DayTotal is one cell of the trailing activity series.
type DayTotal struct {
	Day   engine.Day
	Total decimal.Decimal
}

// Stats summarizes today's activity for the admin dashboard.
type Stats struct {
	PointsToday        decimal.Decimal
	ActiveParticipants int
	TrailingTotals     []DayTotal
}

// AdminStats computes today's totals and the trailing 30-day series.
func (a *App) AdminStats(ctx context.Context) (Stats, error) {
	entries, err := a.entries.LoadAll(ctx)
	if err != nil {
		return Stats{}, err
	}

	today := a.today()
	start := today.AddDays(-29)

	perDay := make(map[string]decimal.Decimal)
	activeToday := make(map[string]bool)
	for _, e := range entries {
		if e.Day.Before(start) || e.Day.After(today) {
			continue
		}
		key := e.Day.String()
		perDay[key] = perDay[key].Add(e.Total)
		if e.Day.Equal(today) && !e.Total.IsZero() {
			activeToday[e.Name] = true
		}
	}

	stats := Stats{
		PointsToday:        perDay[today.String()],
		ActiveParticipants: len(activeToday),
	}
	for d := start; d.BeforeOrEqual(today); d = d.AddDays(1) {
		stats.TrailingTotals = append(stats.TrailingTotals, DayTotal{Day: d, Total: perDay[d.String()]})
	}
	return stats, nil
}
