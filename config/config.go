/*
Package config loads the leaderboard configuration.

PURPOSE:
  Everything tunable lives in one TOML file: the scoring categories and
  their per-day maxima, bonus bounds, the participant roster, badge catalog,
  streak/milestone/achievement rule tables, punishment values, and the admin
  credential hash. Loading a missing path writes a commented default file
  first, so a fresh deployment starts from a working configuration.

ADMIN CREDENTIAL:
  AdminHash is a bcrypt hash of the shared admin secret. It can also be
  supplied via the LEADERBOARD_ADMIN_HASH environment variable, which takes
  precedence over the file. A configuration without a hash fails validation;
  there is no unauthenticated admin mode.
*/
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/sarsor/leaderboard/engine"
)

// AdminHashEnv overrides the configured admin hash when set.
const AdminHashEnv = "LEADERBOARD_ADMIN_HASH"

// =============================================================================
// CONFIG STRUCTURE
// =============================================================================

// Category is one scoring category with its per-day maximum.
type Category struct {
	Name string `toml:"name"`
	Max  int    `toml:"max"`
}

// Badge is a catalog entry for manual admin awards.
type Badge struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// StreakBadge pairs a consecutive-day threshold with its badge label.
type StreakBadge struct {
	Days  int    `toml:"days"`
	Badge string `toml:"badge"`
}

// Milestone pairs a tier name with its all-time point threshold.
type Milestone struct {
	Name   string `toml:"name"`
	Points int64  `toml:"points"`
}

// Punishment is a named penalty applied as a negative bonus entry.
type Punishment struct {
	Name   string `toml:"name"`
	Points int64  `toml:"points"` // negative
}

// Achievement is one rule-table row.
type Achievement struct {
	Category  string `toml:"category"`
	Name      string `toml:"name"`
	Criterion string `toml:"criterion"`
	Value     int    `toml:"value"`
	Bronze    int    `toml:"bronze"`
	Silver    int    `toml:"silver"`
	Gold      int    `toml:"gold"`
}

// Config is the full application configuration.
type Config struct {
	Title        string        `toml:"Title"`
	AdminHash    string        `toml:"AdminHash"`
	Participants []string      `toml:"Participants"`
	MaxDailyBase int           `toml:"MaxDailyBase"`
	MaxBonus     int           `toml:"MaxBonus"`
	Categories   []Category    `toml:"Categories"`
	Badges       []Badge       `toml:"Badges"`
	StreakBadges []StreakBadge `toml:"StreakBadges"`
	Milestones   []Milestone   `toml:"Milestones"`
	Punishments  []Punishment  `toml:"Punishments"`
	Achievements []Achievement `toml:"Achievements"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration from path, creating a default file when none
// exists. The admin hash environment variable, when set, wins over the file.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeDefault(path); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	if env := os.Getenv(AdminHashEnv); env != "" {
		cfg.AdminHash = env
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeDefault(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	var buf bytes.Buffer
	buf.WriteString("# Leaderboard configuration. AdminHash is a bcrypt hash of the admin\n")
	buf.WriteString("# secret; it may also be set via " + AdminHashEnv + ".\n\n")
	if err := toml.NewEncoder(&buf).Encode(Default()); err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.AdminHash == "" {
		return fmt.Errorf("admin hash not configured (set AdminHash or %s)", AdminHashEnv)
	}
	if c.MaxDailyBase <= 0 {
		return fmt.Errorf("MaxDailyBase must be positive")
	}
	if c.MaxBonus <= 0 {
		return fmt.Errorf("MaxBonus must be positive")
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("at least one scoring category is required")
	}
	seen := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.Name == "" || cat.Max <= 0 {
			return fmt.Errorf("category %q: name and positive max required", cat.Name)
		}
		if seen[cat.Name] {
			return fmt.Errorf("duplicate category %q", cat.Name)
		}
		seen[cat.Name] = true
	}
	for _, a := range c.Achievements {
		switch engine.CriterionKind(a.Criterion) {
		case engine.PerformanceThreshold, engine.RankEquals, engine.StreakThreshold:
		default:
			return fmt.Errorf("achievement %q: unknown criterion %q", a.Name, a.Criterion)
		}
		switch a.Category {
		case engine.CategoryPerformance, engine.CategoryRank, engine.CategoryStreak:
		default:
			return fmt.Errorf("achievement %q: unknown category %q", a.Name, a.Category)
		}
	}
	for _, p := range c.Punishments {
		if p.Points >= 0 {
			return fmt.Errorf("punishment %q: points must be negative", p.Name)
		}
		if -p.Points > int64(c.MaxBonus) {
			return fmt.Errorf("punishment %q: exceeds bonus bound %d", p.Name, c.MaxBonus)
		}
	}
	return nil
}

// =============================================================================
// ENGINE BINDINGS
// =============================================================================

// Limits builds the entry validation bounds.
func (c *Config) Limits() engine.Limits {
	maxes := make(map[string]int, len(c.Categories))
	for _, cat := range c.Categories {
		maxes[cat.Name] = cat.Max
	}
	return engine.Limits{
		CategoryMax: maxes,
		MaxBase:     c.MaxDailyBase,
		MaxBonus:    c.MaxBonus,
	}
}

// CategoryNames returns the configured category order.
func (c *Config) CategoryNames() []string {
	names := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		names[i] = cat.Name
	}
	return names
}

// StreakBadgeTable converts the streak badge rows to the engine table.
func (c *Config) StreakBadgeTable() []engine.StreakBadge {
	table := make([]engine.StreakBadge, len(c.StreakBadges))
	for i, sb := range c.StreakBadges {
		table[i] = engine.StreakBadge{Days: sb.Days, Badge: sb.Badge}
	}
	return table
}

// MilestoneTable converts the milestone rows to the engine table.
func (c *Config) MilestoneTable() []engine.MilestoneTier {
	table := make([]engine.MilestoneTier, len(c.Milestones))
	for i, m := range c.Milestones {
		table[i] = engine.MilestoneTier{Name: m.Name, Threshold: decimal.NewFromInt(m.Points)}
	}
	return table
}

// RuleTable converts the achievement rows to the engine rule table.
func (c *Config) RuleTable() engine.RuleTable {
	table := make(engine.RuleTable)
	for _, a := range c.Achievements {
		if table[a.Category] == nil {
			table[a.Category] = make(map[string]engine.Rule)
		}
		table[a.Category][a.Name] = engine.Rule{
			Criterion: engine.Criterion{Kind: engine.CriterionKind(a.Criterion), Value: a.Value},
			Levels:    engine.Levels{Bronze: a.Bronze, Silver: a.Silver, Gold: a.Gold},
		}
	}
	return table
}

// PunishmentPoints looks up a punishment by name.
func (c *Config) PunishmentPoints(name string) (decimal.Decimal, bool) {
	for _, p := range c.Punishments {
		if p.Name == name {
			return decimal.NewFromInt(p.Points), true
		}
	}
	return decimal.Zero, false
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the stock configuration. The admin hash is intentionally
// absent; deployments must provide their own.
func Default() *Config {
	return &Config{
		Title:        "Monthly Leaderboard",
		Participants: []string{},
		MaxDailyBase: 100,
		MaxBonus:     50,
		Categories: []Category{
			{Name: "Academic Performance", Max: 30},
			{Name: "Project Task Completion", Max: 25},
			{Name: "Collaborative Skills", Max: 20},
			{Name: "Innovation and Initiative", Max: 15},
			{Name: "Presentation and Communication", Max: 10},
		},
		Badges: []Badge{
			{Name: "Top Performer", Description: "Awarded for consistently high performance"},
			{Name: "Rising Star", Description: "Shows remarkable improvement"},
			{Name: "Goal Crusher", Description: "Exceeds target goals"},
			{Name: "Team Player", Description: "Excellence in collaboration"},
			{Name: "Innovator", Description: "Creative problem-solving"},
			{Name: "Academic Excellence", Description: "Outstanding academic achievement"},
			{Name: "Quick Learner", Description: "Rapid skill acquisition"},
			{Name: "Leadership", Description: "Demonstrates leadership qualities"},
			{Name: "Perfect Attendance", Description: "100% attendance record"},
			{Name: "Creative Genius", Description: "Exceptional creativity"},
		},
		StreakBadges: []StreakBadge{
			{Days: 3, Badge: "3-Day Streak"},
			{Days: 7, Badge: "Week Warrior"},
			{Days: 14, Badge: "Fortnight Fighter"},
			{Days: 30, Badge: "Monthly Master"},
		},
		Milestones: []Milestone{
			{Name: "First 1000", Points: 1000},
			{Name: "5000 Club", Points: 5000},
			{Name: "10000 Master", Points: 10000},
			{Name: "25000 Legend", Points: 25000},
		},
		Punishments: []Punishment{
			{Name: "Minor Warning", Points: -10},
			{Name: "Major Warning", Points: -20},
			{Name: "Critical Warning", Points: -30},
		},
		Achievements: []Achievement{
			{
				Category:  engine.CategoryPerformance,
				Name:      "Perfect Score",
				Criterion: string(engine.PerformanceThreshold),
				Value:     150,
				Bronze:    1, Silver: 3, Gold: 5,
			},
			{
				Category:  engine.CategoryRank,
				Name:      "Top Performer",
				Criterion: string(engine.RankEquals),
				Value:     1,
				Bronze:    1, Silver: 3, Gold: 5,
			},
			{
				Category:  engine.CategoryStreak,
				Name:      "Consistency King",
				Criterion: string(engine.StreakThreshold),
				Value:     3,
				Bronze:    3, Silver: 6, Gold: 12,
			},
		},
	}
}
