package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarsor/leaderboard/config"
	"github.com/sarsor/leaderboard/engine"
)

func validConfig() *config.Config {
	cfg := config.Default()
	cfg.AdminHash = "$2a$10$abcdefghijklmnopqrstuv"
	return cfg
}

// =============================================================================
// LOADING TESTS
// =============================================================================

func TestLoad_MissingFileWritesDefault(t *testing.T) {
	// GIVEN: A path with no configuration file
	// WHEN: Loading it with the admin hash supplied via the environment
	// THEN: A default file is written and the configuration loads

	t.Setenv(config.AdminHashEnv, "$2a$10$abcdefghijklmnopqrstuv")
	path := filepath.Join(t.TempDir(), "leaderboard.toml")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.Equal(t, "Monthly Leaderboard", cfg.Title)
	assert.Len(t, cfg.Categories, 5)
	assert.Equal(t, 100, cfg.MaxDailyBase)
}

func TestLoad_EnvHashOverridesFile(t *testing.T) {
	t.Setenv(config.AdminHashEnv, "$2a$10$from-environment-value")
	path := filepath.Join(t.TempDir(), "leaderboard.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
Title = "Custom"
AdminHash = "$2a$10$from-the-file"
MaxDailyBase = 100
MaxBonus = 50

[[Categories]]
name = "Homework"
max = 30
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Custom", cfg.Title)
	assert.Equal(t, "$2a$10$from-environment-value", cfg.AdminHash)
}

func TestLoad_MissingAdminHashFails(t *testing.T) {
	t.Setenv(config.AdminHashEnv, "")
	path := filepath.Join(t.TempDir(), "leaderboard.toml")

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin hash")
}

func TestLoad_MalformedTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard.toml")
	require.NoError(t, os.WriteFile(path, []byte("Title = [unclosed"), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidate_RejectsUnknownCriterion(t *testing.T) {
	cfg := validConfig()
	cfg.Achievements = append(cfg.Achievements, config.Achievement{
		Category:  engine.CategoryPerformance,
		Name:      "Bogus",
		Criterion: "lottery",
		Value:     1,
	})

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown criterion")
}

func TestValidate_RejectsUnknownAchievementCategory(t *testing.T) {
	cfg := validConfig()
	cfg.Achievements = append(cfg.Achievements, config.Achievement{
		Category:  "vibes",
		Name:      "Bogus",
		Criterion: string(engine.RankEquals),
		Value:     1,
	})

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestValidate_RejectsNonNegativePunishment(t *testing.T) {
	cfg := validConfig()
	cfg.Punishments = []config.Punishment{{Name: "Free Points", Points: 10}}

	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsPunishmentBeyondBonusBound(t *testing.T) {
	cfg := validConfig()
	cfg.Punishments = []config.Punishment{{Name: "Nuclear", Points: -500}}

	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsDuplicateCategory(t *testing.T) {
	cfg := validConfig()
	cfg.Categories = append(cfg.Categories, cfg.Categories[0])

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate category")
}

func TestValidate_RejectsEmptyCategories(t *testing.T) {
	cfg := validConfig()
	cfg.Categories = nil

	assert.Error(t, cfg.Validate())
}

// =============================================================================
// BINDING TESTS
// =============================================================================

func TestLimits_ReflectConfiguredBounds(t *testing.T) {
	cfg := validConfig()

	limits := cfg.Limits()

	assert.Equal(t, 100, limits.MaxBase)
	assert.Equal(t, 50, limits.MaxBonus)
	assert.Equal(t, 30, limits.CategoryMax["Academic Performance"])
}

func TestRuleTable_BindsCriteriaAndLevels(t *testing.T) {
	cfg := validConfig()

	table := cfg.RuleTable()

	rule, ok := table[engine.CategoryRank]["Top Performer"]
	require.True(t, ok)
	assert.Equal(t, engine.RankEquals, rule.Criterion.Kind)
	assert.Equal(t, 1, rule.Criterion.Value)
	assert.Equal(t, 5, rule.Levels.Gold)
}

func TestPunishmentPoints_Lookup(t *testing.T) {
	cfg := validConfig()

	pts, ok := cfg.PunishmentPoints("Minor Warning")
	require.True(t, ok)
	assert.True(t, pts.Equal(engine.Pts(-10)))

	_, ok = cfg.PunishmentPoints("Unknown")
	assert.False(t, ok)
}

func TestCategoryNames_PreservesOrder(t *testing.T) {
	cfg := validConfig()

	names := cfg.CategoryNames()

	require.Len(t, names, 5)
	assert.Equal(t, "Academic Performance", names[0])
	assert.Equal(t, "Presentation and Communication", names[4])
}
