package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarsor/leaderboard/engine"
	enginestore "github.com/sarsor/leaderboard/engine/store"
)

func newTestRegistry(t *testing.T) *engine.BadgeRegistry {
	t.Helper()
	return engine.NewBadgeRegistry(enginestore.NewMemory())
}

func TestBadges_AwardIdempotent(t *testing.T) {
	// GIVEN: A badge already held
	// WHEN: Awarding it again
	// THEN: No duplicate appears and the call reports not-new

	r := newTestRegistry(t)
	ctx := context.Background()

	added, err := r.Award(ctx, "Alice", "Early Bird")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = r.Award(ctx, "Alice", "Early Bird")
	require.NoError(t, err)
	assert.False(t, added)

	badges, err := r.Badges(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"Early Bird"}, badges)
}

func TestBadges_InsertionOrderPreserved(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	for _, b := range []string{"First", "Second", "Third"} {
		_, err := r.Award(ctx, "Alice", b)
		require.NoError(t, err)
	}

	badges, err := r.Badges(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second", "Third"}, badges)
}

func TestBadges_RevokePrunesEmptyParticipant(t *testing.T) {
	// GIVEN: A participant holding a single badge
	// WHEN: Revoking it
	// THEN: The participant key disappears from the ledger

	r := newTestRegistry(t)
	ctx := context.Background()

	_, err := r.Award(ctx, "Alice", "Early Bird")
	require.NoError(t, err)
	require.NoError(t, r.Revoke(ctx, "Alice", "Early Bird"))

	all, err := r.All(ctx)
	require.NoError(t, err)
	assert.NotContains(t, all, "Alice")
}

func TestBadges_RevokeUnknownIsNoop(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	assert.NoError(t, r.Revoke(ctx, "Alice", "Never Held"))
}

func TestBadges_HasDistinguishesParticipants(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	_, err := r.Award(ctx, "Alice", "Early Bird")
	require.NoError(t, err)

	has, err := r.Has(ctx, "Alice", "Early Bird")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = r.Has(ctx, "Bob", "Early Bird")
	require.NoError(t, err)
	assert.False(t, has)
}
