package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarsor/leaderboard/engine"
	enginestore "github.com/sarsor/leaderboard/engine/store"
)

func newTestWorkflow(t *testing.T) *engine.ChallengeWorkflow {
	t.Helper()
	return engine.NewChallengeWorkflow(enginestore.NewMemory())
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestChallenges_AddDuplicateRejected(t *testing.T) {
	w := newTestWorkflow(t)
	ctx := context.Background()

	require.NoError(t, w.Add(ctx, "Book Club", "Read one book", engine.Pts(25)))
	err := w.Add(ctx, "Book Club", "Different description", engine.Pts(10))
	assert.ErrorIs(t, err, engine.ErrChallengeExists)
}

func TestChallenges_JoinApproveFlow(t *testing.T) {
	// GIVEN: A challenge with a queued join request
	// WHEN: The admin approves it
	// THEN: The participant moves to accepted with a completed record,
	//       and the pending queue no longer holds them

	w := newTestWorkflow(t)
	ctx := context.Background()
	today := day(2024, time.June, 10)

	require.NoError(t, w.Add(ctx, "Book Club", "Read one book", engine.Pts(25)))

	queued, err := w.RequestJoin(ctx, "Alice", "Book Club")
	require.NoError(t, err)
	assert.True(t, queued)

	record, err := w.Approve(ctx, "Alice", "Book Club", engine.Pts(25), today)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "Alice", record.Participant)
	assert.True(t, record.Points.Equal(engine.Pts(25)))
	assert.Equal(t, today.String(), record.Date)

	data, err := w.List(ctx)
	require.NoError(t, err)
	ch := data.Challenges["Book Club"]
	assert.Equal(t, []string{"Alice"}, ch.Participants)
	require.Len(t, ch.Completed, 1)
	assert.Empty(t, data.Pending["Book Club"])
}

func TestChallenges_RequestJoinIdempotent(t *testing.T) {
	// GIVEN: A participant already pending, then already accepted
	// WHEN: Requesting again at each stage
	// THEN: No-op both times

	w := newTestWorkflow(t)
	ctx := context.Background()

	require.NoError(t, w.Add(ctx, "Book Club", "", engine.Pts(25)))

	queued, err := w.RequestJoin(ctx, "Alice", "Book Club")
	require.NoError(t, err)
	assert.True(t, queued)

	queued, err = w.RequestJoin(ctx, "Alice", "Book Club")
	require.NoError(t, err)
	assert.False(t, queued, "second request while pending is a no-op")

	_, err = w.Approve(ctx, "Alice", "Book Club", engine.Pts(25), day(2024, time.June, 10))
	require.NoError(t, err)

	queued, err = w.RequestJoin(ctx, "Alice", "Book Club")
	require.NoError(t, err)
	assert.False(t, queued, "request after acceptance is a no-op")

	pending, err := w.Pending(ctx, "Book Club")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestChallenges_RejectOnlyRemovesPending(t *testing.T) {
	w := newTestWorkflow(t)
	ctx := context.Background()

	require.NoError(t, w.Add(ctx, "Book Club", "", engine.Pts(25)))
	_, err := w.RequestJoin(ctx, "Alice", "Book Club")
	require.NoError(t, err)

	require.NoError(t, w.Reject(ctx, "Alice", "Book Club"))

	data, err := w.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, data.Pending["Book Club"])
	assert.Empty(t, data.Challenges["Book Club"].Participants)
	assert.Empty(t, data.Challenges["Book Club"].Completed)

	// The participant can request again after a rejection.
	queued, err := w.RequestJoin(ctx, "Alice", "Book Club")
	require.NoError(t, err)
	assert.True(t, queued)
}

func TestChallenges_ApproveWithoutPendingFails(t *testing.T) {
	w := newTestWorkflow(t)
	ctx := context.Background()

	require.NoError(t, w.Add(ctx, "Book Club", "", engine.Pts(25)))

	_, err := w.Approve(ctx, "Alice", "Book Club", engine.Pts(25), day(2024, time.June, 10))
	assert.ErrorIs(t, err, engine.ErrNotPending)
}

func TestChallenges_IsPending(t *testing.T) {
	w := newTestWorkflow(t)
	ctx := context.Background()

	require.NoError(t, w.Add(ctx, "Book Club", "", engine.Pts(25)))

	assert.ErrorIs(t, w.IsPending(ctx, "Alice", "Book Club"), engine.ErrNotPending)
	assert.ErrorIs(t, w.IsPending(ctx, "Alice", "Nope"), engine.ErrChallengeNotFound)

	_, err := w.RequestJoin(ctx, "Alice", "Book Club")
	require.NoError(t, err)
	assert.NoError(t, w.IsPending(ctx, "Alice", "Book Club"))

	_, err = w.Approve(ctx, "Alice", "Book Club", engine.Pts(25), day(2024, time.June, 10))
	require.NoError(t, err)
	assert.ErrorIs(t, w.IsPending(ctx, "Alice", "Book Club"), engine.ErrNotPending)
}

func TestChallenges_UnknownChallenge(t *testing.T) {
	w := newTestWorkflow(t)
	ctx := context.Background()

	_, err := w.RequestJoin(ctx, "Alice", "Nope")
	assert.ErrorIs(t, err, engine.ErrChallengeNotFound)

	_, err = w.Approve(ctx, "Alice", "Nope", engine.Pts(1), day(2024, time.June, 10))
	assert.ErrorIs(t, err, engine.ErrChallengeNotFound)

	err = w.Remove(ctx, "Nope")
	assert.ErrorIs(t, err, engine.ErrChallengeNotFound)
}

func TestChallenges_RemoveDiscardsPendingKeepsNothingElse(t *testing.T) {
	// GIVEN: A challenge with both a pending request and a completed record
	// WHEN: Removing the challenge
	// THEN: The challenge and its queue vanish; completed records and
	//       already-awarded points stand

	w := newTestWorkflow(t)
	ctx := context.Background()
	today := day(2024, time.June, 10)

	require.NoError(t, w.Add(ctx, "Book Club", "", engine.Pts(25)))
	_, err := w.RequestJoin(ctx, "Alice", "Book Club")
	require.NoError(t, err)
	_, err = w.Approve(ctx, "Alice", "Book Club", engine.Pts(25), today)
	require.NoError(t, err)
	_, err = w.RequestJoin(ctx, "Bob", "Book Club")
	require.NoError(t, err)

	require.NoError(t, w.Remove(ctx, "Book Club"))

	data, err := w.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, data.Challenges, "Book Club")
	assert.NotContains(t, data.Pending, "Book Club")
}
