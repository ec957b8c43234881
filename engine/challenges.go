/*
challenges.go - Challenge workflow

PURPOSE:
  Opt-in bonus-point activities with an admin-gated approval workflow.
  Per (challenge, participant) the states are:

      unrequested -> pending -> accepted
                           \-> rejected (back to unrequested)

  RequestJoin is idempotent: re-requesting while pending or after acceptance
  is a no-op. Approval appends a completed record; the caller (application
  context) is responsible for emitting the point-awarding entry, so that the
  entry is durably saved in the same critical section.

  Removing a challenge discards its pending queue but never retroactively
  undoes completed records or points already in the log.
*/
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// PERSISTED STATE
// =============================================================================

// CompletedRecord is an approved challenge completion.
type CompletedRecord struct {
	ID          string          `json:"id"`
	Participant string          `json:"participant"`
	Points      decimal.Decimal `json:"points"`
	Date        string          `json:"date"`
}

// Challenge is one opt-in bonus activity.
type Challenge struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	BonusPoints  decimal.Decimal   `json:"bonus_points"`
	Participants []string          `json:"participants"`
	Completed    []CompletedRecord `json:"completed"`
}

// ChallengeData is the persisted challenges document.
type ChallengeData struct {
	Challenges map[string]Challenge `json:"challenges"`
	Pending    map[string][]string  `json:"pending"`
}

// NewChallengeData returns an empty document with maps allocated.
func NewChallengeData() ChallengeData {
	return ChallengeData{
		Challenges: make(map[string]Challenge),
		Pending:    make(map[string][]string),
	}
}

// =============================================================================
// WORKFLOW
// =============================================================================

// ChallengeWorkflow owns challenge and pending-request state.
type ChallengeWorkflow struct {
	store ChallengeStore
}

func NewChallengeWorkflow(store ChallengeStore) *ChallengeWorkflow {
	return &ChallengeWorkflow{store: store}
}

// Add creates a new challenge. The name is the unique key.
func (w *ChallengeWorkflow) Add(ctx context.Context, name, description string, bonus decimal.Decimal) error {
	data, err := w.load(ctx)
	if err != nil {
		return err
	}
	if _, exists := data.Challenges[name]; exists {
		return ErrChallengeExists
	}
	data.Challenges[name] = Challenge{
		Name:         name,
		Description:  description,
		BonusPoints:  bonus,
		Participants: []string{},
		Completed:    []CompletedRecord{},
	}
	return w.save(ctx, data)
}

// Remove deletes a challenge and discards its pending queue. Completed
// records and already-awarded points stand.
func (w *ChallengeWorkflow) Remove(ctx context.Context, name string) error {
	data, err := w.load(ctx)
	if err != nil {
		return err
	}
	if _, exists := data.Challenges[name]; !exists {
		return ErrChallengeNotFound
	}
	delete(data.Challenges, name)
	delete(data.Pending, name)
	return w.save(ctx, data)
}

// RequestJoin queues a participant for admin approval. Idempotent: a
// duplicate request, or a request from an already-accepted participant,
// returns false with no state change.
func (w *ChallengeWorkflow) RequestJoin(ctx context.Context, participant, challenge string) (bool, error) {
	data, err := w.load(ctx)
	if err != nil {
		return false, err
	}
	ch, exists := data.Challenges[challenge]
	if !exists {
		return false, ErrChallengeNotFound
	}
	if contains(ch.Participants, participant) || contains(data.Pending[challenge], participant) {
		return false, nil
	}
	data.Pending[challenge] = append(data.Pending[challenge], participant)
	if err := w.save(ctx, data); err != nil {
		return false, err
	}
	return true, nil
}

// Approve moves a pending participant to accepted and appends a completed
// record with the admin-chosen point value. The caller emits the matching
// point entry.
func (w *ChallengeWorkflow) Approve(ctx context.Context, participant, challenge string, points decimal.Decimal, day Day) (CompletedRecord, error) {
	data, err := w.load(ctx)
	if err != nil {
		return CompletedRecord{}, err
	}
	ch, exists := data.Challenges[challenge]
	if !exists {
		return CompletedRecord{}, ErrChallengeNotFound
	}
	queue, removed := remove(data.Pending[challenge], participant)
	if !removed {
		return CompletedRecord{}, ErrNotPending
	}
	data.Pending[challenge] = queue

	record := CompletedRecord{
		ID:          uuid.NewString(),
		Participant: participant,
		Points:      points,
		Date:        day.String(),
	}
	ch.Completed = append(ch.Completed, record)
	if !contains(ch.Participants, participant) {
		ch.Participants = append(ch.Participants, participant)
	}
	data.Challenges[challenge] = ch

	if err := w.save(ctx, data); err != nil {
		return CompletedRecord{}, err
	}
	return record, nil
}

// IsPending reports whether the participant sits in the challenge's pending
// queue. No state change; callers use it to vet an approval before emitting
// the point entry.
func (w *ChallengeWorkflow) IsPending(ctx context.Context, participant, challenge string) error {
	data, err := w.load(ctx)
	if err != nil {
		return err
	}
	if _, exists := data.Challenges[challenge]; !exists {
		return ErrChallengeNotFound
	}
	if !contains(data.Pending[challenge], participant) {
		return ErrNotPending
	}
	return nil
}

// Reject removes a pending participant with no side effect.
func (w *ChallengeWorkflow) Reject(ctx context.Context, participant, challenge string) error {
	data, err := w.load(ctx)
	if err != nil {
		return err
	}
	queue, removed := remove(data.Pending[challenge], participant)
	if !removed {
		return ErrNotPending
	}
	data.Pending[challenge] = queue
	return w.save(ctx, data)
}

// Pending returns the queued participants for a challenge.
func (w *ChallengeWorkflow) Pending(ctx context.Context, challenge string) ([]string, error) {
	data, err := w.load(ctx)
	if err != nil {
		return nil, err
	}
	return data.Pending[challenge], nil
}

// List returns the full challenges document.
func (w *ChallengeWorkflow) List(ctx context.Context) (ChallengeData, error) {
	return w.load(ctx)
}

func (w *ChallengeWorkflow) load(ctx context.Context) (ChallengeData, error) {
	data, err := w.store.LoadChallenges(ctx)
	if err != nil {
		return ChallengeData{}, fmt.Errorf("load challenges: %w", err)
	}
	if data.Challenges == nil {
		data.Challenges = make(map[string]Challenge)
	}
	if data.Pending == nil {
		data.Pending = make(map[string][]string)
	}
	return data, nil
}

func (w *ChallengeWorkflow) save(ctx context.Context, data ChallengeData) error {
	if err := w.store.SaveChallenges(ctx, data); err != nil {
		return fmt.Errorf("save challenges: %w", err)
	}
	return nil
}

func remove(list []string, s string) ([]string, bool) {
	for i, v := range list {
		if v == s {
			return append(list[:i:i], list[i+1:]...), true
		}
	}
	return list, false
}
