/*
badges.go - Badge ledger

PURPOSE:
  Flat award/revoke ledger keyed by participant. Streak badges, milestone
  tiers, and manual admin awards all land in the same ledger; labels are
  unique per participant. This is the output sink for the trackers and the
  read surface for every display.
*/
package engine

import (
	"context"
	"fmt"
)

// BadgeRegistry owns the badge ledger. Every mutation is a full
// load-modify-save pass over the persisted document.
type BadgeRegistry struct {
	store BadgeStore
}

func NewBadgeRegistry(store BadgeStore) *BadgeRegistry {
	return &BadgeRegistry{store: store}
}

// Award adds a badge label to a participant. Adding a label the participant
// already holds is a no-op. Returns true when the badge was newly added.
func (r *BadgeRegistry) Award(ctx context.Context, name, badge string) (bool, error) {
	badges, err := r.store.LoadBadges(ctx)
	if err != nil {
		return false, fmt.Errorf("load badges: %w", err)
	}
	for _, b := range badges[name] {
		if b == badge {
			return false, nil
		}
	}
	badges[name] = append(badges[name], badge)
	if err := r.store.SaveBadges(ctx, badges); err != nil {
		return false, fmt.Errorf("save badges: %w", err)
	}
	return true, nil
}

// Revoke removes a badge label. When the participant's list becomes empty
// their key is pruned from the ledger. Revoking an absent badge is a no-op.
func (r *BadgeRegistry) Revoke(ctx context.Context, name, badge string) error {
	badges, err := r.store.LoadBadges(ctx)
	if err != nil {
		return fmt.Errorf("load badges: %w", err)
	}
	list, ok := badges[name]
	if !ok {
		return nil
	}
	kept := list[:0]
	for _, b := range list {
		if b != badge {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(list) {
		return nil
	}
	if len(kept) == 0 {
		delete(badges, name)
	} else {
		badges[name] = kept
	}
	if err := r.store.SaveBadges(ctx, badges); err != nil {
		return fmt.Errorf("save badges: %w", err)
	}
	return nil
}

// Has reports whether a participant holds a badge.
func (r *BadgeRegistry) Has(ctx context.Context, name, badge string) (bool, error) {
	badges, err := r.store.LoadBadges(ctx)
	if err != nil {
		return false, fmt.Errorf("load badges: %w", err)
	}
	for _, b := range badges[name] {
		if b == badge {
			return true, nil
		}
	}
	return false, nil
}

// Badges returns a participant's badge list in award order.
func (r *BadgeRegistry) Badges(ctx context.Context, name string) ([]string, error) {
	badges, err := r.store.LoadBadges(ctx)
	if err != nil {
		return nil, fmt.Errorf("load badges: %w", err)
	}
	return badges[name], nil
}

// All returns the full ledger.
func (r *BadgeRegistry) All(ctx context.Context) (map[string][]string, error) {
	return r.store.LoadBadges(ctx)
}
