/*
errors.go - Centralized error types for the engine

PURPOSE:
  All engine error types in one place for consistency and discoverability.
  The API layer maps these to HTTP statuses with errors.Is/errors.As.

ERROR CATEGORIES:
  1. Validation errors - Entry bounds violations
  2. Challenge errors - Workflow state violations
  3. Store errors - Persistence failures (wrapped, not defined here)
*/
package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidEntry is the base error for entry validation failures.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrChallengeExists is returned when adding a challenge whose name is taken.
	ErrChallengeExists = errors.New("challenge already exists")

	// ErrChallengeNotFound is returned for operations on an unknown challenge.
	ErrChallengeNotFound = errors.New("challenge not found")

	// ErrNotPending is returned when approving or rejecting a participant who
	// has no pending request on the challenge.
	ErrNotPending = errors.New("participant has no pending request")

	// ErrUnknownWindow is returned for an unrecognized window selector.
	ErrUnknownWindow = errors.New("unknown window selector")

	// ErrUnknownPunishment is returned for an unconfigured punishment name.
	ErrUnknownPunishment = errors.New("unknown punishment")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// CategoryBoundsError reports a category score outside [0, max], or a
// category the configuration does not know about.
type CategoryBoundsError struct {
	Category string
	Value    decimal.Decimal
	Max      int
	Unknown  bool
}

func (e *CategoryBoundsError) Error() string {
	if e.Unknown {
		return fmt.Sprintf("unknown scoring category %q", e.Category)
	}
	return fmt.Sprintf("category %q: %v outside [0, %d]", e.Category, e.Value, e.Max)
}

func (e *CategoryBoundsError) Unwrap() error { return ErrInvalidEntry }

// BaseBoundsError reports a base point sum outside [0, max].
type BaseBoundsError struct {
	Value decimal.Decimal
	Max   int
}

func (e *BaseBoundsError) Error() string {
	return fmt.Sprintf("base points %v outside [0, %d]", e.Value, e.Max)
}

func (e *BaseBoundsError) Unwrap() error { return ErrInvalidEntry }

// BonusBoundsError reports a bonus outside [-max, max].
type BonusBoundsError struct {
	Value decimal.Decimal
	Max   int
}

func (e *BonusBoundsError) Error() string {
	return fmt.Sprintf("bonus points %v outside [-%d, %d]", e.Value, e.Max, e.Max)
}

func (e *BonusBoundsError) Unwrap() error { return ErrInvalidEntry }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// rather than a persistence failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidEntry) ||
		errors.Is(err, ErrChallengeExists) ||
		errors.Is(err, ErrChallengeNotFound) ||
		errors.Is(err, ErrNotPending) ||
		errors.Is(err, ErrUnknownWindow) ||
		errors.Is(err, ErrUnknownPunishment)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrChallengeNotFound) || errors.Is(err, ErrNotPending)
}
