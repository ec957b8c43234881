/*
Package auth gates mutating admin operations behind a single shared secret.

The secret is never stored; the configuration carries a bcrypt hash and
every check is a bcrypt comparison. Login attempts are throttled: a second
attempt within the wait window is rejected before the hash is even compared,
which is the only brute-force mitigation this system carries (hardening
beyond the shared-secret check is a non-goal).
*/
package auth

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultWait is the minimum interval between login attempts.
const DefaultWait = 2 * time.Second

var (
	// ErrBadCredential is returned when the secret does not match the hash.
	ErrBadCredential = errors.New("incorrect admin secret")

	// ErrThrottled is returned when a login attempt arrives inside the wait
	// window of the previous one.
	ErrThrottled = errors.New("please wait before trying again")
)

// Gate verifies the shared admin secret.
type Gate struct {
	mu          sync.Mutex
	hash        []byte
	wait        time.Duration
	lastAttempt time.Time
	now         func() time.Time
}

// New builds a gate around a bcrypt hash of the admin secret.
func New(hash string) *Gate {
	return &Gate{hash: []byte(hash), wait: DefaultWait, now: time.Now}
}

// NewWithClock is New with an injected clock, for tests.
func NewWithClock(hash string, now func() time.Time) *Gate {
	g := New(hash)
	g.now = now
	return g
}

// Login verifies a login attempt, applying the retry throttle. Each
// non-throttled attempt, successful or not, resets the window.
func (g *Gate) Login(secret string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !g.lastAttempt.IsZero() && now.Sub(g.lastAttempt) < g.wait {
		return ErrThrottled
	}
	g.lastAttempt = now

	return g.compare(secret)
}

// Check verifies the secret without the throttle. Used by the per-request
// admin middleware, where every mutation carries the credential.
func (g *Gate) Check(secret string) error {
	return g.compare(secret)
}

func (g *Gate) compare(secret string) error {
	if secret == "" {
		return ErrBadCredential
	}
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(secret)); err != nil {
		return ErrBadCredential
	}
	return nil
}

// HashSecret produces a bcrypt hash suitable for the configuration file.
func HashSecret(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
