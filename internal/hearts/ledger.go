// Package hearts manages the per-user question budget: atomic consumption on
// the chat path and periodic batch recharge up to a cap. All balance writes
// go through conditional updates so concurrent callers cannot lose updates.
package hearts

import (
	"context"
	"errors"
)

var (
	// ErrNoHearts means the balance was already zero when consumption was
	// attempted.
	ErrNoHearts = errors.New("no remaining hearts")

	// ErrUserNotFound means the user id does not exist in the store.
	ErrUserNotFound = errors.New("user not found")
)

// Quota is a point-in-time snapshot of one user's balance, as enumerated by
// the recharge scan.
type Quota struct {
	UserID    string
	Hearts    int
	MaxHearts int
}

// Ledger is the quota store contract. Implementations must make TryConsume
// and Recharge conditional single operations: check-and-mutate happens inside
// the store, never as separate read and write steps.
type Ledger interface {
	// TryConsume decrements the balance by exactly one if it is positive and
	// returns the new balance. Returns ErrNoHearts when the balance is zero
	// and ErrUserNotFound for unknown users.
	TryConsume(ctx context.Context, userID string) (int, error)

	// Recharge raises the balance by amount, clamped to cap, and returns the
	// resulting balance. A user already at or above cap gets no write.
	Recharge(ctx context.Context, userID string, amount, cap int) (int, error)

	// Balance returns the current balance.
	Balance(ctx context.Context, userID string) (int, error)

	// BelowCap enumerates users whose balance is below the given cap.
	BelowCap(ctx context.Context, cap int) ([]Quota, error)
}
