package ledger

import (
	"context"

	"github.com/jackc/pgx/v5"

	util "github.com/spec-kit/leave-service/pkg/util"
)

// BalanceStore gives the ledger locked access to a user's balance inside a
// caller-supplied transaction.
type BalanceStore interface {
	BalanceForUpdate(ctx context.Context, tx pgx.Tx, userID string) (int, error)
	SetBalance(ctx context.Context, tx pgx.Tx, userID string, balance int) error
}

// Ledger is the sole mutator of User.LeaveBalance. The balance never goes
// below zero: Debit re-reads the balance under lock rather than trusting an
// earlier sufficiency check, since it may have changed since submission.
type Ledger struct {
	store BalanceStore
}

// New constructs a Ledger over the given store.
func New(store BalanceStore) *Ledger {
	return &Ledger{store: store}
}

// CheckSufficient reports whether balance covers the requested days.
func CheckSufficient(balance, requestedDays int) bool {
	return balance >= requestedDays
}

// Debit decrements the user's balance by days within tx and returns the new
// balance. Fails with INSUFFICIENT_BALANCE (carrying the current balance)
// when the precondition does not hold; the caller must then abort the whole
// transaction so neither the debit nor any dependent status change applies.
func (l *Ledger) Debit(ctx context.Context, tx pgx.Tx, userID string, days int) (int, error) {
	if days < 0 {
		return 0, util.NewValidationError("debit days must be non-negative", nil)
	}

	balance, err := l.store.BalanceForUpdate(ctx, tx, userID)
	if err != nil {
		return 0, err
	}
	if !CheckSufficient(balance, days) {
		return balance, util.NewInsufficientBalance(balance, days)
	}

	updated := balance - days
	if err := l.store.SetBalance(ctx, tx, userID, updated); err != nil {
		return 0, err
	}
	return updated, nil
}
