package reputation

import (
	"context"
	"errors"
)

// Ledger awards points and reports accounts with their derived tier.
type Ledger struct {
	repo Repository
}

// NewLedger creates a reputation ledger over the given store.
func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// Award grants points to a user and returns the updated account.
// The increment is atomic at the store, so concurrent awards to the
// same user all land.
func (l *Ledger) Award(ctx context.Context, userID string, points int) (*Account, error) {
	if points <= 0 {
		return nil, ErrNegativePoints
	}
	total, err := l.repo.AddPoints(ctx, userID, points)
	if err != nil {
		return nil, err
	}
	return &Account{UserID: userID, Points: total, Tier: TierFor(total)}, nil
}

// AccountFor returns a user's account. A user who was never awarded
// anything gets a zero-point newcomer account rather than an error, so
// profile reads don't depend on award history.
func (l *Ledger) AccountFor(ctx context.Context, userID string) (*Account, error) {
	total, err := l.repo.GetPoints(ctx, userID)
	if errors.Is(err, ErrAccountNotFound) {
		total = 0
	} else if err != nil {
		return nil, err
	}
	return &Account{UserID: userID, Points: total, Tier: TierFor(total)}, nil
}
