package presence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CrowdAdjuster is the slice of the venue repository the ledger needs:
// the atomic, clamped occupancy adjustment.
type CrowdAdjuster interface {
	AdjustCrowd(ctx context.Context, venueID string, delta int) (int, error)
}

// Ledger serializes check-in transitions per user so two concurrent
// requests can never both observe "not checked in" and proceed.
// Different users never contend with each other.
type Ledger struct {
	repo   Repository
	venues CrowdAdjuster
	logger *slog.Logger

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// NewLedger creates a presence ledger over the given stores.
func NewLedger(repo Repository, venues CrowdAdjuster) *Ledger {
	return &Ledger{
		repo:      repo,
		venues:    venues,
		logger:    slog.Default(),
		userLocks: make(map[string]*sync.Mutex),
	}
}

// lockUser returns the mutex serializing transitions for one user.
func (l *Ledger) lockUser(userID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.userLocks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.userLocks[userID] = m
	}
	return m
}

// CheckIn moves the user's presence to the given venue.
//
// If the user is already checked in elsewhere, the old check-in is
// deactivated and the new one created as a single atomic move; the old
// venue's occupancy is decremented and reported via
// Transition.DisplacedVenueID. Checking in at the current venue is
// idempotent: no new record, no occupancy change.
func (l *Ledger) CheckIn(ctx context.Context, userID, venueID string) (*Transition, error) {
	lock := l.lockUser(userID)
	lock.Lock()
	defer lock.Unlock()

	active, err := l.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if active != nil && active.VenueID == venueID {
		return &Transition{CheckIn: active, VenueID: venueID, Idempotent: true}, nil
	}

	// Increment the target venue first: validates the venue exists
	// before any ledger state moves, and the clamp keeps the counter
	// in range.
	if _, err := l.venues.AdjustCrowd(ctx, venueID, +1); err != nil {
		return nil, err
	}

	ci := &CheckIn{
		ID:        uuid.New().String(),
		UserID:    userID,
		VenueID:   venueID,
		CreatedAt: time.Now(),
		Active:    true,
	}

	transition := &Transition{CheckIn: ci, VenueID: venueID, VenueDelta: +1}

	if active != nil {
		if err := l.repo.Replace(ctx, active.ID, ci); err != nil {
			// Undo the increment we applied optimistically.
			_, _ = l.venues.AdjustCrowd(ctx, venueID, -1)
			return nil, err
		}
		// The move is already durable. A failed decrement on the old
		// venue must not fail the transition or skip its side effects;
		// the clamp absorbs the drift.
		if _, err := l.venues.AdjustCrowd(ctx, active.VenueID, -1); err != nil {
			l.logger.Error("failed to decrement displaced venue crowd",
				"error", err, "venue_id", active.VenueID, "user_id", userID)
		}
		transition.DisplacedVenueID = active.VenueID
		return transition, nil
	}

	if err := l.repo.Create(ctx, ci); err != nil {
		_, _ = l.venues.AdjustCrowd(ctx, venueID, -1)
		return nil, err
	}
	return transition, nil
}

// CheckOut ends the user's active check-in at the given venue.
// Returns ErrNoActiveCheckIn when the pair has no active check-in, and
// ErrCheckInInactive when another request won the race to check out.
func (l *Ledger) CheckOut(ctx context.Context, userID, venueID string) (*Transition, error) {
	lock := l.lockUser(userID)
	lock.Lock()
	defer lock.Unlock()

	ci, err := l.repo.GetActiveByUserAndVenue(ctx, userID, venueID)
	if err != nil {
		return nil, err
	}

	if err := l.repo.Deactivate(ctx, ci.ID); err != nil {
		return nil, err
	}
	// Same as the move path: the checkout is durable, so a failed
	// decrement only logs.
	if _, err := l.venues.AdjustCrowd(ctx, venueID, -1); err != nil {
		l.logger.Error("failed to decrement venue crowd on checkout",
			"error", err, "venue_id", venueID, "user_id", userID)
	}

	ci.Active = false
	return &Transition{CheckIn: ci, VenueID: venueID, VenueDelta: -1}, nil
}

// ActiveCheckIn returns the user's current check-in, or (nil, nil).
func (l *Ledger) ActiveCheckIn(ctx context.Context, userID string) (*CheckIn, error) {
	return l.repo.GetActiveByUser(ctx, userID)
}

// WhoIsAt returns the active check-ins at a venue, newest first.
func (l *Ledger) WhoIsAt(ctx context.Context, venueID string) ([]*CheckIn, error) {
	return l.repo.ListActiveByVenue(ctx, venueID)
}

// RecentCheckIns counts check-ins at a venue within the window ending
// now. Used by the trending ranking.
func (l *Ledger) RecentCheckIns(ctx context.Context, venueID string, window time.Duration) (int, error) {
	return l.repo.CountSince(ctx, venueID, time.Now().Add(-window))
}
