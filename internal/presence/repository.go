package presence

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository stores check-in records. Implementations must make
// Deactivate and Replace conditional on the record still being active
// so racing transitions surface ErrCheckInInactive instead of silently
// double-applying.
type Repository interface {
	// GetActiveByUser returns the user's single active check-in, or
	// (nil, nil) when the user is not checked in anywhere.
	GetActiveByUser(ctx context.Context, userID string) (*CheckIn, error)

	// GetActiveByUserAndVenue returns the active check-in for the
	// pair, or ErrNoActiveCheckIn.
	GetActiveByUserAndVenue(ctx context.Context, userID, venueID string) (*CheckIn, error)

	// Create inserts a new active check-in.
	Create(ctx context.Context, ci *CheckIn) error

	// Deactivate flips a check-in to inactive. Returns
	// ErrCheckInInactive if it was already inactive (or missing).
	Deactivate(ctx context.Context, id string) error

	// Replace atomically deactivates oldID (when non-empty) and
	// inserts the new active check-in, so no interleaved reader
	// observes a user with zero active check-ins mid-move.
	Replace(ctx context.Context, oldID string, ci *CheckIn) error

	// ListActiveByVenue returns active check-ins at a venue, most
	// recent first.
	ListActiveByVenue(ctx context.Context, venueID string) ([]*CheckIn, error)

	// CountSince counts check-ins (active or not) created at a venue
	// after the given instant. Feeds the trending ranking.
	CountSince(ctx context.Context, venueID string, since time.Time) (int, error)

	// ListActiveOlderThan returns active check-ins created before the
	// cutoff. Feeds the auto-checkout sweep.
	ListActiveOlderThan(ctx context.Context, cutoff time.Time) ([]*CheckIn, error)
}

// InMemoryRepository is a mutex-guarded in-memory Repository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	checkIns map[string]*CheckIn // id -> check-in
	activeByUser map[string]string // userID -> active check-in id
}

// NewInMemoryRepository creates an empty in-memory check-in repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		checkIns:     make(map[string]*CheckIn),
		activeByUser: make(map[string]string),
	}
}

// GetActiveByUser returns the user's active check-in, or (nil, nil).
func (r *InMemoryRepository) GetActiveByUser(ctx context.Context, userID string) (*CheckIn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.activeByUser[userID]
	if !ok {
		return nil, nil
	}
	cp := *r.checkIns[id]
	return &cp, nil
}

// GetActiveByUserAndVenue returns the active check-in for the pair.
func (r *InMemoryRepository) GetActiveByUserAndVenue(ctx context.Context, userID, venueID string) (*CheckIn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.activeByUser[userID]
	if !ok {
		return nil, ErrNoActiveCheckIn
	}
	ci := r.checkIns[id]
	if ci.VenueID != venueID {
		return nil, ErrNoActiveCheckIn
	}
	cp := *ci
	return &cp, nil
}

// Create inserts a new active check-in.
func (r *InMemoryRepository) Create(ctx context.Context, ci *CheckIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertLocked(ci)
	return nil
}

// Deactivate flips a check-in to inactive.
func (r *InMemoryRepository) Deactivate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deactivateLocked(id)
}

// Replace atomically deactivates oldID and inserts the new check-in.
func (r *InMemoryRepository) Replace(ctx context.Context, oldID string, ci *CheckIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if oldID != "" {
		if err := r.deactivateLocked(oldID); err != nil {
			return err
		}
	}
	r.insertLocked(ci)
	return nil
}

func (r *InMemoryRepository) insertLocked(ci *CheckIn) {
	cp := *ci
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	cp.Active = true
	r.checkIns[cp.ID] = &cp
	r.activeByUser[cp.UserID] = cp.ID
}

func (r *InMemoryRepository) deactivateLocked(id string) error {
	ci, ok := r.checkIns[id]
	if !ok || !ci.Active {
		return ErrCheckInInactive
	}
	ci.Active = false
	if r.activeByUser[ci.UserID] == id {
		delete(r.activeByUser, ci.UserID)
	}
	return nil
}

// ListActiveByVenue returns active check-ins at a venue, newest first.
func (r *InMemoryRepository) ListActiveByVenue(ctx context.Context, venueID string) ([]*CheckIn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*CheckIn
	for _, ci := range r.checkIns {
		if ci.Active && ci.VenueID == venueID {
			cp := *ci
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// CountSince counts check-ins created at a venue after the instant.
func (r *InMemoryRepository) CountSince(ctx context.Context, venueID string, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, ci := range r.checkIns {
		if ci.VenueID == venueID && ci.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

// ListActiveOlderThan returns active check-ins created before cutoff.
func (r *InMemoryRepository) ListActiveOlderThan(ctx context.Context, cutoff time.Time) ([]*CheckIn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*CheckIn
	for _, ci := range r.checkIns {
		if ci.Active && ci.CreatedAt.Before(cutoff) {
			cp := *ci
			out = append(out, &cp)
		}
	}
	return out, nil
}
