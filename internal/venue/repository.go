package venue

import (
	"context"
	"sync"
	"time"
)

// Repository defines venue data operations.
//
// AdjustCrowd must be implemented as an atomic read-modify-write (a
// single UPDATE for SQL implementations, a mutex-guarded section for
// in-memory ones) so concurrent check-ins at a popular venue never
// lose increments.
type Repository interface {
	// Insert stores a new venue after validation.
	Insert(ctx context.Context, v *Venue) error

	// Update replaces an existing venue's descriptive fields.
	Update(ctx context.Context, v *Venue) error

	// GetByID retrieves a venue. Returns ErrVenueNotFound if absent.
	GetByID(ctx context.Context, id string) (*Venue, error)

	// List returns all venues.
	List(ctx context.Context) ([]*Venue, error)

	// AdjustCrowd applies a +/- delta to the crowd counter, clamped to
	// [0, 100], and bumps the total check-in counter on positive
	// deltas. Returns the new crowd level.
	AdjustCrowd(ctx context.Context, id string, delta int) (int, error)

	// SetCrowd sets the crowd level directly (crowd report path).
	// The level is validated before any mutation.
	SetCrowd(ctx context.Context, id string, level int) error

	// SetAverageRating stores a recomputed running average rating.
	SetAverageRating(ctx context.Context, id string, avg float64) error
}

// InMemoryRepository is a mutex-guarded in-memory Repository used for
// tests and development.
type InMemoryRepository struct {
	mu     sync.RWMutex
	venues map[string]*Venue
}

// NewInMemoryRepository creates an empty in-memory venue repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{venues: make(map[string]*Venue)}
}

// Insert stores a new venue after validation.
func (r *InMemoryRepository) Insert(ctx context.Context, v *Venue) error {
	if err := v.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *v
	cp.LastUpdated = time.Now()
	r.venues[cp.ID] = &cp
	return nil
}

// Update replaces an existing venue's descriptive fields. The crowd and
// check-in counters of the stored venue are preserved.
func (r *InMemoryRepository) Update(ctx context.Context, v *Venue) error {
	if err := v.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.venues[v.ID]
	if !ok {
		return ErrVenueNotFound
	}

	cp := *v
	cp.CurrentCrowd = existing.CurrentCrowd
	cp.TotalCheckIns = existing.TotalCheckIns
	cp.LastUpdated = time.Now()
	r.venues[cp.ID] = &cp
	return nil
}

// GetByID retrieves a venue by ID.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.venues[id]
	if !ok {
		return nil, ErrVenueNotFound
	}
	cp := *v
	return &cp, nil
}

// List returns copies of all venues.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Venue, 0, len(r.venues))
	for _, v := range r.venues {
		cp := *v
		out = append(out, &cp)
	}
	return out, nil
}

// AdjustCrowd applies a clamped delta to the crowd counter.
func (r *InMemoryRepository) AdjustCrowd(ctx context.Context, id string, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.venues[id]
	if !ok {
		return 0, ErrVenueNotFound
	}

	v.CurrentCrowd = clampCrowd(v.CurrentCrowd + delta)
	if delta > 0 {
		v.TotalCheckIns++
	}
	v.LastUpdated = time.Now()
	return v.CurrentCrowd, nil
}

// SetCrowd sets the crowd level directly, validating first.
func (r *InMemoryRepository) SetCrowd(ctx context.Context, id string, level int) error {
	if !ValidCrowd(level) {
		return ErrInvalidCrowd
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.venues[id]
	if !ok {
		return ErrVenueNotFound
	}
	v.CurrentCrowd = level
	v.LastUpdated = time.Now()
	return nil
}

// SetAverageRating stores a recomputed running average.
func (r *InMemoryRepository) SetAverageRating(ctx context.Context, id string, avg float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.venues[id]
	if !ok {
		return ErrVenueNotFound
	}
	v.AverageRating = avg
	v.LastUpdated = time.Now()
	return nil
}
