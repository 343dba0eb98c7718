package reputation

import (
	"context"
	"sync"
)

// Repository stores point totals. AddPoints must be atomic per user:
// two concurrent awards both land, and awards to different users never
// serialize against each other.
type Repository interface {
	// AddPoints increments the user's total, creating the account on
	// first award, and returns the new total.
	AddPoints(ctx context.Context, userID string, points int) (int, error)

	// GetPoints returns the user's total, or ErrAccountNotFound.
	GetPoints(ctx context.Context, userID string) (int, error)
}

// InMemoryRepository is a mutex-guarded in-memory Repository.
type InMemoryRepository struct {
	mu     sync.RWMutex
	points map[string]int
}

// NewInMemoryRepository creates an empty in-memory point store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{points: make(map[string]int)}
}

// AddPoints increments the user's total and returns it.
func (r *InMemoryRepository) AddPoints(ctx context.Context, userID string, points int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.points[userID] += points
	return r.points[userID], nil
}

// GetPoints returns the user's total.
func (r *InMemoryRepository) GetPoints(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total, ok := r.points[userID]
	if !ok {
		return 0, ErrAccountNotFound
	}
	return total, nil
}
