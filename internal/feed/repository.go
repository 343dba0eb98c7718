package feed

import (
	"context"
	"sort"
	"sync"
)

// Repository stores activity entries. Append-only: there is no update
// or delete.
type Repository interface {
	// Insert stores an entry as-is.
	Insert(ctx context.Context, entry *ActivityEntry) error

	// ListByCity returns up to limit entries for a city, newest
	// first. typeFilter narrows to one activity type when non-empty.
	ListByCity(ctx context.Context, city, typeFilter string, limit int) ([]*ActivityEntry, error)

	// ListRecent returns up to limit entries across all cities,
	// newest first. Feeds the map snapshot's activity strip.
	ListRecent(ctx context.Context, limit int) ([]*ActivityEntry, error)
}

// InMemoryRepository is a mutex-guarded in-memory Repository.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries []*ActivityEntry
}

// NewInMemoryRepository creates an empty in-memory activity store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Insert stores an entry.
func (r *InMemoryRepository) Insert(ctx context.Context, entry *ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

// ListByCity returns up to limit entries for a city, newest first.
func (r *InMemoryRepository) ListByCity(ctx context.Context, city, typeFilter string, limit int) ([]*ActivityEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collectLocked(limit, func(e *ActivityEntry) bool {
		if e.City != city {
			return false
		}
		return typeFilter == "" || e.Type == typeFilter
	}), nil
}

// ListRecent returns up to limit entries across all cities.
func (r *InMemoryRepository) ListRecent(ctx context.Context, limit int) ([]*ActivityEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collectLocked(limit, func(*ActivityEntry) bool { return true }), nil
}

func (r *InMemoryRepository) collectLocked(limit int, match func(*ActivityEntry) bool) []*ActivityEntry {
	var out []*ActivityEntry
	for _, e := range r.entries {
		if match(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
