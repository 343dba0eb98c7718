package feed

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CityResolver maps a viewer to the city of their active check-in.
// An empty city means the viewer is not checked in anywhere.
type CityResolver interface {
	ActiveCity(ctx context.Context, userID string) (string, error)
}

// Engine appends and serves activity. Reads are local-first: a viewer
// with an active check-in sees their current city's stream, everyone
// else falls back to the default city.
type Engine struct {
	repo        Repository
	cities      CityResolver
	defaultCity string
}

// NewEngine creates a feed engine. defaultCity falls back to
// DefaultCity when empty.
func NewEngine(repo Repository, cities CityResolver, defaultCity string) *Engine {
	if defaultCity == "" {
		defaultCity = DefaultCity
	}
	return &Engine{repo: repo, cities: cities, defaultCity: defaultCity}
}

// Append validates and stores an entry, assigning its identity and
// creation instant. The stored entry is immutable from here on.
func (e *Engine) Append(ctx context.Context, entry *ActivityEntry) (*ActivityEntry, error) {
	if !ValidActivityType(entry.Type) {
		return nil, ErrInvalidActivityType
	}
	if entry.City == "" {
		return nil, ErrEmptyCity
	}

	cp := *entry
	cp.ID = uuid.New().String()
	cp.CreatedAt = time.Now()
	if err := e.repo.Insert(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

// Query returns the viewer's feed page: at most limit entries (default
// 50), newest first, optionally narrowed to one activity type. The
// scope is the city of the viewer's active check-in, or the default
// city when there is none.
func (e *Engine) Query(ctx context.Context, viewerID, typeFilter string, limit int) ([]*ActivityEntry, error) {
	if typeFilter != "" && !ValidActivityType(typeFilter) {
		return nil, ErrInvalidActivityType
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	city := e.defaultCity
	if viewerID != "" && e.cities != nil {
		resolved, err := e.cities.ActiveCity(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		if resolved != "" {
			city = resolved
		}
	}

	return e.repo.ListByCity(ctx, city, typeFilter, limit)
}

// Recent returns the latest entries regardless of city.
func (e *Engine) Recent(ctx context.Context, limit int) ([]*ActivityEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return e.repo.ListRecent(ctx, limit)
}
