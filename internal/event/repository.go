package event

import (
	"context"
	"sort"
	"sync"
	"time"
)

// DefaultRadiusKm is the default proximity radius for event search.
// Events draw from a wider area than venues.
const DefaultRadiusKm = 50.0

// Time frame constants for event queries.
const (
	FrameLive     = "live"
	FrameToday    = "today"
	FrameWeek     = "week"
	FrameWeekend  = "weekend"
	FrameMonth    = "month"
	FrameUpcoming = "upcoming"
)

// Repository defines event data operations.
type Repository interface {
	// Insert stores a new event after validation.
	Insert(ctx context.Context, e *Event) error

	// GetByID retrieves an event. Returns ErrEventNotFound if absent.
	GetByID(ctx context.Context, id string) (*Event, error)

	// List returns all events ordered by start time ascending.
	List(ctx context.Context) ([]*Event, error)

	// SetActualAttendees stores the rolled-up GOING count.
	SetActualAttendees(ctx context.Context, id string, count int) error
}

// InMemoryRepository is a mutex-guarded in-memory Repository.
type InMemoryRepository struct {
	mu     sync.RWMutex
	events map[string]*Event
}

// NewInMemoryRepository creates an empty in-memory event repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{events: make(map[string]*Event)}
}

// Insert stores a new event after validation.
func (r *InMemoryRepository) Insert(ctx context.Context, e *Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *e
	now := time.Now()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	r.events[cp.ID] = &cp
	return nil
}

// GetByID retrieves an event by ID.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

// List returns all events ordered by start time ascending.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Event, 0, len(r.events))
	for _, e := range r.events {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartsAt.Before(out[j].StartsAt)
	})
	return out, nil
}

// SetActualAttendees stores the rolled-up GOING count.
func (r *InMemoryRepository) SetActualAttendees(ctx context.Context, id string, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[id]
	if !ok {
		return ErrEventNotFound
	}
	e.ActualAttendees = count
	e.UpdatedAt = time.Now()
	return nil
}

// FilterByFrame selects events in the given time frame relative to now.
// Unknown frames fall back to "upcoming".
func FilterByFrame(events []*Event, frame string, now time.Time) []*Event {
	var keep func(*Event) bool
	switch frame {
	case FrameLive:
		keep = func(e *Event) bool { return e.IsLive(now) }
	case FrameToday:
		y, m, d := now.Date()
		dayStart := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
		dayEnd := dayStart.AddDate(0, 0, 1)
		keep = func(e *Event) bool {
			return !e.StartsAt.Before(dayStart) && e.StartsAt.Before(dayEnd)
		}
	case FrameWeek:
		end := now.AddDate(0, 0, 7)
		keep = func(e *Event) bool {
			return !e.StartsAt.Before(now) && !e.StartsAt.After(end)
		}
	case FrameWeekend:
		// The upcoming Saturday and Sunday.
		daysUntilSaturday := (int(time.Saturday) - int(now.Weekday()) + 7) % 7
		y, m, d := now.AddDate(0, 0, daysUntilSaturday).Date()
		satStart := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
		sunEnd := satStart.AddDate(0, 0, 2)
		keep = func(e *Event) bool {
			return !e.StartsAt.Before(satStart) && e.StartsAt.Before(sunEnd)
		}
	case FrameMonth:
		end := now.AddDate(0, 0, 30)
		keep = func(e *Event) bool {
			return !e.StartsAt.Before(now) && !e.StartsAt.After(end)
		}
	default: // upcoming
		keep = func(e *Event) bool { return e.IsUpcoming(now) }
	}

	out := make([]*Event, 0, len(events))
	for _, e := range events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// FilterByCategory keeps events matching the category; empty matches all.
func FilterByCategory(events []*Event, category string) []*Event {
	if category == "" {
		return events
	}
	out := make([]*Event, 0, len(events))
	for _, e := range events {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}
