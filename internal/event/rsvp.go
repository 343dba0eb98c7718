package event

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// RSVP status constants.
const (
	RSVPGoing      = "GOING"
	RSVPInterested = "INTERESTED"
	RSVPNotGoing   = "NOT_GOING"
)

// validRSVPStatuses is the set of accepted RSVP statuses.
var validRSVPStatuses = map[string]bool{
	RSVPGoing:      true,
	RSVPInterested: true,
	RSVPNotGoing:   true,
}

// RSVP errors.
var (
	ErrRSVPNotFound      = errors.New("rsvp not found")
	ErrInvalidRSVPStatus = errors.New("rsvp status must be GOING, INTERESTED, or NOT_GOING")
)

// ValidRSVPStatus reports whether the status string is accepted.
func ValidRSVPStatus(status string) bool {
	return validRSVPStatuses[status]
}

// RSVP is one user's attendance declaration for an event. The
// (user, event) pair is unique; resubmitting updates the status.
type RSVP struct {
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RSVPRepository stores RSVPs keyed by (user, event).
type RSVPRepository interface {
	// Upsert creates or updates the (user, event) RSVP.
	Upsert(ctx context.Context, rsvp *RSVP) error

	// GetByEventAndUser retrieves an RSVP. Returns ErrRSVPNotFound if absent.
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*RSVP, error)

	// ListByUser returns all RSVPs for a user, most recent first.
	ListByUser(ctx context.Context, userID string) ([]*RSVP, error)

	// CountGoing returns the number of GOING RSVPs for an event.
	CountGoing(ctx context.Context, eventID string) (int, error)
}

// InMemoryRSVPRepository is a mutex-guarded in-memory RSVPRepository.
type InMemoryRSVPRepository struct {
	mu    sync.RWMutex
	rsvps map[string]map[string]*RSVP // eventID -> userID -> rsvp
}

// NewInMemoryRSVPRepository creates an empty RSVP repository.
func NewInMemoryRSVPRepository() *InMemoryRSVPRepository {
	return &InMemoryRSVPRepository{rsvps: make(map[string]map[string]*RSVP)}
}

// Upsert creates or updates the (user, event) RSVP.
func (r *InMemoryRSVPRepository) Upsert(ctx context.Context, rsvp *RSVP) error {
	if !ValidRSVPStatus(rsvp.Status) {
		return ErrInvalidRSVPStatus
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	byUser := r.rsvps[rsvp.EventID]
	if byUser == nil {
		byUser = make(map[string]*RSVP)
		r.rsvps[rsvp.EventID] = byUser
	}

	now := time.Now()
	if existing, ok := byUser[rsvp.UserID]; ok {
		existing.Status = rsvp.Status
		existing.UpdatedAt = now
		return nil
	}

	cp := *rsvp
	cp.CreatedAt = now
	cp.UpdatedAt = now
	byUser[cp.UserID] = &cp
	return nil
}

// GetByEventAndUser retrieves an RSVP by its (event, user) key.
func (r *InMemoryRSVPRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*RSVP, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if byUser, ok := r.rsvps[eventID]; ok {
		if rsvp, ok := byUser[userID]; ok {
			cp := *rsvp
			return &cp, nil
		}
	}
	return nil, ErrRSVPNotFound
}

// ListByUser returns all RSVPs for a user, most recent first.
func (r *InMemoryRSVPRepository) ListByUser(ctx context.Context, userID string) ([]*RSVP, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*RSVP
	for _, byUser := range r.rsvps {
		if rsvp, ok := byUser[userID]; ok {
			cp := *rsvp
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// CountGoing returns the number of GOING RSVPs for an event.
func (r *InMemoryRSVPRepository) CountGoing(ctx context.Context, eventID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, rsvp := range r.rsvps[eventID] {
		if rsvp.Status == RSVPGoing {
			count++
		}
	}
	return count, nil
}
