// Package presence tracks which user is checked in where. It is the
// authoritative state machine for the single-active-check-in invariant
// and derives venue occupancy from check-in transitions.
package presence

import (
	"errors"
	"time"
)

// Presence errors.
var (
	// ErrNoActiveCheckIn is returned when a check-out targets a
	// (user, venue) pair with no active check-in.
	ErrNoActiveCheckIn = errors.New("no active check-in for this user and venue")

	// ErrCheckInInactive is returned when a transition races with
	// another request that already deactivated the check-in. Safe to
	// retry after re-reading current state.
	ErrCheckInInactive = errors.New("check-in already inactive")
)

// CheckIn records a user's declared presence at a venue.
// At most one CheckIn per user has Active == true at any time.
type CheckIn struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	VenueID   string    `json:"venue_id"`
	CreatedAt time.Time `json:"created_at"`
	Active    bool      `json:"active"`
}

// Transition describes the side effects of a successful state change.
// The ledger hands this back instead of calling the feed or reputation
// components itself, so each piece stays testable in isolation.
type Transition struct {
	// CheckIn is the check-in the transition produced or affected.
	CheckIn *CheckIn

	// VenueID is the venue whose occupancy changed by VenueDelta.
	VenueID string

	// VenueDelta is the occupancy change applied at VenueID
	// (+1 check-in, -1 check-out, 0 for an idempotent re-check-in).
	VenueDelta int

	// DisplacedVenueID is the venue implicitly checked out of when a
	// user moved directly between venues. Empty if no move happened.
	DisplacedVenueID string

	// Idempotent is true when a check-in targeted the venue the user
	// was already checked in at; no counters moved.
	Idempotent bool
}
