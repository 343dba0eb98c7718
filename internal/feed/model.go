// Package feed is the append-only activity stream. Entries are
// immutable once appended and always read newest first, scoped to a
// city so the stream stays local.
package feed

import (
	"errors"
	"time"
)

// Feed errors.
var (
	ErrInvalidActivityType = errors.New("invalid activity type")
	ErrEmptyCity           = errors.New("activity entry requires a city")
)

// Activity types.
const (
	TypeCheckIn = "CHECKIN"
	TypeVideo   = "VIDEO"
	TypeEvent   = "EVENT"
	TypeRSVP    = "RSVP"
	TypeReview  = "REVIEW"
)

var validTypes = map[string]bool{
	TypeCheckIn: true,
	TypeVideo:   true,
	TypeEvent:   true,
	TypeRSVP:    true,
	TypeReview:  true,
}

// ValidActivityType reports whether t is a known activity type.
func ValidActivityType(t string) bool {
	return validTypes[t]
}

// DefaultCity is the fallback scope for viewers with no active
// check-in.
const DefaultCity = "Kampala"

// DefaultLimit caps a feed page when the caller does not say.
const DefaultLimit = 50

// ActivityEntry is one immutable item in the stream. City is
// denormalized at append time so queries never join back to venues.
type ActivityEntry struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	ActorID   string    `json:"actor_id,omitempty"`
	VenueID   string    `json:"venue_id,omitempty"`
	EventID   string    `json:"event_id,omitempty"`
	City      string    `json:"city"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
