// Package event provides models and repositories for events hosted at
// venues, including RSVP tracking.
package event

import (
	"errors"
	"time"
)

// Category constants for event classification.
const (
	CategoryMusic    = "MUSIC"
	CategoryFestival = "FESTIVAL"
	CategoryClub     = "CLUB"
	CategoryCultural = "CULTURAL"
	CategorySports   = "SPORTS"
	CategoryOther    = "OTHER"
)

// validCategories is the set of accepted categories.
var validCategories = map[string]bool{
	CategoryMusic:    true,
	CategoryFestival: true,
	CategoryClub:     true,
	CategoryCultural: true,
	CategorySports:   true,
	CategoryOther:    true,
}

// Validation errors.
var (
	ErrEventNotFound    = errors.New("event not found")
	ErrInvalidCategory  = errors.New("invalid event category")
	ErrInvalidTimeRange = errors.New("event start must be before end")
)

// Event represents a party or event happening at a venue.
//
// Liveness is never stored: IsLive and IsUpcoming are pure functions of
// the caller's clock so reads and writes cannot disagree under skew.
type Event struct {
	ID          string `json:"id"`
	VenueID     string `json:"venue_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`

	Category  string `json:"category"`
	PriceTier string `json:"price_tier,omitempty"`

	ExpectedAttendees int `json:"expected_attendees"`
	ActualAttendees   int `json:"actual_attendees"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the category and time range.
func (e *Event) Validate() error {
	if e.Category != "" && !validCategories[e.Category] {
		return ErrInvalidCategory
	}
	if !e.StartsAt.Before(e.EndsAt) {
		return ErrInvalidTimeRange
	}
	return nil
}

// IsLive reports whether the event is in progress at now:
// starts_at <= now < ends_at.
func (e *Event) IsLive(now time.Time) bool {
	return !now.Before(e.StartsAt) && now.Before(e.EndsAt)
}

// IsUpcoming reports whether the event has not started yet. IsLive and
// IsUpcoming are mutually exclusive for any instant.
func (e *Event) IsUpcoming(now time.Time) bool {
	return e.StartsAt.After(now)
}
