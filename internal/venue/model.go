// Package venue provides models and repositories for party venues,
// including live crowd tracking and discovery filters.
package venue

import (
	"errors"
	"fmt"
	"time"

	"github.com/onnwee/nightpulse/internal/geo"
)

// Crowd level bounds. The crowd counter is a percentage and is clamped
// into this range on every adjustment.
const (
	MinCrowd = 0
	MaxCrowd = 100
)

// Genre constants for the smart genre filter.
const (
	GenreHipHop     = "HIPHOP"
	GenreAfrobeat   = "AFROBEAT"
	GenreElectronic = "ELECTRONIC"
	GenreRock       = "ROCK"
	GenreOther      = "OTHER"
)

// Vibe level constants describing venue energy.
const (
	VibeChill  = "CHILL"
	VibeMedium = "MEDIUM"
	VibeHigh   = "HIGH"
)

// Price tier constants ($ = cheap, $$$ = expensive).
const (
	PriceCheap     = "$"
	PriceModerate  = "$$"
	PriceExpensive = "$$$"
)

// validGenres is the set of accepted genre filter values.
var validGenres = map[string]bool{
	GenreHipHop:     true,
	GenreAfrobeat:   true,
	GenreElectronic: true,
	GenreRock:       true,
	GenreOther:      true,
}

// validVibes is the set of accepted vibe level values.
var validVibes = map[string]bool{
	VibeChill:  true,
	VibeMedium: true,
	VibeHigh:   true,
}

// validPriceTiers is the set of accepted price tier values.
var validPriceTiers = map[string]bool{
	PriceCheap:     true,
	PriceModerate:  true,
	PriceExpensive: true,
}

// Validation errors.
var (
	ErrVenueNotFound    = errors.New("venue not found")
	ErrInvalidCrowd     = errors.New("crowd level must be between 0 and 100")
	ErrInvalidGenre     = errors.New("invalid genre")
	ErrInvalidVibe      = errors.New("invalid vibe level")
	ErrInvalidPriceTier = errors.New("invalid price tier")
	ErrInvalidTimeOfDay = errors.New("invalid time of day: must be HH:MM in 24h format")
)

// TimeOfDay is a wall-clock time without a date, used for venue
// operating hours.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// ParseTimeOfDay parses an "HH:MM" 24-hour string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return TimeOfDay{}, ErrInvalidTimeOfDay
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return TimeOfDay{}, ErrInvalidTimeOfDay
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// Minutes returns the time of day as minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// String formats the time of day as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Venue represents a party location with live crowd metrics.
//
// CurrentCrowd and TotalCheckIns are mutated only through the
// repository's atomic adjustment operations, never set directly by
// callers, so concurrent check-ins cannot lose updates.
type Venue struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Location    geo.Coordinate `json:"location"`
	Address     string         `json:"address"`
	City        string         `json:"city"`
	Country     string         `json:"country"`

	Genre     string `json:"genre"`
	PriceTier string `json:"price_tier"`
	VibeLevel string `json:"vibe_level"`

	// Operating hours; ClosingTime earlier than OpeningTime means the
	// venue closes after midnight.
	OpeningTime TimeOfDay `json:"opening_time"`
	ClosingTime TimeOfDay `json:"closing_time"`

	CurrentCrowd  int       `json:"current_crowd"`
	AverageRating float64   `json:"average_rating"`
	TotalCheckIns int       `json:"total_checkins"`
	LastUpdated   time.Time `json:"last_updated"`
}

// Validate checks the venue's enumerated fields and coordinates.
func (v *Venue) Validate() error {
	if err := v.Location.Validate(); err != nil {
		return err
	}
	if v.Genre != "" && !validGenres[v.Genre] {
		return ErrInvalidGenre
	}
	if v.VibeLevel != "" && !validVibes[v.VibeLevel] {
		return ErrInvalidVibe
	}
	if v.PriceTier != "" && !validPriceTiers[v.PriceTier] {
		return ErrInvalidPriceTier
	}
	if v.CurrentCrowd < MinCrowd || v.CurrentCrowd > MaxCrowd {
		return ErrInvalidCrowd
	}
	return nil
}

// IsOpenAt reports whether the venue is open at the given instant,
// handling windows that wrap past midnight (e.g. 18:00-02:00).
func (v *Venue) IsOpenAt(now time.Time) bool {
	cur := now.Hour()*60 + now.Minute()
	open := v.OpeningTime.Minutes()
	close := v.ClosingTime.Minutes()

	if open > close {
		// Wraps past midnight: open late evening OR early morning.
		return cur >= open || cur <= close
	}
	return cur >= open && cur <= close
}

// LocalityCell returns the venue's coarse geohash cell for map clustering.
func (v *Venue) LocalityCell() string {
	return geo.LocalityCell(v.Location, geo.CellPrecision)
}

// ValidCrowd reports whether a crowd level is within the allowed range.
// Used by the crowd-update path to validate before any mutation.
func ValidCrowd(level int) bool {
	return level >= MinCrowd && level <= MaxCrowd
}

// clampCrowd clamps a crowd value into [MinCrowd, MaxCrowd].
func clampCrowd(level int) int {
	if level < MinCrowd {
		return MinCrowd
	}
	if level > MaxCrowd {
		return MaxCrowd
	}
	return level
}
