package api

import (
	"context"
	"errors"

	"github.com/onnwee/nightpulse/internal/presence"
	"github.com/onnwee/nightpulse/internal/venue"
)

// CheckInCityResolver derives a user's feed city from their active
// check-in's venue. Implements feed.CityResolver.
type CheckInCityResolver struct {
	ledger *presence.Ledger
	venues venue.Repository
}

// NewCheckInCityResolver creates a new CheckInCityResolver.
func NewCheckInCityResolver(ledger *presence.Ledger, venues venue.Repository) *CheckInCityResolver {
	return &CheckInCityResolver{ledger: ledger, venues: venues}
}

// ActiveCity returns the city of the user's active check-in, or empty
// when the user is not checked in anywhere.
func (r *CheckInCityResolver) ActiveCity(ctx context.Context, userID string) (string, error) {
	ci, err := r.ledger.ActiveCheckIn(ctx, userID)
	if err != nil {
		return "", err
	}
	if ci == nil {
		return "", nil
	}

	v, err := r.venues.GetByID(ctx, ci.VenueID)
	if err != nil {
		// A venue deleted out from under an active check-in should not
		// break the feed; fall back to the default city.
		if errors.Is(err, venue.ErrVenueNotFound) {
			return "", nil
		}
		return "", err
	}
	return v.City, nil
}
