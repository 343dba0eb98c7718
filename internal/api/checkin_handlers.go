package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/onnwee/nightpulse/internal/feed"
	"github.com/onnwee/nightpulse/internal/presence"
	"github.com/onnwee/nightpulse/internal/reputation"
	"github.com/onnwee/nightpulse/internal/venue"
)

// Points awarded for presence transitions. Checking out is worth more
// to reward users who close the loop instead of leaving stale
// check-ins for the auto-expiry sweep to clean up.
const (
	PointsCheckIn  = 5
	PointsCheckOut = 10
)

// CheckInHandlers holds dependencies for presence HTTP handlers.
type CheckInHandlers struct {
	ledger     *presence.Ledger
	venues     venue.Repository
	reputation *reputation.Ledger
	feed       *feed.Engine
}

// NewCheckInHandlers creates a new CheckInHandlers instance.
func NewCheckInHandlers(ledger *presence.Ledger, venues venue.Repository, rep *reputation.Ledger, feedEngine *feed.Engine) *CheckInHandlers {
	return &CheckInHandlers{
		ledger:     ledger,
		venues:     venues,
		reputation: rep,
		feed:       feedEngine,
	}
}

// CheckIn handles POST /venues/{id}/checkins. A user checking in while
// active elsewhere is moved atomically; re-checking in at the same
// venue is a no-op that earns no points.
func (h *CheckInHandlers) CheckIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	venueID := r.PathValue("id")
	v, err := h.venues.GetByID(r.Context(), venueID)
	if err != nil {
		if errors.Is(err, venue.ErrVenueNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Venue not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get venue", "error", err, "venue_id", venueID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to check in")
		return
	}

	transition, err := h.ledger.CheckIn(r.Context(), userID, venueID)
	if err != nil {
		// The expiry sweep can close the previous check-in between the
		// ledger's read and its replace. Nothing was written; the
		// client can simply retry.
		if errors.Is(err, presence.ErrCheckInInactive) {
			fail(w, r, http.StatusConflict, ErrCodeConflict, "Check-in state changed, retry")
			return
		}
		slog.ErrorContext(r.Context(), "check-in failed", "error", err, "user_id", userID, "venue_id", venueID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to check in")
		return
	}

	resp := map[string]any{
		"check_in":  transition.CheckIn,
		"points":    0,
		"displaced": transition.DisplacedVenueID,
	}

	// Side effects only on a real transition, never on the idempotent
	// re-check-in path.
	if !transition.Idempotent {
		if account := h.award(r, userID, PointsCheckIn); account != nil {
			resp["points"] = PointsCheckIn
			resp["reputation"] = account
		}
		h.appendActivity(r, &feed.ActivityEntry{
			Type:    feed.TypeCheckIn,
			ActorID: userID,
			VenueID: v.ID,
			City:    v.City,
			Message: fmt.Sprintf("checked in at %s", v.Name),
		})
	}

	writeJSON(w, r.Context(), http.StatusCreated, resp)
}

// CheckOut handles DELETE /venues/{id}/checkins.
func (h *CheckInHandlers) CheckOut(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	venueID := r.PathValue("id")
	transition, err := h.ledger.CheckOut(r.Context(), userID, venueID)
	if err != nil {
		if errors.Is(err, presence.ErrNoActiveCheckIn) {
			fail(w, r, http.StatusNotFound, ErrCodeNoActiveCheckIn, "No active check-in at this venue")
			return
		}
		if errors.Is(err, presence.ErrCheckInInactive) {
			fail(w, r, http.StatusConflict, ErrCodeConflict, "Check-in state changed, retry")
			return
		}
		slog.ErrorContext(r.Context(), "check-out failed", "error", err, "user_id", userID, "venue_id", venueID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to check out")
		return
	}

	resp := map[string]any{
		"check_in": transition.CheckIn,
		"points":   0,
	}
	if account := h.award(r, userID, PointsCheckOut); account != nil {
		resp["points"] = PointsCheckOut
		resp["reputation"] = account
	}

	writeJSON(w, r.Context(), http.StatusOK, resp)
}

// WhoIsAt handles GET /venues/{id}/checkins: the active check-ins at a
// venue, newest first.
func (h *CheckInHandlers) WhoIsAt(w http.ResponseWriter, r *http.Request) {
	venueID := r.PathValue("id")
	if _, err := h.venues.GetByID(r.Context(), venueID); err != nil {
		if errors.Is(err, venue.ErrVenueNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Venue not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get venue", "error", err, "venue_id", venueID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to list check-ins")
		return
	}

	checkIns, err := h.ledger.WhoIsAt(r.Context(), venueID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list check-ins", "error", err, "venue_id", venueID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to list check-ins")
		return
	}

	writeJSON(w, r.Context(), http.StatusOK, map[string]any{
		"check_ins": checkIns,
		"count":     len(checkIns),
	})
}

// award adds reputation points, logging instead of failing the request
// when the points store is down. Returns nil on failure.
func (h *CheckInHandlers) award(r *http.Request, userID string, points int) *reputation.Account {
	if h.reputation == nil {
		return nil
	}
	account, err := h.reputation.Award(r.Context(), userID, points)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to award points", "error", err, "user_id", userID)
		return nil
	}
	return account
}

func (h *CheckInHandlers) appendActivity(r *http.Request, entry *feed.ActivityEntry) {
	if h.feed == nil || entry.City == "" {
		return
	}
	if _, err := h.feed.Append(r.Context(), entry); err != nil {
		slog.ErrorContext(r.Context(), "failed to append activity entry", "error", err)
	}
}
