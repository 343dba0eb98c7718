package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/onnwee/nightpulse/internal/event"
	"github.com/onnwee/nightpulse/internal/feed"
	"github.com/onnwee/nightpulse/internal/validate"
	"github.com/onnwee/nightpulse/internal/venue"
)

// EventRequest is the request body for creating an event.
type EventRequest struct {
	VenueID           string    `json:"venue_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	StartsAt          time.Time `json:"starts_at"`
	EndsAt            time.Time `json:"ends_at"`
	Category          string    `json:"category"`
	PriceTier         string    `json:"price_tier"`
	ExpectedAttendees int       `json:"expected_attendees"`
}

// RSVPRequest is the request body for declaring event attendance.
type RSVPRequest struct {
	Status string `json:"status"` // GOING, INTERESTED, NOT_GOING
}

// EventHandlers holds dependencies for event HTTP handlers.
type EventHandlers struct {
	events event.Repository
	rsvps  event.RSVPRepository
	venues venue.Repository
	feed   *feed.Engine
}

// NewEventHandlers creates a new EventHandlers instance.
func NewEventHandlers(events event.Repository, rsvps event.RSVPRepository, venues venue.Repository, feedEngine *feed.Engine) *EventHandlers {
	return &EventHandlers{
		events: events,
		rsvps:  rsvps,
		venues: venues,
		feed:   feedEngine,
	}
}

// Create handles POST /events.
func (h *EventHandlers) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}
	name, err := validate.EventName(req.Name)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, fmt.Sprintf("invalid name: %v", err))
		return
	}
	description, err := validate.Description(req.Description)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, fmt.Sprintf("invalid description: %v", err))
		return
	}

	v, err := h.venues.GetByID(r.Context(), req.VenueID)
	if err != nil {
		if errors.Is(err, venue.ErrVenueNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Venue not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get venue", "error", err, "venue_id", req.VenueID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to create event")
		return
	}

	e := &event.Event{
		ID:                uuid.New().String(),
		VenueID:           v.ID,
		Name:              name,
		Description:       description,
		StartsAt:          req.StartsAt,
		EndsAt:            req.EndsAt,
		Category:          req.Category,
		PriceTier:         req.PriceTier,
		ExpectedAttendees: req.ExpectedAttendees,
		CreatedBy:         userID,
	}

	if err := h.events.Insert(r.Context(), e); err != nil {
		switch {
		case errors.Is(err, event.ErrInvalidTimeRange):
			fail(w, r, http.StatusBadRequest, ErrCodeInvalidTimeRange, "starts_at must be before ends_at")
		case errors.Is(err, event.ErrInvalidCategory):
			fail(w, r, http.StatusBadRequest, ErrCodeValidation, "invalid category")
		default:
			slog.ErrorContext(r.Context(), "failed to insert event", "error", err)
			fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to create event")
		}
		return
	}

	h.appendActivity(r, &feed.ActivityEntry{
		Type:    feed.TypeEvent,
		ActorID: userID,
		VenueID: v.ID,
		EventID: e.ID,
		City:    v.City,
		Message: fmt.Sprintf("%s announced at %s", e.Name, v.Name),
	})

	writeJSON(w, r.Context(), http.StatusCreated, e)
}

// Get handles GET /events/{id}.
func (h *EventHandlers) Get(w http.ResponseWriter, r *http.Request) {
	e, ok := h.lookupEvent(w, r)
	if !ok {
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, e)
}

// List handles GET /events with optional frame (live, today, week,
// weekend, month, upcoming), category, and venue_id query parameters.
func (h *EventHandlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	all, err := h.events.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list events", "error", err)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to list events")
		return
	}

	events := event.FilterByFrame(all, q.Get("frame"), time.Now())

	if category := q.Get("category"); category != "" {
		filtered := events[:0]
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}
	if venueID := q.Get("venue_id"); venueID != "" {
		filtered := events[:0]
		for _, e := range events {
			if e.VenueID == venueID {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	writeJSON(w, r.Context(), http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

// RSVP handles POST /events/{id}/rsvp. Resubmitting replaces the
// previous status, and the event's attendee count is rolled up from
// the GOING tally after every change.
func (h *EventHandlers) RSVP(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	e, ok := h.lookupEvent(w, r)
	if !ok {
		return
	}

	var req RSVPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	rsvp := &event.RSVP{
		UserID:  userID,
		EventID: e.ID,
		Status:  req.Status,
	}
	if err := h.rsvps.Upsert(r.Context(), rsvp); err != nil {
		if errors.Is(err, event.ErrInvalidRSVPStatus) {
			fail(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "failed to store rsvp", "error", err, "event_id", e.ID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to store RSVP")
		return
	}

	going, err := h.rsvps.CountGoing(r.Context(), e.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to count rsvps", "error", err, "event_id", e.ID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to store RSVP")
		return
	}
	if err := h.events.SetActualAttendees(r.Context(), e.ID, going); err != nil {
		slog.ErrorContext(r.Context(), "failed to update attendee count", "error", err, "event_id", e.ID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to store RSVP")
		return
	}

	if req.Status == event.RSVPGoing {
		h.appendRSVPActivity(r, userID, e)
	}

	writeJSON(w, r.Context(), http.StatusOK, map[string]any{
		"event_id":           e.ID,
		"status":             req.Status,
		"going":              going,
		"actual_attendees":   going,
		"expected_attendees": e.ExpectedAttendees,
	})
}

// MyRSVPs handles GET /rsvps: the authenticated user's RSVPs, most
// recently updated first.
func (h *EventHandlers) MyRSVPs(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	rsvps, err := h.rsvps.ListByUser(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list rsvps", "error", err, "user_id", userID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to list RSVPs")
		return
	}

	writeJSON(w, r.Context(), http.StatusOK, map[string]any{
		"rsvps": rsvps,
		"count": len(rsvps),
	})
}

func (h *EventHandlers) lookupEvent(w http.ResponseWriter, r *http.Request) (*event.Event, bool) {
	id := r.PathValue("id")
	if id == "" {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Event ID is required")
		return nil, false
	}

	e, err := h.events.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Event not found")
			return nil, false
		}
		slog.ErrorContext(r.Context(), "failed to get event", "error", err, "event_id", id)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to retrieve event")
		return nil, false
	}
	return e, true
}

// appendActivity records a feed entry, logging instead of failing the
// request when the feed store is down.
func (h *EventHandlers) appendActivity(r *http.Request, entry *feed.ActivityEntry) {
	if h.feed == nil || entry.City == "" {
		return
	}
	if _, err := h.feed.Append(r.Context(), entry); err != nil {
		slog.ErrorContext(r.Context(), "failed to append activity entry", "error", err)
	}
}

// appendRSVPActivity records a GOING declaration in the city feed,
// resolving the venue for the city scope.
func (h *EventHandlers) appendRSVPActivity(r *http.Request, userID string, e *event.Event) {
	if h.feed == nil {
		return
	}
	v, err := h.venues.GetByID(r.Context(), e.VenueID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to resolve venue for rsvp activity", "error", err, "venue_id", e.VenueID)
		return
	}
	entry := &feed.ActivityEntry{
		Type:    feed.TypeRSVP,
		ActorID: userID,
		VenueID: v.ID,
		EventID: e.ID,
		City:    v.City,
		Message: fmt.Sprintf("going to %s at %s", e.Name, v.Name),
	}
	if _, err := h.feed.Append(r.Context(), entry); err != nil {
		slog.ErrorContext(r.Context(), "failed to append activity entry", "error", err)
	}
}
