package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/onnwee/nightpulse/internal/event"
	"github.com/onnwee/nightpulse/internal/feed"
	"github.com/onnwee/nightpulse/internal/geo"
	"github.com/onnwee/nightpulse/internal/validate"
	"github.com/onnwee/nightpulse/internal/venue"
)

// VenueRequest is the request body for creating or updating a venue.
type VenueRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Genre       string  `json:"genre"`
	PriceTier   string  `json:"price_tier"`
	VibeLevel   string  `json:"vibe_level"`
	OpeningTime string  `json:"opening_time"` // "HH:MM"
	ClosingTime string  `json:"closing_time"` // "HH:MM"
}

// CrowdRequest is the request body for a direct crowd level update.
type CrowdRequest struct {
	Level int `json:"level"`
}

// RatingRequest is the request body for rating a venue.
type RatingRequest struct {
	Score int `json:"score"` // 1-5
}

// VenueHandlers holds dependencies for venue HTTP handlers.
type VenueHandlers struct {
	venues  venue.Repository
	ratings venue.RatingRepository
	events  event.Repository
	feed    *feed.Engine
}

// NewVenueHandlers creates a new VenueHandlers instance.
func NewVenueHandlers(venues venue.Repository, ratings venue.RatingRepository, events event.Repository, feedEngine *feed.Engine) *VenueHandlers {
	return &VenueHandlers{
		venues:  venues,
		ratings: ratings,
		events:  events,
		feed:    feedEngine,
	}
}

// Create handles POST /venues.
func (h *VenueHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req VenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}
	name, err := validate.VenueName(req.Name)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, fmt.Sprintf("invalid name: %v", err))
		return
	}
	description, err := validate.Description(req.Description)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, fmt.Sprintf("invalid description: %v", err))
		return
	}

	location, err := geo.NewCoordinate(req.Lat, req.Lng)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeInvalidRange, err.Error())
		return
	}

	v := &venue.Venue{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Location:    location,
		Address:     req.Address,
		City:        req.City,
		Country:     req.Country,
		Genre:       req.Genre,
		PriceTier:   req.PriceTier,
		VibeLevel:   req.VibeLevel,
	}

	if req.OpeningTime != "" {
		if v.OpeningTime, err = venue.ParseTimeOfDay(req.OpeningTime); err != nil {
			fail(w, r, http.StatusBadRequest, ErrCodeValidation, "opening_time must be HH:MM")
			return
		}
	}
	if req.ClosingTime != "" {
		if v.ClosingTime, err = venue.ParseTimeOfDay(req.ClosingTime); err != nil {
			fail(w, r, http.StatusBadRequest, ErrCodeValidation, "closing_time must be HH:MM")
			return
		}
	}

	if err := h.venues.Insert(r.Context(), v); err != nil {
		if isValidationErr(err) {
			fail(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "failed to insert venue", "error", err)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to create venue")
		return
	}

	writeJSON(w, r.Context(), http.StatusCreated, v)
}

// Get handles GET /venues/{id}.
func (h *VenueHandlers) Get(w http.ResponseWriter, r *http.Request) {
	v, ok := h.lookupVenue(w, r)
	if !ok {
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, v)
}

// List handles GET /venues with the smart filters as query parameters:
// lat, lng, radius, genre, price_tier, vibe, min_crowd, max_crowd,
// min_rating, open_now, has_live_events, sort.
func (h *VenueHandlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := venue.Filters{
		Genre:     q.Get("genre"),
		PriceTier: q.Get("price_tier"),
		VibeLevel: q.Get("vibe"),
		SortBy:    q.Get("sort"),
	}

	if q.Get("lat") != "" || q.Get("lng") != "" {
		lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
		lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
		if latErr != nil || lngErr != nil {
			fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "lat and lng must both be valid numbers")
			return
		}
		center, err := geo.NewCoordinate(lat, lng)
		if err != nil {
			fail(w, r, http.StatusBadRequest, ErrCodeInvalidRange, err.Error())
			return
		}
		filters.Center = &center

		if radiusStr := q.Get("radius"); radiusStr != "" {
			radius, err := strconv.ParseFloat(radiusStr, 64)
			if err != nil || radius <= 0 {
				fail(w, r, http.StatusBadRequest, ErrCodeInvalidRange, "radius must be a positive number")
				return
			}
			filters.RadiusKm = radius
		}
	}

	var parseErr error
	filters.MinCrowd = intQueryParam(q.Get("min_crowd"), &parseErr)
	filters.MaxCrowd = intQueryParam(q.Get("max_crowd"), &parseErr)
	filters.MinRating = floatQueryParam(q.Get("min_rating"), &parseErr)
	if parseErr != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, parseErr.Error())
		return
	}

	if q.Get("open_now") == "true" {
		filters.OpenNow = true
		filters.Now = time.Now()
	}

	if q.Get("has_live_events") == "true" {
		live, err := h.liveVenueIDs(r)
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to resolve live venues", "error", err)
			fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to search venues")
			return
		}
		filters.LiveVenueIDs = live
	}

	all, err := h.venues.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list venues", "error", err)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to search venues")
		return
	}

	results := venue.Search(all, filters)
	writeJSON(w, r.Context(), http.StatusOK, map[string]any{
		"venues": results,
		"count":  len(results),
	})
}

// SetCrowd handles PUT /venues/{id}/crowd: a direct, validated crowd
// level update for venue staff, bypassing the per-check-in delta path.
func (h *VenueHandlers) SetCrowd(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	v, ok := h.lookupVenue(w, r)
	if !ok {
		return
	}

	var req CrowdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	if err := h.venues.SetCrowd(r.Context(), v.ID, req.Level); err != nil {
		if errors.Is(err, venue.ErrInvalidCrowd) {
			fail(w, r, http.StatusBadRequest, ErrCodeInvalidRange, "level must be between 0 and 100")
			return
		}
		slog.ErrorContext(r.Context(), "failed to set crowd", "error", err, "venue_id", v.ID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to update crowd level")
		return
	}

	h.appendActivity(r, &feed.ActivityEntry{
		Type:    feed.TypeCheckIn,
		ActorID: userID,
		VenueID: v.ID,
		City:    v.City,
		Message: fmt.Sprintf("%s crowd level set to %d", v.Name, req.Level),
	})

	writeJSON(w, r.Context(), http.StatusOK, map[string]any{
		"venue_id": v.ID,
		"crowd":    req.Level,
	})
}

// Rate handles POST /venues/{id}/rate: stores the user's score and
// refreshes the venue's running average.
func (h *VenueHandlers) Rate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	v, ok := h.lookupVenue(w, r)
	if !ok {
		return
	}

	var req RatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	rating := &venue.Rating{
		UserID:    userID,
		VenueID:   v.ID,
		Score:     req.Score,
		CreatedAt: time.Now(),
	}
	if err := h.ratings.Upsert(r.Context(), rating); err != nil {
		if errors.Is(err, venue.ErrInvalidScore) {
			fail(w, r, http.StatusBadRequest, ErrCodeInvalidRange, "score must be between 1 and 5")
			return
		}
		slog.ErrorContext(r.Context(), "failed to store rating", "error", err, "venue_id", v.ID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to store rating")
		return
	}

	avg, count, err := h.ratings.AverageForVenue(r.Context(), v.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to compute average rating", "error", err, "venue_id", v.ID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to update rating")
		return
	}
	if err := h.venues.SetAverageRating(r.Context(), v.ID, avg); err != nil {
		slog.ErrorContext(r.Context(), "failed to store average rating", "error", err, "venue_id", v.ID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to update rating")
		return
	}

	h.appendActivity(r, &feed.ActivityEntry{
		Type:    feed.TypeReview,
		ActorID: userID,
		VenueID: v.ID,
		City:    v.City,
		Message: fmt.Sprintf("%s rated %d/5", v.Name, req.Score),
	})

	writeJSON(w, r.Context(), http.StatusOK, map[string]any{
		"venue_id":       v.ID,
		"average_rating": avg,
		"rating_count":   count,
	})
}

// lookupVenue resolves the {id} path segment to a venue, writing the
// error response itself when that fails.
func (h *VenueHandlers) lookupVenue(w http.ResponseWriter, r *http.Request) (*venue.Venue, bool) {
	id := r.PathValue("id")
	if id == "" {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Venue ID is required")
		return nil, false
	}

	v, err := h.venues.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, venue.ErrVenueNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Venue not found")
			return nil, false
		}
		slog.ErrorContext(r.Context(), "failed to get venue", "error", err, "venue_id", id)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to retrieve venue")
		return nil, false
	}
	return v, true
}

// liveVenueIDs resolves the set of venues with a currently live event.
func (h *VenueHandlers) liveVenueIDs(r *http.Request) (map[string]bool, error) {
	if h.events == nil {
		return map[string]bool{}, nil
	}
	all, err := h.events.List(r.Context())
	if err != nil {
		return nil, err
	}
	now := time.Now()
	live := make(map[string]bool)
	for _, e := range all {
		if e.IsLive(now) {
			live[e.VenueID] = true
		}
	}
	return live, nil
}

// appendActivity records a feed entry, logging instead of failing the
// request when the feed store is down.
func (h *VenueHandlers) appendActivity(r *http.Request, entry *feed.ActivityEntry) {
	if h.feed == nil || entry.City == "" {
		return
	}
	if _, err := h.feed.Append(r.Context(), entry); err != nil {
		slog.ErrorContext(r.Context(), "failed to append activity entry", "error", err)
	}
}

func isValidationErr(err error) bool {
	return errors.Is(err, venue.ErrInvalidGenre) ||
		errors.Is(err, venue.ErrInvalidVibe) ||
		errors.Is(err, venue.ErrInvalidPriceTier) ||
		errors.Is(err, venue.ErrInvalidCrowd) ||
		errors.Is(err, geo.ErrInvalidLatitude) ||
		errors.Is(err, geo.ErrInvalidLongitude)
}

func intQueryParam(s string, parseErr *error) *int {
	if s == "" || *parseErr != nil {
		return nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		*parseErr = fmt.Errorf("%q is not a valid integer", s)
		return nil
	}
	return &i
}

func floatQueryParam(s string, parseErr *error) *float64 {
	if s == "" || *parseErr != nil {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*parseErr = fmt.Errorf("%q is not a valid number", s)
		return nil
	}
	return &f
}
