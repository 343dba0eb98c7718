package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/onnwee/nightpulse/internal/geo"
	"github.com/onnwee/nightpulse/internal/mapview"
)

// MapHandlers holds dependencies for the map snapshot handler.
type MapHandlers struct {
	aggregator *mapview.Aggregator
}

// NewMapHandlers creates a new MapHandlers instance.
func NewMapHandlers(aggregator *mapview.Aggregator) *MapHandlers {
	return &MapHandlers{aggregator: aggregator}
}

// Snapshot handles GET /map?lat=&lng=&radius=. Everything the map
// screen needs arrives in one response; unavailable sections come back
// empty rather than failing the whole snapshot.
func (h *MapHandlers) Snapshot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "lat and lng are required and must be valid numbers")
		return
	}

	center, err := geo.NewCoordinate(lat, lng)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeInvalidRange, err.Error())
		return
	}

	radius := 0.0
	if radiusStr := q.Get("radius"); radiusStr != "" {
		radius, err = strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius <= 0 {
			fail(w, r, http.StatusBadRequest, ErrCodeInvalidRange, "radius must be a positive number")
			return
		}
	}

	snap, err := h.aggregator.Snapshot(r.Context(), center, radius)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to build map snapshot", "error", err)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to build map snapshot")
		return
	}

	writeJSON(w, r.Context(), http.StatusOK, snap)
}
