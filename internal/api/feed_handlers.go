package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/onnwee/nightpulse/internal/feed"
	"github.com/onnwee/nightpulse/internal/middleware"
)

// FeedHandlers holds dependencies for activity feed HTTP handlers.
type FeedHandlers struct {
	engine *feed.Engine
}

// NewFeedHandlers creates a new FeedHandlers instance.
func NewFeedHandlers(engine *feed.Engine) *FeedHandlers {
	return &FeedHandlers{engine: engine}
}

// Get handles GET /feed with optional type and limit query parameters.
// The feed is scoped to the viewer's active city; anonymous viewers
// and viewers with no check-in history get the default city.
func (h *FeedHandlers) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if limitStr := q.Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 0 {
			fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	// Anonymous viewers pass an empty ID and land on the default city.
	viewerID := middleware.GetUserID(r.Context())

	entries, err := h.engine.Query(r.Context(), viewerID, q.Get("type"), limit)
	if err != nil {
		if errors.Is(err, feed.ErrInvalidActivityType) {
			fail(w, r, http.StatusBadRequest, ErrCodeValidation, "invalid activity type filter")
			return
		}
		slog.ErrorContext(r.Context(), "failed to query feed", "error", err, "viewer_id", viewerID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load feed")
		return
	}

	writeJSON(w, r.Context(), http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}
