package api

import (
	"net/http"
	"strconv"

	"github.com/onnwee/nightpulse/internal/ticketing"
)

// TicketingHandlers holds dependencies for the external ticketed-event
// discovery handler.
type TicketingHandlers struct {
	client *ticketing.Client
}

// NewTicketingHandlers creates a new TicketingHandlers instance.
func NewTicketingHandlers(client *ticketing.Client) *TicketingHandlers {
	return &TicketingHandlers{client: client}
}

// Search handles GET /ticketed-events?keyword=&city=&size=. The
// upstream provider being down or unconfigured yields an empty list,
// never an error, so the discovery screen keeps rendering.
func (h *TicketingHandlers) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := ticketing.Query{
		Keyword: q.Get("keyword"),
		City:    q.Get("city"),
	}
	if sizeStr := q.Get("size"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil || size < 0 {
			fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "size must be a non-negative integer")
			return
		}
		query.Size = size
	}

	events := []ticketing.ExternalEvent{}
	if h.client != nil {
		events = h.client.SearchOrEmpty(r.Context(), query)
	}

	writeJSON(w, r.Context(), http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}
