package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/onnwee/nightpulse/internal/hub"
	"github.com/onnwee/nightpulse/internal/validate"
	"github.com/onnwee/nightpulse/internal/venue"
)

// inboundChatMessage is what clients send over the websocket.
type inboundChatMessage struct {
	Text string `json:"text"`
}

// ChatHandlers holds dependencies for venue chat handlers.
type ChatHandlers struct {
	hub      *hub.Hub
	chat     *hub.ChatService
	venues   venue.Repository
	upgrader websocket.Upgrader
}

// NewChatHandlers creates a new ChatHandlers instance. Origin checking
// is delegated to the CORS middleware in front of the router.
func NewChatHandlers(h *hub.Hub, chat *hub.ChatService, venues venue.Repository) *ChatHandlers {
	return &ChatHandlers{
		hub:    h,
		chat:   chat,
		venues: venues,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Connect handles GET /venues/{id}/chat: upgrades to a websocket,
// subscribes the connection to the venue's chat topic, and relays
// inbound messages through the chat service so they are persisted
// before fan-out.
func (h *ChatHandlers) Connect(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	venueID := r.PathValue("id")
	if _, err := h.venues.GetByID(r.Context(), venueID); err != nil {
		if errors.Is(err, venue.ErrVenueNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Venue not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get venue", "error", err, "venue_id", venueID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to join chat")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		slog.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	sub := hub.NewWSSubscriber(conn)
	topic := hub.TopicForVenue(venueID)
	h.hub.Join(topic, sub)

	defer func() {
		h.hub.Leave(topic, sub)
		conn.Close()
	}()

	for {
		var in inboundChatMessage
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(r.Context(), "chat connection dropped", "error", err, "venue_id", venueID)
			}
			return
		}

		text, err := validate.ChatText(in.Text)
		if err != nil {
			// Drop malformed messages without killing the connection.
			continue
		}

		if _, err := h.chat.Post(r.Context(), venueID, userID, text); err != nil {
			if errors.Is(err, hub.ErrEmptyMessage) {
				continue
			}
			slog.ErrorContext(r.Context(), "failed to post chat message", "error", err, "venue_id", venueID)
		}
	}
}

// History handles GET /venues/{id}/chat/history with an optional limit
// query parameter.
func (h *ChatHandlers) History(w http.ResponseWriter, r *http.Request) {
	venueID := r.PathValue("id")
	if _, err := h.venues.GetByID(r.Context(), venueID); err != nil {
		if errors.Is(err, venue.ErrVenueNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Venue not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get venue", "error", err, "venue_id", venueID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load chat history")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 0 {
			fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	messages, err := h.chat.History(r.Context(), venueID, limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load chat history", "error", err, "venue_id", venueID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load chat history")
		return
	}

	writeJSON(w, r.Context(), http.StatusOK, map[string]any{
		"messages": messages,
		"count":    len(messages),
	})
}
