package api

import (
	"net/http"

	"github.com/onnwee/nightpulse/internal/middleware"
)

// RouterDeps bundles the handler groups and per-route rate limiting
// for the API router.
type RouterDeps struct {
	Venues     *VenueHandlers
	CheckIns   *CheckInHandlers
	Events     *EventHandlers
	Feed       *FeedHandlers
	Map        *MapHandlers
	Reputation *ReputationHandlers
	Ticketing  *TicketingHandlers
	Chat       *ChatHandlers
	Health     *HealthHandlers

	// Metrics is the Prometheus scrape handler.
	Metrics http.Handler

	// RateLimitStore enables per-route limits on the write-heavy
	// endpoints when non-nil. The global limit is applied by the outer
	// middleware chain, not here.
	RateLimitStore middleware.RateLimitStore
}

// NewRouter builds the route table. Method and path parameters use the
// standard mux patterns; handlers read them via r.PathValue.
func NewRouter(deps RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()

	checkInLimit := passthrough
	chatLimit := passthrough
	if deps.RateLimitStore != nil {
		keyFunc := middleware.UserKeyFunc()
		checkInLimit = middleware.RateLimiter(deps.RateLimitStore, middleware.DefaultCheckInLimit(), keyFunc)
		chatLimit = middleware.RateLimiter(deps.RateLimitStore, middleware.DefaultChatLimit(), keyFunc)
	}

	mux.HandleFunc("GET /health", deps.Health.Health)
	mux.HandleFunc("GET /ready", deps.Health.Ready)
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	mux.HandleFunc("POST /venues", deps.Venues.Create)
	mux.HandleFunc("GET /venues", deps.Venues.List)
	mux.HandleFunc("GET /venues/{id}", deps.Venues.Get)
	mux.HandleFunc("PUT /venues/{id}/crowd", deps.Venues.SetCrowd)
	mux.HandleFunc("POST /venues/{id}/rate", deps.Venues.Rate)

	mux.Handle("POST /venues/{id}/checkins", checkInLimit(http.HandlerFunc(deps.CheckIns.CheckIn)))
	mux.Handle("DELETE /venues/{id}/checkins", checkInLimit(http.HandlerFunc(deps.CheckIns.CheckOut)))
	mux.HandleFunc("GET /venues/{id}/checkins", deps.CheckIns.WhoIsAt)

	mux.Handle("GET /venues/{id}/chat", chatLimit(http.HandlerFunc(deps.Chat.Connect)))
	mux.HandleFunc("GET /venues/{id}/chat/history", deps.Chat.History)

	mux.HandleFunc("POST /events", deps.Events.Create)
	mux.HandleFunc("GET /events", deps.Events.List)
	mux.HandleFunc("GET /events/{id}", deps.Events.Get)
	mux.HandleFunc("POST /events/{id}/rsvp", deps.Events.RSVP)
	mux.HandleFunc("GET /rsvps", deps.Events.MyRSVPs)

	mux.HandleFunc("GET /feed", deps.Feed.Get)
	mux.HandleFunc("GET /map", deps.Map.Snapshot)
	mux.HandleFunc("GET /ticketed-events", deps.Ticketing.Search)

	mux.HandleFunc("GET /reputation/me", deps.Reputation.Me)
	mux.HandleFunc("GET /reputation/{id}", deps.Reputation.Get)

	return mux
}

func passthrough(next http.Handler) http.Handler { return next }
