package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/onnwee/nightpulse/internal/event"
	"github.com/onnwee/nightpulse/internal/geo"
	"github.com/onnwee/nightpulse/internal/feed"
	"github.com/onnwee/nightpulse/internal/health"
	"github.com/onnwee/nightpulse/internal/hub"
	"github.com/onnwee/nightpulse/internal/mapview"
	"github.com/onnwee/nightpulse/internal/middleware"
	"github.com/onnwee/nightpulse/internal/presence"
	"github.com/onnwee/nightpulse/internal/reputation"
	"github.com/onnwee/nightpulse/internal/ticketing"
	"github.com/onnwee/nightpulse/internal/venue"
)

// testEnv wires every handler group against in-memory repositories,
// exercising the real route table.
type testEnv struct {
	venues     *venue.InMemoryRepository
	ratings    *venue.InMemoryRatingRepository
	events     *event.InMemoryRepository
	rsvps      *event.InMemoryRSVPRepository
	feedRepo   *feed.InMemoryRepository
	presence   *presence.Ledger
	reputation *reputation.Ledger
	handler    http.Handler
}

// okChecker is an always-healthy readiness probe.
type okChecker struct{}

func (okChecker) HealthCheck(ctx context.Context) error { return nil }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	venues := venue.NewInMemoryRepository()
	ratings := venue.NewInMemoryRatingRepository()
	events := event.NewInMemoryRepository()
	rsvps := event.NewInMemoryRSVPRepository()
	feedRepo := feed.NewInMemoryRepository()
	presenceRepo := presence.NewInMemoryRepository()
	repRepo := reputation.NewInMemoryRepository()
	chatRepo := hub.NewInMemoryChatRepository()

	presenceLedger := presence.NewLedger(presenceRepo, venues)
	repLedger := reputation.NewLedger(repRepo)
	broadcast := hub.New(nil)
	chat := hub.NewChatService(chatRepo, broadcast)
	engine := feed.NewEngine(feedRepo, NewCheckInCityResolver(presenceLedger, venues), "")
	aggregator := mapview.NewAggregator(venues, events, engine, presenceLedger, nil)

	mux := NewRouter(RouterDeps{
		Venues:     NewVenueHandlers(venues, ratings, events, engine),
		CheckIns:   NewCheckInHandlers(presenceLedger, venues, repLedger, engine),
		Events:     NewEventHandlers(events, rsvps, venues, engine),
		Feed:       NewFeedHandlers(engine),
		Map:        NewMapHandlers(aggregator),
		Reputation: NewReputationHandlers(repLedger),
		Ticketing:  NewTicketingHandlers(ticketing.NewClient("http://127.0.0.1:0", "", nil)),
		Chat:       NewChatHandlers(broadcast, chat, venues),
		Health:     NewHealthHandlers(map[string]health.Checker{"test": okChecker{}}),
	})

	return &testEnv{
		venues:     venues,
		ratings:    ratings,
		events:     events,
		rsvps:      rsvps,
		feedRepo:   feedRepo,
		presence:   presenceLedger,
		reputation: repLedger,
		handler:    mux,
	}
}

// do runs a request through the router as the given user. An empty
// userID issues an anonymous request.
func (env *testEnv) do(t *testing.T, userID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a recorded JSON response body.
func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response %q: %v", rec.Body.String(), err)
	}
	return out
}

// errorCode extracts the code from a standard error response.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[ErrorResponse](t, rec).Error.Code
}

// seedVenue inserts a venue directly into the repository.
func (env *testEnv) seedVenue(t *testing.T, id, name, city string, lat, lng float64) *venue.Venue {
	t.Helper()
	v := &venue.Venue{
		ID:   id,
		Name: name,
		City: city,
		Location: geo.Coordinate{
			Lat: lat,
			Lng: lng,
		},
	}
	if err := env.venues.Insert(t.Context(), v); err != nil {
		t.Fatalf("seed venue %s: %v", id, err)
	}
	return v
}
