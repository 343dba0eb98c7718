package api

import (
	"net/http"
	"testing"

	"github.com/onnwee/nightpulse/internal/hub"
	"github.com/onnwee/nightpulse/internal/reputation"
	"github.com/onnwee/nightpulse/internal/ticketing"
)

func TestReputationLookup(t *testing.T) {
	env := newTestEnv(t)
	env.seedVenue(t, "guvnor", "The Guvnor", "Kampala", 0.3311, 32.5791)

	env.do(t, "user-1", http.MethodPost, "/venues/guvnor/checkins", nil)
	env.do(t, "user-1", http.MethodDelete, "/venues/guvnor/checkins", nil)

	rec := env.do(t, "", http.MethodGet, "/reputation/user-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	account := decode[reputation.Account](t, rec)
	if want := PointsCheckIn + PointsCheckOut; account.Points != want {
		t.Errorf("points = %d, want %d", account.Points, want)
	}
	if account.Tier != reputation.TierNewcomer {
		t.Errorf("tier = %q, want %q", account.Tier, reputation.TierNewcomer)
	}
}

func TestReputationUnknownUserIsNewcomer(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "", http.MethodGet, "/reputation/stranger", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for unknown user", rec.Code)
	}

	account := decode[reputation.Account](t, rec)
	if account.Points != 0 || account.Tier != reputation.TierNewcomer {
		t.Errorf("account = %+v, want zero-point newcomer", account)
	}
}

func TestReputationMe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "", http.MethodGet, "/reputation/me", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous /reputation/me status = %d, want 401", rec.Code)
	}

	rec = env.do(t, "user-1", http.MethodGet, "/reputation/me", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTicketedEventsDegradeToEmpty(t *testing.T) {
	env := newTestEnv(t)

	// The test env's ticketing client points at an unreachable address.
	rec := env.do(t, "", http.MethodGet, "/ticketed-events?keyword=nyege", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite upstream failure", rec.Code)
	}

	resp := decode[struct {
		Events []ticketing.ExternalEvent `json:"events"`
		Count  int                       `json:"count"`
	}](t, rec)
	if resp.Count != 0 || resp.Events == nil {
		t.Errorf("response = %+v, want empty non-nil events", resp)
	}
}

func TestChatHistory(t *testing.T) {
	env := newTestEnv(t)
	env.seedVenue(t, "guvnor", "The Guvnor", "Kampala", 0.3311, 32.5791)

	rec := env.do(t, "", http.MethodGet, "/venues/guvnor/chat/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	resp := decode[struct {
		Messages []hub.ChatMessage `json:"messages"`
		Count    int               `json:"count"`
	}](t, rec)
	if resp.Count != 0 {
		t.Errorf("count = %d, want 0 for fresh venue", resp.Count)
	}
}

func TestChatHistoryUnknownVenue(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "", http.MethodGet, "/venues/missing/chat/history", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	if rec := env.do(t, "", http.MethodGet, "/health", nil); rec.Code != http.StatusOK {
		t.Errorf("/health status = %d, want 200", rec.Code)
	}
	if rec := env.do(t, "", http.MethodGet, "/ready", nil); rec.Code != http.StatusOK {
		t.Errorf("/ready status = %d, want 200", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "", http.MethodDelete, "/feed", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
