package api

import (
	"net/http"
	"testing"

	"github.com/onnwee/nightpulse/internal/venue"
)

func TestCreateVenue(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "user-1", http.MethodPost, "/venues", VenueRequest{
		Name:        "The Guvnor",
		Lat:         0.3311,
		Lng:         32.5791,
		City:        "Kampala",
		Genre:       venue.GenreElectronic,
		PriceTier:   venue.PriceModerate,
		VibeLevel:   venue.VibeHigh,
		OpeningTime: "18:00",
		ClosingTime: "04:00",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	created := decode[venue.Venue](t, rec)
	if created.ID == "" {
		t.Error("created venue has no ID")
	}
	if created.Name != "The Guvnor" {
		t.Errorf("Name = %q, want The Guvnor", created.Name)
	}
	if created.OpeningTime.Hour != 18 || created.ClosingTime.Hour != 4 {
		t.Errorf("hours = %s-%s, want 18:00-04:00", created.OpeningTime, created.ClosingTime)
	}
}

func TestCreateVenueValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		req      VenueRequest
		wantCode string
	}{
		{
			name:     "missing name",
			req:      VenueRequest{Lat: 0.3, Lng: 32.5},
			wantCode: ErrCodeValidation,
		},
		{
			name:     "latitude out of range",
			req:      VenueRequest{Name: "x", Lat: 91, Lng: 32.5},
			wantCode: ErrCodeInvalidRange,
		},
		{
			name:     "unknown genre",
			req:      VenueRequest{Name: "x", Lat: 0.3, Lng: 32.5, Genre: "POLKA"},
			wantCode: ErrCodeValidation,
		},
		{
			name:     "bad opening time",
			req:      VenueRequest{Name: "x", Lat: 0.3, Lng: 32.5, OpeningTime: "25:99"},
			wantCode: ErrCodeValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, "user-1", http.MethodPost, "/venues", tt.req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("error code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}

func TestGetVenueNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "", http.MethodGet, "/venues/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if code := errorCode(t, rec); code != ErrCodeNotFound {
		t.Errorf("error code = %q, want %q", code, ErrCodeNotFound)
	}
}

func TestListVenuesWithFilters(t *testing.T) {
	env := newTestEnv(t)
	env.seedVenue(t, "guvnor", "The Guvnor", "Kampala", 0.3311, 32.5791)
	env.seedVenue(t, "cayenne", "Cayenne", "Kampala", 0.3500, 32.6000)
	// Nairobi is roughly 500 km away; outside any city-scale radius.
	env.seedVenue(t, "faraway", "The Alchemist", "Nairobi", -1.2674, 36.8035)

	rec := env.do(t, "", http.MethodGet, "/venues?lat=0.3163&lng=32.5822&radius=15&sort=distance", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	resp := decode[struct {
		Venues []venue.Result `json:"venues"`
		Count  int            `json:"count"`
	}](t, rec)

	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2 (Nairobi venue excluded)", resp.Count)
	}
	if resp.Venues[0].ID != "guvnor" {
		t.Errorf("nearest venue = %s, want guvnor", resp.Venues[0].ID)
	}
}

func TestListVenuesBadParams(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		path string
	}{
		{name: "lat without lng", path: "/venues?lat=0.3"},
		{name: "non-numeric crowd", path: "/venues?min_crowd=lots"},
		{name: "negative radius", path: "/venues?lat=0.3&lng=32.5&radius=-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, "", http.MethodGet, tt.path, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSetCrowd(t *testing.T) {
	env := newTestEnv(t)
	env.seedVenue(t, "guvnor", "The Guvnor", "Kampala", 0.3311, 32.5791)

	rec := env.do(t, "staff-1", http.MethodPut, "/venues/guvnor/crowd", CrowdRequest{Level: 75})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	v, err := env.venues.GetByID(t.Context(), "guvnor")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if v.CurrentCrowd != 75 {
		t.Errorf("CurrentCrowd = %d, want 75", v.CurrentCrowd)
	}
}

func TestSetCrowdOutOfRange(t *testing.T) {
	env := newTestEnv(t)
	env.seedVenue(t, "guvnor", "The Guvnor", "Kampala", 0.3311, 32.5791)

	rec := env.do(t, "staff-1", http.MethodPut, "/venues/guvnor/crowd", CrowdRequest{Level: 150})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := errorCode(t, rec); code != ErrCodeInvalidRange {
		t.Errorf("error code = %q, want %q", code, ErrCodeInvalidRange)
	}
}

func TestSetCrowdRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	env.seedVenue(t, "guvnor", "The Guvnor", "Kampala", 0.3311, 32.5791)

	rec := env.do(t, "", http.MethodPut, "/venues/guvnor/crowd", CrowdRequest{Level: 10})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRateVenue(t *testing.T) {
	env := newTestEnv(t)
	env.seedVenue(t, "guvnor", "The Guvnor", "Kampala", 0.3311, 32.5791)

	if rec := env.do(t, "user-1", http.MethodPost, "/venues/guvnor/rate", RatingRequest{Score: 5}); rec.Code != http.StatusOK {
		t.Fatalf("first rating status = %d: %s", rec.Code, rec.Body.String())
	}
	rec := env.do(t, "user-2", http.MethodPost, "/venues/guvnor/rate", RatingRequest{Score: 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("second rating status = %d: %s", rec.Code, rec.Body.String())
	}

	resp := decode[struct {
		Average float64 `json:"average_rating"`
		Count   int     `json:"rating_count"`
	}](t, rec)
	if resp.Average != 3.5 || resp.Count != 2 {
		t.Errorf("average = %v count = %d, want 3.5 and 2", resp.Average, resp.Count)
	}

	v, err := env.venues.GetByID(t.Context(), "guvnor")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if v.AverageRating != 3.5 {
		t.Errorf("stored AverageRating = %v, want 3.5", v.AverageRating)
	}
}

func TestRateVenueResubmitReplaces(t *testing.T) {
	env := newTestEnv(t)
	env.seedVenue(t, "guvnor", "The Guvnor", "Kampala", 0.3311, 32.5791)

	env.do(t, "user-1", http.MethodPost, "/venues/guvnor/rate", RatingRequest{Score: 1})
	rec := env.do(t, "user-1", http.MethodPost, "/venues/guvnor/rate", RatingRequest{Score: 5})

	resp := decode[struct {
		Average float64 `json:"average_rating"`
		Count   int     `json:"rating_count"`
	}](t, rec)
	if resp.Average != 5 || resp.Count != 1 {
		t.Errorf("average = %v count = %d, want 5 and 1 after resubmit", resp.Average, resp.Count)
	}
}

func TestRateVenueInvalidScore(t *testing.T) {
	env := newTestEnv(t)
	env.seedVenue(t, "guvnor", "The Guvnor", "Kampala", 0.3311, 32.5791)

	rec := env.do(t, "user-1", http.MethodPost, "/venues/guvnor/rate", RatingRequest{Score: 6})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := errorCode(t, rec); code != ErrCodeInvalidRange {
		t.Errorf("error code = %q, want %q", code, ErrCodeInvalidRange)
	}
}
