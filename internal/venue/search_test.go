package venue

import (
	"testing"
	"time"

	"github.com/onnwee/nightpulse/internal/geo"
)

func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }

func searchFixture() []*Venue {
	open, _ := ParseTimeOfDay("18:00")
	closeLate, _ := ParseTimeOfDay("02:00")
	return []*Venue{
		{
			ID: "guvnor", Name: "Guvnor", City: "Kampala",
			Location:    geo.Coordinate{Lat: 0.3300, Lng: 32.5700},
			Genre:       GenreElectronic, PriceTier: PriceModerate, VibeLevel: VibeHigh,
			OpeningTime: open, ClosingTime: closeLate,
			CurrentCrowd: 80, AverageRating: 4.5,
		},
		{
			ID: "cayenne", Name: "Cayenne", City: "Kampala",
			Location:    geo.Coordinate{Lat: 0.3500, Lng: 32.6000},
			Genre:       GenreAfrobeat, PriceTier: PriceExpensive, VibeLevel: VibeMedium,
			OpeningTime: open, ClosingTime: closeLate,
			CurrentCrowd: 45, AverageRating: 4.0,
		},
		{
			ID: "faraway", Name: "Faraway Club", City: "Nairobi",
			Location:    geo.Coordinate{Lat: -1.2921, Lng: 36.8219},
			Genre:       GenreElectronic, PriceTier: PriceCheap, VibeLevel: VibeChill,
			OpeningTime: open, ClosingTime: closeLate,
			CurrentCrowd: 20, AverageRating: 3.0,
		},
	}
}

func TestSearchProximityFiltersAndSortsByDistance(t *testing.T) {
	center := geo.Coordinate{Lat: 0.3163, Lng: 32.5822}
	results := Search(searchFixture(), Filters{Center: &center, RadiusKm: 10})

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (Nairobi venue excluded)", len(results))
	}
	if results[0].ID != "guvnor" || results[1].ID != "cayenne" {
		t.Errorf("order = [%s, %s], want [guvnor, cayenne]", results[0].ID, results[1].ID)
	}
	if results[0].DistanceKm <= 0 || results[0].DistanceKm > results[1].DistanceKm {
		t.Errorf("distances not ascending: %v, %v", results[0].DistanceKm, results[1].DistanceKm)
	}
}

func TestSearchSmartFilters(t *testing.T) {
	venues := searchFixture()

	tests := []struct {
		name    string
		filters Filters
		wantIDs []string
	}{
		{name: "genre", filters: Filters{Genre: GenreAfrobeat}, wantIDs: []string{"cayenne"}},
		{name: "price tier", filters: Filters{PriceTier: PriceCheap}, wantIDs: []string{"faraway"}},
		{name: "vibe", filters: Filters{VibeLevel: VibeHigh}, wantIDs: []string{"guvnor"}},
		{name: "min crowd", filters: Filters{MinCrowd: intPtr(50)}, wantIDs: []string{"guvnor"}},
		{name: "max crowd", filters: Filters{MaxCrowd: intPtr(30)}, wantIDs: []string{"faraway"}},
		{name: "min rating", filters: Filters{MinRating: floatPtr(4.2)}, wantIDs: []string{"guvnor"}},
		{
			name:    "live events set",
			filters: Filters{LiveVenueIDs: map[string]bool{"cayenne": true}},
			wantIDs: []string{"cayenne"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(venues, tt.filters)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d results, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("result[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestSearchOpenNow(t *testing.T) {
	venues := searchFixture()

	// At 23:00 all fixture venues (18:00-02:00) are open.
	night := time.Date(2025, 6, 14, 23, 0, 0, 0, time.UTC)
	if got := Search(venues, Filters{OpenNow: true, Now: night}); len(got) != 3 {
		t.Errorf("at night got %d open venues, want 3", len(got))
	}

	// At 14:00 all are closed.
	afternoon := time.Date(2025, 6, 14, 14, 0, 0, 0, time.UTC)
	if got := Search(venues, Filters{OpenNow: true, Now: afternoon}); len(got) != 0 {
		t.Errorf("in the afternoon got %d open venues, want 0", len(got))
	}
}

func TestSearchSortKeys(t *testing.T) {
	venues := searchFixture()

	byCrowd := Search(venues, Filters{SortBy: SortByCrowd})
	if byCrowd[0].ID != "guvnor" || byCrowd[2].ID != "faraway" {
		t.Errorf("crowd sort order wrong: %s..%s", byCrowd[0].ID, byCrowd[2].ID)
	}

	byRating := Search(venues, Filters{SortBy: SortByRating})
	if byRating[0].ID != "guvnor" || byRating[2].ID != "faraway" {
		t.Errorf("rating sort order wrong: %s..%s", byRating[0].ID, byRating[2].ID)
	}
}
