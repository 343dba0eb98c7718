package mapview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/onnwee/nightpulse/internal/event"
	"github.com/onnwee/nightpulse/internal/feed"
	"github.com/onnwee/nightpulse/internal/geo"
	"github.com/onnwee/nightpulse/internal/venue"
)

var kampala = geo.Coordinate{Lat: 0.3163, Lng: 32.5822}

// fixedCounter returns a canned check-in count per venue.
type fixedCounter map[string]int

func (c fixedCounter) RecentCheckIns(ctx context.Context, venueID string, window time.Duration) (int, error) {
	return c[venueID], nil
}

// failingCounter always errors.
type failingCounter struct{}

func (failingCounter) RecentCheckIns(ctx context.Context, venueID string, window time.Duration) (int, error) {
	return 0, errors.New("counter down")
}

// failingActivity always errors.
type failingActivity struct{}

func (failingActivity) Recent(ctx context.Context, limit int) ([]*feed.ActivityEntry, error) {
	return nil, errors.New("feed down")
}

func seedVenue(t *testing.T, repo venue.Repository, id string, lat, lng float64, crowd int) {
	t.Helper()
	err := repo.Insert(context.Background(), &venue.Venue{
		ID:           id,
		Name:         id,
		Location:     geo.Coordinate{Lat: lat, Lng: lng},
		City:         "Kampala",
		Genre:        venue.GenreAfrobeat,
		PriceTier:    venue.PriceModerate,
		VibeLevel:    venue.VibeChill,
		CurrentCrowd: crowd,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func seedEvent(t *testing.T, repo event.Repository, id string, startsAt, endsAt time.Time) {
	t.Helper()
	err := repo.Insert(context.Background(), &event.Event{
		ID:       id,
		VenueID:  "guvnor",
		Name:     id,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Category: event.CategoryMusic,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestSnapshotVenuesFilteredAndSorted(t *testing.T) {
	venues := venue.NewInMemoryRepository()
	seedVenue(t, venues, "cayenne", 0.35, 32.60, 10)
	seedVenue(t, venues, "guvnor", 0.33, 32.57, 40)
	seedVenue(t, venues, "faraway", -1.29, 36.82, 5) // Nairobi

	agg := NewAggregator(venues, event.NewInMemoryRepository(), nil, nil, nil)
	snap, err := agg.Snapshot(context.Background(), kampala, 0)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	if snap.RadiusKm != DefaultRadiusKm {
		t.Errorf("RadiusKm = %v, want default %v", snap.RadiusKm, DefaultRadiusKm)
	}
	if len(snap.Venues) != 2 {
		t.Fatalf("got %d venues, want 2 within radius", len(snap.Venues))
	}
	if snap.Venues[0].ID != "guvnor" || snap.Venues[1].ID != "cayenne" {
		t.Errorf("venue order = [%s, %s], want closest first [guvnor, cayenne]",
			snap.Venues[0].ID, snap.Venues[1].ID)
	}
	if snap.Venues[0].DistanceKm >= snap.Venues[1].DistanceKm {
		t.Errorf("distances not ascending: %v then %v",
			snap.Venues[0].DistanceKm, snap.Venues[1].DistanceKm)
	}
	for _, m := range snap.Venues {
		if len(m.LocalityCell) != geo.CellPrecision {
			t.Errorf("venue %s locality cell %q, want %d chars", m.ID, m.LocalityCell, geo.CellPrecision)
		}
	}
}

func TestSnapshotEventsByTimeNotRadius(t *testing.T) {
	events := event.NewInMemoryRepository()
	now := time.Now()
	seedEvent(t, events, "live-now", now.Add(-time.Hour), now.Add(2*time.Hour))
	seedEvent(t, events, "in-three-days", now.Add(72*time.Hour), now.Add(76*time.Hour))
	seedEvent(t, events, "next-month", now.Add(31*24*time.Hour), now.Add(31*24*time.Hour+4*time.Hour))
	seedEvent(t, events, "ended", now.Add(-5*time.Hour), now.Add(-2*time.Hour))

	agg := NewAggregator(venue.NewInMemoryRepository(), events, nil, nil, nil)
	snap, err := agg.Snapshot(context.Background(), kampala, 5)
	if err != nil {
		t.Fatal(err)
	}

	got := map[string]bool{}
	for _, e := range snap.Events {
		got[e.ID] = true
	}
	if !got["live-now"] || !got["in-three-days"] {
		t.Errorf("events = %v, want live-now and in-three-days included", got)
	}
	if got["next-month"] || got["ended"] {
		t.Errorf("events = %v, want next-month and ended excluded", got)
	}
}

func TestSnapshotTrendingRanking(t *testing.T) {
	venues := venue.NewInMemoryRepository()
	// Six venues so the top-5 cut is observable. quiet has the fewest
	// recent check-ins and loses the last slot.
	seedVenue(t, venues, "guvnor", 0.33, 32.57, 40)
	seedVenue(t, venues, "cayenne", 0.35, 32.60, 80)
	seedVenue(t, venues, "levels", 0.32, 32.58, 20)
	seedVenue(t, venues, "sky", 0.31, 32.59, 60)
	seedVenue(t, venues, "alchemist", 0.30, 32.58, 30)
	seedVenue(t, venues, "quiet", 0.34, 32.59, 90)

	counter := fixedCounter{
		"guvnor": 12, "cayenne": 12, "levels": 8,
		"sky": 5, "alchemist": 3, "quiet": 1,
	}

	agg := NewAggregator(venues, event.NewInMemoryRepository(), nil, counter, nil)
	snap, err := agg.Snapshot(context.Background(), kampala, 0)
	if err != nil {
		t.Fatal(err)
	}

	if len(snap.Trending) != TrendingSize {
		t.Fatalf("got %d trending venues, want %d", len(snap.Trending), TrendingSize)
	}
	// Tie at 12 check-ins broken by crowd: cayenne (80) over guvnor (40).
	wantOrder := []string{"cayenne", "guvnor", "levels", "sky", "alchemist"}
	for i, want := range wantOrder {
		if snap.Trending[i].ID != want {
			t.Errorf("trending[%d] = %s, want %s", i, snap.Trending[i].ID, want)
		}
	}
}

func TestSnapshotIncludesRecentActivity(t *testing.T) {
	feedRepo := feed.NewInMemoryRepository()
	engine := feed.NewEngine(feedRepo, nil, "")
	for i := 0; i < 15; i++ {
		if _, err := engine.Append(context.Background(), &feed.ActivityEntry{
			Type: feed.TypeCheckIn, City: "Kampala", Message: "x",
		}); err != nil {
			t.Fatal(err)
		}
	}

	agg := NewAggregator(venue.NewInMemoryRepository(), event.NewInMemoryRepository(), engine, nil, nil)
	snap, err := agg.Snapshot(context.Background(), kampala, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.RecentActivity) != RecentActivitySize {
		t.Errorf("got %d activity entries, want %d", len(snap.RecentActivity), RecentActivitySize)
	}
}

func TestSnapshotDegradesOnSourceFailure(t *testing.T) {
	venues := venue.NewInMemoryRepository()
	seedVenue(t, venues, "guvnor", 0.33, 32.57, 40)

	agg := NewAggregator(venues, event.NewInMemoryRepository(), failingActivity{}, failingCounter{}, nil)
	snap, err := agg.Snapshot(context.Background(), kampala, 0)
	if err != nil {
		t.Fatalf("Snapshot() error = %v, want graceful degradation", err)
	}

	if len(snap.Venues) != 1 {
		t.Errorf("venues section = %d entries, want 1 (healthy source)", len(snap.Venues))
	}
	if snap.RecentActivity == nil || len(snap.RecentActivity) != 0 {
		t.Errorf("activity section = %v, want empty", snap.RecentActivity)
	}
	if snap.Trending == nil || len(snap.Trending) != 0 {
		t.Errorf("trending section = %v, want empty", snap.Trending)
	}
}
