package venue

import (
	"context"
	"sync"
	"testing"

	"github.com/onnwee/nightpulse/internal/geo"
)

func newTestVenue(id string, crowd int) *Venue {
	return &Venue{
		ID:           id,
		Name:         "Test " + id,
		Location:     geo.Coordinate{Lat: 0.3163, Lng: 32.5822},
		City:         "Kampala",
		CurrentCrowd: crowd,
	}
}

func TestInMemoryRepositoryAdjustCrowd(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	if err := repo.Insert(ctx, newTestVenue("v1", 40)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		delta int
		want  int
	}{
		{name: "increment", delta: 1, want: 41},
		{name: "decrement", delta: -1, want: 40},
		{name: "clamp at floor", delta: -100, want: 0},
		{name: "increment from floor", delta: 1, want: 1},
		{name: "clamp at ceiling", delta: 500, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.AdjustCrowd(ctx, "v1", tt.delta)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("AdjustCrowd delta %d = %d, want %d", tt.delta, got, tt.want)
			}
		})
	}
}

func TestAdjustCrowdUnknownVenue(t *testing.T) {
	repo := NewInMemoryRepository()
	if _, err := repo.AdjustCrowd(context.Background(), "missing", 1); err != ErrVenueNotFound {
		t.Errorf("error = %v, want ErrVenueNotFound", err)
	}
}

func TestAdjustCrowdBumpsTotalCheckIns(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	if err := repo.Insert(ctx, newTestVenue("v1", 0)); err != nil {
		t.Fatal(err)
	}

	// Increments count toward the lifetime total; decrements do not.
	if _, err := repo.AdjustCrowd(ctx, "v1", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.AdjustCrowd(ctx, "v1", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.AdjustCrowd(ctx, "v1", -1); err != nil {
		t.Fatal(err)
	}

	v, err := repo.GetByID(ctx, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if v.TotalCheckIns != 2 {
		t.Errorf("TotalCheckIns = %d, want 2", v.TotalCheckIns)
	}
}

func TestAdjustCrowdNeverNegativeUnderConcurrentDecrements(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	if err := repo.Insert(ctx, newTestVenue("v1", 5)); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.AdjustCrowd(ctx, "v1", -1)
		}()
	}
	wg.Wait()

	v, err := repo.GetByID(ctx, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if v.CurrentCrowd != 0 {
		t.Errorf("CurrentCrowd = %d, want 0 after adversarial decrements", v.CurrentCrowd)
	}
}

func TestSetCrowdValidatesBeforeMutation(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	if err := repo.Insert(ctx, newTestVenue("v1", 40)); err != nil {
		t.Fatal(err)
	}

	if err := repo.SetCrowd(ctx, "v1", 150); err != ErrInvalidCrowd {
		t.Fatalf("error = %v, want ErrInvalidCrowd", err)
	}

	v, _ := repo.GetByID(ctx, "v1")
	if v.CurrentCrowd != 40 {
		t.Errorf("crowd mutated on invalid input: %d", v.CurrentCrowd)
	}

	if err := repo.SetCrowd(ctx, "v1", 75); err != nil {
		t.Fatal(err)
	}
	v, _ = repo.GetByID(ctx, "v1")
	if v.CurrentCrowd != 75 {
		t.Errorf("CurrentCrowd = %d, want 75", v.CurrentCrowd)
	}
}

func TestUpdatePreservesCounters(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	if err := repo.Insert(ctx, newTestVenue("v1", 10)); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.AdjustCrowd(ctx, "v1", 1); err != nil {
		t.Fatal(err)
	}

	updated := newTestVenue("v1", 0)
	updated.Name = "Renamed"
	if err := repo.Update(ctx, updated); err != nil {
		t.Fatal(err)
	}

	v, _ := repo.GetByID(ctx, "v1")
	if v.Name != "Renamed" {
		t.Errorf("Name = %q, want Renamed", v.Name)
	}
	if v.CurrentCrowd != 11 || v.TotalCheckIns != 1 {
		t.Errorf("counters not preserved: crowd=%d total=%d", v.CurrentCrowd, v.TotalCheckIns)
	}
}

func TestRatingUpsertAndAverage(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRatingRepository()

	if err := repo.Upsert(ctx, &Rating{UserID: "u1", VenueID: "v1", Score: 6}); err != ErrInvalidScore {
		t.Fatalf("error = %v, want ErrInvalidScore", err)
	}

	for _, r := range []*Rating{
		{UserID: "u1", VenueID: "v1", Score: 4},
		{UserID: "u2", VenueID: "v1", Score: 5},
	} {
		if err := repo.Upsert(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	avg, count, err := repo.AverageForVenue(ctx, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 || avg != 4.5 {
		t.Errorf("avg=%v count=%d, want 4.5/2", avg, count)
	}

	// Re-rating replaces, not appends.
	if err := repo.Upsert(ctx, &Rating{UserID: "u1", VenueID: "v1", Score: 2}); err != nil {
		t.Fatal(err)
	}
	avg, count, _ = repo.AverageForVenue(ctx, "v1")
	if count != 2 || avg != 3.5 {
		t.Errorf("after re-rate avg=%v count=%d, want 3.5/2", avg, count)
	}
}

func TestAverageForVenueNoRatings(t *testing.T) {
	avg, count, err := NewInMemoryRatingRepository().AverageForVenue(context.Background(), "v9")
	if err != nil {
		t.Fatal(err)
	}
	if avg != 0 || count != 0 {
		t.Errorf("avg=%v count=%d, want 0/0", avg, count)
	}
}
