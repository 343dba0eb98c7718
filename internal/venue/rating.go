package venue

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"
)

// Rating score bounds (1-5 stars).
const (
	MinScore = 1
	MaxScore = 5
)

// ErrInvalidScore is returned for scores outside [1, 5].
var ErrInvalidScore = errors.New("rating score must be between 1 and 5")

// Rating is one user's score for a venue. A user rates a venue at most
// once; resubmitting replaces the previous score.
type Rating struct {
	UserID    string    `json:"user_id"`
	VenueID   string    `json:"venue_id"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingRepository stores per-user venue ratings and derives the
// running average the venue record carries.
type RatingRepository interface {
	// Upsert stores or replaces the (user, venue) rating.
	Upsert(ctx context.Context, rating *Rating) error

	// AverageForVenue returns the mean score and rating count for a
	// venue. A venue with no ratings returns (0, 0, nil).
	AverageForVenue(ctx context.Context, venueID string) (float64, int, error)
}

// InMemoryRatingRepository is a mutex-guarded in-memory RatingRepository.
type InMemoryRatingRepository struct {
	mu      sync.RWMutex
	ratings map[string]map[string]*Rating // venueID -> userID -> rating
}

// NewInMemoryRatingRepository creates an empty rating repository.
func NewInMemoryRatingRepository() *InMemoryRatingRepository {
	return &InMemoryRatingRepository{ratings: make(map[string]map[string]*Rating)}
}

// Upsert stores or replaces the (user, venue) rating.
func (r *InMemoryRatingRepository) Upsert(ctx context.Context, rating *Rating) error {
	if rating.Score < MinScore || rating.Score > MaxScore {
		return ErrInvalidScore
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	byUser := r.ratings[rating.VenueID]
	if byUser == nil {
		byUser = make(map[string]*Rating)
		r.ratings[rating.VenueID] = byUser
	}

	cp := *rating
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	byUser[cp.UserID] = &cp
	return nil
}

// AverageForVenue returns the mean score rounded to two decimals.
func (r *InMemoryRatingRepository) AverageForVenue(ctx context.Context, venueID string) (float64, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byUser := r.ratings[venueID]
	if len(byUser) == 0 {
		return 0, 0, nil
	}

	var sum int
	for _, rating := range byUser {
		sum += rating.Score
	}
	avg := float64(sum) / float64(len(byUser))
	return math.Round(avg*100) / 100, len(byUser), nil
}
