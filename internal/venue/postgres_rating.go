package venue

import (
	"context"
	"database/sql"
	"log/slog"
)

// PostgresRatingRepository implements RatingRepository backed by
// PostgreSQL with a unique (user_id, venue_id) constraint.
type PostgresRatingRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRatingRepository creates a new PostgresRatingRepository.
func NewPostgresRatingRepository(db *sql.DB, logger *slog.Logger) *PostgresRatingRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRatingRepository{db: db, logger: logger}
}

// Upsert creates or replaces the (user, venue) rating.
func (r *PostgresRatingRepository) Upsert(ctx context.Context, rating *Rating) error {
	if rating.Score < MinScore || rating.Score > MaxScore {
		return ErrInvalidScore
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratings (user_id, venue_id, score, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, venue_id) DO UPDATE SET score = $3, created_at = NOW()`,
		rating.UserID, rating.VenueID, rating.Score,
	)
	return err
}

// AverageForVenue returns the mean score and rating count for a venue.
// A venue with no ratings averages zero.
func (r *PostgresRatingRepository) AverageForVenue(ctx context.Context, venueID string) (float64, int, error) {
	var avg float64
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(score), 0), COUNT(*) FROM ratings WHERE venue_id = $1`,
		venueID,
	).Scan(&avg, &count)
	if err != nil {
		return 0, 0, err
	}
	return avg, count, nil
}
