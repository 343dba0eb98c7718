package venue

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	// Postgres driver registration.
	_ "github.com/lib/pq"
)

// PostgresRepository implements Repository backed by PostgreSQL.
//
// Crowd adjustment is a single UPDATE with LEAST/GREATEST clamping so
// the counter mutation is atomic at the storage layer.
type PostgresRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sql.DB, logger *slog.Logger) *PostgresRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRepository{db: db, logger: logger}
}

// Insert stores a new venue after validation.
func (r *PostgresRepository) Insert(ctx context.Context, v *Venue) error {
	if err := v.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO venues (
			id, name, description, latitude, longitude, address, city, country,
			genre, price_tier, vibe_level, opening_time, closing_time,
			current_crowd, average_rating, total_checkins, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW())`,
		v.ID, v.Name, v.Description, v.Location.Lat, v.Location.Lng,
		v.Address, v.City, v.Country, v.Genre, v.PriceTier, v.VibeLevel,
		v.OpeningTime.String(), v.ClosingTime.String(),
		v.CurrentCrowd, v.AverageRating, v.TotalCheckIns,
	)
	return err
}

// Update replaces descriptive fields; counters are left untouched.
func (r *PostgresRepository) Update(ctx context.Context, v *Venue) error {
	if err := v.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE venues SET
			name = $2, description = $3, latitude = $4, longitude = $5,
			address = $6, city = $7, country = $8, genre = $9,
			price_tier = $10, vibe_level = $11,
			opening_time = $12, closing_time = $13, last_updated = NOW()
		WHERE id = $1`,
		v.ID, v.Name, v.Description, v.Location.Lat, v.Location.Lng,
		v.Address, v.City, v.Country, v.Genre, v.PriceTier, v.VibeLevel,
		v.OpeningTime.String(), v.ClosingTime.String(),
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetByID retrieves a venue by ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Venue, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, latitude, longitude, address, city, country,
		       genre, price_tier, vibe_level, opening_time, closing_time,
		       current_crowd, average_rating, total_checkins, last_updated
		FROM venues WHERE id = $1`, id)
	return scanVenue(row)
}

// List returns all venues.
func (r *PostgresRepository) List(ctx context.Context) ([]*Venue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, latitude, longitude, address, city, country,
		       genre, price_tier, vibe_level, opening_time, closing_time,
		       current_crowd, average_rating, total_checkins, last_updated
		FROM venues`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// AdjustCrowd applies a clamped delta in a single atomic UPDATE.
func (r *PostgresRepository) AdjustCrowd(ctx context.Context, id string, delta int) (int, error) {
	var crowd int
	err := r.db.QueryRowContext(ctx, `
		UPDATE venues SET
			current_crowd = LEAST($3, GREATEST($2, current_crowd + $4)),
			total_checkins = total_checkins + CASE WHEN $4 > 0 THEN 1 ELSE 0 END,
			last_updated = NOW()
		WHERE id = $1
		RETURNING current_crowd`,
		id, MinCrowd, MaxCrowd, delta,
	).Scan(&crowd)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrVenueNotFound
	}
	if err != nil {
		return 0, err
	}
	return crowd, nil
}

// SetCrowd sets the crowd level directly, validating first.
func (r *PostgresRepository) SetCrowd(ctx context.Context, id string, level int) error {
	if !ValidCrowd(level) {
		return ErrInvalidCrowd
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE venues SET current_crowd = $2, last_updated = NOW() WHERE id = $1`,
		id, level)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetAverageRating stores a recomputed running average.
func (r *PostgresRepository) SetAverageRating(ctx context.Context, id string, avg float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE venues SET average_rating = $2, last_updated = NOW() WHERE id = $1`,
		id, avg)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanVenue.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanVenue(row rowScanner) (*Venue, error) {
	var v Venue
	var opening, closing string
	err := row.Scan(
		&v.ID, &v.Name, &v.Description, &v.Location.Lat, &v.Location.Lng,
		&v.Address, &v.City, &v.Country, &v.Genre, &v.PriceTier, &v.VibeLevel,
		&opening, &closing,
		&v.CurrentCrowd, &v.AverageRating, &v.TotalCheckIns, &v.LastUpdated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, err
	}
	if v.OpeningTime, err = ParseTimeOfDay(opening); err != nil {
		return nil, err
	}
	if v.ClosingTime, err = ParseTimeOfDay(closing); err != nil {
		return nil, err
	}
	return &v, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVenueNotFound
	}
	return nil
}
