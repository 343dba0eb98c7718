package presence

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	// Postgres driver registration.
	_ "github.com/lib/pq"
)

// PostgresRepository implements Repository backed by PostgreSQL.
//
// Deactivation is a conditional UPDATE (WHERE active) so a racing
// transition observes zero affected rows instead of double-applying,
// and Replace runs in a single transaction.
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

// GetActiveByUser returns the user's active check-in, or (nil, nil).
func (r *PostgresRepository) GetActiveByUser(ctx context.Context, userID string) (*CheckIn, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, venue_id, created_at, active
		FROM check_ins WHERE user_id = $1 AND active`, userID)

	ci, err := scanCheckIn(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return ci, err
}

// GetActiveByUserAndVenue returns the active check-in for the pair.
func (r *PostgresRepository) GetActiveByUserAndVenue(ctx context.Context, userID, venueID string) (*CheckIn, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, venue_id, created_at, active
		FROM check_ins WHERE user_id = $1 AND venue_id = $2 AND active`,
		userID, venueID)

	ci, err := scanCheckIn(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveCheckIn
	}
	return ci, err
}

// Create inserts a new active check-in.
func (r *PostgresRepository) Create(ctx context.Context, ci *CheckIn) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO check_ins (id, user_id, venue_id, created_at, active)
		VALUES ($1, $2, $3, $4, TRUE)`,
		ci.ID, ci.UserID, ci.VenueID, ci.CreatedAt)
	return err
}

// Deactivate conditionally flips a check-in to inactive.
func (r *PostgresRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE check_ins SET active = FALSE WHERE id = $1 AND active`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCheckInInactive
	}
	return nil
}

// Replace atomically deactivates oldID and inserts the new check-in.
func (r *PostgresRepository) Replace(ctx context.Context, oldID string, ci *CheckIn) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.logger.Error("rollback failed", "error", rbErr)
			}
		}
	}()

	if oldID != "" {
		var res sql.Result
		res, err = tx.ExecContext(ctx,
			`UPDATE check_ins SET active = FALSE WHERE id = $1 AND active`, oldID)
		if err != nil {
			return err
		}
		var n int64
		if n, err = res.RowsAffected(); err != nil {
			return err
		}
		if n == 0 {
			err = ErrCheckInInactive
			return err
		}
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO check_ins (id, user_id, venue_id, created_at, active)
		VALUES ($1, $2, $3, $4, TRUE)`,
		ci.ID, ci.UserID, ci.VenueID, ci.CreatedAt); err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// ListActiveByVenue returns active check-ins at a venue, newest first.
func (r *PostgresRepository) ListActiveByVenue(ctx context.Context, venueID string) ([]*CheckIn, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, venue_id, created_at, active
		FROM check_ins WHERE venue_id = $1 AND active
		ORDER BY created_at DESC`, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*CheckIn
	for rows.Next() {
		ci, err := scanCheckIn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ci)
	}
	return out, rows.Err()
}

// CountSince counts check-ins created at a venue after the instant.
func (r *PostgresRepository) CountSince(ctx context.Context, venueID string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM check_ins WHERE venue_id = $1 AND created_at > $2`,
		venueID, since).Scan(&count)
	return count, err
}

// ListActiveOlderThan returns active check-ins created before cutoff.
func (r *PostgresRepository) ListActiveOlderThan(ctx context.Context, cutoff time.Time) ([]*CheckIn, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, venue_id, created_at, active
		FROM check_ins WHERE active AND created_at < $1`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*CheckIn
	for rows.Next() {
		ci, err := scanCheckIn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ci)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheckIn(row rowScanner) (*CheckIn, error) {
	var ci CheckIn
	if err := row.Scan(&ci.ID, &ci.UserID, &ci.VenueID, &ci.CreatedAt, &ci.Active); err != nil {
		return nil, err
	}
	return &ci, nil
}
