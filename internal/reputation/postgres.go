package reputation

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	// Postgres driver registration.
	_ "github.com/lib/pq"
)

// PostgresRepository implements Repository backed by PostgreSQL.
// The upsert increment is a single statement, so the database is the
// serialization point and no application-side locking is needed.
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

// AddPoints atomically increments the user's total and returns it.
func (r *PostgresRepository) AddPoints(ctx context.Context, userID string, points int) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO reputation_accounts (user_id, points)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET points = reputation_accounts.points + $2
		RETURNING points`,
		userID, points).Scan(&total)
	return total, err
}

// GetPoints returns the user's total, or ErrAccountNotFound.
func (r *PostgresRepository) GetPoints(ctx context.Context, userID string) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT points FROM reputation_accounts WHERE user_id = $1`,
		userID).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	return total, err
}
