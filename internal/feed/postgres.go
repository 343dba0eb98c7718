package feed

import (
	"context"
	"database/sql"
	"log/slog"

	// Postgres driver registration.
	_ "github.com/lib/pq"
)

// PostgresRepository implements Repository backed by PostgreSQL.
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

// Insert stores an entry.
func (r *PostgresRepository) Insert(ctx context.Context, entry *ActivityEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_entries
			(id, type, actor_id, venue_id, event_id, city, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.Type,
		nullable(entry.ActorID), nullable(entry.VenueID), nullable(entry.EventID),
		entry.City, entry.Message, entry.CreatedAt)
	return err
}

// ListByCity returns up to limit entries for a city, newest first.
func (r *PostgresRepository) ListByCity(ctx context.Context, city, typeFilter string, limit int) ([]*ActivityEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, actor_id, venue_id, event_id, city, message, created_at
		FROM activity_entries
		WHERE city = $1 AND ($2 = '' OR type = $2)
		ORDER BY created_at DESC
		LIMIT $3`, city, typeFilter, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListRecent returns up to limit entries across all cities.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]*ActivityEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, actor_id, venue_id, event_id, city, message, created_at
		FROM activity_entries
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]*ActivityEntry, error) {
	var out []*ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		var actor, venue, event sql.NullString
		if err := rows.Scan(&e.ID, &e.Type, &actor, &venue, &event,
			&e.City, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ActorID = actor.String
		e.VenueID = venue.String
		e.EventID = event.String
		out = append(out, &e)
	}
	return out, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
