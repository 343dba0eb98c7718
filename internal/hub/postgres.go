package hub

import (
	"context"
	"database/sql"
	"log/slog"

	// Postgres driver registration.
	_ "github.com/lib/pq"
)

// PostgresChatRepository implements ChatRepository backed by
// PostgreSQL.
type PostgresChatRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresChatRepository creates a new PostgresChatRepository.
func NewPostgresChatRepository(db *sql.DB, logger *slog.Logger) *PostgresChatRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresChatRepository{db: db, logger: logger}
}

// Insert stores a message.
func (r *PostgresChatRepository) Insert(ctx context.Context, msg *ChatMessage) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, venue_id, author_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.VenueID, msg.AuthorID, msg.Text, msg.CreatedAt)
	return err
}

// ListByVenue returns up to limit messages for a venue, newest first.
func (r *PostgresChatRepository) ListByVenue(ctx context.Context, venueID string, limit int) ([]*ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, venue_id, author_id, text, created_at
		FROM chat_messages
		WHERE venue_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, venueID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.VenueID, &m.AuthorID, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
