package event

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
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

// Insert stores a new event after validation.
func (r *PostgresRepository) Insert(ctx context.Context, e *Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (
			id, venue_id, name, description, starts_at, ends_at,
			category, price_tier, expected_attendees, actual_attendees,
			created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())`,
		e.ID, e.VenueID, e.Name, e.Description, e.StartsAt, e.EndsAt,
		e.Category, e.PriceTier, e.ExpectedAttendees, e.ActualAttendees,
		e.CreatedBy,
	)
	return err
}

// GetByID retrieves an event by ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, venue_id, name, description, starts_at, ends_at,
		       category, price_tier, expected_attendees, actual_attendees,
		       created_by, created_at, updated_at
		FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

// List returns all events ordered by start time ascending.
func (r *PostgresRepository) List(ctx context.Context) ([]*Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, venue_id, name, description, starts_at, ends_at,
		       category, price_tier, expected_attendees, actual_attendees,
		       created_by, created_at, updated_at
		FROM events ORDER BY starts_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SetActualAttendees stores the rolled-up GOING count.
func (r *PostgresRepository) SetActualAttendees(ctx context.Context, id string, count int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET actual_attendees = $2, updated_at = NOW() WHERE id = $1`,
		id, count)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanEvent.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var e Event
	err := row.Scan(
		&e.ID, &e.VenueID, &e.Name, &e.Description, &e.StartsAt, &e.EndsAt,
		&e.Category, &e.PriceTier, &e.ExpectedAttendees, &e.ActualAttendees,
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// PostgresRSVPRepository implements RSVPRepository backed by PostgreSQL
// with a unique (event_id, user_id) constraint.
type PostgresRSVPRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRSVPRepository creates a new PostgresRSVPRepository.
func NewPostgresRSVPRepository(db *sql.DB, logger *slog.Logger) *PostgresRSVPRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRSVPRepository{db: db, logger: logger}
}

// Upsert creates or updates the (user, event) RSVP.
func (r *PostgresRSVPRepository) Upsert(ctx context.Context, rsvp *RSVP) error {
	if !ValidRSVPStatus(rsvp.Status) {
		return ErrInvalidRSVPStatus
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rsvps (event_id, user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (event_id, user_id) DO UPDATE SET status = $3, updated_at = NOW()`,
		rsvp.EventID, rsvp.UserID, rsvp.Status,
	)
	return err
}

// GetByEventAndUser retrieves an RSVP by its (event, user) key.
func (r *PostgresRSVPRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*RSVP, error) {
	var rsvp RSVP
	err := r.db.QueryRowContext(ctx, `
		SELECT event_id, user_id, status, created_at, updated_at
		FROM rsvps WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	).Scan(&rsvp.EventID, &rsvp.UserID, &rsvp.Status, &rsvp.CreatedAt, &rsvp.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRSVPNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rsvp, nil
}

// ListByUser returns all RSVPs for a user, most recent first.
func (r *PostgresRSVPRepository) ListByUser(ctx context.Context, userID string) ([]*RSVP, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT event_id, user_id, status, created_at, updated_at
		FROM rsvps WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*RSVP
	for rows.Next() {
		var rsvp RSVP
		if err := rows.Scan(&rsvp.EventID, &rsvp.UserID, &rsvp.Status, &rsvp.CreatedAt, &rsvp.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &rsvp)
	}
	return out, rows.Err()
}

// CountGoing returns the number of GOING RSVPs for an event.
func (r *PostgresRSVPRepository) CountGoing(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rsvps WHERE event_id = $1 AND status = $2`,
		eventID, RSVPGoing,
	).Scan(&count)
	return count, err
}
