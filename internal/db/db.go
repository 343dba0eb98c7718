// Package db provides database connection handling for the API server.
package db

import (
	"database/sql"
	"time"

	// Postgres driver registration.
	_ "github.com/lib/pq"
)

// Pool sizing tuned for a single API replica.
const (
	MaxOpenConns    = 25
	MaxIdleConns    = 5
	ConnMaxLifetime = 5 * time.Minute
)

// Open opens a Postgres connection pool. The connection is not
// verified here; callers ping via the health checker.
func Open(databaseURL string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(MaxOpenConns)
	conn.SetMaxIdleConns(MaxIdleConns)
	conn.SetConnMaxLifetime(ConnMaxLifetime)
	return conn, nil
}
