// Package db provides PostgreSQL storage for professional records.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// EnsureSchema creates the professionals table and its indexes if they do
// not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS professionals (
			unique_id    UUID PRIMARY KEY,
			first_name   TEXT NOT NULL DEFAULT '',
			last_name    TEXT NOT NULL DEFAULT '',
			job_title    TEXT NOT NULL DEFAULT '',
			company      TEXT NOT NULL DEFAULT '',
			city         TEXT NOT NULL DEFAULT '',
			source       TEXT NOT NULL,
			identity_key TEXT NOT NULL,
			attributes   JSONB,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create professionals table: %w", err)
	}

	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_professionals_identity ON professionals (identity_key)`,
		`CREATE INDEX IF NOT EXISTS idx_professionals_city ON professionals (city)`,
		`CREATE INDEX IF NOT EXISTS idx_professionals_company ON professionals (company)`,
	}
	for _, stmt := range indexes {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}
