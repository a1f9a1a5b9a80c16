package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// ConnectPostgres opens a pooled connection to PostgreSQL, pings it and
// creates the schema.
func ConnectPostgres(ctx context.Context, postgresURI string) (*sql.DB, error) {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := InitPostgresTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init postgres tables: %w", err)
	}
	return db, nil
}

// schema lists the DDL applied at startup. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email VARCHAR(254) NOT NULL UNIQUE,
		name VARCHAR(100) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		roles TEXT[] NOT NULL DEFAULT '{user}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,

	// seq preserves insertion order for newest-first listing
	`CREATE TABLE IF NOT EXISTS decisions (
		seq BIGSERIAL UNIQUE,
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		decision_text TEXT NOT NULL,
		reasoning TEXT NOT NULL,
		emotion VARCHAR(20) NOT NULL CHECK (emotion IN ('confident', 'anxious', 'neutral', 'excited', 'uncertain')),
		category VARCHAR(20) NOT NULL CHECK (category IN ('career', 'relationships', 'finances', 'health')),
		expected_outcome TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		reviewed_at TIMESTAMPTZ,
		actual_outcome TEXT,
		bias_detected TEXT[],
		CHECK ((reviewed_at IS NULL) = (actual_outcome IS NULL))
	)`,

	`CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_decisions_user_seq ON decisions(user_id, seq DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_decisions_unreviewed ON decisions(user_id, created_at) WHERE reviewed_at IS NULL`,
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables(ctx context.Context, db *sql.DB) error {
	for _, query := range schema {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}
