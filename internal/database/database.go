package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studentcouncil/portal/internal/config"
)

func Connect(cfg *config.Config) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	pool, err := pgxpool.New(context.Background(), dsn)

	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id uuid PRIMARY KEY,
	email text NOT NULL UNIQUE,
	username text NOT NULL UNIQUE,
	display_name text NOT NULL,
	password_hash text NOT NULL,
	role text NOT NULL DEFAULT 'member',
	avatar_url text,
	created_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS meetings (
	id uuid PRIMARY KEY,
	business_key text NOT NULL UNIQUE,
	title text NOT NULL,
	venue text NOT NULL,
	objective text NOT NULL DEFAULT '',
	type text NOT NULL,
	date text NOT NULL,
	start_time text NOT NULL,
	end_time text NOT NULL,
	chairperson uuid NOT NULL REFERENCES users(id),
	minutes_taker uuid REFERENCES users(id),
	attendees jsonb NOT NULL DEFAULT 'null',
	agenda jsonb NOT NULL DEFAULT 'null',
	minutes jsonb NOT NULL DEFAULT 'null',
	status text NOT NULL,
	archived boolean NOT NULL DEFAULT false,
	archived_at timestamptz,
	published boolean NOT NULL DEFAULT false,
	published_at timestamptz,
	published_by uuid,
	version integer NOT NULL DEFAULT 1,
	previous_versions jsonb NOT NULL DEFAULT 'null',
	created_by uuid NOT NULL REFERENCES users(id),
	updated_by uuid,
	created_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS meeting_sequences (
	day text PRIMARY KEY,
	seq integer NOT NULL
);

CREATE TABLE IF NOT EXISTS meeting_archive (
	id uuid PRIMARY KEY,
	business_key text NOT NULL,
	snapshot jsonb NOT NULL,
	deleted_by uuid NOT NULL,
	reason text NOT NULL DEFAULT '',
	size_bytes bigint NOT NULL,
	deleted_at timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS member_performance (
	user_id uuid PRIMARY KEY REFERENCES users(id),
	meetings_attended integer NOT NULL DEFAULT 0,
	last_attended_at timestamptz,
	updated_at timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS discussion_messages (
	id uuid PRIMARY KEY,
	meeting_id uuid NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
	sender_id uuid NOT NULL REFERENCES users(id),
	content text NOT NULL,
	edited_at timestamptz,
	deleted_at timestamptz,
	created_at timestamptz NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_meetings_status ON meetings(status);
CREATE INDEX IF NOT EXISTS idx_meetings_date ON meetings(date);
CREATE INDEX IF NOT EXISTS idx_discussion_meeting ON discussion_messages(meeting_id, created_at);
`

// EnsureSchema creates missing tables. Statements are idempotent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}
