package common

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// NewDB connects to the database identified by the DSN and verifies the
// connection before returning it.
func NewDB(dsn string, maxOpenConns, maxIdleConns int, maxIdleTime time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxIdleTime(maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// CloseDB closes the database connection
func CloseDB(db *sql.DB) error {
	return db.Close()
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id bigserial PRIMARY KEY,
		email text NOT NULL UNIQUE,
		name text NOT NULL,
		password bytea NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id bigserial PRIMARY KEY,
		author_id bigint NOT NULL REFERENCES users (id),
		title text NOT NULL UNIQUE,
		subtitle text NOT NULL,
		date text NOT NULL,
		body text NOT NULL,
		img_url text NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id bigserial PRIMARY KEY,
		author_id bigint NOT NULL REFERENCES users (id),
		post_id bigint NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
		text text NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		hash bytea PRIMARY KEY,
		user_id bigint NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		expiry timestamptz NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS comments_post_id_idx ON comments (post_id)`,
	`CREATE INDEX IF NOT EXISTS sessions_user_id_idx ON sessions (user_id)`,
}

// CreateSchema ensures all tables exist. Every statement is IF NOT EXISTS so
// it is safe to run on each startup.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
