package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"go.uber.org/zap"

	"go-social/internal/db/zapadapter"
)

type Database struct {
	Pool *pgxpool.Pool
}

// NewDatabase opens a pgx pool, routes statement tracing into logger and
// verifies the connection.
func NewDatabase(ctx context.Context, dsn string, logger *zap.Logger) (*Database, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 25
	cfg.MaxConnLifetime = 5 * time.Minute
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	cfg.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   zapadapter.NewLogger(logger),
		LogLevel: tracelog.LogLevelWarn,
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Database{Pool: pool}, nil
}

func (d *Database) Close() {
	d.Pool.Close()
}

// InTx runs fn inside a transaction on pool. The transaction commits when fn
// returns nil and rolls back otherwise.
func InTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	return pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{}, fn)
}

// AutoMigrate creates every table if it does not exist yet. Dependent rows
// reference their owners with ON DELETE CASCADE, so deleting a post or a
// user removes everything hanging off it in the same statement.
func (d *Database) AutoMigrate(ctx context.Context) error {
	for _, query := range schema {
		if _, err := d.Pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(50) UNIQUE NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL,
		name VARCHAR(50) NOT NULL DEFAULT '',
		surname VARCHAR(50) NOT NULL DEFAULT '',
		avatar BYTEA,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS posts (
		id BIGSERIAL PRIMARY KEY,
		text TEXT NOT NULL,
		author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id)`,

	`CREATE TABLE IF NOT EXISTS comments (
		id BIGSERIAL PRIMARY KEY,
		text TEXT NOT NULL,
		author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id)`,

	`CREATE TABLE IF NOT EXISTS voting_variants (
		id BIGSERIAL PRIMARY KEY,
		text VARCHAR(100) NOT NULL,
		post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_voting_variants_post ON voting_variants(post_id)`,

	`CREATE TABLE IF NOT EXISTS votes (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		variant_id BIGINT NOT NULL REFERENCES voting_variants(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_votes_variant_user ON votes(variant_id, user_id)`,

	`CREATE TABLE IF NOT EXISTS likes (
		id BIGSERIAL PRIMARY KEY,
		author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		UNIQUE (author_id, post_id)
	)`,

	`CREATE TABLE IF NOT EXISTS media_in_post (
		id BIGSERIAL PRIMARY KEY,
		post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		image BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS complaints_about_post (
		id BIGSERIAL PRIMARY KEY,
		author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS complaints_about_comment (
		id BIGSERIAL PRIMARY KEY,
		author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		comment_id BIGINT NOT NULL REFERENCES comments(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS friendship (
		id BIGSERIAL PRIMARY KEY,
		first_friend_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		second_friend_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (first_friend_id <> second_friend_id)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_friendship_pair ON friendship(
		LEAST(first_friend_id, second_friend_id), GREATEST(first_friend_id, second_friend_id)
	)`,

	`CREATE TABLE IF NOT EXISTS friendship_requests (
		id BIGSERIAL PRIMARY KEY,
		author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		getter_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (author_id, getter_id)
	)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id BIGSERIAL PRIMARY KEY,
		text TEXT NOT NULL,
		author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		getter_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(
		LEAST(author_id, getter_id), GREATEST(author_id, getter_id), created_at
	)`,

	`CREATE TABLE IF NOT EXISTS media_in_message (
		id BIGSERIAL PRIMARY KEY,
		message_id BIGINT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
		image BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}
