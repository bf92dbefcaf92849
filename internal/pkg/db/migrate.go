package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// migrations is the ordered schema for the activity bot. Statements are
// idempotent so they can run on every startup.
var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "chats table",
		sql: `
		CREATE TABLE IF NOT EXISTS chats (
			chat_id BIGINT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	},
	{
		name: "users table",
		sql: `
		CREATE TABLE IF NOT EXISTS users (
			user_id BIGINT PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			current_rank TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	},
	{
		name: "activity table",
		sql: `
		CREATE TABLE IF NOT EXISTS activity (
			id BIGSERIAL PRIMARY KEY,
			chat_id BIGINT NOT NULL REFERENCES chats(chat_id),
			user_id BIGINT NOT NULL REFERENCES users(user_id),
			category VARCHAR(50) NOT NULL,
			points DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_activity_user ON activity(user_id);
		CREATE INDEX IF NOT EXISTS idx_activity_chat_time ON activity(chat_id, created_at DESC);`,
	},
	{
		name: "ranks table",
		sql: `
		CREATE TABLE IF NOT EXISTS ranks (
			id BIGSERIAL PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			min_points DOUBLE PRECISION NOT NULL,
			max_points DOUBLE PRECISION NOT NULL
		);`,
	},
	{
		name: "daily_questions table",
		sql: `
		CREATE TABLE IF NOT EXISTS daily_questions (
			id BIGSERIAL PRIMARY KEY,
			chat_id BIGINT NOT NULL REFERENCES chats(chat_id),
			message_id BIGINT NOT NULL,
			question TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_daily_questions_message ON daily_questions(chat_id, message_id);`,
	},
	{
		name: "schedule_events table",
		sql: `
		CREATE TABLE IF NOT EXISTS schedule_events (
			id BIGSERIAL PRIMARY KEY,
			chat_id BIGINT NOT NULL REFERENCES chats(chat_id),
			creator_id BIGINT NOT NULL REFERENCES users(user_id),
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			event_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			notified BOOLEAN NOT NULL DEFAULT FALSE
		);
		CREATE INDEX IF NOT EXISTS idx_schedule_events_chat_time ON schedule_events(chat_id, event_at);`,
	},
	{
		name: "event_participants table",
		sql: `
		CREATE TABLE IF NOT EXISTS event_participants (
			id BIGSERIAL PRIMARY KEY,
			event_id BIGINT NOT NULL REFERENCES schedule_events(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL REFERENCES users(user_id),
			joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (event_id, user_id)
		);`,
	},
	{
		name: "question_responses table",
		sql: `
		CREATE TABLE IF NOT EXISTS question_responses (
			id BIGSERIAL PRIMARY KEY,
			question_id BIGINT NOT NULL REFERENCES daily_questions(id),
			user_id BIGINT NOT NULL REFERENCES users(user_id),
			points_awarded DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (question_id, user_id)
		);`,
	},
}

// Migrate applies the database schema. It is called from main on startup
// and from integration tests against throwaway containers.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return err
		}
		log.Debug().Str("migration", m.name).Msg("Migration applied")
	}
	return nil
}
