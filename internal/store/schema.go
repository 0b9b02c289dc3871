package store

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	tableWords       = "words"
	tableStatistics  = "statistics"
	tableEvents      = "events"
	tableDoneRecords = "done_records"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS words (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		book TEXT NOT NULL,
		word TEXT NOT NULL,
		phonetic TEXT NOT NULL DEFAULT '',
		translation TEXT NOT NULL DEFAULT '',
		english_translation TEXT NOT NULL DEFAULT '',
		sentence TEXT NOT NULL DEFAULT '',
		sentence_translation TEXT NOT NULL DEFAULT '',
		audio_url TEXT NOT NULL DEFAULT '',
		learned_at INTEGER,
		created_at INTEGER NOT NULL,
		UNIQUE (book, word)
	)`,
	`CREATE INDEX IF NOT EXISTS words_book_learned ON words (book, learned_at)`,
	`CREATE TABLE IF NOT EXISTS statistics (
		day TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		sequence INTEGER NOT NULL UNIQUE,
		timestamp INTEGER NOT NULL,
		name TEXT NOT NULL,
		event_group TEXT NOT NULL DEFAULT '',
		payload TEXT NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS events_name ON events (name)`,
	`CREATE TABLE IF NOT EXISTS done_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		word_id INTEGER NOT NULL REFERENCES words (id) ON DELETE CASCADE,
		fail_count INTEGER NOT NULL DEFAULT 0,
		use_time_ms INTEGER NOT NULL DEFAULT 0,
		done_at INTEGER NOT NULL
	)`,
}

// migrate creates every table the repositories need. Statements are
// idempotent so it runs on every Open.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
