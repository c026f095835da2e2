// Package db manages the SQLite event store.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection with application-specific methods.
type DB struct {
	*sql.DB
	path string
}

// New creates a new database connection and initializes the schema.
func New(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if err := db.FixLegacyTimeFormats(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to fix legacy time formats: %w", err)
	}

	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// configure sets up database pragmas for optimal performance.
func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000", // 64MB cache
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema() error {
	if err := db.createPlaybackEventsTable(); err != nil {
		return err
	}
	if err := db.createTutorEventsTable(); err != nil {
		return err
	}
	return db.createCompletionEventsTable()
}

func (db *DB) createPlaybackEventsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS playback_events (
		id TEXT PRIMARY KEY,
		article_id TEXT,
		sentence_index INTEGER NOT NULL DEFAULT 0,
		user_id TEXT,
		voice_name TEXT NOT NULL,
		character_count INTEGER NOT NULL,
		count INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_playback_events_created ON playback_events(created_at);
	CREATE INDEX IF NOT EXISTS idx_playback_events_article ON playback_events(article_id);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createTutorEventsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS tutor_events (
		id TEXT PRIMARY KEY,
		article_id TEXT,
		sentence_index INTEGER NOT NULL DEFAULT 0,
		user_id TEXT,
		model_name TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		total_tokens INTEGER NOT NULL DEFAULT 0,
		total_cost TEXT NOT NULL DEFAULT '0',
		is_follow_up INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tutor_events_created ON tutor_events(created_at);
	CREATE INDEX IF NOT EXISTS idx_tutor_events_thread ON tutor_events(article_id, sentence_index, user_id);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createCompletionEventsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS completion_events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		article_id TEXT,
		finished_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_completion_events_user ON completion_events(user_id, finished_at);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

// Close closes the database connection gracefully.
func (db *DB) Close() error {
	// Checkpoint WAL before closing
	_, _ = db.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	return db.DB.Close()
}

// Vacuum performs database maintenance to reclaim space.
func (db *DB) Vacuum() error {
	_, err := db.ExecContext(context.Background(), "VACUUM")
	return err
}
