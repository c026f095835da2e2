package db

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestNew_NestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reader", "usage", "events.db")

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer db.Close()

	if db.Path() != dbPath {
		t.Errorf("Path() = %s, want %s", db.Path(), dbPath)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file missing: %v", err)
	}
}

func TestNew_JournalModeWAL(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	var mode string
	if err := db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestSchema_Columns(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	tests := []struct {
		table   string
		columns []string
	}{
		{"playback_events", []string{
			"id", "article_id", "sentence_index", "user_id", "voice_name",
			"character_count", "count", "created_at",
		}},
		{"tutor_events", []string{
			"id", "article_id", "sentence_index", "user_id", "model_name",
			"input_tokens", "output_tokens", "total_tokens", "total_cost",
			"is_follow_up", "created_at",
		}},
		{"completion_events", []string{"id", "user_id", "article_id", "finished_at"}},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			got := tableColumns(t, db, tt.table)
			if !slices.Equal(got, tt.columns) {
				t.Errorf("columns = %v, want %v", got, tt.columns)
			}
		})
	}
}

func TestSchema_Indexes(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	want := []string{
		"idx_completion_events_user",
		"idx_playback_events_article",
		"idx_playback_events_created",
		"idx_tutor_events_created",
		"idx_tutor_events_thread",
	}

	rows, err := db.QueryContext(context.Background(),
		"SELECT name FROM sqlite_master WHERE type = 'index' AND name LIKE 'idx_%' ORDER BY name")
	if err != nil {
		t.Fatalf("query indexes: %v", err)
	}
	defer rows.Close()

	var got []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan: %v", err)
		}
		got = append(got, name)
	}
	if !slices.Equal(got, want) {
		t.Errorf("indexes = %v, want %v", got, want)
	}
}

func TestNew_ReopenFixesLegacyTimes(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "events.db")
	ctx := context.Background()

	first, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	seed := []string{
		`INSERT INTO tutor_events (id, model_name, created_at)
		 VALUES ('t1', 'gpt-4o-mini', '2024-03-09 18:30:00.5 +0000 UTC')`,
		`INSERT INTO completion_events (id, user_id, finished_at)
		 VALUES ('c1', 'u1', '2024-03-09 19:00:00.25 +0000 UTC')`,
	}
	for _, q := range seed {
		if _, err := first.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed legacy row: %v", err)
		}
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()

	tutor, err := db.ListTutorEvents(ctx, time.Time{})
	if err != nil {
		t.Fatalf("ListTutorEvents() failed: %v", err)
	}
	if len(tutor) != 1 {
		t.Fatalf("tutor events = %d, want 1", len(tutor))
	}
	if want := time.Date(2024, time.March, 9, 18, 30, 0, 0, time.UTC); !tutor[0].CreatedAt.Equal(want) {
		t.Errorf("tutor createdAt = %v, want %v", tutor[0].CreatedAt, want)
	}

	var finished string
	if err := db.QueryRowContext(ctx, "SELECT finished_at FROM completion_events WHERE id = 'c1'").Scan(&finished); err != nil {
		t.Fatalf("select: %v", err)
	}
	if finished != "2024-03-09 19:00:00.000" {
		t.Errorf("finished_at = %q, want canonical layout", finished)
	}
}

func TestVacuum_AfterCleanup(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	if _, err := db.ExecContext(ctx,
		`INSERT INTO playback_events (id, voice_name, character_count, count, created_at)
		 VALUES ('old', 'en-US-Standard-B', 10, 1, '2020-01-01 00:00:00.000')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	removed, err := db.CleanupEventsBefore(ctx, time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("CleanupEventsBefore() failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if err := db.Vacuum(); err != nil {
		t.Errorf("Vacuum() failed: %v", err)
	}
}

func tableColumns(t *testing.T, db *DB, table string) []string {
	t.Helper()
	rows, err := db.QueryContext(context.Background(), "SELECT name FROM pragma_table_info(?) ORDER BY cid", table)
	if err != nil {
		t.Fatalf("table_info %s: %v", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan: %v", err)
		}
		cols = append(cols, name)
	}
	return cols
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	return db
}
