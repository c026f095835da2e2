package db

import (
	"context"
	"fmt"
	"time"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
)

// InsertBatch stores every event of the batch in a single transaction.
// Either all rows are written or none are.
func (db *DB) InsertBatch(ctx context.Context, batch *models.EventBatch) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range batch.Playback {
		if err := insertPlayback(ctx, tx, &batch.Playback[i]); err != nil {
			return err
		}
	}
	for i := range batch.Tutor {
		if err := insertTutor(ctx, tx, &batch.Tutor[i]); err != nil {
			return err
		}
	}
	for i := range batch.Completions {
		if err := insertCompletion(ctx, tx, &batch.Completions[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event batch: %w", err)
	}
	return nil
}

// LoadBatch fetches the playback and tutor events created at or after since
// and the completions of userID (every user when empty).
func (db *DB) LoadBatch(ctx context.Context, since time.Time, userID string) (*models.EventBatch, error) {
	playback, err := db.ListPlaybackEvents(ctx, since)
	if err != nil {
		return nil, err
	}
	tutor, err := db.ListTutorEvents(ctx, since)
	if err != nil {
		return nil, err
	}
	completions, err := db.ListCompletionEvents(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.EventBatch{
		Playback:    playback,
		Tutor:       tutor,
		Completions: completions,
	}, nil
}

// EventCounts is the row count of each event table.
type EventCounts struct {
	Playback    int64 `json:"playback"`
	Tutor       int64 `json:"tutor"`
	Completions int64 `json:"completions"`
}

// Total returns the number of stored events.
func (c EventCounts) Total() int64 {
	return c.Playback + c.Tutor + c.Completions
}

// GetEventCounts returns how many events of each kind are stored.
func (db *DB) GetEventCounts(ctx context.Context) (EventCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM playback_events),
			(SELECT COUNT(*) FROM tutor_events),
			(SELECT COUNT(*) FROM completion_events)
	`
	var c EventCounts
	if err := db.QueryRowContext(ctx, query).Scan(&c.Playback, &c.Tutor, &c.Completions); err != nil {
		return EventCounts{}, fmt.Errorf("failed to count events: %w", err)
	}
	return c, nil
}

// CleanupEventsBefore deletes playback and tutor events older than before.
// Completions are kept because streaks span the whole history.
func (db *DB) CleanupEventsBefore(ctx context.Context, before time.Time) (int64, error) {
	cutoff := formatTime(before)
	var total int64
	for _, table := range []string{"playback_events", "tutor_events"} {
		result, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE created_at < ?", cutoff)
		if err != nil {
			return total, fmt.Errorf("failed to cleanup %s: %w", table, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("failed to count deleted rows: %w", err)
		}
		total += n
	}
	return total, nil
}
