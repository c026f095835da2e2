package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/reader-usage-dashboard/internal/logger"
	"github.com/j-veylop/reader-usage-dashboard/internal/models"
)

const insertPlaybackQuery = `
	INSERT INTO playback_events (
		id, article_id, sentence_index, user_id, voice_name,
		character_count, count, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertPlaybackEvent stores a playback event, assigning an id and creation
// time when they are unset.
func (db *DB) InsertPlaybackEvent(ctx context.Context, e *models.PlaybackEvent) error {
	return insertPlayback(ctx, db, e)
}

func insertPlayback(ctx context.Context, ex execer, e *models.PlaybackEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.Count == 0 {
		e.Count = 1
	}

	_, err := ex.ExecContext(ctx, insertPlaybackQuery,
		e.ID,
		nullString(e.ArticleID),
		e.SentenceIndex,
		nullString(e.UserID),
		e.VoiceName,
		e.CharacterCount,
		e.Count,
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playback event: %w", err)
	}
	return nil
}

// ListPlaybackEvents returns playback events created at or after since,
// oldest first. A zero since returns every event.
func (db *DB) ListPlaybackEvents(ctx context.Context, since time.Time) ([]models.PlaybackEvent, error) {
	query := `
		SELECT id, article_id, sentence_index, user_id, voice_name,
			   character_count, count, created_at
		FROM playback_events`
	var args []any
	if !since.IsZero() {
		query += fmt.Sprintf(sqlSinceClause, "created_at")
		args = append(args, formatTime(since))
	}
	query += " ORDER BY created_at"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playback events: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var events []models.PlaybackEvent
	for rows.Next() {
		var e models.PlaybackEvent
		var articleID, userID sql.NullString
		var createdAt string

		err := rows.Scan(
			&e.ID,
			&articleID,
			&e.SentenceIndex,
			&userID,
			&e.VoiceName,
			&e.CharacterCount,
			&e.Count,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playback event: %w", err)
		}

		e.ArticleID = articleID.String
		e.UserID = userID.String
		var ok bool
		if e.CreatedAt, ok = parseTimeString(createdAt); !ok {
			logger.Warn("skipping playback event with malformed timestamp", "id", e.ID, "created_at", createdAt)
			continue
		}
		events = append(events, e)
	}

	return events, rows.Err()
}
