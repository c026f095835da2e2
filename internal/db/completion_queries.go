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

const insertCompletionQuery = `
	INSERT INTO completion_events (id, user_id, article_id, finished_at)
	VALUES (?, ?, ?, ?)
`

// InsertCompletionEvent records an article completion.
func (db *DB) InsertCompletionEvent(ctx context.Context, e *models.CompletionEvent) error {
	return insertCompletion(ctx, db, e)
}

func insertCompletion(ctx context.Context, ex execer, e *models.CompletionEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.FinishedAt.IsZero() {
		e.FinishedAt = time.Now()
	}

	_, err := ex.ExecContext(ctx, insertCompletionQuery,
		e.ID,
		e.UserID,
		nullString(e.ArticleID),
		formatTime(e.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert completion event: %w", err)
	}
	return nil
}

// ListCompletionEvents returns completions, oldest first. A non-empty userID
// restricts the result to that user. Streaks need the full history, so there
// is no time filter.
func (db *DB) ListCompletionEvents(ctx context.Context, userID string) ([]models.CompletionEvent, error) {
	query := `SELECT id, user_id, article_id, finished_at FROM completion_events`
	var args []any
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY finished_at"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query completion events: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var events []models.CompletionEvent
	for rows.Next() {
		var e models.CompletionEvent
		var articleID sql.NullString
		var finishedAt string

		if err := rows.Scan(&e.ID, &e.UserID, &articleID, &finishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan completion event: %w", err)
		}

		e.ArticleID = articleID.String
		var ok bool
		if e.FinishedAt, ok = parseTimeString(finishedAt); !ok {
			logger.Warn("skipping completion event with malformed timestamp", "id", e.ID, "finished_at", finishedAt)
			continue
		}
		events = append(events, e)
	}

	return events, rows.Err()
}
