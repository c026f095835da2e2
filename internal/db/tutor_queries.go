package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/j-veylop/reader-usage-dashboard/internal/logger"
	"github.com/j-veylop/reader-usage-dashboard/internal/models"
)

const insertTutorQuery = `
	INSERT INTO tutor_events (
		id, article_id, sentence_index, user_id, model_name,
		input_tokens, output_tokens, total_tokens, total_cost,
		is_follow_up, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// InsertTutorEvent stores a tutor event. The cost is stored as exact
// decimal text.
func (db *DB) InsertTutorEvent(ctx context.Context, e *models.TutorEvent) error {
	return insertTutor(ctx, db, e)
}

func insertTutor(ctx context.Context, ex execer, e *models.TutorEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := ex.ExecContext(ctx, insertTutorQuery,
		e.ID,
		nullString(e.ArticleID),
		e.SentenceIndex,
		nullString(e.UserID),
		e.ModelName,
		e.InputTokens,
		e.OutputTokens,
		e.TotalTokens,
		e.TotalCost.String(),
		e.IsFollowUp,
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert tutor event: %w", err)
	}
	return nil
}

// ListTutorEvents returns tutor events created at or after since, oldest
// first. A zero since returns every event.
func (db *DB) ListTutorEvents(ctx context.Context, since time.Time) ([]models.TutorEvent, error) {
	query := `
		SELECT id, article_id, sentence_index, user_id, model_name,
			   input_tokens, output_tokens, total_tokens, total_cost,
			   is_follow_up, created_at
		FROM tutor_events`
	var args []any
	if !since.IsZero() {
		query += fmt.Sprintf(sqlSinceClause, "created_at")
		args = append(args, formatTime(since))
	}
	query += " ORDER BY created_at"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tutor events: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var events []models.TutorEvent
	for rows.Next() {
		var e models.TutorEvent
		var articleID, userID sql.NullString
		var cost, createdAt string

		err := rows.Scan(
			&e.ID,
			&articleID,
			&e.SentenceIndex,
			&userID,
			&e.ModelName,
			&e.InputTokens,
			&e.OutputTokens,
			&e.TotalTokens,
			&cost,
			&e.IsFollowUp,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tutor event: %w", err)
		}

		e.TotalCost, err = decimal.NewFromString(cost)
		if err != nil {
			return nil, fmt.Errorf("failed to parse tutor cost %q: %w", cost, err)
		}
		e.ArticleID = articleID.String
		e.UserID = userID.String
		var ok bool
		if e.CreatedAt, ok = parseTimeString(createdAt); !ok {
			logger.Warn("skipping tutor event with malformed timestamp", "id", e.ID, "created_at", createdAt)
			continue
		}
		events = append(events, e)
	}

	return events, rows.Err()
}
