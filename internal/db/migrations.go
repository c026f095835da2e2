package db

import (
	"context"
	"fmt"
)

// FixLegacyTimeFormats rewrites timestamps that were stored with Go's default
// time.Time string form (e.g. "2024-01-02 03:04:05 +0000 UTC") into the
// canonical layout, so range filters compare correctly.
func (db *DB) FixLegacyTimeFormats() error {
	queries := []string{
		`UPDATE playback_events
		 SET created_at = SUBSTR(created_at, 1, 19) || '.000'
		 WHERE length(created_at) > 23 AND created_at LIKE '% UTC'`,

		`UPDATE tutor_events
		 SET created_at = SUBSTR(created_at, 1, 19) || '.000'
		 WHERE length(created_at) > 23 AND created_at LIKE '% UTC'`,

		`UPDATE completion_events
		 SET finished_at = SUBSTR(finished_at, 1, 19) || '.000'
		 WHERE length(finished_at) > 23 AND finished_at LIKE '% UTC'`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(context.Background(), query); err != nil {
			return fmt.Errorf("failed to fix legacy time formats: %w", err)
		}
	}

	return nil
}
