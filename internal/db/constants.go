package db

import (
	"database/sql"
	"time"
)

// timeLayout is the stored timestamp format. Values are always UTC so the
// text sorts chronologically and SQLite's date functions accept it.
const timeLayout = "2006-01-02 15:04:05.000"

// sqlSinceClause filters a query by a lower timestamp bound.
const sqlSinceClause = " WHERE %s >= ?"

var timeFormats = []string{
	timeLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05 +0000 UTC",
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimeString(s string) (time.Time, bool) {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// nullString returns a sql.NullString from a string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
