// Package report assembles the playback and tutor aggregates, the quota
// projection and the completion streak into a single report.
package report

import (
	"time"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
	"github.com/j-veylop/reader-usage-dashboard/internal/services/playback"
	"github.com/j-veylop/reader-usage-dashboard/internal/services/projection"
	"github.com/j-veylop/reader-usage-dashboard/internal/services/streak"
	"github.com/j-veylop/reader-usage-dashboard/internal/services/tutor"
)

// Input carries everything needed to build a report.
type Input struct {
	// Now is the reference instant for the streak and GeneratedAt.
	// Zero means time.Now().
	Now      time.Time
	Location *time.Location
	// UserID selects whose completions feed the streak. Empty uses all.
	UserID string
	Window models.TimeRange
	models.EventBatch
	// MonthlyPlayback feeds the month-end projection and should cover at
	// least the previous and current calendar month. Nil reuses Playback.
	MonthlyPlayback []models.PlaybackEvent
}

// Assemble builds the report. It performs no I/O.
func Assemble(in Input) *models.Report {
	loc := in.Location
	if loc == nil {
		loc = time.Local
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	monthly := in.MonthlyPlayback
	if monthly == nil {
		monthly = in.Playback
	}

	return &models.Report{
		GeneratedAt: now,
		UserID:      in.UserID,
		Window:      in.Window,
		Playback:    playback.Aggregate(in.Playback, playback.WithLocation(loc)),
		Tutor:       tutor.Aggregate(in.Tutor, tutor.WithLocation(loc)),
		Projection:  projection.Calculate(monthly, now, loc),
		Streak:      streak.FromCompletions(in.Completions, in.UserID, now, loc),
	}
}
