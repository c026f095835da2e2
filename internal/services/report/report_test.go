package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
)

func TestAssemble(t *testing.T) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

	in := Input{
		Now:      now,
		Location: time.UTC,
		UserID:   "alice",
		Window:   models.TimeRange7Days,
		EventBatch: models.EventBatch{
			Playback: []models.PlaybackEvent{
				{UserID: "alice", ArticleID: "a", VoiceName: "en-US-Standard-C", CharacterCount: 10, Count: 2, CreatedAt: now},
			},
			Tutor: []models.TutorEvent{
				{UserID: "alice", ModelName: "m", TotalTokens: 5, TotalCost: decimal.RequireFromString("0.01"), CreatedAt: now},
			},
			Completions: []models.CompletionEvent{
				{UserID: "alice", FinishedAt: now.Add(-24 * time.Hour)},
				{UserID: "alice", FinishedAt: now},
				{UserID: "bob", FinishedAt: now.Add(-48 * time.Hour)},
			},
		},
	}

	r := Assemble(in)

	if !r.GeneratedAt.Equal(now) {
		t.Errorf("GeneratedAt = %v, want %v", r.GeneratedAt, now)
	}
	if r.Window != models.TimeRange7Days || r.UserID != "alice" {
		t.Errorf("Window/UserID = %v/%q", r.Window, r.UserID)
	}
	if r.Playback == nil || r.Playback.TotalPlays != 2 {
		t.Errorf("Playback.TotalPlays = %v, want 2", r.Playback)
	}
	if r.Tutor == nil || r.Tutor.TotalRequests != 1 {
		t.Errorf("Tutor.TotalRequests = %v, want 1", r.Tutor)
	}
	if r.Streak.Current != 2 || r.Streak.Longest != 2 {
		t.Errorf("Streak = %+v, want current=2 longest=2", r.Streak)
	}
	if r.Projection == nil || r.Projection.Tiers[0].MonthToDate != 20 {
		t.Errorf("Projection should fall back to the playback events, got %+v", r.Projection)
	}
}

func TestAssemble_MonthlyPlayback(t *testing.T) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	in := Input{
		Now:      now,
		Location: time.UTC,
		Window:   models.TimeRange24Hours,
		EventBatch: models.EventBatch{
			Playback: []models.PlaybackEvent{
				{VoiceName: "en-US-Standard-C", CharacterCount: 10, Count: 1, CreatedAt: now},
			},
		},
		MonthlyPlayback: []models.PlaybackEvent{
			{VoiceName: "en-US-Standard-C", CharacterCount: 10, Count: 1, CreatedAt: now},
			{VoiceName: "en-US-Standard-C", CharacterCount: 500, Count: 1, CreatedAt: now.AddDate(0, 0, -5)},
		},
	}

	r := Assemble(in)

	if r.Playback.TotalCharacters != 10 {
		t.Errorf("Playback.TotalCharacters = %d, want 10", r.Playback.TotalCharacters)
	}
	if got := r.Projection.Tiers[0].MonthToDate; got != 510 {
		t.Errorf("projection MonthToDate = %d, want 510", got)
	}
}

func TestAssemble_AllUsersStreak(t *testing.T) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	in := Input{
		Now:      now,
		Location: time.UTC,
		EventBatch: models.EventBatch{
			Completions: []models.CompletionEvent{
				{UserID: "alice", FinishedAt: now},
				{UserID: "bob", FinishedAt: now.Add(-24 * time.Hour)},
			},
		},
	}

	r := Assemble(in)

	if r.Streak.Current != 2 {
		t.Errorf("Streak.Current = %d, want 2", r.Streak.Current)
	}
}

func TestAssemble_Empty(t *testing.T) {
	r := Assemble(Input{})

	if r.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should default to now")
	}
	if r.Playback == nil || r.Tutor == nil {
		t.Fatal("fragments should never be nil")
	}
	if r.Playback.HasData() || r.Tutor.HasData() {
		t.Error("empty input should have no data")
	}
	if r.Streak != (models.Streak{}) {
		t.Errorf("Streak = %+v, want zero", r.Streak)
	}
}
