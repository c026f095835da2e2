package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/reader-usage-dashboard/internal/config"
	"github.com/j-veylop/reader-usage-dashboard/internal/models"
)

type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (r *recordingNotifier) notify(title, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.titles)
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabasePath:    filepath.Join(t.TempDir(), "test.db"),
		RefreshInterval: time.Minute,
		Location:        time.UTC,
	}
}

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	mgr, err := NewManager(newTestConfig(t), opts...)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr
}

func TestNewManager(t *testing.T) {
	mgr := newTestManager(t, WithoutWatcher())

	if mgr.Database() == nil {
		t.Error("Database should be initialized")
	}
	r := mgr.Report()
	if r == nil {
		t.Fatal("initial report should be computed")
	}
	if r.Playback.HasData() || r.Tutor.HasData() {
		t.Error("empty store should produce an empty report")
	}
}

func TestManager_Subscription(t *testing.T) {
	mgr := newTestManager(t, WithoutWatcher())

	ch, cmd := mgr.Subscribe()
	if ch == nil {
		t.Error("Subscribe returned nil channel")
	}
	if cmd == nil {
		t.Error("Subscribe returned nil command")
	}

	mgr.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Channel should be closed")
		}
	default:
		t.Error("Unsubscribe should close the channel")
	}
}

func TestManager_ImportKeepsRowsWhenRefreshFails(t *testing.T) {
	mgr := newTestManager(t, WithoutWatcher())

	// An unparseable cost makes every report load fail.
	_, err := mgr.Database().ExecContext(context.Background(),
		`INSERT INTO tutor_events (id, model_name, total_cost, created_at)
		 VALUES ('broken', 'm', 'not-a-number', '2024-05-01 08:00:00.000')`)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	batch := &models.EventBatch{
		Completions: []models.CompletionEvent{{UserID: "u1", FinishedAt: time.Now()}},
	}
	err = mgr.Import(ctx, batch)
	if !errors.Is(err, ErrReportStale) {
		t.Fatalf("Import() error = %v, want ErrReportStale", err)
	}

	counts, err := mgr.Database().GetEventCounts(context.Background())
	if err != nil {
		t.Fatalf("GetEventCounts failed: %v", err)
	}
	if counts.Completions != 1 {
		t.Errorf("completions stored = %d, want 1", counts.Completions)
	}
}

func TestManager_ImportRecomputes(t *testing.T) {
	mgr := newTestManager(t, WithoutWatcher())
	ch, _ := mgr.Subscribe()
	ctx := context.Background()

	now := time.Now()
	batch := &models.EventBatch{
		Playback: []models.PlaybackEvent{
			{ArticleID: "a", VoiceName: "en-US-Standard-C", CharacterCount: 100, Count: 2, CreatedAt: now},
		},
		Tutor: []models.TutorEvent{
			{ModelName: "m", TotalTokens: 10, TotalCost: decimal.RequireFromString("0.01"), CreatedAt: now},
		},
	}
	if err := mgr.Import(ctx, batch); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	r := mgr.Report()
	if r.Playback.TotalPlays != 2 || r.Tutor.TotalRequests != 1 {
		t.Errorf("report after import = plays %d, requests %d; want 2, 1",
			r.Playback.TotalPlays, r.Tutor.TotalRequests)
	}

	select {
	case ev := <-ch:
		if _, ok := ev.(ReportUpdatedEvent); !ok {
			t.Errorf("got %T, want ReportUpdatedEvent", ev)
		}
	default:
		t.Error("Import should broadcast a ReportUpdatedEvent")
	}

	stats, err := mgr.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Counts.Total() != 2 || stats.LastRefresh.IsZero() {
		t.Errorf("stats = %+v", stats)
	}
}

func TestManager_Window(t *testing.T) {
	mgr := newTestManager(t, WithoutWatcher())
	ctx := context.Background()

	now := time.Now()
	batch := &models.EventBatch{
		Playback: []models.PlaybackEvent{
			{VoiceName: "v", CharacterCount: 1, Count: 1, CreatedAt: now.Add(-time.Hour)},
			{VoiceName: "v", CharacterCount: 1, Count: 1, CreatedAt: now.Add(-10 * 24 * time.Hour)},
		},
	}
	if err := mgr.Import(ctx, batch); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if got := mgr.Report().Playback.TotalPlays; got != 2 {
		t.Errorf("all-time plays = %d, want 2", got)
	}

	mgr.SetWindow(models.TimeRange7Days)
	if mgr.Window() != models.TimeRange7Days {
		t.Fatalf("Window() = %v, want 7 days", mgr.Window())
	}
	r, err := mgr.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if r.Playback.TotalPlays != 1 {
		t.Errorf("7-day plays = %d, want 1", r.Playback.TotalPlays)
	}
	if r.Window != models.TimeRange7Days {
		t.Errorf("report window = %v, want 7 days", r.Window)
	}
}

func TestManager_NotifiesOnceOnOverage(t *testing.T) {
	rec := &recordingNotifier{}
	mgr := newTestManager(t, WithoutWatcher(), WithNotifier(rec.notify))
	ch, _ := mgr.Subscribe()
	ctx := context.Background()

	over := &models.EventBatch{
		Playback: []models.PlaybackEvent{
			{VoiceName: "en-US-Neural2-C", CharacterCount: 1000, Count: 301, CreatedAt: time.Now()},
		},
	}
	if err := mgr.Import(ctx, over); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if _, err := mgr.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if rec.count() != 1 {
		t.Errorf("notifications = %d, want exactly 1", rec.count())
	}

	var exceeded int
	for len(ch) > 0 {
		if ev, ok := (<-ch).(QuotaExceededEvent); ok {
			exceeded++
			if ev.Status.Tier != models.TierNeural2 {
				t.Errorf("exceeded tier = %v, want Neural2", ev.Status.Tier)
			}
		}
	}
	if exceeded != 1 {
		t.Errorf("QuotaExceededEvent count = %d, want 1", exceeded)
	}
}

func TestManager_WatcherTriggersRefresh(t *testing.T) {
	mgr := newTestManager(t)
	ch, _ := mgr.Subscribe()

	// Write directly to the store, bypassing Import.
	e := &models.PlaybackEvent{VoiceName: "v", CharacterCount: 1, Count: 1, CreatedAt: time.Now()}
	if err := mgr.Database().InsertPlaybackEvent(context.Background(), e); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-ch:
			if up, ok := ev.(ReportUpdatedEvent); ok && up.Report.Playback.TotalPlays == 1 {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for watcher-driven refresh")
		}
	}
}

func TestManager_RequestRefresh(t *testing.T) {
	mgr := newTestManager(t)
	ch, _ := mgr.Subscribe()

	mgr.RequestRefresh()
	mgr.RequestRefresh() // coalesced, must not block

	select {
	case ev := <-ch:
		if _, ok := ev.(ReportUpdatedEvent); !ok {
			t.Errorf("got %T, want ReportUpdatedEvent", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for requested refresh")
	}
}

func TestManager_CloseIdempotentSubscribers(t *testing.T) {
	mgr, err := NewManager(newTestConfig(t), WithoutWatcher())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	ch, _ := mgr.Subscribe()

	if err := mgr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Error("Close should close subscriber channels")
	}
	mgr.RequestRefresh() // no loop running; must not block or panic
}
