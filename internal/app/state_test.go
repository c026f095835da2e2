package app

import (
	"testing"
	"time"

	"github.com/j-veylop/reader-usage-dashboard/internal/db"
	"github.com/j-veylop/reader-usage-dashboard/internal/models"
	"github.com/j-veylop/reader-usage-dashboard/internal/services"
)

func TestNewState(t *testing.T) {
	s := NewState()
	if s == nil {
		t.Fatal("NewState returned nil")
	}
	if s.GetReport() != nil {
		t.Error("Report should be nil before the first load")
	}
	if !s.Loading.Initial {
		t.Error("Initial loading should be true")
	}
	if s.GetWindow() != models.TimeRangeAllTime {
		t.Errorf("GetWindow() = %v, want All Time without a report", s.GetWindow())
	}
}

func TestState_SetLoading(t *testing.T) {
	s := NewState()

	s.SetLoading(ResourceReport, true)
	if !s.Loading.Report {
		t.Error("Report loading should be true")
	}
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true")
	}

	s.SetLoading(ResourceReport, false)
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true (Initial is true)")
	}

	s.SetLoading(ResourceInitial, false)
	if s.AnyLoading() {
		t.Error("AnyLoading should be false")
	}

	if resources := s.GetLoadingResources(); len(resources) != 0 {
		t.Errorf("GetLoadingResources should be empty, got %v", resources)
	}

	s.SetLoading(ResourceExport, true)
	resources := s.GetLoadingResources()
	if len(resources) != 1 || resources[0] != ResourceExport {
		t.Errorf("GetLoadingResources should contain export, got %v", resources)
	}

	s.SetLoading("unknown", true)
	if len(s.GetLoadingResources()) != 1 {
		t.Error("unknown resources should be ignored")
	}
}

func TestState_Report(t *testing.T) {
	s := NewState()
	r := &models.Report{Window: models.TimeRange7Days}

	s.SetReport(r)

	if s.GetReport() != r {
		t.Error("GetReport should return the stored report")
	}
	if s.GetWindow() != models.TimeRange7Days {
		t.Errorf("GetWindow() = %v, want 7 Days", s.GetWindow())
	}
	if s.GetLastUpdated().IsZero() {
		t.Error("SetReport should stamp LastUpdated")
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationInfo, "test", time.Minute)
	if id == "" {
		t.Error("AddNotification returned empty ID")
	}

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("GetNotifications len = %d, want 1", len(notifs))
	}
	if notifs[0].Message != "test" {
		t.Errorf("Notification message = %s, want test", notifs[0].Message)
	}

	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 0 {
		t.Error("Notification should be removed")
	}
}

func TestState_NotificationLimit(t *testing.T) {
	s := NewState()
	for range maxNotifications + 5 {
		s.AddNotification(NotificationInfo, "n", time.Minute)
	}
	if got := len(s.GetNotifications()); got != maxNotifications {
		t.Errorf("notifications = %d, want %d", got, maxNotifications)
	}

	s.ClearAllNotifications()
	if len(s.GetNotifications()) != 0 {
		t.Error("ClearAllNotifications should empty the list")
	}
}

func TestState_ClearExpiredNotifications(t *testing.T) {
	s := NewState()

	s.notifications = append(s.notifications,
		Notification{ID: "expired", CreatedAt: time.Now().Add(-2 * time.Minute), Duration: time.Minute},
		Notification{ID: "active", CreatedAt: time.Now(), Duration: time.Minute},
		Notification{ID: "sticky", CreatedAt: time.Now().Add(-time.Hour)},
	)

	s.ClearExpiredNotifications()

	notifs := s.GetNotifications()
	if len(notifs) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(notifs))
	}
	if notifs[0].ID != "active" || notifs[1].ID != "sticky" {
		t.Errorf("unexpected survivors: %v", notifs)
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()

	s.SetLoadingNotification("loading...")
	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != LoadingNotificationID {
		t.Errorf("Expected ID %s, got %s", LoadingNotificationID, notifs[0].ID)
	}

	s.SetLoadingNotification("still loading...")
	notifs = s.GetNotifications()
	if len(notifs) != 1 || notifs[0].Message != "still loading..." {
		t.Errorf("loading notification should be updated in place, got %v", notifs)
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("Loading notification should be cleared")
	}
}

func TestState_Stats(t *testing.T) {
	s := NewState()
	stats := services.StatsEvent{
		DatabasePath: "/tmp/usage.db",
		Counts:       db.EventCounts{Playback: 4, Tutor: 2, Completions: 1},
	}

	s.SetStats(stats)
	got := s.GetStats()
	if got == nil {
		t.Fatal("GetStats returned nil")
	}
	if got.Counts.Total() != 7 {
		t.Errorf("Counts.Total() = %d, want 7", got.Counts.Total())
	}
}

func TestState_TimeSinceUpdate(t *testing.T) {
	s := NewState()
	if s.TimeSinceUpdate() != 0 {
		t.Error("TimeSinceUpdate should be 0 before any update")
	}

	s.SetReport(&models.Report{})
	time.Sleep(time.Millisecond)
	if s.TimeSinceUpdate() == 0 {
		t.Error("TimeSinceUpdate should be > 0")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := []struct {
		t    NotificationType
		want string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
		{NotificationLoading, "loading"},
		{NotificationType(999), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
