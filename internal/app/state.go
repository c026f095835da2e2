package app

import (
	"sync"
	"time"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
	"github.com/j-veylop/reader-usage-dashboard/internal/services"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// Loading resources.
const (
	ResourceInitial = "initial"
	ResourceReport  = "report"
	ResourceStats   = "stats"
	ResourceExport  = "export"
)

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Report  bool
	Stats   bool
	Export  bool
}

// State is shared between the root model and the tabs.
type State struct {
	LastUpdated time.Time
	Report      *models.Report
	Stats       *services.StatsEvent

	notifications []Notification
	Loading       LoadingState

	mu              sync.RWMutex
	notificationSeq int
}

// NewState creates the shared state with initial loading set.
func NewState() *State {
	return &State{
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case ResourceInitial:
		s.Loading.Initial = loading
	case ResourceReport:
		s.Loading.Report = loading
	case ResourceStats:
		s.Loading.Stats = loading
	case ResourceExport:
		s.Loading.Export = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Report ||
		s.Loading.Stats ||
		s.Loading.Export
}

// IsInitialLoading returns true if the first report has not arrived yet.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// GetLoadingResources returns a list of currently loading resources.
func (s *State) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resources []string
	if s.Loading.Initial {
		resources = append(resources, ResourceInitial)
	}
	if s.Loading.Report {
		resources = append(resources, ResourceReport)
	}
	if s.Loading.Stats {
		resources = append(resources, ResourceStats)
	}
	if s.Loading.Export {
		resources = append(resources, ResourceExport)
	}
	return resources
}

// SetReport stores the latest report.
func (s *State) SetReport(r *models.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Report = r
	s.LastUpdated = time.Now()
}

// GetReport returns the latest report, or nil before the first load.
func (s *State) GetReport() *models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Report
}

// GetWindow returns the window of the current report.
func (s *State) GetWindow() models.TimeRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Report == nil {
		return models.TimeRangeAllTime
	}
	return s.Report.Window
}

// SetStats updates the store statistics.
func (s *State) SetStats(stats services.StatsEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stats = &stats
}

// GetStats returns the current store statistics.
func (s *State) GetStats() *services.StatsEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Stats
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = activeNotifications(s.notifications)
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return activeNotifications(s.notifications)
}

func activeNotifications(all []Notification) []Notification {
	active := make([]Notification, 0, len(all))
	for _, n := range all {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

// GetLastUpdated returns the time the report was last replaced.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
