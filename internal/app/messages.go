package app

import (
	"time"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
	"github.com/j-veylop/reader-usage-dashboard/internal/services"
)

// TickMsg is sent periodically to expire notifications.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// ReportLoadedMsg carries a freshly computed or cached report.
type ReportLoadedMsg struct {
	Report *models.Report
	Error  error
}

// StatsLoadedMsg contains loaded store statistics.
type StatsLoadedMsg struct {
	Error error
	Stats services.StatsEvent
}

// WindowChangedMsg confirms that the reporting window was switched.
type WindowChangedMsg struct {
	Window models.TimeRange
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // ResourceReport or ResourceStats
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// SubscriptionEventMsg delivers the manager's event channel once subscribed.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// QuitMsg requests the application to quit.
type QuitMsg struct{}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// ExportMsg requests writing the current report to a workbook.
type ExportMsg struct {
	Dir string
}

// ExportResultMsg contains the result of an export operation.
type ExportResultMsg struct {
	Error error
	Path  string
}
