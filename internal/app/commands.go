package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/reader-usage-dashboard/internal/export"
	"github.com/j-veylop/reader-usage-dashboard/internal/models"
	"github.com/j-veylop/reader-usage-dashboard/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// commandTimeout bounds database work started from the UI.
	commandTimeout = 30 * time.Second
)

// errNoReport is returned when an export is requested before any report exists.
var errNoReport = errors.New("no report loaded yet")

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadInitialData returns a command that loads the cached report and store stats.
func loadInitialData(mgr *services.Manager) tea.Cmd {
	return tea.Batch(
		loadReportCmd(mgr),
		loadStatsCmd(mgr),
	)
}

// loadReportCmd returns the manager's cached report, computing one if none exists.
func loadReportCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		if r := mgr.Report(); r != nil {
			return ReportLoadedMsg{Report: r}
		}
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		r, err := mgr.Refresh(ctx)
		return ReportLoadedMsg{Report: r, Error: err}
	}
}

// refreshReportCmd recomputes the report from the store.
func refreshReportCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		r, err := mgr.Refresh(ctx)
		return ReportLoadedMsg{Report: r, Error: err}
	}
}

// loadStatsCmd returns a command that loads store statistics.
func loadStatsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		stats, err := mgr.GetStats(ctx)
		return StatsLoadedMsg{Stats: stats, Error: err}
	}
}

// setWindowCmd switches the reporting window; the new report arrives as a
// service event once the manager recomputes.
func setWindowCmd(mgr *services.Manager, tr models.TimeRange) tea.Cmd {
	return func() tea.Msg {
		mgr.SetWindow(tr)
		return WindowChangedMsg{Window: tr}
	}
}

// exportCmd writes r to a timestamped workbook in dir.
func exportCmd(r *models.Report, dir string) tea.Cmd {
	return func() tea.Msg {
		if r == nil {
			return ExportResultMsg{Error: errNoReport}
		}
		name := fmt.Sprintf("reader-usage-%s-%s.xlsx", r.Window.Key(), r.GeneratedAt.Format("20060102-150405"))
		path := filepath.Join(dir, name)
		if err := export.WriteXLSX(path, r); err != nil {
			return ExportResultMsg{Error: err}
		}
		return ExportResultMsg{Path: path}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, LongNotificationDuration)
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// delayedCmd returns a command that sends a message after a delay.
func delayedCmd(delay time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return msg
	})
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// DefaultTick returns a tick command with the default interval.
func (c *Commands) DefaultTick() tea.Cmd {
	return defaultTickCmd()
}

// LoadReport returns a command that loads the cached report.
func (c *Commands) LoadReport() tea.Cmd {
	return loadReportCmd(c.manager)
}

// RefreshReport returns a command that recomputes the report.
func (c *Commands) RefreshReport() tea.Cmd {
	return refreshReportCmd(c.manager)
}

// LoadStats returns a command that loads store statistics.
func (c *Commands) LoadStats() tea.Cmd {
	return loadStatsCmd(c.manager)
}

// SetWindow returns a command that switches the reporting window.
func (c *Commands) SetWindow(tr models.TimeRange) tea.Cmd {
	return setWindowCmd(c.manager, tr)
}

// Export returns a command that writes r to a workbook in dir.
func (c *Commands) Export(r *models.Report, dir string) tea.Cmd {
	return exportCmd(r, dir)
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

// Quit returns a command that quits the application.
func (c *Commands) Quit() tea.Cmd {
	return tea.Quit
}

// Delayed returns a command that sends a message after a delay.
func (c *Commands) Delayed(delay time.Duration, msg tea.Msg) tea.Cmd {
	return delayedCmd(delay, msg)
}

// Batch combines multiple commands into one.
func (c *Commands) Batch(cmds ...tea.Cmd) tea.Cmd {
	return tea.Batch(cmds...)
}
