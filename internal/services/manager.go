// Package services provides service orchestration for the TUI and CLI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/reader-usage-dashboard/internal/config"
	"github.com/j-veylop/reader-usage-dashboard/internal/db"
	"github.com/j-veylop/reader-usage-dashboard/internal/logger"
	"github.com/j-veylop/reader-usage-dashboard/internal/models"
	"github.com/j-veylop/reader-usage-dashboard/internal/services/projection"
	"github.com/j-veylop/reader-usage-dashboard/internal/services/report"
	"github.com/j-veylop/reader-usage-dashboard/internal/services/watcher"
)

// loadRetryMaxElapsed bounds how long a report load retries a busy database.
const loadRetryMaxElapsed = 5 * time.Second

type (
	// ReportUpdatedEvent is emitted after every successful recompute.
	ReportUpdatedEvent struct {
		Report *models.Report
	}

	// QuotaExceededEvent is emitted the first time a tier crosses into overage.
	QuotaExceededEvent struct {
		Status models.QuotaStatus
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}

	// StatsEvent describes the event store.
	StatsEvent struct {
		LastRefresh  time.Time
		DatabasePath string
		Counts       db.EventCounts
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (ReportUpdatedEvent) isServiceEvent() {}
func (QuotaExceededEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()         {}
func (StatsEvent) isServiceEvent()         {}

// Notifier raises a desktop notification.
type Notifier func(title, body string) error

func desktopNotify(title, body string) error {
	return beeep.Notify(title, body, "")
}

// Manager owns the event store, recomputes the report and routes events.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	database    *db.DB
	watcher     *watcher.Service
	notify      Notifier
	ctx         context.Context
	cancel      context.CancelFunc
	refreshChan chan struct{}
	subscribers []chan<- ServiceEvent
	report      *models.Report
	lastRefresh time.Time
	overQuota   map[models.Tier]bool
	window      models.TimeRange
	wg          sync.WaitGroup
	refreshMu   sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithNotifier replaces the desktop notifier.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notify = n }
}

// WithoutWatcher disables file watching and periodic refresh. Used by
// one-shot CLI commands.
func WithoutWatcher() Option {
	return func(m *Manager) { m.watcher = nil; m.refreshChan = nil }
}

// NewManager opens the event store, computes the first report and, unless
// disabled, starts watching the store for changes.
func NewManager(cfg *config.Config, opts ...Option) (*Manager, error) {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:         cfg,
		ctx:         ctx,
		cancel:      cancel,
		window:      cfg.Window,
		overQuota:   make(map[models.Tier]bool),
		refreshChan: make(chan struct{}, 1),
	}
	if cfg.Notifications {
		m.notify = desktopNotify
	}
	for _, opt := range opts {
		opt(m)
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if _, err := m.Refresh(ctx); err != nil {
		logger.Error("initial report failed", "error", err)
	}

	if m.refreshChan != nil {
		m.watcher, err = watcher.New(cfg.DatabasePath, watcher.DefaultDebounce)
		if err != nil {
			logger.Warn("database watcher unavailable, relying on periodic refresh", "error", err)
		}
		m.wg.Add(1)
		go m.refreshLoop()
	}

	return m, nil
}

// refreshLoop recomputes the report on file changes, on demand and on a timer.
func (m *Manager) refreshLoop() {
	defer m.wg.Done()

	interval := m.cfg.RefreshInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var fileEvents <-chan watcher.Event
	if m.watcher != nil {
		fileEvents = m.watcher.Events()
	}

	for {
		select {
		case ev := <-fileEvents:
			if ev.Type == watcher.EventError {
				m.broadcast(ErrorEvent{Service: "watcher", Error: ev.Error})
				continue
			}
			m.refreshAndLog()

		case <-m.refreshChan:
			m.refreshAndLog()

		case <-ticker.C:
			m.refreshAndLog()

		case <-m.ctx.Done():
			return
		}
	}
}

func (m *Manager) refreshAndLog() {
	if _, err := m.Refresh(m.ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("report refresh failed", "error", err)
	}
}

// Refresh loads the current window from the store, rebuilds the report and
// broadcasts it. Failures are broadcast as ErrorEvent and returned.
func (m *Manager) Refresh(ctx context.Context) (*models.Report, error) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	now := time.Now()
	loc := m.location()
	window := m.Window()

	batch, err := m.loadWithRetry(ctx, window.Since(now))
	if err != nil {
		m.broadcast(ErrorEvent{Service: "report", Error: err})
		return nil, err
	}

	// The projection needs the previous and current month even when the
	// window is shorter.
	monthly := batch.Playback
	if ws := window.Since(now); !ws.IsZero() && ws.After(projection.Since(now, loc)) {
		monthly, err = m.listPlaybackWithRetry(ctx, projection.Since(now, loc))
		if err != nil {
			m.broadcast(ErrorEvent{Service: "report", Error: err})
			return nil, err
		}
	}

	r := report.Assemble(report.Input{
		Now:             now,
		Location:        loc,
		UserID:          m.cfg.ReportUserID,
		Window:          window,
		EventBatch:      *batch,
		MonthlyPlayback: monthly,
	})

	m.mu.Lock()
	m.report = r
	m.lastRefresh = now
	m.mu.Unlock()

	m.checkNotifications(r.Playback)
	m.broadcast(ReportUpdatedEvent{Report: r})

	return r, nil
}

func (m *Manager) loadWithRetry(ctx context.Context, since time.Time) (*models.EventBatch, error) {
	var batch *models.EventBatch
	op := func() error {
		var err error
		batch, err = m.database.LoadBatch(ctx, since, m.cfg.ReportUserID)
		return err
	}
	if err := backoff.Retry(op, m.newBackOff(ctx)); err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	return batch, nil
}

func (m *Manager) listPlaybackWithRetry(ctx context.Context, since time.Time) ([]models.PlaybackEvent, error) {
	var events []models.PlaybackEvent
	op := func() error {
		var err error
		events, err = m.database.ListPlaybackEvents(ctx, since)
		return err
	}
	if err := backoff.Retry(op, m.newBackOff(ctx)); err != nil {
		return nil, fmt.Errorf("failed to load monthly playback: %w", err)
	}
	return events, nil
}

func (m *Manager) newBackOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = loadRetryMaxElapsed
	return backoff.WithContext(bo, ctx)
}

// checkNotifications alerts once per tier when it first goes over quota, and
// re-arms when the tier drops back under (a new month or a narrower window).
func (m *Manager) checkNotifications(r *models.PlaybackReport) {
	if r == nil {
		return
	}
	for _, q := range r.Quotas {
		m.mu.Lock()
		was := m.overQuota[q.Tier]
		m.overQuota[q.Tier] = q.IsOverQuota
		m.mu.Unlock()

		if !q.IsOverQuota || was {
			continue
		}

		m.broadcast(QuotaExceededEvent{Status: q})
		if m.notify == nil {
			continue
		}
		title := fmt.Sprintf("%s voices over free quota", q.Tier)
		body := fmt.Sprintf("%d characters used of %d; overage so far $%s",
			q.Used, q.Quota, q.OverageCost.StringFixed(2))
		if err := m.notify(title, body); err != nil {
			logger.Warn("desktop notification failed", "error", err)
		}
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd that waits for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// RequestRefresh asks the background loop to recompute. It never blocks.
func (m *Manager) RequestRefresh() {
	if m.refreshChan == nil {
		return
	}
	select {
	case m.refreshChan <- struct{}{}:
	default:
	}
}

// Report returns the most recently computed report, or nil.
func (m *Manager) Report() *models.Report {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.report
}

// Window returns the active reporting window.
func (m *Manager) Window() models.TimeRange {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.window
}

// SetWindow changes the reporting window and schedules a recompute.
func (m *Manager) SetWindow(tr models.TimeRange) {
	m.mu.Lock()
	m.window = tr
	m.mu.Unlock()
	m.RequestRefresh()
}

func (m *Manager) location() *time.Location {
	if m.cfg.Location != nil {
		return m.cfg.Location
	}
	return time.Local
}

// ErrReportStale is returned by Import when the events were stored but the
// report could not be recomputed.
var ErrReportStale = errors.New("events imported, report refresh failed")

// Import stores a batch of events and recomputes the report.
func (m *Manager) Import(ctx context.Context, batch *models.EventBatch) error {
	if err := m.database.InsertBatch(ctx, batch); err != nil {
		return err
	}
	if _, err := m.Refresh(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrReportStale, err)
	}
	return nil
}

// GetStats returns store statistics.
func (m *Manager) GetStats(ctx context.Context) (StatsEvent, error) {
	counts, err := m.database.GetEventCounts(ctx)
	if err != nil {
		return StatsEvent{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return StatsEvent{
		Counts:       counts,
		DatabasePath: m.database.Path(),
		LastRefresh:  m.lastRefresh,
	}, nil
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close stops background work and closes the store.
func (m *Manager) Close() error {
	m.cancel()
	m.wg.Wait()

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
