// Package watcher reports debounced changes to the event database file.
package watcher

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/reader-usage-dashboard/internal/logger"
)

// DefaultDebounce coalesces bursts of writes, such as a WAL commit followed
// by a checkpoint, into one change event.
const DefaultDebounce = 100 * time.Millisecond

// Event represents a watcher event.
type Event struct {
	Type  EventType
	Error error
	Path  string
}

// EventType defines the type of watcher event.
type EventType int

const (
	EventChanged EventType = iota
	EventError
)

// Service watches a database file and its SQLite sidecar files.
type Service struct {
	mu            sync.Mutex
	filePath      string
	debounce      time.Duration
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	closed        bool
}

// New starts watching the directory that holds filePath.
func New(filePath string, debounce time.Duration) (*Service, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	s := &Service{
		filePath:  filePath,
		debounce:  debounce,
		eventChan: make(chan Event, 16),
		stopChan:  make(chan struct{}),
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	return s, nil
}

// Events returns the event channel for subscribing to file changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// startWatcher starts the file system watcher.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory (to catch file creation/deletion and -wal writes)
	dir := filepath.Dir(s.filePath)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// matches reports whether name is the database file or one of its
// -wal/-shm/-journal companions.
func (s *Service) matches(name string) bool {
	base := filepath.Base(s.filePath)
	got := filepath.Base(name)
	return got == base || strings.HasPrefix(got, base+"-")
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if !s.matches(event.Name) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				s.schedule()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, func() {
		s.sendEvent(Event{Type: EventChanged, Path: s.filePath})
	})
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.mu.Unlock()

	close(s.stopChan)

	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
