package info

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/reader-usage-dashboard/internal/app"
	"github.com/j-veylop/reader-usage-dashboard/internal/config"
	"github.com/j-veylop/reader-usage-dashboard/internal/db"
	"github.com/j-veylop/reader-usage-dashboard/internal/services"
	"github.com/j-veylop/reader-usage-dashboard/internal/version"
)

func TestModel_Init(t *testing.T) {
	m := New(app.NewState(), &config.Config{})
	msg := m.Init()()
	refresh, ok := msg.(app.RefreshMsg)
	if !ok || refresh.Resource != app.ResourceStats {
		t.Errorf("Init() produced %#v, want a stats refresh", msg)
	}
}

func TestModel_Update(t *testing.T) {
	m := New(app.NewState(), &config.Config{})

	if _, cmd := m.Update(nil); cmd != nil {
		t.Error("non-key messages should be ignored")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if cmd == nil {
		t.Fatal("s should request stats")
	}
	if _, ok := cmd().(app.RefreshMsg); !ok {
		t.Error("s should produce a RefreshMsg")
	}
}

func TestModel_View(t *testing.T) {
	state := app.NewState()
	cfg := &config.Config{
		DatabasePath:    "/tmp/usage.db",
		RefreshInterval: 30 * time.Second,
		Location:        time.UTC,
		Notifications:   true,
	}
	m := New(state, cfg)
	m.SetSize(100, 60)

	view := m.View()
	for _, want := range []string{"/tmp/usage.db", "30s", "UTC", "all users", "stderr", "Statistics not loaded", version.Project} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}

	state.SetStats(services.StatsEvent{
		LastRefresh:  time.Now(),
		DatabasePath: cfg.DatabasePath,
		Counts:       db.EventCounts{Playback: 12, Tutor: 3, Completions: 2},
	})
	view = m.View()
	for _, want := range []string{"Playback events", "12", "17"} {
		if !strings.Contains(view, want) {
			t.Errorf("view with stats should contain %q", want)
		}
	}
}

func TestModel_ViewWithoutConfig(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(80, 40)
	if !strings.Contains(m.View(), "Configuration not loaded") {
		t.Error("nil config should be reported")
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState(), &config.Config{})
	if len(m.ShortHelp()) != 1 {
		t.Errorf("ShortHelp has %d bindings, want 1", len(m.ShortHelp()))
	}
	if len(m.FullHelp()) != 2 {
		t.Errorf("FullHelp has %d groups, want 2", len(m.FullHelp()))
	}
}
