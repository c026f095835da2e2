// Package info provides the info tab: configuration, event store statistics
// and build information.
package info

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/reader-usage-dashboard/internal/app"
	"github.com/j-veylop/reader-usage-dashboard/internal/config"
)

// keyMap defines the key bindings specific to the info tab.
type keyMap struct {
	RefreshStats key.Binding
	Up           key.Binding
	Down         key.Binding
}

// defaultKeyMap returns the default key bindings for the info tab.
func defaultKeyMap() keyMap {
	return keyMap{
		RefreshStats: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "reload stats"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

// Model represents the info tab state.
type Model struct {
	state    *app.State
	config   *config.Config
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model
}

// New creates a new info model.
func New(state *app.State, cfg *config.Config) *Model {
	return &Model{
		state:    state,
		config:   cfg,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init requests fresh store statistics.
func (m *Model) Init() tea.Cmd {
	return refreshStatsCmd
}

func refreshStatsCmd() tea.Msg {
	return app.RefreshMsg{Resource: app.ResourceStats}
}

// Update handles messages for the info tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if key.Matches(keyMsg, m.keys.RefreshStats) {
		return m, refreshStatsCmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(keyMsg)
	return m, cmd
}

// SetSize sets the available size for the info tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.RefreshStats,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.RefreshStats},
		{m.keys.Up, m.keys.Down},
	}
}
