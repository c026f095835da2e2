// Package tutor provides the tutor tab: AI-tutor token spend, model mix,
// conversation threads and recent requests.
package tutor

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/reader-usage-dashboard/internal/app"
)

const defaultRecentLimit = 5

type keyMap struct {
	ScrollDown key.Binding
	ScrollUp   key.Binding
	MoreRecent key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ScrollDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		MoreRecent: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "expand recent"),
		),
	}
}

// Model represents the tutor tab state.
type Model struct {
	state       *app.State
	keys        keyMap
	viewport    viewport.Model
	width       int
	height      int
	recentLimit int
}

// New creates a new tutor tab.
func New(state *app.State) *Model {
	return &Model{
		state:       state,
		keys:        defaultKeyMap(),
		viewport:    viewport.New(0, 0),
		recentLimit: defaultRecentLimit,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if key.Matches(keyMsg, m.keys.MoreRecent) {
		m.toggleRecent()
		return m, nil
	}

	// Scrolling uses the viewport's own j/k and arrow bindings.
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// toggleRecent switches between the short and the full recent-request list.
func (m *Model) toggleRecent() {
	if m.recentLimit == defaultRecentLimit {
		m.recentLimit = 0
	} else {
		m.recentLimit = defaultRecentLimit
	}
}

// SetSize sets the available size for the tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.ScrollDown, m.keys.ScrollUp, m.keys.MoreRecent}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ScrollDown, m.keys.ScrollUp},
		{m.keys.MoreRecent},
	}
}
