// Package trends provides the trends tab: daily playback history, usage by
// hour and weekday, the reading streak and the month-end quota outlook.
package trends

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/reader-usage-dashboard/internal/app"
)

// Metric selects which daily series the chart plots.
type Metric int

const (
	// MetricPlays plots plays per day.
	MetricPlays Metric = iota
	// MetricCharacters plots synthesized characters per day.
	MetricCharacters
	// MetricCost plots list cost per day.
	MetricCost
)

// String returns the display name of the metric.
func (mt Metric) String() string {
	switch mt {
	case MetricCharacters:
		return "Characters"
	case MetricCost:
		return "Cost"
	default:
		return "Plays"
	}
}

// Next cycles to the next metric.
func (mt Metric) Next() Metric {
	return (mt + 1) % 3
}

type keyMap struct {
	ToggleMetric key.Binding
	Up           key.Binding
	Down         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ToggleMetric: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle metric"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the trends tab state.
type Model struct {
	state    *app.State
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int
	metric   Metric
}

// New creates a new trends tab.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the trends tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the trends tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if key.Matches(keyMsg, m.keys.ToggleMetric) {
		m.metric = m.metric.Next()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// Metric returns the series currently charted.
func (m *Model) Metric() Metric {
	return m.metric
}

// SetSize sets the available size for the trends tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.ToggleMetric}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleMetric},
		{m.keys.Up, m.keys.Down},
	}
}
