// Package playback provides the playback tab: quota consumption per voice
// tier, voice distribution and the most played articles.
package playback

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/reader-usage-dashboard/internal/app"
	"github.com/j-veylop/reader-usage-dashboard/internal/models"
	"github.com/j-veylop/reader-usage-dashboard/internal/ui/components"
)

const animationDuration = 1500 * time.Millisecond

type animationTickMsg time.Time

func animationTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*40, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

type keyMap struct {
	NextArticle  key.Binding
	PrevArticle  key.Binding
	FirstArticle key.Binding
	LastArticle  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextArticle: key.NewBinding(
			key.WithKeys("n", "j", "down"),
			key.WithHelp("j/n", "next article"),
		),
		PrevArticle: key.NewBinding(
			key.WithKeys("p", "k", "up"),
			key.WithHelp("k/p", "prev article"),
		),
		FirstArticle: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first article"),
		),
		LastArticle: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last article"),
		),
	}
}

// AnimationState tracks a quota bar easing toward its target percentage.
type AnimationState struct {
	StartTime      time.Time
	CurrentPercent float64
	TargetPercent  float64
	StartPercent   float64
}

// Model represents the playback tab state.
type Model struct {
	state          *app.State
	animations     map[models.Tier]*AnimationState
	spinner        components.LoadingSpinner
	keys           keyMap
	viewport       viewport.Model
	usageBar       components.UsageBar
	width          int
	height         int
	selectedIndex  int
	animationFrame int
}

// New creates a new playback tab.
func New(state *app.State) *Model {
	return &Model{
		state:      state,
		spinner:    components.NewSpinner("Aggregating playback events..."),
		usageBar:   components.NewUsageBar(40),
		keys:       defaultKeyMap(),
		viewport:   viewport.New(0, 0),
		animations: make(map[models.Tier]*AnimationState),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), animationTickCmd())
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case animationTickMsg:
		cmds = append(cmds, m.handleAnimationTick(msg))

	case app.StartLoadingMsg:
		cmds = append(cmds, animationTickCmd())

	case app.ReportLoadedMsg, app.RefreshMsg, app.WindowChangedMsg:
		m.clampSelection()
		m.syncAnimationTargets(time.Now())
		cmds = append(cmds, animationTickCmd())

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAnimationTick(msg animationTickMsg) tea.Cmd {
	m.animationFrame++
	now := time.Time(msg)

	animating := m.syncAnimationTargets(now)
	m.stepAnimations(now)

	if animating || m.state.AnyLoading() || m.state.IsInitialLoading() {
		return animationTickCmd()
	}
	return nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	count := len(m.articles())

	switch {
	case key.Matches(msg, m.keys.NextArticle):
		if count > 0 {
			m.selectedIndex = (m.selectedIndex + 1) % count
		}
	case key.Matches(msg, m.keys.PrevArticle):
		if count > 0 {
			m.selectedIndex = (m.selectedIndex - 1 + count) % count
		}
	case key.Matches(msg, m.keys.FirstArticle):
		m.selectedIndex = 0
	case key.Matches(msg, m.keys.LastArticle):
		m.selectedIndex = max(count-1, 0)
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

// SetSize sets the available size for the tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// SelectedArticle returns the highlighted article, if any.
func (m *Model) SelectedArticle() (models.ArticleUsage, bool) {
	articles := m.articles()
	if m.selectedIndex < 0 || m.selectedIndex >= len(articles) {
		return models.ArticleUsage{}, false
	}
	return articles[m.selectedIndex], true
}

func (m *Model) articles() []models.ArticleUsage {
	r := m.state.GetReport()
	if r == nil || r.Playback == nil {
		return nil
	}
	return r.Playback.TopArticles
}

func (m *Model) clampSelection() {
	m.selectedIndex = min(m.selectedIndex, max(len(m.articles())-1, 0))
}

// syncAnimationTargets points every tier's bar at its current quota usage.
// It reports whether any bar still has distance to travel.
func (m *Model) syncAnimationTargets(now time.Time) bool {
	r := m.state.GetReport()
	if r == nil || r.Playback == nil {
		return false
	}

	animating := false
	for _, q := range r.Playback.Quotas {
		if m.updateAnimationState(q.Tier, q.UsedPercent, now) {
			animating = true
		}
	}
	return animating
}

func (m *Model) updateAnimationState(tier models.Tier, target float64, now time.Time) bool {
	state, exists := m.animations[tier]
	if !exists {
		state = &AnimationState{StartTime: now}
		m.animations[tier] = state
	}

	if target != state.TargetPercent {
		state.StartPercent = state.CurrentPercent
		state.TargetPercent = target
		state.StartTime = now
	}

	return state.CurrentPercent != state.TargetPercent
}

func (m *Model) stepAnimations(now time.Time) {
	for _, state := range m.animations {
		if state.CurrentPercent == state.TargetPercent {
			continue
		}
		elapsed := now.Sub(state.StartTime)
		if elapsed >= animationDuration {
			state.CurrentPercent = state.TargetPercent
			continue
		}
		progress := elapsed.Seconds() / animationDuration.Seconds()
		ease := 1.0 - (1.0-progress)*(1.0-progress)
		state.CurrentPercent = state.StartPercent + (state.TargetPercent-state.StartPercent)*ease
	}
}

// displayPercent returns the animated percentage for a tier, falling back
// to the real value before the first animation frame.
func (m *Model) displayPercent(q models.QuotaStatus) float64 {
	if anim, ok := m.animations[q.Tier]; ok {
		return anim.CurrentPercent
	}
	return q.UsedPercent
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.NextArticle,
		m.keys.PrevArticle,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.NextArticle, m.keys.PrevArticle},
		{m.keys.FirstArticle, m.keys.LastArticle},
	}
}
