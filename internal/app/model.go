// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/reader-usage-dashboard/internal/services"
	"github.com/j-veylop/reader-usage-dashboard/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabPlayback is the ID for the playback tab.
	TabPlayback TabID = iota
	// TabTutor is the ID for the tutor tab.
	TabTutor
	// TabTrends is the ID for the trends tab.
	TabTrends
	// TabInfo is the ID for the info tab.
	TabInfo

	tabCount
)

// String returns the string representation of the TabID.
func (t TabID) String() string {
	switch t {
	case TabPlayback:
		return "Playback"
	case TabTutor:
		return "Tutor"
	case TabTrends:
		return "Trends"
	case TabInfo:
		return "Info"
	default:
		return "Unknown"
	}
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1     key.Binding
	Tab2     key.Binding
	Tab3     key.Binding
	Tab4     key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	Refresh  key.Binding
	Window   key.Binding
	Export   key.Binding
	Help     key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
	Escape   key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{}
	km = setTabKeys(km)
	km = setActionKeys(km)
	km = setNavigationKeys(km)
	return km
}

func setTabKeys(k KeyMap) KeyMap {
	k.Tab1 = key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "playback"))
	k.Tab2 = key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "tutor"))
	k.Tab3 = key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "trends"))
	k.Tab4 = key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "info"))
	k.NextTab = key.NewBinding(key.WithKeys("tab", "l", "right"), key.WithHelp("tab/→", "next tab"))
	k.PrevTab = key.NewBinding(key.WithKeys("shift+tab", "h", "left"), key.WithHelp("shift+tab/←", "prev tab"))
	return k
}

func setActionKeys(k KeyMap) KeyMap {
	k.Refresh = key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh"))
	k.Window = key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "cycle window"))
	k.Export = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export xlsx"))
	k.Help = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help"))
	k.Quit = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
	return k
}

func setNavigationKeys(k KeyMap) KeyMap {
	k.Up = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	k.Down = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	k.Escape = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
	k.PageUp = key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up"))
	k.PageDown = key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down"))
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Window, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4},
		{k.NextTab, k.PrevTab},
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Refresh, k.Window, k.Export, k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	WindowBadge lipgloss.Style

	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	Content lipgloss.Style
	Toast   lipgloss.Style

	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	success := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warning := lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FF8C00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	info := lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}

	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(subtle)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(subtle).Padding(0, 2)
	s.WindowBadge = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(highlight)

	return s
}

// Model is the main application model.
type Model struct {
	state        *State
	services     *services.Manager
	commands     *Commands
	eventChannel chan services.ServiceEvent
	styles       Styles
	exportDir    string
	tabNames     []string
	tabs         []Tab
	keymap       KeyMap
	spinner      spinner.Model
	activeTab    TabID
	width        int
	height       int
	showHelp     bool
	ready        bool
}

// NewModel initializes a new application model. Exports are written to
// the working directory.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	names := make([]string, tabCount)
	for i := range tabCount {
		names[i] = i.String()
	}

	return &Model{
		activeTab: TabPlayback,
		tabNames:  names,
		tabs:      make([]Tab, tabCount),
		state:     NewState(),
		services:  mgr,
		commands:  NewCommands(mgr),
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
		exportDir: ".",
	}
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// SetExportDir sets where workbook exports are written.
func (m *Model) SetExportDir(dir string) {
	m.exportDir = dir
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetServices returns the service manager.
func (m *Model) GetServices() *services.Manager {
	return m.services
}

// GetCommands returns the commands helper.
func (m *Model) GetCommands() *Commands {
	return m.commands
}

// GetKeyMap returns the key bindings.
func (m *Model) GetKeyMap() KeyMap {
	return m.keymap
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// IsReady returns true if the model is ready (window size received).
func (m *Model) IsReady() bool {
	return m.ready
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading report...")

	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds, subscribeToServicesCmd(m.services), loadInitialData(m.services))
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg, tea.KeyMsg, spinner.TickMsg:
		if cmd := m.handleTeaMsg(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	default:
		if appCmds := m.handleAppMsg(msg); len(appCmds) > 0 {
			cmds = append(cmds, appCmds...)
		}
	}

	if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleTeaMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateTabSizes()
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd())
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEventMsg(msg)...)
	case ReportLoadedMsg:
		cmds = append(cmds, m.handleReportLoaded(msg)...)
	case StatsLoadedMsg:
		m.state.SetLoading(ResourceStats, false)
		if msg.Error != nil {
			cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("Failed to load stats: %v", msg.Error)))
		} else {
			m.state.SetStats(msg.Stats)
		}
	case WindowChangedMsg:
		cmds = append(cmds, notifyInfoCmd("Window: "+msg.Window.String()))
	case ExportMsg:
		m.state.SetLoading(ResourceExport, true)
		cmds = append(cmds, exportCmd(m.state.GetReport(), msg.Dir))
	case ExportResultMsg:
		m.state.SetLoading(ResourceExport, false)
		if msg.Error != nil {
			cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("Export failed: %v", msg.Error)))
		} else {
			cmds = append(cmds, notifySuccessCmd("Exported "+msg.Path))
		}
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ClearExpiredNotificationsMsg:
		m.state.ClearExpiredNotifications()
	case StartLoadingMsg:
		m.state.SetLoading(msg.Resource, true)
		m.state.SetLoadingNotification("Refreshing...")
	case StopLoadingMsg:
		m.state.SetLoading(msg.Resource, false)
		if !m.state.AnyLoading() {
			m.state.ClearLoadingNotification()
		}
	case ErrorMsg:
		cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("%s: %v", msg.Context, msg.Error)))
	case RefreshMsg:
		cmds = append(cmds, m.handleRefresh(msg)...)
	case TabSwitchMsg:
		m.activeTab = msg.Tab
		m.updateTabSizes()
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	case QuitMsg:
		cmds = append(cmds, tea.Quit)
	}
	return cmds
}

func (m *Model) handleReportLoaded(msg ReportLoadedMsg) []tea.Cmd {
	var cmds []tea.Cmd
	m.state.SetLoading(ResourceInitial, false)
	m.state.SetLoading(ResourceReport, false)
	if msg.Error != nil {
		cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("Failed to build report: %v", msg.Error)))
	}
	if msg.Report != nil {
		m.state.SetReport(msg.Report)
	}
	if !m.state.AnyLoading() {
		m.state.ClearLoadingNotification()
	}
	return cmds
}

func (m *Model) handleServiceEventMsg(msg ServiceEventMsg) []tea.Cmd {
	var cmds []tea.Cmd
	if cmd := m.handleServiceEvent(msg.Event); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.eventChannel != nil {
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	}
	return cmds
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.ReportUpdatedEvent:
		return func() tea.Msg { return ReportLoadedMsg{Report: e.Report} }

	case services.QuotaExceededEvent:
		return notifyWarningCmd(fmt.Sprintf("%s voices are over the monthly free quota (%d chars)",
			e.Status.Tier, e.Status.Used))

	case services.ErrorEvent:
		return notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))

	case services.StatsEvent:
		m.state.SetStats(e)
	}

	return nil
}

func (m *Model) handleRefresh(msg RefreshMsg) []tea.Cmd {
	if m.services == nil {
		return nil
	}

	cmds := []tea.Cmd{func() tea.Msg { return StartLoadingMsg(msg) }}
	switch msg.Resource {
	case ResourceStats:
		cmds = append(cmds, loadStatsCmd(m.services))
	default:
		cmds = append(cmds, refreshReportCmd(m.services), loadStatsCmd(m.services))
	}
	return cmds
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateTabSizes() {
	contentHeight := max(0, m.height-5)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

func (m *Model) switchTab(tab TabID) {
	m.activeTab = tab
	m.updateTabSizes()
}

// handleKeyMsg handles global keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, m.keymap.Escape):
		m.showHelp = false

	case key.Matches(msg, m.keymap.Tab1):
		m.switchTab(TabPlayback)

	case key.Matches(msg, m.keymap.Tab2):
		m.switchTab(TabTutor)

	case key.Matches(msg, m.keymap.Tab3):
		m.switchTab(TabTrends)

	case key.Matches(msg, m.keymap.Tab4):
		m.switchTab(TabInfo)

	case key.Matches(msg, m.keymap.NextTab):
		if !m.showHelp && len(m.tabs) > 0 {
			m.switchTab(TabID((int(m.activeTab) + 1) % len(m.tabs)))
		}

	case key.Matches(msg, m.keymap.PrevTab):
		if !m.showHelp && len(m.tabs) > 0 {
			m.switchTab(TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs)))
		}

	case key.Matches(msg, m.keymap.Refresh):
		return func() tea.Msg { return RefreshMsg{Resource: ResourceReport} }

	case key.Matches(msg, m.keymap.Window):
		if m.services != nil {
			return setWindowCmd(m.services, m.services.Window().Next())
		}

	case key.Matches(msg, m.keymap.Export):
		dir := m.exportDir
		return func() tea.Msg { return ExportMsg{Dir: dir} }
	}

	return nil
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}

	mainView := b.String()

	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	if notifications := m.renderNotifications(); len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}

	return mainView
}

func (m *Model) overlayCentered(mainView, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	y := max((m.height-len(overlayLines))/2, 0)
	x := max((m.width-lipgloss.Width(overlay))/2, 0)
	overlayWidth := lipgloss.Width(overlay)

	for i, overlayLine := range overlayLines {
		mainY := y + i
		if mainY >= len(mainLines) {
			break
		}

		mainLine := mainLines[mainY]
		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")

		if w := lipgloss.Width(left); w < x {
			left += strings.Repeat(" ", x-w)
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNavbar() string {
	tabs := make([]string, 0, len(m.tabNames)+1)

	for i, name := range m.tabNames {
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}
	tabs = append(tabs, m.styles.WindowBadge.Render("⏱ "+m.state.GetWindow().String()))

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style, prefix = m.styles.NotificationSuccess, "[OK]"
		case NotificationError:
			style, prefix = m.styles.NotificationError, "[ERR]"
		case NotificationWarning:
			style, prefix = m.styles.NotificationWarning, "[WARN]"
		case NotificationInfo:
			style, prefix = m.styles.NotificationInfo, "[INFO]"
		case NotificationLoading:
			style, prefix = m.styles.NotificationInfo, m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	startX := max(m.width-lipgloss.Width(toastStack)-2, 0)
	const startY = 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		if w := lipgloss.Width(mainLine); w < startX {
			mainLines[lineIdx] = mainLine + strings.Repeat(" ", startX-w) + toastLine
		} else {
			mainLines[lineIdx] = ansi.Truncate(mainLine, startX, "") + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	lines := []string{
		m.styles.Title.Render("Keyboard Shortcuts"),
		"",
		m.styles.Highlight.Render("Navigation"),
		"  1-4        Switch tabs",
		"  Tab        Next tab",
		"  Shift+Tab  Previous tab",
		"",
		m.styles.Highlight.Render("Actions"),
		"  r          Recompute report",
		"  w          Cycle window (all, 30d, 7d, 24h)",
		"  e          Export report to xlsx",
		"  ?          Toggle help",
		"  q/Ctrl+C   Quit",
		"",
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		if tabHelp := m.tabs[m.activeTab].ShortHelp(); len(tabHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(m.tabNames[m.activeTab]+" Tab"))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	name := "Unknown"
	if int(m.activeTab) < len(m.tabNames) {
		name = m.tabNames[m.activeTab]
	}
	content := fmt.Sprintf(
		"Tab %d: %s\n\n%s",
		m.activeTab+1,
		name,
		m.styles.Subtle.Render("This tab is not available."),
	)
	return m.styles.Content.Render(content)
}
