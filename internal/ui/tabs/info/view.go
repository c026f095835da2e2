package info

import (
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/reader-usage-dashboard/internal/ui/styles"
	"github.com/j-veylop/reader-usage-dashboard/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderStoreCard(),
		m.renderAboutCard(),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration, event store and build information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 90)
}

func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration"), ""}

	if m.config == nil {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	} else {
		user := m.config.ReportUserID
		if user == "" {
			user = "all users"
		}
		location := "Local"
		if m.config.Location != nil {
			location = m.config.Location.String()
		}
		logPath := m.config.LogPath
		if logPath == "" {
			logPath = "stderr"
		}

		rows = append(rows,
			renderRow("Database", m.config.DatabasePath),
			renderRow("Log File", logPath),
			renderRow("Log Level", m.config.LogLevel.String()),
			renderRow("Refresh", m.config.RefreshInterval.String()),
			renderRow("Time Zone", location),
			renderRow("Window", m.state.GetWindow().String()),
			renderRow("Streak User", user),
			renderRow("Notifications", onOff(m.config.Notifications)),
		)
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderStoreCard() string {
	rows := []string{styles.CardTitleStyle.Render("Event Store"), ""}

	stats := m.state.GetStats()
	if stats == nil {
		rows = append(rows, styles.HelpStyle.Render("Statistics not loaded yet"))
	} else {
		lastRefresh := "never"
		if !stats.LastRefresh.IsZero() {
			lastRefresh = fmt.Sprintf("%s (%s ago)", stats.LastRefresh.Format("15:04:05"),
				time.Since(stats.LastRefresh).Round(time.Second))
		}
		rows = append(rows,
			renderRow("Playback events", fmt.Sprintf("%d", stats.Counts.Playback)),
			renderRow("Tutor events", fmt.Sprintf("%d", stats.Counts.Tutor)),
			renderRow("Completions", fmt.Sprintf("%d", stats.Counts.Completions)),
			renderRow("Total", styles.InfoTextStyle.Render(fmt.Sprintf("%d", stats.Counts.Total()))),
			renderRow("Last refresh", lastRefresh),
		)
	}

	rows = append(rows, "", styles.HelpStyle.Render("Press 's' to reload statistics"))

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About " + version.Project),
		"",
		renderRow("Version", version.GetVersion()),
		renderRow("Build Date", version.GetDate()),
		renderRow("Git Commit", version.GetCommit()),
		renderRow("Go Version", runtime.Version()),
		renderRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
