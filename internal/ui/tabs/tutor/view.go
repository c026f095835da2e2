package tutor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
	"github.com/j-veylop/reader-usage-dashboard/internal/ui/components"
	"github.com/j-veylop/reader-usage-dashboard/internal/ui/styles"
)

// View renders the tutor tab.
func (m *Model) View() string {
	r := m.state.GetReport()

	sections := []string{m.renderTitle()}
	switch {
	case m.state.IsInitialLoading():
		sections = append(sections, styles.HelpStyle.Render("Loading tutor sessions..."))
	case r == nil || !r.Tutor.HasData():
		sections = append(sections, m.card(
			heading("Tutor"),
			"",
			styles.HelpStyle.Render("  No tutor requests in this window"),
		))
	default:
		sections = append(sections,
			m.renderSummary(r.Tutor),
			m.renderTokens(r.Tutor),
			m.renderModels(r.Tutor),
			m.renderActivity(r.Tutor),
			m.renderRecent(r.Tutor),
		)
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return styles.DocStyle.Width(m.width).Height(m.height).Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Tutor")
	subtitle := styles.HelpStyle.Render("AI tutor requests, tokens and threads · " + m.state.GetWindow().String())
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderSummary(t *models.TutorReport) string {
	rows := []string{
		heading("Summary"),
		"",
		stat("Requests", fmt.Sprintf("%d", t.TotalRequests)),
		stat("Total cost", "$"+t.TotalCost.StringFixed(4)),
		stat("Cost / request", "$"+t.AverageCostPerRequest.StringFixed(6)),
		stat("Follow-up rate", fmt.Sprintf("%.1f%%", t.FollowUpRate)),
		stat("Threads", fmt.Sprintf("%d (avg %.1f, longest %d)", t.ThreadCount, t.AverageThreadLength, t.LongestThread)),
	}

	response := styles.HelpStyle.Render("n/a")
	if t.ResponseSamples > 0 {
		response = styles.ValueStyle.Render(t.AverageResponseTime.Round(time.Second).String()) +
			styles.HelpStyle.Render(fmt.Sprintf(" over %d follow-ups", t.ResponseSamples))
	}
	rows = append(rows, "  "+styles.LabelStyle.Width(18).Render("Response time")+response)

	return m.card(rows...)
}

func (m *Model) renderTokens(t *models.TutorReport) string {
	header := fmt.Sprintf("  %s %s %s %s %s",
		styles.TableHeaderStyle.Width(12).Render(""),
		styles.TableHeaderStyle.Width(8).Align(lipgloss.Right).Render("Count"),
		styles.TableHeaderStyle.Width(10).Align(lipgloss.Right).Render("Avg in"),
		styles.TableHeaderStyle.Width(10).Align(lipgloss.Right).Render("Avg out"),
		styles.TableHeaderStyle.Width(10).Align(lipgloss.Right).Render("Cost"),
	)

	row := func(label string, a models.TokenAverages) string {
		return fmt.Sprintf("  %s %s %s %s %s",
			styles.LabelStyle.Width(12).Render(label),
			styles.ValueStyle.Width(8).Align(lipgloss.Right).Render(fmt.Sprintf("%d", a.Count)),
			styles.ValueStyle.Width(10).Align(lipgloss.Right).Render(fmt.Sprintf("%.0f", a.AvgInputTokens)),
			styles.ValueStyle.Width(10).Align(lipgloss.Right).Render(fmt.Sprintf("%.0f", a.AvgOutputTokens)),
			styles.ValueStyle.Width(10).Align(lipgloss.Right).Render("$"+a.TotalCost.StringFixed(4)),
		)
	}

	return m.card(
		heading("Tokens"),
		"",
		stat("Input", fmt.Sprintf("%d", t.TotalInputTokens)),
		stat("Output", fmt.Sprintf("%d", t.TotalOutputTokens)),
		stat("Total", fmt.Sprintf("%d", t.TotalTokens)),
		"",
		header,
		row("Initial", t.Initial),
		row("Follow-up", t.FollowUp),
	)
}

func (m *Model) renderModels(t *models.TutorReport) string {
	values := make([]float64, 0, len(t.ModelUsage))
	labels := make([]string, 0, len(t.ModelUsage))
	for _, mu := range t.ModelUsage {
		values = append(values, float64(mu.Count))
		labels = append(labels, fmt.Sprintf("%s (%.0f%%)", mu.Model, mu.Percentage))
	}

	return m.card(
		heading("Models"),
		"",
		indent(components.RenderBarChart(values, labels, m.contentWidth()-4)),
	)
}

func (m *Model) renderActivity(t *models.TutorReport) string {
	hourly := make([]float64, 24)
	for h, c := range t.HourlyDistribution {
		hourly[h] = float64(c)
	}
	peak, count := t.PeakHour()

	rows := []string{
		heading("Activity"),
		"",
		"  " + components.RenderHourlyHeatmap(hourly),
		styles.HelpStyle.Render(fmt.Sprintf("  peak %02d:00 with %d requests", peak, count)),
		"",
		styles.LabelStyle.Render("  Top users"),
	}
	for _, u := range t.TopUsers {
		rows = append(rows, fmt.Sprintf("    %s %s",
			lipgloss.NewStyle().Width(28).Render(u.UserID),
			styles.ValueStyle.Render(fmt.Sprintf("%d", u.Sessions)),
		))
	}
	return m.card(rows...)
}

func (m *Model) renderRecent(t *models.TutorReport) string {
	sessions := t.RecentSessions
	if m.recentLimit > 0 {
		sessions = sessions[:min(len(sessions), m.recentLimit)]
	}

	rows := []string{heading(fmt.Sprintf("Recent Requests (%d of %d)", len(sessions), len(t.RecentSessions))), ""}
	for i := range sessions {
		s := &sessions[i]
		kind := styles.InfoTextStyle.Render("new ")
		if s.IsFollowUp {
			kind = styles.WarningTextStyle.Render("f/up")
		}
		rows = append(rows, fmt.Sprintf("  %s %s %s %s %s",
			styles.HelpStyle.Render(s.CreatedAt.Format("Jan 02 15:04")),
			kind,
			lipgloss.NewStyle().Width(22).Render(s.ModelName),
			styles.ValueStyle.Width(8).Align(lipgloss.Right).Render(fmt.Sprintf("%d tok", s.TotalTokens)),
			styles.HelpStyle.Render(s.UserKey()),
		))
	}
	return m.card(rows...)
}

func (m *Model) contentWidth() int {
	return max(m.width-10, 40)
}

func (m *Model) card(rows ...string) string {
	return styles.CardStyle.Width(max(m.width-6, 40)).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func heading(title string) string {
	icon := lipgloss.NewStyle().Foreground(styles.Secondary).Render("◈")
	return icon + " " + styles.CardTitleStyle.Render(title)
}

func stat(label, value string) string {
	return "  " + styles.LabelStyle.Width(18).Render(label) + styles.ValueStyle.Render(value)
}

func indent(block string) string {
	return "  " + strings.ReplaceAll(block, "\n", "\n  ")
}
