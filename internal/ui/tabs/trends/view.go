package trends

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
	"github.com/j-veylop/reader-usage-dashboard/internal/ui/components"
	"github.com/j-veylop/reader-usage-dashboard/internal/ui/styles"
)

var dayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// View renders the trends tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return styles.DocStyle.Width(m.width).Height(m.height).
			Render(styles.HelpStyle.Render("Loading trends..."))
	}

	r := m.state.GetReport()
	if r == nil {
		return m.renderEmpty()
	}

	sections := []string{m.renderHeader(r)}
	if r.Playback.HasData() {
		sections = append(sections,
			m.renderDailyChart(r.Playback),
			m.renderHourly(r.Playback),
			m.renderWeekly(r.Playback),
		)
	} else {
		sections = append(sections, m.card(heading("📈", "Daily Playback"), "",
			styles.HelpStyle.Render("  No playback in this window")))
	}
	sections = append(sections, m.renderStreak(r.Streak), m.renderProjection(r.Projection))

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return styles.DocStyle.Width(m.width).Height(m.height).Render(m.viewport.View())
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Trends"),
		"",
		styles.HelpStyle.Render("No report available yet."),
		styles.HelpStyle.Render("Trends appear once events have been imported."),
	)
	return styles.DocStyle.Width(m.width).Height(m.height).Render(content)
}

func (m *Model) renderHeader(r *models.Report) string {
	title := styles.TitleStyle.Render("Trends")

	metricStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ",
		metricStyle.Render(fmt.Sprintf("[t] %s", m.metric)))

	subtitle := styles.HelpStyle.Render(r.Window.String())
	if daily := r.Playback.DailyUsage; len(daily) > 0 {
		first, last := daily[0].Date, daily[len(daily)-1].Date
		subtitle = styles.HelpStyle.Render(fmt.Sprintf("%s · Data: %s → %s (%d active days)",
			r.Window, first.Format("Jan 2, 2006"), last.Format("Jan 2, 2006"), len(daily)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

// series extracts the selected metric from the daily usage.
func (m *Model) series(daily []models.DailyUsage) []float64 {
	data := make([]float64, len(daily))
	for i, d := range daily {
		switch m.metric {
		case MetricCharacters:
			data[i] = float64(d.Characters)
		case MetricCost:
			data[i] = d.Cost.InexactFloat64()
		default:
			data[i] = float64(d.Plays)
		}
	}
	return data
}

func (m *Model) renderDailyChart(p *models.PlaybackReport) string {
	rows := []string{heading("📈", "Daily "+m.metric.String()), ""}

	chart := components.RenderLineChart(m.series(p.DailyUsage), max(m.width-18, 30), 8,
		fmt.Sprintf("%s per active day", strings.ToLower(m.metric.String())))
	rows = append(rows, indent(chart), "")

	return m.card(rows...)
}

func (m *Model) renderHourly(p *models.PlaybackReport) string {
	hourly := make([]float64, 24)
	peak := 0
	for h, plays := range p.HourlyPlays {
		hourly[h] = float64(plays)
		if plays > p.HourlyPlays[peak] {
			peak = h
		}
	}

	return m.card(
		heading("🕐", "Hourly Pattern"),
		"",
		"  "+components.RenderHourlyHeatmap(hourly),
		"",
		fmt.Sprintf("  Peak: %s (%d plays)",
			lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).
				Render(fmt.Sprintf("%02d:00-%02d:00", peak, (peak+1)%24)),
			p.HourlyPlays[peak],
		),
	)
}

// weekdayPlays folds the daily series into plays per weekday, Sunday first.
func weekdayPlays(daily []models.DailyUsage) []float64 {
	week := make([]float64, 7)
	for _, d := range daily {
		week[d.Date.Weekday()] += float64(d.Plays)
	}
	return week
}

func (m *Model) renderWeekly(p *models.PlaybackReport) string {
	week := weekdayPlays(p.DailyUsage)

	peak := 0
	for i, v := range week {
		if v > week[peak] {
			peak = i
		}
	}

	return m.card(
		heading("📅", "Weekly Pattern"),
		"",
		"  "+components.RenderWeeklyPattern(week, dayNames),
		"",
		indent(components.RenderBarChart(week, dayNames, max(m.width-18, 30))),
		"",
		fmt.Sprintf("  Peak day: %s (%.0f plays)",
			lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Render(dayNames[peak]),
			week[peak],
		),
	)
}

func (m *Model) renderStreak(s models.Streak) string {
	flame := styles.HelpStyle.Render("○")
	if s.Current > 0 {
		flame = styles.WarningTextStyle.Render("🔥")
	}

	last := "never"
	if !s.LastActive.IsZero() {
		last = s.LastActive.Format("Mon Jan 2")
	}

	return m.card(
		heading("🏁", "Reading Streak"),
		"",
		fmt.Sprintf("  %s %s", flame, styles.ValueStyle.Render(fmt.Sprintf("%d day current streak", s.Current))),
		stat("Longest", fmt.Sprintf("%d days", s.Longest)),
		stat("Active days", fmt.Sprintf("%d", s.ActiveDays)),
		stat("Last finished", last),
	)
}

func (m *Model) renderProjection(p *models.QuotaProjection) string {
	rows := []string{heading("🔮", "Month-End Projection")}
	if p == nil {
		return m.card(append(rows, "", styles.HelpStyle.Render("  No projection available"))...)
	}

	rows = append(rows,
		styles.HelpStyle.Render(fmt.Sprintf("  %s → %s · %d active days · outlook %s",
			p.MonthStart.Format("Jan 2"), p.MonthEnd.Format("Jan 2"), p.DaysActive, p.Worst())),
		"",
		fmt.Sprintf("  %s %s %s %s %s %s",
			styles.TableHeaderStyle.Width(9).Render("Tier"),
			styles.TableHeaderStyle.Width(12).Align(lipgloss.Right).Render("To date"),
			styles.TableHeaderStyle.Width(10).Align(lipgloss.Right).Render("Per day"),
			styles.TableHeaderStyle.Width(12).Align(lipgloss.Right).Render("Projected"),
			styles.TableHeaderStyle.Width(8).Align(lipgloss.Right).Render("Quota"),
			styles.TableHeaderStyle.Width(10).Align(lipgloss.Right).Render("Overage"),
		),
	)

	for _, t := range p.Tiers {
		rows = append(rows, fmt.Sprintf("  %s %s %s %s %s %s  %s",
			styles.GetTierStyle(t.Tier).Width(9).Render(string(t.Tier)),
			styles.ValueStyle.Width(12).Align(lipgloss.Right).Render(fmt.Sprintf("%d", t.MonthToDate)),
			styles.ValueStyle.Width(10).Align(lipgloss.Right).Render(fmt.Sprintf("%.0f", t.DailyRate)),
			styles.ValueStyle.Width(12).Align(lipgloss.Right).Render(fmt.Sprintf("%d", t.ProjectedUsage)),
			styles.GetProjectionStyle(t.Status).Width(8).Align(lipgloss.Right).Render(fmt.Sprintf("%.0f%%", t.ProjectedPercent())),
			styles.ValueStyle.Width(10).Align(lipgloss.Right).Render("$"+t.ProjectedOverageCost.StringFixed(2)),
			styles.HelpStyle.Render(fmt.Sprintf("%s · %s conf. · %s", t.Status, t.Confidence, t.VsLastMonth)),
		))
	}

	tiers := make([]models.Tier, 0, len(p.Tiers))
	for _, t := range p.Tiers {
		tiers = append(tiers, t.Tier)
	}
	rows = append(rows, "", "  "+components.RenderLegend(components.TierLegend(tiers)))

	return m.card(rows...)
}

func (m *Model) card(rows ...string) string {
	return styles.CardStyle.Width(max(m.width-6, 40)).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func heading(icon, title string) string {
	return fmt.Sprintf("%s %s", lipgloss.NewStyle().Foreground(styles.Primary).Render(icon), styles.CardTitleStyle.Render(title))
}

func stat(label, value string) string {
	return "  " + styles.LabelStyle.Width(16).Render(label) + styles.ValueStyle.Render(value)
}

func indent(block string) string {
	lines := strings.Split(block, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
