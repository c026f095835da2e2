package playback

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
	"github.com/j-veylop/reader-usage-dashboard/internal/services/voice"
	"github.com/j-veylop/reader-usage-dashboard/internal/ui/components"
	"github.com/j-veylop/reader-usage-dashboard/internal/ui/styles"
)

const (
	indentSpace   = "    "
	maxListed     = 5
	articleIDSize = 28
)

// View renders the playback tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	r := m.state.GetReport()
	sections := []string{m.renderTitle(r)}

	if r == nil || !r.Playback.HasData() {
		sections = append(sections, m.renderEmpty())
	} else {
		sections = append(sections,
			m.renderSummary(r.Playback),
			m.renderQuotas(r),
			m.renderVoices(r.Playback),
			m.renderArticles(r.Playback),
			m.renderUsersAndRepeats(r.Playback),
		)
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	barWidth := max(m.width/2, 20)
	lines := []string{components.RenderSpinnerCentered(&m.spinner, m.width, 3), ""}
	for _, tier := range voice.Tiers() {
		label := styles.GetTierStyle(tier).Width(10).Render(string(tier))
		bar := components.RenderLoadingBar(barWidth, m.animationFrame, styles.TierColor(tier))
		lines = append(lines, styles.CenterHorizontal(label+" "+bar, m.width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderTitle(r *models.Report) string {
	title := styles.TitleStyle.Render("Playback")
	subtitle := "Text-to-speech usage by voice tier"
	if r != nil {
		subtitle += " · " + r.Window.String()
		if r.UserID != "" {
			subtitle += " · user " + r.UserID
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, styles.HelpStyle.Render(subtitle), "")
}

func (m *Model) renderEmpty() string {
	icon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
	rows := []string{
		cardHeading("Playback"),
		"",
		fmt.Sprintf("  %s %s", icon, styles.HelpStyle.Render("No playback events in this window")),
		"",
		styles.InfoTextStyle.Render("  ╰─▶ Import events with: rud import events.json"),
	}
	return m.card(rows...)
}

func (m *Model) renderSummary(p *models.PlaybackReport) string {
	rows := []string{
		cardHeading("Summary"),
		"",
		statLine("Plays", formatCount(p.TotalPlays)),
		statLine("Characters", formatCount(p.TotalCharacters)),
		statLine("List cost", formatMoney(p.TotalCost)),
		statLine("Effective cost", formatMoney(p.EffectiveTotalCost)),
		statLine("Articles", fmt.Sprintf("%d", p.UniqueArticles)),
		statLine("Users", fmt.Sprintf("%d", p.UniqueUsers)),
		statLine("Chars / play", fmt.Sprintf("%.1f", p.AverageCharactersPerPlay)),
		statLine("Sequential reads", fmt.Sprintf("%.1f%% (%d jumps)",
			p.ReadingPattern.SequentialRate(), p.ReadingPattern.Jumps)),
	}

	if len(p.DailyUsage) > 1 {
		daily := make([]float64, len(p.DailyUsage))
		for i, d := range p.DailyUsage {
			daily[i] = float64(d.Plays)
		}
		rows = append(rows, "", statLine("Daily plays", components.RenderSparkline(daily, max(m.contentWidth()-24, 10))))
	}

	return m.card(rows...)
}

func (m *Model) renderQuotas(r *models.Report) string {
	width := m.contentWidth()
	rows := []string{cardHeading("Monthly Free Quota"), ""}

	for i, q := range r.Playback.Quotas {
		if i > 0 {
			rows = append(rows, "")
		}
		rows = append(rows, m.renderQuota(q, tierProjection(r.Projection, q.Tier), width)...)
	}

	if r.Projection != nil {
		rows = append(rows, "", m.renderMonthProgress(r.Projection, r.GeneratedAt, width))
	}

	return m.card(rows...)
}

func (m *Model) renderQuota(q models.QuotaStatus, proj *models.TierProjection, width int) []string {
	icon := lipgloss.NewStyle().Foreground(styles.TierColor(q.Tier)).Render("◆")
	header := fmt.Sprintf("  %s %s  %s",
		icon,
		styles.GetTierStyle(q.Tier).Render(string(q.Tier)),
		styles.HelpStyle.Render(fmt.Sprintf("%s / %s chars", formatCount(q.Used), formatCount(q.Quota))),
	)

	const badgeWidth = 12
	barWidth := max(width-len(indentSpace)-badgeWidth-12, 10)
	bar := m.usageBar.ViewCompact(m.displayPercent(q), barWidth)

	badge := lipgloss.NewStyle().Width(badgeWidth).Render("")
	if proj != nil && proj.Status != models.ProjectionUnknown {
		badge = styles.GetProjectionStyle(proj.Status).Width(badgeWidth).Align(lipgloss.Right).Render(badgeText(proj.Status))
	}

	lines := []string{header, lipgloss.JoinHorizontal(lipgloss.Left, indentSpace, bar, " ", badge)}

	var detail []string
	if q.IsOverQuota {
		detail = append(detail, styles.ErrorTextStyle.Render(fmt.Sprintf("over by %s chars · %s",
			formatCount(q.Overage), formatMoney(q.OverageCost))))
	} else {
		detail = append(detail, styles.HelpStyle.Render(formatCount(q.Remaining())+" chars left"))
	}
	if proj != nil && proj.Status != models.ProjectionUnknown {
		detail = append(detail, styles.GetProjectionStyle(proj.Status).Render(fmt.Sprintf("month end ≈ %.0f%%",
			proj.ProjectedPercent())))
		if !proj.DepleteAt.IsZero() && !q.IsOverQuota {
			detail = append(detail, styles.WarningTextStyle.Render("depletes "+proj.DepleteAt.Format("Jan 2")))
		}
	}
	lines = append(lines, indentSpace+strings.Join(detail, styles.HelpStyle.Render(" · ")))

	return lines
}

func (m *Model) renderMonthProgress(p *models.QuotaProjection, now time.Time, width int) string {
	total := p.MonthEnd.Sub(p.MonthStart)
	fraction := 0.0
	if total > 0 {
		fraction = min(max(float64(now.Sub(p.MonthStart))/float64(total), 0), 1)
	}
	barWidth := max(width-len(indentSpace)-24, 10)
	label := styles.HelpStyle.Render(fmt.Sprintf(" %.0f%% of %s elapsed", fraction*100, p.MonthStart.Format("Jan")))
	return indentSpace + components.RenderMonthBar(fraction, barWidth) + label
}

func (m *Model) renderVoices(p *models.PlaybackReport) string {
	width := max(m.contentWidth()-len(indentSpace), 20)

	tierItems := make([]components.DistributionItem, 0, len(p.TierDistribution))
	for _, s := range p.TierDistribution {
		tierItems = append(tierItems, components.DistributionItem{
			Label:      s.Label,
			Percentage: s.Percentage,
			Color:      styles.TierColor(models.Tier(s.Label)),
		})
	}

	genderColors := map[string]lipgloss.Color{
		string(models.GenderFemale): styles.Primary,
		string(models.GenderMale):   styles.Info,
	}
	genderItems := make([]components.DistributionItem, 0, len(p.GenderDistribution))
	for _, s := range p.GenderDistribution {
		genderItems = append(genderItems, components.DistributionItem{
			Label:      s.Label,
			Percentage: s.Percentage,
			Color:      genderColors[s.Label],
		})
	}

	rows := []string{
		cardHeading("Voices"),
		"",
		styles.LabelStyle.Render("  By tier"),
		indent(components.RenderDistribution(tierItems, width)),
		"",
		styles.LabelStyle.Render("  By gender"),
		indent(components.RenderDistribution(genderItems, width)),
		"",
	}

	for _, v := range p.VoiceDistribution[:min(len(p.VoiceDistribution), maxListed)] {
		rows = append(rows, fmt.Sprintf("%s%s %s %s",
			indentSpace,
			styles.GetTierStyle(v.Tier).Width(28).Render(v.Name),
			styles.ValueStyle.Width(8).Align(lipgloss.Right).Render(formatCount(v.Plays)),
			styles.HelpStyle.Render(fmt.Sprintf("%5.1f%%", v.Percentage)),
		))
	}

	return m.card(rows...)
}

func (m *Model) renderArticles(p *models.PlaybackReport) string {
	rows := []string{cardHeading("Top Articles"), ""}

	for i, a := range p.TopArticles {
		prefix := "  "
		if i == m.selectedIndex {
			prefix = styles.FocusedStyle.Render("▸ ")
		}
		rows = append(rows, fmt.Sprintf("%s%s %s %s %s",
			prefix,
			lipgloss.NewStyle().Bold(i == m.selectedIndex).Width(articleIDSize).Render(truncate(a.ArticleID, articleIDSize)),
			styles.ValueStyle.Width(7).Align(lipgloss.Right).Render(formatCount(a.Plays)),
			styles.HelpStyle.Width(16).Render(fmt.Sprintf(" plays · %d sent.", a.UniqueSentences)),
			styles.HelpStyle.Render(formatMoney(a.Cost)),
		))
	}

	if selected, ok := m.SelectedArticle(); ok {
		rows = append(rows,
			"",
			styles.LabelStyle.Render(fmt.Sprintf("  Sentence heatmap · %s · peak %d plays", truncate(selected.ArticleID, 40), selected.MaxPlays)),
			indent(components.RenderSentenceHeatmap(selected.Heatmap, selected.MaxPlays, max(m.contentWidth()-8, 10))),
		)
	}

	return m.card(rows...)
}

func (m *Model) renderUsersAndRepeats(p *models.PlaybackReport) string {
	rows := []string{cardHeading("Top Users"), ""}
	for _, u := range p.TopUsers[:min(len(p.TopUsers), maxListed)] {
		rows = append(rows, fmt.Sprintf("%s%s %s %s",
			indentSpace,
			lipgloss.NewStyle().Width(articleIDSize).Render(truncate(u.UserID, articleIDSize)),
			styles.ValueStyle.Width(7).Align(lipgloss.Right).Render(formatCount(u.Plays)),
			styles.HelpStyle.Render(fmt.Sprintf(" plays · %d articles · %s", u.UniqueArticles, formatMoney(u.Cost))),
		))
	}

	rows = append(rows, "", cardHeading("Most Repeated Sentences"),
		styles.HelpStyle.Render(fmt.Sprintf("  average %.2f plays per sentence", p.AverageRepetition)), "")
	for _, s := range p.TopRepeated[:min(len(p.TopRepeated), maxListed)] {
		article := s.ArticleID
		if article == "" {
			article = "(no article)"
		}
		rows = append(rows, fmt.Sprintf("%s%s %s",
			indentSpace,
			lipgloss.NewStyle().Width(articleIDSize+8).Render(fmt.Sprintf("%s #%d", truncate(article, articleIDSize), s.SentenceIndex)),
			styles.ValueStyle.Render(fmt.Sprintf("×%d", s.Repetitions)),
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

func cardHeading(title string) string {
	icon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	return fmt.Sprintf("%s %s", icon, styles.CardTitleStyle.Render(title))
}

func statLine(label, value string) string {
	return "  " + styles.LabelStyle.Width(18).Render(label) + styles.ValueStyle.Render(value)
}

func indent(block string) string {
	lines := strings.Split(block, "\n")
	for i, l := range lines {
		lines[i] = indentSpace + l
	}
	return strings.Join(lines, "\n")
}

func tierProjection(p *models.QuotaProjection, tier models.Tier) *models.TierProjection {
	if p == nil {
		return nil
	}
	for i := range p.Tiers {
		if p.Tiers[i].Tier == tier {
			return &p.Tiers[i]
		}
	}
	return nil
}


func badgeText(status models.ProjectionStatus) string {
	switch status {
	case models.ProjectionCritical:
		return "▲ CRITICAL"
	case models.ProjectionWarning:
		return "▲ WARNING"
	case models.ProjectionSafe:
		return "● SAFE"
	default:
		return ""
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func formatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// formatCount renders n with thousands separators.
func formatCount(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
