package components

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
	"github.com/j-veylop/reader-usage-dashboard/internal/ui/styles"
)

// ChartPrimaryColor is the accent of single-series charts.
var ChartPrimaryColor = lipgloss.Color("#7D56F4")

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// HeatmapBlocks are Unicode block characters for heatmaps (low to high intensity).
var HeatmapBlocks = []rune{'░', '▒', '▓', '█'}

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	return asciigraph.Plot(data,
		asciigraph.Height(max(height, 3)),
		asciigraph.Width(max(width, 20)),
		asciigraph.Caption(caption),
	)
}

// RenderBarChart creates a simple horizontal bar chart.
func RenderBarChart(values []float64, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := maxOf(values)

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}

	barWidth := max(width-maxLabelLen-10, 10)

	lines := make([]string, 0, len(values))
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		barLen := max(int((v/maxVal)*float64(barWidth)), 0)
		line := fmt.Sprintf("%*s │%s %.0f", maxLabelLen, label, strings.Repeat("█", barLen), v)
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// RenderHourlyHeatmap creates a 24-hour usage heatmap.
func RenderHourlyHeatmap(patterns []float64) string {
	if len(patterns) != 24 {
		padded := make([]float64, 24)
		copy(padded, patterns)
		patterns = padded
	}

	maxVal := maxOf(patterns)

	var result strings.Builder
	result.WriteString("00 ")

	for i, v := range patterns {
		intensity := intensityOf(v, maxVal, len(HeatmapBlocks))
		result.WriteString(heatStyle(intensity).Render(string(HeatmapBlocks[intensity])))

		if i == 11 {
			result.WriteString(" ")
		}
	}

	result.WriteString(" 23")
	return result.String()
}

// RenderSentenceHeatmap draws one cell per sentence from index 0 to the
// highest played index, shaded by how often the sentence was played.
// Unplayed sentences render as blank gaps. Rows wrap at width cells.
func RenderSentenceHeatmap(heatmap map[int]int64, maxPlays int64, width int) string {
	if len(heatmap) == 0 {
		return styles.HelpStyle.Render("No sentences played")
	}
	width = max(width, 10)

	last := 0
	for idx := range heatmap {
		last = max(last, idx)
	}

	var result strings.Builder
	for i := 0; i <= last; i++ {
		if i > 0 && i%width == 0 {
			result.WriteString("\n")
		}
		plays := heatmap[i]
		if plays == 0 {
			result.WriteString(lipgloss.NewStyle().Foreground(styles.BgLight).Render("·"))
			continue
		}
		intensity := intensityOf(float64(plays), float64(maxPlays), len(HeatmapBlocks))
		result.WriteString(heatStyle(intensity).Render(string(HeatmapBlocks[intensity])))
	}
	return result.String()
}

// RenderWeeklyPattern creates a weekly usage visualization.
func RenderWeeklyPattern(patterns []float64, dayNames []string) string {
	if len(patterns) != 7 {
		padded := make([]float64, 7)
		copy(padded, patterns)
		patterns = padded
	}
	if len(dayNames) != 7 {
		dayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	}

	maxVal := maxOf(patterns)

	parts := make([]string, 0, 7)
	for i, v := range patterns {
		spark := sparkChars[intensityOf(v, maxVal, len(sparkChars))]
		parts = append(parts, fmt.Sprintf("%s %c", dayNames[i], spark))
	}

	return strings.Join(parts, " ")
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width < 1 {
		return ""
	}

	maxVal := maxOf(values)

	var result strings.Builder
	step := max(float64(len(values))/float64(width), 1)

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		result.WriteRune(sparkChars[intensityOf(val, maxVal, len(sparkChars))])
	}

	return result.String()
}

// DistributionItem is one labelled share of a distribution chart.
type DistributionItem struct {
	Label      string
	Color      lipgloss.Color
	Percentage float64
}

// RenderDistribution renders a single stacked bar split by share,
// followed by a legend with percentages. Items are drawn largest first.
func RenderDistribution(items []DistributionItem, width int) string {
	if len(items) == 0 || width < 1 {
		return ""
	}

	sorted := make([]DistributionItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Percentage > sorted[j].Percentage
	})

	var bar strings.Builder
	used := 0
	legend := make([]LegendItem, 0, len(sorted))
	for _, item := range sorted {
		cells := min(int(item.Percentage/100*float64(width)+0.5), width-used)
		if cells > 0 {
			bar.WriteString(lipgloss.NewStyle().Foreground(item.Color).Render(strings.Repeat("█", cells)))
			used += cells
		}
		legend = append(legend, LegendItem{
			Label: fmt.Sprintf("%s %.1f%%", item.Label, item.Percentage),
			Color: item.Color,
		})
	}
	if used < width {
		bar.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render(strings.Repeat("░", width-used)))
	}

	return bar.String() + "\n" + RenderLegend(legend)
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}

// TierLegend returns the legend entries for every tier in order.
func TierLegend(tiers []models.Tier) []LegendItem {
	items := make([]LegendItem, 0, len(tiers))
	for _, tier := range tiers {
		items = append(items, LegendItem{Label: string(tier), Color: styles.TierColor(tier)})
	}
	return items
}

// maxOf returns the largest value, or 1 when nothing is positive.
func maxOf(values []float64) float64 {
	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		return 1
	}
	return maxVal
}

func intensityOf(v, maxVal float64, levels int) int {
	if maxVal <= 0 {
		return 0
	}
	return min(max(int((v/maxVal)*float64(levels-1)), 0), levels-1)
}

func heatStyle(intensity int) lipgloss.Style {
	switch intensity {
	case 1:
		return lipgloss.NewStyle().Foreground(styles.Success)
	case 2:
		return lipgloss.NewStyle().Foreground(styles.Warning)
	case 3:
		return lipgloss.NewStyle().Foreground(styles.Error)
	default:
		return lipgloss.NewStyle().Foreground(styles.Subtle)
	}
}
