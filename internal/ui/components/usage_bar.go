// Package components provides reusable UI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/reader-usage-dashboard/internal/logger"
	"github.com/j-veylop/reader-usage-dashboard/internal/ui/styles"
)

const (
	usageFromColor = "#51cf66"
	usageToColor   = "#ff6b6b"
	monthFromColor = "#ffd93d"
	monthToColor   = "#6c5ce7"
)

// UsageBar renders quota consumption as a labelled progress bar.
type UsageBar struct {
	progress progress.Model
}

// NewUsageBar creates a usage bar that shades from green to red as it fills.
func NewUsageBar(width int) UsageBar {
	return UsageBar{
		progress: progress.New(
			progress.WithScaledGradient(usageFromColor, usageToColor),
			progress.WithWidth(width),
			progress.WithoutPercentage(),
		),
	}
}

// View renders the bar with a label and the used percentage. Percentages
// above 100 draw a full bar.
func (u UsageBar) View(usedPercent float64, label string, width int) string {
	u.progress.Width = max(width-30, 10)
	bar := u.progress.ViewAs(min(usedPercent, 100) / 100)

	percentStr := styles.GetUsageStyle(usedPercent).
		Width(7).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", usedPercent))

	labelStr := styles.ProgressLabelStyle.Width(15).Render(label)

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", percentStr)
}

// ViewCompact renders the bar and percentage without a label.
func (u UsageBar) ViewCompact(usedPercent float64, width int) string {
	u.progress.Width = max(width-8, 5)
	bar := u.progress.ViewAs(min(usedPercent, 100) / 100)
	percentStr := styles.GetUsageStyle(usedPercent).Render(fmt.Sprintf("%.0f%%", usedPercent))
	return lipgloss.JoinHorizontal(lipgloss.Center, bar, " ", percentStr)
}

// RenderGradientBar renders a consumption bar of the given cell width.
func RenderGradientBar(usedPercent float64, width int) string {
	return renderFilledBar(min(usedPercent, 100)/100, width, usageFromColor, usageToColor)
}

// RenderMonthBar renders how much of the billing month has elapsed.
func RenderMonthBar(fraction float64, width int) string {
	return renderFilledBar(fraction, width, monthFromColor, monthToColor)
}

func renderFilledBar(fraction float64, width int, fromHex, toHex string) string {
	if width < 1 {
		return ""
	}

	filled := min(max(int(float64(width)*fraction), 0), width)

	var b strings.Builder
	for i := range width {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor(fromHex, toHex, t)
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render("░"))
		}
	}
	return b.String()
}

// RenderLoadingBar renders a shimmering placeholder bar for animation frame.
func RenderLoadingBar(width, frame int, accent lipgloss.Color) string {
	if width < 1 {
		return ""
	}

	const cycle = 120
	t := float64(frame%cycle) / float64(cycle)
	p := t * 2
	if t >= 0.5 {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	shimmerPos := int(eased * float64(width))

	var b strings.Builder
	for i := range width {
		dist := shimmerPos - i
		if dist < 0 {
			dist = -dist
		}
		switch {
		case dist < 3:
			b.WriteString(lipgloss.NewStyle().Foreground(accent).Render("▓"))
		case dist < 5:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.TextSecondary).Render("▒"))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.BgLight).Render("░"))
		}
	}
	return b.String()
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
