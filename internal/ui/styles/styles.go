// Package styles defines the visual styling for the application.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
)

// Color definitions for the dashboard theme.
var (
	// Primary colors
	Primary   = lipgloss.Color("205") // Pink
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray

	// Tier colors
	Standard = lipgloss.Color("42")  // Green
	Neural2  = lipgloss.Color("39")  // Blue
	Wavenet  = lipgloss.Color("208") // Orange

	// Status colors
	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow
	Info    = lipgloss.Color("39")  // Blue

	// Background colors
	BgDark  = lipgloss.Color("235")
	BgLight = lipgloss.Color("237")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// FocusedStyle marks the selected row of a list.
var FocusedStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// ProgressLabelStyle styles progress bar labels.
var ProgressLabelStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Width(20)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// TableHeaderStyle styles table headers.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary)

// LabelStyle is the muted left column of key/value rows.
var LabelStyle = lipgloss.NewStyle().
	Width(22).
	Foreground(TextMuted)

// ValueStyle is the right column of key/value rows.
var ValueStyle = lipgloss.NewStyle().
	Foreground(TextPrimary)

// UsageLowStyle for tiers comfortably inside their quota.
var UsageLowStyle = lipgloss.NewStyle().
	Foreground(Success)

// UsageHighStyle for tiers approaching their quota.
var UsageHighStyle = lipgloss.NewStyle().
	Foreground(Warning)

// UsageOverStyle for tiers past their quota.
var UsageOverStyle = lipgloss.NewStyle().
	Foreground(Error).
	Bold(true)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// SuccessTextStyle for success messages.
var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// InfoTextStyle for info messages.
var InfoTextStyle = lipgloss.NewStyle().
	Foreground(Info)

var ProjectionSafeStyle = lipgloss.NewStyle().
	Foreground(Success)

var ProjectionWarningStyle = lipgloss.NewStyle().
	Foreground(Warning).
	Bold(true)

var ProjectionCriticalStyle = lipgloss.NewStyle().
	Foreground(Error).
	Bold(true)

var ProjectionUnknownStyle = lipgloss.NewStyle().
	Foreground(Subtle)

// GetUsageStyle returns the style for a quota consumption percentage.
func GetUsageStyle(usedPercent float64) lipgloss.Style {
	switch {
	case usedPercent > 100:
		return UsageOverStyle
	case usedPercent > 80:
		return UsageHighStyle
	default:
		return UsageLowStyle
	}
}

// TierColor returns the accent color of a voice tier.
func TierColor(tier models.Tier) lipgloss.Color {
	switch tier {
	case models.TierNeural2:
		return Neural2
	case models.TierWavenet:
		return Wavenet
	default:
		return Standard
	}
}

// GetTierStyle returns the bold accent style for a voice tier.
func GetTierStyle(tier models.Tier) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(TierColor(tier)).Bold(true)
}

// GetProjectionStyle returns the style for a month-end projection status.
func GetProjectionStyle(status models.ProjectionStatus) lipgloss.Style {
	switch status {
	case models.ProjectionSafe:
		return ProjectionSafeStyle
	case models.ProjectionWarning:
		return ProjectionWarningStyle
	case models.ProjectionCritical:
		return ProjectionCriticalStyle
	default:
		return ProjectionUnknownStyle
	}
}

// CenterHorizontal centers content horizontally within a given width.
func CenterHorizontal(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(content)
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
