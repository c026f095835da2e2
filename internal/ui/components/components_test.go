package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
)

func TestNewSpinner(t *testing.T) {
	s := NewSpinner("Loading")
	if s.label != "Loading" {
		t.Error("Spinner label mismatch")
	}
}

func TestSpinner_Methods(t *testing.T) {
	s := NewTierSpinner("Init", lipgloss.Color("42"))

	s.SetLabel("Loading")
	if s.Label() != "Loading" {
		t.Errorf("Label = %s, want Loading", s.Label())
	}

	if s.View() == "" {
		t.Error("View returned empty")
	}
	if !strings.Contains(s.ViewWithLabel(), "Loading") {
		t.Error("ViewWithLabel should include the label")
	}
	if s.Init() == nil {
		t.Error("Init should return command")
	}
	if _, cmd := s.Update(spinner.TickMsg{}); cmd == nil {
		t.Error("Update should return command for tick")
	}
	if s.Tick() == nil {
		t.Error("Tick should return command")
	}
	if s.Spinner().Spinner.Frames == nil {
		t.Error("Spinner accessor failed")
	}
}

func TestRenderSpinnerCentered(t *testing.T) {
	s := NewSpinner("Loading...")
	view := RenderSpinnerCentered(&s, 20, 5)
	if !strings.Contains(view, "Loading...") {
		t.Errorf("RenderSpinnerCentered() = %q", view)
	}
}

func TestRenderLineChart(t *testing.T) {
	if s := RenderLineChart([]float64{1, 2, 3, 4}, 20, 5, "Plays"); !strings.Contains(s, "Plays") {
		t.Error("RenderLineChart should include the caption")
	}
	if s := RenderLineChart(nil, 20, 5, "Plays"); !strings.Contains(s, "No data") {
		t.Error("empty chart should say there is no data")
	}
}

func TestRenderBarChart(t *testing.T) {
	s := RenderBarChart([]float64{10, 5}, []string{"gemini", "gpt"}, 40)
	lines := strings.Split(s, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if strings.Count(lines[0], "█") <= strings.Count(lines[1], "█") {
		t.Error("larger value should draw a longer bar")
	}
	if RenderBarChart(nil, nil, 40) != "" {
		t.Error("empty bar chart should render nothing")
	}
}

func TestRenderHourlyHeatmap(t *testing.T) {
	s := RenderHourlyHeatmap([]float64{0, 1, 2, 3})
	if !strings.HasPrefix(s, "00 ") || !strings.HasSuffix(s, " 23") {
		t.Errorf("heatmap should be framed by hour labels, got %q", s)
	}
	cells := 0
	for _, r := range HeatmapBlocks {
		cells += strings.Count(s, string(r))
	}
	if cells != 24 {
		t.Errorf("cells = %d, want 24", cells)
	}
}

func TestRenderSentenceHeatmap(t *testing.T) {
	tests := []struct {
		name     string
		heatmap  map[int]int64
		maxPlays int64
		width    int
		gaps     int
		lines    int
	}{
		{"contiguous", map[int]int64{0: 1, 1: 2, 2: 4}, 4, 10, 0, 1},
		{"with gaps", map[int]int64{0: 1, 3: 1}, 1, 10, 2, 1},
		{"wraps", map[int]int64{0: 1, 24: 1}, 1, 10, 23, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := RenderSentenceHeatmap(tt.heatmap, tt.maxPlays, tt.width)
			if got := strings.Count(s, "·"); got != tt.gaps {
				t.Errorf("gaps = %d, want %d", got, tt.gaps)
			}
			if got := len(strings.Split(s, "\n")); got != tt.lines {
				t.Errorf("lines = %d, want %d", got, tt.lines)
			}
		})
	}

	if s := RenderSentenceHeatmap(nil, 0, 10); !strings.Contains(s, "No sentences") {
		t.Error("empty heatmap should say nothing was played")
	}
}

func TestRenderWeeklyPattern(t *testing.T) {
	s := RenderWeeklyPattern([]float64{0, 1, 2, 3, 4, 5, 7}, nil)
	if !strings.Contains(s, "Sun ▁") || !strings.Contains(s, "Sat █") {
		t.Errorf("RenderWeeklyPattern() = %q", s)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 7}, 10); got != "▁█" {
		t.Errorf("RenderSparkline() = %q, want ▁█", got)
	}
	if got := RenderSparkline([]float64{1, 2, 3, 4}, 2); len([]rune(got)) != 2 {
		t.Errorf("sparkline should be sampled to width, got %q", got)
	}
	if RenderSparkline(nil, 10) != "" {
		t.Error("empty sparkline should render nothing")
	}
}

func TestRenderDistribution(t *testing.T) {
	items := []DistributionItem{
		{Label: "male", Percentage: 25, Color: lipgloss.Color("39")},
		{Label: "female", Percentage: 75, Color: lipgloss.Color("205")},
	}
	s := RenderDistribution(items, 20)
	lines := strings.Split(s, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want bar and legend", len(lines))
	}
	if strings.Count(lines[0], "█") != 20 {
		t.Errorf("full distribution should fill the bar, got %q", lines[0])
	}
	if strings.Index(lines[1], "female") > strings.Index(lines[1], "male 25") {
		t.Error("legend should list the largest share first")
	}
}

func TestRenderLegend(t *testing.T) {
	s := RenderLegend(TierLegend([]models.Tier{models.TierStandard, models.TierNeural2}))
	if !strings.Contains(s, "Standard") || !strings.Contains(s, "Neural2") {
		t.Errorf("RenderLegend() = %q", s)
	}
}
