// Package export writes reports to Excel workbooks.
package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
)

// Sheet names, in workbook order.
const (
	SheetSummary    = "Summary"
	SheetQuotas     = "Quotas"
	SheetProjection = "Projection"
	SheetVoices     = "Voices"
	SheetDaily      = "Daily"
	SheetArticles   = "Articles"
	SheetUsers      = "Users"
	SheetRepeated   = "Repeated"
	SheetModels     = "Tutor Models"
	SheetTutorUsers = "Tutor Users"
	SheetRecent     = "Tutor Recent"
)

type sheet struct {
	name   string
	header []any
	rows   [][]any
}

// WriteXLSX writes r to path, one sheet per report section.
func WriteXLSX(path string, r *models.Report) error {
	if r == nil || r.Playback == nil || r.Tutor == nil {
		return fmt.Errorf("failed to export: report is incomplete")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheets(r) {
		idx, err := f.NewSheet(s.name)
		if err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		if err := writeSheet(f, s, header); err != nil {
			return err
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	if err := f.SetSheetRow(s.name, "A1", &s.header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", s.name, err)
	}
	if err := f.SetRowStyle(s.name, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", s.name, err)
	}
	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", s.name, i+2, err)
		}
	}
	last, err := excelize.ColumnNumberToName(len(s.header))
	if err != nil {
		return err
	}
	return f.SetColWidth(s.name, "A", last, 18)
}

func sheets(r *models.Report) []sheet {
	p, t := r.Playback, r.Tutor
	out := []sheet{summarySheet(r)}

	quotas := sheet{name: SheetQuotas, header: []any{"Tier", "Plays", "Characters", "Cost", "Quota", "Used %", "Overage", "Overage Cost"}}
	for _, q := range p.Quotas {
		b := p.ByVoiceType[q.Tier]
		quotas.rows = append(quotas.rows, []any{
			string(q.Tier), b.Plays, b.Characters, money(b.Cost), q.Quota, q.UsedPercent, q.Overage, money(q.OverageCost),
		})
	}
	out = append(out, quotas)

	if r.Projection != nil {
		proj := sheet{name: SheetProjection, header: []any{"Tier", "Month To Date", "Daily Rate", "Projected", "Quota", "Projected Overage Cost", "Status", "Confidence", "Vs Last Month"}}
		for _, tp := range r.Projection.Tiers {
			proj.rows = append(proj.rows, []any{
				string(tp.Tier), tp.MonthToDate, tp.DailyRate, tp.ProjectedUsage, tp.Quota,
				money(tp.ProjectedOverageCost), tp.Status.String(), tp.Confidence, tp.VsLastMonth,
			})
		}
		out = append(out, proj)
	}

	voices := sheet{name: SheetVoices, header: []any{"Voice", "Tier", "Gender", "Plays", "Characters", "Share %"}}
	for _, v := range p.VoiceDistribution {
		voices.rows = append(voices.rows, []any{v.Name, string(v.Tier), string(v.Gender), v.Plays, v.Characters, v.Percentage})
	}
	out = append(out, voices)

	daily := sheet{name: SheetDaily, header: []any{"Date", "Plays", "Characters", "Cost"}}
	for _, d := range p.DailyUsage {
		daily.rows = append(daily.rows, []any{d.Date.Format("2006-01-02"), d.Plays, d.Characters, money(d.Cost)})
	}
	out = append(out, daily)

	articles := sheet{name: SheetArticles, header: []any{"Article", "Plays", "Characters", "Cost", "Unique Sentences", "Max Sentence Plays"}}
	for _, a := range p.TopArticles {
		articles.rows = append(articles.rows, []any{a.ArticleID, a.Plays, a.Characters, money(a.Cost), a.UniqueSentences, a.MaxPlays})
	}
	out = append(out, articles)

	users := sheet{name: SheetUsers, header: []any{"User", "Plays", "Characters", "Cost", "Unique Articles"}}
	for _, u := range p.TopUsers {
		users.rows = append(users.rows, []any{u.UserID, u.Plays, u.Characters, money(u.Cost), u.UniqueArticles})
	}
	out = append(out, users)

	repeated := sheet{name: SheetRepeated, header: []any{"Article", "Sentence", "Repetitions"}}
	for _, s := range p.TopRepeated {
		repeated.rows = append(repeated.rows, []any{s.ArticleID, s.SentenceIndex, s.Repetitions})
	}
	out = append(out, repeated)

	modelSheet := sheet{name: SheetModels, header: []any{"Model", "Requests", "Share %"}}
	for _, m := range t.ModelUsage {
		modelSheet.rows = append(modelSheet.rows, []any{m.Model, m.Count, m.Percentage})
	}
	out = append(out, modelSheet)

	tutorUsers := sheet{name: SheetTutorUsers, header: []any{"User", "Sessions"}}
	for _, u := range t.TopUsers {
		tutorUsers.rows = append(tutorUsers.rows, []any{u.UserID, u.Sessions})
	}
	out = append(out, tutorUsers)

	recent := sheet{name: SheetRecent, header: []any{"Time", "User", "Article", "Sentence", "Model", "Tokens", "Cost", "Follow-up"}}
	for _, e := range t.RecentSessions {
		recent.rows = append(recent.rows, []any{
			e.CreatedAt.Format(time.RFC3339), e.UserKey(), e.ArticleID, e.SentenceIndex,
			e.ModelName, e.TotalTokens, money(e.TotalCost), e.IsFollowUp,
		})
	}
	out = append(out, recent)

	return out
}

func summarySheet(r *models.Report) sheet {
	p, t := r.Playback, r.Tutor
	peakHour, peakCount := t.PeakHour()

	s := sheet{name: SheetSummary, header: []any{"Metric", "Value"}}
	add := func(metric string, value any) {
		s.rows = append(s.rows, []any{metric, value})
	}

	add("Generated", r.GeneratedAt.Format(time.RFC3339))
	add("Window", r.Window.String())
	if r.UserID != "" {
		add("User", r.UserID)
	}
	add("Total Plays", p.TotalPlays)
	add("Total Characters", p.TotalCharacters)
	add("Total Cost", money(p.TotalCost))
	add("Effective Cost", money(p.EffectiveTotalCost))
	add("Unique Articles", p.UniqueArticles)
	add("Unique Users", p.UniqueUsers)
	add("Avg Characters / Play", p.AverageCharactersPerPlay)
	add("Avg Repetition", p.AverageRepetition)
	add("Sequential Reads", p.ReadingPattern.Sequential)
	add("Jump Reads", p.ReadingPattern.Jumps)
	for _, g := range p.GenderDistribution {
		add("Gender "+g.Label+" %", g.Percentage)
	}
	add("Tutor Requests", t.TotalRequests)
	add("Tutor Tokens", t.TotalTokens)
	add("Tutor Cost", money(t.TotalCost))
	add("Tutor Avg Cost / Request", money(t.AverageCostPerRequest))
	add("Follow-up Rate %", t.FollowUpRate)
	add("Avg Response Time (s)", t.AverageResponseTime.Seconds())
	add("Threads", t.ThreadCount)
	add("Avg Thread Length", t.AverageThreadLength)
	add("Peak Hour", strconv.Itoa(peakHour)+":00 ("+strconv.Itoa(peakCount)+")")
	add("Current Streak", r.Streak.Current)
	add("Longest Streak", r.Streak.Longest)
	add("Active Days", r.Streak.ActiveDays)
	return s
}

// money renders a decimal amount as a float so spreadsheet formulas work on it.
func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
