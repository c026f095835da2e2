// Package projection extrapolates month-to-date voice usage to month end and
// flags tiers on pace to exceed their free quota.
package projection

import (
	"fmt"
	"math"
	"time"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
	"github.com/j-veylop/reader-usage-dashboard/internal/services/voice"
)

const (
	lowConfThreshold = 3
	medConfThreshold = 10
)

// MonthBounds returns the start of the month containing now and the start of
// the following month, both in loc.
func MonthBounds(now time.Time, loc *time.Location) (start, end time.Time) {
	local := now.In(loc)
	start = time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// Since returns the earliest instant Calculate reads: the start of the
// previous month.
func Since(now time.Time, loc *time.Location) time.Time {
	start, _ := MonthBounds(now, loc)
	return start.AddDate(0, -1, 0)
}

// Calculate projects each tier's month-end character usage from events.
// Events outside the current and previous calendar month are ignored.
func Calculate(events []models.PlaybackEvent, now time.Time, loc *time.Location) *models.QuotaProjection {
	if loc == nil {
		loc = time.Local
	}
	monthStart, monthEnd := MonthBounds(now, loc)
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	monthToDate := make(map[models.Tier]int64, 3)
	lastMonth := make(map[models.Tier]int64, 3)
	activeDays := make(map[string]struct{})

	for i := range events {
		e := &events[i]
		t := e.CreatedAt.In(loc)
		tier := voice.ClassifyTier(e.VoiceName)
		switch {
		case !t.Before(monthStart) && t.Before(monthEnd):
			monthToDate[tier] += e.Characters()
			activeDays[t.Format("2006-01-02")] = struct{}{}
		case !t.Before(lastMonthStart) && t.Before(monthStart):
			lastMonth[tier] += e.Characters()
		}
	}

	elapsed := max(now.Sub(monthStart).Hours()/24, 1)
	daysInMonth := float64(monthEnd.AddDate(0, 0, -1).Day())

	proj := &models.QuotaProjection{
		MonthStart: monthStart,
		MonthEnd:   monthEnd,
		DaysActive: len(activeDays),
		Tiers:      make([]models.TierProjection, 0, 3),
	}
	for _, tier := range voice.Tiers() {
		proj.Tiers = append(proj.Tiers, projectTier(
			tier, monthToDate[tier], lastMonth[tier], elapsed, daysInMonth, len(activeDays), now,
		))
	}
	return proj
}

func projectTier(
	tier models.Tier,
	monthToDate, lastMonth int64,
	elapsedDays, daysInMonth float64,
	activeDays int,
	now time.Time,
) models.TierProjection {
	quota := voice.MonthlyQuota(tier)
	p := models.TierProjection{
		Tier:        tier,
		MonthToDate: monthToDate,
		LastMonth:   lastMonth,
		Quota:       quota,
		DailyRate:   float64(monthToDate) / elapsedDays,
		Confidence:  confidence(activeDays),
		Status:      models.ProjectionUnknown,
	}

	projected := int64(math.Round(p.DailyRate * daysInMonth))
	p.ProjectedUsage = max(projected, monthToDate)
	p.ProjectedOverageCost = voice.OverageCost(tier, p.ProjectedUsage)
	p.VsLastMonth = formatComparison(p.ProjectedUsage, lastMonth)

	switch {
	case monthToDate == 0:
		return p
	case monthToDate > quota:
		p.Status = models.ProjectionCritical
	case p.ProjectedUsage > quota:
		p.Status = models.ProjectionWarning
		daysLeft := float64(quota-monthToDate) / p.DailyRate
		p.DepleteAt = now.Add(time.Duration(daysLeft * 24 * float64(time.Hour)))
	default:
		p.Status = models.ProjectionSafe
	}
	return p
}

func confidence(activeDays int) string {
	switch {
	case activeDays < lowConfThreshold:
		return "low"
	case activeDays < medConfThreshold:
		return "medium"
	default:
		return "high"
	}
}

func formatComparison(current, reference int64) string {
	if reference <= 0 {
		return "No prior data"
	}
	diff := (float64(current) - float64(reference)) / float64(reference) * 100
	if math.Abs(diff) < 10 {
		return "Similar to last month"
	} else if diff > 0 {
		return fmt.Sprintf("%.0f%% higher than last month", diff)
	}
	return fmt.Sprintf("%.0f%% lower than last month", -diff)
}
