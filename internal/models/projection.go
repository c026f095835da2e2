package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectionStatus classifies a tier's projected month-end standing.
type ProjectionStatus int

const (
	// ProjectionUnknown means there is no usage this month to project from.
	ProjectionUnknown ProjectionStatus = iota
	// ProjectionSafe means the tier should stay within its free quota.
	ProjectionSafe
	// ProjectionWarning means the tier is on pace to exceed its quota.
	ProjectionWarning
	// ProjectionCritical means the tier has already exceeded its quota.
	ProjectionCritical
)

// String returns the display name of the status.
func (s ProjectionStatus) String() string {
	switch s {
	case ProjectionSafe:
		return "Safe"
	case ProjectionWarning:
		return "Warning"
	case ProjectionCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the status by name.
func (s ProjectionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TierProjection extrapolates one tier's month-to-date usage to month end.
type TierProjection struct {
	DepleteAt            time.Time        `json:"depleteAt,omitzero"`
	ProjectedOverageCost decimal.Decimal  `json:"projectedOverageCost"`
	Tier                 Tier             `json:"tier"`
	Confidence           string           `json:"confidence"`
	VsLastMonth          string           `json:"vsLastMonth"`
	MonthToDate          int64            `json:"monthToDate"`
	LastMonth            int64            `json:"lastMonth"`
	ProjectedUsage       int64            `json:"projectedUsage"`
	Quota                int64            `json:"quota"`
	DailyRate            float64          `json:"dailyRate"`
	Status               ProjectionStatus `json:"status"`
}

// ProjectedPercent returns projected usage as a percentage of the quota.
func (p TierProjection) ProjectedPercent() float64 {
	return Percent(p.ProjectedUsage, p.Quota)
}

// QuotaProjection is the month-end outlook for every tier.
type QuotaProjection struct {
	MonthStart time.Time        `json:"monthStart"`
	MonthEnd   time.Time        `json:"monthEnd"`
	Tiers      []TierProjection `json:"tiers"`
	DaysActive int              `json:"daysActive"`
}

// Worst returns the most severe status across tiers.
func (q *QuotaProjection) Worst() ProjectionStatus {
	worst := ProjectionUnknown
	if q == nil {
		return worst
	}
	for _, t := range q.Tiers {
		if t.Status > worst {
			worst = t.Status
		}
	}
	return worst
}
