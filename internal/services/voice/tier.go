// Package voice is the static text-to-speech voice catalog: tier
// classification, per-character pricing, monthly free quotas and gender.
package voice

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
)

// TierInfo provides pricing details for a voice tier.
type TierInfo struct {
	RatePerChar  decimal.Decimal `json:"ratePerChar"`
	Tier         models.Tier     `json:"tier"`
	DisplayName  string          `json:"displayName"`
	MonthlyQuota int64           `json:"monthlyQuota"`
}

var tierTable = map[models.Tier]TierInfo{
	models.TierStandard: {
		Tier:         models.TierStandard,
		DisplayName:  "Standard",
		RatePerChar:  decimal.New(4, -6),
		MonthlyQuota: 1_000_000,
	},
	models.TierNeural2: {
		Tier:         models.TierNeural2,
		DisplayName:  "Neural2",
		RatePerChar:  decimal.New(16, -6),
		MonthlyQuota: 300_000,
	},
	models.TierWavenet: {
		Tier:         models.TierWavenet,
		DisplayName:  "WaveNet",
		RatePerChar:  decimal.New(16, -6),
		MonthlyQuota: 300_000,
	},
}

// Tiers returns every tier in display order.
func Tiers() []models.Tier {
	return []models.Tier{models.TierStandard, models.TierNeural2, models.TierWavenet}
}

// ClassifyTier determines the tier of a voice name by substring.
// Names matching neither Neural2 nor Wavenet are Standard.
func ClassifyTier(voiceName string) models.Tier {
	switch {
	case strings.Contains(voiceName, "Neural2"):
		return models.TierNeural2
	case strings.Contains(voiceName, "Wavenet"):
		return models.TierWavenet
	default:
		return models.TierStandard
	}
}

// Info returns pricing details for a tier. Unknown tiers price as Standard.
func Info(tier models.Tier) TierInfo {
	if info, ok := tierTable[tier]; ok {
		return info
	}
	return tierTable[models.TierStandard]
}

// Rate returns the per-character price of a tier.
func Rate(tier models.Tier) decimal.Decimal {
	return Info(tier).RatePerChar
}

// MonthlyQuota returns the free characters per month for a tier.
func MonthlyQuota(tier models.Tier) int64 {
	return Info(tier).MonthlyQuota
}

// Cost prices a number of characters synthesized with the named voice.
func Cost(voiceName string, characters int64) decimal.Decimal {
	return Rate(ClassifyTier(voiceName)).Mul(decimal.NewFromInt(characters))
}

// OverageCost prices the characters used beyond a tier's monthly quota.
func OverageCost(tier models.Tier, used int64) decimal.Decimal {
	over := used - MonthlyQuota(tier)
	if over <= 0 {
		return decimal.Zero
	}
	return Rate(tier).Mul(decimal.NewFromInt(over))
}
