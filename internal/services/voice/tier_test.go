package voice

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
)

func TestClassifyTier(t *testing.T) {
	tests := []struct {
		name  string
		voice string
		want  models.Tier
	}{
		{"Standard", "en-US-Standard-C", models.TierStandard},
		{"Neural2", "en-US-Neural2-F", models.TierNeural2},
		{"Wavenet", "en-GB-Wavenet-B", models.TierWavenet},
		{"Unknown", "some-custom-voice", models.TierStandard},
		{"Empty", "", models.TierStandard},
		{"CaseSensitive", "en-US-wavenet-A", models.TierStandard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyTier(tt.voice); got != tt.want {
				t.Errorf("ClassifyTier(%q) = %v, want %v", tt.voice, got, tt.want)
			}
		})
	}
}

func TestRateAndQuota(t *testing.T) {
	tests := []struct {
		tier      models.Tier
		wantRate  string
		wantQuota int64
	}{
		{models.TierStandard, "0.000004", 1_000_000},
		{models.TierNeural2, "0.000016", 300_000},
		{models.TierWavenet, "0.000016", 300_000},
		{models.Tier("Studio"), "0.000004", 1_000_000},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			if got := Rate(tt.tier); !got.Equal(decimal.RequireFromString(tt.wantRate)) {
				t.Errorf("Rate(%v) = %s, want %s", tt.tier, got, tt.wantRate)
			}
			if got := MonthlyQuota(tt.tier); got != tt.wantQuota {
				t.Errorf("MonthlyQuota(%v) = %d, want %d", tt.tier, got, tt.wantQuota)
			}
		})
	}
}

func TestCost(t *testing.T) {
	got := Cost("en-US-Neural2-C", 1000)
	if !got.Equal(decimal.RequireFromString("0.016")) {
		t.Errorf("Cost() = %s, want 0.016", got)
	}

	got = Cost("not-in-catalog", 1000)
	if !got.Equal(decimal.RequireFromString("0.004")) {
		t.Errorf("Cost() for unknown voice = %s, want 0.004", got)
	}
}

func TestOverageCost(t *testing.T) {
	tests := []struct {
		name string
		tier models.Tier
		used int64
		want string
	}{
		{"UnderQuota", models.TierStandard, 999_999, "0"},
		{"AtQuota", models.TierNeural2, 300_000, "0"},
		{"OverStandard", models.TierStandard, 1_000_250, "0.001"},
		{"OverWavenet", models.TierWavenet, 300_100, "0.0016"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OverageCost(tt.tier, tt.used)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("OverageCost(%v, %d) = %s, want %s", tt.tier, tt.used, got, tt.want)
			}
			if got.IsNegative() {
				t.Errorf("OverageCost must never be negative, got %s", got)
			}
		})
	}
}

func TestTiers_Order(t *testing.T) {
	tiers := Tiers()
	want := []models.Tier{models.TierStandard, models.TierNeural2, models.TierWavenet}
	if len(tiers) != len(want) {
		t.Fatalf("Tiers() returned %d tiers, want %d", len(tiers), len(want))
	}
	for i := range want {
		if tiers[i] != want[i] {
			t.Errorf("Tiers()[%d] = %v, want %v", i, tiers[i], want[i])
		}
	}
}
