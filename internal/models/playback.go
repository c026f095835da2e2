// Package models defines data structures and domain types.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tier is a voice quality class with its own rate and monthly quota.
type Tier string

const (
	// TierStandard is the default tier for any voice not matching another tier.
	TierStandard Tier = "Standard"
	// TierNeural2 is the Neural2 voice tier.
	TierNeural2 Tier = "Neural2"
	// TierWavenet is the WaveNet voice tier.
	TierWavenet Tier = "Wavenet"
)

// Gender is the spoken gender of a catalog voice.
type Gender string

const (
	GenderFemale  Gender = "female"
	GenderMale    Gender = "male"
	GenderUnknown Gender = "unknown"
)

// UsageBucket accumulates characters, cost and plays for one grouping key.
type UsageBucket struct {
	Cost       decimal.Decimal `json:"cost"`
	Characters int64           `json:"characters"`
	Plays      int64           `json:"plays"`
}

// Add returns the bucket with one event's contribution folded in.
func (b UsageBucket) Add(chars, plays int64, cost decimal.Decimal) UsageBucket {
	b.Characters += chars
	b.Plays += plays
	b.Cost = b.Cost.Add(cost)
	return b
}

// QuotaStatus describes one tier's consumption against its free allowance.
type QuotaStatus struct {
	OverageCost decimal.Decimal `json:"overageCost"`
	Tier        Tier            `json:"tier"`
	Used        int64           `json:"used"`
	Quota       int64           `json:"quota"`
	Overage     int64           `json:"overage"`
	UsedPercent float64         `json:"usedPercent"`
	IsOverQuota bool            `json:"isOverQuota"`
}

// Remaining returns the free characters left this month, never negative.
func (q QuotaStatus) Remaining() int64 {
	if q.Used >= q.Quota {
		return 0
	}
	return q.Quota - q.Used
}

// VoiceUsage is the per-voice-name play and character tally.
type VoiceUsage struct {
	Name       string  `json:"name"`
	Tier       Tier    `json:"tier"`
	Gender     Gender  `json:"gender"`
	Plays      int64   `json:"plays"`
	Characters int64   `json:"characters"`
	Percentage float64 `json:"percentage"`
}

// DailyUsage is one point of the playback time series.
type DailyUsage struct {
	Date time.Time `json:"date"`
	UsageBucket
}

// ArticleUsage is the per-article bucket, including its sentence heatmap.
type ArticleUsage struct {
	Heatmap         map[int]int64   `json:"heatmap"`
	Cost            decimal.Decimal `json:"cost"`
	ArticleID       string          `json:"articleId"`
	Plays           int64           `json:"plays"`
	Characters      int64           `json:"characters"`
	MaxPlays        int64           `json:"maxPlays"`
	UniqueSentences int             `json:"uniqueSentences"`
}

// UserUsage is the per-user bucket. Anonymous plays use AnonymousUser.
type UserUsage struct {
	Cost           decimal.Decimal `json:"cost"`
	UserID         string          `json:"userId"`
	Plays          int64           `json:"plays"`
	Characters     int64           `json:"characters"`
	UniqueArticles int             `json:"uniqueArticles"`
}

// SentenceRepetition counts how often one sentence of an article was played.
type SentenceRepetition struct {
	ArticleID     string `json:"articleId"`
	SentenceIndex int    `json:"sentenceIndex"`
	Repetitions   int64  `json:"repetitions"`
}

// ReadingPattern counts in-order versus jumping sentence transitions.
type ReadingPattern struct {
	Sequential int `json:"sequential"`
	Jumps      int `json:"jumps"`
}

// SequentialRate returns the share of sequential transitions in percent.
func (r ReadingPattern) SequentialRate() float64 {
	return Percent(int64(r.Sequential), int64(r.Sequential+r.Jumps))
}

// Share is one slice of a distribution.
type Share struct {
	Label      string  `json:"label"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// PlaybackReport is the derived view over all playback events.
type PlaybackReport struct {
	TotalCost                decimal.Decimal         `json:"totalCost"`
	EffectiveTotalCost       decimal.Decimal         `json:"effectiveTotalCost"`
	ByVoiceType              map[Tier]UsageBucket    `json:"byVoiceType"`
	QuotaUsage               map[Tier]int64          `json:"quotaUsage"`
	VoiceUsage               map[string]VoiceUsage   `json:"voiceUsage"`
	ByDate                   map[string]UsageBucket  `json:"byDate"`
	ByArticle                map[string]ArticleUsage `json:"byArticle"`
	ByUser                   map[string]UserUsage    `json:"byUser"`
	Quotas                   []QuotaStatus           `json:"quotas"`
	VoiceDistribution        []VoiceUsage            `json:"voiceDistribution"`
	DailyUsage               []DailyUsage            `json:"dailyUsage"`
	TopArticles              []ArticleUsage          `json:"topArticles"`
	TopUsers                 []UserUsage             `json:"topUsers"`
	TopRepeated              []SentenceRepetition    `json:"topRepeated"`
	TierDistribution         []Share                 `json:"tierDistribution"`
	GenderDistribution       []Share                 `json:"genderDistribution"`
	ReadingPattern           ReadingPattern          `json:"readingPattern"`
	HourlyPlays              [24]int64               `json:"hourlyPlays"`
	TotalCharacters          int64                   `json:"totalCharacters"`
	TotalPlays               int64                   `json:"totalPlays"`
	TotalRequests            int64                   `json:"totalRequests"`
	AverageRepetition        float64                 `json:"averageRepetition"`
	AverageCharactersPerPlay float64                 `json:"averageCharactersPerPlay"`
	UniqueArticles           int                     `json:"uniqueArticles"`
	UniqueUsers              int                     `json:"uniqueUsers"`
}

// HasData returns true if any playback was recorded.
func (r *PlaybackReport) HasData() bool {
	return r != nil && r.TotalPlays > 0
}

// OverQuotaTiers returns the tiers whose usage exceeds the monthly allowance.
func (r *PlaybackReport) OverQuotaTiers() []Tier {
	if r == nil {
		return nil
	}
	var tiers []Tier
	for _, q := range r.Quotas {
		if q.IsOverQuota {
			tiers = append(tiers, q.Tier)
		}
	}
	return tiers
}

// Percent returns count/total*100, or 0 when total is not positive.
func Percent(count, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
