// Package models defines data structures and domain types.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ModelUsage is the number of tutor requests served by one model.
type ModelUsage struct {
	Model      string  `json:"model"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TokenAverages summarizes one partition (initial or follow-up) of tutor events.
type TokenAverages struct {
	TotalCost       decimal.Decimal `json:"totalCost"`
	Count           int             `json:"count"`
	AvgInputTokens  float64         `json:"avgInputTokens"`
	AvgOutputTokens float64         `json:"avgOutputTokens"`
	AvgTotalTokens  float64         `json:"avgTotalTokens"`
}

// UserSessions is the number of tutor requests made by one user.
type UserSessions struct {
	UserID   string `json:"userId"`
	Sessions int    `json:"sessions"`
}

// TutorReport is the derived view over all tutor events.
type TutorReport struct {
	TotalCost             decimal.Decimal `json:"totalCost"`
	AverageCostPerRequest decimal.Decimal `json:"averageCostPerRequest"`
	SessionsByUser        map[string]int  `json:"sessionsByUser"`
	ModelUsage            []ModelUsage    `json:"modelUsage"`
	TopUsers              []UserSessions  `json:"topUsers"`
	RecentSessions        []TutorEvent    `json:"recentSessions"`
	Initial               TokenAverages   `json:"initial"`
	FollowUp              TokenAverages   `json:"followUp"`
	HourlyDistribution    [24]int         `json:"hourlyDistribution"`
	TotalInputTokens      int64           `json:"totalInputTokens"`
	TotalOutputTokens     int64           `json:"totalOutputTokens"`
	TotalTokens           int64           `json:"totalTokens"`
	AverageResponseTime   time.Duration   `json:"averageResponseTime"`
	FollowUpRate          float64         `json:"followUpRate"`
	AverageThreadLength   float64         `json:"averageThreadLength"`
	TotalRequests         int             `json:"totalRequests"`
	ResponseSamples       int             `json:"responseSamples"`
	ThreadCount           int             `json:"threadCount"`
	LongestThread         int             `json:"longestThread"`
}

// HasData returns true if any tutor request was recorded.
func (r *TutorReport) HasData() bool {
	return r != nil && r.TotalRequests > 0
}

// PeakHour returns the hour of day with the most tutor requests.
// Ties resolve to the earliest hour.
func (r *TutorReport) PeakHour() (hour, count int) {
	if r == nil {
		return 0, 0
	}
	for h, c := range r.HourlyDistribution {
		if c > count {
			hour, count = h, c
		}
	}
	return hour, count
}
