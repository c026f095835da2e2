// Package models defines data structures and domain types.
package models

import "time"

// Streak holds consecutive-calendar-day completion statistics.
type Streak struct {
	LastActive time.Time `json:"lastActive,omitzero"`
	Current    int       `json:"current"`
	Longest    int       `json:"longest"`
	ActiveDays int       `json:"activeDays"`
}

// Report is the assembled output handed to presentation code.
type Report struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	Playback    *PlaybackReport  `json:"playback"`
	Tutor       *TutorReport     `json:"tutor"`
	Projection  *QuotaProjection `json:"projection"`
	UserID      string           `json:"userId,omitempty"`
	Window      TimeRange        `json:"window"`
	Streak      Streak           `json:"streak"`
}
