// Package models defines data structures and domain types.
package models

import "time"

// TimeRange is the reporting window applied before aggregation.
type TimeRange int

const (
	// TimeRangeAllTime covers every stored event.
	TimeRangeAllTime TimeRange = iota
	// TimeRange30Days covers the last 30 days.
	TimeRange30Days
	// TimeRange7Days covers the last 7 days.
	TimeRange7Days
	// TimeRange24Hours covers the last 24 hours.
	TimeRange24Hours
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange24Hours:
		return "24 Hours"
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRangeAllTime:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Days returns the number of days for the time range (0 = unlimited).
func (t TimeRange) Days() int {
	switch t {
	case TimeRange24Hours:
		return 1
	case TimeRange7Days:
		return 7
	case TimeRange30Days:
		return 30
	default:
		return 0
	}
}

// Since returns the inclusive lower bound of the window relative to now,
// or the zero time for an unlimited window.
func (t TimeRange) Since(now time.Time) time.Time {
	days := t.Days()
	if days == 0 {
		return time.Time{}
	}
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 4
}

// ParseTimeRange maps a CLI flag value to a time range.
func ParseTimeRange(s string) (TimeRange, bool) {
	switch s {
	case "", "all":
		return TimeRangeAllTime, true
	case "30d":
		return TimeRange30Days, true
	case "7d":
		return TimeRange7Days, true
	case "24h", "1d":
		return TimeRange24Hours, true
	default:
		return TimeRangeAllTime, false
	}
}

// Key returns the flag value that ParseTimeRange accepts for t.
func (t TimeRange) Key() string {
	switch t {
	case TimeRange24Hours:
		return "24h"
	case TimeRange7Days:
		return "7d"
	case TimeRange30Days:
		return "30d"
	default:
		return "all"
	}
}

// MarshalText encodes the range by its flag value.
func (t TimeRange) MarshalText() ([]byte, error) {
	return []byte(t.Key()), nil
}
