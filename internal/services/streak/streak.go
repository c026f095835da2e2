// Package streak computes consecutive-calendar-day activity streaks.
package streak

import (
	"sort"
	"time"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
)

// civilDate is a calendar date with no time-of-day or zone attached.
type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time, loc *time.Location) civilDate {
	y, m, d := t.In(loc).Date()
	return civilDate{year: y, month: m, day: d}
}

// ordinal returns a day number where consecutive dates differ by exactly one.
// Computed in UTC so DST shifts in the caller's zone cannot skew it.
func (d civilDate) ordinal() int {
	return int(time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// Calculate returns the current and longest streak of consecutive local
// calendar days in timestamps. The current streak is alive only if the most
// recent date is today or yesterday relative to now.
func Calculate(timestamps []time.Time, now time.Time, loc *time.Location) models.Streak {
	if loc == nil {
		loc = time.Local
	}

	seen := make(map[int]civilDate, len(timestamps))
	for _, ts := range timestamps {
		d := dateOf(ts, loc)
		seen[d.ordinal()] = d
	}
	if len(seen) == 0 {
		return models.Streak{}
	}

	days := make([]int, 0, len(seen))
	for ord := range seen {
		days = append(days, ord)
	}
	sort.Ints(days)

	latest := seen[days[len(days)-1]]
	result := models.Streak{
		ActiveDays: len(days),
		LastActive: time.Date(latest.year, latest.month, latest.day, 0, 0, 0, 0, loc),
		Longest:    longestRun(days),
		Current:    currentRun(days, dateOf(now, loc).ordinal()),
	}
	return result
}

// longestRun walks ascending day ordinals and returns the longest run of
// one-day steps.
func longestRun(days []int) int {
	if len(days) <= 1 {
		return len(days)
	}
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i]-days[i-1] == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// currentRun walks ascending day ordinals backwards from the most recent.
func currentRun(days []int, today int) int {
	last := days[len(days)-1]
	if gap := today - last; gap != 0 && gap != 1 {
		return 0
	}
	current := 1
	for i := len(days) - 1; i > 0; i-- {
		if days[i]-days[i-1] != 1 {
			break
		}
		current++
	}
	return current
}

// FromCompletions computes the streak over completion events. A non-empty
// userID restricts the input to that user's completions.
func FromCompletions(events []models.CompletionEvent, userID string, now time.Time, loc *time.Location) models.Streak {
	timestamps := make([]time.Time, 0, len(events))
	for i := range events {
		if userID != "" && events[i].UserID != userID {
			continue
		}
		timestamps = append(timestamps, events[i].FinishedAt)
	}
	return Calculate(timestamps, now, loc)
}
