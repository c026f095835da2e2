package tutor

import (
	"sort"
	"time"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
)

func modelUsage(counts map[string]int, total int) []models.ModelUsage {
	usage := make([]models.ModelUsage, 0, len(counts))
	for name, count := range counts {
		usage = append(usage, models.ModelUsage{
			Model:      name,
			Count:      count,
			Percentage: models.Percent(int64(count), int64(total)),
		})
	}
	sort.Slice(usage, func(i, j int) bool {
		if usage[i].Count != usage[j].Count {
			return usage[i].Count > usage[j].Count
		}
		return usage[i].Model < usage[j].Model
	})
	return usage
}

// threadStats sorts each thread by CreatedAt and fills the response-time and
// thread-shape fields of r. Only deltas strictly between zero and
// MaxResponseGap are averaged.
func threadStats(r *models.TutorReport, threads map[threadKey][]models.TutorEvent) {
	var accepted, sum int64
	events := 0
	for _, thread := range threads {
		events += len(thread)
		r.LongestThread = max(r.LongestThread, len(thread))
		if len(thread) < 2 {
			continue
		}
		sort.SliceStable(thread, func(i, j int) bool {
			return thread[i].CreatedAt.Before(thread[j].CreatedAt)
		})
		for i := 1; i < len(thread); i++ {
			delta := thread[i].CreatedAt.Sub(thread[i-1].CreatedAt)
			if delta > 0 && delta < MaxResponseGap {
				sum += int64(delta)
				accepted++
			}
		}
	}

	r.ThreadCount = len(threads)
	if r.ThreadCount > 0 {
		r.AverageThreadLength = float64(events) / float64(r.ThreadCount)
	}
	r.ResponseSamples = int(accepted)
	if accepted > 0 {
		r.AverageResponseTime = time.Duration(sum / accepted)
	}
}

func topUsers(sessions map[string]int) []models.UserSessions {
	users := make([]models.UserSessions, 0, len(sessions))
	for id, n := range sessions {
		users = append(users, models.UserSessions{UserID: id, Sessions: n})
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Sessions != users[j].Sessions {
			return users[i].Sessions > users[j].Sessions
		}
		return users[i].UserID < users[j].UserID
	})
	return users[:min(len(users), TopUsersLimit)]
}

// recent returns the newest events first without touching the input slice.
func recent(events []models.TutorEvent) []models.TutorEvent {
	sorted := make([]models.TutorEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted[:min(len(sorted), RecentLimit)]
}
