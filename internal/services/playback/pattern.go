package playback

import (
	"sort"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
)

// readingPattern classifies adjacent plays within each article as sequential
// (next sentence) or a jump. Each group is sorted in place by CreatedAt.
func readingPattern(byArticle map[string][]models.PlaybackEvent) models.ReadingPattern {
	var p models.ReadingPattern
	for _, group := range byArticle {
		if len(group) < 2 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})
		for i := 1; i < len(group); i++ {
			if group[i].SentenceIndex == group[i-1].SentenceIndex+1 {
				p.Sequential++
			} else {
				p.Jumps++
			}
		}
	}
	return p
}
