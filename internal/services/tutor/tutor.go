// Package tutor aggregates AI-tutor request events into token, cost, model,
// conversation-thread and activity statistics.
package tutor

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
)

const (
	// MaxResponseGap is the exclusive upper bound on the delay between two
	// requests of a thread for it to count as a live back-and-forth.
	MaxResponseGap = 5 * time.Minute
	// RecentLimit caps the recent-sessions list.
	RecentLimit = 10
	// TopUsersLimit caps the per-user leaderboard.
	TopUsersLimit = 10
)

type options struct {
	loc *time.Location
}

// Option configures an aggregation.
type Option func(*options)

// WithLocation sets the zone used for hour-of-day bucketing.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

type threadKey struct {
	articleID string
	sentence  int
	user      string
}

type partition struct {
	cost                 decimal.Decimal
	input, output, total int64
	count                int
}

func (p *partition) add(e *models.TutorEvent) {
	p.cost = p.cost.Add(e.TotalCost)
	p.input += e.InputTokens
	p.output += e.OutputTokens
	p.total += e.TotalTokens
	p.count++
}

func (p *partition) averages() models.TokenAverages {
	avg := models.TokenAverages{TotalCost: p.cost, Count: p.count}
	if p.count > 0 {
		n := float64(p.count)
		avg.AvgInputTokens = float64(p.input) / n
		avg.AvgOutputTokens = float64(p.output) / n
		avg.AvgTotalTokens = float64(p.total) / n
	}
	return avg
}

// Aggregate computes the tutor report for events. Events are not modified.
func Aggregate(events []models.TutorEvent, opts ...Option) *models.TutorReport {
	o := options{loc: time.Local}
	for _, opt := range opts {
		opt(&o)
	}

	r := &models.TutorReport{
		TotalCost:             decimal.Zero,
		AverageCostPerRequest: decimal.Zero,
		SessionsByUser:        make(map[string]int),
		TotalRequests:         len(events),
	}

	initial := partition{cost: decimal.Zero}
	followUp := partition{cost: decimal.Zero}
	byModel := make(map[string]int)
	threads := make(map[threadKey][]models.TutorEvent)

	for i := range events {
		e := &events[i]

		r.TotalInputTokens += e.InputTokens
		r.TotalOutputTokens += e.OutputTokens
		r.TotalTokens += e.TotalTokens
		r.TotalCost = r.TotalCost.Add(e.TotalCost)

		byModel[e.ModelName]++

		if e.IsFollowUp {
			followUp.add(e)
		} else {
			initial.add(e)
		}

		key := threadKey{articleID: e.ArticleID, sentence: e.SentenceIndex, user: e.UserKey()}
		threads[key] = append(threads[key], *e)

		r.HourlyDistribution[e.CreatedAt.In(o.loc).Hour()]++

		if e.UserID != "" {
			r.SessionsByUser[e.UserID]++
		}
	}

	r.Initial = initial.averages()
	r.FollowUp = followUp.averages()
	if r.TotalRequests > 0 {
		r.FollowUpRate = float64(followUp.count) / float64(r.TotalRequests) * 100
		r.AverageCostPerRequest = r.TotalCost.Div(decimal.NewFromInt(int64(r.TotalRequests)))
	}

	r.ModelUsage = modelUsage(byModel, r.TotalRequests)
	threadStats(r, threads)
	r.TopUsers = topUsers(r.SessionsByUser)
	r.RecentSessions = recent(events)

	return r
}
