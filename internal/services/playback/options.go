// Package playback aggregates text-to-speech playback events into cost,
// quota, time-series, leaderboard and engagement statistics.
package playback

import "time"

const (
	// TopArticlesLimit caps the top-articles leaderboard.
	TopArticlesLimit = 10
	// TopUsersLimit caps the top-users leaderboard.
	TopUsersLimit = 10
	// TopRepeatedLimit caps the most-repeated-sentences list.
	TopRepeatedLimit = 5

	dateKeyLayout = "2006-01-02"
)

type options struct {
	loc *time.Location
}

// Option configures an aggregation.
type Option func(*options)

// WithLocation sets the zone used for calendar-date and hour bucketing.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

func newOptions(opts []Option) options {
	o := options{loc: time.Local}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
