package tutor

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
)

var base = time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)

func event(user, article string, sentence int, offset time.Duration, followUp bool) models.TutorEvent {
	return models.TutorEvent{
		UserID:        user,
		ArticleID:     article,
		SentenceIndex: sentence,
		ModelName:     "gpt-4o-mini",
		InputTokens:   100,
		OutputTokens:  50,
		TotalTokens:   150,
		TotalCost:     decimal.RequireFromString("0.001"),
		IsFollowUp:    followUp,
		CreatedAt:     base.Add(offset),
	}
}

func TestAggregate_Empty(t *testing.T) {
	r := Aggregate(nil, WithLocation(time.UTC))

	if r.HasData() {
		t.Error("empty input should have no data")
	}
	if r.FollowUpRate != 0 || r.AverageResponseTime != 0 || r.AverageThreadLength != 0 {
		t.Errorf("rates should be zero, got %+v", r)
	}
	if !r.AverageCostPerRequest.IsZero() {
		t.Errorf("AverageCostPerRequest = %s, want 0", r.AverageCostPerRequest)
	}
	if r.Initial.AvgTotalTokens != 0 || r.FollowUp.AvgTotalTokens != 0 {
		t.Error("partition averages should be zero when empty")
	}
	if len(r.RecentSessions) != 0 || len(r.ModelUsage) != 0 {
		t.Error("lists should be empty")
	}
}

func TestAggregate_Totals(t *testing.T) {
	events := []models.TutorEvent{
		event("u1", "a", 0, 0, false),
		event("u1", "a", 0, time.Minute, true),
	}
	events[1].InputTokens, events[1].OutputTokens, events[1].TotalTokens = 10, 20, 99
	events[1].TotalCost = decimal.RequireFromString("0.0025")

	r := Aggregate(events, WithLocation(time.UTC))

	if r.TotalRequests != 2 {
		t.Errorf("TotalRequests = %d, want 2", r.TotalRequests)
	}
	if r.TotalInputTokens != 110 || r.TotalOutputTokens != 70 {
		t.Errorf("input/output = %d/%d, want 110/70", r.TotalInputTokens, r.TotalOutputTokens)
	}
	// TotalTokens is summed as recorded, not recomputed from input+output.
	if r.TotalTokens != 249 {
		t.Errorf("TotalTokens = %d, want 249", r.TotalTokens)
	}
	if want := decimal.RequireFromString("0.0035"); !r.TotalCost.Equal(want) {
		t.Errorf("TotalCost = %s, want %s", r.TotalCost, want)
	}
	if want := decimal.RequireFromString("0.00175"); !r.AverageCostPerRequest.Equal(want) {
		t.Errorf("AverageCostPerRequest = %s, want %s", r.AverageCostPerRequest, want)
	}
}

func TestAggregate_FollowUpSplit(t *testing.T) {
	events := []models.TutorEvent{
		event("u1", "a", 0, 0, false),
		event("u1", "a", 1, time.Hour, false),
		event("u2", "b", 0, 2*time.Hour, false),
		event("u1", "a", 0, 10*time.Second, true),
		event("u2", "b", 0, 2*time.Hour+20*time.Second, true),
	}
	events[3].InputTokens = 300

	r := Aggregate(events, WithLocation(time.UTC))

	if r.FollowUpRate != 40 {
		t.Errorf("FollowUpRate = %v, want 40", r.FollowUpRate)
	}
	if r.Initial.Count != 3 || r.FollowUp.Count != 2 {
		t.Errorf("partition counts = %d/%d, want 3/2", r.Initial.Count, r.FollowUp.Count)
	}
	if r.FollowUp.AvgInputTokens != 200 {
		t.Errorf("FollowUp.AvgInputTokens = %v, want 200", r.FollowUp.AvgInputTokens)
	}
	if want := decimal.RequireFromString("0.003"); !r.Initial.TotalCost.Equal(want) {
		t.Errorf("Initial.TotalCost = %s, want %s", r.Initial.TotalCost, want)
	}
}

func TestAggregate_ResponseTime(t *testing.T) {
	tests := []struct {
		name        string
		offsets     []time.Duration
		wantAverage time.Duration
		wantSamples int
	}{
		{
			name:        "OneAcceptedOneTooSlow",
			offsets:     []time.Duration{0, time.Second, time.Second + 400*time.Second},
			wantAverage: time.Second,
			wantSamples: 1,
		},
		{
			name:        "ZeroDeltaDiscarded",
			offsets:     []time.Duration{0, 0},
			wantAverage: 0,
			wantSamples: 0,
		},
		{
			name:        "ExactlyFiveMinutesDiscarded",
			offsets:     []time.Duration{0, 5 * time.Minute},
			wantAverage: 0,
			wantSamples: 0,
		},
		{
			name:        "JustUnderFiveMinutes",
			offsets:     []time.Duration{0, 5*time.Minute - time.Millisecond},
			wantAverage: 5*time.Minute - time.Millisecond,
			wantSamples: 1,
		},
		{
			name:        "Averaged",
			offsets:     []time.Duration{0, 2 * time.Second, 6 * time.Second},
			wantAverage: 3 * time.Second,
			wantSamples: 2,
		},
		{
			name:        "UnorderedInput",
			offsets:     []time.Duration{4 * time.Second, 0, 2 * time.Second},
			wantAverage: 2 * time.Second,
			wantSamples: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var events []models.TutorEvent
			for _, off := range tt.offsets {
				events = append(events, event("u", "a", 3, off, true))
			}
			r := Aggregate(events, WithLocation(time.UTC))
			if r.AverageResponseTime != tt.wantAverage {
				t.Errorf("AverageResponseTime = %v, want %v", r.AverageResponseTime, tt.wantAverage)
			}
			if r.ResponseSamples != tt.wantSamples {
				t.Errorf("ResponseSamples = %d, want %d", r.ResponseSamples, tt.wantSamples)
			}
		})
	}
}

func TestAggregate_Threads(t *testing.T) {
	events := []models.TutorEvent{
		event("u1", "a", 0, 0, false),
		event("u1", "a", 0, time.Second, true),
		event("u1", "a", 0, 2*time.Second, true),
		// Different user on the same sentence is a separate thread.
		event("u2", "a", 0, 3*time.Second, false),
		// Anonymous events share one thread per sentence.
		event("", "a", 0, 4*time.Second, false),
		event("", "a", 0, 5*time.Second, true),
	}

	r := Aggregate(events, WithLocation(time.UTC))

	if r.ThreadCount != 3 {
		t.Errorf("ThreadCount = %d, want 3", r.ThreadCount)
	}
	if r.LongestThread != 3 {
		t.Errorf("LongestThread = %d, want 3", r.LongestThread)
	}
	if r.AverageThreadLength != 2 {
		t.Errorf("AverageThreadLength = %v, want 2", r.AverageThreadLength)
	}
	if r.ResponseSamples != 3 || r.AverageResponseTime != time.Second {
		t.Errorf("response = %v over %d samples, want 1s over 3", r.AverageResponseTime, r.ResponseSamples)
	}
}

func TestAggregate_ModelUsage(t *testing.T) {
	names := []string{"b-model", "a-model", "c-model", "c-model"}
	var events []models.TutorEvent
	for i, name := range names {
		e := event("u", "a", i, time.Duration(i)*time.Hour, false)
		e.ModelName = name
		events = append(events, e)
	}

	r := Aggregate(events, WithLocation(time.UTC))

	want := []models.ModelUsage{
		{Model: "c-model", Count: 2, Percentage: 50},
		{Model: "a-model", Count: 1, Percentage: 25},
		{Model: "b-model", Count: 1, Percentage: 25},
	}
	if !reflect.DeepEqual(r.ModelUsage, want) {
		t.Errorf("ModelUsage = %+v, want %+v", r.ModelUsage, want)
	}

	var sum float64
	for _, m := range r.ModelUsage {
		sum += m.Percentage
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("model percentages sum to %v, want 100", sum)
	}
}

func TestAggregate_HourlyAndUsers(t *testing.T) {
	events := []models.TutorEvent{
		event("u1", "a", 0, 0, false),
		event("u1", "a", 1, 30*time.Minute, false),
		event("u2", "a", 2, 5*time.Hour, false),
		event("", "a", 3, 5*time.Hour, false),
	}

	r := Aggregate(events, WithLocation(time.UTC))

	if r.HourlyDistribution[9] != 2 || r.HourlyDistribution[14] != 2 {
		t.Errorf("HourlyDistribution[9,14] = %d,%d, want 2,2", r.HourlyDistribution[9], r.HourlyDistribution[14])
	}
	total := 0
	for _, n := range r.HourlyDistribution {
		total += n
	}
	if total != len(events) {
		t.Errorf("hourly total = %d, want %d", total, len(events))
	}
	if hour, _ := r.PeakHour(); hour != 9 {
		t.Errorf("PeakHour() = %d, want 9", hour)
	}

	if _, ok := r.SessionsByUser[models.AnonymousUser]; ok {
		t.Error("anonymous events must not appear in SessionsByUser")
	}
	if r.SessionsByUser["u1"] != 2 || r.SessionsByUser["u2"] != 1 {
		t.Errorf("SessionsByUser = %v", r.SessionsByUser)
	}
	if len(r.TopUsers) != 2 || r.TopUsers[0].UserID != "u1" {
		t.Errorf("TopUsers = %+v, want u1 first", r.TopUsers)
	}

	shifted := Aggregate(events, WithLocation(time.FixedZone("UTC-9", -9*3600)))
	if shifted.HourlyDistribution[0] != 2 {
		t.Errorf("shifted HourlyDistribution[0] = %d, want 2", shifted.HourlyDistribution[0])
	}
}

func TestAggregate_RecentSessions(t *testing.T) {
	var events []models.TutorEvent
	for i := range 12 {
		events = append(events, event("u", "a", i, time.Duration(i)*time.Minute, false))
	}

	r := Aggregate(events, WithLocation(time.UTC))

	if len(r.RecentSessions) != RecentLimit {
		t.Fatalf("RecentSessions has %d entries, want %d", len(r.RecentSessions), RecentLimit)
	}
	if r.RecentSessions[0].SentenceIndex != 11 || r.RecentSessions[9].SentenceIndex != 2 {
		t.Errorf("RecentSessions not newest-first: first=%d last=%d",
			r.RecentSessions[0].SentenceIndex, r.RecentSessions[9].SentenceIndex)
	}
	if events[0].SentenceIndex != 0 {
		t.Error("Aggregate must not reorder the caller's events")
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	events := []models.TutorEvent{
		event("u1", "a", 2, 90*time.Second, true),
		event("u1", "a", 2, 0, false),
		event("", "b", 0, time.Hour, false),
		event("u2", "a", 1, 30*time.Minute, false),
	}
	events[3].ModelName = "gpt-4o"
	input := append([]models.TutorEvent(nil), events...)

	first := Aggregate(events, WithLocation(time.UTC))
	second := Aggregate(events, WithLocation(time.UTC))

	if !reflect.DeepEqual(first, second) {
		t.Error("Aggregate should be deterministic for identical input")
	}
	if !reflect.DeepEqual(events, input) {
		t.Error("Aggregate must not modify the caller's events")
	}
}
