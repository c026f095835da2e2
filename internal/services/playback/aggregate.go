package playback

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
	"github.com/j-veylop/reader-usage-dashboard/internal/services/voice"
)

type sentenceKey struct {
	articleID string
	sentence  int
}

// accumulator holds the intermediate state of one aggregation pass.
type accumulator struct {
	report       *models.PlaybackReport
	dates        map[string]time.Time
	userArticles map[string]map[string]struct{}
	repetitions  map[sentenceKey]int64
	byArticleSeq map[string][]models.PlaybackEvent
	genderPlays  map[models.Gender]int64
	loc          *time.Location
}

// Aggregate computes the playback report for events. Events are not modified.
func Aggregate(events []models.PlaybackEvent, opts ...Option) *models.PlaybackReport {
	o := newOptions(opts)

	acc := &accumulator{
		report:       newReport(),
		dates:        make(map[string]time.Time),
		userArticles: make(map[string]map[string]struct{}),
		repetitions:  make(map[sentenceKey]int64),
		byArticleSeq: make(map[string][]models.PlaybackEvent),
		genderPlays:  make(map[models.Gender]int64),
		loc:          o.loc,
	}

	for i := range events {
		acc.add(&events[i])
	}

	acc.finish()
	return acc.report
}

func newReport() *models.PlaybackReport {
	r := &models.PlaybackReport{
		TotalCost:          decimal.Zero,
		EffectiveTotalCost: decimal.Zero,
		ByVoiceType:        make(map[models.Tier]models.UsageBucket, 3),
		QuotaUsage:         make(map[models.Tier]int64, 3),
		VoiceUsage:         make(map[string]models.VoiceUsage),
		ByDate:             make(map[string]models.UsageBucket),
		ByArticle:          make(map[string]models.ArticleUsage),
		ByUser:             make(map[string]models.UserUsage),
	}
	for _, tier := range voice.Tiers() {
		r.ByVoiceType[tier] = models.UsageBucket{Cost: decimal.Zero}
		r.QuotaUsage[tier] = 0
	}
	return r
}

func (a *accumulator) add(e *models.PlaybackEvent) {
	r := a.report
	v := voice.Lookup(e.VoiceName)
	chars := e.Characters()
	plays := int64(e.Count)
	cost := voice.Rate(v.Tier).Mul(decimal.NewFromInt(chars))

	r.TotalCharacters += chars
	r.TotalPlays += plays
	r.TotalCost = r.TotalCost.Add(cost)

	r.ByVoiceType[v.Tier] = r.ByVoiceType[v.Tier].Add(chars, plays, cost)
	r.QuotaUsage[v.Tier] += chars

	vu := r.VoiceUsage[e.VoiceName]
	vu.Name, vu.Tier, vu.Gender = v.Name, v.Tier, v.Gender
	vu.Plays += plays
	vu.Characters += chars
	r.VoiceUsage[e.VoiceName] = vu

	if v.Gender != models.GenderUnknown {
		a.genderPlays[v.Gender] += plays
	}

	local := e.CreatedAt.In(a.loc)
	key := local.Format(dateKeyLayout)
	if _, ok := a.dates[key]; !ok {
		y, m, d := local.Date()
		a.dates[key] = time.Date(y, m, d, 0, 0, 0, 0, a.loc)
	}
	r.ByDate[key] = r.ByDate[key].Add(chars, plays, cost)
	r.HourlyPlays[local.Hour()] += plays

	if e.ArticleID != "" {
		au := r.ByArticle[e.ArticleID]
		if au.Heatmap == nil {
			au.ArticleID = e.ArticleID
			au.Heatmap = make(map[int]int64)
			au.Cost = decimal.Zero
		}
		au.Plays += plays
		au.Characters += chars
		au.Cost = au.Cost.Add(cost)
		au.Heatmap[e.SentenceIndex] += plays
		r.ByArticle[e.ArticleID] = au

		a.byArticleSeq[e.ArticleID] = append(a.byArticleSeq[e.ArticleID], *e)
	}

	userKey := e.UserKey()
	uu := r.ByUser[userKey]
	if uu.UserID == "" {
		uu.UserID = userKey
		uu.Cost = decimal.Zero
		a.userArticles[userKey] = make(map[string]struct{})
	}
	uu.Plays += plays
	uu.Characters += chars
	uu.Cost = uu.Cost.Add(cost)
	r.ByUser[userKey] = uu
	if e.ArticleID != "" {
		a.userArticles[userKey][e.ArticleID] = struct{}{}
	}

	a.repetitions[sentenceKey{articleID: e.ArticleID, sentence: e.SentenceIndex}] += plays
}

func (a *accumulator) finish() {
	r := a.report
	r.TotalRequests = r.TotalPlays
	if r.TotalPlays > 0 {
		r.AverageCharactersPerPlay = float64(r.TotalCharacters) / float64(r.TotalPlays)
	}

	a.finishQuotas()
	a.finishVoices()
	a.finishDates()
	a.finishArticles()
	a.finishUsers()
	a.finishRepetitions()
	r.ReadingPattern = readingPattern(a.byArticleSeq)
	a.finishDistributions()
}

func (a *accumulator) finishQuotas() {
	r := a.report
	r.Quotas = make([]models.QuotaStatus, 0, 3)
	for _, tier := range voice.Tiers() {
		used := r.QuotaUsage[tier]
		quota := voice.MonthlyQuota(tier)
		overage := max(used-quota, 0)
		overageCost := voice.OverageCost(tier, used)

		r.EffectiveTotalCost = r.EffectiveTotalCost.Add(overageCost)
		r.Quotas = append(r.Quotas, models.QuotaStatus{
			Tier:        tier,
			Used:        used,
			Quota:       quota,
			Overage:     overage,
			OverageCost: overageCost,
			UsedPercent: models.Percent(used, quota),
			IsOverQuota: overage > 0,
		})
	}
}

func (a *accumulator) finishVoices() {
	r := a.report
	r.VoiceDistribution = make([]models.VoiceUsage, 0, len(r.VoiceUsage))
	for name, vu := range r.VoiceUsage {
		vu.Percentage = models.Percent(vu.Plays, r.TotalPlays)
		r.VoiceUsage[name] = vu
		r.VoiceDistribution = append(r.VoiceDistribution, vu)
	}
	sort.Slice(r.VoiceDistribution, func(i, j int) bool {
		vi, vj := r.VoiceDistribution[i], r.VoiceDistribution[j]
		if vi.Plays != vj.Plays {
			return vi.Plays > vj.Plays
		}
		return vi.Name < vj.Name
	})
}

func (a *accumulator) finishDates() {
	r := a.report
	r.DailyUsage = make([]models.DailyUsage, 0, len(r.ByDate))
	for key, bucket := range r.ByDate {
		r.DailyUsage = append(r.DailyUsage, models.DailyUsage{Date: a.dates[key], UsageBucket: bucket})
	}
	sort.Slice(r.DailyUsage, func(i, j int) bool {
		return r.DailyUsage[i].Date.Before(r.DailyUsage[j].Date)
	})
}

func (a *accumulator) finishArticles() {
	r := a.report
	articles := make([]models.ArticleUsage, 0, len(r.ByArticle))
	for id, au := range r.ByArticle {
		au.UniqueSentences = len(au.Heatmap)
		au.MaxPlays = 0
		for _, plays := range au.Heatmap {
			au.MaxPlays = max(au.MaxPlays, plays)
		}
		r.ByArticle[id] = au
		articles = append(articles, au)
	}
	r.UniqueArticles = len(articles)

	sort.Slice(articles, func(i, j int) bool {
		if articles[i].Plays != articles[j].Plays {
			return articles[i].Plays > articles[j].Plays
		}
		return articles[i].ArticleID < articles[j].ArticleID
	})
	r.TopArticles = articles[:min(len(articles), TopArticlesLimit)]
}

func (a *accumulator) finishUsers() {
	r := a.report
	users := make([]models.UserUsage, 0, len(r.ByUser))
	for id, uu := range r.ByUser {
		uu.UniqueArticles = len(a.userArticles[id])
		r.ByUser[id] = uu
		users = append(users, uu)
	}
	r.UniqueUsers = len(users)

	sort.Slice(users, func(i, j int) bool {
		if users[i].Plays != users[j].Plays {
			return users[i].Plays > users[j].Plays
		}
		return users[i].UserID < users[j].UserID
	})
	r.TopUsers = users[:min(len(users), TopUsersLimit)]
}

func (a *accumulator) finishRepetitions() {
	r := a.report
	reps := make([]models.SentenceRepetition, 0, len(a.repetitions))
	var sum int64
	for key, count := range a.repetitions {
		sum += count
		reps = append(reps, models.SentenceRepetition{
			ArticleID:     key.articleID,
			SentenceIndex: key.sentence,
			Repetitions:   count,
		})
	}
	if len(reps) > 0 {
		r.AverageRepetition = float64(sum) / float64(len(reps))
	}

	sort.Slice(reps, func(i, j int) bool {
		if reps[i].Repetitions != reps[j].Repetitions {
			return reps[i].Repetitions > reps[j].Repetitions
		}
		if reps[i].ArticleID != reps[j].ArticleID {
			return reps[i].ArticleID < reps[j].ArticleID
		}
		return reps[i].SentenceIndex < reps[j].SentenceIndex
	})
	r.TopRepeated = reps[:min(len(reps), TopRepeatedLimit)]
}

func (a *accumulator) finishDistributions() {
	r := a.report
	r.TierDistribution = make([]models.Share, 0, 3)
	for _, tier := range voice.Tiers() {
		plays := r.ByVoiceType[tier].Plays
		r.TierDistribution = append(r.TierDistribution, models.Share{
			Label:      string(tier),
			Count:      plays,
			Percentage: models.Percent(plays, r.TotalPlays),
		})
	}

	var known int64
	for _, plays := range a.genderPlays {
		known += plays
	}
	r.GenderDistribution = make([]models.Share, 0, 2)
	for _, g := range []models.Gender{models.GenderFemale, models.GenderMale} {
		r.GenderDistribution = append(r.GenderDistribution, models.Share{
			Label:      string(g),
			Count:      a.genderPlays[g],
			Percentage: models.Percent(a.genderPlays[g], known),
		})
	}
}
