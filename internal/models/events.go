// Package models defines data structures and domain types.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnonymousUser is the bucket key used for events without a user id.
const AnonymousUser = "anonymous"

// PlaybackEvent is one observed text-to-speech play configuration. Rows are
// count-collapsed at the source: Count is how many times the same
// (article, sentence, voice) was played.
type PlaybackEvent struct {
	CreatedAt      time.Time `json:"createdAt"`
	ID             string    `json:"id,omitempty"`
	ArticleID      string    `json:"articleId,omitempty"`
	UserID         string    `json:"userId,omitempty"`
	VoiceName      string    `json:"voiceName"`
	SentenceIndex  int       `json:"sentenceIndex"`
	CharacterCount int       `json:"characterCount"`
	Count          int       `json:"count"`
}

// Characters returns the characters synthesized across all plays of the row.
func (e *PlaybackEvent) Characters() int64 {
	return int64(e.CharacterCount) * int64(e.Count)
}

// UserKey returns the user id, or AnonymousUser when absent.
func (e *PlaybackEvent) UserKey() string {
	if e.UserID == "" {
		return AnonymousUser
	}
	return e.UserID
}

// TutorEvent is one AI-tutor request/response pair.
type TutorEvent struct {
	CreatedAt     time.Time       `json:"createdAt"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	ID            string          `json:"id,omitempty"`
	ArticleID     string          `json:"articleId,omitempty"`
	UserID        string          `json:"userId,omitempty"`
	ModelName     string          `json:"modelName"`
	SentenceIndex int             `json:"sentenceIndex"`
	InputTokens   int64           `json:"inputTokens"`
	OutputTokens  int64           `json:"outputTokens"`
	TotalTokens   int64           `json:"totalTokens"`
	IsFollowUp    bool            `json:"isFollowUp"`
}

// UserKey returns the user id, or AnonymousUser when absent.
func (e *TutorEvent) UserKey() string {
	if e.UserID == "" {
		return AnonymousUser
	}
	return e.UserID
}

// CompletionEvent marks an article as finished by a user.
type CompletionEvent struct {
	FinishedAt time.Time `json:"finishedAt"`
	ID         string    `json:"id,omitempty"`
	UserID     string    `json:"userId"`
	ArticleID  string    `json:"articleId,omitempty"`
}

// EventBatch groups the three event collections for a reporting window.
type EventBatch struct {
	Playback    []PlaybackEvent   `json:"playback"`
	Tutor       []TutorEvent      `json:"tutor"`
	Completions []CompletionEvent `json:"completions"`
}

// Len returns the total number of events in the batch.
func (b *EventBatch) Len() int {
	return len(b.Playback) + len(b.Tutor) + len(b.Completions)
}
