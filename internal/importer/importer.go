// Package importer decodes event dumps into batches ready for storage.
package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
)

// ErrInvalidEvent is wrapped by every validation failure.
var ErrInvalidEvent = errors.New("invalid event")

// ReadFile decodes and validates the dump at path.
func ReadFile(path string) (*models.EventBatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()
	return Decode(f, time.Now())
}

// tutorRecord shadows TotalTokens so an explicit zero can be told apart
// from an absent key.
type tutorRecord struct {
	models.TutorEvent
	TotalTokens *int64 `json:"totalTokens"`
}

type document struct {
	Playback    []models.PlaybackEvent   `json:"playback"`
	Tutor       []tutorRecord            `json:"tutor"`
	Completions []models.CompletionEvent `json:"completions"`
}

// Decode reads a JSON object with playback, tutor and completions arrays.
// Missing timestamps default to now and a missing play count defaults to 1.
// A tutor event's totalTokens is kept as given; only an absent key is
// filled with input plus output.
func Decode(r io.Reader, now time.Time) (*models.EventBatch, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode import: %w", err)
	}

	batch := models.EventBatch{
		Playback:    doc.Playback,
		Completions: doc.Completions,
	}
	if len(doc.Tutor) > 0 {
		batch.Tutor = make([]models.TutorEvent, len(doc.Tutor))
		for i, rec := range doc.Tutor {
			e := rec.TutorEvent
			if rec.TotalTokens != nil {
				e.TotalTokens = *rec.TotalTokens
			} else {
				e.TotalTokens = e.InputTokens + e.OutputTokens
			}
			batch.Tutor[i] = e
		}
	}

	if err := normalize(&batch, now); err != nil {
		return nil, err
	}
	return &batch, nil
}

func normalize(b *models.EventBatch, now time.Time) error {
	for i := range b.Playback {
		e := &b.Playback[i]
		if e.Count == 0 {
			e.Count = 1
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		switch {
		case e.VoiceName == "":
			return invalid("playback", i, "voiceName is required")
		case e.CharacterCount <= 0:
			return invalid("playback", i, "characterCount must be positive")
		case e.Count < 0:
			return invalid("playback", i, "count must be positive")
		case e.SentenceIndex < 0:
			return invalid("playback", i, "sentenceIndex must not be negative")
		}
	}

	for i := range b.Tutor {
		e := &b.Tutor[i]
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		switch {
		case e.InputTokens < 0 || e.OutputTokens < 0 || e.TotalTokens < 0:
			return invalid("tutor", i, "token counts must not be negative")
		case e.TotalCost.IsNegative():
			return invalid("tutor", i, "totalCost must not be negative")
		case e.SentenceIndex < 0:
			return invalid("tutor", i, "sentenceIndex must not be negative")
		}
	}

	for i := range b.Completions {
		e := &b.Completions[i]
		if e.FinishedAt.IsZero() {
			e.FinishedAt = now
		}
		if e.UserID == "" {
			return invalid("completions", i, "userId is required")
		}
	}
	return nil
}

func invalid(kind string, index int, msg string) error {
	return fmt.Errorf("%w: %s[%d]: %s", ErrInvalidEvent, kind, index, msg)
}
