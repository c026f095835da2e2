package importer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)

func TestDecode(t *testing.T) {
	input := `{
		"playback": [
			{"articleId": "a1", "sentenceIndex": 2, "voiceName": "en-US-Neural2-C", "characterCount": 40, "createdAt": "2024-04-30T10:00:00Z"},
			{"voiceName": "en-US-Standard-B", "characterCount": 10, "count": 3}
		],
		"tutor": [
			{"modelName": "gpt-4o-mini", "inputTokens": 10, "outputTokens": 5, "totalCost": "0.0012", "isFollowUp": true}
		],
		"completions": [
			{"userId": "u1", "articleId": "a1", "finishedAt": "2024-04-30T11:00:00Z"}
		]
	}`

	b, err := Decode(strings.NewReader(input), testNow)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}

	if b.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", b.Len())
	}
	if b.Playback[0].Count != 1 {
		t.Errorf("default count = %d, want 1", b.Playback[0].Count)
	}
	if b.Playback[1].Count != 3 {
		t.Errorf("explicit count = %d, want 3", b.Playback[1].Count)
	}
	if !b.Playback[1].CreatedAt.Equal(testNow) {
		t.Errorf("missing createdAt = %v, want %v", b.Playback[1].CreatedAt, testNow)
	}
	if b.Tutor[0].TotalTokens != 15 {
		t.Errorf("derived totalTokens = %d, want 15", b.Tutor[0].TotalTokens)
	}
	if b.Tutor[0].TotalCost.String() != "0.0012" {
		t.Errorf("totalCost = %s, want 0.0012", b.Tutor[0].TotalCost)
	}
	if !b.Tutor[0].IsFollowUp {
		t.Error("isFollowUp should be preserved")
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing voice", `{"playback":[{"characterCount":5}]}`},
		{"zero characters", `{"playback":[{"voiceName":"v","characterCount":0}]}`},
		{"negative count", `{"playback":[{"voiceName":"v","characterCount":5,"count":-1}]}`},
		{"negative sentence", `{"playback":[{"voiceName":"v","characterCount":5,"sentenceIndex":-1}]}`},
		{"negative tokens", `{"tutor":[{"modelName":"m","inputTokens":-1}]}`},
		{"negative cost", `{"tutor":[{"modelName":"m","totalCost":"-0.5"}]}`},
		{"completion without user", `{"completions":[{"articleId":"a"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), testNow)
			if !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("Decode() error = %v, want ErrInvalidEvent", err)
			}
		})
	}
}

func TestDecode_TotalTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"absent is derived", `{"tutor":[{"modelName":"m","inputTokens":5,"outputTokens":3}]}`, 8},
		{"explicit zero is kept", `{"tutor":[{"modelName":"m","inputTokens":5,"outputTokens":3,"totalTokens":0}]}`, 0},
		{"explicit mismatch is kept", `{"tutor":[{"modelName":"m","inputTokens":5,"outputTokens":3,"totalTokens":20}]}`, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Decode(strings.NewReader(tt.input), testNow)
			if err != nil {
				t.Fatalf("Decode() failed: %v", err)
			}
			if got := b.Tutor[0].TotalTokens; got != tt.want {
				t.Errorf("TotalTokens = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []string{
		`not json`,
		`{"playback": {}}`,
		`{"unknown": []}`,
	}
	for _, input := range tests {
		_, err := Decode(strings.NewReader(input), testNow)
		if err == nil {
			t.Errorf("Decode(%q) should fail", input)
		}
		if errors.Is(err, ErrInvalidEvent) {
			t.Errorf("Decode(%q) should be a decode error, not a validation error", input)
		}
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	if err := os.WriteFile(path, []byte(`{"completions":[{"userId":"u"}]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	b, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if len(b.Completions) != 1 || b.Completions[0].FinishedAt.IsZero() {
		t.Errorf("completions = %+v", b.Completions)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadFile() should fail for a missing file")
	}
}
