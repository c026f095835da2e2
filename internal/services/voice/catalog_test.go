package voice

import (
	"sort"
	"testing"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
)

func TestGenderOf(t *testing.T) {
	tests := []struct {
		voice string
		want  models.Gender
	}{
		{"en-US-Standard-C", models.GenderFemale},
		{"en-US-Wavenet-D", models.GenderMale},
		{"en-GB-Neural2-A", models.GenderFemale},
		{"en-AU-Standard-A", models.GenderUnknown},
		{"", models.GenderUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.voice, func(t *testing.T) {
			if got := GenderOf(tt.voice); got != tt.want {
				t.Errorf("GenderOf(%q) = %v, want %v", tt.voice, got, tt.want)
			}
		})
	}
}

func TestLookup_Unlisted(t *testing.T) {
	v := Lookup("custom-Neural2-X")
	if v.Tier != models.TierNeural2 {
		t.Errorf("Lookup tier = %v, want Neural2", v.Tier)
	}
	if v.Gender != models.GenderUnknown {
		t.Errorf("Lookup gender = %v, want unknown", v.Gender)
	}
}

func TestVoices_Sorted(t *testing.T) {
	voices := Voices()
	if len(voices) == 0 {
		t.Fatal("Voices() returned empty catalog")
	}
	if !sort.SliceIsSorted(voices, func(i, j int) bool { return voices[i].Name < voices[j].Name }) {
		t.Error("Voices() should be sorted by name")
	}
	for _, v := range voices {
		if v.Gender == models.GenderUnknown {
			t.Errorf("listed voice %s has unknown gender", v.Name)
		}
	}
}
