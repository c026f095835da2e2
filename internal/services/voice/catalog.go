package voice

import (
	"sort"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
)

// Voice is one catalog entry.
type Voice struct {
	Name   string        `json:"name"`
	Tier   models.Tier   `json:"tier"`
	Gender models.Gender `json:"gender"`
}

// genders lists the voices the reader offers. Anything missing here has an
// unknown gender; there is no fallback rule.
var genders = map[string]models.Gender{
	"en-US-Standard-A": models.GenderMale,
	"en-US-Standard-B": models.GenderMale,
	"en-US-Standard-C": models.GenderFemale,
	"en-US-Standard-D": models.GenderMale,
	"en-US-Standard-E": models.GenderFemale,
	"en-US-Standard-F": models.GenderFemale,
	"en-US-Standard-G": models.GenderFemale,
	"en-US-Standard-H": models.GenderFemale,
	"en-US-Standard-I": models.GenderMale,
	"en-US-Standard-J": models.GenderMale,

	"en-US-Neural2-A": models.GenderMale,
	"en-US-Neural2-C": models.GenderFemale,
	"en-US-Neural2-D": models.GenderMale,
	"en-US-Neural2-E": models.GenderFemale,
	"en-US-Neural2-F": models.GenderFemale,
	"en-US-Neural2-G": models.GenderFemale,
	"en-US-Neural2-H": models.GenderFemale,
	"en-US-Neural2-I": models.GenderMale,
	"en-US-Neural2-J": models.GenderMale,

	"en-US-Wavenet-A": models.GenderMale,
	"en-US-Wavenet-B": models.GenderMale,
	"en-US-Wavenet-C": models.GenderFemale,
	"en-US-Wavenet-D": models.GenderMale,
	"en-US-Wavenet-E": models.GenderFemale,
	"en-US-Wavenet-F": models.GenderFemale,
	"en-US-Wavenet-G": models.GenderFemale,
	"en-US-Wavenet-H": models.GenderFemale,
	"en-US-Wavenet-I": models.GenderMale,
	"en-US-Wavenet-J": models.GenderMale,

	"en-GB-Standard-A": models.GenderFemale,
	"en-GB-Standard-B": models.GenderMale,
	"en-GB-Standard-C": models.GenderFemale,
	"en-GB-Standard-D": models.GenderMale,
	"en-GB-Standard-F": models.GenderFemale,

	"en-GB-Neural2-A": models.GenderFemale,
	"en-GB-Neural2-B": models.GenderMale,
	"en-GB-Neural2-C": models.GenderFemale,
	"en-GB-Neural2-D": models.GenderMale,
	"en-GB-Neural2-F": models.GenderFemale,

	"en-GB-Wavenet-A": models.GenderFemale,
	"en-GB-Wavenet-B": models.GenderMale,
	"en-GB-Wavenet-C": models.GenderFemale,
	"en-GB-Wavenet-D": models.GenderMale,
	"en-GB-Wavenet-F": models.GenderFemale,
}

// GenderOf returns the spoken gender of a voice, or GenderUnknown.
func GenderOf(voiceName string) models.Gender {
	if g, ok := genders[voiceName]; ok {
		return g
	}
	return models.GenderUnknown
}

// Lookup returns the catalog entry for a voice name. Unlisted names still
// resolve: tier by substring, gender unknown.
func Lookup(voiceName string) Voice {
	return Voice{
		Name:   voiceName,
		Tier:   ClassifyTier(voiceName),
		Gender: GenderOf(voiceName),
	}
}

// Voices returns the listed voices sorted by name.
func Voices() []Voice {
	out := make([]Voice, 0, len(genders))
	for name := range genders {
		out = append(out, Lookup(name))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
