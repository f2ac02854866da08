package analyzer

import (
	"slices"

	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
	"github.com/recreate-run/multimodal-analyzer/internal/models"
	"github.com/recreate-run/multimodal-analyzer/internal/prompt"
)

// Variant holds everything that differs between image, audio and video analysis.
type Variant struct {
	MediaType models.MediaType
	// Modes lists the accepted modes. Empty means the type takes no mode.
	Modes []models.Mode
	// BuildPrompt renders the user text; imageDefault replaces an empty image prompt.
	BuildPrompt func(req models.AnalysisRequest, imageDefault string) string
}

var variants = map[models.MediaType]Variant{
	models.MediaImage: {
		MediaType:   models.MediaImage,
		BuildPrompt: prompt.User,
	},
	models.MediaAudio: {
		MediaType:   models.MediaAudio,
		Modes:       []models.Mode{models.ModeTranscript, models.ModeDescription},
		BuildPrompt: prompt.User,
	},
	models.MediaVideo: {
		MediaType:   models.MediaVideo,
		Modes:       []models.Mode{models.ModeDescription},
		BuildPrompt: prompt.User,
	},
}

// VariantFor returns the variant for t.
func VariantFor(t models.MediaType) (Variant, error) {
	v, ok := variants[t]
	if !ok {
		return Variant{}, apperror.Validation("Unsupported media type: %s", t)
	}
	return v, nil
}

// CheckMode rejects a mode the variant does not accept.
func (v Variant) CheckMode(m models.Mode) error {
	if len(v.Modes) == 0 {
		if m != models.ModeNone {
			return apperror.Validation("%s analysis does not take a mode (got %q)", v.MediaType, m)
		}
		return nil
	}
	if !slices.Contains(v.Modes, m) {
		return apperror.Validation("Invalid %s mode %q", v.MediaType, m)
	}
	return nil
}
