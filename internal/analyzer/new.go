package analyzer

import (
	"github.com/google/uuid"

	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
	"github.com/recreate-run/multimodal-analyzer/internal/logger"
	"github.com/recreate-run/multimodal-analyzer/internal/media"
	"github.com/recreate-run/multimodal-analyzer/internal/models"
	"github.com/recreate-run/multimodal-analyzer/internal/provider"
)

// Options configure one analyzer run.
type Options struct {
	MediaType models.MediaType
	Mode      models.Mode
	Route     provider.Route
	Prompt    string
	// ImagePrompt replaces an empty image prompt.
	ImagePrompt string
	System      string
	WordCount   int
	Concurrency int
	// Verbose adds probe metadata to every result.
	Verbose bool
}

type implAnalyzer struct {
	opts     Options
	variant  Variant
	encoder  media.Encoder
	provider provider.Provider
	logger   logger.Logger
	progress Progress
	runID    string
}

// New validates opts against the variant table and the provider's capabilities.
// progress may be nil.
func New(opts Options, enc media.Encoder, p provider.Provider, log logger.Logger, progress Progress) (Analyzer, error) {
	v, err := VariantFor(opts.MediaType)
	if err != nil {
		return nil, err
	}
	if err := v.CheckMode(opts.Mode); err != nil {
		return nil, err
	}
	if !p.Supports(opts.MediaType) {
		return nil, apperror.Validation("%s analysis only supports Gemini models. Received: %s",
			opts.MediaType.Title(), opts.Route.ID)
	}
	if opts.WordCount < 1 {
		return nil, apperror.Validation("Word count must be at least 1")
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if progress == nil {
		progress = NopProgress()
	}

	return &implAnalyzer{
		opts:     opts,
		variant:  v,
		encoder:  enc,
		provider: p,
		logger:   log,
		progress: progress,
		runID:    uuid.NewString(),
	}, nil
}
