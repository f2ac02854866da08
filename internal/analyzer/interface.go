package analyzer

import (
	"context"

	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

// Analyzer runs analysis requests for one media type against one provider.
type Analyzer interface {
	// AnalyzeOne never returns an error: failures are recorded in the result.
	AnalyzeOne(ctx context.Context, path string) models.AnalysisResult
	// Run analyzes paths with bounded concurrency. The outcome has exactly one
	// result per path, in the same order.
	Run(ctx context.Context, paths []string) models.BatchOutcome
}

// Progress receives one Advance per completed file.
type Progress interface {
	Start(total int)
	Advance(path string, ok bool)
	Finish()
}
