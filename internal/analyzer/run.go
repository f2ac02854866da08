package analyzer

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

func (a *implAnalyzer) Run(ctx context.Context, paths []string) models.BatchOutcome {
	outcome := models.BatchOutcome{
		RunID:     a.runID,
		MediaType: a.opts.MediaType,
		Mode:      a.opts.Mode,
		StartedAt: time.Now(),
	}
	results := make([]models.AnalysisResult, len(paths))

	switch len(paths) {
	case 0:
	case 1:
		results[0] = a.AnalyzeOne(ctx, paths[0])
	default:
		a.runConcurrent(ctx, paths, results)
	}

	outcome.Results = results
	outcome.FinishedAt = time.Now()
	a.logger.Info(ctx, "Analysis complete: %d succeeded, %d failed", outcome.Succeeded(), outcome.Failed())
	return outcome
}

// runConcurrent fills results[i] for every i. Tasks never return errors so one
// failure does not stop its siblings; slots left empty by cancellation are
// marked canceled.
func (a *implAnalyzer) runConcurrent(ctx context.Context, paths []string, results []models.AnalysisResult) {
	a.logger.Info(ctx, "Analyzing %d %s files with concurrency %d", len(paths), a.opts.MediaType, a.opts.Concurrency)

	done := make([]bool, len(paths))
	a.progress.Start(len(paths))

	var g errgroup.Group
	g.SetLimit(a.opts.Concurrency)
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res := a.AnalyzeOne(ctx, path)
			results[i] = res
			done[i] = true
			a.progress.Advance(path, res.Success)
			return nil
		})
	}
	_ = g.Wait()
	a.progress.Finish()

	for i, ok := range done {
		if !ok {
			results[i] = models.Failed(a.request(paths[i]), errCanceled, a.baseMetadata())
		}
	}
}
