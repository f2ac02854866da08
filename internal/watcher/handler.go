package watcher

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/recreate-run/multimodal-analyzer/internal/analyzer"
	"github.com/recreate-run/multimodal-analyzer/internal/logger"
	"github.com/recreate-run/multimodal-analyzer/internal/output"
)

// AnalyzeHandler runs each file through a and appends its JSON record to out
// as one line. Writes are serialized.
func AnalyzeHandler(a analyzer.Analyzer, out io.Writer, verbose bool, log logger.Logger) Handler {
	var mu sync.Mutex

	return func(ctx context.Context, path string) error {
		res := a.AnalyzeOne(ctx, path)
		if !res.Success {
			log.Warn(ctx, "Analysis failed for %s: %s", path, res.Error)
		}

		line, err := output.RenderJSONLine(res, verbose)
		if err != nil {
			return fmt.Errorf("render result: %w", err)
		}

		mu.Lock()
		defer mu.Unlock()
		if _, err := out.Write(line); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		return nil
	}
}
