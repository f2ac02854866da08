package analyzer

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
	"github.com/recreate-run/multimodal-analyzer/internal/models"
	"github.com/recreate-run/multimodal-analyzer/internal/provider"
)

var errCanceled = errors.New("canceled")

func (a *implAnalyzer) request(path string) models.AnalysisRequest {
	return models.AnalysisRequest{
		MediaPath: path,
		MediaType: a.opts.MediaType,
		Mode:      a.opts.Mode,
		Prompt:    a.opts.Prompt,
		WordCount: a.opts.WordCount,
		Model:     a.opts.Route.ID,
	}
}

func (a *implAnalyzer) baseMetadata() map[string]any {
	meta := map[string]any{
		"run_id":     a.runID,
		"word_count": a.opts.WordCount,
	}
	if a.opts.Mode != models.ModeNone {
		meta["mode"] = string(a.opts.Mode)
	}
	return meta
}

func (a *implAnalyzer) AnalyzeOne(ctx context.Context, path string) models.AnalysisResult {
	req := a.request(path)
	meta := a.baseMetadata()
	start := time.Now()

	fail := func(err error) models.AnalysisResult {
		if ctx.Err() != nil {
			err = errCanceled
		}
		if kind := apperror.KindOf(err); kind != "" {
			meta["error_kind"] = string(kind)
		}
		meta["elapsed_ms"] = time.Since(start).Milliseconds()
		a.logger.Warn(ctx, "Failed to analyze %s: %v", path, err)
		return models.Failed(req, err, meta)
	}

	if ctx.Err() != nil {
		return fail(ctx.Err())
	}

	payload, err := a.encoder.Encode(ctx, path, a.opts.MediaType)
	if err != nil {
		return fail(err)
	}
	meta["mime_type"] = payload.MIMEType
	meta["size_bytes"] = payload.SizeBytes
	meta["reencoded"] = payload.Reencoded
	if a.opts.MediaType == models.MediaAudio {
		meta["extracted_audio"] = payload.ExtractedAudio
	}

	if a.opts.Verbose {
		a.probe(ctx, path, meta)
	}

	text, err := a.provider.Complete(ctx, provider.Request{
		Model:  a.opts.Route.Model,
		System: a.opts.System,
		Prompt: a.variant.BuildPrompt(req, a.opts.ImagePrompt),
		Attachments: []provider.Attachment{{
			MIMEType: payload.MIMEType,
			Data:     payload.Data,
			Base64:   payload.Base64,
		}},
	})
	if err != nil {
		return fail(err)
	}

	meta["elapsed_ms"] = time.Since(start).Milliseconds()
	a.logger.Debug(ctx, "Analyzed %s in %dms", path, meta["elapsed_ms"])
	return models.Succeeded(req, text, meta)
}

// probe is best effort: failures are recorded, never fatal.
func (a *implAnalyzer) probe(ctx context.Context, path string, meta map[string]any) {
	info, err := a.encoder.Probe(ctx, path, a.opts.MediaType)
	if err != nil {
		a.logger.Warn(ctx, "Probe failed for %s: %v", path, err)
		meta["probe_error"] = err.Error()
		return
	}
	maps.Copy(meta, info)
}
