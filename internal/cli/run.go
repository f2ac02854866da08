package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/recreate-run/multimodal-analyzer/internal/analyzer"
	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
	"github.com/recreate-run/multimodal-analyzer/internal/config"
	"github.com/recreate-run/multimodal-analyzer/internal/discovery"
	"github.com/recreate-run/multimodal-analyzer/internal/logger"
	"github.com/recreate-run/multimodal-analyzer/internal/media"
	"github.com/recreate-run/multimodal-analyzer/internal/output"
	"github.com/recreate-run/multimodal-analyzer/internal/prompt"
	"github.com/recreate-run/multimodal-analyzer/internal/provider"
	"github.com/recreate-run/multimodal-analyzer/internal/streaming"
	"github.com/recreate-run/multimodal-analyzer/internal/watcher"
)

// invocation is everything resolved before the first file is touched.
type invocation struct {
	cfg      *config.Config
	log      logger.Logger
	resolved config.Resolved
	route    provider.Route
	system   string
}

func (a *app) run(ctx context.Context, flags *pflag.FlagSet) error {
	inv, err := a.prepare(flags)
	if err != nil {
		return err
	}
	defer inv.log.Sync()

	switch {
	case inv.resolved.Streaming:
		return a.runStreaming(ctx, inv)
	case a.opts.Watch:
		return a.runWatch(ctx, inv)
	}
	return a.runBatch(ctx, inv)
}

// prepare validates the invocation. Nothing here reads media files or opens a
// provider client.
func (a *app) prepare(flags *pflag.FlagSet) (*invocation, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	a.applyConfigDefaults(flags, cfg)

	log, err := logger.NewWithWriter(a.opts.LogLevel, cfg.Logging.Format, a.deps.Stderr)
	if err != nil {
		return nil, apperror.Validation("%v", err)
	}

	resolved, err := a.opts.Validate(cfg)
	if err != nil {
		return nil, err
	}

	route, err := provider.Resolve(a.opts.Model)
	if err != nil {
		return nil, err
	}
	if err := provider.CheckCapability(route, resolved.MediaType); err != nil {
		return nil, err
	}

	system, err := prompt.System(resolved.MediaType, a.opts.SystemPromptFile)
	if err != nil {
		return nil, err
	}

	return &invocation{
		cfg:      cfg,
		log:      log,
		resolved: resolved,
		route:    route,
		system:   system,
	}, nil
}

func (a *app) open(ctx context.Context, inv *invocation) (provider.Provider, error) {
	p, _, err := a.deps.Open(ctx, a.opts.Model, a.deps.Getenv, provider.SettingsFromConfig(inv.cfg))
	if err != nil {
		return nil, err
	}
	inv.log.Debug(ctx, "Using %s model %s", p.Name(), inv.route.Model)
	return p, nil
}

func (a *app) newAnalyzer(ctx context.Context, inv *invocation, progress analyzer.Progress) (analyzer.Analyzer, error) {
	p, err := a.open(ctx, inv)
	if err != nil {
		return nil, err
	}
	enc := media.New(inv.cfg, a.deps.Executor, inv.log)

	return analyzer.New(analyzer.Options{
		MediaType:   inv.resolved.MediaType,
		Mode:        inv.resolved.Mode,
		Route:       inv.route,
		Prompt:      a.opts.Prompt,
		ImagePrompt: inv.cfg.Defaults.ImagePrompt,
		System:      inv.system,
		WordCount:   a.opts.WordCount,
		Concurrency: a.opts.Concurrency,
		Verbose:     a.opts.Verbose,
	}, enc, p, inv.log, progress)
}

func (a *app) runBatch(ctx context.Context, inv *invocation) error {
	files, err := discovery.Discover(discovery.Options{
		MediaType: inv.resolved.MediaType,
		Root:      a.opts.Path,
		Recursive: a.opts.Recursive,
		Files:     a.opts.Files,
	})
	if err != nil {
		return err
	}
	inv.log.Info(ctx, "Found %d %s files", len(files), inv.resolved.MediaType)

	label := fmt.Sprintf("Analyzing %s files", inv.resolved.MediaType)
	an, err := a.newAnalyzer(ctx, inv, analyzer.NewProgress(a.deps.Stderr, label, inv.log))
	if err != nil {
		return err
	}

	outcome := an.Run(ctx, files)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("analysis interrupted: %w", err)
	}

	if err := output.Emit(outcome, inv.resolved.Format, a.opts.Verbose, a.opts.OutputFile, a.deps.Stdout); err != nil {
		return err
	}
	if a.opts.OutputFile != "" {
		inv.log.Info(ctx, "Results saved to %s", a.opts.OutputFile)
	}

	if outcome.Failed() > 0 {
		a.code = ExitFailures
	}
	return nil
}

func (a *app) runStreaming(ctx context.Context, inv *invocation) error {
	p, err := a.open(ctx, inv)
	if err != nil {
		return err
	}

	session := streaming.New(streaming.Options{
		MediaType:   inv.resolved.MediaType,
		Mode:        inv.resolved.Mode,
		Route:       inv.route,
		Prompt:      a.opts.Prompt,
		ImagePrompt: inv.cfg.Defaults.ImagePrompt,
		System:      inv.system,
		WordCount:   a.opts.WordCount,
		MaxBytes:    media.LimitsFromConfig(inv.cfg).Max(inv.resolved.MediaType),
	}, p, inv.log)

	sum, err := session.Run(ctx, a.deps.Stdin, a.deps.Stdout)
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		a.code = ExitFailures
	}
	return nil
}

func (a *app) runWatch(ctx context.Context, inv *invocation) error {
	info, err := os.Stat(a.opts.Path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("--watch requires --path to be an existing directory: %s", a.opts.Path)
	}

	an, err := a.newAnalyzer(ctx, inv, nil)
	if err != nil {
		return err
	}

	out, closeOut, err := a.appendTarget()
	if err != nil {
		return err
	}
	defer closeOut()

	w, err := watcher.New(watcher.Options{
		Dir:           a.opts.Path,
		MediaType:     inv.resolved.MediaType,
		Debounce:      time.Duration(inv.cfg.Watch.DebounceMS) * time.Millisecond,
		MaxConcurrent: a.opts.Concurrency,
	}, watcher.AnalyzeHandler(an, out, a.opts.Verbose, inv.log), inv.log)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil && !isCanceled(err) {
		return err
	}
	return nil
}

// appendTarget opens --output-file for appending, or returns stdout.
func (a *app) appendTarget() (io.Writer, func(), error) {
	if a.opts.OutputFile == "" {
		return a.deps.Stdout, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(a.opts.OutputFile), 0755); err != nil {
		return nil, nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.OpenFile(a.opts.OutputFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open output %s: %w", a.opts.OutputFile, err)
	}
	return f, func() { f.Close() }, nil
}

