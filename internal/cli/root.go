// Package cli implements the multimodal-analyzer command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/recreate-run/multimodal-analyzer/internal/config"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

// Exit codes.
const (
	ExitOK       = 0
	ExitFailures = 1
	ExitError    = 2
)

const longHelp = `Analyze images, audio and video with multimodal LLMs.

Files are sent to the provider selected by --model:
  gpt-*, o1*, o3*, o4*, openai/*   OpenAI (images)
  azure/<deployment>               Azure OpenAI (images)
  claude-*, anthropic/*            Anthropic (images)
  gemini*, gemini/*, google/*      Gemini (images, audio, video)

Exit status:
  0  every file was analyzed
  1  the run finished but at least one file (or stream line) failed
  2  the invocation was rejected or aborted

Examples:
  multimodal-analyzer -t image -m gpt-4o -p ./photos -r -o markdown
  multimodal-analyzer -t audio -m gemini/gemini-2.5-flash --audio-mode transcript -f talk.mp3
  multimodal-analyzer -t video -m gemini-2.5-pro --video-mode description -p clip.mp4 -w 200`

type app struct {
	deps Deps
	opts config.Options
	code int
}

// Execute runs the command with the process arguments and returns the exit code.
func Execute(ctx context.Context) int {
	return Run(ctx, nil, DefaultDeps())
}

// Run executes the command with args (nil means os.Args) and returns the exit code.
func Run(ctx context.Context, args []string, deps Deps) int {
	a := &app{deps: deps}
	cmd := a.command()
	if args != nil {
		cmd.SetArgs(args)
	}
	cmd.SetIn(deps.Stdin)
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return a.code
}

func (a *app) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "multimodal-analyzer",
		Short:         "Analyze images, audio and video with multimodal LLMs",
		Long:          longHelp,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), cmd.Flags())
		},
	}

	f := cmd.Flags()
	o := &a.opts
	f.SortFlags = false
	f.StringVarP(&o.Type, "type", "t", "", "analysis type: image, audio or video")
	f.StringVarP(&o.Model, "model", "m", "", "model name (e.g. gemini/gemini-2.5-flash, gpt-4o-mini, claude-sonnet-4-5)")
	f.StringVarP(&o.Path, "path", "p", "", "media file or directory")
	f.StringArrayVarP(&o.Files, "files", "f", nil, "media file to analyze (repeatable)")
	f.StringVar(&o.AudioMode, "audio-mode", "", "audio mode: transcript or description (required for audio)")
	f.StringVar(&o.VideoMode, "video-mode", "", "video mode: description (required for video)")
	f.IntVarP(&o.WordCount, "word-count", "w", 100, "target description length in words")
	f.StringVar(&o.Prompt, "prompt", "", "custom analysis prompt")
	f.StringVar(&o.SystemPromptFile, "system-prompt-file", "", "file replacing the built-in system prompt")
	f.StringVarP(&o.Output, "output", "o", "json", "output format: "+formatNames())
	f.StringVar(&o.InputFormat, "input-format", "", "input format: stream-json (reads NDJSON messages from stdin)")
	f.StringVar(&o.OutputFile, "output-file", "", "write results to this file instead of stdout")
	f.BoolVarP(&o.Recursive, "recursive", "r", false, "process directories recursively")
	f.IntVarP(&o.Concurrency, "concurrency", "c", 3, "maximum concurrent requests")
	f.StringVar(&o.LogLevel, "log-level", "", "log level: DEBUG, INFO, WARNING or ERROR (default INFO)")
	f.BoolVarP(&o.Verbose, "verbose", "v", false, "include model, prompt and metadata in the output")
	f.StringVar(&o.ConfigPath, "config", "", "YAML config file")
	f.BoolVar(&o.Watch, "watch", false, "keep watching --path and analyze new files as they appear")

	return cmd
}

func formatNames() string {
	return "json, markdown, text, stream-json or docx"
}

// applyConfigDefaults fills flags the user did not set from cfg.
func (a *app) applyConfigDefaults(flags *pflag.FlagSet, cfg *config.Config) {
	if !flags.Changed("word-count") {
		a.opts.WordCount = cfg.Defaults.WordCount
	}
	if !flags.Changed("concurrency") {
		a.opts.Concurrency = cfg.Defaults.Concurrency
	}
	if !flags.Changed("log-level") || strings.TrimSpace(a.opts.LogLevel) == "" {
		a.opts.LogLevel = cfg.Logging.Level
	}
}

// loadConfig reads --config when given, otherwise the defaults, then applies
// the environment overrides.
func (a *app) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if a.opts.ConfigPath != "" {
		loaded, err := config.Load(a.opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(a.deps.Getenv); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	return cfg, nil
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
