package config

import (
	"strings"

	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

// StreamJSON is the only accepted --input-format value.
const StreamJSON = "stream-json"

// Options holds one invocation's command-line settings.
type Options struct {
	Type             string
	Model            string
	Path             string
	Files            []string
	AudioMode        string
	VideoMode        string
	WordCount        int
	Prompt           string
	SystemPromptFile string
	Output           string
	InputFormat      string
	OutputFile       string
	Recursive        bool
	Concurrency      int
	LogLevel         string
	Verbose          bool
	ConfigPath       string
	Watch            bool
}

// Resolved is the validated form of Options.
type Resolved struct {
	MediaType models.MediaType
	Mode      models.Mode
	Format    models.Format
	Streaming bool
}

// Validate applies the invocation guards in a fixed order and returns the
// first violation. It touches neither the filesystem nor the network.
func (o *Options) Validate(cfg *Config) (Resolved, error) {
	var r Resolved

	if strings.TrimSpace(o.Type) == "" {
		return r, apperror.Validation("--type is required (image, audio or video)")
	}
	mt, err := models.ParseMediaType(o.Type)
	if err != nil {
		return r, apperror.Validation("%v", err)
	}
	r.MediaType = mt

	if strings.TrimSpace(o.Model) == "" {
		return r, apperror.Validation("--model is required")
	}

	out := o.Output
	if out == "" {
		out = string(models.FormatJSON)
	}
	format, err := models.ParseFormat(out)
	if err != nil {
		return r, apperror.Validation("%v", err)
	}
	r.Format = format

	hasPath := o.Path != ""
	hasFiles := len(o.Files) > 0

	if hasPath && hasFiles {
		return r, apperror.Validation("Cannot specify both --path and --files")
	}

	if o.InputFormat != "" && o.InputFormat != StreamJSON {
		return r, apperror.Validation("invalid --input-format %q (only %s is supported)", o.InputFormat, StreamJSON)
	}
	streamIn := o.InputFormat == StreamJSON
	streamOut := format == models.FormatStreamJSON
	if streamIn && !streamOut {
		return r, apperror.Validation("--input-format stream-json requires --output stream-json")
	}
	if streamOut && !streamIn {
		return r, apperror.Validation("--output stream-json requires --input-format stream-json")
	}
	r.Streaming = streamIn
	if r.Streaming {
		if !hasPath {
			return r, apperror.Validation("stream-json input requires -p flag")
		}
		if o.OutputFile != "" {
			return r, apperror.Validation("stream-json output cannot be used with --output-file")
		}
	}

	if !hasPath && !hasFiles {
		return r, apperror.Validation("Must specify either --path or --files")
	}

	switch mt {
	case models.MediaAudio:
		if o.VideoMode != "" {
			return r, apperror.Validation("--video-mode should not be used when --type is 'audio'")
		}
		if o.AudioMode == "" {
			return r, apperror.Validation("--audio-mode is required when --type is 'audio'")
		}
		switch models.Mode(o.AudioMode) {
		case models.ModeTranscript, models.ModeDescription:
			r.Mode = models.Mode(o.AudioMode)
		default:
			return r, apperror.Validation("invalid --audio-mode %q (want transcript or description)", o.AudioMode)
		}
	case models.MediaVideo:
		if o.AudioMode != "" {
			return r, apperror.Validation("--audio-mode should not be used when --type is 'video'")
		}
		if o.VideoMode == "" {
			return r, apperror.Validation("--video-mode is required when --type is 'video'")
		}
		if models.Mode(o.VideoMode) != models.ModeDescription {
			return r, apperror.Validation("invalid --video-mode %q (want description)", o.VideoMode)
		}
		r.Mode = models.ModeDescription
	default:
		if o.AudioMode != "" {
			return r, apperror.Validation("--audio-mode should not be used when --type is 'image'")
		}
		if o.VideoMode != "" {
			return r, apperror.Validation("--video-mode should not be used when --type is 'image'")
		}
	}

	if o.WordCount < 1 {
		return r, apperror.Validation("--word-count must be at least 1")
	}
	if o.Concurrency < 1 {
		return r, apperror.Validation("--concurrency must be at least 1")
	}
	if o.Concurrency > cfg.Limits.MaxConcurrency {
		return r, apperror.Validation("Concurrency %d exceeds maximum allowed %d", o.Concurrency, cfg.Limits.MaxConcurrency)
	}

	if format == models.FormatDocx && o.OutputFile == "" {
		return r, apperror.Validation("--output docx requires --output-file")
	}

	if o.Watch {
		if r.Streaming {
			return r, apperror.Validation("--watch cannot be combined with stream-json")
		}
		if !hasPath {
			return r, apperror.Validation("--watch requires --path")
		}
		if format == models.FormatDocx {
			return r, apperror.Validation("--watch cannot write docx output")
		}
	}

	return r, nil
}
