package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

func validOptions() Options {
	return Options{
		Type:        "image",
		Model:       "gpt-4o-mini",
		Path:        "photos",
		WordCount:   100,
		Output:      "json",
		Concurrency: 3,
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Options)
		wantMsg string
	}{
		{
			name:    "missing type",
			mutate:  func(o *Options) { o.Type = "" },
			wantMsg: "--type is required",
		},
		{
			name:    "bad type",
			mutate:  func(o *Options) { o.Type = "document" },
			wantMsg: "invalid media type",
		},
		{
			name:    "missing model",
			mutate:  func(o *Options) { o.Model = " " },
			wantMsg: "--model is required",
		},
		{
			name:    "path and files",
			mutate:  func(o *Options) { o.Files = []string{"a.jpg"} },
			wantMsg: "Cannot specify both --path and --files",
		},
		{
			name:    "neither path nor files",
			mutate:  func(o *Options) { o.Path = "" },
			wantMsg: "Must specify either --path or --files",
		},
		{
			name: "audio without mode",
			mutate: func(o *Options) {
				o.Type = "audio"
			},
			wantMsg: "--audio-mode is required when --type is 'audio'",
		},
		{
			name: "video without mode",
			mutate: func(o *Options) {
				o.Type = "video"
			},
			wantMsg: "--video-mode is required when --type is 'video'",
		},
		{
			name:    "audio mode with image",
			mutate:  func(o *Options) { o.AudioMode = "transcript" },
			wantMsg: "--audio-mode should not be used when --type is 'image'",
		},
		{
			name: "video mode with audio",
			mutate: func(o *Options) {
				o.Type = "audio"
				o.AudioMode = "transcript"
				o.VideoMode = "description"
			},
			wantMsg: "--video-mode should not be used when --type is 'audio'",
		},
		{
			name: "unknown audio mode",
			mutate: func(o *Options) {
				o.Type = "audio"
				o.AudioMode = "summary"
			},
			wantMsg: "invalid --audio-mode",
		},
		{
			name:    "input format without stream output",
			mutate:  func(o *Options) { o.InputFormat = "stream-json" },
			wantMsg: "requires --output stream-json",
		},
		{
			name:    "stream output without input format",
			mutate:  func(o *Options) { o.Output = "stream-json" },
			wantMsg: "requires --input-format stream-json",
		},
		{
			name: "stream requires path",
			mutate: func(o *Options) {
				o.Path = ""
				o.InputFormat = "stream-json"
				o.Output = "stream-json"
			},
			wantMsg: "requires -p flag",
		},
		{
			name: "stream with files reports path/files conflict first",
			mutate: func(o *Options) {
				o.Files = []string{"a.jpg"}
				o.InputFormat = "stream-json"
				o.Output = "stream-json"
			},
			wantMsg: "Cannot specify both --path and --files",
		},
		{
			name: "stream with output file",
			mutate: func(o *Options) {
				o.InputFormat = "stream-json"
				o.Output = "stream-json"
				o.OutputFile = "results.json"
			},
			wantMsg: "cannot be used with --output-file",
		},
		{
			name:    "zero word count",
			mutate:  func(o *Options) { o.WordCount = 0 },
			wantMsg: "--word-count must be at least 1",
		},
		{
			name:    "concurrency above max",
			mutate:  func(o *Options) { o.Concurrency = 50 },
			wantMsg: "Concurrency 50 exceeds maximum allowed 20",
		},
		{
			name:    "docx without output file",
			mutate:  func(o *Options) { o.Output = "docx" },
			wantMsg: "--output docx requires --output-file",
		},
		{
			name: "watch with files",
			mutate: func(o *Options) {
				o.Path = ""
				o.Files = []string{"a.jpg"}
				o.Watch = true
			},
			wantMsg: "--watch requires --path",
		},
		{
			name:    "unknown output",
			mutate:  func(o *Options) { o.Output = "yaml" },
			wantMsg: "invalid output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOptions()
			tt.mutate(&o)

			_, err := o.Validate(Default())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.ErrorIs(t, err, apperror.ErrInputValidation)
		})
	}
}

func TestOptionsValidateResolves(t *testing.T) {
	o := validOptions()
	o.Type = "Audio"
	o.AudioMode = "transcript"
	o.Output = ""

	r, err := o.Validate(Default())
	require.NoError(t, err)

	assert.Equal(t, models.MediaAudio, r.MediaType)
	assert.Equal(t, models.ModeTranscript, r.Mode)
	assert.Equal(t, models.FormatJSON, r.Format)
	assert.False(t, r.Streaming)
}

func TestOptionsValidateStreaming(t *testing.T) {
	o := validOptions()
	o.InputFormat = "stream-json"
	o.Output = "stream-json"

	r, err := o.Validate(Default())
	require.NoError(t, err)
	assert.True(t, r.Streaming)
	assert.Equal(t, models.FormatStreamJSON, r.Format)
}
