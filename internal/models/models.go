package models

import (
	"fmt"
	"strings"
	"time"
)

// MediaType selects which analyzer variant handles a file.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaAudio MediaType = "audio"
	MediaVideo MediaType = "video"
)

// MediaTypes lists the supported media types in help-text order.
var MediaTypes = []MediaType{MediaImage, MediaAudio, MediaVideo}

// ParseMediaType parses a --type value.
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(strings.ToLower(strings.TrimSpace(s))) {
	case MediaImage:
		return MediaImage, nil
	case MediaAudio:
		return MediaAudio, nil
	case MediaVideo:
		return MediaVideo, nil
	}
	return "", fmt.Errorf("invalid media type %q (want image, audio or video)", s)
}

// Title returns the capitalized type name used in report headings.
func (t MediaType) Title() string {
	switch t {
	case MediaImage:
		return "Image"
	case MediaAudio:
		return "Audio"
	case MediaVideo:
		return "Video"
	}
	return string(t)
}

// PathKey is the JSON key naming the source file for this media type.
func (t MediaType) PathKey() string {
	return string(t) + "_path"
}

// Mode is the audio/video sub-selector.
type Mode string

const (
	ModeNone        Mode = ""
	ModeTranscript  Mode = "transcript"
	ModeDescription Mode = "description"
)

// ContentKey is the JSON key carrying the model output for the given type and mode.
func ContentKey(t MediaType, m Mode) string {
	if t == MediaAudio && m == ModeTranscript {
		return "transcript"
	}
	return "analysis"
}

// AnalysisRequest describes one file to analyze. Built once per file and not modified afterwards.
type AnalysisRequest struct {
	MediaPath string
	MediaType MediaType
	Mode      Mode
	Prompt    string
	WordCount int
	Model     string
}

// AnalysisResult is the outcome for one file.
type AnalysisResult struct {
	SourcePath string
	MediaType  MediaType
	Mode       Mode
	Content    *string
	Success    bool
	Error      string
	Model      string
	Prompt     string
	WordCount  int
	Metadata   map[string]any
}

// Succeeded builds a successful result for req.
func Succeeded(req AnalysisRequest, content string, metadata map[string]any) AnalysisResult {
	return AnalysisResult{
		SourcePath: req.MediaPath,
		MediaType:  req.MediaType,
		Mode:       req.Mode,
		Content:    &content,
		Success:    true,
		Model:      req.Model,
		Prompt:     req.Prompt,
		WordCount:  req.WordCount,
		Metadata:   metadata,
	}
}

// Failed builds a failed result for req carrying err's message.
func Failed(req AnalysisRequest, err error, metadata map[string]any) AnalysisResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return AnalysisResult{
		SourcePath: req.MediaPath,
		MediaType:  req.MediaType,
		Mode:       req.Mode,
		Success:    false,
		Error:      msg,
		Model:      req.Model,
		Prompt:     req.Prompt,
		WordCount:  req.WordCount,
		Metadata:   metadata,
	}
}

// BatchOutcome holds one result per input file, in input order.
type BatchOutcome struct {
	RunID      string
	MediaType  MediaType
	Mode       Mode
	Results    []AnalysisResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded counts successful results.
func (o BatchOutcome) Succeeded() int {
	n := 0
	for _, r := range o.Results {
		if r.Success {
			n++
		}
	}
	return n
}

// Failed counts failed results.
func (o BatchOutcome) Failed() int {
	return len(o.Results) - o.Succeeded()
}

// Format selects the output renderer.
type Format string

const (
	FormatJSON       Format = "json"
	FormatMarkdown   Format = "markdown"
	FormatText       Format = "text"
	FormatStreamJSON Format = "stream-json"
	FormatDocx       Format = "docx"
)

// Formats lists the accepted --output values.
var Formats = []Format{FormatJSON, FormatMarkdown, FormatText, FormatStreamJSON, FormatDocx}

// ParseFormat parses an --output value.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid output format %q", s)
}
