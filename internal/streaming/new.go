package streaming

import (
	"encoding/base64"

	"github.com/recreate-run/multimodal-analyzer/internal/logger"
	"github.com/recreate-run/multimodal-analyzer/internal/models"
	"github.com/recreate-run/multimodal-analyzer/internal/provider"
)

const (
	// maxLineBytes is the floor for a single input line, base64 payload included.
	maxLineBytes = 64 * 1024 * 1024
	// lineEnvelope leaves room for the JSON framing and text items around a
	// base64 attachment.
	lineEnvelope = 1024 * 1024
)

// Options configure a session.
type Options struct {
	MediaType models.MediaType
	Mode      models.Mode
	Route     provider.Route
	// Prompt is used when a message carries no text items.
	Prompt      string
	ImagePrompt string
	System      string
	WordCount   int
	// MaxBytes rejects decoded attachments larger than this. Zero disables the check.
	MaxBytes int64
}

type implSession struct {
	opts      Options
	provider  provider.Provider
	logger    logger.Logger
	lineLimit int
}

// New creates a Session that sends every message through p.
func New(opts Options, p provider.Provider, log logger.Logger) Session {
	return &implSession{
		opts:      opts,
		provider:  p,
		logger:    log,
		lineLimit: lineLimit(opts.MaxBytes),
	}
}

// lineLimit keeps the line cap above the base64 size of the largest
// attachment MaxBytes allows, so such messages reach the size check.
func lineLimit(maxBytes int64) int {
	limit := int64(maxLineBytes)
	if encoded := base64.StdEncoding.EncodedLen(int(maxBytes)) + lineEnvelope; int64(encoded) > limit {
		limit = int64(encoded)
	}
	return int(limit)
}
