package provider

import (
	"context"

	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

// Provider sends one multimodal request to a vendor API.
type Provider interface {
	// Name is the human-readable vendor name used in errors and logs.
	Name() string
	Supports(t models.MediaType) bool
	// Complete makes exactly one API call and returns the response text.
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a system prompt plus a single user turn: text first, then attachments.
type Request struct {
	Model       string
	System      string
	Prompt      string
	Attachments []Attachment
}

// Attachment is an inline media part.
type Attachment struct {
	MIMEType string
	Data     []byte
	Base64   string
}

func (a Attachment) DataURL() string {
	return "data:" + a.MIMEType + ";base64," + a.Base64
}
