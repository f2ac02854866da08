package provider

import (
	"strings"

	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

type Vendor string

const (
	VendorOpenAI    Vendor = "openai"
	VendorAzure     Vendor = "azure"
	VendorAnthropic Vendor = "anthropic"
	VendorGemini    Vendor = "gemini"
)

// Name is the display name used in errors.
func (v Vendor) Name() string {
	switch v {
	case VendorOpenAI:
		return "OpenAI"
	case VendorAzure:
		return "Azure OpenAI"
	case VendorAnthropic:
		return "Anthropic"
	case VendorGemini:
		return "Gemini"
	}
	return string(v)
}

// Supports reports whether the vendor accepts media of type t.
func (v Vendor) Supports(t models.MediaType) bool {
	if t == models.MediaImage {
		return true
	}
	return v == VendorGemini
}

// Route is a resolved model identifier.
type Route struct {
	Vendor Vendor
	// ID is the identifier as given on the command line.
	ID string
	// Model is ID with any routing prefix removed.
	Model string
}

// routes is matched in order. A prefix ending in "/" is stripped from the model name.
var routes = []struct {
	prefix string
	vendor Vendor
}{
	{"azure/", VendorAzure},
	{"openai/", VendorOpenAI},
	{"anthropic/", VendorAnthropic},
	{"gemini/", VendorGemini},
	{"google/", VendorGemini},
	{"gpt-", VendorOpenAI},
	{"chatgpt-", VendorOpenAI},
	{"o1", VendorOpenAI},
	{"o3", VendorOpenAI},
	{"o4", VendorOpenAI},
	{"claude-", VendorAnthropic},
	{"gemini", VendorGemini},
}

// Resolve maps a model identifier to its vendor.
func Resolve(model string) (Route, error) {
	id := strings.TrimSpace(model)
	lower := strings.ToLower(id)

	for _, r := range routes {
		if !strings.HasPrefix(lower, r.prefix) {
			continue
		}
		name := id
		if strings.HasSuffix(r.prefix, "/") {
			name = id[len(r.prefix):]
		}
		if name == "" {
			break
		}
		return Route{Vendor: r.vendor, ID: id, Model: name}, nil
	}
	return Route{}, apperror.Validation("unsupported model: %s", model)
}

// CheckCapability rejects media types the route's vendor cannot analyze.
func CheckCapability(r Route, t models.MediaType) error {
	if r.Vendor.Supports(t) {
		return nil
	}
	return apperror.Validation("%s analysis only supports Gemini models. Received: %s", t.Title(), r.ID)
}
