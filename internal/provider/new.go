package provider

import (
	"context"
	"time"

	"github.com/recreate-run/multimodal-analyzer/internal/config"
)

// Settings are the per-run request parameters shared by every vendor.
type Settings struct {
	Timeout         time.Duration
	MaxTokens       int64
	AzureAPIVersion string
	BaseURL         string
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Timeout:         time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
		MaxTokens:       cfg.Provider.MaxTokens,
		AzureAPIVersion: cfg.Provider.AzureAPIVersion,
		BaseURL:         cfg.Provider.BaseURL,
	}
}

// New builds the client for a resolved route. No network call is made.
func New(ctx context.Context, r Route, creds Credentials, s Settings) (Provider, error) {
	switch r.Vendor {
	case VendorOpenAI:
		return newOpenAI(creds, s), nil
	case VendorAzure:
		return newAzure(creds, s), nil
	case VendorAnthropic:
		return newAnthropic(creds, s), nil
	case VendorGemini:
		return newGemini(ctx, creds, s)
	}
	return nil, errUnknownVendor(r.Vendor)
}

// Open resolves model, loads its credentials and builds the provider.
func Open(ctx context.Context, model string, getenv func(string) string, s Settings) (Provider, Route, error) {
	r, err := Resolve(model)
	if err != nil {
		return nil, Route{}, err
	}
	creds, err := LoadCredentials(r.Vendor, getenv)
	if err != nil {
		return nil, r, err
	}
	p, err := New(ctx, r, creds, s)
	if err != nil {
		return nil, r, err
	}
	return p, r, nil
}

// withTimeout bounds a single provider call.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
