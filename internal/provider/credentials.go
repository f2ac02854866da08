package provider

import (
	"strings"

	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
)

const (
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvAnthropicKey  = "ANTHROPIC_API_KEY"
	EnvGeminiKey     = "GEMINI_API_KEY"
	EnvAzureKey      = "AZURE_OPENAI_KEY"
	EnvAzureEndpoint = "AZURE_OPENAI_ENDPOINT"
)

// Credentials for one vendor. Endpoint is only used by Azure.
type Credentials struct {
	APIKey   string
	Endpoint string
}

// LoadCredentials reads the vendor's credentials through getenv.
// Blank values count as missing.
func LoadCredentials(v Vendor, getenv func(string) string) (Credentials, error) {
	get := func(name string) string { return strings.TrimSpace(getenv(name)) }

	switch v {
	case VendorAzure:
		c := Credentials{APIKey: get(EnvAzureKey), Endpoint: get(EnvAzureEndpoint)}
		if c.APIKey == "" {
			return Credentials{}, missing(EnvAzureKey, "Azure")
		}
		if c.Endpoint == "" {
			return Credentials{}, missing(EnvAzureEndpoint, "Azure")
		}
		return c, nil
	case VendorOpenAI:
		return single(get(EnvOpenAIKey), EnvOpenAIKey, "OpenAI")
	case VendorAnthropic:
		return single(get(EnvAnthropicKey), EnvAnthropicKey, "Anthropic")
	case VendorGemini:
		return single(get(EnvGeminiKey), EnvGeminiKey, "Google")
	}
	return Credentials{}, apperror.Validation("no credentials known for vendor %s", v)
}

func single(key, env, label string) (Credentials, error) {
	if key == "" {
		return Credentials{}, missing(env, label)
	}
	return Credentials{APIKey: key}, nil
}

func missing(env, label string) error {
	return apperror.New(apperror.KindProvider, "%s environment variable is required for %s models", env, label)
}
