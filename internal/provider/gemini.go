package provider

import (
	"context"

	"google.golang.org/genai"

	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

type geminiProvider struct {
	client   *genai.Client
	settings Settings
}

func newGemini(ctx context.Context, creds Credentials, s Settings) (*geminiProvider, error) {
	cc := &genai.ClientConfig{
		APIKey:  creds.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if s.BaseURL != "" {
		cc.HTTPOptions.BaseURL = s.BaseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindProvider, err, "create client")
	}
	return &geminiProvider{client: client, settings: s}, nil
}

func (p *geminiProvider) Name() string { return VendorGemini.Name() }

func (p *geminiProvider) Supports(t models.MediaType) bool { return VendorGemini.Supports(t) }

// Complete sends the prompt and inline media parts. genai does not retry.
func (p *geminiProvider) Complete(ctx context.Context, req Request) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, a := range req.Attachments {
		parts = append(parts, genai.NewPartFromBytes(a.Data, a.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0)}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	ctx, cancel := withTimeout(ctx, p.settings.Timeout)
	defer cancel()

	result, err := p.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return "", wrapError(p.Name(), err)
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text string
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
		if text != "" {
			return text, nil
		}
	}
	return "", errEmptyResponse(p.Name())
}
