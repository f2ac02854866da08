package provider

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

type anthropicProvider struct {
	client   anthropic.Client
	settings Settings
}

func newAnthropic(creds Credentials, s Settings) *anthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(creds.APIKey),
		option.WithMaxRetries(0),
	}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	return &anthropicProvider{
		client:   anthropic.NewClient(opts...),
		settings: s,
	}
}

func (p *anthropicProvider) Name() string { return VendorAnthropic.Name() }

func (p *anthropicProvider) Supports(t models.MediaType) bool { return VendorAnthropic.Supports(t) }

func (p *anthropicProvider) Complete(ctx context.Context, req Request) (string, error) {
	blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(req.Prompt)}
	for _, a := range req.Attachments {
		if !strings.HasPrefix(a.MIMEType, "image/") {
			return "", errUnsupportedAttachment(p.Name(), a.MIMEType)
		}
		blocks = append(blocks, anthropic.NewImageBlockBase64(a.MIMEType, a.Base64))
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   p.settings.MaxTokens,
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
		Temperature: anthropic.Float(0),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	ctx, cancel := withTimeout(ctx, p.settings.Timeout)
	defer cancel()

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", wrapError(p.Name(), err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", errEmptyResponse(p.Name())
	}
	return text.String(), nil
}
