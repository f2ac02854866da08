package provider

import (
	"context"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"

	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

type openAIProvider struct {
	vendor   Vendor
	client   openai.Client
	settings Settings
}

func newOpenAI(creds Credentials, s Settings) *openAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(creds.APIKey)}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	return newChatCompletions(VendorOpenAI, s, opts...)
}

// newAzure targets an Azure OpenAI deployment; the model name is the deployment.
func newAzure(creds Credentials, s Settings) *openAIProvider {
	return newChatCompletions(VendorAzure, s,
		azure.WithEndpoint(creds.Endpoint, s.AzureAPIVersion),
		azure.WithAPIKey(creds.APIKey),
	)
}

func newChatCompletions(v Vendor, s Settings, opts ...option.RequestOption) *openAIProvider {
	opts = append(opts, option.WithMaxRetries(0))
	return &openAIProvider{
		vendor:   v,
		client:   openai.NewClient(opts...),
		settings: s,
	}
}

func (p *openAIProvider) Name() string { return p.vendor.Name() }

func (p *openAIProvider) Supports(t models.MediaType) bool { return p.vendor.Supports(t) }

func (p *openAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(req.Prompt)}
	for _, a := range req.Attachments {
		if !strings.HasPrefix(a.MIMEType, "image/") {
			return "", errUnsupportedAttachment(p.Name(), a.MIMEType)
		}
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: a.DataURL(),
		}))
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(parts))

	params := openai.ChatCompletionNewParams{
		Model:    req.Model,
		Messages: messages,
	}
	// Reasoning models reject a temperature parameter.
	if !isReasoningModel(req.Model) {
		params.Temperature = openai.Float(0)
	}

	ctx, cancel := withTimeout(ctx, p.settings.Timeout)
	defer cancel()

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", wrapError(p.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyResponse(p.Name())
	}
	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	m := strings.ToLower(model)
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}
