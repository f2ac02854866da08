package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
	"github.com/recreate-run/multimodal-analyzer/internal/config"
)

type recordingServer struct {
	*httptest.Server
	hits atomic.Int32
	path atomic.Value
	body atomic.Value
}

func newRecordingServer(t *testing.T, status int, response string) *recordingServer {
	t.Helper()
	rs := &recordingServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.hits.Add(1)
		data, _ := io.ReadAll(r.Body)
		rs.path.Store(r.URL.Path)
		rs.body.Store(data)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *recordingServer) requestJSON(t *testing.T) map[string]any {
	t.Helper()
	raw, ok := rs.body.Load().([]byte)
	require.True(t, ok, "no request recorded")
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

var imageAttachment = Attachment{MIMEType: "image/png", Data: []byte("png"), Base64: "cG5n"}

func testSettings(baseURL string) Settings {
	return Settings{Timeout: 5 * time.Second, MaxTokens: 4096, BaseURL: baseURL}
}

func TestSettingsFromConfig(t *testing.T) {
	s := SettingsFromConfig(config.Default())
	assert.Equal(t, 60*time.Second, s.Timeout)
	assert.Equal(t, int64(4096), s.MaxTokens)
	assert.Equal(t, "2024-06-01", s.AzureAPIVersion)
}

func TestOpenAIComplete(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, `{
		"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "gpt-4o-mini",
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "A red square."}}]
	}`)

	p, r, err := Open(context.Background(), "openai/gpt-4o-mini",
		func(string) string { return "sk-test" }, testSettings(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "OpenAI", p.Name())

	got, err := p.Complete(context.Background(), Request{
		Model:       r.Model,
		System:      "be precise",
		Prompt:      "Describe this image in detail.",
		Attachments: []Attachment{imageAttachment},
	})
	require.NoError(t, err)
	assert.Equal(t, "A red square.", got)
	assert.Equal(t, int32(1), srv.hits.Load())
	assert.Equal(t, "/chat/completions", srv.path.Load())

	body := srv.requestJSON(t)
	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.Equal(t, float64(0), body["temperature"])

	messages := body["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])

	user := messages[1].(map[string]any)
	parts := user["content"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, "text", parts[0].(map[string]any)["type"])
	image := parts[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/png;base64,cG5n", image["url"])
}

func TestOpenAIReasoningModelOmitsTemperature(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"o3-mini",
		"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"ok"}}]}`)

	p := newOpenAI(Credentials{APIKey: "k"}, testSettings(srv.URL))
	_, err := p.Complete(context.Background(), Request{Model: "o3-mini", Prompt: "hi"})
	require.NoError(t, err)
	assert.NotContains(t, srv.requestJSON(t), "temperature")
}

func TestOpenAIErrorIsSingleAttempt(t *testing.T) {
	srv := newRecordingServer(t, http.StatusTooManyRequests,
		`{"error": {"message": "slow down", "type": "rate_limit_error", "code": "rate_limit"}}`)

	p := newOpenAI(Credentials{APIKey: "k"}, testSettings(srv.URL))
	_, err := p.Complete(context.Background(), Request{Model: "gpt-4o", Prompt: "hi"})
	require.Error(t, err)

	assert.Equal(t, int32(1), srv.hits.Load(), "no retries")
	assert.ErrorIs(t, err, apperror.ErrProvider)

	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusTooManyRequests, appErr.Status)
	assert.Equal(t, "OpenAI", appErr.Provider)
	assert.Contains(t, err.Error(), "OpenAI (HTTP 429): rate limited")
}

func TestOpenAIRejectsNonImageAttachment(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, `{}`)
	p := newOpenAI(Credentials{APIKey: "k"}, testSettings(srv.URL))

	_, err := p.Complete(context.Background(), Request{
		Model:       "gpt-4o",
		Prompt:      "hi",
		Attachments: []Attachment{{MIMEType: "audio/wav", Base64: "AA=="}},
	})
	assert.ErrorIs(t, err, apperror.ErrInputValidation)
	assert.Equal(t, int32(0), srv.hits.Load())
}

func TestAnthropicComplete(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, `{
		"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-3-5-haiku-latest",
		"content": [{"type": "text", "text": "Two cats "}, {"type": "text", "text": "on a sofa."}],
		"stop_reason": "end_turn", "usage": {"input_tokens": 10, "output_tokens": 5}
	}`)

	p, r, err := Open(context.Background(), "anthropic/claude-3-5-haiku-latest",
		func(string) string { return "sk-ant" }, testSettings(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "Anthropic", p.Name())

	got, err := p.Complete(context.Background(), Request{
		Model:       r.Model,
		System:      "be precise",
		Prompt:      "Describe.",
		Attachments: []Attachment{imageAttachment},
	})
	require.NoError(t, err)
	assert.Equal(t, "Two cats on a sofa.", got)
	assert.Equal(t, "/v1/messages", srv.path.Load())

	body := srv.requestJSON(t)
	assert.Equal(t, "claude-3-5-haiku-latest", body["model"])
	assert.Equal(t, float64(4096), body["max_tokens"])
	system := body["system"].([]any)
	assert.Equal(t, "be precise", system[0].(map[string]any)["text"])

	content := body["messages"].([]any)[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	source := content[1].(map[string]any)["source"].(map[string]any)
	assert.Equal(t, "base64", source["type"])
	assert.Equal(t, "image/png", source["media_type"])
	assert.Equal(t, "cG5n", source["data"])
}

func TestAnthropicServerError(t *testing.T) {
	srv := newRecordingServer(t, http.StatusInternalServerError,
		`{"type": "error", "error": {"type": "api_error", "message": "boom"}}`)

	p := newAnthropic(Credentials{APIKey: "k"}, testSettings(srv.URL))
	_, err := p.Complete(context.Background(), Request{Model: "claude-3-5-haiku-latest", Prompt: "hi"})
	require.Error(t, err)

	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, int32(1), srv.hits.Load())
}

func TestGeminiComplete(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, `{
		"candidates": [{"content": {"role": "model", "parts": [{"text": "Someone "}, {"text": "is speaking."}]}}]
	}`)

	p, r, err := Open(context.Background(), "gemini-2.5-flash",
		func(string) string { return "g-key" }, testSettings(srv.URL+"/"))
	require.NoError(t, err)
	assert.Equal(t, "Gemini", p.Name())

	got, err := p.Complete(context.Background(), Request{
		Model:       r.Model,
		System:      "listen carefully",
		Prompt:      "Please transcribe this audio file and return only the transcript text.",
		Attachments: []Attachment{{MIMEType: "audio/wav", Data: []byte("RIFF"), Base64: "UklGRg=="}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Someone is speaking.", got)
	assert.Contains(t, srv.path.Load(), "gemini-2.5-flash:generateContent")

	body := srv.requestJSON(t)
	contents := body["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 2)
	inline := parts[1].(map[string]any)["inlineData"].(map[string]any)
	assert.Equal(t, "audio/wav", inline["mimeType"])
	assert.Equal(t, "UklGRg==", inline["data"])
	assert.Contains(t, body, "systemInstruction")
}

func TestGeminiEmptyResponse(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, `{"candidates": []}`)

	p, err := newGemini(context.Background(), Credentials{APIKey: "k"}, testSettings(srv.URL+"/"))
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), Request{Model: "gemini-2.5-flash", Prompt: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrProvider)
	assert.Contains(t, err.Error(), "empty response")
}

func TestCompleteTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	s := testSettings(srv.URL)
	s.Timeout = 50 * time.Millisecond
	p := newOpenAI(Credentials{APIKey: "k"}, s)

	_, err := p.Complete(context.Background(), Request{Model: "gpt-4o", Prompt: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrProvider)
}

func TestOpenMissingCredentials(t *testing.T) {
	_, r, err := Open(context.Background(), "claude-3-5-haiku-latest", func(string) string { return "" }, Settings{})
	require.Error(t, err)
	assert.Equal(t, VendorAnthropic, r.Vendor)
	assert.ErrorIs(t, err, apperror.ErrProvider)
}

func TestWrapErrorStatusText(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{401, "authentication failed"},
		{403, "authentication failed"},
		{429, "rate limited"},
		{400, "invalid request"},
		{404, "model not found"},
		{503, "upstream error"},
		{0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, describeStatus(tt.status), tt.status)
	}

	err := wrapError("Gemini", context.DeadlineExceeded)
	assert.Equal(t, "Gemini: request timed out: context deadline exceeded", err.Error())
}
