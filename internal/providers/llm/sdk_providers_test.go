package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonServer(t *testing.T, path string, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, seen)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAI_Generate(t *testing.T) {
	var seen map[string]any
	srv := jsonServer(t, "/v1/chat/completions", 200, `{
		"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "gpt-4o-mini",
		"choices": [{"index": 0, "finish_reason": "length", "message": {"role": "assistant", "content": "hello"}}],
		"usage": {"prompt_tokens": 5, "completion_tokens": 7, "total_tokens": 12}
	}`, &seen)

	p := NewOpenAI("sk-test", srv.URL+"/v1/")
	temp := 0.3
	var ex Exchange
	res, err := p.Generate(context.Background(), Request{Model: "gpt-4o-mini", SystemPrompt: "S", UserPrompt: "U", Temperature: &temp}, &ex)
	require.NoError(t, err)

	require.NotNil(t, res.Text)
	assert.Equal(t, "hello", *res.Text)
	assert.Equal(t, FinishMaxTokens, res.FinishReason)
	assert.Equal(t, 12, *res.Usage.TotalTokens)

	assert.Equal(t, "gpt-4o-mini", seen["model"])
	assert.Equal(t, 0.3, seen["temperature"])
	assert.Equal(t, 200, ex.StatusCode)
	assert.Contains(t, ex.ResponseBody, "chatcmpl-1")
	assert.Contains(t, ex.RequestBody, `"gpt-4o-mini"`)
	assert.Equal(t, "REDACTED", ex.RequestHeaders["Authorization"])
}

func TestOpenAI_HTTPError(t *testing.T) {
	var seen map[string]any
	srv := jsonServer(t, "/v1/chat/completions", 400, `{"error": {"message": "bad model", "type": "invalid_request_error"}}`, &seen)

	var ex Exchange
	_, err := NewOpenAI("sk-test", srv.URL+"/v1/").Generate(context.Background(), Request{Model: "nope"}, &ex)
	require.Error(t, err)

	pe, ok := err.(*ProviderError)
	require.True(t, ok)
	assert.Equal(t, ErrCodeHTTPStatus, pe.Code)
	assert.Equal(t, 400, pe.StatusCode)
	assert.Contains(t, pe.Body, "bad model")
}

func TestAnthropic_Generate(t *testing.T) {
	var seen map[string]any
	srv := jsonServer(t, "/v1/messages", 200, `{
		"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-3-5-haiku-latest",
		"content": [{"type": "text", "text": "{\"is_safe\": true}"}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 4, "output_tokens": 6}
	}`, &seen)

	maxTokens := 800
	var ex Exchange
	res, err := NewAnthropic("key", srv.URL+"/").Generate(context.Background(),
		Request{Model: "claude-3-5-haiku-latest", SystemPrompt: "S", UserPrompt: "U", MaxTokens: &maxTokens}, &ex)
	require.NoError(t, err)

	assert.Equal(t, `{"is_safe": true}`, *res.Text)
	assert.Equal(t, FinishStop, res.FinishReason)
	assert.Equal(t, 10, *res.Usage.TotalTokens)
	assert.Equal(t, float64(800), seen["max_tokens"])
	assert.Equal(t, "REDACTED", ex.RequestHeaders["X-Api-Key"])
}
