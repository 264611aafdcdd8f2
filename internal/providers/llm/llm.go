package llm

import (
	"context"
	"net/http"
)

const (
	ProviderGemini    = "gemini"
	ProviderVertex    = "vertex"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type FinishReason string

const (
	FinishStop      FinishReason = "stop"
	FinishMaxTokens FinishReason = "max_tokens"
	FinishOther     FinishReason = "other"
)

// Request is one single-turn generation. Nil sampling fields are left to
// the provider's defaults.
type Request struct {
	Model        string
	SystemPrompt string
	UserPrompt   string

	Temperature      *float64
	MaxTokens        *int
	TopP             *float64
	FrequencyPenalty *float64
	PresencePenalty  *float64
}

// Prompt is the single text block sent to providers without a separate
// system channel.
func (r Request) Prompt() string {
	return r.SystemPrompt + "\n\n" + r.UserPrompt
}

type Usage struct {
	PromptTokens     *int
	CompletionTokens *int
	TotalTokens      *int
}

// Result is a decoded provider response. Text is nil when the response
// carried no extractable text.
type Result struct {
	Text         *string
	FinishReason FinishReason
	Usage        *Usage
	// raw usage block, for the truncation warning
	RawUsage any
}

// Exchange records the wire-level request and response of one call.
// Providers fill it as far as they get, so it is useful on failure too.
type Exchange struct {
	URL             string
	RequestHeaders  map[string]string
	RequestBody     string
	StatusCode      int
	ResponseHeaders http.Header
	ResponseBody    string
}

type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request, ex *Exchange) (*Result, error)
}

func intPtr(v int) *int { return &v }
