package llm

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/openai/openai-go"
	ooption "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAI serves configurations whose provider is "openai" through the
// Chat Completions API.
type OpenAI struct {
	client openai.Client
}

func NewOpenAI(apiKey, baseURL string) *OpenAI {
	opts := []ooption.RequestOption{ooption.WithAPIKey(apiKey), ooption.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, ooption.WithBaseURL(baseURL))
	}
	return &OpenAI{client: openai.NewClient(opts...)}
}

func (o *OpenAI) Name() string { return ProviderOpenAI }

func (o *OpenAI) Generate(ctx context.Context, req Request, ex *Exchange) (*Result, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.MaxTokens != nil {
		params.MaxCompletionTokens = openai.Int(int64(*req.MaxTokens))
	}
	if req.TopP != nil {
		params.TopP = openai.Float(*req.TopP)
	}
	if req.FrequencyPenalty != nil {
		params.FrequencyPenalty = openai.Float(*req.FrequencyPenalty)
	}
	if req.PresencePenalty != nil {
		params.PresencePenalty = openai.Float(*req.PresencePenalty)
	}

	capture := ooption.WithMiddleware(func(r *http.Request, next ooption.MiddlewareNext) (*http.Response, error) {
		return captureExchange(ex, r, next)
	})
	resp, err := o.client.Chat.Completions.New(ctx, params, capture)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &ProviderError{
				Code:       ErrCodeHTTPStatus,
				Message:    "OpenAI API error: " + ex.ResponseBody,
				StatusCode: apiErr.StatusCode,
				Body:       ex.ResponseBody,
				Err:        err,
			}
		}
		return nil, transportError("OpenAI API", err)
	}
	if len(resp.Choices) == 0 {
		return nil, NewProviderError(ErrCodeNoCandidates, "No choices in OpenAI API response: "+ex.ResponseBody, nil)
	}

	choice := resp.Choices[0]
	res := &Result{FinishReason: FinishOther}
	switch choice.FinishReason {
	case "length":
		res.FinishReason = FinishMaxTokens
	case "stop":
		res.FinishReason = FinishStop
	}
	if u := resp.Usage; u.TotalTokens > 0 {
		res.Usage = &Usage{
			PromptTokens:     intPtr(int(u.PromptTokens)),
			CompletionTokens: intPtr(int(u.CompletionTokens)),
			TotalTokens:      intPtr(int(u.TotalTokens)),
		}
		res.RawUsage = u
	}
	if text := choice.Message.Content; text != "" {
		res.Text = &text
	}
	return res, nil
}
