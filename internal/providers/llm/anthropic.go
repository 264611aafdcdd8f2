package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"
)

// Messages API requires max_tokens.
const anthropicDefaultMaxTokens = 1024

type Anthropic struct {
	client anthropic.Client
}

func NewAnthropic(apiKey, baseURL string) *Anthropic {
	opts := []aoption.RequestOption{aoption.WithAPIKey(apiKey), aoption.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, aoption.WithBaseURL(baseURL))
	}
	return &Anthropic{client: anthropic.NewClient(opts...)}
}

func (a *Anthropic) Name() string { return ProviderAnthropic }

func (a *Anthropic) Generate(ctx context.Context, req Request, ex *Exchange) (*Result, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: anthropicDefaultMaxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt))},
	}
	if strings.TrimSpace(req.SystemPrompt) != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		params.MaxTokens = int64(*req.MaxTokens)
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}
	if req.TopP != nil {
		params.TopP = anthropic.Float(*req.TopP)
	}

	capture := aoption.WithMiddleware(func(r *http.Request, next aoption.MiddlewareNext) (*http.Response, error) {
		return captureExchange(ex, r, next)
	})
	msg, err := a.client.Messages.New(ctx, params, capture)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, &ProviderError{
				Code:       ErrCodeHTTPStatus,
				Message:    "Anthropic API error: " + ex.ResponseBody,
				StatusCode: apiErr.StatusCode,
				Body:       ex.ResponseBody,
				Err:        err,
			}
		}
		return nil, transportError("Anthropic API", err)
	}
	if len(msg.Content) == 0 {
		return nil, NewProviderError(ErrCodeNoCandidates, "No content in Anthropic API response: "+ex.ResponseBody, nil)
	}

	res := &Result{FinishReason: FinishOther}
	switch msg.StopReason {
	case anthropic.StopReasonMaxTokens:
		res.FinishReason = FinishMaxTokens
	case anthropic.StopReasonEndTurn, anthropic.StopReasonStopSequence:
		res.FinishReason = FinishStop
	}
	in, out := int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens)
	res.Usage = &Usage{PromptTokens: intPtr(in), CompletionTokens: intPtr(out), TotalTokens: intPtr(in + out)}
	res.RawUsage = msg.Usage

	var text strings.Builder
	found := false
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
			found = true
		}
	}
	if found {
		s := text.String()
		res.Text = &s
	}
	return res, nil
}
