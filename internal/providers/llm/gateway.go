package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/yoockh/seopilot/internal/metrics"
	"github.com/yoockh/seopilot/internal/models"
)

const previewLength = 500

// CallLogWriter persists call-log rows.
type CallLogWriter interface {
	Create(ctx context.Context, log *models.LlmCallLog) error
}

// CallContext correlates a call with the records it was made for. Empty
// strings mean "not applicable".
type CallContext struct {
	ProductID string
	JobID     string
	DraftID   string
}

type CallInput struct {
	SystemPrompt string
	UserPrompt   string
	// nil = gateway defaults
	Config      *models.LlmConfiguration
	AgentType   models.AgentType
	ProductData any
	Context     CallContext
}

type GatewayOptions struct {
	DefaultProvider string
	DefaultModel    string
	Timeout         time.Duration
}

// Gateway performs one LLM call per Call and writes exactly one call-log
// row for it, whatever the outcome. It never retries.
type Gateway struct {
	providers map[string]Provider
	opts      GatewayOptions
	logs      CallLogWriter
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewGateway(opts GatewayOptions, logs CallLogWriter, log logrus.FieldLogger, providers ...Provider) *Gateway {
	if opts.DefaultProvider == "" {
		opts.DefaultProvider = ProviderGemini
	}
	if opts.DefaultModel == "" {
		opts.DefaultModel = "gemini-2.5-flash"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	g := &Gateway{
		providers: make(map[string]Provider, len(providers)),
		opts:      opts,
		logs:      logs,
		log:       log.WithField("component", "llm_gateway"),
		now:       time.Now,
	}
	for _, p := range providers {
		if p != nil {
			g.providers[p.Name()] = p
		}
	}
	return g
}

// resolve picks the provider and request parameters for a call. A
// configuration naming an unavailable provider runs on the default
// provider with the default model.
func (g *Gateway) resolve(in CallInput) (Provider, Request, error) {
	req := Request{
		Model:        g.opts.DefaultModel,
		SystemPrompt: in.SystemPrompt,
		UserPrompt:   in.UserPrompt,
	}
	name := g.opts.DefaultProvider

	if cfg := in.Config; cfg != nil {
		temperature := cfg.Temperature
		req.Temperature = &temperature
		if cfg.MaxTokens > 0 {
			maxTokens := cfg.MaxTokens
			req.MaxTokens = &maxTokens
		}
		req.TopP = cfg.TopP
		req.FrequencyPenalty = cfg.FrequencyPenalty
		req.PresencePenalty = cfg.PresencePenalty

		wanted := strings.ToLower(strings.TrimSpace(cfg.Provider))
		if wanted == "" {
			wanted = g.opts.DefaultProvider
		}
		if _, ok := g.providers[wanted]; ok {
			name = wanted
			if cfg.Model != "" {
				req.Model = cfg.Model
			}
		} else {
			g.log.WithFields(logrus.Fields{"provider": cfg.Provider, "config_id": cfg.ID}).
				Warn("configured provider unavailable, using default provider")
		}
	}

	p, ok := g.providers[name]
	if !ok {
		return nil, req, NewProviderError(ErrCodeInvalidRequest, "no LLM provider configured: "+name, nil)
	}
	return p, req, nil
}

func (g *Gateway) Call(ctx context.Context, in CallInput) (string, error) {
	entry := &models.LlmCallLog{
		ID:           uuid.NewString(),
		AgentType:    in.AgentType,
		ProductID:    optional(in.Context.ProductID),
		SeoJobID:     optional(in.Context.JobID),
		SeoDraftID:   optional(in.Context.DraftID),
		Provider:     g.opts.DefaultProvider,
		Model:        g.opts.DefaultModel,
		ProductData:  toJSON(in.ProductData),
		SystemPrompt: in.SystemPrompt,
		UserPrompt:   in.UserPrompt,
	}
	if in.Config != nil && in.Config.ID != "" {
		entry.LlmConfigurationID = &in.Config.ID
	}

	provider, req, err := g.resolve(in)
	entry.Model = req.Model
	if provider != nil {
		entry.Provider = provider.Name()
	}

	start := g.now()
	var ex Exchange
	var res *Result
	if err == nil {
		callCtx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
		res, err = provider.Generate(callCtx, req, &ex)
		cancel()
	}
	elapsed := g.now().Sub(start)

	entry.ExecutionTimeMS = elapsed.Milliseconds()
	entry.APIURL = ex.URL
	entry.RequestHeaders = toJSON(ex.RequestHeaders)
	entry.RequestBody = ex.RequestBody
	if ex.StatusCode != 0 {
		status := ex.StatusCode
		entry.ResponseStatus = &status
		entry.ResponseHeaders = toJSON(ex.ResponseHeaders)
		entry.ResponseBody = ex.ResponseBody
	}

	if err == nil {
		if u := res.Usage; u != nil {
			entry.PromptTokens, entry.CompletionTokens, entry.TotalTokens = u.PromptTokens, u.CompletionTokens, u.TotalTokens
		}
		if res.FinishReason == FinishMaxTokens {
			g.log.WithFields(logrus.Fields{
				"agent_type": in.AgentType,
				"provider":   entry.Provider,
				"usage":      res.RawUsage,
			}).Warn("LLM response hit max tokens limit")
		}
		if res.Text == nil {
			err = NewProviderError(ErrCodeNoText, "Could not extract text from "+entry.Provider+" response: "+compact([]byte(ex.ResponseBody)), nil)
		}
	}

	if err != nil {
		var pe *ProviderError
		if !errors.As(err, &pe) {
			err = NewProviderError(ErrCodeTransport, "LLM call failed", err)
		}
		entry.Success = false
		entry.ErrorMessage = err.Error()
		g.record(ctx, entry, elapsed)
		return "", err
	}

	text := *res.Text
	entry.Success = true
	entry.ParsedOutput = toJSON(map[string]string{"extracted_text": preview(text)})
	g.record(ctx, entry, elapsed)
	return text, nil
}

// record writes the call log. Failures are reported and swallowed so they
// never replace the call's own outcome.
func (g *Gateway) record(ctx context.Context, entry *models.LlmCallLog, elapsed time.Duration) {
	metrics.ObserveLLMCall(string(entry.AgentType), entry.Provider, entry.Success, elapsed)

	entry.CreatedAt = g.now()
	if g.logs == nil {
		return
	}
	if err := g.logs.Create(context.WithoutCancel(ctx), entry); err != nil {
		g.log.WithError(err).WithFields(logrus.Fields{
			"agent_type": entry.AgentType,
			"product_id": entry.ProductID,
			"success":    entry.Success,
		}).Error("failed to log LLM API call")
	}
}

func preview(s string) string {
	if len(s) <= previewLength {
		return s
	}
	cut := previewLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
