package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Gemini talks to the Generative Language REST API
// ({base}/{model}:generateContent?key=...).
type Gemini struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewGemini(baseURL, apiKey string, httpClient *http.Client) *Gemini {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Gemini{BaseURL: strings.TrimRight(baseURL, "/"), APIKey: apiKey, HTTP: httpClient}
}

func (g *Gemini) Name() string { return ProviderGemini }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		Output       *string `json:"output"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     *int `json:"promptTokenCount"`
		CandidatesTokenCount *int `json:"candidatesTokenCount"`
		TotalTokenCount      *int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func buildGeminiRequest(req Request) geminiRequest {
	body := geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: req.Prompt()}}}}}
	gc := geminiGenerationConfig{Temperature: req.Temperature, MaxOutputTokens: req.MaxTokens, TopP: req.TopP}
	if gc.Temperature != nil || gc.MaxOutputTokens != nil || gc.TopP != nil {
		body.GenerationConfig = &gc
	}
	return body
}

func (g *Gemini) endpoint(model, key string) string {
	return g.BaseURL + "/" + url.PathEscape(model) + ":generateContent?key=" + url.QueryEscape(key)
}

func (g *Gemini) Generate(ctx context.Context, req Request, ex *Exchange) (*Result, error) {
	body := buildGeminiRequest(req)
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, NewProviderError(ErrCodeInvalidRequest, "encode Gemini request", err)
	}

	ex.URL = g.endpoint(req.Model, "REDACTED")
	ex.RequestHeaders = map[string]string{"Content-Type": "application/json"}
	if pretty, err := json.MarshalIndent(body, "", "    "); err == nil {
		ex.RequestBody = string(pretty)
	} else {
		ex.RequestBody = string(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(req.Model, g.APIKey), bytes.NewReader(payload))
	if err != nil {
		return nil, NewProviderError(ErrCodeInvalidRequest, "build Gemini request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.HTTP.Do(httpReq)
	if err != nil {
		return nil, transportError("Gemini API", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	ex.StatusCode = resp.StatusCode
	ex.ResponseHeaders = resp.Header.Clone()
	ex.ResponseBody = string(raw)
	if err != nil {
		return nil, transportError("Gemini API", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderError{
			Code:       ErrCodeHTTPStatus,
			Message:    "Gemini API error: " + string(raw),
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}

	var data geminiResponse
	if err := json.Unmarshal(raw, &data); err != nil || len(data.Candidates) == 0 {
		return nil, NewProviderError(ErrCodeNoCandidates, fmt.Sprintf("No candidates in Gemini API response: %s", compact(raw)), nil)
	}

	cand := data.Candidates[0]
	res := &Result{FinishReason: FinishOther}
	switch cand.FinishReason {
	case "MAX_TOKENS":
		res.FinishReason = FinishMaxTokens
	case "STOP":
		res.FinishReason = FinishStop
	}
	if u := data.UsageMetadata; u != nil {
		res.Usage = &Usage{PromptTokens: u.PromptTokenCount, CompletionTokens: u.CandidatesTokenCount, TotalTokens: u.TotalTokenCount}
		res.RawUsage = u
	}

	if cand.Content != nil && len(cand.Content.Parts) > 0 && cand.Content.Parts[0].Text != nil {
		res.Text = cand.Content.Parts[0].Text
	} else if cand.Output != nil {
		res.Text = cand.Output
	}
	return res, nil
}

func compact(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
