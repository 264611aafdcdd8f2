package llm

import (
	"context"
	"encoding/json"
	"fmt"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// VertexGemini serves configurations whose provider is "vertex".
type VertexGemini struct {
	client   *vertexgenai.Client
	project  string
	location string
}

func NewVertexGemini(ctx context.Context, projectID, location, credentialsFile string) (*VertexGemini, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := vertexgenai.NewClient(ctx, projectID, location, opts...)
	if err != nil {
		return nil, err
	}
	return &VertexGemini{client: c, project: projectID, location: location}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) Name() string { return ProviderVertex }

func (v *VertexGemini) Generate(ctx context.Context, req Request, ex *Exchange) (*Result, error) {
	m := v.client.GenerativeModel(req.Model)
	if req.Temperature != nil {
		m.SetTemperature(float32(*req.Temperature))
	}
	if req.MaxTokens != nil {
		m.SetMaxOutputTokens(int32(*req.MaxTokens))
	}
	if req.TopP != nil {
		m.SetTopP(float32(*req.TopP))
	}

	ex.URL = fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:generateContent",
		v.location, v.project, v.location, req.Model)
	ex.RequestHeaders = map[string]string{"Content-Type": "application/grpc"}
	ex.RequestBody = marshalIndent(map[string]any{
		"contents":         []map[string]any{{"parts": []map[string]string{{"text": req.Prompt()}}}},
		"generationConfig": m.GenerationConfig,
	})

	resp, err := m.GenerateContent(ctx, vertexgenai.Text(req.Prompt()))
	if err != nil {
		return nil, transportError("Vertex Gemini", err)
	}
	ex.StatusCode = 200
	ex.ResponseBody = marshalIndent(resp)

	if len(resp.Candidates) == 0 {
		return nil, NewProviderError(ErrCodeNoCandidates, "No candidates in Vertex Gemini response: "+ex.ResponseBody, nil)
	}
	cand := resp.Candidates[0]

	res := &Result{FinishReason: FinishOther}
	switch cand.FinishReason {
	case vertexgenai.FinishReasonMaxTokens:
		res.FinishReason = FinishMaxTokens
	case vertexgenai.FinishReasonStop:
		res.FinishReason = FinishStop
	}
	if u := resp.UsageMetadata; u != nil {
		res.Usage = &Usage{
			PromptTokens:     intPtr(int(u.PromptTokenCount)),
			CompletionTokens: intPtr(int(u.CandidatesTokenCount)),
			TotalTokens:      intPtr(int(u.TotalTokenCount)),
		}
		res.RawUsage = u
	}
	if cand.Content != nil && len(cand.Content.Parts) > 0 {
		if t, ok := cand.Content.Parts[0].(vertexgenai.Text); ok {
			s := string(t)
			res.Text = &s
		}
	}
	return res, nil
}

func marshalIndent(v any) string {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}
