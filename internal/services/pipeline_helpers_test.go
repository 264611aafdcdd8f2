package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/yoockh/seopilot/internal/models"
	"github.com/yoockh/seopilot/internal/providers/llm"
)

type memCallLogs struct {
	mu   sync.Mutex
	rows []*models.LlmCallLog
}

func (m *memCallLogs) Create(_ context.Context, l *models.LlmCallLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, l)
	return nil
}

func (m *memCallLogs) all() []*models.LlmCallLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.LlmCallLog(nil), m.rows...)
}

type reply struct {
	status int
	text   string
}

// scriptedGemini answers generateContent calls from a script; the last
// reply repeats once the script runs out.
type scriptedGemini struct {
	mu      sync.Mutex
	replies []reply
	prompts []string
}

func (s *scriptedGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	_ = json.Unmarshal(raw, &body)

	s.mu.Lock()
	if len(body.Contents) > 0 && len(body.Contents[0].Parts) > 0 {
		s.prompts = append(s.prompts, body.Contents[0].Parts[0].Text)
	}
	rep := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rep.status)
	if rep.status != http.StatusOK {
		_, _ = io.WriteString(w, `{"error":{"code":500,"message":"internal"}}`)
		return
	}
	resp := map[string]any{
		"candidates": []any{map[string]any{
			"content":      map[string]any{"parts": []any{map[string]any{"text": rep.text}}},
			"finishReason": "STOP",
		}},
		"usageMetadata": map[string]any{"promptTokenCount": 10, "candidatesTokenCount": 5, "totalTokenCount": 15},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func newGateway(t *testing.T, stub http.Handler, logs llm.CallLogWriter) *llm.Gateway {
	t.Helper()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	l, _ := test.NewNullLogger()
	return llm.NewGateway(llm.GatewayOptions{DefaultModel: "gemini-2.5-flash", Timeout: 5 * time.Second}, logs, l,
		llm.NewGemini(srv.URL, "test-key", srv.Client()))
}

const (
	widgetTitle       = "Red Widget for Everyday Use | Great Quality!!"
	widgetDescription = "The red Widget is a great everyday helper. Sturdy, simple and ready for daily use at home or at work, in bright red hue."
)

func widgetProduct() *models.Product {
	return &models.Product{
		ID:          "11111111-1111-1111-1111-111111111111",
		SKU:         "ABC1",
		TypeID:      models.ProductTypeSimple,
		Name:        "Widget",
		Description: "<p>Great</p>",
		Attributes:  []byte(`[{"attribute_code":"color","value":"red"}]`),
	}
}

func writerReply() reply {
	b, _ := json.Marshal(map[string]any{
		"meta_title":       widgetTitle,
		"meta_description": widgetDescription,
		"meta_keywords":    []string{"widget", "red widget"},
	})
	return reply{status: http.StatusOK, text: "```json\n" + string(b) + "\n```"}
}

func auditorReply(safe bool, score float64) reply {
	b, _ := json.Marshal(map[string]any{
		"is_safe":                  safe,
		"confidence_score":         score,
		"potential_hallucinations": []any{},
	})
	return reply{status: http.StatusOK, text: string(b)}
}
