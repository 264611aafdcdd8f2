package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/seopilot/internal/api/handlers"
	"github.com/yoockh/seopilot/internal/models"
	"github.com/yoockh/seopilot/internal/providers/llm"
	"github.com/yoockh/seopilot/internal/seo"
	"github.com/yoockh/seopilot/internal/services"
	"github.com/yoockh/seopilot/internal/storage"
	"github.com/yoockh/seopilot/internal/utils"
)

type stubJobs struct {
	created services.CreateJobInput
}

func (s *stubJobs) Create(_ context.Context, in services.CreateJobInput) (*models.SeoJob, error) {
	s.created = in
	if len(in.ProductIDs) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, "JobService.Create", "product_ids is required", nil)
	}
	return &models.SeoJob{ID: "job-1", Status: models.JobProcessing, TotalProducts: len(in.ProductIDs)}, nil
}

func (s *stubJobs) Get(_ context.Context, id string) (*models.SeoJob, error) {
	if id != "job-1" {
		return nil, utils.E(utils.CodeNotFound, "JobService.Get", "job not found", utils.ErrNotFound)
	}
	return &models.SeoJob{ID: id, Status: models.JobCompleted}, nil
}

func (s *stubJobs) ListDrafts(_ context.Context, _ string) ([]models.SeoDraft, error) {
	return []models.SeoDraft{{ID: "d1", Status: models.DraftApproved}}, nil
}

type stubExports struct{}

func (stubExports) ExportJob(context.Context, string) (*services.ExportResult, error) {
	return nil, utils.E(utils.CodeUnavailable, "ExportService.ExportJob", "exports are not configured", nil)
}

func (stubExports) ListExports(context.Context, string) ([]storage.Object, error) {
	return []storage.Object{}, nil
}

type stubPreview struct {
	configID string
	err      error
}

func (s *stubPreview) Preview(_ context.Context, _ string, configID string) (*services.PreviewResult, error) {
	s.configID = configID
	if s.err != nil {
		return nil, s.err
	}
	return &services.PreviewResult{
		Result: seo.Result{GeneratedDraft: seo.GeneratedContent{MetaTitle: "T"}, Audit: seo.AuditResult{IsSafe: true, ConfidenceScore: 0.95}},
		Status: models.DraftApproved,
	}, nil
}

type stubConfigs struct{ services.ConfigProvider }

func (stubConfigs) Resolve(_ context.Context, t models.PromptType, _ *string, _ string) (*services.ResolvedConfig, error) {
	return &services.ResolvedConfig{PromptType: t, Source: services.SourceDefault, SystemPrompt: "s"}, nil
}

type stubLogs struct{ got models.CallLogFilter }

func (s *stubLogs) List(_ context.Context, f models.CallLogFilter) ([]models.LlmCallLog, error) {
	s.got = f
	return []models.LlmCallLog{{ID: "l1", Success: true}}, nil
}

type stubStores struct {
	services.CatalogSyncService
	synced []string
}

func (s *stubStores) Register(_ context.Context, in services.RegisterStoreInput) (*models.MagentoStore, error) {
	return &models.MagentoStore{ID: "s1", Name: in.Name, URL: in.URL, APIToken: "sealed"}, nil
}

func (s *stubStores) RequestSync(_ context.Context, id string) error {
	s.synced = append(s.synced, id)
	return nil
}

type fixture struct {
	r       *gin.Engine
	jobs    *stubJobs
	preview *stubPreview
	logs    *stubLogs
	stores  *stubStores
}

func newFixture() *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{jobs: &stubJobs{}, preview: &stubPreview{}, logs: &stubLogs{}, stores: &stubStores{}}
	f.r = gin.New()
	RegisterRoutes(f.r, Deps{
		Jobs:     handlers.NewJobHandler(f.jobs, stubExports{}),
		Products: handlers.NewProductHandler(f.preview),
		Configs:  handlers.NewConfigHandler(stubConfigs{}),
		CallLogs: handlers.NewCallLogHandler(f.logs),
		Stores:   handlers.NewStoreHandler(f.stores),
	})
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestPing(t *testing.T) {
	w := newFixture().do(http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestCreateJob(t *testing.T) {
	f := newFixture()
	w := f.do(http.MethodPost, "/jobs", `{"product_ids":["p1","p2"],"llm_config_id":"c1"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "job-1", decode(t, w)["id"])
	require.NotNil(t, f.jobs.created.LlmConfigID)
	assert.Equal(t, "c1", *f.jobs.created.LlmConfigID)
	assert.Nil(t, f.jobs.created.StoreID)

	w = f.do(http.MethodPost, "/jobs", `{"product_ids":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(utils.CodeInvalidArgument), decode(t, w)["code"])
}

func TestGetJobAndDrafts(t *testing.T) {
	f := newFixture()
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/jobs/job-1", "").Code)

	w := f.do(http.MethodGet, "/jobs/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "job not found", decode(t, w)["message"])

	w = f.do(http.MethodGet, "/jobs/job-1/drafts", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])
}

func TestExportDisabled(t *testing.T) {
	w := newFixture().do(http.MethodPost, "/jobs/job-1/export", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPreview(t *testing.T) {
	f := newFixture()
	w := f.do(http.MethodPost, "/products/p1/preview", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "APPROVED", body["status"])
	assert.Equal(t, "T", body["generated_draft"].(map[string]any)["meta_title"])

	f.do(http.MethodPost, "/products/p1/preview", `{"llm_config_id":"c9"}`)
	assert.Equal(t, "c9", f.preview.configID)
}

func TestPreviewProviderErrorIsBadGateway(t *testing.T) {
	f := newFixture()
	f.preview.err = llm.NewProviderError(llm.ErrCodeHTTPStatus, "Gemini API error: boom", nil)
	w := f.do(http.MethodPost, "/products/p1/preview", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "PROVIDER_ERROR", decode(t, w)["code"])
}

func TestActiveConfiguration(t *testing.T) {
	f := newFixture()
	w := f.do(http.MethodGet, "/llm-configurations/active?prompt_type=writer", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "default", decode(t, w)["source"])

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/llm-configurations/active?prompt_type=other", "").Code)
}

func TestCallLogs(t *testing.T) {
	f := newFixture()
	w := f.do(http.MethodGet, "/llm-logs?job_id=j1&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "j1", f.logs.got.JobID)
	assert.Equal(t, 5, f.logs.got.Limit)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/llm-logs?limit=x", "").Code)
}

func TestStores(t *testing.T) {
	f := newFixture()
	w := f.do(http.MethodPost, "/stores", `{"name":"Main","base_url":"https://shop.example.com","api_token":"tok"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "s1", body["id"])
	_, leaked := body["api_token"]
	assert.False(t, leaked)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/stores", `{"name":"x"}`).Code)

	w = f.do(http.MethodPost, "/stores/s1/sync", "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"s1"}, f.stores.synced)
}

func TestMetricsEndpoint(t *testing.T) {
	w := newFixture().do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
