package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yoockh/seopilot/internal/models"
	"github.com/yoockh/seopilot/internal/providers/catalog"
	"github.com/yoockh/seopilot/internal/utils"
)

type fakeConfigRepo struct {
	mu      sync.Mutex
	configs map[string]*models.LlmConfiguration
	usage   map[string]int
}

func newFakeConfigRepo(cfgs ...*models.LlmConfiguration) *fakeConfigRepo {
	r := &fakeConfigRepo{configs: map[string]*models.LlmConfiguration{}, usage: map[string]int{}}
	for _, c := range cfgs {
		r.configs[c.ID] = c
	}
	return r
}

func (r *fakeConfigRepo) GetByID(_ context.Context, id string) (*models.LlmConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.configs[id]; ok {
		return c, nil
	}
	return nil, utils.ErrNotFound
}

func (r *fakeConfigRepo) GetActive(_ context.Context, t models.PromptType, storeID *string) (*models.LlmConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var candidates []*models.LlmConfiguration
	for _, c := range r.configs {
		if c.PromptType != t || !c.IsActive {
			continue
		}
		if c.StoreID != nil && (storeID == nil || *c.StoreID != *storeID) {
			continue
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return nil, utils.ErrNotFound
	}
	sort.Slice(candidates, func(i, j int) bool {
		si, sj := candidates[i].StoreID != nil, candidates[j].StoreID != nil
		if si != sj {
			return si
		}
		return candidates[i].UpdatedAt.After(candidates[j].UpdatedAt)
	})
	return candidates[0], nil
}

func (r *fakeConfigRepo) RecordUsage(_ context.Context, id string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage[id]++
	return nil
}

func (r *fakeConfigRepo) Create(_ context.Context, c *models.LlmConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	r.configs[c.ID] = c
	return nil
}

func (r *fakeConfigRepo) CountByType(_ context.Context, t models.PromptType) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.configs {
		if c.PromptType == t {
			n++
		}
	}
	return n, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*models.Product
}

func newFakeProductRepo(ps ...*models.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: map[string]*models.Product{}}
	for _, p := range ps {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return nil, utils.ErrNotFound
}

func (r *fakeProductRepo) FindBySKU(_ context.Context, sku string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeProductRepo) UpsertBySKU(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.products {
		if existing.SKU == p.SKU {
			p.ID = id
			r.products[id] = p
			return nil
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) CountByStore(_ context.Context, storeID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.products {
		if p.StoreID != nil && *p.StoreID == storeID {
			n++
		}
	}
	return n, nil
}

type fakeJobRepo struct {
	mu       sync.Mutex
	jobs     map[string]*models.SeoJob
	drafts   []*models.SeoDraft
	draftErr error
}

func newFakeJobRepo(js ...*models.SeoJob) *fakeJobRepo {
	r := &fakeJobRepo{jobs: map[string]*models.SeoJob{}}
	for _, j := range js {
		r.jobs[j.ID] = j
	}
	return r
}

func (r *fakeJobRepo) Create(_ context.Context, j *models.SeoJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	cp := *j
	r.jobs[j.ID] = &cp
	return nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, id string) (*models.SeoJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, utils.ErrNotFound
}

func (r *fakeJobRepo) TransitionStatus(_ context.Context, id string, from, to models.JobStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok || j.Status != from {
		return false, nil
	}
	j.Status = to
	return true, nil
}

func (r *fakeJobRepo) AddDraft(_ context.Context, d *models.SeoDraft) (*models.SeoJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.draftErr != nil {
		return nil, r.draftErr
	}
	j, ok := r.jobs[d.SeoJobID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	r.drafts = append(r.drafts, d)
	j.ProcessedProducts++
	if j.ProcessedProducts >= j.TotalProducts {
		j.Status = models.JobCompleted
	}
	cp := *j
	return &cp, nil
}

func (r *fakeJobRepo) ListDrafts(_ context.Context, jobID string) ([]models.SeoDraft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SeoDraft
	for _, d := range r.drafts {
		if d.SeoJobID == jobID {
			out = append(out, *d)
		}
	}
	return out, nil
}

type fakeStoreRepo struct {
	mu     sync.Mutex
	stores map[string]*models.MagentoStore
}

func newFakeStoreRepo() *fakeStoreRepo {
	return &fakeStoreRepo{stores: map[string]*models.MagentoStore{}}
}

func (r *fakeStoreRepo) Create(_ context.Context, s *models.MagentoStore) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	cp := *s
	r.stores[s.ID] = &cp
	return nil
}

func (r *fakeStoreRepo) GetByID(_ context.Context, id string) (*models.MagentoStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, utils.ErrNotFound
}

func (r *fakeStoreRepo) with(id string, fn func(s *models.MagentoStore)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	if !ok {
		return utils.ErrNotFound
	}
	fn(s)
	return nil
}

func (r *fakeStoreRepo) BeginSync(_ context.Context, id string, at time.Time) error {
	return r.with(id, func(s *models.MagentoStore) {
		s.SyncStatus, s.SyncError, s.ProductsFetched, s.TotalProducts = models.SyncSyncing, "", 0, nil
		s.LastSyncStartedAt = &at
	})
}

func (r *fakeStoreRepo) SetTotal(_ context.Context, id string, total int) error {
	return r.with(id, func(s *models.MagentoStore) { s.TotalProducts = &total })
}

func (r *fakeStoreRepo) AddFetched(_ context.Context, id string, n int) error {
	return r.with(id, func(s *models.MagentoStore) { s.ProductsFetched += n })
}

func (r *fakeStoreRepo) CompleteSync(_ context.Context, id string, at time.Time) error {
	return r.with(id, func(s *models.MagentoStore) {
		s.SyncStatus = models.SyncCompleted
		s.LastSyncCompletedAt = &at
	})
}

func (r *fakeStoreRepo) FailSync(_ context.Context, id string, msg string) error {
	return r.with(id, func(s *models.MagentoStore) {
		s.SyncStatus = models.SyncFailed
		s.SyncError = msg
	})
}

type fakeQueue struct {
	mu       sync.Mutex
	products []ProductTask
	syncs    []string
	err      error
}

func (q *fakeQueue) EnqueueProduct(_ context.Context, t ProductTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.products = append(q.products, t)
	return nil
}

func (q *fakeQueue) EnqueueSync(_ context.Context, storeID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.syncs = append(q.syncs, storeID)
	return nil
}

type fakeProgress struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (p *fakeProgress) Publish(_ context.Context, ev ProgressEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

// fakeCatalog serves fixed pages keyed by page number.
type fakeCatalog struct {
	pages map[int]*catalog.ProductPage
	err   error
	calls []int
}

func (c *fakeCatalog) ListProducts(_ context.Context, page, _ int) (*catalog.ProductPage, error) {
	c.calls = append(c.calls, page)
	if c.err != nil {
		return nil, c.err
	}
	if p, ok := c.pages[page]; ok {
		return p, nil
	}
	return &catalog.ProductPage{}, nil
}

func strPtr(s string) *string { return &s }
