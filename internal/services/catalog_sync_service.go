package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/yoockh/seopilot/internal/models"
	"github.com/yoockh/seopilot/internal/providers/catalog"
	pgrepo "github.com/yoockh/seopilot/internal/repositories/postgres"
	"github.com/yoockh/seopilot/internal/utils"
)

// SyncQueue hands store sync requests to the worker pool.
type SyncQueue interface {
	EnqueueSync(ctx context.Context, storeID string) error
}

// CatalogInvalidator drops cached catalog entries for updated SKUs.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context, skus ...string) error
}

type ClientFactory func(baseURL, token string) catalog.Client

type RegisterStoreInput struct {
	Name     string `json:"name"`
	URL      string `json:"base_url"`
	APIToken string `json:"api_token"`
}

type CatalogSyncService interface {
	Register(ctx context.Context, in RegisterStoreInput) (*models.MagentoStore, error)
	Get(ctx context.Context, storeID string) (*models.MagentoStore, error)
	RequestSync(ctx context.Context, storeID string) error
	// SyncStore crawls the store's product listing page by page. It does
	// not retry; a failure marks the store failed and is returned.
	SyncStore(ctx context.Context, storeID string) error
}

type catalogSyncService struct {
	stores    pgrepo.StoreRepository
	products  pgrepo.ProductRepository
	newClient ClientFactory
	key       *[32]byte
	queue     SyncQueue
	cache     CatalogInvalidator
	pageSize  int
	log       logrus.FieldLogger
}

type CatalogSyncDeps struct {
	Stores    pgrepo.StoreRepository
	Products  pgrepo.ProductRepository
	NewClient ClientFactory
	Key       *[32]byte
	Queue     SyncQueue
	Cache     CatalogInvalidator // optional
	PageSize  int
	Log       logrus.FieldLogger
}

func NewCatalogSyncService(d CatalogSyncDeps) CatalogSyncService {
	if d.PageSize <= 0 {
		d.PageSize = 20
	}
	return &catalogSyncService{
		stores:    d.Stores,
		products:  d.Products,
		newClient: d.NewClient,
		key:       d.Key,
		queue:     d.Queue,
		cache:     d.Cache,
		pageSize:  d.PageSize,
		log:       d.Log.WithField("component", "catalog_sync"),
	}
}

func (s *catalogSyncService) Register(ctx context.Context, in RegisterStoreInput) (*models.MagentoStore, error) {
	const op = "CatalogSyncService.Register"

	in.Name = strings.TrimSpace(in.Name)
	in.URL = strings.TrimSpace(in.URL)
	if in.Name == "" || in.URL == "" || in.APIToken == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "name, base_url and api_token are required", nil)
	}
	if u, err := url.Parse(in.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "base_url must be an absolute URL", err)
	}
	if s.key == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "store registration requires APP_KEY", nil)
	}

	sealed, err := utils.SealString(s.key, in.APIToken)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to seal api token", err)
	}
	store := &models.MagentoStore{
		Name:       in.Name,
		URL:        in.URL,
		APIToken:   sealed,
		SyncStatus: models.SyncIdle,
	}
	if err := s.stores.Create(ctx, store); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create store", err)
	}
	return store, nil
}

func (s *catalogSyncService) Get(ctx context.Context, storeID string) (*models.MagentoStore, error) {
	const op = "CatalogSyncService.Get"

	if storeID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "store_id is required", nil)
	}
	st, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "store not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get store", err)
	}
	return st, nil
}

func (s *catalogSyncService) RequestSync(ctx context.Context, storeID string) error {
	const op = "CatalogSyncService.RequestSync"

	if _, err := s.Get(ctx, storeID); err != nil {
		return err
	}
	if err := s.queue.EnqueueSync(ctx, storeID); err != nil {
		return utils.E(utils.CodeUnavailable, op, "failed to enqueue sync", err)
	}
	return nil
}

func (s *catalogSyncService) SyncStore(ctx context.Context, storeID string) error {
	const op = "CatalogSyncService.SyncStore"

	store, err := s.Get(ctx, storeID)
	if err != nil {
		return err
	}
	log := s.log.WithFields(logrus.Fields{"store_id": store.ID, "store": store.Name})

	if err := s.stores.BeginSync(ctx, store.ID, time.Now().UTC()); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to mark store syncing", err)
	}

	if err := s.crawl(ctx, log, store); err != nil {
		if ferr := s.stores.FailSync(context.WithoutCancel(ctx), store.ID, err.Error()); ferr != nil {
			log.WithError(ferr).Error("failed to mark store sync failed")
		}
		log.WithError(err).Error("catalog sync failed")
		return err
	}

	if err := s.stores.CompleteSync(ctx, store.ID, time.Now().UTC()); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to mark store synced", err)
	}
	log.Info("catalog sync completed")
	return nil
}

func (s *catalogSyncService) crawl(ctx context.Context, log logrus.FieldLogger, store *models.MagentoStore) error {
	if s.key == nil {
		return utils.E(utils.CodeUnavailable, "CatalogSyncService.SyncStore", "catalog sync requires APP_KEY", nil)
	}
	token, err := utils.OpenString(s.key, store.APIToken)
	if err != nil {
		return utils.E(utils.CodeInternal, "CatalogSyncService.SyncStore", "failed to open api token", err)
	}
	client := s.newClient(store.URL, token)

	for page := 1; ; page++ {
		res, err := client.ListProducts(ctx, page, s.pageSize)
		if err != nil {
			return err
		}
		if page == 1 {
			if err := s.stores.SetTotal(ctx, store.ID, res.TotalCount); err != nil {
				return err
			}
		}

		skus := make([]string, 0, len(res.Items))
		for _, item := range res.Items {
			p := productFromItem(store.ID, item)
			if err := s.products.UpsertBySKU(ctx, p); err != nil {
				return err
			}
			skus = append(skus, item.SKU)
		}
		if err := s.stores.AddFetched(ctx, store.ID, len(res.Items)); err != nil {
			return err
		}
		if s.cache != nil && len(skus) > 0 {
			if err := s.cache.Invalidate(ctx, skus...); err != nil {
				log.WithError(err).Warn("failed to invalidate catalog cache")
			}
		}
		log.WithFields(logrus.Fields{"page": page, "fetched": len(res.Items)}).Info("fetched product page")

		if res.TotalCount <= page*s.pageSize || len(res.Items) != s.pageSize {
			return nil
		}
	}
}

func productFromItem(storeID string, item catalog.ProductItem) *models.Product {
	attrs := datatypes.JSON("[]")
	if len(item.CustomAttributes) > 0 && string(item.CustomAttributes) != "null" {
		attrs = datatypes.JSON(item.CustomAttributes)
	}
	var ext datatypes.JSON
	if len(item.ExtensionAttributes) > 0 && string(item.ExtensionAttributes) != "null" {
		ext = datatypes.JSON(item.ExtensionAttributes)
	}
	sid := storeID
	return &models.Product{
		StoreID:             &sid,
		SKU:                 item.SKU,
		TypeID:              models.ProductType(item.TypeID),
		Name:                item.Name,
		Description:         item.Description,
		Attributes:          attrs,
		ExtensionAttributes: ext,
	}
}
