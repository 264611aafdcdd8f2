package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yoockh/seopilot/internal/models"
	"github.com/yoockh/seopilot/internal/utils"
)

type StoreRepository interface {
	Create(ctx context.Context, s *models.MagentoStore) error
	GetByID(ctx context.Context, id string) (*models.MagentoStore, error)
	BeginSync(ctx context.Context, id string, at time.Time) error
	SetTotal(ctx context.Context, id string, total int) error
	AddFetched(ctx context.Context, id string, n int) error
	CompleteSync(ctx context.Context, id string, at time.Time) error
	FailSync(ctx context.Context, id string, msg string) error
}

type storeRepo struct {
	db *gorm.DB
}

func NewStoreRepo(db *gorm.DB) StoreRepository {
	return &storeRepo{db: db}
}

func (r *storeRepo) Create(ctx context.Context, s *models.MagentoStore) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *storeRepo) GetByID(ctx context.Context, id string) (*models.MagentoStore, error) {
	var s models.MagentoStore
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *storeRepo) update(ctx context.Context, id string, cols map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.MagentoStore{}).Where("id = ?", id).UpdateColumns(cols).Error
}

func (r *storeRepo) BeginSync(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, map[string]any{
		"sync_status":          models.SyncSyncing,
		"sync_error":           "",
		"products_fetched":     0,
		"total_products":       nil,
		"last_sync_started_at": at,
		"updated_at":           at,
	})
}

func (r *storeRepo) SetTotal(ctx context.Context, id string, total int) error {
	return r.update(ctx, id, map[string]any{"total_products": total})
}

func (r *storeRepo) AddFetched(ctx context.Context, id string, n int) error {
	return r.update(ctx, id, map[string]any{"products_fetched": gorm.Expr("products_fetched + ?", n)})
}

func (r *storeRepo) CompleteSync(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, map[string]any{
		"sync_status":            models.SyncCompleted,
		"last_sync_completed_at": at,
		"updated_at":             at,
	})
}

func (r *storeRepo) FailSync(ctx context.Context, id string, msg string) error {
	return r.update(ctx, id, map[string]any{
		"sync_status": models.SyncFailed,
		"sync_error":  msg,
		"updated_at":  time.Now().UTC(),
	})
}
