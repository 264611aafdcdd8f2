package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yoockh/seopilot/internal/models"
	"github.com/yoockh/seopilot/internal/utils"
)

type LlmConfigRepository interface {
	GetByID(ctx context.Context, id string) (*models.LlmConfiguration, error)
	// GetActive returns the active configuration for promptType. With a
	// store, a store-scoped configuration wins over a global one; without
	// one only global configurations qualify. Ties go to the most
	// recently updated row.
	GetActive(ctx context.Context, promptType models.PromptType, storeID *string) (*models.LlmConfiguration, error)
	RecordUsage(ctx context.Context, id string, at time.Time) error
	Create(ctx context.Context, c *models.LlmConfiguration) error
	CountByType(ctx context.Context, promptType models.PromptType) (int64, error)
}

type llmConfigRepo struct {
	db *gorm.DB
}

func NewLlmConfigRepo(db *gorm.DB) LlmConfigRepository {
	return &llmConfigRepo{db: db}
}

func (r *llmConfigRepo) GetByID(ctx context.Context, id string) (*models.LlmConfiguration, error) {
	var c models.LlmConfiguration
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *llmConfigRepo) GetActive(ctx context.Context, promptType models.PromptType, storeID *string) (*models.LlmConfiguration, error) {
	q := r.db.WithContext(ctx).
		Where("prompt_type = ? AND is_active = ?", promptType, true)
	if storeID != nil && *storeID != "" {
		q = q.Where("(store_id = ? OR store_id IS NULL)", *storeID)
	} else {
		q = q.Where("store_id IS NULL")
	}

	var c models.LlmConfiguration
	err := q.Order("store_id IS NOT NULL DESC").Order("updated_at DESC").Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// RecordUsage increments usage_count in SQL so concurrent workers never
// lose an update. updated_at is left alone: it ranks active configurations.
func (r *llmConfigRepo) RecordUsage(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.LlmConfiguration{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"usage_count":  gorm.Expr("usage_count + 1"),
			"last_used_at": at,
		}).Error
}

func (r *llmConfigRepo) Create(ctx context.Context, c *models.LlmConfiguration) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *llmConfigRepo) CountByType(ctx context.Context, promptType models.PromptType) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.LlmConfiguration{}).Where("prompt_type = ?", promptType).Count(&n).Error
	return n, err
}
