package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yoockh/seopilot/internal/models"
	"github.com/yoockh/seopilot/internal/utils"
)

type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	UpsertBySKU(ctx context.Context, p *models.Product) error
	CountByStore(ctx context.Context, storeID string) (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) UpsertBySKU(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sku"}},
			DoUpdates: clause.AssignmentColumns([]string{"store_id", "type_id", "name", "description", "attributes", "extension_attributes", "updated_at"}),
		}).
		Create(p).Error
}

func (r *productRepo) CountByStore(ctx context.Context, storeID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("store_id = ?", storeID).Count(&n).Error
	return n, err
}
