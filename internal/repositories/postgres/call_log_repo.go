package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yoockh/seopilot/internal/models"
)

const defaultCallLogLimit = 50

type CallLogRepository interface {
	Create(ctx context.Context, l *models.LlmCallLog) error
	List(ctx context.Context, f models.CallLogFilter) ([]models.LlmCallLog, error)
}

type callLogRepo struct {
	db *gorm.DB
}

func NewCallLogRepo(db *gorm.DB) CallLogRepository {
	return &callLogRepo{db: db}
}

func (r *callLogRepo) Create(ctx context.Context, l *models.LlmCallLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *callLogRepo) List(ctx context.Context, f models.CallLogFilter) ([]models.LlmCallLog, error) {
	q := r.db.WithContext(ctx).Model(&models.LlmCallLog{})
	if f.ProductID != "" {
		q = q.Where("product_id = ?", f.ProductID)
	}
	if f.JobID != "" {
		q = q.Where("seo_job_id = ?", f.JobID)
	}
	if f.AgentType != "" {
		q = q.Where("agent_type = ?", f.AgentType)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultCallLogLimit
	}

	var out []models.LlmCallLog
	err := q.Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}
