package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yoockh/seopilot/internal/models"
	"github.com/yoockh/seopilot/internal/utils"
)

type JobRepository interface {
	Create(ctx context.Context, j *models.SeoJob) error
	GetByID(ctx context.Context, id string) (*models.SeoJob, error)
	// TransitionStatus moves the job from one status to another and reports
	// whether it was in the expected status.
	TransitionStatus(ctx context.Context, id string, from, to models.JobStatus) (bool, error)
	// AddDraft stores a draft and advances the job's progress in one
	// transaction, completing the job once every product has a draft.
	AddDraft(ctx context.Context, d *models.SeoDraft) (*models.SeoJob, error)
	ListDrafts(ctx context.Context, jobID string) ([]models.SeoDraft, error)
}

type jobRepo struct {
	db *gorm.DB
}

func NewJobRepo(db *gorm.DB) JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, j *models.SeoJob) error {
	return r.db.WithContext(ctx).Create(j).Error
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*models.SeoJob, error) {
	var j models.SeoJob
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *jobRepo) TransitionStatus(ctx context.Context, id string, from, to models.JobStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.SeoJob{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumns(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *jobRepo) AddDraft(ctx context.Context, d *models.SeoDraft) (*models.SeoJob, error) {
	var job models.SeoJob
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			return err
		}

		res := tx.Model(&models.SeoJob{}).
			Where("id = ?", d.SeoJobID).
			UpdateColumns(map[string]any{
				"processed_products": gorm.Expr("processed_products + 1"),
				"updated_at":         time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ErrNotFound
		}

		if err := tx.Model(&models.SeoJob{}).
			Where("id = ? AND processed_products >= total_products AND status <> ?", d.SeoJobID, models.JobCompleted).
			UpdateColumn("status", models.JobCompleted).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", d.SeoJobID).Take(&job).Error
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) ListDrafts(ctx context.Context, jobID string) ([]models.SeoDraft, error) {
	var out []models.SeoDraft
	err := r.db.WithContext(ctx).
		Where("seo_job_id = ?", jobID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}
