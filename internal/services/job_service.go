package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/seopilot/internal/models"
	pgrepo "github.com/yoockh/seopilot/internal/repositories/postgres"
	"github.com/yoockh/seopilot/internal/utils"
)

// TaskQueue hands product tasks to the worker pool.
type TaskQueue interface {
	EnqueueProduct(ctx context.Context, task ProductTask) error
}

type CreateJobInput struct {
	StoreID     *string  `json:"store_id"`
	StoreView   string   `json:"store_view"`
	ProductIDs  []string `json:"product_ids"`
	LlmConfigID *string  `json:"llm_config_id"`
}

type JobService interface {
	Create(ctx context.Context, in CreateJobInput) (*models.SeoJob, error)
	Get(ctx context.Context, jobID string) (*models.SeoJob, error)
	ListDrafts(ctx context.Context, jobID string) ([]models.SeoDraft, error)
}

type jobService struct {
	jobs    pgrepo.JobRepository
	configs pgrepo.LlmConfigRepository
	queue   TaskQueue
	log     logrus.FieldLogger
}

func NewJobService(jobs pgrepo.JobRepository, configs pgrepo.LlmConfigRepository, queue TaskQueue, log logrus.FieldLogger) JobService {
	return &jobService{jobs: jobs, configs: configs, queue: queue, log: log.WithField("component", "job_service")}
}

func (s *jobService) Create(ctx context.Context, in CreateJobInput) (*models.SeoJob, error) {
	const op = "JobService.Create"

	ids := uniqueNonEmpty(in.ProductIDs)
	if len(ids) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "product_ids is required", nil)
	}
	if in.StoreView == "" {
		in.StoreView = "default"
	}
	if in.StoreID != nil && *in.StoreID == "" {
		in.StoreID = nil
	}
	if in.LlmConfigID != nil && *in.LlmConfigID == "" {
		in.LlmConfigID = nil
	}
	if in.LlmConfigID != nil {
		if _, err := s.configs.GetByID(ctx, *in.LlmConfigID); err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return nil, utils.E(utils.CodeInvalidArgument, op, "llm_config_id does not exist", err)
			}
			return nil, utils.E(utils.CodeInternal, op, "failed to load llm configuration", err)
		}
	}

	job := &models.SeoJob{
		StoreID:       in.StoreID,
		StoreView:     in.StoreView,
		ProductIDs:    ids,
		LlmConfigID:   in.LlmConfigID,
		Status:        models.JobProcessing,
		TotalProducts: len(ids),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create job", err)
	}

	configID := ""
	if job.LlmConfigID != nil {
		configID = *job.LlmConfigID
	}
	// Workers may complete the job before this loop ends.
	for i, id := range ids {
		if err := s.queue.EnqueueProduct(ctx, ProductTask{JobID: job.ID, ProductID: id, ConfigID: configID}); err != nil {
			if i == 0 {
				if _, terr := s.jobs.TransitionStatus(ctx, job.ID, models.JobProcessing, models.JobPending); terr != nil {
					s.log.WithError(terr).WithField("job_id", job.ID).Warn("failed to reset job status")
				}
			}
			return nil, utils.E(utils.CodeUnavailable, op, "failed to enqueue product", err)
		}
	}

	s.log.WithFields(logrus.Fields{"job_id": job.ID, "products": len(ids)}).Info("seo job created")
	return job, nil
}

func (s *jobService) Get(ctx context.Context, jobID string) (*models.SeoJob, error) {
	const op = "JobService.Get"

	if jobID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "job_id is required", nil)
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get job", err)
	}
	return job, nil
}

func (s *jobService) ListDrafts(ctx context.Context, jobID string) ([]models.SeoDraft, error) {
	const op = "JobService.ListDrafts"

	if _, err := s.Get(ctx, jobID); err != nil {
		return nil, err
	}
	drafts, err := s.jobs.ListDrafts(ctx, jobID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list drafts", err)
	}
	return drafts, nil
}

func uniqueNonEmpty(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
