package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/yoockh/seopilot/internal/metrics"
	"github.com/yoockh/seopilot/internal/models"
	pgrepo "github.com/yoockh/seopilot/internal/repositories/postgres"
	"github.com/yoockh/seopilot/internal/seo"
	"github.com/yoockh/seopilot/internal/utils"
)

// ProductTask is one unit of work: a product of a job.
type ProductTask struct {
	JobID     string
	ProductID string
	// overrides the job's configuration when set
	ConfigID string
}

type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

const EventDraftCreated = "draft_created"

type ProgressEvent struct {
	Type      string             `json:"type"`
	JobID     string             `json:"job_id"`
	ProductID string             `json:"product_id"`
	DraftID   string             `json:"draft_id"`
	Status    models.DraftStatus `json:"status"`
	Processed int                `json:"processed"`
	Total     int                `json:"total"`
}

type ProgressPublisher interface {
	Publish(ctx context.Context, ev ProgressEvent) error
}

type ProductProcessor interface {
	Run(ctx context.Context, task ProductTask) error
}

type productProcessor struct {
	jobs      pgrepo.JobRepository
	products  pgrepo.ProductRepository
	generator WriterAuditor
	progress  ProgressPublisher
	retry     RetryPolicy
	log       logrus.FieldLogger
}

func NewProductProcessor(jobs pgrepo.JobRepository, products pgrepo.ProductRepository, generator WriterAuditor, progress ProgressPublisher, retry RetryPolicy, log logrus.FieldLogger) ProductProcessor {
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 3
	}
	if retry.Backoff < 0 {
		retry.Backoff = 0
	}
	return &productProcessor{
		jobs:      jobs,
		products:  products,
		generator: generator,
		progress:  progress,
		retry:     retry,
		log:       log.WithField("component", "product_processor"),
	}
}

// Run produces exactly one draft for the task: the generated one, or a
// REJECTED placeholder once every attempt has failed.
func (p *productProcessor) Run(ctx context.Context, task ProductTask) error {
	const op = "ProductProcessor.Run"

	log := p.log.WithFields(logrus.Fields{"job_id": task.JobID, "product_id": task.ProductID})

	job, err := p.jobs.GetByID(ctx, task.JobID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to load job", err)
	}

	product, err := p.products.GetByID(ctx, task.ProductID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			err = utils.E(utils.CodeNotFound, op, "product not found", err)
			p.fail(ctx, log, job, &models.Product{ID: task.ProductID}, err, 1)
			return err
		}
		return utils.E(utils.CodeInternal, op, "failed to load product", err)
	}
	log = log.WithField("sku", product.SKU)

	opts := GenerateOptions{JobID: job.ID}
	switch {
	case task.ConfigID != "":
		opts.ConfigID = task.ConfigID
	case job.LlmConfigID != nil:
		opts.ConfigID = *job.LlmConfigID
	}

	attempts := 0
	result, err := backoff.Retry(ctx, func() (*seo.Result, error) {
		attempts++
		r, err := p.generator.Generate(ctx, product, opts)
		if err != nil {
			log.WithError(err).WithField("attempt", attempts).Error("failed to process SEO for product")
			return nil, err
		}
		return r, nil
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(p.retry.Backoff)),
		backoff.WithMaxTries(uint(p.retry.MaxAttempts)),
	)
	if err != nil {
		if ctx.Err() != nil {
			// no draft: the task stays pending and is redelivered
			return utils.E(utils.CodeUnavailable, op, "interrupted", ctx.Err())
		}
		p.fail(ctx, log, job, product, err, attempts)
		return err
	}

	status := models.DraftPendingReview
	if result.Audit.Approved() {
		status = models.DraftApproved
	}
	flags := result.Audit.PotentialHallucinations
	if flags == nil {
		flags = []seo.AuditFlag{}
	}

	draft := &models.SeoDraft{
		SeoJobID:  job.ID,
		ProductID: product.ID,
		OriginalData: mustJSON(map[string]any{
			"name":        product.Name,
			"description": product.Description,
			"sku":         product.SKU,
			"attributes":  product.Attributes,
		}),
		GeneratedDraft:  mustJSON(result.GeneratedDraft),
		AuditFlags:      mustJSON(flags),
		ConfidenceScore: result.Audit.ConfidenceScore,
		Status:          status,
	}
	updated, err := p.jobs.AddDraft(ctx, draft)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to save draft", err)
	}

	log.WithField("status", status).Info("processed SEO for product")
	p.created(ctx, log, updated, draft)
	return nil
}

// fail records the placeholder draft. A write failure is logged; the
// caller still returns the generation error.
func (p *productProcessor) fail(ctx context.Context, log logrus.FieldLogger, job *models.SeoJob, product *models.Product, cause error, attempts int) {
	draft := &models.SeoDraft{
		SeoJobID:  job.ID,
		ProductID: product.ID,
		OriginalData: mustJSON(map[string]any{
			"name": product.Name,
			"sku":  product.SKU,
		}),
		GeneratedDraft: mustJSON(seo.GeneratedContent{
			MetaTitle:       "FAILED - " + cause.Error(),
			MetaDescription: fmt.Sprintf("Generation failed after %d attempts", attempts),
			MetaKeywords:    "error, failed",
		}),
		AuditFlags: mustJSON([]seo.AuditFlag{{
			Type:     "processing_error",
			Message:  cause.Error(),
			Attempts: attempts,
		}}),
		ConfidenceScore: 0,
		Status:          models.DraftRejected,
	}

	updated, err := p.jobs.AddDraft(ctx, draft)
	if err != nil {
		log.WithError(err).WithField("original_error", cause.Error()).Error("failed to create failed draft record")
		return
	}
	log.WithField("attempts", attempts).Warn("created failed draft record")
	p.created(ctx, log, updated, draft)
}

func (p *productProcessor) created(ctx context.Context, log logrus.FieldLogger, job *models.SeoJob, draft *models.SeoDraft) {
	metrics.DraftCreated(string(draft.Status))
	if p.progress == nil {
		return
	}
	ev := ProgressEvent{
		Type:      EventDraftCreated,
		JobID:     job.ID,
		ProductID: draft.ProductID,
		DraftID:   draft.ID,
		Status:    draft.Status,
		Processed: job.ProcessedProducts,
		Total:     job.TotalProducts,
	}
	if err := p.progress.Publish(ctx, ev); err != nil {
		log.WithError(err).Warn("failed to publish job progress")
	}
}

func mustJSON(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(b)
}
