package services

import (
	"context"
	"errors"

	"github.com/yoockh/seopilot/internal/models"
	pgrepo "github.com/yoockh/seopilot/internal/repositories/postgres"
	"github.com/yoockh/seopilot/internal/seo"
	"github.com/yoockh/seopilot/internal/utils"
)

type PreviewResult struct {
	seo.Result
	Status models.DraftStatus `json:"status"`
}

// PreviewService runs the pipeline for one product without creating a
// draft. Call logs are still written by the gateway.
type PreviewService interface {
	Preview(ctx context.Context, productID, configID string) (*PreviewResult, error)
}

type previewService struct {
	products  pgrepo.ProductRepository
	generator WriterAuditor
}

func NewPreviewService(products pgrepo.ProductRepository, generator WriterAuditor) PreviewService {
	return &previewService{products: products, generator: generator}
}

func (s *previewService) Preview(ctx context.Context, productID, configID string) (*PreviewResult, error) {
	const op = "PreviewService.Preview"

	if productID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "product_id is required", nil)
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "product not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get product", err)
	}

	res, err := s.generator.Generate(ctx, p, GenerateOptions{ConfigID: configID})
	if err != nil {
		return nil, err
	}
	status := models.DraftPendingReview
	if res.Audit.Approved() {
		status = models.DraftApproved
	}
	return &PreviewResult{Result: *res, Status: status}, nil
}
