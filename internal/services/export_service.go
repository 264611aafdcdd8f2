package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/seopilot/internal/models"
	"github.com/yoockh/seopilot/internal/storage"
	"github.com/yoockh/seopilot/internal/utils"
)

const exportLinkTTL = 15 * time.Minute

// ExportStore is the object store exports are written to.
type ExportStore interface {
	storage.Uploader
	storage.Lister
}

type ExportResult struct {
	Path string `json:"path"`
	// empty when the store cannot sign
	URL         string    `json:"url,omitempty"`
	Drafts      int       `json:"drafts"`
	ExportedAt  time.Time `json:"exported_at"`
	ContentType string    `json:"content_type"`
}

type ExportService interface {
	ExportJob(ctx context.Context, jobID string) (*ExportResult, error)
	ListExports(ctx context.Context, jobID string) ([]storage.Object, error)
}

type exportService struct {
	jobs  JobService
	store ExportStore // nil = exports disabled
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewExportService(jobs JobService, store ExportStore, log logrus.FieldLogger) ExportService {
	return &exportService{jobs: jobs, store: store, log: log.WithField("component", "export"), now: time.Now}
}

func exportPrefix(jobID string) string { return "exports/" + jobID + "/" }

func (s *exportService) ExportJob(ctx context.Context, jobID string) (*ExportResult, error) {
	const op = "ExportService.ExportJob"

	if s.store == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "exports are not configured", nil)
	}
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	drafts, err := s.jobs.ListDrafts(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if drafts == nil {
		drafts = []models.SeoDraft{}
	}

	now := s.now().UTC()
	body, err := json.MarshalIndent(struct {
		Job        *models.SeoJob    `json:"job"`
		Drafts     []models.SeoDraft `json:"drafts"`
		ExportedAt time.Time         `json:"exported_at"`
	}{job, drafts, now}, "", "  ")
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to encode export", err)
	}

	name := fmt.Sprintf("%s%s.json", exportPrefix(jobID), now.Format("20060102T150405Z"))
	path, err := s.store.Upload(ctx, name, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to upload export", err)
	}

	res := &ExportResult{Path: path, Drafts: len(drafts), ExportedAt: now, ContentType: "application/json"}
	if signer, ok := s.store.(storage.Signer); ok {
		if u, err := signer.SignedGetURL(ctx, name, exportLinkTTL); err == nil {
			res.URL = u
		} else {
			s.log.WithError(err).Debug("export link not signed")
		}
	}
	s.log.WithFields(logrus.Fields{"job_id": jobID, "path": path, "drafts": len(drafts)}).Info("job exported")
	return res, nil
}

func (s *exportService) ListExports(ctx context.Context, jobID string) ([]storage.Object, error) {
	const op = "ExportService.ListExports"

	if s.store == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "exports are not configured", nil)
	}
	if _, err := s.jobs.Get(ctx, jobID); err != nil {
		return nil, err
	}
	objs, err := s.store.List(ctx, exportPrefix(jobID))
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to list exports", err)
	}
	if objs == nil {
		objs = []storage.Object{}
	}
	return objs, nil
}
