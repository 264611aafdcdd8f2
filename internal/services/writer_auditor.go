package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/seopilot/internal/models"
	"github.com/yoockh/seopilot/internal/providers/llm"
	"github.com/yoockh/seopilot/internal/seo"
)

// LLMCaller is the gateway as seen by the pipeline.
type LLMCaller interface {
	Call(ctx context.Context, in llm.CallInput) (string, error)
}

type GenerateOptions struct {
	// ConfigID pins the configuration of the stage with the same prompt type.
	ConfigID string
	JobID    string
}

type WriterAuditor interface {
	Generate(ctx context.Context, p *models.Product, opts GenerateOptions) (*seo.Result, error)
}

type writerAuditor struct {
	configs   ConfigProvider
	llm       LLMCaller
	extractor *seo.ComponentExtractor
	parser    *seo.Parser
	renderer  seo.Renderer
	log       logrus.FieldLogger
}

func NewWriterAuditor(configs ConfigProvider, caller LLMCaller, catalog seo.CatalogLookup, log logrus.FieldLogger) WriterAuditor {
	log = log.WithField("component", "writer_auditor")
	return &writerAuditor{
		configs:   configs,
		llm:       caller,
		extractor: &seo.ComponentExtractor{Catalog: catalog, Log: log},
		parser:    seo.NewParser(log),
		log:       log,
	}
}

// Generate runs the writer and then the auditor on its output. Gateway
// errors from either stage are returned as-is.
func (w *writerAuditor) Generate(ctx context.Context, p *models.Product, opts GenerateOptions) (*seo.Result, error) {
	payload := w.productPayload(ctx, p)
	callCtx := llm.CallContext{ProductID: p.ID, JobID: opts.JobID}

	draft, err := w.write(ctx, p, payload, opts.ConfigID, callCtx)
	if err != nil {
		return nil, err
	}
	audit, err := w.audit(ctx, p, payload, draft, opts.ConfigID, callCtx)
	if err != nil {
		return nil, err
	}
	return &seo.Result{GeneratedDraft: draft, Audit: audit}, nil
}

func (w *writerAuditor) productPayload(ctx context.Context, p *models.Product) seo.ProductPayload {
	payload := seo.ProductPayload{
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Attributes:  seo.FilterAttributes(p.AttributeList()),
	}
	if c := w.extractor.Extract(ctx, p); !c.IsEmpty() {
		payload.Components = &c
	}
	return payload
}

func (w *writerAuditor) write(ctx context.Context, p *models.Product, payload seo.ProductPayload, configID string, cc llm.CallContext) (seo.GeneratedContent, error) {
	rc, err := w.configs.Resolve(ctx, models.PromptTypeWriter, p.StoreID, configID)
	if err != nil {
		return seo.GeneratedContent{}, err
	}
	w.recordUsage(ctx, rc)

	vars := seo.Vars{}.With("product_json", payload)
	text, err := w.llm.Call(ctx, llm.CallInput{
		SystemPrompt: rc.SystemPrompt,
		UserPrompt:   w.renderer.Render(rc.UserPromptTemplate, vars),
		Config:       rc.Stored,
		AgentType:    models.AgentWriter,
		ProductData:  payload,
		Context:      cc,
	})
	if err != nil {
		return seo.GeneratedContent{}, err
	}
	return w.parser.ParseWriter(text), nil
}

func (w *writerAuditor) audit(ctx context.Context, p *models.Product, payload seo.ProductPayload, draft seo.GeneratedContent, configID string, cc llm.CallContext) (seo.AuditResult, error) {
	rc, err := w.configs.Resolve(ctx, models.PromptTypeAuditor, p.StoreID, configID)
	if err != nil {
		return seo.AuditResult{}, err
	}
	w.recordUsage(ctx, rc)

	vars := seo.Vars{}.
		With("product_json", payload).
		With("product", payload).
		With("generated_content", draft).
		With("audit_json", seo.AuditPayload{Product: payload, GeneratedContent: draft})
	text, err := w.llm.Call(ctx, llm.CallInput{
		SystemPrompt: rc.SystemPrompt,
		UserPrompt:   w.renderer.Render(rc.UserPromptTemplate, vars),
		Config:       rc.Stored,
		AgentType:    models.AgentAuditor,
		ProductData:  payload,
		Context:      cc,
	})
	if err != nil {
		return seo.AuditResult{}, err
	}
	return w.parser.ParseAuditor(text), nil
}

// recordUsage counts the attempt before the call so a failing call is
// still counted against its configuration.
func (w *writerAuditor) recordUsage(ctx context.Context, rc *ResolvedConfig) {
	if err := w.configs.RecordUsage(ctx, rc); err != nil {
		w.log.WithError(err).WithField("config_id", rc.Stored.ID).Warn("failed to record llm configuration usage")
	}
}
