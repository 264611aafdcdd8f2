package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/yoockh/seopilot/internal/models"
	pgrepo "github.com/yoockh/seopilot/internal/repositories/postgres"
	"github.com/yoockh/seopilot/internal/seo"
	"github.com/yoockh/seopilot/internal/utils"
)

type ConfigSource string

const (
	SourceStored  ConfigSource = "stored"
	SourceDefault ConfigSource = "default"
)

// ResolvedConfig is what one pipeline stage runs with: either a stored
// configuration or the built-in default prompts with gateway defaults.
type ResolvedConfig struct {
	PromptType         models.PromptType        `json:"prompt_type"`
	Source             ConfigSource             `json:"source"`
	SystemPrompt       string                   `json:"system_prompt"`
	UserPromptTemplate string                   `json:"user_prompt_template"`
	Stored             *models.LlmConfiguration `json:"configuration,omitempty"`
}

// IsDefault reports whether no stored configuration applies.
func (r *ResolvedConfig) IsDefault() bool { return r.Stored == nil }

type ConfigProvider interface {
	// Resolve returns the configuration for a stage. explicitID wins when it
	// names a configuration of the same prompt type; otherwise the active
	// configuration for storeID is used, then the built-in default.
	Resolve(ctx context.Context, t models.PromptType, storeID *string, explicitID string) (*ResolvedConfig, error)
	RecordUsage(ctx context.Context, rc *ResolvedConfig) error
	SeedStock(ctx context.Context, provider, model string) (int, error)
}

type configProvider struct {
	configs pgrepo.LlmConfigRepository
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewConfigProvider(configs pgrepo.LlmConfigRepository, log logrus.FieldLogger) ConfigProvider {
	return &configProvider{
		configs: configs,
		log:     log.WithField("component", "config_provider"),
		now:     time.Now,
	}
}

func (p *configProvider) Resolve(ctx context.Context, t models.PromptType, storeID *string, explicitID string) (*ResolvedConfig, error) {
	const op = "ConfigProvider.Resolve"

	if explicitID != "" {
		c, err := p.configs.GetByID(ctx, explicitID)
		switch {
		case err == nil && c.PromptType == t:
			return p.stored(t, c)
		case err == nil:
			// belongs to the other stage
		case errors.Is(err, utils.ErrNotFound):
			p.log.WithFields(logrus.Fields{"config_id": explicitID, "prompt_type": t}).
				Warn("requested llm configuration not found, using active configuration")
		default:
			return nil, utils.E(utils.CodeInternal, op, "failed to load llm configuration", err)
		}
	}

	c, err := p.configs.GetActive(ctx, t, storeID)
	if err == nil {
		return p.stored(t, c)
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to load active llm configuration", err)
	}

	def, ok := seo.DefaultPrompts(t)
	if !ok {
		return nil, utils.E(utils.CodeConfigurationMissing, op, "no configuration for prompt type "+string(t), utils.ErrConfigurationMissing)
	}
	return &ResolvedConfig{
		PromptType:         t,
		Source:             SourceDefault,
		SystemPrompt:       def.SystemPrompt,
		UserPromptTemplate: def.UserPromptTemplate,
	}, nil
}

// stored fills blank prompt fields from the defaults.
func (p *configProvider) stored(t models.PromptType, c *models.LlmConfiguration) (*ResolvedConfig, error) {
	rc := &ResolvedConfig{
		PromptType:         t,
		Source:             SourceStored,
		SystemPrompt:       c.SystemPrompt,
		UserPromptTemplate: c.UserPromptTemplate,
		Stored:             c,
	}
	if rc.SystemPrompt == "" || rc.UserPromptTemplate == "" {
		def, ok := seo.DefaultPrompts(t)
		if !ok {
			return nil, utils.E(utils.CodeConfigurationMissing, "ConfigProvider.Resolve", "no default prompts for "+string(t), utils.ErrConfigurationMissing)
		}
		if rc.SystemPrompt == "" {
			rc.SystemPrompt = def.SystemPrompt
		}
		if rc.UserPromptTemplate == "" {
			rc.UserPromptTemplate = def.UserPromptTemplate
		}
	}
	return rc, nil
}

func (p *configProvider) RecordUsage(ctx context.Context, rc *ResolvedConfig) error {
	if rc == nil || rc.IsDefault() {
		return nil
	}
	return p.configs.RecordUsage(ctx, rc.Stored.ID, p.now().UTC())
}

// SeedStock installs the stock writer and auditor configurations for any
// prompt type that has none yet. It returns how many were created.
func (p *configProvider) SeedStock(ctx context.Context, provider, model string) (int, error) {
	const op = "ConfigProvider.SeedStock"

	stock := []struct {
		t           models.PromptType
		name        string
		description string
		temperature float64
		maxTokens   int
		schema      string
	}{
		{
			models.PromptTypeWriter, "Default SEO Writer",
			"Generates SEO metadata (title, description, keywords) from product data with conservative settings.",
			0.7, 500, writerSchema,
		},
		{
			models.PromptTypeAuditor, "Default SEO Auditor",
			"Validates generated SEO content against the source product data to detect unsupported claims.",
			0.3, 800, auditorSchema,
		},
	}

	created := 0
	for _, s := range stock {
		n, err := p.configs.CountByType(ctx, s.t)
		if err != nil {
			return created, utils.E(utils.CodeInternal, op, "failed to count configurations", err)
		}
		if n > 0 {
			continue
		}
		prompts, _ := seo.StockPrompts(s.t)
		c := &models.LlmConfiguration{
			Name:               s.name,
			Description:        s.description,
			PromptType:         s.t,
			IsActive:           true,
			Version:            1,
			Provider:           provider,
			Model:              model,
			Temperature:        s.temperature,
			MaxTokens:          s.maxTokens,
			SystemPrompt:       prompts.SystemPrompt,
			UserPromptTemplate: prompts.UserPromptTemplate,
			ResponseSchema:     datatypes.JSON(s.schema),
		}
		if err := p.configs.Create(ctx, c); err != nil {
			return created, utils.E(utils.CodeInternal, op, "failed to create configuration", err)
		}
		created++
		p.log.WithFields(logrus.Fields{"prompt_type": s.t, "config_id": c.ID}).Info("seeded llm configuration")
	}
	return created, nil
}

const writerSchema = `{"type":"object","properties":{"meta_title":{"type":"string","description":"SEO-optimized page title (50-60 characters)"},"meta_description":{"type":"string","description":"SEO meta description (150-160 characters)"},"meta_keywords":{"type":"string","description":"Comma-separated keywords (5-10 keywords)"}},"required":["meta_title","meta_description","meta_keywords"]}`

const auditorSchema = `{"type":"object","properties":{"is_safe":{"type":"boolean","description":"True if content has no hallucinations or unsupported claims"},"confidence_score":{"type":"number","description":"Confidence score between 0.0 and 1.0"},"potential_hallucinations":{"type":"array","items":{"type":"object"}}},"required":["is_safe","confidence_score","potential_hallucinations"]}`
