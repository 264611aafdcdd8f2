package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PromptType string

const (
	PromptTypeWriter  PromptType = "writer"
	PromptTypeAuditor PromptType = "auditor"
)

// LlmConfiguration is an operator-managed prompt and sampling bundle. At most
// one configuration is active per (prompt_type, store) pair.
type LlmConfiguration struct {
	ID          string     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"column:name;type:text;uniqueIndex" json:"name"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	PromptType  PromptType `gorm:"column:prompt_type;type:text;index:idx_llm_cfg_type_active" json:"prompt_type"`
	IsActive    bool       `gorm:"column:is_active;index:idx_llm_cfg_type_active" json:"is_active"`
	Version     int        `gorm:"column:version;default:1" json:"version"`

	Provider string `gorm:"column:provider;type:text" json:"provider"` // gemini|vertex|openai|anthropic
	Model    string `gorm:"column:model;type:text" json:"model"`

	Temperature      float64  `gorm:"column:temperature" json:"temperature"`
	MaxTokens        int      `gorm:"column:max_tokens" json:"max_tokens"`
	TopP             *float64 `gorm:"column:top_p" json:"top_p,omitempty"`
	FrequencyPenalty *float64 `gorm:"column:frequency_penalty" json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `gorm:"column:presence_penalty" json:"presence_penalty,omitempty"`

	SystemPrompt       string         `gorm:"column:system_prompt;type:text" json:"system_prompt"`
	UserPromptTemplate string         `gorm:"column:user_prompt_template;type:text" json:"user_prompt_template"`
	ResponseSchema     datatypes.JSON `gorm:"column:response_schema;type:jsonb" json:"response_schema,omitempty"`

	// nil = global
	StoreID *string `gorm:"column:store_id;type:uuid;index" json:"store_id,omitempty"`

	UsageCount int64      `gorm:"column:usage_count;default:0" json:"usage_count"`
	LastUsedAt *time.Time `gorm:"column:last_used_at;type:timestamptz" json:"last_used_at,omitempty"`

	CreatedAt time.Time      `gorm:"column:created_at;type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;type:timestamptz;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (LlmConfiguration) TableName() string { return "llm_configurations" }
