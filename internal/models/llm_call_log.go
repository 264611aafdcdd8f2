package models

import (
	"time"

	"gorm.io/datatypes"
)

type AgentType string

const (
	AgentWriter  AgentType = "writer"
	AgentAuditor AgentType = "auditor"
)

// LlmCallLog is the audit row for one attempted LLM call. Rows are only ever
// inserted.
type LlmCallLog struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey" json:"id" bson:"_id"`
	AgentType AgentType `gorm:"column:agent_type;type:text;index" json:"agent_type" bson:"agent_type"`

	ProductID          *string `gorm:"column:product_id;type:uuid;index" json:"product_id,omitempty" bson:"product_id,omitempty"`
	SeoDraftID         *string `gorm:"column:seo_draft_id;type:uuid;index" json:"seo_draft_id,omitempty" bson:"seo_draft_id,omitempty"`
	SeoJobID           *string `gorm:"column:seo_job_id;type:uuid;index" json:"seo_job_id,omitempty" bson:"seo_job_id,omitempty"`
	LlmConfigurationID *string `gorm:"column:llm_configuration_id;type:uuid;index" json:"llm_configuration_id,omitempty" bson:"llm_configuration_id,omitempty"`

	Provider string `gorm:"column:provider;type:text" json:"provider" bson:"provider"`
	Model    string `gorm:"column:model;type:text" json:"model" bson:"model"`
	APIURL   string `gorm:"column:api_url;type:text" json:"api_url" bson:"api_url"`

	RequestHeaders datatypes.JSON `gorm:"column:request_headers;type:jsonb" json:"request_headers" bson:"request_headers,omitempty"`
	RequestBody    string         `gorm:"column:request_body;type:text" json:"request_body" bson:"request_body"`
	ProductData    datatypes.JSON `gorm:"column:product_data;type:jsonb" json:"product_data" bson:"product_data,omitempty"`
	SystemPrompt   string         `gorm:"column:system_prompt;type:text" json:"system_prompt" bson:"system_prompt"`
	UserPrompt     string         `gorm:"column:user_prompt;type:text" json:"user_prompt" bson:"user_prompt"`

	ResponseStatus  *int           `gorm:"column:response_status" json:"response_status,omitempty" bson:"response_status,omitempty"`
	ResponseHeaders datatypes.JSON `gorm:"column:response_headers;type:jsonb" json:"response_headers,omitempty" bson:"response_headers,omitempty"`
	ResponseBody    string         `gorm:"column:response_body;type:text" json:"response_body,omitempty" bson:"response_body,omitempty"`
	ParsedOutput    datatypes.JSON `gorm:"column:parsed_output;type:jsonb" json:"parsed_output,omitempty" bson:"parsed_output,omitempty"`
	ErrorMessage    string         `gorm:"column:error_message;type:text" json:"error_message,omitempty" bson:"error_message,omitempty"`

	ExecutionTimeMS  int64 `gorm:"column:execution_time_ms" json:"execution_time_ms" bson:"execution_time_ms"`
	PromptTokens     *int  `gorm:"column:prompt_tokens" json:"prompt_tokens,omitempty" bson:"prompt_tokens,omitempty"`
	CompletionTokens *int  `gorm:"column:completion_tokens" json:"completion_tokens,omitempty" bson:"completion_tokens,omitempty"`
	TotalTokens      *int  `gorm:"column:total_tokens" json:"total_tokens,omitempty" bson:"total_tokens,omitempty"`

	Success   bool      `gorm:"column:success;index" json:"success" bson:"success"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index" json:"created_at" bson:"created_at"`
}

func (LlmCallLog) TableName() string { return "llm_call_logs" }

// CallLogFilter narrows call-log listings. Zero fields are ignored.
type CallLogFilter struct {
	ProductID string
	JobID     string
	AgentType AgentType
	Limit     int
}
