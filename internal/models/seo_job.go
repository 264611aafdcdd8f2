package models

import (
	"time"

	"gorm.io/datatypes"
)

type JobStatus string

const (
	JobPending    JobStatus = "PENDING"
	JobProcessing JobStatus = "PROCESSING"
	JobCompleted  JobStatus = "COMPLETED"
)

type SeoJob struct {
	ID          string                      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	StoreID     *string                     `gorm:"column:store_id;type:uuid;index" json:"store_id,omitempty"`
	StoreView   string                      `gorm:"column:store_view;type:text" json:"store_view"`
	ProductIDs  datatypes.JSONSlice[string] `gorm:"column:product_ids;type:jsonb" json:"product_ids"`
	LlmConfigID *string                     `gorm:"column:llm_config_id;type:uuid" json:"llm_config_id,omitempty"`

	Status            JobStatus `gorm:"column:status;type:text;default:'PENDING'" json:"status"`
	TotalProducts     int       `gorm:"column:total_products" json:"total_products"`
	ProcessedProducts int       `gorm:"column:processed_products;default:0" json:"processed_products"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (SeoJob) TableName() string { return "seo_jobs" }
