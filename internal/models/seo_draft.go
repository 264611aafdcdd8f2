package models

import (
	"time"

	"gorm.io/datatypes"
)

type DraftStatus string

const (
	DraftPendingReview DraftStatus = "PENDING_REVIEW"
	DraftApproved      DraftStatus = "APPROVED"
	DraftRejected      DraftStatus = "REJECTED"
)

type SeoDraft struct {
	ID        string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SeoJobID  string `gorm:"column:seo_job_id;type:uuid;index" json:"seo_job_id"`
	ProductID string `gorm:"column:product_id;type:uuid;index" json:"product_id"`

	// snapshot of the product at generation time
	OriginalData   datatypes.JSON `gorm:"column:original_data;type:jsonb" json:"original_data"`
	GeneratedDraft datatypes.JSON `gorm:"column:generated_draft;type:jsonb" json:"generated_draft"`
	AuditFlags     datatypes.JSON `gorm:"column:audit_flags;type:jsonb" json:"audit_flags"`

	ConfidenceScore float64     `gorm:"column:confidence_score" json:"confidence_score"`
	Status          DraftStatus `gorm:"column:status;type:text;index;default:'PENDING_REVIEW'" json:"status"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (SeoDraft) TableName() string { return "seo_drafts" }
