package models

import "time"

type SyncStatus string

const (
	SyncIdle      SyncStatus = "idle"
	SyncSyncing   SyncStatus = "syncing"
	SyncCompleted SyncStatus = "completed"
	SyncFailed    SyncStatus = "failed"
)

type MagentoStore struct {
	ID   string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name string `gorm:"column:name;type:text" json:"name"`
	URL  string `gorm:"column:url;type:text" json:"url"`

	// sealed with utils.SealString
	APIToken string `gorm:"column:api_token;type:text" json:"-"`

	SyncStatus          SyncStatus `gorm:"column:sync_status;type:text;default:'idle'" json:"sync_status"`
	TotalProducts       *int       `gorm:"column:total_products" json:"total_products,omitempty"`
	ProductsFetched     int        `gorm:"column:products_fetched;default:0" json:"products_fetched"`
	LastSyncStartedAt   *time.Time `gorm:"column:last_sync_started_at;type:timestamptz" json:"last_sync_started_at,omitempty"`
	LastSyncCompletedAt *time.Time `gorm:"column:last_sync_completed_at;type:timestamptz" json:"last_sync_completed_at,omitempty"`
	SyncError           string     `gorm:"column:sync_error;type:text" json:"sync_error,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (MagentoStore) TableName() string { return "magento_stores" }
