package models

import (
	"time"
)

// AppConfig is a key/value row for client-visible configuration, e.g. the
// signup_carousel image list and payment_config toggles. Value holds JSON.
type AppConfig struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"size:100;uniqueIndex;not null"`
	Value     string    `json:"value" gorm:"type:jsonb;not null;default:'{}'"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the AppConfig model
func (AppConfig) TableName() string {
	return "app_config"
}
