package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ProviderApify      = "apify"
	ProviderBrightData = "brightdata"
)

// ProviderConfig represents the provider_configs table: which third-party
// scraping provider handles a given (platform, service) pair, and with what
// actor or dataset.
type ProviderConfig struct {
	ID uint `json:"id" gorm:"primaryKey;autoIncrement"`

	Provider string `json:"provider" gorm:"column:provider;type:varchar(20);not null"`
	Platform string `json:"platform" gorm:"column:platform;type:varchar(32);not null;index:idx_provider_configs_target"`
	Service  string `json:"service" gorm:"column:service;type:varchar(32);not null;index:idx_provider_configs_target"`

	ActorID   string `json:"actor_id" gorm:"column:actor_id;type:varchar(128)"`
	DatasetID string `json:"dataset_id" gorm:"column:dataset_id;type:varchar(128)"`
	BaseURL   string `json:"base_url" gorm:"column:base_url;type:varchar(255)"`
	IsActive  bool   `json:"is_active" gorm:"column:is_active;not null;default:true"`

	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"column:deleted_at;index"`
}

func (ProviderConfig) TableName() string { return "provider_configs" }
