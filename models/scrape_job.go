package models

import (
	"time"

	"gorm.io/gorm"
)

// ScrapeJob represents the scrape_jobs table: one scrape request for exactly
// one (source, platform, service) triple.
type ScrapeJob struct {
	ID       uint `json:"id" gorm:"primaryKey;autoIncrement"`
	RunID    uint `json:"run_id" gorm:"column:run_id;not null;index"`
	SourceID uint `json:"source_id" gorm:"column:source_id;not null;index"`

	Platform  string `json:"platform" gorm:"column:platform;type:varchar(32);not null"`
	Service   string `json:"service" gorm:"column:service;type:varchar(32);not null"`
	TargetURL string `json:"target_url" gorm:"column:target_url;type:varchar(512);not null"`

	ProviderDatasetID *string `json:"provider_dataset_id" gorm:"column:provider_dataset_id;type:varchar(128)"`
	ProviderRequestID *string `json:"provider_request_id" gorm:"column:provider_request_id;type:varchar(128);uniqueIndex"`
	CallbackToken     string  `json:"-" gorm:"column:callback_token;type:varchar(64);not null"`

	Status       string  `json:"status" gorm:"column:status;type:varchar(20);not null;default:'pending'"`
	ErrorMessage *string `json:"error_message" gorm:"column:error_message;type:text"`
	RetryCount   int     `json:"retry_count" gorm:"column:retry_count;not null;default:0"`

	CreatedAt    time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	DispatchedAt *time.Time     `json:"dispatched_at" gorm:"column:dispatched_at"`
	CompletedAt  *time.Time     `json:"completed_at" gorm:"column:completed_at"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at" gorm:"column:deleted_at;index"`
}

func (ScrapeJob) TableName() string { return "scrape_jobs" }
