package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ScrapeStatusPending    = "pending"
	ScrapeStatusProcessing = "processing"
	ScrapeStatusCompleted  = "completed"
	ScrapeStatusFailed     = "failed"
	ScrapeStatusCancelled  = "cancelled"
)

// IsTerminalStatus reports whether a run or job status admits no further
// webhook-driven transitions.
func IsTerminalStatus(status string) bool {
	switch status {
	case ScrapeStatusCompleted, ScrapeStatusFailed, ScrapeStatusCancelled:
		return true
	}
	return false
}

// ScrapeRun represents the scrape_runs table: one scheduled unit of scraping
// work spanning one or more sources.
type ScrapeRun struct {
	ID        uint `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID uint `json:"project_id" gorm:"column:project_id;not null;index"`

	SourceScope string `json:"source_scope" gorm:"column:source_scope;type:varchar(64);not null;default:'all'"`

	PostLimit         int        `json:"post_limit" gorm:"column:post_limit;not null;default:0"`
	DateFrom          *time.Time `json:"date_from" gorm:"column:date_from"`
	DateTo            *time.Time `json:"date_to" gorm:"column:date_to"`
	FolderPattern     string     `json:"folder_pattern" gorm:"column:folder_pattern;type:varchar(255)"`
	AutoCreateFolders bool       `json:"auto_create_folders" gorm:"column:auto_create_folders;not null;default:true"`

	Status string `json:"status" gorm:"column:status;type:varchar(20);not null;default:'pending'"`

	TotalJobs      int `json:"total_jobs" gorm:"column:total_jobs;not null;default:0"`
	CompletedJobs  int `json:"completed_jobs" gorm:"column:completed_jobs;not null;default:0"`
	SuccessfulJobs int `json:"successful_jobs" gorm:"column:successful_jobs;not null;default:0"`
	FailedJobs     int `json:"failed_jobs" gorm:"column:failed_jobs;not null;default:0"`

	CreatedAt   time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	StartedAt   *time.Time     `json:"started_at" gorm:"column:started_at"`
	CompletedAt *time.Time     `json:"completed_at" gorm:"column:completed_at"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at" gorm:"column:deleted_at;index"`

	// Relations
	Jobs []ScrapeJob `json:"jobs,omitempty" gorm:"foreignKey:RunID"`
}

func (ScrapeRun) TableName() string { return "scrape_runs" }
