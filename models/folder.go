package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	FolderTypeRun      = "run"
	FolderTypePlatform = "platform"
	FolderTypeService  = "service"
	FolderTypeJob      = "job"
)

// Folder represents the folders table: one node of the output container
// hierarchy built for a run (run → platform → service → job).
type Folder struct {
	ID    uint `json:"id" gorm:"primaryKey;autoIncrement"`
	RunID uint `json:"run_id" gorm:"column:run_id;not null;index"`

	Name       string `json:"name" gorm:"column:name;type:varchar(255);not null"`
	FolderType string `json:"folder_type" gorm:"column:folder_type;type:varchar(20);not null"`
	Category   string `json:"category" gorm:"column:category;type:varchar(64)"`

	PlatformCode string `json:"platform_code" gorm:"column:platform_code;type:varchar(32)"`
	ServiceCode  string `json:"service_code" gorm:"column:service_code;type:varchar(32)"`

	ParentFolderID *uint `json:"parent_folder_id" gorm:"column:parent_folder_id;index"`

	// Leaf folders link back to their job; this is a lookup, not ownership,
	// so folder creation can fail independently of job dispatch.
	JobID *uint `json:"job_id" gorm:"column:job_id;index"`

	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"column:deleted_at;index"`
}

func (Folder) TableName() string { return "folders" }
