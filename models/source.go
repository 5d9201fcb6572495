package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PlatformInstagram = "instagram"
	PlatformTikTok    = "tiktok"
	PlatformFacebook  = "facebook"
	PlatformYouTube   = "youtube"
	PlatformTwitter   = "twitter"
)

const (
	ServicePosts    = "posts"
	ServiceProfile  = "profile"
	ServiceComments = "comments"
)

// Source represents the sources table: one trackable social-media account.
// A source may expose several platform links (e.g. the same brand on
// Instagram and TikTok); each link is one SourceLink row.
type Source struct {
	ID        uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID uint   `json:"project_id" gorm:"column:project_id;not null;index"`
	Name      string `json:"name" gorm:"column:name;type:varchar(255);not null"`
	Category  string `json:"category" gorm:"column:category;type:varchar(64)"`

	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"column:deleted_at;index"`

	// Relations
	Links []SourceLink `json:"links,omitempty" gorm:"foreignKey:SourceID"`
}

func (Source) TableName() string { return "sources" }

// SourceLink represents the source_links table: one (platform, service, url)
// combination exposed by a source.
type SourceLink struct {
	ID       uint `json:"id" gorm:"primaryKey;autoIncrement"`
	SourceID uint `json:"source_id" gorm:"column:source_id;not null;index"`

	Platform string `json:"platform" gorm:"column:platform;type:varchar(32);not null"`
	Service  string `json:"service" gorm:"column:service;type:varchar(32);not null"`
	URL      string `json:"url" gorm:"column:url;type:varchar(512);not null"`
	IsActive bool   `json:"is_active" gorm:"column:is_active;not null;default:true"`

	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"column:deleted_at;index"`
}

func (SourceLink) TableName() string { return "source_links" }
