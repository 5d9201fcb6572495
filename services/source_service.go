package services

import (
	"context"

	"social-tracker-api/config"
	"social-tracker-api/models"

	"gorm.io/gorm"
)

// SourceTarget is one dispatchable (source, platform, service) combination
// resolved from the source catalog.
type SourceTarget struct {
	SourceID uint
	Platform string
	Service  string
	URL      string
}

// SourceService enumerates the active platform links of a project's sources.
type SourceService struct {
	db *gorm.DB
}

func NewSourceService(db *gorm.DB) *SourceService {
	if db == nil {
		db = config.DB
	}
	return &SourceService{db: db}
}

// ResolveTargets returns one target per active (source, platform, service)
// link. An empty sourceIDs slice selects every source of the project.
func (s *SourceService) ResolveTargets(ctx context.Context, projectID uint, sourceIDs []uint) ([]SourceTarget, error) {
	query := s.db.WithContext(ctx).Table("source_links").
		Select("source_links.source_id, source_links.platform, source_links.service, source_links.url").
		Joins("JOIN sources ON sources.id = source_links.source_id AND sources.deleted_at IS NULL").
		Where("sources.project_id = ?", projectID).
		Where("source_links.is_active = ?", true).
		Where("source_links.deleted_at IS NULL")

	if len(sourceIDs) > 0 {
		query = query.Where("source_links.source_id IN ?", sourceIDs)
	}

	var targets []SourceTarget
	if err := query.Order("source_links.source_id ASC, source_links.id ASC").Find(&targets).Error; err != nil {
		return nil, err
	}
	return targets, nil
}

// ListSources returns a project's sources with their links preloaded.
func (s *SourceService) ListSources(ctx context.Context, projectID uint) ([]models.Source, error) {
	var sources []models.Source
	err := s.db.WithContext(ctx).
		Preload("Links").
		Where("project_id = ?", projectID).
		Order("id ASC").
		Find(&sources).Error
	if err != nil {
		return nil, err
	}
	return sources, nil
}
