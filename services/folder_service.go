package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"social-tracker-api/config"
	"social-tracker-api/models"
	"social-tracker-api/utils"

	"gorm.io/gorm"
)

const defaultFolderPattern = "{scope} - {date}"

// FolderService builds and reads the output container hierarchy of a run:
// one run folder, one platform folder per distinct platform, one service
// folder per distinct (platform, service) pair, one job folder per job.
type FolderService struct {
	db *gorm.DB
}

func NewFolderService(db *gorm.DB) *FolderService {
	if db == nil {
		db = config.DB
	}
	return &FolderService{db: db}
}

// BuildHierarchy creates the folder tree for the run inside the caller's
// transaction. Idempotent: existing folders are reused, never duplicated.
func (s *FolderService) BuildHierarchy(tx *gorm.DB, run *models.ScrapeRun, jobs []models.ScrapeJob) error {
	runFolder, err := s.findOrCreate(tx, models.Folder{
		RunID:      run.ID,
		FolderType: models.FolderTypeRun,
	}, models.Folder{
		RunID:      run.ID,
		FolderType: models.FolderTypeRun,
		Name:       runFolderName(run),
		Category:   run.SourceScope,
	})
	if err != nil {
		return &FolderCreationError{RunID: run.ID, FolderType: models.FolderTypeRun, Err: err}
	}

	// Lookup index keyed by (platform, service) so repeated builds and
	// multiple jobs resolve to the same service folder.
	platformFolders := make(map[string]*models.Folder)
	serviceFolders := make(map[string]*models.Folder)

	for i := range jobs {
		job := &jobs[i]

		platformFolder, ok := platformFolders[job.Platform]
		if !ok {
			platformFolder, err = s.findOrCreate(tx, models.Folder{
				RunID:        run.ID,
				FolderType:   models.FolderTypePlatform,
				PlatformCode: job.Platform,
			}, models.Folder{
				RunID:          run.ID,
				FolderType:     models.FolderTypePlatform,
				Name:           utils.TitleCase(job.Platform),
				PlatformCode:   job.Platform,
				ParentFolderID: &runFolder.ID,
			})
			if err != nil {
				return &FolderCreationError{RunID: run.ID, FolderType: models.FolderTypePlatform, Err: err}
			}
			platformFolders[job.Platform] = platformFolder
		}

		serviceKey := job.Platform + "/" + job.Service
		serviceFolder, ok := serviceFolders[serviceKey]
		if !ok {
			serviceFolder, err = s.findOrCreate(tx, models.Folder{
				RunID:        run.ID,
				FolderType:   models.FolderTypeService,
				PlatformCode: job.Platform,
				ServiceCode:  job.Service,
			}, models.Folder{
				RunID:          run.ID,
				FolderType:     models.FolderTypeService,
				Name:           fmt.Sprintf("%s %s", utils.TitleCase(job.Platform), utils.TitleCase(job.Service)),
				PlatformCode:   job.Platform,
				ServiceCode:    job.Service,
				ParentFolderID: &platformFolder.ID,
			})
			if err != nil {
				return &FolderCreationError{RunID: run.ID, FolderType: models.FolderTypeService, Err: err}
			}
			serviceFolders[serviceKey] = serviceFolder
		}

		jobID := job.ID
		_, err = s.findOrCreate(tx, models.Folder{
			RunID:      run.ID,
			FolderType: models.FolderTypeJob,
			JobID:      &jobID,
		}, models.Folder{
			RunID:          run.ID,
			FolderType:     models.FolderTypeJob,
			Name:           utils.SourceDisplayName(job.Platform, job.TargetURL),
			PlatformCode:   job.Platform,
			ServiceCode:    job.Service,
			ParentFolderID: &serviceFolder.ID,
			JobID:          &jobID,
		})
		if err != nil {
			return &FolderCreationError{RunID: run.ID, FolderType: models.FolderTypeJob, Err: err}
		}
	}

	return nil
}

func (s *FolderService) findOrCreate(tx *gorm.DB, where models.Folder, create models.Folder) (*models.Folder, error) {
	var existing models.Folder
	query := tx.Where(&where)
	if where.JobID != nil {
		query = query.Where("job_id = ?", *where.JobID)
	}
	err := query.First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := tx.Create(&create).Error; err != nil {
		return nil, err
	}
	return &create, nil
}

func runFolderName(run *models.ScrapeRun) string {
	pattern := strings.TrimSpace(run.FolderPattern)
	if pattern == "" {
		pattern = defaultFolderPattern
	}

	scope := "All Sources"
	if run.SourceScope != "all" {
		scope = "Selected Sources"
	}

	name := strings.ReplaceAll(pattern, "{scope}", scope)
	name = strings.ReplaceAll(name, "{date}", run.CreatedAt.Format("2006-01-02"))
	return name
}

// FolderNode is one node of the nested folder tree returned to clients.
// ContentCount is computed, not stored: for a job folder it is 1, otherwise
// the sum of the descendant job-folder counts.
type FolderNode struct {
	models.Folder
	ContentCount int           `json:"content_count"`
	Children     []*FolderNode `json:"children"`
}

// GetFolderTree loads a run's folders and assembles the nested tree.
func (s *FolderService) GetFolderTree(ctx context.Context, runID uint) (*FolderNode, error) {
	var folders []models.Folder
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("id ASC").
		Find(&folders).Error
	if err != nil {
		return nil, err
	}
	if len(folders) == 0 {
		return nil, ErrRunNotFound
	}

	nodes := make(map[uint]*FolderNode, len(folders))
	var root *FolderNode
	for i := range folders {
		nodes[folders[i].ID] = &FolderNode{Folder: folders[i]}
	}
	for i := range folders {
		node := nodes[folders[i].ID]
		if node.ParentFolderID == nil {
			root = node
			continue
		}
		if parent, ok := nodes[*node.ParentFolderID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}
	if root == nil {
		return nil, fmt.Errorf("run %d has no root folder", runID)
	}

	countLeaves(root)
	return root, nil
}

func countLeaves(node *FolderNode) int {
	if node.FolderType == models.FolderTypeJob {
		node.ContentCount = 1
		return 1
	}
	total := 0
	for _, child := range node.Children {
		total += countLeaves(child)
	}
	node.ContentCount = total
	return total
}
