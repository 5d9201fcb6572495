package services

import (
	"context"
	"errors"
	"log"
	"time"

	"social-tracker-api/config"
	"social-tracker-api/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const defaultDispatchConcurrency = 4

// CreateRunInput carries everything needed to create and dispatch a run.
// An empty SourceIDs slice selects every source of the project.
type CreateRunInput struct {
	ProjectID uint
	SourceIDs []uint

	PostLimit         int
	DateFrom          *time.Time
	DateTo            *time.Time
	FolderPattern     string
	AutoCreateFolders bool

	// DispatchConcurrency bounds parallel provider submissions; zero means
	// the default.
	DispatchConcurrency int
}

// ScrapeRunService is the orchestration entry point: it expands a source
// scope into jobs, persists the run with its folder tree, dispatches every
// job and exposes the explicit retry/cancel/delete operations.
type ScrapeRunService struct {
	db            *gorm.DB
	sources       *SourceService
	folders       *FolderService
	dispatch      *DispatchService
	notifications *NotificationService
}

func NewScrapeRunService(db *gorm.DB) *ScrapeRunService {
	if db == nil {
		db = config.DB
	}
	return &ScrapeRunService{
		db:            db,
		sources:       NewSourceService(db),
		folders:       NewFolderService(db),
		dispatch:      NewDispatchService(db, nil),
		notifications: NewNotificationService(),
	}
}

// CreateRun enumerates the scope's sources, persists the run, its jobs and
// its folder tree in one transaction, then dispatches the jobs. Zero
// eligible sources aborts with ErrNoEligibleSources and persists nothing;
// folder creation failure rolls the whole run back. Individual dispatch
// failures are recorded on their job and never abort the run.
func (s *ScrapeRunService) CreateRun(ctx context.Context, input *CreateRunInput) (*models.ScrapeRun, error) {
	if input == nil {
		return nil, errors.New("input is nil")
	}
	if input.ProjectID == 0 {
		return nil, errors.New("project_id is required")
	}

	targets, err := s.sources.ResolveTargets(ctx, input.ProjectID, input.SourceIDs)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, ErrNoEligibleSources
	}

	scope := "all"
	if len(input.SourceIDs) > 0 {
		scope = "selected"
	}

	run := &models.ScrapeRun{
		ProjectID:         input.ProjectID,
		SourceScope:       scope,
		PostLimit:         input.PostLimit,
		DateFrom:          input.DateFrom,
		DateTo:            input.DateTo,
		FolderPattern:     input.FolderPattern,
		AutoCreateFolders: input.AutoCreateFolders,
		Status:            models.ScrapeStatusPending,
		TotalJobs:         len(targets),
	}

	var jobs []models.ScrapeJob
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return err
		}

		jobs = make([]models.ScrapeJob, 0, len(targets))
		for _, target := range targets {
			jobs = append(jobs, models.ScrapeJob{
				RunID:         run.ID,
				SourceID:      target.SourceID,
				Platform:      target.Platform,
				Service:       target.Service,
				TargetURL:     target.URL,
				Status:        models.ScrapeStatusPending,
				CallbackToken: uuid.NewString(),
			})
		}
		if err := tx.Create(&jobs).Error; err != nil {
			return err
		}

		if run.AutoCreateFolders {
			if err := s.folders.BuildHierarchy(tx, run, jobs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatchAll(ctx, run, jobs, input.DispatchConcurrency)

	if err := s.reaggregate(ctx, run.ID); err != nil {
		log.Printf("failed to aggregate run %d after dispatch: %v", run.ID, err)
	}

	return s.GetRun(ctx, run.ID)
}

// dispatchAll submits every job with bounded concurrency. Dispatch errors
// are local to their job; they are logged and surfaced through job status.
func (s *ScrapeRunService) dispatchAll(ctx context.Context, run *models.ScrapeRun, jobs []models.ScrapeJob, concurrency int) {
	if concurrency <= 0 {
		concurrency = defaultDispatchConcurrency
	}

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i := range jobs {
		job := &jobs[i]
		g.Go(func() error {
			if err := s.dispatch.Dispatch(ctx, run, job); err != nil {
				log.Printf("dispatch failed for job %d (%s/%s): %v", job.ID, job.Platform, job.Service, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *ScrapeRunService) reaggregate(ctx context.Context, runID uint) error {
	var terminalRun *models.ScrapeRun
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run, err := lockRun(tx, runID)
		if err != nil {
			return err
		}
		becameTerminal, err := reaggregateRun(tx, run)
		if err != nil {
			return err
		}
		if becameTerminal {
			terminalRun = run
		}
		return nil
	})
	if err != nil {
		return err
	}
	if terminalRun != nil {
		s.notifications.NotifyRunFinished(terminalRun)
	}
	return nil
}

// GetRun returns a run with its jobs.
func (s *ScrapeRunService) GetRun(ctx context.Context, runID uint) (*models.ScrapeRun, error) {
	var run models.ScrapeRun
	err := s.db.WithContext(ctx).
		Preload("Jobs", func(db *gorm.DB) *gorm.DB { return db.Order("scrape_jobs.id ASC") }).
		Where("id = ?", runID).
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return &run, nil
}

// ListRuns returns a project's runs, newest first.
func (s *ScrapeRunService) ListRuns(ctx context.Context, projectID uint, limit, offset int) ([]models.ScrapeRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var runs []models.ScrapeRun
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// RetryJob moves a failed job back to pending, clears its provider binding,
// bumps retry_count and re-dispatches it. Any other job state is rejected
// with ErrJobNotRetryable.
func (s *ScrapeRunService) RetryJob(ctx context.Context, jobID uint) (*models.ScrapeJob, error) {
	var probe models.ScrapeJob
	if err := s.db.WithContext(ctx).Where("id = ?", jobID).First(&probe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	var run models.ScrapeRun
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockRun(tx, probe.RunID)
		if err != nil {
			return err
		}

		var job models.ScrapeJob
		if err := tx.Where("id = ?", jobID).First(&job).Error; err != nil {
			return err
		}
		if job.Status != models.ScrapeStatusFailed {
			return ErrJobNotRetryable
		}

		updates := map[string]interface{}{
			"status":              models.ScrapeStatusPending,
			"error_message":       nil,
			"provider_request_id": nil,
			"completed_at":        nil,
			"retry_count":         job.RetryCount + 1,
		}
		if err := tx.Model(&models.ScrapeJob{}).Where("id = ?", job.ID).Updates(updates).Error; err != nil {
			return err
		}

		if _, err := reaggregateRun(tx, locked); err != nil {
			return err
		}
		run = *locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	var job models.ScrapeJob
	if err := s.db.WithContext(ctx).Where("id = ?", jobID).First(&job).Error; err != nil {
		return nil, err
	}

	if err := s.dispatch.Dispatch(ctx, &run, &job); err != nil {
		log.Printf("re-dispatch failed for job %d: %v", job.ID, err)
	}
	if err := s.reaggregate(ctx, run.ID); err != nil {
		log.Printf("failed to aggregate run %d after retry: %v", run.ID, err)
	}

	if err := s.db.WithContext(ctx).Where("id = ?", jobID).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// CancelRun marks every non-terminal job of the run cancelled and lets the
// aggregator finalize the run. Already-dispatched provider jobs are not
// aborted upstream.
func (s *ScrapeRunService) CancelRun(ctx context.Context, runID uint) (*models.ScrapeRun, error) {
	var terminalRun *models.ScrapeRun
	var result models.ScrapeRun

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run, err := lockRun(tx, runID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRunNotFound
			}
			return err
		}
		if models.IsTerminalStatus(run.Status) {
			return ErrRunNotCancellable
		}

		err = tx.Model(&models.ScrapeJob{}).
			Where("run_id = ? AND status IN ?", runID, []string{models.ScrapeStatusPending, models.ScrapeStatusProcessing}).
			Updates(map[string]interface{}{
				"status":       models.ScrapeStatusCancelled,
				"completed_at": time.Now(),
			}).Error
		if err != nil {
			return err
		}

		becameTerminal, err := reaggregateRun(tx, run)
		if err != nil {
			return err
		}
		if becameTerminal {
			terminalRun = run
		}
		result = *run
		return nil
	})
	if err != nil {
		return nil, err
	}

	if terminalRun != nil {
		s.notifications.NotifyRunFinished(terminalRun)
	}
	return &result, nil
}

// DeleteRun removes the run, its jobs, their provider request audit rows and
// the folder subtree in one transaction.
func (s *ScrapeRunService) DeleteRun(ctx context.Context, runID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var run models.ScrapeRun
		if err := tx.Where("id = ?", runID).First(&run).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRunNotFound
			}
			return err
		}

		var jobIDs []uint
		if err := tx.Model(&models.ScrapeJob{}).Where("run_id = ?", runID).Pluck("id", &jobIDs).Error; err != nil {
			return err
		}

		if len(jobIDs) > 0 {
			if err := tx.Where("job_id IN ?", jobIDs).Delete(&models.ProviderAPIRequest{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("run_id = ?", runID).Delete(&models.Folder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("run_id = ?", runID).Delete(&models.ScrapeJob{}).Error; err != nil {
			return err
		}
		return tx.Delete(&run).Error
	})
}
