package services

import (
	"testing"
	"time"

	"social-tracker-api/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive and serializes
	// concurrent writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Source{},
		&models.SourceLink{},
		&models.ScrapeRun{},
		&models.ScrapeJob{},
		&models.Folder{},
		&models.ProviderConfig{},
		&models.ProviderAPIRequest{},
	))
	return db
}

// seedSource creates one source with a single active link.
func seedSource(t *testing.T, db *gorm.DB, projectID uint, name, platform, service, url string) *models.Source {
	t.Helper()
	source := &models.Source{
		ProjectID: projectID,
		Name:      name,
		Links: []models.SourceLink{
			{Platform: platform, Service: service, URL: url, IsActive: true},
		},
	}
	require.NoError(t, db.Create(source).Error)
	return source
}

// seedRunWithJobs creates a run and one job per given status, with
// provider_request_id "req-<index>" for every non-pending job.
func seedRunWithJobs(t *testing.T, db *gorm.DB, statuses ...string) (*models.ScrapeRun, []models.ScrapeJob) {
	t.Helper()

	run := &models.ScrapeRun{
		ProjectID:   1,
		SourceScope: "all",
		Status:      models.ScrapeStatusProcessing,
		TotalJobs:   len(statuses),
	}
	require.NoError(t, db.Create(run).Error)

	now := time.Now()
	jobs := make([]models.ScrapeJob, 0, len(statuses))
	for i, status := range statuses {
		job := models.ScrapeJob{
			RunID:         run.ID,
			SourceID:      uint(i + 1),
			Platform:      models.PlatformInstagram,
			Service:       models.ServicePosts,
			TargetURL:     "https://www.instagram.com/account/",
			Status:        status,
			CallbackToken: "token",
		}
		if status != models.ScrapeStatusPending {
			requestID := requestIDForIndex(i)
			job.ProviderRequestID = &requestID
			job.DispatchedAt = &now
		}
		require.NoError(t, db.Create(&job).Error)
		jobs = append(jobs, job)
	}
	return run, jobs
}

func requestIDForIndex(i int) string {
	return "req-" + string(rune('a'+i))
}
