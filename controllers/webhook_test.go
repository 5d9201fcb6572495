package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"social-tracker-api/config"
	"social-tracker-api/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupWebhookRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.ScrapeRun{}, &models.ScrapeJob{}))

	previous := config.DB
	config.DB = db
	t.Cleanup(func() { config.DB = previous })

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/webhook", ProviderWebhook)
	return router, db
}

func postWebhook(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestProviderWebhookMalformedJSON(t *testing.T) {
	router, _ := setupWebhookRouter(t)

	recorder := postWebhook(router, `{"runId": `)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestProviderWebhookMissingRunID(t *testing.T) {
	router, _ := setupWebhookRouter(t)

	recorder := postWebhook(router, `{"status":"SUCCEEDED"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestProviderWebhookUnmatchedStillSucceeds(t *testing.T) {
	router, _ := setupWebhookRouter(t)

	recorder := postWebhook(router, `{"runId":"unknown-id","status":"SUCCEEDED","actorId":"actor"}`)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"success"`)
}

func TestProviderWebhookUpdatesJob(t *testing.T) {
	router, db := setupWebhookRouter(t)

	run := models.ScrapeRun{ProjectID: 1, SourceScope: "all", Status: models.ScrapeStatusProcessing, TotalJobs: 1}
	require.NoError(t, db.Create(&run).Error)

	requestID := "apify-run-99"
	job := models.ScrapeJob{
		RunID:             run.ID,
		SourceID:          1,
		Platform:          models.PlatformInstagram,
		Service:           models.ServicePosts,
		TargetURL:         "https://www.instagram.com/nasa/",
		Status:            models.ScrapeStatusProcessing,
		ProviderRequestID: &requestID,
		CallbackToken:     "token",
	}
	require.NoError(t, db.Create(&job).Error)

	recorder := postWebhook(router, `{"runId":"apify-run-99","status":"SUCCEEDED","actorId":"actor"}`)
	assert.Equal(t, http.StatusOK, recorder.Code)

	var updated models.ScrapeJob
	require.NoError(t, db.First(&updated, job.ID).Error)
	assert.Equal(t, models.ScrapeStatusCompleted, updated.Status)

	var updatedRun models.ScrapeRun
	require.NoError(t, db.First(&updatedRun, run.ID).Error)
	assert.Equal(t, models.ScrapeStatusCompleted, updatedRun.Status)
}
