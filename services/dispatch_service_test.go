package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"social-tracker-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedProviderConfig(t *testing.T, db *gorm.DB, platform, service, baseURL string) {
	t.Helper()
	require.NoError(t, db.Create(&models.ProviderConfig{
		Provider: models.ProviderApify,
		Platform: platform,
		Service:  service,
		ActorID:  "test-actor",
		BaseURL:  baseURL,
		IsActive: true,
	}).Error)
}

func TestDispatchSuccess(t *testing.T) {
	db := newTestDB(t)

	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"apify-run-1"}}`))
	}))
	defer server.Close()

	seedProviderConfig(t, db, models.PlatformInstagram, models.ServicePosts, server.URL)
	run, jobs := seedRunWithJobs(t, db, models.ScrapeStatusPending)
	run.PostLimit = 50

	svc := NewDispatchService(db, server.Client())
	require.NoError(t, svc.Dispatch(context.Background(), run, &jobs[0]))

	var job models.ScrapeJob
	require.NoError(t, db.First(&job, jobs[0].ID).Error)
	assert.Equal(t, models.ScrapeStatusProcessing, job.Status)
	require.NotNil(t, job.ProviderRequestID)
	assert.Equal(t, "apify-run-1", *job.ProviderRequestID)
	assert.NotNil(t, job.DispatchedAt)
	assert.Nil(t, job.ErrorMessage)

	// Instagram dispatch ships a usernames payload plus the callback wiring.
	assert.Equal(t, []interface{}{"account"}, captured["usernames"])
	assert.EqualValues(t, 50, captured["resultsLimit"])
	assert.Equal(t, true, captured["notifyOnCompletion"])
	assert.Contains(t, captured["webhookUrl"], "/webhook?token=")

	var audit models.ProviderAPIRequest
	require.NoError(t, db.Where("job_id = ?", job.ID).First(&audit).Error)
	assert.Equal(t, models.ProviderApify, audit.Provider)
	require.NotNil(t, audit.ResponseStatus)
	assert.Equal(t, http.StatusCreated, *audit.ResponseStatus)
}

func TestDispatchProviderError(t *testing.T) {
	db := newTestDB(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	}))
	defer server.Close()

	seedProviderConfig(t, db, models.PlatformInstagram, models.ServicePosts, server.URL)
	run, jobs := seedRunWithJobs(t, db, models.ScrapeStatusPending)

	svc := NewDispatchService(db, server.Client())
	err := svc.Dispatch(context.Background(), run, &jobs[0])

	var dispatchErr *DispatchError
	require.ErrorAs(t, err, &dispatchErr)
	assert.Equal(t, http.StatusUnauthorized, dispatchErr.StatusCode)

	var job models.ScrapeJob
	require.NoError(t, db.First(&job, jobs[0].ID).Error)
	assert.Equal(t, models.ScrapeStatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Contains(t, *job.ErrorMessage, "status 401")
	assert.Nil(t, job.ProviderRequestID)
}

func TestDispatchNoProviderConfig(t *testing.T) {
	db := newTestDB(t)
	run, jobs := seedRunWithJobs(t, db, models.ScrapeStatusPending)

	svc := NewDispatchService(db, nil)
	err := svc.Dispatch(context.Background(), run, &jobs[0])
	assert.ErrorIs(t, err, ErrNoProviderConfig)

	var job models.ScrapeJob
	require.NoError(t, db.First(&job, jobs[0].ID).Error)
	assert.Equal(t, models.ScrapeStatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Contains(t, *job.ErrorMessage, "no active provider configuration")
}

func TestDispatchMissingRequestID(t *testing.T) {
	db := newTestDB(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	seedProviderConfig(t, db, models.PlatformInstagram, models.ServicePosts, server.URL)
	run, jobs := seedRunWithJobs(t, db, models.ScrapeStatusPending)

	svc := NewDispatchService(db, server.Client())
	err := svc.Dispatch(context.Background(), run, &jobs[0])

	var dispatchErr *DispatchError
	require.ErrorAs(t, err, &dispatchErr)

	var job models.ScrapeJob
	require.NoError(t, db.First(&job, jobs[0].ID).Error)
	assert.Equal(t, models.ScrapeStatusFailed, job.Status)
}

func TestExtractRequestID(t *testing.T) {
	assert.Equal(t, "a1", extractRequestID([]byte(`{"data":{"id":"a1"}}`)))
	assert.Equal(t, "s1", extractRequestID([]byte(`{"snapshot_id":"s1"}`)))
	assert.Equal(t, "top", extractRequestID([]byte(`{"id":"top"}`)))
	assert.Equal(t, "", extractRequestID([]byte(`not json`)))
}
