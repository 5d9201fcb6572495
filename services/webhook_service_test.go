package services

import (
	"context"
	"testing"

	"social-tracker-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMapProviderStatus(t *testing.T) {
	tests := map[string]string{
		"READY":     models.ScrapeStatusProcessing,
		"RUNNING":   models.ScrapeStatusProcessing,
		"SUCCEEDED": models.ScrapeStatusCompleted,
		"FAILED":    models.ScrapeStatusFailed,
		"ABORTED":   models.ScrapeStatusCancelled,
		"TIMED_OUT": models.ScrapeStatusFailed,
		"succeeded": models.ScrapeStatusCompleted,
		"WEIRD_NEW": models.ScrapeStatusProcessing,
		"":          models.ScrapeStatusProcessing,
	}
	for provider, want := range tests {
		assert.Equal(t, want, MapProviderStatus(provider), "provider status %q", provider)
	}
}

func getRun(t *testing.T, db *gorm.DB, runID uint) *models.ScrapeRun {
	t.Helper()
	var run models.ScrapeRun
	require.NoError(t, db.First(&run, runID).Error)
	return &run
}

func getJob(t *testing.T, db *gorm.DB, jobID uint) *models.ScrapeJob {
	t.Helper()
	var job models.ScrapeJob
	require.NoError(t, db.First(&job, jobID).Error)
	return &job
}

func TestProcessCallbackCompletesJob(t *testing.T) {
	db := newTestDB(t)
	run, jobs := seedRunWithJobs(t, db,
		models.ScrapeStatusProcessing,
		models.ScrapeStatusProcessing,
		models.ScrapeStatusProcessing,
	)

	svc := NewWebhookService(db)
	require.NoError(t, svc.ProcessCallback(context.Background(), &WebhookPayload{
		RunID:  *jobs[0].ProviderRequestID,
		Status: "SUCCEEDED",
	}))

	job := getJob(t, db, jobs[0].ID)
	assert.Equal(t, models.ScrapeStatusCompleted, job.Status)
	assert.NotNil(t, job.CompletedAt)

	// Siblings still processing, so the run stays processing.
	updated := getRun(t, db, run.ID)
	assert.Equal(t, models.ScrapeStatusProcessing, updated.Status)
	assert.Equal(t, 1, updated.CompletedJobs)
	assert.Equal(t, 1, updated.SuccessfulJobs)
	assert.Nil(t, updated.CompletedAt)
}

func TestProcessCallbackPartialSuccessFinalizesRun(t *testing.T) {
	db := newTestDB(t)
	run, jobs := seedRunWithJobs(t, db,
		models.ScrapeStatusProcessing,
		models.ScrapeStatusProcessing,
		models.ScrapeStatusProcessing,
	)

	svc := NewWebhookService(db)
	ctx := context.Background()

	require.NoError(t, svc.ProcessCallback(ctx, &WebhookPayload{RunID: *jobs[0].ProviderRequestID, Status: "SUCCEEDED"}))
	require.NoError(t, svc.ProcessCallback(ctx, &WebhookPayload{RunID: *jobs[1].ProviderRequestID, Status: "FAILED"}))
	require.NoError(t, svc.ProcessCallback(ctx, &WebhookPayload{RunID: *jobs[2].ProviderRequestID, Status: "SUCCEEDED"}))

	// 2 completed + 1 failed: partial success finalizes the run as completed.
	updated := getRun(t, db, run.ID)
	assert.Equal(t, models.ScrapeStatusCompleted, updated.Status)
	assert.Equal(t, 3, updated.CompletedJobs)
	assert.Equal(t, 2, updated.SuccessfulJobs)
	assert.Equal(t, 1, updated.FailedJobs)
	assert.NotNil(t, updated.CompletedAt)

	failedJob := getJob(t, db, jobs[1].ID)
	require.NotNil(t, failedJob.ErrorMessage)
	assert.Contains(t, *failedJob.ErrorMessage, "FAILED")
}

func TestProcessCallbackIdempotentRedelivery(t *testing.T) {
	db := newTestDB(t)
	run, jobs := seedRunWithJobs(t, db, models.ScrapeStatusProcessing)

	svc := NewWebhookService(db)
	ctx := context.Background()

	require.NoError(t, svc.ProcessCallback(ctx, &WebhookPayload{RunID: *jobs[0].ProviderRequestID, Status: "SUCCEEDED"}))
	first := getJob(t, db, jobs[0].ID)
	firstRun := getRun(t, db, run.ID)

	// Redelivering the same terminal callback changes nothing.
	require.NoError(t, svc.ProcessCallback(ctx, &WebhookPayload{RunID: *jobs[0].ProviderRequestID, Status: "SUCCEEDED"}))
	second := getJob(t, db, jobs[0].ID)
	secondRun := getRun(t, db, run.ID)

	assert.Equal(t, first.Status, second.Status)
	require.NotNil(t, second.CompletedAt)
	assert.Equal(t, first.CompletedAt.UnixNano(), second.CompletedAt.UnixNano())
	assert.Equal(t, firstRun.Status, secondRun.Status)
	require.NotNil(t, secondRun.CompletedAt)
	assert.Equal(t, firstRun.CompletedAt.UnixNano(), secondRun.CompletedAt.UnixNano())
}

func TestProcessCallbackTerminalStateIsMonotonic(t *testing.T) {
	db := newTestDB(t)
	run, jobs := seedRunWithJobs(t, db, models.ScrapeStatusProcessing)

	svc := NewWebhookService(db)
	ctx := context.Background()

	require.NoError(t, svc.ProcessCallback(ctx, &WebhookPayload{RunID: *jobs[0].ProviderRequestID, Status: "SUCCEEDED"}))

	// A late contradictory callback cannot reopen or flip a terminal job.
	require.NoError(t, svc.ProcessCallback(ctx, &WebhookPayload{RunID: *jobs[0].ProviderRequestID, Status: "FAILED"}))
	job := getJob(t, db, jobs[0].ID)
	assert.Equal(t, models.ScrapeStatusCompleted, job.Status)

	require.NoError(t, svc.ProcessCallback(ctx, &WebhookPayload{RunID: *jobs[0].ProviderRequestID, Status: "RUNNING"}))
	job = getJob(t, db, jobs[0].ID)
	assert.Equal(t, models.ScrapeStatusCompleted, job.Status)

	updated := getRun(t, db, run.ID)
	assert.Equal(t, models.ScrapeStatusCompleted, updated.Status)
}

func TestProcessCallbackUnmatchedRequestID(t *testing.T) {
	db := newTestDB(t)
	run, jobs := seedRunWithJobs(t, db, models.ScrapeStatusProcessing)

	svc := NewWebhookService(db)
	err := svc.ProcessCallback(context.Background(), &WebhookPayload{RunID: "never-dispatched", Status: "SUCCEEDED"})
	assert.ErrorIs(t, err, ErrUnmatchedCallback)

	// Nothing was mutated.
	assert.Equal(t, models.ScrapeStatusProcessing, getJob(t, db, jobs[0].ID).Status)
	assert.Equal(t, models.ScrapeStatusProcessing, getRun(t, db, run.ID).Status)
}

func TestProcessCallbackUnknownStatusStaysProcessing(t *testing.T) {
	db := newTestDB(t)
	run, jobs := seedRunWithJobs(t, db, models.ScrapeStatusProcessing)

	svc := NewWebhookService(db)
	require.NoError(t, svc.ProcessCallback(context.Background(), &WebhookPayload{
		RunID:  *jobs[0].ProviderRequestID,
		Status: "SOME_FUTURE_STATE",
	}))

	job := getJob(t, db, jobs[0].ID)
	assert.Equal(t, models.ScrapeStatusProcessing, job.Status)
	assert.Nil(t, job.CompletedAt)
	assert.Equal(t, models.ScrapeStatusProcessing, getRun(t, db, run.ID).Status)
}

func TestProcessCallbackMissingRunID(t *testing.T) {
	db := newTestDB(t)
	svc := NewWebhookService(db)

	err := svc.ProcessCallback(context.Background(), &WebhookPayload{Status: "SUCCEEDED"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnmatchedCallback)
}
