package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"social-tracker-api/config"
	"social-tracker-api/models"

	"gorm.io/gorm"
)

// WebhookPayload is the generic callback shape providers post to /webhook.
// runId carries the provider-issued request identifier, not an internal id.
type WebhookPayload struct {
	RunID   string `json:"runId"`
	Status  string `json:"status"`
	ActorID string `json:"actorId"`
}

// providerStatusMap translates the provider status vocabulary into the
// internal state machine. Unknown statuses stay processing so a job is never
// terminalized on vocabulary drift.
var providerStatusMap = map[string]string{
	"READY":     models.ScrapeStatusProcessing,
	"RUNNING":   models.ScrapeStatusProcessing,
	"SUCCEEDED": models.ScrapeStatusCompleted,
	"FAILED":    models.ScrapeStatusFailed,
	"ABORTED":   models.ScrapeStatusCancelled,
	"TIMED_OUT": models.ScrapeStatusFailed,
}

// MapProviderStatus maps a provider-native status string to the internal
// status enum.
func MapProviderStatus(providerStatus string) string {
	if status, ok := providerStatusMap[strings.ToUpper(strings.TrimSpace(providerStatus))]; ok {
		return status
	}
	return models.ScrapeStatusProcessing
}

// WebhookService reconciles asynchronous provider callbacks into job and run
// state.
type WebhookService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewWebhookService(db *gorm.DB) *WebhookService {
	if db == nil {
		db = config.DB
	}
	return &WebhookService{db: db, notifications: NewNotificationService()}
}

// ProcessCallback applies one provider callback. An unmatched request id is
// logged and reported as ErrUnmatchedCallback; callers still answer the
// provider with success so it does not retry-storm us. Job update and run
// re-aggregation run in one transaction holding the run row lock, so two
// concurrent callbacks for the same run cannot write stale aggregates.
func (s *WebhookService) ProcessCallback(ctx context.Context, payload *WebhookPayload) error {
	if payload == nil || strings.TrimSpace(payload.RunID) == "" {
		return errors.New("callback payload missing runId")
	}

	var probe models.ScrapeJob
	err := s.db.WithContext(ctx).
		Where("provider_request_id = ?", payload.RunID).
		First(&probe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("unmatched callback: no job with provider_request_id %q (status %q)", payload.RunID, payload.Status)
			return ErrUnmatchedCallback
		}
		return err
	}

	mapped := MapProviderStatus(payload.Status)
	var terminalRun *models.ScrapeRun

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run, err := lockRun(tx, probe.RunID)
		if err != nil {
			return err
		}

		// Re-read the job under the run lock; the probe may be stale.
		var job models.ScrapeJob
		if err := tx.Where("id = ?", probe.ID).First(&job).Error; err != nil {
			return err
		}

		if models.IsTerminalStatus(job.Status) {
			// Redelivered terminal callbacks are a no-op; only an explicit
			// retry reopens a terminal job.
			return nil
		}

		if mapped != job.Status {
			updates := map[string]interface{}{"status": mapped}
			if models.IsTerminalStatus(mapped) {
				updates["completed_at"] = time.Now()
				if mapped == models.ScrapeStatusFailed {
					updates["error_message"] = "provider reported " + strings.ToUpper(strings.TrimSpace(payload.Status))
				}
			}
			if err := tx.Model(&models.ScrapeJob{}).Where("id = ?", job.ID).Updates(updates).Error; err != nil {
				return err
			}
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
