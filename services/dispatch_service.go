package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"social-tracker-api/config"
	"social-tracker-api/models"
	"social-tracker-api/utils"

	"gorm.io/gorm"
)

const (
	apifyBaseURL      = "https://api.apify.com"
	brightDataBaseURL = "https://api.brightdata.com"

	dispatchTimeout    = 15 * time.Second
	maxErrorBodyBytes  = 4096
	maxStoredErrorSize = 1000
)

// DispatchService submits one job to its scraping provider and records the
// outcome on the job row. Per-job failures never abort the owning run.
type DispatchService struct {
	db     *gorm.DB
	client *http.Client
}

func NewDispatchService(db *gorm.DB, client *http.Client) *DispatchService {
	if db == nil {
		db = config.DB
	}
	if client == nil {
		client = &http.Client{Timeout: dispatchTimeout}
	}
	return &DispatchService{db: db, client: client}
}

// Dispatch resolves the provider configuration for the job's platform and
// service, submits the provider request and stores the returned request id.
// On any failure the job is marked failed with the provider response; the
// returned error is informational for the caller's logs.
func (s *DispatchService) Dispatch(ctx context.Context, run *models.ScrapeRun, job *models.ScrapeJob) error {
	cfg, err := s.resolveConfig(ctx, job.Platform, job.Service)
	if err != nil {
		if errors.Is(err, ErrNoProviderConfig) {
			s.markFailed(ctx, job, fmt.Sprintf("no active provider configuration for %s/%s", job.Platform, job.Service))
			return ErrNoProviderConfig
		}
		return err
	}

	endpoint, headers, payload, err := s.buildRequest(cfg, run, job)
	if err != nil {
		s.markFailed(ctx, job, err.Error())
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	started := time.Now()
	resp, err := s.client.Do(req)
	duration := time.Since(started)

	if err != nil {
		s.recordAPIRequest(ctx, job, cfg.Provider, req, 0, duration, err.Error())
		dispatchErr := &DispatchError{Provider: cfg.Provider, Err: err}
		s.markFailed(ctx, job, dispatchErr.Error())
		return dispatchErr
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	s.recordAPIRequest(ctx, job, cfg.Provider, req, resp.StatusCode, duration, string(respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		dispatchErr := &DispatchError{Provider: cfg.Provider, StatusCode: resp.StatusCode, Body: string(respBody)}
		s.markFailed(ctx, job, dispatchErr.Error())
		return dispatchErr
	}

	requestID := extractRequestID(respBody)
	if requestID == "" {
		dispatchErr := &DispatchError{Provider: cfg.Provider, StatusCode: resp.StatusCode, Body: "response missing request id"}
		s.markFailed(ctx, job, dispatchErr.Error())
		return dispatchErr
	}

	now := time.Now()
	datasetID := cfg.DatasetID
	if datasetID == "" {
		datasetID = cfg.ActorID
	}
	updates := map[string]interface{}{
		"provider_request_id": requestID,
		"provider_dataset_id": datasetID,
		"status":              models.ScrapeStatusProcessing,
		"error_message":       nil,
		"dispatched_at":       now,
	}
	if err := s.db.WithContext(ctx).Model(job).Updates(updates).Error; err != nil {
		return err
	}

	job.ProviderRequestID = &requestID
	job.ProviderDatasetID = &datasetID
	job.Status = models.ScrapeStatusProcessing
	job.ErrorMessage = nil
	job.DispatchedAt = &now
	return nil
}

func (s *DispatchService) resolveConfig(ctx context.Context, platform, service string) (*models.ProviderConfig, error) {
	var cfg models.ProviderConfig
	err := s.db.WithContext(ctx).
		Where("platform = ? AND service = ? AND is_active = ?", platform, service, true).
		First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoProviderConfig
		}
		return nil, err
	}
	return &cfg, nil
}

// buildRequest produces the provider endpoint, headers and body for one job.
// Payload shapes differ per platform; the default arm sends a generic
// start-URL payload so an unrecognized platform still dispatches.
func (s *DispatchService) buildRequest(cfg *models.ProviderConfig, run *models.ScrapeRun, job *models.ScrapeJob) (string, map[string]string, map[string]interface{}, error) {
	callbackURL := fmt.Sprintf("%s/webhook?token=%s", config.WebhookBaseURL(), url.QueryEscape(job.CallbackToken))

	payload := map[string]interface{}{
		"webhookUrl":         callbackURL,
		"notifyOnCompletion": true,
	}

	switch job.Platform {
	case models.PlatformInstagram:
		payload["usernames"] = []string{utils.SourceDisplayName(job.Platform, job.TargetURL)}
		payload["resultsLimit"] = run.PostLimit
	case models.PlatformTikTok:
		payload["profiles"] = []string{utils.SourceDisplayName(job.Platform, job.TargetURL)}
		payload["resultsPerPage"] = run.PostLimit
	case models.PlatformFacebook, models.PlatformYouTube, models.PlatformTwitter:
		payload["startUrls"] = []map[string]string{{"url": job.TargetURL}}
		payload["maxItems"] = run.PostLimit
	default:
		log.Printf("no payload shape for platform %q, using generic start-url payload", job.Platform)
		payload["startUrls"] = []map[string]string{{"url": job.TargetURL}}
		payload["maxItems"] = run.PostLimit
	}

	if run.DateFrom != nil {
		payload["onlyPostsNewerThan"] = run.DateFrom.Format("2006-01-02")
	}
	if run.DateTo != nil {
		payload["onlyPostsOlderThan"] = run.DateTo.Format("2006-01-02")
	}

	switch cfg.Provider {
	case models.ProviderApify:
		base := cfg.BaseURL
		if base == "" {
			base = apifyBaseURL
		}
		endpoint := fmt.Sprintf("%s/v2/acts/%s/runs?token=%s", base, url.PathEscape(cfg.ActorID), url.QueryEscape(config.ApifyToken()))
		return endpoint, nil, payload, nil
	case models.ProviderBrightData:
		base := cfg.BaseURL
		if base == "" {
			base = brightDataBaseURL
		}
		endpoint := fmt.Sprintf("%s/datasets/v3/trigger?dataset_id=%s", base, url.QueryEscape(cfg.DatasetID))
		headers := map[string]string{"Authorization": "Bearer " + config.BrightDataToken()}
		return endpoint, headers, payload, nil
	default:
		return "", nil, nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// extractRequestID pulls the provider-issued run identifier out of the
// dispatch response. Apify nests it under data.id; BrightData returns a
// snapshot_id at the top level.
func extractRequestID(body []byte) string {
	var decoded struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
		SnapshotID string `json:"snapshot_id"`
		ID         string `json:"id"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return ""
	}
	if decoded.Data.ID != "" {
		return decoded.Data.ID
	}
	if decoded.SnapshotID != "" {
		return decoded.SnapshotID
	}
	return decoded.ID
}

func (s *DispatchService) markFailed(ctx context.Context, job *models.ScrapeJob, message string) {
	if len(message) > maxStoredErrorSize {
		message = message[:maxStoredErrorSize-3] + "..."
	}
	now := time.Now()
	updates := map[string]interface{}{
		"status":        models.ScrapeStatusFailed,
		"error_message": message,
		"completed_at":  now,
	}
	if err := s.db.WithContext(ctx).Model(job).Updates(updates).Error; err != nil {
		log.Printf("failed to mark job %d failed: %v", job.ID, err)
		return
	}
	job.Status = models.ScrapeStatusFailed
	job.ErrorMessage = &message
	job.CompletedAt = &now
}

func (s *DispatchService) recordAPIRequest(ctx context.Context, job *models.ScrapeJob, provider string, req *http.Request, statusCode int, duration time.Duration, body string) {
	if job.ID == 0 || req == nil {
		return
	}

	responseMs := int(duration / time.Millisecond)
	excerpt := strings.TrimSpace(body)
	if len(excerpt) > maxErrorBodyBytes {
		excerpt = excerpt[:maxErrorBodyBytes]
	}

	record := &models.ProviderAPIRequest{
		JobID:          job.ID,
		Provider:       provider,
		HTTPMethod:     req.Method,
		Endpoint:       req.URL.Path,
		ResponseTimeMs: &responseMs,
	}
	if statusCode > 0 {
		record.ResponseStatus = &statusCode
	}
	if excerpt != "" {
		record.ResponseBody = &excerpt
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		log.Printf("failed to record provider api request for job %d: %v", job.ID, err)
	}
}
