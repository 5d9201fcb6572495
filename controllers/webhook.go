package controllers

import (
	"errors"
	"net/http"

	"social-tracker-api/services"

	"github.com/gin-gonic/gin"
)

// POST /webhook
//
// Providers post { "runId": ..., "status": ..., "actorId": ... } here when a
// scrape finishes or changes state. An unmatched runId still answers 200 so
// the provider does not keep retrying a callback we can never match.
func ProviderWebhook(c *gin.Context) {
	var payload services.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid JSON payload"})
		return
	}
	if payload.RunID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "missing runId"})
		return
	}

	svc := services.NewWebhookService(nil)
	if err := svc.ProcessCallback(c.Request.Context(), &payload); err != nil {
		if errors.Is(err, services.ErrUnmatchedCallback) {
			c.JSON(http.StatusOK, gin.H{"status": "success"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
