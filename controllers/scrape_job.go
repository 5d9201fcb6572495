package controllers

import (
	"errors"
	"net/http"

	"social-tracker-api/services"

	"github.com/gin-gonic/gin"
)

// POST /api/v1/scrape-jobs/:id/retry
func RetryScrapeJob(c *gin.Context) {
	jobID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	svc := services.NewScrapeRunService(nil)
	job, err := svc.RetryJob(c.Request.Context(), jobID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrJobNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "scrape job not found"})
		case errors.Is(err, services.ErrJobNotRetryable):
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "only failed jobs can be retried"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": job})
}
