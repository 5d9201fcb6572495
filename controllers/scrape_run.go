package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"social-tracker-api/services"

	"github.com/gin-gonic/gin"
)

type createScrapeRunRequest struct {
	ProjectID         uint   `json:"project_id" binding:"required"`
	SourceIDs         []uint `json:"source_ids"`
	PostLimit         int    `json:"post_limit"`
	DateFrom          string `json:"date_from"`
	DateTo            string `json:"date_to"`
	FolderPattern     string `json:"folder_pattern"`
	AutoCreateFolders *bool  `json:"auto_create_folders"`
}

// POST /api/v1/scrape-runs
func CreateScrapeRun(c *gin.Context) {
	var payload createScrapeRunRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	dateFrom, ok := parseDateParam(c, payload.DateFrom, "date_from")
	if !ok {
		return
	}
	dateTo, ok := parseDateParam(c, payload.DateTo, "date_to")
	if !ok {
		return
	}

	autoCreate := true
	if payload.AutoCreateFolders != nil {
		autoCreate = *payload.AutoCreateFolders
	}

	svc := services.NewScrapeRunService(nil)
	run, err := svc.CreateRun(c.Request.Context(), &services.CreateRunInput{
		ProjectID:         payload.ProjectID,
		SourceIDs:         payload.SourceIDs,
		PostLimit:         payload.PostLimit,
		DateFrom:          dateFrom,
		DateTo:            dateTo,
		FolderPattern:     payload.FolderPattern,
		AutoCreateFolders: autoCreate,
	})
	if err != nil {
		if errors.Is(err, services.ErrNoEligibleSources) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "no eligible sources in the requested scope"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": run})
}

// GET /api/v1/scrape-runs/:id
func GetScrapeRun(c *gin.Context) {
	runID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	svc := services.NewScrapeRunService(nil)
	run, err := svc.GetRun(c.Request.Context(), runID)
	if err != nil {
		if errors.Is(err, services.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "scrape run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": run})
}

// GET /api/v1/scrape-runs?project_id=1&limit=20&offset=0
func ListScrapeRuns(c *gin.Context) {
	projectID64, err := strconv.ParseUint(strings.TrimSpace(c.Query("project_id")), 10, 64)
	if err != nil || projectID64 == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing or invalid project_id"})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	svc := services.NewScrapeRunService(nil)
	runs, err := svc.ListRuns(c.Request.Context(), uint(projectID64), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": runs})
}

// POST /api/v1/scrape-runs/:id/cancel
func CancelScrapeRun(c *gin.Context) {
	runID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	svc := services.NewScrapeRunService(nil)
	run, err := svc.CancelRun(c.Request.Context(), runID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRunNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "scrape run not found"})
		case errors.Is(err, services.ErrRunNotCancellable):
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "scrape run is already in a terminal state"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": run})
}

// DELETE /api/v1/scrape-runs/:id
func DeleteScrapeRun(c *gin.Context) {
	runID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	svc := services.NewScrapeRunService(nil)
	if err := svc.DeleteRun(c.Request.Context(), runID); err != nil {
		if errors.Is(err, services.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "scrape run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id64, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id64 == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid " + name})
		return 0, false
	}
	return uint(id64), true
}

func parseDateParam(c *gin.Context, value, name string) (*time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid " + name + ", expected YYYY-MM-DD"})
		return nil, false
	}
	return &parsed, true
}
