package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"social-tracker-api/config"
	"social-tracker-api/models"
	"social-tracker-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GET /api/v1/sources?project_id=1
func ListSources(c *gin.Context) {
	projectID64, err := strconv.ParseUint(strings.TrimSpace(c.Query("project_id")), 10, 64)
	if err != nil || projectID64 == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing or invalid project_id"})
		return
	}

	svc := services.NewSourceService(nil)
	sources, err := svc.ListSources(c.Request.Context(), uint(projectID64))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": sources})
}

type createSourceRequest struct {
	ProjectID uint   `json:"project_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Category  string `json:"category"`
	Links     []struct {
		Platform string `json:"platform" binding:"required"`
		Service  string `json:"service" binding:"required"`
		URL      string `json:"url" binding:"required"`
	} `json:"links"`
}

// POST /api/v1/sources
func CreateSource(c *gin.Context) {
	var payload createSourceRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	source := models.Source{
		ProjectID: payload.ProjectID,
		Name:      strings.TrimSpace(payload.Name),
		Category:  strings.TrimSpace(payload.Category),
	}
	for _, link := range payload.Links {
		source.Links = append(source.Links, models.SourceLink{
			Platform: strings.ToLower(strings.TrimSpace(link.Platform)),
			Service:  strings.ToLower(strings.TrimSpace(link.Service)),
			URL:      strings.TrimSpace(link.URL),
			IsActive: true,
		})
	}

	if err := config.DB.Create(&source).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": source})
}

type addSourceLinkRequest struct {
	Platform string `json:"platform" binding:"required"`
	Service  string `json:"service" binding:"required"`
	URL      string `json:"url" binding:"required"`
}

// POST /api/v1/sources/:id/links
func AddSourceLink(c *gin.Context) {
	sourceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload addSourceLinkRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	var source models.Source
	if err := config.DB.Where("id = ?", sourceID).First(&source).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "source not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	link := models.SourceLink{
		SourceID: source.ID,
		Platform: strings.ToLower(strings.TrimSpace(payload.Platform)),
		Service:  strings.ToLower(strings.TrimSpace(payload.Service)),
		URL:      strings.TrimSpace(payload.URL),
		IsActive: true,
	}
	if err := config.DB.Create(&link).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": link})
}
