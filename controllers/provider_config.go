package controllers

import (
	"net/http"
	"strings"

	"social-tracker-api/config"
	"social-tracker-api/models"

	"github.com/gin-gonic/gin"
)

// GET /api/v1/admin/provider-configs
func ListProviderConfigs(c *gin.Context) {
	var configs []models.ProviderConfig
	if err := config.DB.Order("platform ASC, service ASC").Find(&configs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": configs})
}

type createProviderConfigRequest struct {
	Provider  string `json:"provider" binding:"required"`
	Platform  string `json:"platform" binding:"required"`
	Service   string `json:"service" binding:"required"`
	ActorID   string `json:"actor_id"`
	DatasetID string `json:"dataset_id"`
	BaseURL   string `json:"base_url"`
}

// POST /api/v1/admin/provider-configs
func CreateProviderConfig(c *gin.Context) {
	var payload createProviderConfigRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	provider := strings.ToLower(strings.TrimSpace(payload.Provider))
	if provider != models.ProviderApify && provider != models.ProviderBrightData {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unknown provider"})
		return
	}

	cfg := models.ProviderConfig{
		Provider:  provider,
		Platform:  strings.ToLower(strings.TrimSpace(payload.Platform)),
		Service:   strings.ToLower(strings.TrimSpace(payload.Service)),
		ActorID:   strings.TrimSpace(payload.ActorID),
		DatasetID: strings.TrimSpace(payload.DatasetID),
		BaseURL:   strings.TrimSpace(payload.BaseURL),
		IsActive:  true,
	}

	// A new active config supersedes the previous one for the same target.
	if err := config.DB.Model(&models.ProviderConfig{}).
		Where("platform = ? AND service = ? AND is_active = ?", cfg.Platform, cfg.Service, true).
		Update("is_active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := config.DB.Create(&cfg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": cfg})
}
