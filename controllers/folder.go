package controllers

import (
	"errors"
	"net/http"

	"social-tracker-api/services"

	"github.com/gin-gonic/gin"
)

// GET /api/v1/scrape-runs/:id/folders
func GetRunFolderTree(c *gin.Context) {
	runID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	svc := services.NewFolderService(nil)
	tree, err := svc.GetFolderTree(c.Request.Context(), runID)
	if err != nil {
		if errors.Is(err, services.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "no folders for this run"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": tree})
}
