package routes

import (
	"social-tracker-api/controllers"
	"social-tracker-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// Provider callback ingress; providers cannot send Authorization headers,
	// so this stays outside the API group.
	router.POST("/webhook", controllers.ProviderWebhook)

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Source Tracker API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Source catalog
			sources := protected.Group("/sources")
			{
				sources.GET("", controllers.ListSources)
				sources.POST("", controllers.CreateSource)
				sources.POST("/:id/links", controllers.AddSourceLink)
			}

			// Scrape runs
			runs := protected.Group("/scrape-runs")
			{
				runs.GET("", controllers.ListScrapeRuns)
				runs.POST("", controllers.CreateScrapeRun)
				runs.GET("/:id", controllers.GetScrapeRun)
				runs.GET("/:id/folders", controllers.GetRunFolderTree)
				runs.POST("/:id/cancel", controllers.CancelScrapeRun)

				// Only admin can delete runs (cascades jobs and folders)
				runs.DELETE("/:id", middleware.RequireRole(3), controllers.DeleteScrapeRun) // 3 = admin
			}

			// Scrape jobs
			jobs := protected.Group("/scrape-jobs")
			{
				jobs.POST("/:id/retry", controllers.RetryScrapeJob)
			}

			// Provider configuration (admin only)
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(3))
			{
				admin.GET("/provider-configs", controllers.ListProviderConfigs)
				admin.POST("/provider-configs", controllers.CreateProviderConfig)
			}
		}
	}
}
