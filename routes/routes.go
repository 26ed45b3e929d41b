package routes

import (
	"dept-analytics-api/controllers"
	"dept-analytics-api/middleware"
	"dept-analytics-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)
			public.POST("/register", controllers.Register)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Department Analytics API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)

			// CSV ingestion and upload history
			data := protected.Group("/data")
			{
				// Only admins run uploads; everyone reads their own history
				data.POST("/upload", middleware.RequireRole(models.RoleAdmin), controllers.UploadCSV)
				data.GET("/upload-logs", controllers.GetUploadLogs)
				data.GET("/upload-logs/:id", controllers.GetUploadLogDetail)
			}

			// Dashboard
			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("/overview", controllers.GetDashboardOverview)
				dashboard.GET("/performance", controllers.GetDashboardPerformance)
				dashboard.GET("/papers", controllers.GetDashboardPapers)
				dashboard.GET("/students", controllers.GetDashboardStudents)
				dashboard.GET("/budget", controllers.GetDashboardBudget)
			}
		}
	}
}
