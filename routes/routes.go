package routes

import (
	"loan-origination-api/controllers"
	"loan-origination-api/middleware"

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

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Loan Origination API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Batch uploads (applicant ingestion + scoring pipeline)
			uploads := protected.Group("/batch-uploads")
			{
				uploads.POST("", controllers.UploadBatchFile)
				uploads.GET("", controllers.ListBatchUploads)
				uploads.GET("/:id", controllers.GetBatchUpload)
			}

			// Applicants materialized by the pipeline
			applicants := protected.Group("/applicants")
			{
				applicants.GET("", controllers.GetApplicants)
				applicants.GET("/:id", controllers.GetApplicant)
			}

			// Dashboard
			protected.GET("/dashboard/risk-summary", controllers.GetRiskSummary)

			// Model registry (admin only, 2 = admin)
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(2))
			{
				admin.GET("/model-versions", controllers.ListModelVersions)
				admin.POST("/model-versions/:id/promote", controllers.PromoteModelVersion)
			}
		}
	}
}
