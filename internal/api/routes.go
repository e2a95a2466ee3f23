package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1 routes, owner-scoped
	v1 := router.Group("/api/v1")
	v1.Use(OwnerAuth())
	{
		v1.POST("/resume-files/upload-url", handler.CreateUploadURL)
		v1.POST("/resume-files", handler.ConfirmUpload)
		v1.GET("/resume-files", handler.ListFiles)
		v1.GET("/resume-files/:id/url", handler.GetFileURL)
		v1.POST("/resume-files/:id/reanalyze", handler.Reanalyze)
		v1.DELETE("/resume-files/:id", handler.DeleteFile)

		v1.GET("/resume", handler.GetResume)
		v1.PUT("/resume", handler.PutResume)
	}
}
