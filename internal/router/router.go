package router

import (
	"github.com/gin-gonic/gin"

	"invosplit/internal/handler"
	"invosplit/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	batchH *handler.BatchHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	batches := v1.Group("/batches")
	batches.POST("", batchH.Upload)
	batches.GET("", batchH.List)
	batches.GET("/:id", batchH.GetByID)
	batches.POST("/:id/process", batchH.Process)
	batches.POST("/:id/validate-split", batchH.ValidateSplit)
	batches.POST("/:id/extract", batchH.Extract)
	batches.GET("/:id/records", batchH.Records)
	batches.GET("/:id/export", batchH.Export)
	batches.GET("/:id/download", batchH.Download)
	batches.DELETE("/:id", batchH.Delete)

	return r
}
