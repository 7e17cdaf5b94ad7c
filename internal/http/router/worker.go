package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wjlee930501/motion-ai-cs/internal/http/handler"
	"github.com/wjlee930501/motion-ai-cs/internal/http/middleware"
)

// WorkerRoutes serves the worker process's small operator surface.
func WorkerRoutes(router *gin.Engine, h *handler.WorkerHandler, adminAPIKey string) {
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := router.Group("/api/v1", middleware.AdminKey(adminAPIKey))
	admin.POST("/learning/run", h.RunLearning)
}
