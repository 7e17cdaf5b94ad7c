package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/wjlee930501/motion-ai-cs/internal/http/handler"
	"github.com/wjlee930501/motion-ai-cs/internal/http/middleware"
	"github.com/wjlee930501/motion-ai-cs/internal/service"
)

type RouterConfig struct {
	DeviceKey   string
	AdminAPIKey string
	Location    *time.Location
	DB          handler.Pinger
	// Redis and Stream back the dashboard live feed; nil disables it.
	Redis  *redis.Client
	Stream string
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	health := handler.NewHealthHandler("ingest-api", cfg.DB)
	router.GET("/health", health.Check)

	v1 := router.Group("/v1", middleware.DeviceKey(cfg.DeviceKey))
	{
		IngestRouter(v1,
			handler.NewEventIngestHandler(services.EventIngest(), cfg.Location),
			handler.NewHeartbeatHandler(services.Heartbeats(), cfg.Location),
		)
	}

	admin := router.Group("/api/v1", middleware.AdminKey(cfg.AdminAPIKey))
	{
		TicketRouter(admin, handler.NewTicketHandler(services.TicketQueries(), services.TicketSummaries()))
		DeviceRouter(admin.Group("/devices"), handler.NewHeartbeatHandler(services.Heartbeats(), cfg.Location))
		EventStreamRouter(admin.Group("/stream"), handler.NewEventStreamHandler(cfg.Redis, cfg.Stream))
	}
}
