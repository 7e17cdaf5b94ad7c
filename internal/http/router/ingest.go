package router

import (
	"github.com/gin-gonic/gin"

	"github.com/wjlee930501/motion-ai-cs/internal/http/handler"
)

func IngestRouter(rg *gin.RouterGroup, events *handler.EventIngestHandler, heartbeats *handler.HeartbeatHandler) {
	rg.POST("/events", events.Ingest)
	rg.POST("/heartbeat", heartbeats.Record)
}

func DeviceRouter(rg *gin.RouterGroup, h *handler.HeartbeatHandler) {
	rg.GET("", h.List)
}
