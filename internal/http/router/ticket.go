package router

import (
	"github.com/gin-gonic/gin"

	"github.com/wjlee930501/motion-ai-cs/internal/http/handler"
)

func TicketRouter(rg *gin.RouterGroup, h *handler.TicketHandler) {
	tickets := rg.Group("/tickets")
	tickets.GET("", h.List)
	tickets.GET("/:id", h.Get)
	tickets.GET("/:id/events", h.Events)
	tickets.GET("/:id/alerts", h.Alerts)
	tickets.POST("/:id/summarize", h.Summarize)

	rg.GET("/events/:id/annotation", h.Annotation)
}

func EventStreamRouter(rg *gin.RouterGroup, h *handler.EventStreamHandler) {
	rg.GET("/events", h.Stream)
}
