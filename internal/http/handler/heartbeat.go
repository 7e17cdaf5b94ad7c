package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wjlee930501/motion-ai-cs/internal/http/dto"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
	"github.com/wjlee930501/motion-ai-cs/internal/service"
)

type HeartbeatHandler struct {
	service service.HeartbeatService
	loc     *time.Location
}

func NewHeartbeatHandler(service service.HeartbeatService, loc *time.Location) *HeartbeatHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &HeartbeatHandler{service: service, loc: loc}
}

func (h *HeartbeatHandler) Record(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewError(dto.CodeInvalidRequest, dto.ValidationMessage(err)))
		return
	}

	params := service.HeartbeatParams{DeviceID: req.DeviceID}
	if req.TS != "" {
		ts, err := parseReceivedAt(req.TS, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewError(dto.CodeInvalidRequest, "ts must be an ISO-8601 timestamp"))
			return
		}
		params.SeenAt = ts
	}

	if _, err := h.service.Record(ctx, params); err != nil {
		if errors.Is(err, service.ErrInvalidEvent) {
			c.JSON(http.StatusBadRequest, dto.NewError(dto.CodeInvalidRequest, err.Error()))
			return
		}
		slog.ErrorContext(ctx, "failed to record heartbeat", "error", err, "device_id", req.DeviceID)
		c.JSON(http.StatusInternalServerError, dto.NewError(dto.CodeInternal, "failed to record heartbeat"))
		return
	}

	c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

func (h *HeartbeatHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	devices, err := h.service.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list devices", "error", err)
		c.JSON(http.StatusInternalServerError, dto.NewError(dto.CodeInternal, "failed to list devices"))
		return
	}
	if devices == nil {
		devices = []model.DeviceHeartbeat{}
	}
	c.JSON(http.StatusOK, dto.DeviceListResponse{OK: true, Devices: devices})
}
