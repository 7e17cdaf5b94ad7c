package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/wjlee930501/motion-ai-cs/internal/http/dto"
	"github.com/wjlee930501/motion-ai-cs/internal/service"
)

// Timestamps without an offset are read in the business timezone; the
// bridge app reports local wall-clock time.
var receivedAtLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

type EventIngestHandler struct {
	service service.EventIngestService
	loc     *time.Location
}

func NewEventIngestHandler(service service.EventIngestService, loc *time.Location) *EventIngestHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &EventIngestHandler{
		service: service,
		loc:     loc,
	}
}

func (h *EventIngestHandler) Ingest(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.IngestEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid ingest request", "error", err)
		c.JSON(http.StatusBadRequest, dto.NewError(dto.CodeInvalidRequest, dto.ValidationMessage(err)))
		return
	}

	receivedAt, err := parseReceivedAt(req.ReceivedAt, h.loc)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, dto.NewError(dto.CodeInvalidReceivedAt, "received_at must be an ISO-8601 timestamp"))
		return
	}

	params := service.EventIngestParams{
		DeviceID:       req.DeviceID,
		ChatRoom:       req.ChatRoom,
		SenderName:     req.SenderName,
		Text:           req.Text,
		ReceivedAt:     receivedAt,
		Package:        req.Package,
		NotificationID: req.NotificationID,
		Metadata:       req.Metadata,
	}
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		params.TraceID = spanCtx.TraceID().String()
	}

	result, err := h.service.Ingest(ctx, params)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReceivedAtOutOfRange):
			slog.WarnContext(ctx, "received_at out of range", "error", err, "device_id", req.DeviceID)
			c.JSON(http.StatusUnprocessableEntity, dto.NewError(dto.CodeInvalidReceivedAt, err.Error()))
		case errors.Is(err, service.ErrInvalidEvent):
			c.JSON(http.StatusBadRequest, dto.NewError(dto.CodeInvalidRequest, err.Error()))
		default:
			slog.ErrorContext(ctx, "failed to ingest event", "error", err)
			c.JSON(http.StatusInternalServerError, dto.NewError(dto.CodeInternal, "failed to ingest event"))
		}
		return
	}

	c.JSON(http.StatusOK, dto.IngestEventResponse{
		OK:      true,
		EventID: result.EventID,
		Deduped: result.Deduped,
	})
}

func parseReceivedAt(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	var lastErr error
	for _, layout := range receivedAtLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
