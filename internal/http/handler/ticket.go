package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wjlee930501/motion-ai-cs/internal/http/dto"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
	"github.com/wjlee930501/motion-ai-cs/internal/service"
	"github.com/wjlee930501/motion-ai-cs/internal/store"
)

// TicketHandler serves the dashboard's ticket views. summaries may be nil
// when no escalated model is configured.
type TicketHandler struct {
	queries   service.TicketQueryService
	summaries service.TicketSummaryService
}

func NewTicketHandler(queries service.TicketQueryService, summaries service.TicketSummaryService) *TicketHandler {
	return &TicketHandler{queries: queries, summaries: summaries}
}

func (h *TicketHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var q dto.ListTicketsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewError(dto.CodeInvalidRequest, dto.ValidationMessage(err)))
		return
	}

	tickets, err := h.queries.List(ctx, q.Filter())
	if err != nil {
		slog.ErrorContext(ctx, "failed to list tickets", "error", err)
		c.JSON(http.StatusInternalServerError, dto.NewError(dto.CodeInternal, "failed to list tickets"))
		return
	}
	if tickets == nil {
		tickets = []model.Ticket{}
	}

	c.JSON(http.StatusOK, dto.TicketListResponse{OK: true, Tickets: tickets})
}

func (h *TicketHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	ticketID, ok := pathID(c, "id")
	if !ok {
		return
	}

	t, err := h.queries.Get(ctx, ticketID)
	if err != nil {
		h.ticketError(c, err, "failed to get ticket")
		return
	}
	c.JSON(http.StatusOK, dto.TicketResponse{OK: true, Ticket: t})
}

func (h *TicketHandler) Events(c *gin.Context) {
	ctx := c.Request.Context()
	ticketID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if _, err := h.queries.Get(ctx, ticketID); err != nil {
		h.ticketError(c, err, "failed to get ticket")
		return
	}
	events, err := h.queries.Events(ctx, ticketID)
	if err != nil {
		h.ticketError(c, err, "failed to list ticket events")
		return
	}
	if events == nil {
		events = []model.MessageEvent{}
	}
	c.JSON(http.StatusOK, dto.TicketEventsResponse{OK: true, Events: events})
}

func (h *TicketHandler) Alerts(c *gin.Context) {
	ctx := c.Request.Context()
	ticketID, ok := pathID(c, "id")
	if !ok {
		return
	}

	alerts, err := h.queries.Alerts(ctx, ticketID)
	if err != nil {
		h.ticketError(c, err, "failed to list ticket alerts")
		return
	}
	if alerts == nil {
		alerts = []model.AlertLog{}
	}
	c.JSON(http.StatusOK, dto.TicketAlertsResponse{OK: true, Alerts: alerts})
}

func (h *TicketHandler) Annotation(c *gin.Context) {
	ctx := c.Request.Context()
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	a, err := h.queries.Annotation(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.NewError(dto.CodeNotFound, "annotation not found"))
			return
		}
		slog.ErrorContext(ctx, "failed to get annotation", "error", err, "event_id", eventID)
		c.JSON(http.StatusInternalServerError, dto.NewError(dto.CodeInternal, "failed to get annotation"))
		return
	}
	c.JSON(http.StatusOK, dto.AnnotationResponse{OK: true, Annotation: a})
}

func (h *TicketHandler) Summarize(c *gin.Context) {
	ctx := c.Request.Context()
	if h.summaries == nil {
		c.JSON(http.StatusServiceUnavailable, dto.NewError(dto.CodeUnavailable, "summarization is not configured"))
		return
	}
	ticketID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.summaries.Summarize(ctx, ticketID)
	if err != nil {
		h.ticketError(c, err, "failed to summarize ticket")
		return
	}
	c.JSON(http.StatusOK, dto.TicketSummaryResponse{
		OK:             true,
		Ticket:         result.Ticket,
		Summary:        result.Summary.Summary,
		NextAction:     result.Summary.NextAction,
		OverallUrgency: result.Summary.OverallUrgency,
		Model:          result.Summary.Model,
	})
}

func (h *TicketHandler) ticketError(c *gin.Context, err error, msg string) {
	if errors.Is(err, service.ErrTicketNotFound) {
		c.JSON(http.StatusNotFound, dto.NewError(dto.CodeNotFound, "ticket not found"))
		return
	}
	slog.ErrorContext(c.Request.Context(), msg, "error", err)
	c.JSON(http.StatusInternalServerError, dto.NewError(dto.CodeInternal, msg))
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.NewError(dto.CodeInvalidRequest, "invalid "+name))
		return 0, false
	}
	return id, true
}
