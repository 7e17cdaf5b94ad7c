package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/wjlee930501/motion-ai-cs/internal/http/dto"
	"github.com/wjlee930501/motion-ai-cs/internal/queue"
)

// EventStreamHandler relays the ingest nudge stream to the dashboard as
// server-sent events, so new messages show up without polling.
type EventStreamHandler struct {
	redis  *redis.Client
	stream string
}

func NewEventStreamHandler(redisClient *redis.Client, stream string) *EventStreamHandler {
	return &EventStreamHandler{redis: redisClient, stream: stream}
}

type streamedEvent struct {
	StreamID string `json:"stream_id"`
	EventID  string `json:"event_id"`
	ChatRoom string `json:"chat_room,omitempty"`
}

func (h *EventStreamHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	if h.redis == nil {
		c.JSON(http.StatusServiceUnavailable, dto.NewError(dto.CodeUnavailable, "live stream not configured"))
		return
	}

	lastID := c.Query("last_id")
	if lastID == "" {
		lastID = "$"
	}

	setSSEHeaders(c.Writer)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, dto.NewError(dto.CodeInternal, "streaming not supported"))
		return
	}

	sseWrite(c.Writer, "ping", "ready")
	flusher.Flush()

	for {
		if ctx.Err() != nil {
			return
		}

		res, err := h.redis.XRead(ctx, &redis.XReadArgs{
			Streams: []string{h.stream, lastID},
			Block:   25 * time.Second,
			Count:   100,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				sseWrite(c.Writer, "ping", time.Now().UTC().Format(time.RFC3339Nano))
				flusher.Flush()
				continue
			}
			if ctx.Err() != nil {
				return
			}
			sseWrite(c.Writer, "error", map[string]string{"error": err.Error()})
			flusher.Flush()
			time.Sleep(time.Second)
			continue
		}

		for _, streamRes := range res {
			for _, msg := range streamRes.Messages {
				lastID = msg.ID
				n, err := queue.ParseNudge(msg)
				if err != nil {
					continue
				}
				sseWrite(c.Writer, "message_event", streamedEvent{
					StreamID: msg.ID,
					EventID:  fmt.Sprint(n.EventID),
					ChatRoom: n.ChatRoom,
				})
			}
		}
		flusher.Flush()
	}
}

func setSSEHeaders(w http.ResponseWriter) {
	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
}

func sseWrite(w http.ResponseWriter, event string, data any) {
	payload := marshalPayload(data)
	if event != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", event)
	}
	for _, line := range strings.Split(payload, "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = fmt.Fprint(w, "\n")
}

func marshalPayload(data any) string {
	switch payload := data.(type) {
	case string:
		return payload
	case []byte:
		return string(payload)
	default:
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Sprintf("%v", data)
		}
		return string(b)
	}
}
