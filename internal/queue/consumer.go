package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wjlee930501/motion-ai-cs/common/logger"
)

// RedisWaker blocks until a nudge arrives or the timeout passes. Every
// worker reads the whole stream with plain XREAD, so one nudge wakes all of
// them; the database claim decides who gets the rows.
type RedisWaker struct {
	client *redis.Client
	stream string

	mu     sync.Mutex
	lastID string
}

func NewRedisWaker(client *redis.Client, stream string) *RedisWaker {
	// "$" skips nudges sent before startup; the first claim pass picks those
	// events up anyway.
	return &RedisWaker{client: client, stream: stream, lastID: "$"}
}

// Wait returns true when at least one nudge was read. Redis errors are
// logged and treated as a timeout so the caller falls back to polling.
func (w *RedisWaker) Wait(ctx context.Context, timeout time.Duration) bool {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "cs.queue.waker"})

	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	streams, err := w.client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{w.stream, w.lastID},
		Count:   100,
		Block:   timeout,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || ctx.Err() != nil {
			return false
		}
		slog.WarnContext(ctx, "reading nudge stream failed", "error", err, "stream", w.stream)
		// Avoid a hot loop when Redis is down.
		sleepCtx(ctx, timeout-time.Since(start))
		return false
	}

	n := 0
	for _, s := range streams {
		for _, msg := range s.Messages {
			w.lastID = msg.ID
			n++
			if nudge, err := ParseNudge(msg); err == nil {
				slog.DebugContext(ctx, "woken by nudge", "event_id", nudge.EventID)
			}
		}
	}
	return n > 0
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// ParseNudge decodes a stream entry written by the producer.
func ParseNudge(msg redis.XMessage) (Nudge, error) {
	eventID, err := parseInt64(msg.Values, "event_id")
	if err != nil {
		return Nudge{}, err
	}
	return Nudge{
		EventID:  eventID,
		ChatRoom: parseOptionalString(msg.Values, "chat_room"),
		TraceID:  parseOptionalString(msg.Values, "trace_id"),
	}, nil
}

func nudgeValues(n Nudge) map[string]any {
	values := map[string]any{
		"event_id": n.EventID,
	}
	if n.ChatRoom != "" {
		values["chat_room"] = n.ChatRoom
	}
	if n.TraceID != "" {
		values["trace_id"] = n.TraceID
	}
	return values
}

func parseInt64(values map[string]any, key string) (int64, error) {
	raw, ok := values[key]
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	num, err := strconv.ParseInt(fmt.Sprint(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return num, nil
}

func parseOptionalString(values map[string]any, key string) string {
	raw, ok := values[key]
	if !ok {
		return ""
	}
	return fmt.Sprint(raw)
}
