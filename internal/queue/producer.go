package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// streamMaxLen bounds the nudge stream. Nudges carry no state the worker
// depends on, so trimming old entries loses nothing.
const streamMaxLen = 10000

// Nudge tells workers a new event is waiting to be claimed.
type Nudge struct {
	EventID  int64
	ChatRoom string
	TraceID  string
}

type Producer interface {
	Nudge(ctx context.Context, n Nudge) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Nudge(ctx context.Context, n Nudge) error {
	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: nudgeValues(n),
	}).Err(); err != nil {
		return fmt.Errorf("xadd nudge (stream=%s): %w", p.stream, err)
	}

	p.logger.DebugContext(ctx, "nudged workers", "event_id", n.EventID, "stream", p.stream)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}

// NopProducer is used when Redis is not configured; workers then poll.
type NopProducer struct{}

func (NopProducer) Nudge(context.Context, Nudge) error { return nil }
func (NopProducer) Close() error                      { return nil }
