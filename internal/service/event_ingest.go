package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/wjlee930501/motion-ai-cs/common/id"
	"github.com/wjlee930501/motion-ai-cs/common/logger"
	"github.com/wjlee930501/motion-ai-cs/common/metrics"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
	"github.com/wjlee930501/motion-ai-cs/internal/queue"
	"github.com/wjlee930501/motion-ai-cs/internal/sender"
	"github.com/wjlee930501/motion-ai-cs/internal/store"
)

// BucketWidth is the dedup window. The bridge device may report the same
// notification several times within a few seconds.
const BucketWidth = 10 * time.Second

const (
	dedupReadAttempts = 3
	dedupReadInterval = 25 * time.Millisecond
)

var (
	ErrInvalidEvent         = errors.New("invalid event")
	ErrReceivedAtOutOfRange = errors.New("received_at out of accepted range")
)

type EventIngestParams struct {
	DeviceID       string          `json:"device_id"`
	ChatRoom       string          `json:"chat_room"`
	SenderName     string          `json:"sender_name"`
	Text           string          `json:"text"`
	ReceivedAt     time.Time       `json:"received_at"`
	Package        *string         `json:"package,omitempty"`
	NotificationID *string         `json:"notification_id,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	TraceID        string          `json:"trace_id,omitempty"`
}

type EventIngestResult struct {
	// EventID is 0 when a duplicate was detected but the original row could
	// not be read back.
	EventID int64
	Deduped bool
}

type EventIngestService interface {
	Ingest(ctx context.Context, params EventIngestParams) (*EventIngestResult, error)
}

type EventIngestConfig struct {
	MaxFutureSkew time.Duration
	MaxPastAge    time.Duration
	// Now is overridable for tests.
	Now func() time.Time
}

type eventIngestService struct {
	events  store.MessageEventStore
	senders *sender.Classifier
	queue   queue.Producer
	cfg     EventIngestConfig
	logger  *slog.Logger
}

func NewEventIngestService(events store.MessageEventStore, senders *sender.Classifier, producer queue.Producer, cfg EventIngestConfig, logger *slog.Logger) EventIngestService {
	if logger == nil {
		logger = slog.Default()
	}
	if producer == nil {
		producer = queue.NopProducer{}
	}
	if senders == nil {
		senders = &sender.Classifier{}
	}
	if cfg.MaxFutureSkew <= 0 {
		cfg.MaxFutureSkew = 5 * time.Minute
	}
	if cfg.MaxPastAge <= 0 {
		cfg.MaxPastAge = 7 * 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &eventIngestService{
		events:  events,
		senders: senders,
		queue:   producer,
		cfg:     cfg,
		logger:  logger,
	}
}

func (s *eventIngestService) Ingest(ctx context.Context, params EventIngestParams) (*EventIngestResult, error) {
	if err := s.validate(params); err != nil {
		metrics.EventsIngested.WithLabelValues("rejected").Inc()
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ChatRoom: &params.ChatRoom,
		DeviceID: &params.DeviceID,
	})

	role := s.senders.Classify(params.SenderName)
	textHash := Fingerprint(params.ChatRoom, params.SenderName, params.Text)
	bucket := BucketFor(params.ReceivedAt)

	metadata, err := buildMetadata(params)
	if err != nil {
		return nil, err
	}

	event := &model.MessageEvent{
		ID:          id.New(),
		DeviceID:    params.DeviceID,
		ChatRoom:    params.ChatRoom,
		SenderName:  params.SenderName,
		SenderType:  role.Type,
		StaffMember: role.StaffMember,
		Direction:   role.Direction,
		Text:        params.Text,
		TextHash:    textHash,
		BucketTS:    bucket,
		ReceivedAt:  params.ReceivedAt,
		Metadata:    metadata,
		Status:      model.IngestStatusReceived,
	}

	created, err := s.events.Insert(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("inserting message event: %w", err)
	}

	if created {
		metrics.EventsIngested.WithLabelValues("created").Inc()
		if err := s.queue.Nudge(ctx, queue.Nudge{EventID: event.ID, ChatRoom: event.ChatRoom, TraceID: params.TraceID}); err != nil {
			// The worker polls anyway; a lost nudge only delays processing.
			s.logger.WarnContext(ctx, "failed to nudge workers", "event_id", event.ID, "error", err)
		}
		return &EventIngestResult{EventID: event.ID}, nil
	}

	metrics.EventsIngested.WithLabelValues("deduped").Inc()
	existing, err := s.readExisting(ctx, textHash, bucket)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		s.logger.WarnContext(ctx, "duplicate detected but original event not visible",
			"text_hash", textHash, "bucket_ts", bucket)
		return &EventIngestResult{Deduped: true}, nil
	}

	s.logger.DebugContext(ctx, "duplicate event deduped", "event_id", existing.ID, "text_hash", textHash)
	return &EventIngestResult{EventID: existing.ID, Deduped: true}, nil
}

// readExisting retries briefly: the conflicting insert may belong to a
// transaction that has not committed yet.
func (s *eventIngestService) readExisting(ctx context.Context, textHash string, bucket time.Time) (*model.MessageEvent, error) {
	for attempt := 1; attempt <= dedupReadAttempts; attempt++ {
		existing, err := s.events.GetByDedupKey(ctx, textHash, bucket)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("reading duplicate event: %w", err)
		}
		if attempt == dedupReadAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(dedupReadInterval):
		}
	}
	return nil, nil
}

func (s *eventIngestService) validate(p EventIngestParams) error {
	var missing, withNUL []string
	for _, f := range [...]struct{ name, value string }{
		{"device_id", p.DeviceID},
		{"chat_room", p.ChatRoom},
		{"sender_name", p.SenderName},
		{"text", p.Text},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
		// Postgres text columns cannot hold NUL.
		if strings.IndexByte(f.value, 0) >= 0 {
			withNUL = append(withNUL, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidEvent, strings.Join(missing, ", "))
	}
	if len(withNUL) > 0 {
		return fmt.Errorf("%w: NUL byte in %s", ErrInvalidEvent, strings.Join(withNUL, ", "))
	}
	if p.ReceivedAt.IsZero() {
		return fmt.Errorf("%w: missing received_at", ErrInvalidEvent)
	}

	now := s.cfg.Now()
	if p.ReceivedAt.Before(now.Add(-s.cfg.MaxPastAge)) || p.ReceivedAt.After(now.Add(s.cfg.MaxFutureSkew)) {
		return fmt.Errorf("%w: %s", ErrReceivedAtOutOfRange, p.ReceivedAt.Format(time.RFC3339))
	}
	return nil
}

// Fingerprint identifies a message independent of when it was seen. Names
// are trimmed and all parts NFC-normalized so composed and decomposed
// Hangul hash alike.
func Fingerprint(chatRoom, senderName, text string) string {
	content := norm.NFC.String(strings.TrimSpace(chatRoom)) + "|" +
		norm.NFC.String(strings.TrimSpace(senderName)) + "|" +
		norm.NFC.String(text)
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// BucketFor truncates t to its dedup bucket in UTC.
func BucketFor(t time.Time) time.Time {
	return t.UTC().Truncate(BucketWidth)
}

func buildMetadata(p EventIngestParams) (json.RawMessage, error) {
	if p.Package == nil && p.NotificationID == nil && len(p.Metadata) == 0 {
		return nil, nil
	}

	out := map[string]any{}
	if len(p.Metadata) > 0 {
		var extra map[string]any
		if err := json.Unmarshal(p.Metadata, &extra); err != nil {
			return nil, fmt.Errorf("%w: metadata must be a JSON object", ErrInvalidEvent)
		}
		for k, v := range extra {
			out[k] = v
		}
	}
	if p.Package != nil {
		out["package"] = *p.Package
	}
	if p.NotificationID != nil {
		out["notification_id"] = *p.NotificationID
	}

	// jsonb rejects the escaped NUL as well.
	if hasNUL(out) {
		return nil, fmt.Errorf("%w: NUL byte in metadata", ErrInvalidEvent)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	return data, nil
}

func hasNUL(v any) bool {
	switch v := v.(type) {
	case string:
		return strings.IndexByte(v, 0) >= 0
	case map[string]any:
		for k, item := range v {
			if hasNUL(k) || hasNUL(item) {
				return true
			}
		}
	case []any:
		for _, item := range v {
			if hasNUL(item) {
				return true
			}
		}
	}
	return false
}
