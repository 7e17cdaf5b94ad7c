package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wjlee930501/motion-ai-cs/internal/model"
	"github.com/wjlee930501/motion-ai-cs/internal/store"
)

type HeartbeatParams struct {
	DeviceID string
	// SeenAt defaults to the server time when zero.
	SeenAt time.Time
}

type HeartbeatService interface {
	Record(ctx context.Context, params HeartbeatParams) (*model.DeviceHeartbeat, error)
	List(ctx context.Context) ([]model.DeviceHeartbeat, error)
}

type heartbeatService struct {
	heartbeats store.HeartbeatStore
	logger     *slog.Logger
}

func NewHeartbeatService(heartbeats store.HeartbeatStore, logger *slog.Logger) HeartbeatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &heartbeatService{heartbeats: heartbeats, logger: logger}
}

func (s *heartbeatService) Record(ctx context.Context, params HeartbeatParams) (*model.DeviceHeartbeat, error) {
	if strings.TrimSpace(params.DeviceID) == "" {
		return nil, fmt.Errorf("%w: missing device_id", ErrInvalidEvent)
	}
	seenAt := params.SeenAt
	if seenAt.IsZero() {
		seenAt = time.Now()
	}

	hb, err := s.heartbeats.Upsert(ctx, params.DeviceID, seenAt)
	if err != nil {
		return nil, fmt.Errorf("recording heartbeat: %w", err)
	}
	s.logger.DebugContext(ctx, "device heartbeat", "device_id", params.DeviceID)
	return hb, nil
}

func (s *heartbeatService) List(ctx context.Context) ([]model.DeviceHeartbeat, error) {
	return s.heartbeats.List(ctx)
}
