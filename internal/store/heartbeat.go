package store

import (
	"context"
	"time"

	"github.com/wjlee930501/motion-ai-cs/core/db/sqlc"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

type heartbeatStore struct {
	queries *sqlc.Queries
}

func newHeartbeatStore(queries *sqlc.Queries) HeartbeatStore {
	return &heartbeatStore{queries: queries}
}

func (s *heartbeatStore) Upsert(ctx context.Context, deviceID string, seenAt time.Time) (*model.DeviceHeartbeat, error) {
	row, err := s.queries.UpsertDeviceHeartbeat(ctx, sqlc.UpsertDeviceHeartbeatParams{
		DeviceID:   deviceID,
		LastSeenAt: timestamptz(seenAt),
	})
	if err != nil {
		return nil, err
	}
	return &model.DeviceHeartbeat{DeviceID: row.DeviceID, LastSeenAt: row.LastSeenAt.Time}, nil
}

func (s *heartbeatStore) List(ctx context.Context) ([]model.DeviceHeartbeat, error) {
	rows, err := s.queries.ListDeviceHeartbeats(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]model.DeviceHeartbeat, 0, len(rows))
	for _, row := range rows {
		result = append(result, model.DeviceHeartbeat{DeviceID: row.DeviceID, LastSeenAt: row.LastSeenAt.Time})
	}
	return result, nil
}
